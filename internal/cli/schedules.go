// filepath: internal/cli/schedules.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"scmdash/internal/client"
	"scmdash/internal/console"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
)

func newSchedulesCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage recurring backup schedules",
	}
	cmd.AddCommand(
		newSchedulesListCommand(g),
		newScheduleCreateCommand(g),
		newScheduleUpdateCommand(g),
		&cobra.Command{
			Use:   "next",
			Short: "Show the next active schedule to run",
			Args:  cobra.NoArgs,
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				sc, err := env.client.NextSchedule(ctx)
				if errors.Is(err, client.ErrNotFound) {
					env.done("No active schedule.")
					return nil
				}
				if err != nil {
					return env.fail(err, "Failed to load the next schedule")
				}
				return env.show(sc, scheduleFields(*sc))
			}),
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Switch a schedule between Active and Inactive",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				sc, err := console.NewSchedulesPage(env.client).Toggle(ctx, id)
				if err != nil {
					return env.fail(err, "Failed to update schedule status")
				}
				env.done("Schedule %s is now %s.", sc.ScheduleID, sc.Status)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a schedule",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := console.NewSchedulesPage(env.client).Delete(ctx, id); err != nil {
					return env.fail(err, "Failed to delete schedule")
				}
				env.done("Schedule %d deleted.", id)
				return nil
			}),
		},
	)
	return cmd
}

func newSchedulesListCommand(g *GlobalOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules (tabs: all, active, inactive; filters: type, frequency)",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			page := console.NewSchedulesPage(env.client)
			return listView[models.BackupSchedule, console.ScheduleStats]{
				title:   "Backup Schedules",
				ctrl:    page.Controller,
				headers: []string{"ID", "Schedule", "Name", "Type", "Frequency", "Time", "Retention", "Status", "Next Run"},
				row: func(s models.BackupSchedule) []string {
					return []string{
						strconv.FormatInt(s.ID, 10), s.ScheduleID, s.Name, s.Type, s.Frequency, s.Time,
						orDash(s.Retention), s.Status, formatTime(s.NextRunAt),
					}
				},
				stats: func(s console.ScheduleStats) string {
					return renderStats("Total", s.Total, "Active", s.Active, "Inactive", s.Inactive)
				},
			}.run(ctx, env, flags)
		}),
	}
	cmd.Flags().AddFlagSet(flags.flagSet())
	return cmd
}

type scheduleForm struct {
	p             models.SchedulePayload
	repositoryIDs []int64
}

func (f *scheduleForm) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.p.Name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&f.p.Type, "type", models.BackupFull, "Full or Delta")
	cmd.Flags().StringVar(&f.p.Frequency, "frequency", models.FrequencyDaily, "Daily, Weekly or Monthly")
	cmd.Flags().StringVar(&f.p.Time, "time", "", "Clock time, e.g. '02:00' or '3:04 PM'")
	cmd.Flags().StringVar(&f.p.Retention, "retention", "", "Retention, e.g. '30 days'")
	cmd.Flags().StringVar(&f.p.Status, "status", models.ScheduleActive, "Active or Inactive")
	cmd.Flags().Int64SliceVar(&f.repositoryIDs, "repository", nil, "Repository ids; none covers all repositories")
}

func (f *scheduleForm) over(cmd *cobra.Command, base models.SchedulePayload) models.SchedulePayload {
	setIfChanged(cmd, "name", &base.Name, f.p.Name)
	setIfChanged(cmd, "type", &base.Type, f.p.Type)
	setIfChanged(cmd, "frequency", &base.Frequency, f.p.Frequency)
	setIfChanged(cmd, "time", &base.Time, f.p.Time)
	setIfChanged(cmd, "retention", &base.Retention, f.p.Retention)
	setIfChanged(cmd, "status", &base.Status, f.p.Status)
	return base
}

func scheduleFields(s models.BackupSchedule) [][2]string {
	return [][2]string{
		{"ID", strconv.FormatInt(s.ID, 10)},
		{"Schedule", s.ScheduleID},
		{"Name", s.Name},
		{"Type", s.Type},
		{"Frequency", s.Frequency},
		{"Time", s.Time},
		{"Retention", orDash(s.Retention)},
		{"Status", s.Status},
		{"Repositories", s.Repos},
		{"Last Run", formatTime(s.LastRunAt)},
		{"Next Run", formatTime(s.NextRunAt)},
	}
}

func newScheduleCreateCommand(g *GlobalOptions) *cobra.Command {
	form := &scheduleForm{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			sc, err := console.NewSchedulesPage(env.client).Create(ctx, form.p, form.repositoryIDs)
			if err != nil {
				return env.fail(err, "Failed to create schedule")
			}
			return env.show(sc, scheduleFields(sc))
		}),
	}
	form.register(cmd)
	return cmd
}

func newScheduleUpdateCommand(g *GlobalOptions) *cobra.Command {
	form := &scheduleForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Update a schedule; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			current, err := env.client.GetSchedule(ctx, id)
			if err != nil {
				return env.fail(err, fmt.Sprintf("Failed to load schedule %d", id))
			}
			payload := form.over(cmd, models.SchedulePayload{
				Name:      current.Name,
				Type:      current.Type,
				Frequency: current.Frequency,
				Time:      current.Time,
				Retention: current.Retention,
				Status:    current.Status,
			})
			repositoryIDs := current.Scope.IDs
			if cmd.Flags().Changed("repository") {
				repositoryIDs = form.repositoryIDs
			}
			sc, err := console.NewSchedulesPage(env.client).Update(ctx, id, payload, repositoryIDs)
			if err != nil {
				return env.fail(err, "Failed to update schedule")
			}
			return env.show(sc, scheduleFields(sc))
		}),
	}
	form.register(cmd)
	return cmd
}
