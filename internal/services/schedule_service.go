// filepath: internal/services/schedule_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/shared"
)

var _ ScheduleService = (*scheduleService)(nil)

// scheduleService manages backup schedules and starts their runs.
type scheduleService struct {
	Repo    *repository.Repository
	Backups BackupService
	Auditor Auditor

	now func() time.Time
}

// NewScheduleService creates a new ScheduleService. Runs are started through backups.
func NewScheduleService(repo *repository.Repository, backups BackupService, auditor Auditor) *scheduleService {
	return &scheduleService{Repo: repo, Backups: backups, Auditor: auditor, now: time.Now}
}

func (s *scheduleService) withNextRun(sc *models.BackupSchedule) {
	if sc.Status != models.ScheduleActive {
		sc.NextRunAt = nil
		return
	}
	now := s.now()
	ref := scheduleReference(sc)
	if ref.Before(now) {
		ref = now
	}
	next, err := NextRun(sc, ref)
	if err != nil {
		sc.NextRunAt = nil
		return
	}
	sc.NextRunAt = &next
}

func (s *scheduleService) List(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error) {
	list, err := s.Repo.ListSchedules(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.withNextRun(&list[i])
	}
	return list, nil
}

func (s *scheduleService) Get(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	sc, err := s.Repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, notFound(err, "Backup schedule", id)
	}
	s.withNextRun(sc)
	return sc, nil
}

func (s *scheduleService) GetByCode(ctx context.Context, code string) (*models.BackupSchedule, error) {
	sc, err := s.Repo.GetScheduleByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "Backup schedule", code)
	}
	s.withNextRun(sc)
	return sc, nil
}

// Next returns the active schedule that fires soonest.
func (s *scheduleService) Next(ctx context.Context) (*models.BackupSchedule, error) {
	list, err := s.List(ctx, models.ScheduleFilter{Status: models.ScheduleActive})
	if err != nil {
		return nil, err
	}
	var next *models.BackupSchedule
	for i := range list {
		sc := &list[i]
		if sc.NextRunAt == nil {
			continue
		}
		if next == nil || sc.NextRunAt.Before(*next.NextRunAt) {
			next = sc
		}
	}
	if next == nil {
		return nil, fmt.Errorf("%w: no active backup schedule", ErrNotFound)
	}
	return next, nil
}

func (s *scheduleService) checkPayload(ctx context.Context, p models.SchedulePayload, ids []int64) error {
	if _, _, err := shared.ParseClockTime(p.Time); err != nil {
		return invalid("Invalid schedule time: " + p.Time)
	}
	_, missing, err := s.Repo.ListRepositoryNames(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return invalid(fmt.Sprintf("Repository not found with id: %d", missing[0]))
	}
	return nil
}

func applySchedulePayload(sc *models.BackupSchedule, p models.SchedulePayload, ids []int64) {
	sc.Name = p.Name
	sc.Type = p.Type
	sc.Frequency = p.Frequency
	sc.Time = p.Time
	sc.Retention = p.Retention
	if p.Status != "" {
		sc.Status = p.Status
	}
	if sc.Status == "" {
		sc.Status = models.ScheduleActive
	}
	sc.Scope = models.SelectedRepositories(ids)
}

// Create adds a schedule over repositoryIDs, or over every repository when the list is empty.
func (s *scheduleService) Create(ctx context.Context, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	if err := s.checkPayload(ctx, p, repositoryIDs); err != nil {
		return nil, err
	}
	sc := &models.BackupSchedule{}
	applySchedulePayload(sc, p, repositoryIDs)

	created, err := s.Repo.CreateSchedule(ctx, sc)
	if err != nil {
		logging.Log.Errorf("ScheduleService: Failed to create schedule '%s': %v", p.Name, err)
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	s.Auditor.Log(ctx, "schedule.create", ActorFrom(ctx), created.ScheduleID, map[string]interface{}{
		"name":      created.Name,
		"frequency": created.Frequency,
	})
	s.withNextRun(created)
	return created, nil
}

func (s *scheduleService) Update(ctx context.Context, id int64, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPayload(ctx, p, repositoryIDs); err != nil {
		return nil, err
	}
	applySchedulePayload(sc, p, repositoryIDs)
	return s.save(ctx, "schedule.update", sc)
}

func (s *scheduleService) save(ctx context.Context, action string, sc *models.BackupSchedule) (*models.BackupSchedule, error) {
	saved, err := s.Repo.SaveSchedule(ctx, sc)
	if err != nil {
		return nil, notFound(err, "Backup schedule", sc.ID)
	}
	s.Auditor.Log(ctx, action, ActorFrom(ctx), saved.ScheduleID, map[string]interface{}{"status": saved.Status})
	s.withNextRun(saved)
	return saved, nil
}

func (s *scheduleService) Delete(ctx context.Context, id int64) error {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteSchedule(ctx, id); err != nil {
		return notFound(err, "Backup schedule", id)
	}
	s.Auditor.Log(ctx, "schedule.delete", ActorFrom(ctx), sc.ScheduleID, nil)
	return nil
}

// ToggleStatus flips a schedule between Active and Inactive.
func (s *scheduleService) ToggleStatus(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.Status == models.ScheduleActive {
		sc.Status = models.ScheduleInactive
	} else {
		sc.Status = models.ScheduleActive
	}
	return s.save(ctx, "schedule.toggle", sc)
}

// DueSchedules returns the active schedules whose next run, counted from their
// last run (or creation), is not after now.
func (s *scheduleService) DueSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error) {
	list, err := s.Repo.ListSchedules(ctx, models.ScheduleFilter{Status: models.ScheduleActive})
	if err != nil {
		return nil, err
	}
	due := make([]models.BackupSchedule, 0)
	for _, sc := range list {
		next, err := NextRun(&sc, scheduleReference(&sc))
		if err != nil {
			logging.Log.Warnf("ScheduleService: skipping %s: %v", sc.ScheduleID, err)
			continue
		}
		if !next.After(now) {
			due = append(due, sc)
		}
	}
	return due, nil
}

// RunSchedule starts one backup for the schedule and records the run.
func (s *scheduleService) RunSchedule(ctx context.Context, sc models.BackupSchedule, now time.Time) (*models.Backup, error) {
	var ids []int64
	if !sc.Scope.IsAll() {
		if len(sc.Scope.IDs) == 0 {
			return nil, fmt.Errorf("%w: schedule %s has no remaining repositories", ErrValidation, sc.ScheduleID)
		}
		ids = sc.Scope.IDs
	}
	ctx = WithActor(ctx, SystemActor)
	b, err := s.Backups.Create(ctx, models.BackupPayload{
		Type:        sc.Type,
		InitiatedBy: SystemActor,
		Notes:       "Scheduled backup: " + sc.Name,
	}, ids)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.MarkScheduleRun(ctx, sc.ID, now); err != nil {
		return b, fmt.Errorf("failed to record run of %s: %w", sc.ScheduleID, err)
	}
	return b, nil
}

func scheduleReference(sc *models.BackupSchedule) time.Time {
	if sc.LastRunAt != nil {
		return sc.LastRunAt.Local()
	}
	return sc.CreatedAt.Local()
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// scheduleWeekday finds a weekday named in the free-text time, e.g. "01:00 AM (Sunday)".
func scheduleWeekday(s string) (time.Weekday, bool) {
	lower := strings.ToLower(s)
	names := make([]string, 0, len(weekdays))
	for name := range weekdays {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(lower, name) {
			return weekdays[name], true
		}
	}
	return 0, false
}

// NextRun returns the first firing time of the schedule strictly after from.
// Clock times are read in from's location.
func NextRun(sc *models.BackupSchedule, from time.Time) (time.Time, error) {
	hour, minute, err := shared.ParseClockTime(sc.Time)
	if err != nil {
		return time.Time{}, err
	}
	at := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	switch sc.Frequency {
	case models.FrequencyWeekly:
		if wd, ok := scheduleWeekday(sc.Time); ok {
			at = at.AddDate(0, 0, (int(wd)-int(at.Weekday())+7)%7)
		}
		if !at.After(from) {
			at = at.AddDate(0, 0, 7)
		}
	case models.FrequencyMonthly:
		if !at.After(from) {
			at = at.AddDate(0, 1, 0)
		}
	default:
		if !at.After(from) {
			at = at.AddDate(0, 0, 1)
		}
	}
	return at, nil
}
