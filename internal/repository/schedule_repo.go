// filepath: internal/repository/schedule_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var scheduleColumns = []string{
	"id", "schedule_code", "name", "type", "frequency", "time", "retention",
	"status", "scope_mode", "last_run_at", "created_at",
}

func scanSchedule(row interface{ Scan(...any) error }) (*models.BackupSchedule, error) {
	var (
		sc      models.BackupSchedule
		lastRun sql.NullTime
	)
	if err := row.Scan(&sc.ID, &sc.ScheduleID, &sc.Name, &sc.Type, &sc.Frequency, &sc.Time, &sc.Retention,
		&sc.Status, &sc.Scope.Mode, &lastRun, &sc.CreatedAt); err != nil {
		return nil, err
	}
	sc.LastRunAt = timePtr(lastRun)
	return &sc, nil
}

// loadScheduleRepos fills the selected repository ids and the repos label.
// Schedules in "all" mode carry no links; they resolve when they run.
func (s *Repository) loadScheduleRepos(ctx context.Context, q querier, sc *models.BackupSchedule) error {
	ids, err := listIDs(ctx, q, "SELECT repository_id FROM schedule_repositories WHERE schedule_id = ? ORDER BY repository_id", sc.ID)
	if err != nil {
		return err
	}
	names, _, err := repositoryNames(ctx, s.Builder, q, ids)
	if err != nil {
		return err
	}
	sc.RepositoryIDs = ids
	sc.Scope.IDs = ids
	if sc.Scope.IsAll() {
		sc.Scope.IDs = []int64{}
	}
	sc.Repos = models.ScopeLabel(sc.Scope, names)
	return nil
}

// ListSchedules returns schedules matching the filter, ordered by id.
func (s *Repository) ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error) {
	q := s.Builder.Select(scheduleColumns...).From("backup_schedules").OrderBy("id")
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": f.Type})
	}
	if f.Frequency != "" {
		q = q.Where(sq.Eq{"frequency": f.Frequency})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	list := make([]models.BackupSchedule, 0)
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, *sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if err := s.loadScheduleRepos(ctx, s.DB, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *Repository) getScheduleWhere(ctx context.Context, q querier, pred sq.Eq) (*models.BackupSchedule, error) {
	query, args, err := s.Builder.Select(scheduleColumns...).From("backup_schedules").Where(pred).ToSql()
	if err != nil {
		return nil, err
	}
	sc, err := scanSchedule(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadScheduleRepos(ctx, q, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// GetSchedule loads one schedule by numeric id.
func (s *Repository) GetSchedule(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	return s.getScheduleWhere(ctx, s.DB, sq.Eq{"id": id})
}

// GetScheduleByCode loads one schedule by its SCH-NNN display code.
func (s *Repository) GetScheduleByCode(ctx context.Context, code string) (*models.BackupSchedule, error) {
	return s.getScheduleWhere(ctx, s.DB, sq.Eq{"schedule_code": code})
}

func scheduleLinks(sc *models.BackupSchedule) []int64 {
	if sc.Scope.IsAll() {
		return nil
	}
	return sc.Scope.IDs
}

// CreateSchedule inserts a schedule. An empty ScheduleID gets the next free SCH-NNN code.
func (s *Repository) CreateSchedule(ctx context.Context, sc *models.BackupSchedule) (*models.BackupSchedule, error) {
	var created *models.BackupSchedule
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		code := sc.ScheduleID
		if code == "" {
			var err error
			if code, err = nextCode(ctx, tx, "backup_schedules", "schedule_code", scheduleCodePrefix, 1, 3); err != nil {
				return err
			}
		}
		mode := sc.Scope.Mode
		if mode == "" {
			mode = models.ScopeAll
		}

		query, args, err := s.Builder.Insert("backup_schedules").Columns(scheduleColumns[1:]...).Values(
			code, sc.Name, sc.Type, sc.Frequency, sc.Time, sc.Retention, sc.Status, mode,
			nullTime(sc.LastRunAt), utcNow(),
		).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "schedule_repositories", "schedule_id", "repository_id", id, scheduleLinks(sc)); err != nil {
			return err
		}
		created, err = s.getScheduleWhere(ctx, tx, sq.Eq{"id": id})
		return err
	})
	return created, err
}

// SaveSchedule overwrites a schedule and its repository scope.
func (s *Repository) SaveSchedule(ctx context.Context, sc *models.BackupSchedule) (*models.BackupSchedule, error) {
	var saved *models.BackupSchedule
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		mode := sc.Scope.Mode
		if mode == "" {
			mode = models.ScopeAll
		}
		query, args, err := s.Builder.Update("backup_schedules").SetMap(map[string]any{
			"name":       sc.Name,
			"type":       sc.Type,
			"frequency":  sc.Frequency,
			"time":       sc.Time,
			"retention":  sc.Retention,
			"status":     sc.Status,
			"scope_mode": mode,
		}).Where(sq.Eq{"id": sc.ID}).ToSql()
		if err != nil {
			return err
		}
		if err := s.execAffecting(ctx, tx, query, args...); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "schedule_repositories", "schedule_id", "repository_id", sc.ID, scheduleLinks(sc)); err != nil {
			return err
		}
		saved, err = s.getScheduleWhere(ctx, tx, sq.Eq{"id": sc.ID})
		return err
	})
	return saved, err
}

// DeleteSchedule removes a schedule.
func (s *Repository) DeleteSchedule(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM backup_schedules WHERE id = ?", id)
}

// MarkScheduleRun records when a schedule last produced a backup.
func (s *Repository) MarkScheduleRun(ctx context.Context, id int64, at time.Time) error {
	return s.execAffecting(ctx, s.DB, "UPDATE backup_schedules SET last_run_at = ? WHERE id = ?", at.UTC(), id)
}
