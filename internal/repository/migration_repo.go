// filepath: internal/repository/migration_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var migrationColumns = []string{
	"id", "name", "description", "size", "status", "progress", "started_date",
	"completed_date", "estimated_time", "assigned_to", "color_code", "repository_id",
}

func scanMigration(row interface{ Scan(...any) error }) (*models.Migration, error) {
	var (
		m         models.Migration
		started   sql.NullTime
		completed sql.NullTime
		repoID    sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Size, &m.Status, &m.Progress, &started,
		&completed, &m.EstimatedTime, &m.AssignedTo, &m.ColorCode, &repoID); err != nil {
		return nil, err
	}
	m.StartedDate = timePtr(started)
	m.CompletedDate = timePtr(completed)
	if repoID.Valid {
		id := repoID.Int64
		m.RepositoryID = &id
	}
	return &m, nil
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// ListMigrations returns migrations matching the filter, ordered by id.
func (s *Repository) ListMigrations(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error) {
	q := s.Builder.Select(migrationColumns...).From("migrations").OrderBy("id")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.AssignedTo != "" {
		q = q.Where(sq.Eq{"assigned_to": f.AssignedTo})
	}
	if f.RepositoryID != 0 {
		q = q.Where(sq.Eq{"repository_id": f.RepositoryID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Migration, 0)
	for rows.Next() {
		m, err := scanMigration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func (s *Repository) getMigration(ctx context.Context, q querier, id int64) (*models.Migration, error) {
	query, args, err := s.Builder.Select(migrationColumns...).From("migrations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMigration(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// GetMigration loads one migration.
func (s *Repository) GetMigration(ctx context.Context, id int64) (*models.Migration, error) {
	return s.getMigration(ctx, s.DB, id)
}

// writeThrough copies a linked migration's state onto its repository.
func (s *Repository) writeThrough(ctx context.Context, q querier, m *models.Migration) error {
	if m.RepositoryID == nil {
		return nil
	}
	status, progress := models.RepositoryTrack(m.Status, m.Progress)
	return s.setRepositoryMigration(ctx, q, *m.RepositoryID, status, progress)
}

// CreateMigration inserts a migration and, when linked, updates its repository in the same transaction.
func (s *Repository) CreateMigration(ctx context.Context, m *models.Migration) (*models.Migration, error) {
	var created *models.Migration
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Insert("migrations").Columns(migrationColumns[1:]...).Values(
			m.Name, m.Description, m.Size, m.Status, m.Progress, nullTime(m.StartedDate),
			nullTime(m.CompletedDate), m.EstimatedTime, m.AssignedTo, m.ColorCode, nullID(m.RepositoryID),
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
		if created, err = s.getMigration(ctx, tx, id); err != nil {
			return err
		}
		return s.writeThrough(ctx, tx, created)
	})
	return created, err
}

// SaveMigration overwrites a migration and, when linked, its repository track.
func (s *Repository) SaveMigration(ctx context.Context, m *models.Migration) (*models.Migration, error) {
	var saved *models.Migration
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Update("migrations").SetMap(map[string]any{
			"name":           m.Name,
			"description":    m.Description,
			"size":           m.Size,
			"status":         m.Status,
			"progress":       m.Progress,
			"started_date":   nullTime(m.StartedDate),
			"completed_date": nullTime(m.CompletedDate),
			"estimated_time": m.EstimatedTime,
			"assigned_to":    m.AssignedTo,
			"color_code":     m.ColorCode,
			"repository_id":  nullID(m.RepositoryID),
		}).Where(sq.Eq{"id": m.ID}).ToSql()
		if err != nil {
			return err
		}
		if err := s.execAffecting(ctx, tx, query, args...); err != nil {
			return err
		}
		if saved, err = s.getMigration(ctx, tx, m.ID); err != nil {
			return err
		}
		return s.writeThrough(ctx, tx, saved)
	})
	return saved, err
}

// DeleteMigration removes a migration record. The repository keeps its last known track.
func (s *Repository) DeleteMigration(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM migrations WHERE id = ?", id)
}

// LinkedMigrationExists reports whether any migration points at the repository.
func (s *Repository) LinkedMigrationExists(ctx context.Context, repositoryID int64) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE repository_id = ?", repositoryID).Scan(&n)
	return n > 0, err
}
