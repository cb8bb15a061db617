// filepath: internal/repository/backup_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

const (
	backupCodePrefix   = "BKP-"
	firstBackupNumber  = 2000
	scheduleCodePrefix = "SCH-"
)

var backupColumns = []string{
	"id", "backup_code", "date", "type", "status", "size", "duration",
	"initiated_by", "notes", "logs", "scope_mode",
}

func scanBackup(row interface{ Scan(...any) error }) (*models.Backup, error) {
	var b models.Backup
	if err := row.Scan(&b.ID, &b.BackupID, &b.Date, &b.Type, &b.Status, &b.Size, &b.Duration,
		&b.InitiatedBy, &b.Notes, &b.Logs, &b.Scope.Mode); err != nil {
		return nil, err
	}
	return &b, nil
}

// loadBackupRepos fills RepositoryIDs, Scope.IDs and the repos label.
func (s *Repository) loadBackupRepos(ctx context.Context, q querier, b *models.Backup) error {
	ids, err := listIDs(ctx, q, "SELECT repository_id FROM backup_repositories WHERE backup_id = ? ORDER BY repository_id", b.ID)
	if err != nil {
		return err
	}
	names, _, err := repositoryNames(ctx, s.Builder, q, ids)
	if err != nil {
		return err
	}
	b.RepositoryIDs = ids
	b.Scope.IDs = []int64{}
	if !b.Scope.IsAll() {
		b.Scope.IDs = ids
	}
	b.Repos = models.ScopeLabel(b.Scope, names)
	return nil
}

func (s *Repository) queryBackups(ctx context.Context, q sq.SelectBuilder) ([]models.Backup, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	list := make([]models.Backup, 0)
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if err := s.loadBackupRepos(ctx, s.DB, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListBackups returns backups matching the filter, newest first.
func (s *Repository) ListBackups(ctx context.Context, f models.BackupFilter) ([]models.Backup, error) {
	q := s.Builder.Select(backupColumns...).From("backups").OrderBy("date DESC", "id DESC")
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": f.Type})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.RepositoryID != 0 {
		q = q.Where("id IN (SELECT backup_id FROM backup_repositories WHERE repository_id = ?)", f.RepositoryID)
	}
	return s.queryBackups(ctx, q)
}

func (s *Repository) getBackupWhere(ctx context.Context, q querier, pred sq.Eq) (*models.Backup, error) {
	query, args, err := s.Builder.Select(backupColumns...).From("backups").Where(pred).ToSql()
	if err != nil {
		return nil, err
	}
	b, err := scanBackup(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadBackupRepos(ctx, q, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBackup loads one backup by numeric id.
func (s *Repository) GetBackup(ctx context.Context, id int64) (*models.Backup, error) {
	return s.getBackupWhere(ctx, s.DB, sq.Eq{"id": id})
}

// GetBackupByCode loads one backup by its BKP-NNNN display code.
func (s *Repository) GetBackupByCode(ctx context.Context, code string) (*models.Backup, error) {
	return s.getBackupWhere(ctx, s.DB, sq.Eq{"backup_code": code})
}

// GetLastFullBackup returns the newest completed Full backup.
func (s *Repository) GetLastFullBackup(ctx context.Context) (*models.Backup, error) {
	q := s.Builder.Select(backupColumns...).From("backups").
		Where(sq.Eq{"type": models.BackupFull, "status": models.BackupComplete}).
		OrderBy("date DESC").Limit(1)
	list, err := s.queryBackups(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// nextCode returns prefix + (highest existing number + 1), at least first.
func nextCode(ctx context.Context, q querier, table, column, prefix string, first, width int) (string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", column, table))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	next := first
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", prefix, width, next), nil
}

// CreateBackup inserts a backup, links its repositories and marks them In Progress.
// A backup with an empty BackupID gets the next free BKP-NNNN code.
func (s *Repository) CreateBackup(ctx context.Context, b *models.Backup, repositoryIDs []int64) (*models.Backup, error) {
	var created *models.Backup
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		code := b.BackupID
		if code == "" {
			var err error
			if code, err = nextCode(ctx, tx, "backups", "backup_code", backupCodePrefix, firstBackupNumber, 4); err != nil {
				return err
			}
		}
		mode := b.Scope.Mode
		if mode == "" {
			mode = models.ScopeAll
		}

		query, args, err := s.Builder.Insert("backups").Columns(backupColumns[1:]...).Values(
			code, b.Date.UTC(), b.Type, b.Status, b.Size, b.Duration, b.InitiatedBy, b.Notes, b.Logs, mode,
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
		if err := replaceLinks(ctx, tx, "backup_repositories", "backup_id", "repository_id", id, repositoryIDs); err != nil {
			return err
		}
		if err := s.setBackupStatus(ctx, tx, repositoryIDs, b.Status); err != nil {
			return err
		}
		created, err = s.getBackupWhere(ctx, tx, sq.Eq{"id": id})
		return err
	})
	return created, err
}

// SaveBackup writes the mutable backup columns and mirrors the status onto linked repositories.
func (s *Repository) SaveBackup(ctx context.Context, b *models.Backup) (*models.Backup, error) {
	var saved *models.Backup
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Update("backups").SetMap(map[string]any{
			"date":     b.Date.UTC(),
			"status":   b.Status,
			"size":     b.Size,
			"duration": b.Duration,
			"notes":    b.Notes,
			"logs":     b.Logs,
		}).Where(sq.Eq{"id": b.ID}).ToSql()
		if err != nil {
			return err
		}
		if err := s.execAffecting(ctx, tx, query, args...); err != nil {
			return err
		}
		if saved, err = s.getBackupWhere(ctx, tx, sq.Eq{"id": b.ID}); err != nil {
			return err
		}
		return s.setBackupStatus(ctx, tx, saved.RepositoryIDs, saved.Status)
	})
	return saved, err
}

// DeleteBackup removes a backup record.
func (s *Repository) DeleteBackup(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM backups WHERE id = ?", id)
}

// ListStaleBackups returns In Progress backups whose date is before cutoff.
func (s *Repository) ListStaleBackups(ctx context.Context, cutoff time.Time) ([]models.Backup, error) {
	q := s.Builder.Select(backupColumns...).From("backups").
		Where(sq.Eq{"status": models.BackupInProgress}).
		Where(sq.Lt{"date": cutoff.UTC()}).
		OrderBy("date")
	return s.queryBackups(ctx, q)
}
