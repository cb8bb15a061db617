// filepath: internal/repository/repositories_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"scmdash/internal/logging"
	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var repositoryColumns = []string{
	"id", "name", "description", "size", "backup_status", "migration_status",
	"migration_progress", "last_commit", "last_commit_by", "color_code", "created_date",
}

func scanRepository(row interface{ Scan(...any) error }) (*models.Repository, error) {
	var (
		r           models.Repository
		lastCommit  sql.NullTime
		createdDate sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Size, &r.BackupStatus, &r.MigrationStatus,
		&r.MigrationProgress, &lastCommit, &r.LastCommitBy, &r.ColorCode, &createdDate); err != nil {
		return nil, err
	}
	r.LastCommit = timePtr(lastCommit)
	r.CreatedDate = timePtr(createdDate)
	return &r, nil
}

func (s *Repository) loadMembers(ctx context.Context, q querier, r *models.Repository) error {
	rows, err := q.QueryContext(ctx, `
		SELECT u.id, u.username, u.full_name
		FROM repository_members m JOIN users u ON u.id = m.user_id
		WHERE m.repository_id = ? ORDER BY u.id`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	r.Members = make([]models.Member, 0)
	r.MemberIDs = make([]int64, 0)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.FullName); err != nil {
			return err
		}
		m.DisplayName = m.FullName
		if m.DisplayName == "" {
			m.DisplayName = m.Username
		}
		r.Members = append(r.Members, m)
		r.MemberIDs = append(r.MemberIDs, m.ID)
	}
	return rows.Err()
}

// ListRepositories returns repositories matching the filter, with members, newest first.
func (s *Repository) ListRepositories(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error) {
	q := s.Builder.Select(repositoryColumns...).From("repositories").OrderBy("id DESC")
	if f.BackupStatus != "" {
		q = q.Where(sq.Eq{"backup_status": f.BackupStatus})
	}
	if f.MigrationStatus != "" {
		q = q.Where(sq.Eq{"migration_status": f.MigrationStatus})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(sq.Or{
			sq.Like{"lower(name)": p},
			sq.Like{"lower(description)": p},
			sq.Like{"lower(last_commit_by)": p},
		})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	repos := make([]models.Repository, 0)
	for rows.Next() {
		r, err := scanRepository(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		repos = append(repos, *r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range repos {
		if err := s.loadMembers(ctx, s.DB, &repos[i]); err != nil {
			return nil, err
		}
	}
	return repos, nil
}

func (s *Repository) getRepository(ctx context.Context, q querier, id int64) (*models.Repository, error) {
	query, args, err := s.Builder.Select(repositoryColumns...).From("repositories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	r, err := scanRepository(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadMembers(ctx, q, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRepository loads one repository with its members.
func (s *Repository) GetRepository(ctx context.Context, id int64) (*models.Repository, error) {
	return s.getRepository(ctx, s.DB, id)
}

// RepositoryNameTaken reports whether another repository (not exceptID) is called name.
func (s *Repository) RepositoryNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	return s.taken(ctx, "repositories", "name", name, exceptID)
}

// CreateRepository inserts a repository and its member links in one transaction.
func (s *Repository) CreateRepository(ctx context.Context, r *models.Repository, memberIDs []int64) (*models.Repository, error) {
	var created *models.Repository
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Insert("repositories").Columns(repositoryColumns[1:]...).Values(
			r.Name, r.Description, r.Size, r.BackupStatus, r.MigrationStatus, r.MigrationProgress,
			nullTime(r.LastCommit), r.LastCommitBy, r.ColorCode, utcNow(),
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
		if err := replaceLinks(ctx, tx, "repository_members", "repository_id", "user_id", id, memberIDs); err != nil {
			return err
		}
		created, err = s.getRepository(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Log.Debugf("CreateRepository: '%s' created with ID %d", created.Name, created.ID)
	return created, nil
}

// UpdateRepository overwrites a repository. A nil memberIDs leaves the member links untouched.
func (s *Repository) UpdateRepository(ctx context.Context, r *models.Repository, memberIDs []int64) (*models.Repository, error) {
	var updated *models.Repository
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Update("repositories").SetMap(map[string]any{
			"name":               r.Name,
			"description":        r.Description,
			"size":               r.Size,
			"backup_status":      r.BackupStatus,
			"migration_status":   r.MigrationStatus,
			"migration_progress": r.MigrationProgress,
			"last_commit":        nullTime(r.LastCommit),
			"last_commit_by":     r.LastCommitBy,
			"color_code":         r.ColorCode,
		}).Where(sq.Eq{"id": r.ID}).ToSql()
		if err != nil {
			return err
		}
		if err := s.execAffecting(ctx, tx, query, args...); err != nil {
			return err
		}
		if memberIDs != nil {
			if err := replaceLinks(ctx, tx, "repository_members", "repository_id", "user_id", r.ID, memberIDs); err != nil {
				return err
			}
		}
		updated, err = s.getRepository(ctx, tx, r.ID)
		return err
	})
	return updated, err
}

// SetRepositoryMembers replaces the member list of a repository.
func (s *Repository) SetRepositoryMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error) {
	var updated *models.Repository
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getRepository(ctx, tx, id); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "repository_members", "repository_id", "user_id", id, memberIDs); err != nil {
			return err
		}
		var err error
		updated, err = s.getRepository(ctx, tx, id)
		return err
	})
	return updated, err
}

func (s *Repository) setRepositoryMigration(ctx context.Context, q querier, id int64, status string, progress int) error {
	return s.execAffecting(ctx, q,
		"UPDATE repositories SET migration_status = ?, migration_progress = ? WHERE id = ?", status, progress, id)
}

// SetRepositoryMigration updates the migration track of a repository.
func (s *Repository) SetRepositoryMigration(ctx context.Context, id int64, status string, progress int) (*models.Repository, error) {
	if err := s.setRepositoryMigration(ctx, s.DB, id, status, progress); err != nil {
		return nil, err
	}
	return s.GetRepository(ctx, id)
}

func (s *Repository) setBackupStatus(ctx context.Context, q querier, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := s.Builder.Update("repositories").Set("backup_status", status).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, query, args...)
	return err
}

// SetRepositoriesBackupStatus sets backup_status on every listed repository.
func (s *Repository) SetRepositoriesBackupStatus(ctx context.Context, ids []int64, status string) error {
	return s.setBackupStatus(ctx, s.DB, ids, status)
}

// DeleteRepository removes a repository. Linked migrations keep their record with no repository.
func (s *Repository) DeleteRepository(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM repositories WHERE id = ?", id)
}

// AllRepositoryIDs returns the id of every repository.
func (s *Repository) AllRepositoryIDs(ctx context.Context) ([]int64, error) {
	return allIDs(ctx, s.DB)
}

func allIDs(ctx context.Context, q querier) ([]int64, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM repositories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListRepositoryNames returns the names of the given repositories, in id order.
// Ids that do not exist are reported through missing.
func (s *Repository) ListRepositoryNames(ctx context.Context, ids []int64) (names []string, missing []int64, err error) {
	return repositoryNames(ctx, s.Builder, s.DB, ids)
}

func repositoryNames(ctx context.Context, b sq.StatementBuilderType, q querier, ids []int64) ([]string, []int64, error) {
	names := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return names, nil, nil
	}
	query, args, err := b.Select("id", "name").From("repositories").Where(sq.Eq{"id": ids}).OrderBy("id").ToSql()
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		found[id] = true
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return names, missing, nil
}

// MissingUserIDs returns the ids in the list that match no SCM user.
func (s *Repository) MissingUserIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := s.Builder.Select("id").From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, rows.Err()
}
