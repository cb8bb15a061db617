// filepath: internal/repository/git_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"scmdash/internal/logging"
	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

// ErrBackupExists is returned when a Git repository already has its backup record.
var ErrBackupExists = errors.New("backup already exists for repository")

var gitUserColumns = []string{"id", "employee_id", "username", "group_name", "role"}

var gitRepositoryColumns = []string{
	"r.id", "r.project_name", "r.department", "r.git_url", "r.ssh_url", "r.created_date",
	"COALESCE(u.username, '')",
}

var gitBackupColumns = []string{
	"b.id", "b.repository_id", "r.project_name", "r.department", "b.backup_status", "b.last_backup_time",
}

func scanGitUser(row interface{ Scan(...any) error }) (*models.GitUser, error) {
	var u models.GitUser
	if err := row.Scan(&u.ID, &u.EmployeeID, &u.Username, &u.GroupName, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanGitRepository(row interface{ Scan(...any) error }) (*models.GitRepository, error) {
	var (
		r           models.GitRepository
		createdDate sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.ProjectName, &r.Department, &r.GitURL, &r.SSHURL, &createdDate,
		&r.CreatedByUsername); err != nil {
		return nil, err
	}
	r.CreatedDate = timePtr(createdDate)
	return &r, nil
}

func scanGitBackup(row interface{ Scan(...any) error }) (*models.GitBackup, error) {
	var (
		b          models.GitBackup
		lastBackup sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.RepositoryID, &b.RepositoryName, &b.Department, &b.BackupStatus,
		&lastBackup); err != nil {
		return nil, err
	}
	b.LastBackupTime = timePtr(lastBackup)
	return &b, nil
}

// ListGitUsers returns every Git user ordered by id.
func (s *Repository) ListGitUsers(ctx context.Context) ([]models.GitUser, error) {
	query, args, err := s.Builder.Select(gitUserColumns...).From("git_users").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.GitUser, 0)
	for rows.Next() {
		u, err := scanGitUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetGitUser loads one Git user.
func (s *Repository) GetGitUser(ctx context.Context, id int64) (*models.GitUser, error) {
	query, args, err := s.Builder.Select(gitUserColumns...).From("git_users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanGitUser(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// GitEmployeeIDTaken reports whether another Git user (not exceptID) holds employeeID.
func (s *Repository) GitEmployeeIDTaken(ctx context.Context, employeeID string, exceptID int64) (bool, error) {
	return s.taken(ctx, "git_users", "employee_id", employeeID, exceptID)
}

// GitUsernameTaken reports whether another Git user (not exceptID) holds username.
func (s *Repository) GitUsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	return s.taken(ctx, "git_users", "username", username, exceptID)
}

// CreateGitUser inserts a Git user and returns it with its id.
func (s *Repository) CreateGitUser(ctx context.Context, u *models.GitUser) (*models.GitUser, error) {
	query, args, err := s.Builder.Insert("git_users").Columns(gitUserColumns[1:]...).
		Values(u.EmployeeID, u.Username, u.GroupName, u.Role).ToSql()
	if err != nil {
		return nil, err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	logging.Log.Debugf("CreateGitUser: '%s' created with ID %d", u.Username, id)
	return s.GetGitUser(ctx, id)
}

// UpdateGitUser overwrites a Git user.
func (s *Repository) UpdateGitUser(ctx context.Context, u *models.GitUser) (*models.GitUser, error) {
	query, args, err := s.Builder.Update("git_users").SetMap(map[string]any{
		"employee_id": u.EmployeeID,
		"username":    u.Username,
		"group_name":  u.GroupName,
		"role":        u.Role,
	}).Where(sq.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return nil, err
	}
	if err := s.execAffecting(ctx, s.DB, query, args...); err != nil {
		return nil, err
	}
	return s.GetGitUser(ctx, u.ID)
}

// DeleteGitUser removes a Git user. Repositories it created keep an empty creator.
func (s *Repository) DeleteGitUser(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM git_users WHERE id = ?", id)
}

// countGrouped runs a two-column "key, COUNT(*)" query.
func (s *Repository) countGrouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// CountGitUsersByRole returns the number of Git users per role. Roles without users are absent.
func (s *Repository) CountGitUsersByRole(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, "SELECT role, COUNT(*) FROM git_users GROUP BY role")
}

// CountGitRepositoriesByDepartment returns the number of Git repositories per department.
func (s *Repository) CountGitRepositoriesByDepartment(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, "SELECT department, COUNT(*) FROM git_repositories GROUP BY department")
}

// CountGitBackupsByStatus returns the number of Git backups per state. States without backups are absent.
func (s *Repository) CountGitBackupsByStatus(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, "SELECT backup_status, COUNT(*) FROM git_backups GROUP BY backup_status")
}

// CountGit returns the Git user and repository totals.
func (s *Repository) CountGit(ctx context.Context) (users, repos int, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM git_users), (SELECT COUNT(*) FROM git_repositories)").Scan(&users, &repos)
	return users, repos, err
}

func (s *Repository) selectGitRepositories() sq.SelectBuilder {
	return s.Builder.Select(gitRepositoryColumns...).
		From("git_repositories r").
		LeftJoin("git_users u ON u.id = r.created_by").
		OrderBy("r.id")
}

func (s *Repository) loadGitMembers(ctx context.Context, q querier, r *models.GitRepository) error {
	rows, err := q.QueryContext(ctx,
		"SELECT employee_id FROM git_repository_members WHERE repository_id = ? ORDER BY rowid", r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	r.Members = make([]string, 0)
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return err
		}
		r.Members = append(r.Members, m)
	}
	return rows.Err()
}

func (s *Repository) queryGitRepositories(ctx context.Context, q sq.SelectBuilder) ([]models.GitRepository, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	repos := make([]models.GitRepository, 0)
	for rows.Next() {
		r, err := scanGitRepository(rows)
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
		if err := s.loadGitMembers(ctx, s.DB, &repos[i]); err != nil {
			return nil, err
		}
	}
	return repos, nil
}

// ListGitRepositories returns Git repositories, optionally narrowed by a
// case-insensitive match on the project name.
func (s *Repository) ListGitRepositories(ctx context.Context, search string) ([]models.GitRepository, error) {
	q := s.selectGitRepositories()
	if search != "" {
		q = q.Where(sq.Like{"lower(r.project_name)": likePattern(search)})
	}
	return s.queryGitRepositories(ctx, q)
}

func (s *Repository) getGitRepository(ctx context.Context, q querier, id int64) (*models.GitRepository, error) {
	query, args, err := s.selectGitRepositories().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	r, err := scanGitRepository(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadGitMembers(ctx, q, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetGitRepository loads one Git repository with its members.
func (s *Repository) GetGitRepository(ctx context.Context, id int64) (*models.GitRepository, error) {
	return s.getGitRepository(ctx, s.DB, id)
}

func replaceGitMembers(ctx context.Context, tx *sql.Tx, repoID int64, members []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM git_repository_members WHERE repository_id = ?", repoID); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	insert := sq.Insert("git_repository_members").Columns("repository_id", "employee_id")
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		insert = insert.Values(repoID, m)
	}
	if len(seen) == 0 {
		return nil
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// creatorID resolves a Git username to its id. An unknown name yields NULL.
func creatorID(username string) any {
	return sq.Expr("(SELECT id FROM git_users WHERE username = ?)", username)
}

// CreateGitRepository inserts a Git repository and its members in one transaction.
func (s *Repository) CreateGitRepository(ctx context.Context, r *models.GitRepository) (*models.GitRepository, error) {
	var created *models.GitRepository
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Insert("git_repositories").
			Columns("project_name", "department", "git_url", "ssh_url", "created_date", "created_by").
			Values(r.ProjectName, r.Department, r.GitURL, r.SSHURL, nullTime(r.CreatedDate), creatorID(r.CreatedByUsername)).
			ToSql()
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
		if err := replaceGitMembers(ctx, tx, id, r.Members); err != nil {
			return err
		}
		created, err = s.getGitRepository(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Log.Debugf("CreateGitRepository: '%s' created with ID %d", created.ProjectName, created.ID)
	return created, nil
}

// UpdateGitRepository overwrites a Git repository and its members.
func (s *Repository) UpdateGitRepository(ctx context.Context, r *models.GitRepository) (*models.GitRepository, error) {
	var updated *models.GitRepository
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.Builder.Update("git_repositories").SetMap(map[string]any{
			"project_name": r.ProjectName,
			"department":   r.Department,
			"git_url":      r.GitURL,
			"ssh_url":      r.SSHURL,
			"created_date": nullTime(r.CreatedDate),
			"created_by":   creatorID(r.CreatedByUsername),
		}).Where(sq.Eq{"id": r.ID}).ToSql()
		if err != nil {
			return err
		}
		if err := s.execAffecting(ctx, tx, query, args...); err != nil {
			return err
		}
		if err := replaceGitMembers(ctx, tx, r.ID, r.Members); err != nil {
			return err
		}
		updated, err = s.getGitRepository(ctx, tx, r.ID)
		return err
	})
	return updated, err
}

// DeleteGitRepository removes a Git repository with its members and backup.
func (s *Repository) DeleteGitRepository(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM git_repositories WHERE id = ?", id)
}

func (s *Repository) selectGitBackups() sq.SelectBuilder {
	return s.Builder.Select(gitBackupColumns...).
		From("git_backups b").
		Join("git_repositories r ON r.id = b.repository_id").
		OrderBy("b.id")
}

func (s *Repository) queryGitBackups(ctx context.Context, q sq.SelectBuilder) ([]models.GitBackup, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	backups := make([]models.GitBackup, 0)
	for rows.Next() {
		b, err := scanGitBackup(rows)
		if err != nil {
			return nil, err
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

// ListGitBackups returns Git backups, optionally narrowed to one state.
func (s *Repository) ListGitBackups(ctx context.Context, status string) ([]models.GitBackup, error) {
	q := s.selectGitBackups()
	if status != "" {
		q = q.Where(sq.Eq{"b.backup_status": status})
	}
	return s.queryGitBackups(ctx, q)
}

func (s *Repository) getGitBackupWhere(ctx context.Context, pred sq.Eq) (*models.GitBackup, error) {
	query, args, err := s.selectGitBackups().Where(pred).ToSql()
	if err != nil {
		return nil, err
	}
	b, err := scanGitBackup(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetGitBackup loads one Git backup.
func (s *Repository) GetGitBackup(ctx context.Context, id int64) (*models.GitBackup, error) {
	return s.getGitBackupWhere(ctx, sq.Eq{"b.id": id})
}

// GetGitBackupByRepository loads the backup of a Git repository.
func (s *Repository) GetGitBackupByRepository(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	return s.getGitBackupWhere(ctx, sq.Eq{"b.repository_id": repoID})
}

// CreateGitBackup inserts the backup record of a Git repository.
func (s *Repository) CreateGitBackup(ctx context.Context, b *models.GitBackup) (*models.GitBackup, error) {
	query, args, err := s.Builder.Insert("git_backups").
		Columns("repository_id", "backup_status", "last_backup_time").
		Values(b.RepositoryID, b.BackupStatus, nullTime(b.LastBackupTime)).ToSql()
	if err != nil {
		return nil, err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrBackupExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetGitBackup(ctx, id)
}

// UpdateGitBackup overwrites a Git backup, including the repository it belongs to.
func (s *Repository) UpdateGitBackup(ctx context.Context, b *models.GitBackup) (*models.GitBackup, error) {
	query, args, err := s.Builder.Update("git_backups").SetMap(map[string]any{
		"repository_id":    b.RepositoryID,
		"backup_status":    b.BackupStatus,
		"last_backup_time": nullTime(b.LastBackupTime),
	}).Where(sq.Eq{"id": b.ID}).ToSql()
	if err != nil {
		return nil, err
	}
	if err := s.execAffecting(ctx, s.DB, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrBackupExists
		}
		return nil, err
	}
	return s.GetGitBackup(ctx, b.ID)
}

// RecordGitBackupRun marks the backup of a Git repository COMPLETE at now,
// creating the record when the repository has none yet.
func (s *Repository) RecordGitBackupRun(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	query, args, err := s.Builder.Insert("git_backups").
		Columns("repository_id", "backup_status", "last_backup_time").
		Values(repoID, models.GitBackupComplete, utcNow()).
		Suffix("ON CONFLICT(repository_id) DO UPDATE SET backup_status = excluded.backup_status, last_backup_time = excluded.last_backup_time").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return s.GetGitBackupByRepository(ctx, repoID)
}
