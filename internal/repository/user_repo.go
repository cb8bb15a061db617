// filepath: internal/repository/user_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"scmdash/internal/logging"
	"scmdash/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{
	"id", "username", "full_name", "email", "role", "status", "user_group",
	"initials", "color_code", "last_activity", "created_at",
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u            models.User
		lastActivity sql.NullTime
		createdAt    sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.Status, &u.Group,
		&u.Initials, &u.ColorCode, &lastActivity, &createdAt); err != nil {
		return nil, err
	}
	u.LastActivity = timePtr(lastActivity)
	u.CreatedAt = timePtr(createdAt)
	return &u, nil
}

// ListUsers returns SCM users matching the filter, ordered by id.
func (s *Repository) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	q := s.Builder.Select(userColumns...).From("users").OrderBy("id")
	if f.Role != "" {
		q = q.Where(sq.Eq{"role": f.Role})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Group != "" {
		q = q.Where(sq.Eq{"user_group": f.Group})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(sq.Or{
			sq.Like{"lower(username)": p},
			sq.Like{"lower(full_name)": p},
			sq.Like{"lower(email)": p},
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
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUser loads a single SCM user.
func (s *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := s.Builder.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// UserUsernameTaken reports whether another user (not exceptID) owns username.
func (s *Repository) UserUsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	return s.taken(ctx, "users", "username", username, exceptID)
}

// UserEmailTaken reports whether another user (not exceptID) owns email.
func (s *Repository) UserEmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	return s.taken(ctx, "users", "email", email, exceptID)
}

func (s *Repository) taken(ctx context.Context, table, column, value string, exceptID int64) (bool, error) {
	query, args, err := s.Builder.Select("COUNT(*)").From(table).
		Where(sq.Eq{column: value}).Where(sq.NotEq{"id": exceptID}).ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser inserts a user and returns it with its id.
func (s *Repository) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	created := utcNow()
	query, args, err := s.Builder.Insert("users").Columns(userColumns[1:]...).Values(
		u.Username, u.FullName, u.Email, u.Role, u.Status, u.Group,
		u.Initials, u.ColorCode, nullTime(u.LastActivity), created,
	).ToSql()
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
	logging.Log.Debugf("CreateUser: SCM user '%s' created with ID %d", u.Username, id)
	return s.GetUser(ctx, id)
}

// UpdateUser overwrites every editable column of a user.
func (s *Repository) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	query, args, err := s.Builder.Update("users").SetMap(map[string]any{
		"username":      u.Username,
		"full_name":     u.FullName,
		"email":         u.Email,
		"role":          u.Role,
		"status":        u.Status,
		"user_group":    u.Group,
		"initials":      u.Initials,
		"color_code":    u.ColorCode,
		"last_activity": nullTime(u.LastActivity),
	}).Where(sq.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return nil, err
	}
	if err := s.execAffecting(ctx, s.DB, query, args...); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, u.ID)
}

// UpdateUserStatus changes only the status column and bumps last_activity.
func (s *Repository) UpdateUserStatus(ctx context.Context, id int64, status string) (*models.User, error) {
	err := s.execAffecting(ctx, s.DB,
		"UPDATE users SET status = ?, last_activity = ? WHERE id = ?", status, utcNow(), id)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and its repository memberships.
func (s *Repository) DeleteUser(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, s.DB, "DELETE FROM users WHERE id = ?", id)
}

// CountUsers returns the total and Active user counts.
func (s *Repository) CountUsers(ctx context.Context) (total, active int, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) FROM users",
		models.UserActive).Scan(&total, &active)
	return total, active, err
}

// execAffecting runs a statement and maps "no row touched" to ErrNotFound.
func (s *Repository) execAffecting(ctx context.Context, q querier, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
