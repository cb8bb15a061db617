// filepath: internal/repository/activity_repo.go
package repository

import (
	"context"
	"time"

	"scmdash/internal/models"
)

// RecordActivity stores one activity feed entry.
func (s *Repository) RecordActivity(ctx context.Context, a models.Activity) error {
	if a.Time.IsZero() {
		a.Time = utcNow()
	}
	query, args, err := s.Builder.Insert("activities").
		Columns("id", "actor", "action", "resource", "created_at").
		Values(a.ID, a.User, a.Action, a.Resource, a.Time.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, query, args...)
	return err
}

// RecentActivity returns the newest entries first.
func (s *Repository) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	query, args, err := s.Builder.Select("id", "actor", "action", "resource", "created_at").
		From("activities").OrderBy("created_at DESC", "id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Activity, 0, limit)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.User, &a.Action, &a.Resource, &a.Time); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// PurgeActivityBefore removes entries older than cutoff.
func (s *Repository) PurgeActivityBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM activities WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
