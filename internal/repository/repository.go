// filepath: internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"scmdash/internal/config"
	"scmdash/internal/db/migrations"
	"scmdash/internal/logging"

	sq "github.com/Masterminds/squirrel"
	"github.com/patrickmn/go-cache"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrAccountExists is returned when trying to create an account that already exists.
	ErrAccountExists = errors.New("account already exists")
)

// Repository is the SQLite-backed store for every console resource.
type Repository struct {
	DB      *sql.DB
	Cache   *cache.Cache
	Builder sq.StatementBuilderType
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewRepository opens the SQLite database named in the config.
func NewRepository(cfg *config.Config) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", cfg.Database.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Log.Debugf("Repository: opened database at %s", cfg.Database.Path)
	return &Repository{
		DB:      db,
		Cache:   cache.New(5*time.Minute, 10*time.Minute),
		Builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Close closes the underlying database.
func (s *Repository) Close() error {
	return s.DB.Close()
}

func (s *Repository) hasVersionTable() (bool, error) {
	var name string
	err := s.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='goose_db_version'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// EnsureSchemaBootstrapped applies all migrations to a brand new database.
// A database that already carries a goose version table is left untouched.
func (s *Repository) EnsureSchemaBootstrapped() error {
	exists, err := s.hasVersionTable()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists {
		return nil
	}

	logging.Log.Info("Fresh database detected. Applying schema migrations.")
	if err := migrations.Setup(); err != nil {
		return err
	}
	if err := goose.Up(s.DB, migrations.Dir); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}

// ValidateSchema checks that the database is at the latest embedded migration.
func (s *Repository) ValidateSchema() error {
	if err := migrations.Setup(); err != nil {
		return err
	}
	all, err := goose.CollectMigrations(migrations.Dir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	last, err := all.Last()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	exists, err := s.hasVersionTable()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	var current int64
	if exists {
		if current, err = goose.GetDBVersion(s.DB); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	if current < last.Version {
		return fmt.Errorf("database schema is outdated (current: %d, required: %d); run 'scmdash migrate up'", current, last.Version)
	}
	return nil
}

// withTx runs fn inside a transaction and commits when it returns nil.
func (s *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// utcNow is used for every stored timestamp so that text comparisons in SQL order correctly.
func utcNow() time.Time {
	return time.Now().UTC()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// listIDs loads a join table column for one owner id.
func listIDs(ctx context.Context, q querier, query string, ownerID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, ownerID)
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

// replaceLinks rewrites a join table for one owner.
func replaceLinks(ctx context.Context, tx *sql.Tx, table, ownerCol, otherCol string, ownerID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, ownerCol), ownerID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	insert := sq.Insert(table).Columns(ownerCol, otherCol)
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		insert = insert.Values(ownerID, id)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// likePattern builds a case-insensitive LIKE pattern for a free-text search.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
