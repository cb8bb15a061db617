// filepath: internal/repository/migration_test.go
package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSchema(t *testing.T) {
	repo := newTestRepo(t)

	// A new DB needs migration.
	err := repo.ValidateSchema()
	assert.Error(t, err, "Fresh DB should be considered outdated")
	assert.Contains(t, err.Error(), "database schema is outdated")

	applyTestMigrations(t, repo)

	err = repo.ValidateSchema()
	assert.NoError(t, err, "DB should be valid after applying migrations")
}

func TestEnsureSchemaBootstrapped(t *testing.T) {
	t.Run("Fresh Database", func(t *testing.T) {
		repo := newTestRepo(t)

		err := repo.EnsureSchemaBootstrapped()
		assert.NoError(t, err)

		err = repo.ValidateSchema()
		assert.NoError(t, err, "Fresh DB should be fully migrated after bootstrap")

		var tableName string
		err = repo.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='repositories'").Scan(&tableName)
		assert.NoError(t, err)
		assert.Equal(t, "repositories", tableName)
	})

	t.Run("Existing Database (Skip)", func(t *testing.T) {
		repo := newTestRepo(t)

		// An existing version table means the operator owns migrations.
		_, err := repo.DB.Exec("CREATE TABLE goose_db_version (id INTEGER PRIMARY KEY, version_id INTEGER, is_applied BOOLEAN, tstamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP);")
		assert.NoError(t, err)

		err = repo.EnsureSchemaBootstrapped()
		assert.NoError(t, err)

		var name string
		err = repo.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='repositories'").Scan(&name)
		assert.Error(t, err, "Bootstrap should have skipped migration")

		err = repo.ValidateSchema()
		assert.Error(t, err)
	})
}
