// filepath: internal/db/migrations/embed.go
package migrations

import (
	"embed"

	"github.com/pressly/goose/v3"
)

// FS embeds all SQL migration files in this directory.
//
//go:embed *.sql
var FS embed.FS

// Dir is the goose migration directory inside FS.
const Dir = "."

// Setup points goose at the embedded migrations and the sqlite dialect.
func Setup() error {
	goose.SetBaseFS(FS)
	return goose.SetDialect("sqlite3")
}
