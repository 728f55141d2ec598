// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the migrate command and server
// bootstrap.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose instead of relying on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS

// NewProvider returns a goose provider for the embedded Postgres migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.NewProvider: %w", err)
	}
	return p, nil
}
