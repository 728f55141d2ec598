// Package testutil provides shared helpers for the PostgreSQL integration
// tests. Helpers that read TEST_DATABASE_URL skip the calling test when it is
// unset, so `go test ./...` runs without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/libris/internal/repo"
	"github.com/pkordes/libris/migrations"
)

// DSNEnv names the variable that opts a test run into the Postgres suites.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a *pgxpool.Pool on TEST_DATABASE_URL, closed when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return NewPoolFor(t, RequireDSN(t))
}

// NewPoolFor is NewPool for an explicit DSN, e.g. one handed out by a container.
func NewPoolFor(t *testing.T, dsn string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTxStore returns a Postgres repo.Store running inside a transaction on
// pool. The transaction is rolled back when the test ends, so every test sees
// only the rows it wrote itself.
func NewTxStore(t *testing.T, pool *pgxpool.Pool) repo.Store {
	t.Helper()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTxStore: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	return repo.NewPostgresStore(tx)
}

// NewSQLDB opens a database/sql handle on TEST_DATABASE_URL through the pgx
// driver, for goose. It is closed when the test ends.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQL(context.Background(), RequireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MigrateUp applies every pending migration to the database at dsn. It takes
// no *testing.T so TestMain can call it.
func MigrateUp(ctx context.Context, dsn string) ([]*goose.MigrationResult, error) {
	db, err := openSQL(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	defer db.Close()

	p, err := migrations.NewProvider(db)
	if err != nil {
		return nil, fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	return results, nil
}

func openSQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// RequireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func RequireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
