package gormstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/domain"
	"github.com/pkordes/libris/internal/repo"
	"github.com/pkordes/libris/internal/repo/gormstore"
	"github.com/pkordes/libris/internal/repo/repotest"
)

// newSQLiteStore opens a Store on a fresh SQLite file in the test's temp dir.
func newSQLiteStore(t *testing.T) *gormstore.Store {
	t.Helper()
	s, err := gormstore.Open(gormstore.DriverSQLite, filepath.Join(t.TempDir(), "libris.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Conformance(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repo.Store {
		return newSQLiteStore(t)
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := gormstore.Open("oracle", "whatever")

	require.Error(t, err)
	assert.ErrorContains(t, err, "oracle")
}

// TestSQLiteStore_SurvivesReopen checks that data and id counters persist in
// the database file rather than in the Store value.
func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libris.db")
	ctx := context.Background()

	first, err := gormstore.Open(gormstore.DriverSQLite, path)
	require.NoError(t, err)
	created, err := first.CreateBook(ctx, domain.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	require.NoError(t, first.DeleteBook(ctx, created.ID))
	require.NoError(t, first.Close())

	second, err := gormstore.Open(gormstore.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	next, err := second.CreateBook(ctx, domain.Book{Title: "Emma", Author: "Austen"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID, "AUTOINCREMENT must not hand out a deleted id")
}
