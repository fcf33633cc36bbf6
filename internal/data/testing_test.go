package data

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestModels opens a fresh SQLite catalog in a temp dir.
func newTestModels(t *testing.T) (Models, *sql.DB) {
	t.Helper()

	dialect, err := NewDialect(SQLite)
	require.NoError(t, err)

	db, err := Open(dialect, filepath.Join(t.TempDir(), "catalog.db"), PoolConfig{})
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db, dialect))

	return NewModels(db, dialect), db
}

func insertBook(t *testing.T, m Models, book *Book) *Book {
	t.Helper()

	require.NoError(t, m.Books.Insert(context.Background(), book))
	stored, err := m.Books.Get(context.Background(), book.ID)
	require.NoError(t, err)
	return stored
}

func insertBookmark(t *testing.T, m Models, bm *Bookmark) *Bookmark {
	t.Helper()

	require.NoError(t, m.Bookmarks.Insert(context.Background(), bm))
	stored, err := m.Bookmarks.Get(context.Background(), bm.ID)
	require.NoError(t, err)
	return stored
}

func ptr[T any](v T) *T { return &v }

func bookTitles(books []*Book) []string {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}
	return titles
}
