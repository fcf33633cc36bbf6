package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookshelf/internal/data"
)

// newTestApplication wires the application to a fresh SQLite catalog with the
// rate limiter off and logs discarded.
func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()

	dialect, err := data.NewDialect(data.SQLite)
	require.NoError(t, err)

	db, err := data.Open(dialect, filepath.Join(t.TempDir(), "api.db"), data.PoolConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, data.Migrate(context.Background(), db, dialect))

	cfg := defaultConfig()
	cfg.environment = "testing"
	cfg.limiter.enabled = false

	return &applicationDependencies{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.NewModels(db, dialect),
	}
}

type testResponse struct {
	status int
	header http.Header
	body   []byte
}

func (tr testResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(tr.body, dst), "body: %s", tr.body)
}

func (tr testResponse) errorMessage(t *testing.T) string {
	t.Helper()

	var body map[string]string
	tr.decode(t, &body)
	return body["error"]
}

// do sends one request through the full middleware chain.
func do(t *testing.T, h http.Handler, method, target, body string) testResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return testResponse{status: res.StatusCode, header: res.Header, body: raw}
}

func createBook(t *testing.T, h http.Handler, body string) data.Book {
	t.Helper()

	res := do(t, h, http.MethodPost, "/api/books", body)
	require.Equal(t, http.StatusCreated, res.status, "body: %s", res.body)

	var book data.Book
	res.decode(t, &book)
	return book
}

func createBookmark(t *testing.T, h http.Handler, body string) data.Bookmark {
	t.Helper()

	res := do(t, h, http.MethodPost, "/api/bookmarks", body)
	require.Equal(t, http.StatusCreated, res.status, "body: %s", res.body)

	var bm data.Bookmark
	res.decode(t, &bm)
	return bm
}

func titles(books []data.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}
