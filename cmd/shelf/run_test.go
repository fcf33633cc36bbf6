package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookshelf/internal/client"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, env map[string]string, args ...string) cliResult {
	t.Helper()

	var out, errOut bytes.Buffer
	code := Run(context.Background(), &out, &errOut, append([]string{"shelf"}, args...), env)
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

// bodyRecorder keeps the last request body a handler received.
type bodyRecorder struct {
	mu   sync.Mutex
	body []byte
}

func (br *bodyRecorder) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	br.mu.Lock()
	br.body = body
	br.mu.Unlock()
}

func (br *bodyRecorder) last() string {
	br.mu.Lock()
	defer br.mu.Unlock()
	return string(br.body)
}

// catalogServer serves a two-book catalog. Deletes remove books; creates are
// answered but not stored.
type catalogServer struct {
	*httptest.Server

	lastBody  *bodyRecorder
	listReads atomic.Int32

	mu    sync.Mutex
	books []client.Book
}

func (cs *catalogServer) bookList() []client.Book {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return slices.Clone(cs.books)
}

func newCatalogServer(t *testing.T) (*catalogServer, *bodyRecorder) {
	t.Helper()

	author2 := "Neil Gaiman"
	start := "2024-01-05"
	cs := &catalogServer{
		lastBody: &bodyRecorder{},
		books: []client.Book{
			{ID: 1, Title: "Dune", Year: 1965, Author1: "Frank Herbert"},
			{ID: 2, Title: "Good Omens", Year: 1990, Author1: "Terry Pratchett", Author2: &author2, StartDate: &start},
		},
	}
	books := cs.bookList()
	bookmarks := []client.Bookmark{
		{ID: 9, BookID: 1, Page: 12, Summary: "fear is the mind-killer"},
	}
	lastBody := cs.lastBody

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, _ *http.Request) {
		cs.listReads.Add(1)
		_ = json.NewEncoder(w).Encode(cs.bookList())
	})
	mux.HandleFunc("DELETE /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		cs.mu.Lock()
		cs.books = slices.DeleteFunc(cs.books, func(b client.Book) bool { return b.ID == id })
		cs.mu.Unlock()
		_, _ = io.WriteString(w, `{"success": true}`)
	})
	mux.HandleFunc("GET /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error": "the requested resource could not be found"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(books[0])
	})
	mux.HandleFunc("GET /api/bookmarks", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(bookmarks)
	})
	mux.HandleFunc("POST /api/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		lastBody.record(r)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "book_id must reference an existing book"}`)
	})
	mux.HandleFunc("POST /api/books", func(w http.ResponseWriter, r *http.Request) {
		lastBody.record(r)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(client.Book{ID: 3, Title: "Emma", Year: 1815, Author1: "Jane Austen"})
	})
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(client.SearchResult{Books: books[:1], Bookmarks: bookmarks})
	})

	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs, lastBody
}

func Test_Run_Prints_Usage_When_No_Command(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil)
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Usage: shelf")
	assert.Contains(t, res.stdout, "export -o <file>")
}

func Test_Command_Help_Lists_Its_Flags(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, "rm-book", "--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Usage: shelf rm-book <id> [-l]")
	assert.Contains(t, res.stdout, "--list")

	res = runCLI(t, nil, "rm-book", "--nope")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "rm-book: unknown flag: --nope")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, "shelve")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown command: shelve")
}

func Test_Books_Lists_Catalog_From_Env_Server(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, map[string]string{"SHELF_SERVER": srv.URL}, "books")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t,
		"1\tDune (1965)\tFrank Herbert\n"+
			"2\tGood Omens (1990)\tTerry Pratchett, Neil Gaiman\t2024-01-05..\n",
		res.stdout)
}

func Test_Book_Reports_API_Error(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, nil, "--server", srv.URL, "book", "5")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "the requested resource could not be found")

	res = runCLI(t, nil, "--server", srv.URL, "book", "five")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, errIDRequired.Error())
}

func Test_AddBook_Sends_Authors_In_Order(t *testing.T) {
	t.Parallel()

	srv, lastBody := newCatalogServer(t)

	res := runCLI(t, nil, "-s", srv.URL, "add-book", "-t", "Emma", "-y", "1815", "-a", "Jane Austen", "-a", "Editor")
	require.Equal(t, 0, res.code, res.stderr)

	assert.JSONEq(t, `{
		"title": "Emma", "year": 1815, "author1": "Jane Austen", "author2": "Editor",
		"author3": null, "author4": null, "start_date": null, "end_date": null
	}`, lastBody.last())
	assert.Contains(t, res.stdout, "3\tEmma (1815)")
}

func Test_RmBook_List_Prints_Refreshed_Books_From_Mirror(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, nil, "-s", srv.URL, "rm-book", "1", "--list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t,
		"deleted book 1\n"+
			"books (1)\n"+
			"2\tGood Omens (1990)\tTerry Pratchett, Neil Gaiman\t2024-01-05..\n",
		res.stdout)

	// One load before the delete, one refetch after it; the printed list is
	// the mirrored copy.
	assert.Equal(t, int32(2), srv.listReads.Load())
}

func Test_RmBook_Skips_List_Reads_Without_Flag(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, nil, "-s", srv.URL, "rm-book", "2")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "deleted book 2\n", res.stdout)
	assert.Equal(t, int32(0), srv.listReads.Load())
}

func Test_AddBookmark_Surfaces_Validation_Message(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, nil, "-s", srv.URL, "add-bookmark", "-b", "77", "-p", "3", "-m", "lost")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "book_id must reference an existing book")
}

func Test_Search_Prints_Both_Sections(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)

	res := runCLI(t, nil, "-s", srv.URL, "search", "mind", "killer")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t,
		"books (1)\n1\tDune (1965)\tFrank Herbert\nbookmarks (1)\n9\tbook 1 p.12\tfear is the mind-killer\n",
		res.stdout)

	res = runCLI(t, nil, "-s", srv.URL, "search")
	assert.Equal(t, 1, res.code)
}

func Test_Export_Writes_Catalog_File(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)
	path := filepath.Join(t.TempDir(), "catalog.json")

	res := runCLI(t, nil, "-s", srv.URL, "export", "--out", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "exported 2 books and 1 bookmarks")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got catalogExport
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Books, 2)
	require.Len(t, got.Bookmarks, 1)
	assert.Equal(t, "Good Omens", got.Books[1].Title)

	res = runCLI(t, nil, "-s", srv.URL, "export")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, errOutRequired.Error())
}
