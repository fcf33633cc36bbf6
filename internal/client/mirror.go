package client

import (
	"context"
	"slices"
	"sync"
)

// Mirror is an explicit local copy of the lists a client last fetched: all
// books, bookmarks per book scope (0 means every book) and the last global
// search. Reads are served from the copy once loaded. Every write made
// through the Mirror refetches the lists it can affect before returning, so
// the copy never shows state older than the caller's own writes.
//
// Writes by other clients are not seen until Invalidate or a refetch.
type Mirror struct {
	api *Client

	mu          sync.Mutex
	books       []Book
	booksLoaded bool
	bookmarks   map[int64][]Bookmark
	search      *SearchResult
	searchQuery string
}

// NewMirror returns an empty Mirror backed by api.
func NewMirror(api *Client) *Mirror {
	return &Mirror{api: api, bookmarks: make(map[int64][]Bookmark)}
}

// Books returns the mirrored book list, fetching it on first use.
func (m *Mirror) Books(ctx context.Context) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.booksLoaded {
		if err := m.refetchBooks(ctx); err != nil {
			return nil, err
		}
	}
	return slices.Clone(m.books), nil
}

// Bookmarks returns the mirrored bookmarks of bookID (0 for all), fetching
// that scope on first use.
func (m *Mirror) Bookmarks(ctx context.Context, bookID int64) ([]Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookmarks[bookID]; !ok {
		if err := m.refetchBookmarks(ctx, bookID); err != nil {
			return nil, err
		}
	}
	return slices.Clone(m.bookmarks[bookID]), nil
}

// Search always asks the server and remembers the answer as the last search.
func (m *Mirror) Search(ctx context.Context, q string) (SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.searchQuery = q
	if err := m.refetchSearch(ctx); err != nil {
		return SearchResult{}, err
	}
	return *m.search, nil
}

// LastSearch reports the last search query and its mirrored result.
func (m *Mirror) LastSearch() (string, SearchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.search == nil {
		return "", SearchResult{}, false
	}
	return m.searchQuery, *m.search, true
}

// CreateBook stores a book and refreshes the book list and last search.
func (m *Mirror) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, err := m.api.CreateBook(ctx, in)
	if err != nil {
		return Book{}, err
	}
	return book, m.afterBookWrite(ctx)
}

// UpdateBook replaces a book and refreshes the book list and last search.
func (m *Mirror) UpdateBook(ctx context.Context, id int64, in BookInput) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, err := m.api.UpdateBook(ctx, id, in)
	if err != nil {
		return Book{}, err
	}
	return book, m.afterBookWrite(ctx)
}

// DeleteBook removes a book and refreshes the book list and last search.
// Mirrored bookmarks are kept: the server keeps them too.
func (m *Mirror) DeleteBook(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.api.DeleteBook(ctx, id); err != nil {
		return err
	}
	return m.afterBookWrite(ctx)
}

// CreateBookmark stores a bookmark and refreshes every loaded bookmark scope
// and the last search.
func (m *Mirror) CreateBookmark(ctx context.Context, in BookmarkInput) (Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bm, err := m.api.CreateBookmark(ctx, in)
	if err != nil {
		return Bookmark{}, err
	}
	return bm, m.afterBookmarkWrite(ctx)
}

// UpdateBookmark replaces a bookmark and refreshes every loaded bookmark
// scope and the last search.
func (m *Mirror) UpdateBookmark(ctx context.Context, id int64, in BookmarkInput) (Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bm, err := m.api.UpdateBookmark(ctx, id, in)
	if err != nil {
		return Bookmark{}, err
	}
	return bm, m.afterBookmarkWrite(ctx)
}

// DeleteBookmark removes a bookmark and refreshes every loaded bookmark
// scope and the last search.
func (m *Mirror) DeleteBookmark(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.api.DeleteBookmark(ctx, id); err != nil {
		return err
	}
	return m.afterBookmarkWrite(ctx)
}

// Invalidate drops everything mirrored; the next read fetches again.
func (m *Mirror) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books = nil
	m.booksLoaded = false
	m.bookmarks = make(map[int64][]Bookmark)
	m.search = nil
	m.searchQuery = ""
}

// afterBookWrite refetches what a book write can change. Lists never loaded
// stay unloaded.
func (m *Mirror) afterBookWrite(ctx context.Context) error {
	if m.booksLoaded {
		if err := m.refetchBooks(ctx); err != nil {
			return err
		}
	}
	if m.search != nil {
		return m.refetchSearch(ctx)
	}
	return nil
}

func (m *Mirror) afterBookmarkWrite(ctx context.Context) error {
	for bookID := range m.bookmarks {
		if err := m.refetchBookmarks(ctx, bookID); err != nil {
			return err
		}
	}
	if m.search != nil {
		return m.refetchSearch(ctx)
	}
	return nil
}

// On a failed refetch the stale entry is dropped rather than kept.

func (m *Mirror) refetchBooks(ctx context.Context) error {
	books, err := m.api.Books(ctx)
	if err != nil {
		m.books, m.booksLoaded = nil, false
		return err
	}
	m.books, m.booksLoaded = books, true
	return nil
}

func (m *Mirror) refetchBookmarks(ctx context.Context, bookID int64) error {
	bookmarks, err := m.api.Bookmarks(ctx, bookID)
	if err != nil {
		delete(m.bookmarks, bookID)
		return err
	}
	m.bookmarks[bookID] = bookmarks
	return nil
}

func (m *Mirror) refetchSearch(ctx context.Context) error {
	result, err := m.api.Search(ctx, m.searchQuery)
	if err != nil {
		m.search = nil
		return err
	}
	m.search = &result
	return nil
}
