// Package client talks to the bookshelf REST API. Client is a thin typed
// wrapper over the /api endpoints; Mirror keeps a local copy of what was last
// fetched and refreshes it after every write.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound matches any API error answered with 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the server, carrying its {"error"} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Is lets callers write errors.Is(err, client.ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Book mirrors the server's book shape. Dates are YYYY-MM-DD strings.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Author1   string    `json:"author1"`
	Author2   *string   `json:"author2"`
	Author3   *string   `json:"author3"`
	Author4   *string   `json:"author4"`
	StartDate *string   `json:"start_date"`
	EndDate   *string   `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookInput is the body of a book create or full replace.
type BookInput struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Author1   string  `json:"author1"`
	Author2   *string `json:"author2"`
	Author3   *string `json:"author3"`
	Author4   *string `json:"author4"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Bookmark mirrors the server's bookmark shape.
type Bookmark struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Page      int       `json:"page"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkInput is the body of a bookmark create or full replace.
type BookmarkInput struct {
	BookID  int64  `json:"book_id"`
	Page    int    `json:"page"`
	Summary string `json:"summary"`
}

// SearchResult is the answer of a global search.
type SearchResult struct {
	Books     []Book     `json:"books"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// BookQuery holds the optional criteria of GET /api/books/filter. Zero values
// are left out of the query string.
type BookQuery struct {
	Q         string
	Title     string
	Author1   string
	Author2   string
	Author3   string
	Author4   string
	Year      int
	StartDate string
	EndDate   string
}

func (q BookQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("q", q.Q)
	set("title", q.Title)
	set("author1", q.Author1)
	set("author2", q.Author2)
	set("author3", q.Author3)
	set("author4", q.Author4)
	if q.Year != 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	set("start_date", q.StartDate)
	set("end_date", q.EndDate)
	return v
}

// Client calls one bookshelf server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client for baseURL, e.g. "http://localhost:3001". A nil
// httpClient uses a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Books lists every book, title ascending.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	var books []Book
	err := c.do(ctx, http.MethodGet, "/api/books", nil, nil, &books)
	return books, err
}

// FilterBooks lists the books matching q.
func (c *Client) FilterBooks(ctx context.Context, q BookQuery) ([]Book, error) {
	var books []Book
	err := c.do(ctx, http.MethodGet, "/api/books/filter", q.values(), nil, &books)
	return books, err
}

// Book fetches one book. A missing book matches ErrNotFound.
func (c *Client) Book(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodGet, bookPath(id), nil, nil, &book)
	return book, err
}

// CreateBook stores a new book and returns it as stored.
func (c *Client) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodPost, "/api/books", nil, in, &book)
	return book, err
}

// UpdateBook replaces every field of book id.
func (c *Client) UpdateBook(ctx context.Context, id int64, in BookInput) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodPut, bookPath(id), nil, in, &book)
	return book, err
}

// DeleteBook removes book id. Removing a missing book succeeds.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil, nil)
}

// Bookmarks lists bookmarks newest first, scoped to bookID when it is not 0.
func (c *Client) Bookmarks(ctx context.Context, bookID int64) ([]Bookmark, error) {
	var bookmarks []Bookmark
	err := c.do(ctx, http.MethodGet, "/api/bookmarks", bookScope(bookID), nil, &bookmarks)
	return bookmarks, err
}

// SearchBookmarks matches q against bookmark summaries, optionally scoped to
// bookID.
func (c *Client) SearchBookmarks(ctx context.Context, q string, bookID int64) ([]Bookmark, error) {
	v := bookScope(bookID)
	v.Set("q", q)

	var bookmarks []Bookmark
	err := c.do(ctx, http.MethodGet, "/api/bookmarks/search", v, nil, &bookmarks)
	return bookmarks, err
}

// Bookmark fetches one bookmark. A missing bookmark matches ErrNotFound.
func (c *Client) Bookmark(ctx context.Context, id int64) (Bookmark, error) {
	var bm Bookmark
	err := c.do(ctx, http.MethodGet, bookmarkPath(id), nil, nil, &bm)
	return bm, err
}

// CreateBookmark stores a new bookmark for an existing book.
func (c *Client) CreateBookmark(ctx context.Context, in BookmarkInput) (Bookmark, error) {
	var bm Bookmark
	err := c.do(ctx, http.MethodPost, "/api/bookmarks", nil, in, &bm)
	return bm, err
}

// UpdateBookmark replaces every field of bookmark id.
func (c *Client) UpdateBookmark(ctx context.Context, id int64, in BookmarkInput) (Bookmark, error) {
	var bm Bookmark
	err := c.do(ctx, http.MethodPut, bookmarkPath(id), nil, in, &bm)
	return bm, err
}

// DeleteBookmark removes bookmark id. Removing a missing bookmark succeeds.
func (c *Client) DeleteBookmark(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, bookmarkPath(id), nil, nil, nil)
}

// Search runs a global search over books and bookmarks.
func (c *Client) Search(ctx context.Context, q string) (SearchResult, error) {
	var result SearchResult
	err := c.do(ctx, http.MethodGet, "/api/search", url.Values{"q": {q}}, nil, &result)
	return result, err
}

func bookPath(id int64) string     { return "/api/books/" + strconv.FormatInt(id, 10) }
func bookmarkPath(id int64) string { return "/api/bookmarks/" + strconv.FormatInt(id, 10) }

func bookScope(bookID int64) url.Values {
	v := url.Values{}
	if bookID != 0 {
		v.Set("book_id", strconv.FormatInt(bookID, 10))
	}
	return v
}

// do sends one request and decodes a 2xx body into dst when dst is non-nil.
// Other statuses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var failure struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&failure) == nil && failure.Error != "" {
			apiErr.Message = failure.Error
		}
		return apiErr
	}

	if dst == nil {
		_, err = io.Copy(io.Discard, res.Body)
		return err
	}

	err = json.NewDecoder(res.Body).Decode(dst)
	if err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
