package data

import (
	"time"

	"github.com/aoideee/bookshelf/internal/validator"
)

// Bookmark is a page note attached to a book by id.
type Bookmark struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Page      int       `json:"page"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkInput is the request body for creating or fully replacing a bookmark.
type BookmarkInput struct {
	BookID  int64  `json:"book_id"`
	Page    int    `json:"page"`
	Summary string `json:"summary"`
}

// ValidateBookmark checks the required fields of a bookmark body. Whether the
// referenced book exists is checked separately against storage.
func ValidateBookmark(v *validator.Validator, input *BookmarkInput) {
	v.Check(input.BookID != 0, "book_id", "must be provided")
	v.Check(input.Page != 0, "page", "must be provided")
	v.Check(input.Page >= 0, "page", "must be a positive integer")
	v.Check(validator.NotBlank(input.Summary), "summary", "must be provided")
}

// Bookmark converts the input into a Bookmark.
func (input *BookmarkInput) Bookmark() *Bookmark {
	return &Bookmark{
		BookID:  input.BookID,
		Page:    input.Page,
		Summary: input.Summary,
	}
}

const bookmarkColumns = "id, book_id, page, summary, created_at, updated_at"

type bookmarkRow struct {
	id        int64
	bookID    int64
	page      int
	summary   string
	createdAt time.Time
	updatedAt time.Time
}

func scanBookmark(s rowScanner) (*Bookmark, error) {
	var row bookmarkRow
	err := s.Scan(&row.id, &row.bookID, &row.page, &row.summary, &row.createdAt, &row.updatedAt)
	if err != nil {
		return nil, err
	}
	return mapBookmark(row), nil
}

// mapBookmark projects a storage row onto the public Bookmark.
func mapBookmark(row bookmarkRow) *Bookmark {
	return &Bookmark{
		ID:        row.id,
		BookID:    row.bookID,
		Page:      row.page,
		Summary:   row.summary,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
}
