// Package data provides the data models and database interaction logic
// for the reading catalog.
package data

import (
	"database/sql"
	"strings"
	"time"

	"github.com/aoideee/bookshelf/internal/validator"
)

// Book is the public shape of a catalog entry. Optional fields are pointers
// and serialize as null when absent.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Author1   string    `json:"author1"`
	Author2   *string   `json:"author2"`
	Author3   *string   `json:"author3"`
	Author4   *string   `json:"author4"`
	StartDate *Date     `json:"start_date"` // day reading started
	EndDate   *Date     `json:"end_date"`   // day reading finished
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookInput is the request body for creating or fully replacing a book.
type BookInput struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Author1   string  `json:"author1"`
	Author2   *string `json:"author2"`
	Author3   *string `json:"author3"`
	Author4   *string `json:"author4"`
	StartDate *Date   `json:"start_date"`
	EndDate   *Date   `json:"end_date"`
}

// ValidateBook checks the required fields of a book body.
func ValidateBook(v *validator.Validator, input *BookInput) {
	v.Check(validator.NotBlank(input.Title), "title", "must be provided")
	v.Check(input.Year != 0, "year", "must be provided")
	v.Check(validator.NotBlank(input.Author1), "author1", "must be provided")
}

// Book converts the input into a Book, storing blank optional fields as NULL.
func (input *BookInput) Book() *Book {
	return &Book{
		Title:     input.Title,
		Year:      input.Year,
		Author1:   input.Author1,
		Author2:   optionalText(input.Author2),
		Author3:   optionalText(input.Author3),
		Author4:   optionalText(input.Author4),
		StartDate: optionalDate(input.StartDate),
		EndDate:   optionalDate(input.EndDate),
	}
}

func optionalText(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func optionalDate(d *Date) *Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

// bookColumns is the column list every book SELECT scans, in bookRow order.
const bookColumns = "id, title, year, author1, author2, author3, author4, start_date, end_date, created_at, updated_at"

// bookRow is a books row as it comes off the driver.
type bookRow struct {
	id        int64
	title     string
	year      int
	author1   string
	author2   sql.NullString
	author3   sql.NullString
	author4   sql.NullString
	startDate sql.NullTime
	endDate   sql.NullTime
	createdAt time.Time
	updatedAt time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*Book, error) {
	var row bookRow
	err := s.Scan(
		&row.id,
		&row.title,
		&row.year,
		&row.author1,
		&row.author2,
		&row.author3,
		&row.author4,
		&row.startDate,
		&row.endDate,
		&row.createdAt,
		&row.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return mapBook(row), nil
}

// mapBook projects a storage row onto the public Book. Nothing outside this
// function decides which columns reach the API.
func mapBook(row bookRow) *Book {
	return &Book{
		ID:        row.id,
		Title:     row.title,
		Year:      row.year,
		Author1:   row.author1,
		Author2:   textFromNull(row.author2),
		Author3:   textFromNull(row.author3),
		Author4:   textFromNull(row.author4),
		StartDate: dateFromNull(row.startDate),
		EndDate:   dateFromNull(row.endDate),
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
}

func textFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
