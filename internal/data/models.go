// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books     BookModel     // books table
	Bookmarks BookmarkModel // bookmarks table
	Search    SearchModel   // free-text search across both tables
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB, dialect Dialect) Models {
	books := BookModel{DB: db, dialect: dialect}
	bookmarks := BookmarkModel{DB: db, dialect: dialect}
	return Models{
		Books:     books,
		Bookmarks: bookmarks,
		Search:    SearchModel{books: books, bookmarks: bookmarks},
	}
}

// ErrRecordNotFound is returned when a query finds no matching row.
var ErrRecordNotFound = errors.New("record not found")

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// Open opens a connection pool for the dialect, applies the pool limits and
// pings the database with a 5-second timeout to confirm it is reachable.
func Open(dialect Dialect, dsn string, pool PoolConfig) (*sql.DB, error) {
	dsn, err := dialect.DSN(dsn)
	if err != nil {
		return nil, err
	}

	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.MaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the catalog tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// now is the server-assigned timestamp for created_at/updated_at.
func now() time.Time {
	return time.Now().UTC()
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, deleting and filtering book records.
type BookModel struct {
	DB      *sql.DB // Shared database connection pool
	dialect Dialect
}

// Insert adds a new book record to the database and writes the generated id
// back into book. Callers read the stored row back with Get.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, year, author1, author2, author3, author4, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	id, err := m.dialect.insert(ctx, m.DB, query,
		book.Title,
		book.Year,
		book.Author1,
		book.Author2,
		book.Author3,
		book.Author4,
		book.StartDate,
		book.EndDate,
		ts,
		ts,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	book.ID = id
	return nil
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := m.dialect.rebind(`SELECT ` + bookColumns + ` FROM books WHERE id = ?`)

	book, err := scanBook(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("get book %d: %w", id, err)
		}
	}
	return book, nil
}

// Exists reports whether a book with the given id is stored.
func (m BookModel) Exists(ctx context.Context, id int64) (bool, error) {
	if id < 1 {
		return false, nil
	}

	var found int64
	err := m.DB.QueryRowContext(ctx, m.dialect.rebind(`SELECT id FROM books WHERE id = ?`), id).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check book %d: %w", id, err)
	}
	return true, nil
}

// GetAll returns the books matching filters ordered by title. With no active
// filters every book is returned.
func (m BookModel) GetAll(ctx context.Context, filters BookFilters) ([]*Book, error) {
	return m.list(ctx, filters.where())
}

func (m BookModel) list(ctx context.Context, w where) ([]*Book, error) {
	query := m.dialect.rebind(`SELECT ` + bookColumns + ` FROM books` + w.String() + ` ORDER BY title ASC, id ASC`)

	rows, err := m.DB.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	// Always close the result set when we are done to free the database connection.
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Update replaces every stored field of the book with book's values and
// refreshes updated_at. Returns ErrRecordNotFound if the row is gone.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	query := m.dialect.rebind(`
		UPDATE books
		SET title = ?, year = ?, author1 = ?, author2 = ?, author3 = ?, author4 = ?,
		    start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`)

	args := []any{
		book.Title,
		book.Year,
		book.Author1,
		book.Author2,
		book.Author3,
		book.Author4,
		book.StartDate,
		book.EndDate,
		now(),
		book.ID,
	}

	result, err := m.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the book with the given id. Deleting an id that does not
// exist is not an error, and the book's bookmarks are left untouched.
func (m BookModel) Delete(ctx context.Context, id int64) error {
	_, err := m.DB.ExecContext(ctx, m.dialect.rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}
