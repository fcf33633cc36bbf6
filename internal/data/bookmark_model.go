package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// BookmarkModel provides database access for the bookmarks table.
type BookmarkModel struct {
	DB      *sql.DB
	dialect Dialect
}

// Insert adds a bookmark and writes the generated id back into bm.
func (m BookmarkModel) Insert(ctx context.Context, bm *Bookmark) error {
	query := `
		INSERT INTO bookmarks (book_id, page, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	ts := now()
	id, err := m.dialect.insert(ctx, m.DB, query, bm.BookID, bm.Page, bm.Summary, ts, ts)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}

	bm.ID = id
	return nil
}

// Get retrieves a bookmark by id, or ErrRecordNotFound.
func (m BookmarkModel) Get(ctx context.Context, id int64) (*Bookmark, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := m.dialect.rebind(`SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE id = ?`)

	bm, err := scanBookmark(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get bookmark %d: %w", id, err)
	}
	return bm, nil
}

// GetAll lists bookmarks newest first, optionally scoped to one book and
// narrowed by free text over the summary.
func (m BookmarkModel) GetAll(ctx context.Context, filters BookmarkFilters) ([]*Bookmark, error) {
	return m.list(ctx, filters.where())
}

func (m BookmarkModel) list(ctx context.Context, w where) ([]*Bookmark, error) {
	query := m.dialect.rebind(`SELECT ` + bookmarkColumns + ` FROM bookmarks` + w.String() + ` ORDER BY created_at DESC, id DESC`)

	rows, err := m.DB.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []*Bookmark{}
	for rows.Next() {
		bm, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, bm)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Update replaces the bookmark's fields and refreshes updated_at.
// Returns ErrRecordNotFound if the row is gone.
func (m BookmarkModel) Update(ctx context.Context, bm *Bookmark) error {
	query := m.dialect.rebind(`UPDATE bookmarks SET book_id = ?, page = ?, summary = ?, updated_at = ? WHERE id = ?`)

	result, err := m.DB.ExecContext(ctx, query, bm.BookID, bm.Page, bm.Summary, now(), bm.ID)
	if err != nil {
		return fmt.Errorf("update bookmark %d: %w", bm.ID, err)
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

// Delete removes the bookmark with the given id; a missing id is not an error.
func (m BookmarkModel) Delete(ctx context.Context, id int64) error {
	_, err := m.DB.ExecContext(ctx, m.dialect.rebind(`DELETE FROM bookmarks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	return nil
}
