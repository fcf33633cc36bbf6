package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	_ "github.com/lib/pq"           // Register the PostgreSQL driver with database/sql.
	_ "github.com/mattn/go-sqlite3" // Register the SQLite driver with database/sql.
)

// Supported database/sql driver names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite3"
)

// ErrUnsupportedDriver is returned for a driver name the catalog has no schema for.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Dialect captures the few places where the supported databases disagree:
// placeholder syntax, DDL types, and how a generated id comes back from an insert.
type Dialect struct {
	driver string
}

// NewDialect returns the dialect for a database/sql driver name.
func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case Postgres, MySQL, SQLite:
		return Dialect{driver: driver}, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Driver is the database/sql driver name.
func (d Dialect) Driver() string { return d.driver }

// DSN normalizes a connection string for the driver. MySQL connections must
// parse DATE/DATETIME columns into time.Time and report matched rather than
// changed rows, so those options are forced on.
func (d Dialect) DSN(dsn string) (string, error) {
	if d.driver != MySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL.
func (d Dialect) rebind(query string) string {
	if d.driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 1
	for _, c := range query {
		if c == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// insert runs an INSERT written with ? placeholders and returns the generated id.
func (d Dialect) insert(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	if d.driver == Postgres {
		var id int64
		err := db.QueryRowContext(ctx, d.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// schema returns the CREATE statements for the books and bookmarks tables.
// bookmarks.book_id deliberately carries no foreign key: deleting a book
// leaves its bookmarks in place.
func (d Dialect) schema() []string {
	switch d.driver {
	case Postgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS books (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				year INTEGER NOT NULL,
				author1 TEXT NOT NULL,
				author2 TEXT,
				author3 TEXT,
				author4 TEXT,
				start_date DATE,
				end_date DATE,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS bookmarks (
				id BIGSERIAL PRIMARY KEY,
				book_id BIGINT NOT NULL,
				page INTEGER NOT NULL,
				summary TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS bookmarks_book_id_idx ON bookmarks (book_id)`,
		}
	case MySQL:
		// MySQL has no CREATE INDEX IF NOT EXISTS, so the index lives in the table definition.
		return []string{
			`CREATE TABLE IF NOT EXISTS books (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				year INT NOT NULL,
				author1 VARCHAR(255) NOT NULL,
				author2 VARCHAR(255),
				author3 VARCHAR(255),
				author4 VARCHAR(255),
				start_date DATE,
				end_date DATE,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS bookmarks (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				book_id BIGINT NOT NULL,
				page INT NOT NULL,
				summary TEXT NOT NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL,
				INDEX bookmarks_book_id_idx (book_id)
			)`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				year INTEGER NOT NULL,
				author1 TEXT NOT NULL,
				author2 TEXT,
				author3 TEXT,
				author4 TEXT,
				start_date DATE,
				end_date DATE,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS bookmarks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER NOT NULL,
				page INTEGER NOT NULL,
				summary TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS bookmarks_book_id_idx ON bookmarks (book_id)`,
		}
	}
}
