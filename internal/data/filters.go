package data

import "strings"

// LikePattern turns a free-text query into a case-insensitive LIKE pattern
// that matches text containing every word of the query, in order, with
// anything between and around them: "Foo  bar" becomes "%foo%bar%".
// It reports false when the query is empty or only whitespace, meaning no
// predicate should be applied.
//
// Every text filter in this package goes through LikePattern; the column side
// of the comparison is always wrapped in LOWER().
func LikePattern(query string) (string, bool) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return "", false
	}
	return "%" + strings.Join(words, "%") + "%", true
}

// where accumulates AND-combined predicates with ? placeholders. Column names
// passed in always come from this package, never from user input.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// like adds LOWER(column) LIKE pattern.
func (w *where) like(column, pattern string) {
	w.add("LOWER("+column+") LIKE ?", pattern)
}

// likeText builds the pattern from raw text and adds it; blank text adds nothing.
func (w *where) likeText(column, text string) {
	if pattern, ok := LikePattern(text); ok {
		w.like(column, pattern)
	}
}

// anyLike adds one clause matching pattern against any of columns.
func (w *where) anyLike(pattern string, columns ...string) {
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = "LOWER(" + column + ") LIKE ?"
		w.args = append(w.args, pattern)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

// String renders the WHERE clause, or "" when there is nothing to filter on.
func (w where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// BookFilters holds the optional criteria of a book filter query. Zero values
// are inactive.
type BookFilters struct {
	Q         string // free text over title and all four authors
	Title     string
	Author1   string
	Author2   string
	Author3   string
	Author4   string
	Year      *int
	StartDate *Date // start_date >= StartDate
	EndDate   *Date // end_date <= EndDate
}

// bookTextColumns are the fields a free-text book query looks at.
var bookTextColumns = []string{"title", "author1", "author2", "author3", "author4"}

func (f BookFilters) where() where {
	var w where
	if pattern, ok := LikePattern(f.Q); ok {
		w.anyLike(pattern, bookTextColumns...)
	}
	w.likeText("title", f.Title)
	if f.Year != nil {
		w.add("year = ?", *f.Year)
	}
	w.likeText("author1", f.Author1)
	w.likeText("author2", f.Author2)
	w.likeText("author3", f.Author3)
	w.likeText("author4", f.Author4)
	// A NULL date never satisfies a bound; the explicit IS NOT NULL keeps that
	// obvious rather than relying on three-valued logic.
	if f.StartDate != nil {
		w.add("(start_date IS NOT NULL AND start_date >= ?)", *f.StartDate)
	}
	if f.EndDate != nil {
		w.add("(end_date IS NOT NULL AND end_date <= ?)", *f.EndDate)
	}
	return w
}

// BookmarkFilters scopes a bookmark listing or search.
type BookmarkFilters struct {
	BookID *int64
	Q      string // free text over summary
}

func (f BookmarkFilters) where() where {
	var w where
	if f.BookID != nil {
		w.add("book_id = ?", *f.BookID)
	}
	w.likeText("summary", f.Q)
	return w
}
