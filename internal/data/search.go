package data

import "context"

// SearchResult is the outcome of a global search. The two lists are
// independent; nothing is merged or ranked.
type SearchResult struct {
	Books     []*Book     `json:"books"`
	Bookmarks []*Bookmark `json:"bookmarks"`
}

// SearchModel runs one free-text query against books and bookmarks.
type SearchModel struct {
	books     BookModel
	bookmarks BookmarkModel
}

// Global matches query against book titles and authors and against bookmark
// summaries. A blank query returns two empty lists without touching storage.
func (m SearchModel) Global(ctx context.Context, query string) (*SearchResult, error) {
	result := &SearchResult{Books: []*Book{}, Bookmarks: []*Bookmark{}}

	pattern, ok := LikePattern(query)
	if !ok {
		return result, nil
	}

	var bw where
	bw.anyLike(pattern, bookTextColumns...)
	books, err := m.books.list(ctx, bw)
	if err != nil {
		return nil, err
	}

	var mw where
	mw.like("summary", pattern)
	bookmarks, err := m.bookmarks.list(ctx, mw)
	if err != nil {
		return nil, err
	}

	result.Books = books
	result.Bookmarks = bookmarks
	return result, nil
}
