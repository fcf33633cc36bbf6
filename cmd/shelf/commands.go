package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/aoideee/bookshelf/internal/client"
)

var (
	errIDRequired   = errors.New("exactly one numeric id is required")
	errOutRequired  = errors.New("--out is required")
	errTermRequired = errors.New("a search term is required")
)

func commands() []*command {
	return []*command{
		booksCmd(),
		filterCmd(),
		bookCmd(),
		addBookCmd(),
		rmBookCmd(),
		bookmarksCmd(),
		addBookmarkCmd(),
		rmBookmarkCmd(),
		searchCmd(),
		exportCmd(),
	}
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errIDRequired
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, errIDRequired
	}
	return id, nil
}

// optional turns an empty flag value into nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *shelf) printBook(b client.Book) {
	authors := []string{b.Author1}
	for _, a := range []*string{b.Author2, b.Author3, b.Author4} {
		if a != nil {
			authors = append(authors, *a)
		}
	}

	s.printf("%d\t%s (%d)\t%s", b.ID, b.Title, b.Year, strings.Join(authors, ", "))
	if b.StartDate != nil || b.EndDate != nil {
		s.printf("\t%s..%s", deref(b.StartDate), deref(b.EndDate))
	}
	s.printf("\n")
}

func (s *shelf) printBooks(books []client.Book) {
	for _, b := range books {
		s.printBook(b)
	}
}

func (s *shelf) printBookmarks(bookmarks []client.Bookmark) {
	for _, bm := range bookmarks {
		s.printf("%d\tbook %d p.%d\t%s\n", bm.ID, bm.BookID, bm.Page, bm.Summary)
	}
}

func booksCmd() *command {
	return &command{
		name:  "books",
		short: "List every book by title",
		flags: newFlags("books"),
		run: func(ctx context.Context, s *shelf, _ []string) error {
			books, err := s.catalog.Books(ctx)
			if err != nil {
				return err
			}
			s.printBooks(books)
			return nil
		},
	}
}

func filterCmd() *command {
	fs := newFlags("filter")
	var q client.BookQuery
	fs.StringVarP(&q.Q, "query", "q", "", "Match title or any author")
	fs.StringVar(&q.Title, "title", "", "Match title")
	fs.StringVar(&q.Author1, "author1", "", "Match first author")
	fs.StringVar(&q.Author2, "author2", "", "Match second author")
	fs.StringVar(&q.Author3, "author3", "", "Match third author")
	fs.StringVar(&q.Author4, "author4", "", "Match fourth author")
	fs.IntVar(&q.Year, "year", 0, "Exact publication year")
	fs.StringVar(&q.StartDate, "start-date", "", "Started on or after (YYYY-MM-DD)")
	fs.StringVar(&q.EndDate, "end-date", "", "Finished on or before (YYYY-MM-DD)")

	return &command{
		name:  "filter",
		args:  "[flags]",
		short: "List books matching every given criterion",
		flags: fs,
		run: func(ctx context.Context, s *shelf, _ []string) error {
			books, err := s.api.FilterBooks(ctx, q)
			if err != nil {
				return err
			}
			s.printBooks(books)
			return nil
		},
	}
}

func bookCmd() *command {
	return &command{
		name:  "book",
		args:  "<id>",
		short: "Show one book and its bookmarks",
		flags: newFlags("book"),
		run: func(ctx context.Context, s *shelf, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			book, err := s.api.Book(ctx, id)
			if err != nil {
				return err
			}
			bookmarks, err := s.catalog.Bookmarks(ctx, id)
			if err != nil {
				return err
			}

			s.printBook(book)
			s.printBookmarks(bookmarks)
			return nil
		},
	}
}

// listAfter runs write and, when list is set, prints the book list as the
// mirror holds it afterwards. The list is loaded before the write so the
// mirror refreshes it as part of the write.
func (s *shelf) listAfter(ctx context.Context, list bool, write func() error) error {
	if list {
		if _, err := s.catalog.Books(ctx); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}
	if !list {
		return nil
	}

	books, err := s.catalog.Books(ctx)
	if err != nil {
		return err
	}
	s.printf("books (%d)\n", len(books))
	s.printBooks(books)
	return nil
}

func addBookCmd() *command {
	fs := newFlags("add-book")
	title := fs.StringP("title", "t", "", "Title (required)")
	year := fs.IntP("year", "y", 0, "Publication year (required)")
	authors := fs.StringSliceP("author", "a", nil, "Author, repeat up to four times (first is required)")
	start := fs.String("start-date", "", "Day reading started (YYYY-MM-DD)")
	end := fs.String("end-date", "", "Day reading finished (YYYY-MM-DD)")
	list := fs.BoolP("list", "l", false, "Print the book list after adding")

	return &command{
		name:  "add-book",
		args:  "-t <title> -y <year> -a <author> [flags]",
		short: "Add a book",
		flags: fs,
		run: func(ctx context.Context, s *shelf, _ []string) error {
			if len(*authors) > 4 {
				return errors.New("at most four authors")
			}
			names := make([]string, 4)
			copy(names, *authors)

			return s.listAfter(ctx, *list, func() error {
				book, err := s.catalog.CreateBook(ctx, client.BookInput{
					Title:     *title,
					Year:      *year,
					Author1:   names[0],
					Author2:   optional(names[1]),
					Author3:   optional(names[2]),
					Author4:   optional(names[3]),
					StartDate: optional(*start),
					EndDate:   optional(*end),
				})
				if err != nil {
					return err
				}
				s.printBook(book)
				return nil
			})
		},
	}
}

func rmBookCmd() *command {
	fs := newFlags("rm-book")
	list := fs.BoolP("list", "l", false, "Print the book list after deleting")

	return &command{
		name:  "rm-book",
		args:  "<id> [-l]",
		short: "Delete a book (its bookmarks are kept)",
		flags: fs,
		run: func(ctx context.Context, s *shelf, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			return s.listAfter(ctx, *list, func() error {
				if err := s.catalog.DeleteBook(ctx, id); err != nil {
					return err
				}
				s.printf("deleted book %d\n", id)
				return nil
			})
		},
	}
}

func bookmarksCmd() *command {
	fs := newFlags("bookmarks")
	bookID := fs.Int64P("book", "b", 0, "Only bookmarks of this book")
	query := fs.StringP("query", "q", "", "Match summary")

	return &command{
		name:  "bookmarks",
		args:  "[-b <book-id>] [-q <text>]",
		short: "List bookmarks, newest first",
		flags: fs,
		run: func(ctx context.Context, s *shelf, _ []string) error {
			var (
				bookmarks []client.Bookmark
				err       error
			)
			if *query != "" {
				bookmarks, err = s.api.SearchBookmarks(ctx, *query, *bookID)
			} else {
				bookmarks, err = s.catalog.Bookmarks(ctx, *bookID)
			}
			if err != nil {
				return err
			}
			s.printBookmarks(bookmarks)
			return nil
		},
	}
}

func addBookmarkCmd() *command {
	fs := newFlags("add-bookmark")
	bookID := fs.Int64P("book", "b", 0, "Book id (required)")
	page := fs.IntP("page", "p", 0, "Page number (required)")
	summary := fs.StringP("summary", "m", "", "Note for the page (required)")

	return &command{
		name:  "add-bookmark",
		args:  "-b <book-id> -p <page> -m <summary>",
		short: "Add a bookmark to an existing book",
		flags: fs,
		run: func(ctx context.Context, s *shelf, _ []string) error {
			bm, err := s.catalog.CreateBookmark(ctx, client.BookmarkInput{
				BookID:  *bookID,
				Page:    *page,
				Summary: *summary,
			})
			if err != nil {
				return err
			}
			s.printBookmarks([]client.Bookmark{bm})
			return nil
		},
	}
}

func rmBookmarkCmd() *command {
	return &command{
		name:  "rm-bookmark",
		args:  "<id>",
		short: "Delete a bookmark",
		flags: newFlags("rm-bookmark"),
		run: func(ctx context.Context, s *shelf, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			if err := s.catalog.DeleteBookmark(ctx, id); err != nil {
				return err
			}
			s.printf("deleted bookmark %d\n", id)
			return nil
		},
	}
}

func searchCmd() *command {
	return &command{
		name:  "search",
		args:  "<text...>",
		short: "Search book titles, authors and bookmark summaries",
		flags: newFlags("search"),
		run: func(ctx context.Context, s *shelf, args []string) error {
			term := strings.Join(args, " ")
			if strings.TrimSpace(term) == "" {
				return errTermRequired
			}

			result, err := s.catalog.Search(ctx, term)
			if err != nil {
				return err
			}

			s.printf("books (%d)\n", len(result.Books))
			s.printBooks(result.Books)
			s.printf("bookmarks (%d)\n", len(result.Bookmarks))
			s.printBookmarks(result.Bookmarks)
			return nil
		},
	}
}

// catalogExport is the file layout written by export.
type catalogExport struct {
	Books     []client.Book     `json:"books"`
	Bookmarks []client.Bookmark `json:"bookmarks"`
}

func exportCmd() *command {
	fs := newFlags("export")
	out := fs.StringP("out", "o", "", "Destination file (required)")

	return &command{
		name:  "export",
		args:  "-o <file>",
		short: "Write every book and bookmark to a JSON file",
		flags: fs,
		run: func(ctx context.Context, s *shelf, _ []string) error {
			if *out == "" {
				return errOutRequired
			}

			books, err := s.catalog.Books(ctx)
			if err != nil {
				return err
			}
			bookmarks, err := s.catalog.Bookmarks(ctx, 0)
			if err != nil {
				return err
			}

			buf, err := json.MarshalIndent(catalogExport{Books: books, Bookmarks: bookmarks}, "", "  ")
			if err != nil {
				return err
			}
			buf = append(buf, '\n')

			// Readers of the file never see a half-written export.
			if err := atomic.WriteFile(*out, bytes.NewReader(buf)); err != nil {
				return fmt.Errorf("write %s: %w", *out, err)
			}

			s.printf("exported %d books and %d bookmarks to %s\n", len(books), len(bookmarks), *out)
			return nil
		},
	}
}
