package data

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDune(t *testing.T, m Models) (*Book, *Book) {
	t.Helper()

	start := NewDate(2024, 3, 1)
	dune := insertBook(t, m, &Book{Title: "Dune", Year: 1965, Author1: "Herbert", StartDate: &start})
	messiah := insertBook(t, m, &Book{Title: "Dune Messiah", Year: 1969, Author1: "Herbert"})
	return dune, messiah
}

func Test_BookModel_Round_Trips_Fields_When_Inserted(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)

	start, end := NewDate(2024, 1, 5), NewDate(2024, 2, 10)
	input := &Book{
		Title:     "Good Omens",
		Year:      1990,
		Author1:   "Terry Pratchett",
		Author2:   ptr("Neil Gaiman"),
		StartDate: &start,
		EndDate:   &end,
	}

	got := insertBook(t, m, input)

	want := &Book{
		ID:        input.ID,
		Title:     "Good Omens",
		Year:      1990,
		Author1:   "Terry Pratchett",
		Author2:   ptr("Neil Gaiman"),
		StartDate: &start,
		EndDate:   &end,
	}
	ignoreTimestamps := cmp.FilterPath(func(p cmp.Path) bool {
		name := p.Last().String()
		return name == ".CreatedAt" || name == ".UpdatedAt"
	}, cmp.Ignore())
	if diff := cmp.Diff(want, got, ignoreTimestamps); diff != "" {
		t.Errorf("stored book mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.Author3, "unset author3 stays null")
	assert.Nil(t, got.Author4, "unset author4 stays null")
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt), "fresh row has created_at == updated_at")
}

func Test_BookModel_Get_Returns_ErrRecordNotFound_When_Missing(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)

	_, err := m.Books.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrRecordNotFound)

	_, err = m.Books.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func Test_BookModel_GetAll_Filters_By_Year(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	seedDune(t, m)

	books, err := m.Books.GetAll(context.Background(), BookFilters{Year: ptr(1965)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, bookTitles(books))
}

func Test_BookModel_GetAll_Orders_By_Title_When_Free_Text_Matches(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	insertBook(t, m, &Book{Title: "Dune Messiah", Year: 1969, Author1: "Herbert"})
	insertBook(t, m, &Book{Title: "Dune", Year: 1965, Author1: "Herbert"})
	insertBook(t, m, &Book{Title: "Emma", Year: 1815, Author1: "Austen"})

	books, err := m.Books.GetAll(context.Background(), BookFilters{Q: "DUNE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Dune Messiah"}, bookTitles(books))
}

func Test_BookModel_GetAll_Matches_Free_Text_Against_Any_Author(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	insertBook(t, m, &Book{Title: "Good Omens", Year: 1990, Author1: "Pratchett", Author2: ptr("Neil Gaiman")})
	insertBook(t, m, &Book{Title: "Emma", Year: 1815, Author1: "Austen"})

	books, err := m.Books.GetAll(context.Background(), BookFilters{Q: "gaiman"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Good Omens"}, bookTitles(books))
}

func Test_BookModel_GetAll_Returns_Everything_By_Title_When_No_Filters(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	insertBook(t, m, &Book{Title: "Emma", Year: 1815, Author1: "Austen"})
	seedDune(t, m)

	books, err := m.Books.GetAll(context.Background(), BookFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Dune Messiah", "Emma"}, bookTitles(books))
}

func Test_BookModel_GetAll_Excludes_Null_Dates_From_Date_Bounds(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	seedDune(t, m)

	lower := NewDate(2024, 1, 1)
	books, err := m.Books.GetAll(context.Background(), BookFilters{StartDate: &lower})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, bookTitles(books), "Dune Messiah has no start_date")

	upper := NewDate(2030, 1, 1)
	books, err = m.Books.GetAll(context.Background(), BookFilters{EndDate: &upper})
	require.NoError(t, err)
	assert.Empty(t, books, "no book has an end_date")
}

func Test_BookModel_GetAll_Includes_Date_Bound_Itself(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	seedDune(t, m)

	exact := NewDate(2024, 3, 1)
	books, err := m.Books.GetAll(context.Background(), BookFilters{StartDate: &exact})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, bookTitles(books))

	later := NewDate(2024, 3, 2)
	books, err = m.Books.GetAll(context.Background(), BookFilters{StartDate: &later})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func Test_BookModel_GetAll_Matches_Per_Field_Text_Case_Insensitively(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	seedDune(t, m)
	insertBook(t, m, &Book{Title: "Children of Dune", Year: 1976, Author1: "Frank Herbert"})

	books, err := m.Books.GetAll(context.Background(), BookFilters{Title: "dune", Author1: "FRANK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Children of Dune"}, bookTitles(books))
}

func Test_BookModel_Update_Replaces_All_Fields(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	dune, _ := seedDune(t, m)

	replacement := &Book{ID: dune.ID, Title: "Dune (Deluxe)", Year: 2019, Author1: "Frank Herbert"}
	require.NoError(t, m.Books.Update(context.Background(), replacement))

	got, err := m.Books.Get(context.Background(), dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune (Deluxe)", got.Title)
	assert.Equal(t, 2019, got.Year)
	assert.Nil(t, got.StartDate, "full replace clears start_date")
	assert.True(t, dune.CreatedAt.Equal(got.CreatedAt), "created_at survives a replace")
	assert.False(t, got.UpdatedAt.Before(dune.UpdatedAt))
}

func Test_BookModel_Update_Returns_ErrRecordNotFound_When_Missing(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)

	err := m.Books.Update(context.Background(), &Book{ID: 99, Title: "x", Year: 1, Author1: "y"})
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func Test_BookModel_Delete_Succeeds_When_Missing_And_Keeps_Bookmarks(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	dune, _ := seedDune(t, m)
	bm := insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 12, Summary: "spice"})

	require.NoError(t, m.Books.Delete(context.Background(), dune.ID))
	require.NoError(t, m.Books.Delete(context.Background(), dune.ID))
	require.NoError(t, m.Books.Delete(context.Background(), 12345))

	exists, err := m.Books.Exists(context.Background(), dune.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	orphan, err := m.Bookmarks.Get(context.Background(), bm.ID)
	require.NoError(t, err, "bookmarks are not cascade-deleted")
	assert.Equal(t, dune.ID, orphan.BookID)
}

func Test_BookmarkModel_GetAll_Returns_Newest_First_For_Book(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	dune, messiah := seedDune(t, m)

	first := insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 1, Summary: "first"})
	insertBookmark(t, m, &Bookmark{BookID: messiah.ID, Page: 5, Summary: "other book"})
	second := insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 2, Summary: "second"})
	third := insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 3, Summary: "third"})

	got, err := m.Bookmarks.GetAll(context.Background(), BookmarkFilters{BookID: &dune.ID})
	require.NoError(t, err)

	ids := make([]int64, len(got))
	for i, bm := range got {
		ids[i] = bm.ID
	}
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, ids)

	all, err := m.Bookmarks.GetAll(context.Background(), BookmarkFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func Test_BookmarkModel_GetAll_Searches_Summary(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	dune, messiah := seedDune(t, m)

	insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 10, Summary: "The spice must flow"})
	insertBookmark(t, m, &Bookmark{BookID: messiah.ID, Page: 20, Summary: "Spice trade collapses"})
	insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 30, Summary: "Fear is the mind-killer"})

	got, err := m.Bookmarks.GetAll(context.Background(), BookmarkFilters{Q: "SPICE"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Bookmarks.GetAll(context.Background(), BookmarkFilters{Q: "spice", BookID: &dune.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Page)
}

func Test_BookmarkModel_Update_Returns_ErrRecordNotFound_When_Missing(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)

	err := m.Bookmarks.Update(context.Background(), &Bookmark{ID: 5, BookID: 1, Page: 1, Summary: "x"})
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func Test_SearchModel_Returns_Empty_Lists_Without_Storage_When_Query_Blank(t *testing.T) {
	t.Parallel()

	m, db := newTestModels(t)
	// A closed pool fails every query, so any storage access would surface here.
	require.NoError(t, db.Close())

	result, err := m.Search.Global(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, &SearchResult{Books: []*Book{}, Bookmarks: []*Bookmark{}}, result)
}

func Test_SearchModel_Returns_Only_Bookmark_When_Summary_Matches(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	dune, _ := seedDune(t, m)
	bm := insertBookmark(t, m, &Bookmark{BookID: dune.ID, Page: 7, Summary: "Litany against fear"})

	result, err := m.Search.Global(context.Background(), "litany fear")
	require.NoError(t, err)
	assert.Empty(t, result.Books)
	require.Len(t, result.Bookmarks, 1)
	assert.Equal(t, bm.ID, result.Bookmarks[0].ID)
}

func Test_SearchModel_Matches_Books_By_Title_Or_Author(t *testing.T) {
	t.Parallel()

	m, _ := newTestModels(t)
	seedDune(t, m)
	insertBook(t, m, &Book{Title: "Emma", Year: 1815, Author1: "Austen"})

	result, err := m.Search.Global(context.Background(), "herbert")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Dune Messiah"}, bookTitles(result.Books))
	assert.Empty(t, result.Bookmarks)
}
