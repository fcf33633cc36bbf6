// cmd/api/bookmarks.go
package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/bookshelf/internal/data"
	"github.com/aoideee/bookshelf/internal/validator"
)

// listBookmarksHandler handles GET /api/bookmarks?book_id=, newest first.
func (app *applicationDependencies) listBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := data.BookmarkFilters{
		BookID: app.readID(r.URL.Query(), "book_id", v),
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	app.writeBookmarks(w, r, filters)
}

// searchBookmarksHandler handles GET /api/bookmarks/search?q=&book_id=.
func (app *applicationDependencies) searchBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()
	filters := data.BookmarkFilters{
		BookID: app.readID(qs, "book_id", v),
		Q:      app.readString(qs, "q"),
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	app.writeBookmarks(w, r, filters)
}

func (app *applicationDependencies) writeBookmarks(w http.ResponseWriter, r *http.Request, filters data.BookmarkFilters) {
	bookmarks, err := app.models.Bookmarks.GetAll(storageContext(r), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, bookmarks, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookmarkHandler handles GET /api/bookmarks/:id and, by route sharing,
// GET /api/bookmarks/search.
func (app *applicationDependencies) showBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	if httprouter.ParamsFromContext(r.Context()).ByName("id") == "search" {
		app.searchBookmarksHandler(w, r)
		return
	}

	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	bm, err := app.models.Bookmarks.Get(storageContext(r), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, bm, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// checkBookReference confirms the bookmark's book exists at write time. It
// reports false after writing a response.
func (app *applicationDependencies) checkBookReference(ctx context.Context, w http.ResponseWriter, r *http.Request, bookID int64) bool {
	exists, err := app.models.Books.Exists(ctx, bookID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return false
	}
	if !exists {
		v := validator.New()
		v.AddError("book_id", "must reference an existing book")
		app.failedValidationResponse(w, r, v)
		return false
	}
	return true
}

// createBookmarkHandler handles POST /api/bookmarks.
func (app *applicationDependencies) createBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookmarkInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateBookmark(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	ctx := storageContext(r)
	if !app.checkBookReference(ctx, w, r, input.BookID) {
		return
	}

	bm := input.Bookmark()
	err = app.models.Bookmarks.Insert(ctx, bm)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	created, err := app.models.Bookmarks.Get(ctx, bm.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, created, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookmarkHandler handles PUT /api/bookmarks/:id as a full replace. A
// missing bookmark is 404 before the body is validated.
func (app *applicationDependencies) updateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.BookmarkInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := storageContext(r)

	_, err = app.models.Bookmarks.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	v := validator.New()
	if data.ValidateBookmark(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	if !app.checkBookReference(ctx, w, r, input.BookID) {
		return
	}

	bm := input.Bookmark()
	bm.ID = id

	err = app.models.Bookmarks.Update(ctx, bm)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	updated, err := app.models.Bookmarks.Get(ctx, id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, updated, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookmarkHandler handles DELETE /api/bookmarks/:id; absent ids succeed.
func (app *applicationDependencies) deleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err == nil {
		err = app.models.Bookmarks.Delete(storageContext(r), id)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
