// cmd/api/handlers.go
// HTTP handlers for the books resource. Each handler is a method on
// *applicationDependencies so it has access to the logger and models.
package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/bookshelf/internal/data"
	"github.com/aoideee/bookshelf/internal/validator"
)

// listBooksHandler handles GET /api/books: every book, title ascending.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(storageContext(r), data.BookFilters{})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, books, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// filterBooksHandler handles GET /api/books/filter. Every query parameter is
// optional; unparseable year or dates are rejected with 400.
func (app *applicationDependencies) filterBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	filters := data.BookFilters{
		Q:         app.readString(qs, "q"),
		Title:     app.readString(qs, "title"),
		Author1:   app.readString(qs, "author1"),
		Author2:   app.readString(qs, "author2"),
		Author3:   app.readString(qs, "author3"),
		Author4:   app.readString(qs, "author4"),
		Year:      app.readInt(qs, "year", v),
		StartDate: app.readDate(qs, "start_date", v),
		EndDate:   app.readDate(qs, "end_date", v),
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	books, err := app.models.Books.GetAll(storageContext(r), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, books, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /api/books/:id, and GET /api/books/filter
// which shares its route.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	if httprouter.ParamsFromContext(r.Context()).ByName("id") == "filter" {
		app.filterBooksHandler(w, r)
		return
	}

	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(storageContext(r), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, book, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /api/books. It validates the body, inserts
// the book and responds 201 with the row as read back from storage.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateBook(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	ctx := storageContext(r)
	book := input.Book()

	err = app.models.Books.Insert(ctx, book)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// A separate read: a concurrent delete in between surfaces as a failure.
	created, err := app.models.Books.Get(ctx, book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, created, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT /api/books/:id. The body replaces every field
// of the stored book. A missing book is 404 whatever the body holds.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.BookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := storageContext(r)

	exists, err := app.models.Books.Exists(ctx, id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !exists {
		app.notFoundResponse(w, r)
		return
	}

	v := validator.New()
	if data.ValidateBook(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	book := input.Book()
	book.ID = id

	err = app.models.Books.Update(ctx, book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	updated, err := app.models.Books.Get(ctx, id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, updated, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /api/books/:id. It reports success whether
// or not the book existed, and never touches the book's bookmarks.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err == nil {
		err = app.models.Books.Delete(storageContext(r), id)
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
