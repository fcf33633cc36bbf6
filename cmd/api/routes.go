// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the router wrapped in middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → secureHeaders → enableCORS → rateLimit → router
//
// Endpoints:
//
//	GET    /api/health
//	GET    /api/books              – all books, title ascending
//	GET    /api/books/filter       – books matching q/title/year/author1..4/start_date/end_date
//	GET    /api/books/:id
//	POST   /api/books
//	PUT    /api/books/:id          – full replace
//	DELETE /api/books/:id
//	GET    /api/bookmarks          – optionally ?book_id=, newest first
//	GET    /api/bookmarks/search   – ?q=&book_id=
//	GET    /api/bookmarks/:id
//	POST   /api/bookmarks
//	PUT    /api/bookmarks/:id
//	DELETE /api/bookmarks/:id
//	GET    /api/search             – ?q= over books and bookmarks
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/api/health", app.healthcheckHandler)

	// httprouter v1 cannot hold a static segment next to :id, so the GET
	// handlers for :id dispatch "filter" and "search" themselves.
	router.HandlerFunc(http.MethodGet, "/api/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/api/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/api/books", app.createBookHandler)
	router.HandlerFunc(http.MethodPut, "/api/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/api/books/:id", app.deleteBookHandler)

	router.HandlerFunc(http.MethodGet, "/api/bookmarks", app.listBookmarksHandler)
	router.HandlerFunc(http.MethodGet, "/api/bookmarks/:id", app.showBookmarkHandler)
	router.HandlerFunc(http.MethodPost, "/api/bookmarks", app.createBookmarkHandler)
	router.HandlerFunc(http.MethodPut, "/api/bookmarks/:id", app.updateBookmarkHandler)
	router.HandlerFunc(http.MethodDelete, "/api/bookmarks/:id", app.deleteBookmarkHandler)

	router.HandlerFunc(http.MethodGet, "/api/search", app.globalSearchHandler)

	return app.recoverPanic(app.requestID(app.logRequest(app.secureHeaders(app.enableCORS(app.rateLimit(router))))))
}
