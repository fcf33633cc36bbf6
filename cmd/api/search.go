// cmd/api/search.go
package main

import "net/http"

// globalSearchHandler handles GET /api/search?q=. It always answers with
// {"books": [...], "bookmarks": [...]}; a blank q gives two empty lists.
func (app *applicationDependencies) globalSearchHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.models.Search.Global(storageContext(r), r.URL.Query().Get("q"))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, result, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// healthcheckHandler handles GET /api/health. It reports liveness only and
// does not touch storage.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	body := envelope{
		"ok":          true,
		"environment": app.config.environment,
		"version":     appVersion,
	}

	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
