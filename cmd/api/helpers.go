// cmd/api/helpers.go
// Request parsing and JSON writing helpers. Error responses live in errors.go.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/bookshelf/internal/data"
	"github.com/aoideee/bookshelf/internal/validator"
)

// envelope wraps the small object responses: {"success": true}, {"error": ...}.
// Entity and list responses are written bare.
type envelope map[string]any

var errInvalidID = errors.New("invalid id parameter")

// readIDParam extracts the ":id" URL parameter added by httprouter.
// Returns errInvalidID if the value is non-numeric or less than 1.
func (app *applicationDependencies) readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// readString reads a string query parameter, or "" when absent.
func (app *applicationDependencies) readString(qs url.Values, key string) string {
	return strings.TrimSpace(qs.Get(key))
}

// readInt reads an optional integer query parameter. A present but malformed
// value is recorded in v and nil is returned.
func (app *applicationDependencies) readInt(qs url.Values, key string, v *validator.Validator) *int {
	s := app.readString(qs, key)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return nil
	}
	return &i
}

// readID reads an optional positive id query parameter such as book_id.
func (app *applicationDependencies) readID(qs url.Values, key string, v *validator.Validator) *int64 {
	s := app.readString(qs, key)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		v.AddError(key, "must be a positive integer")
		return nil
	}
	return &id
}

// readDate reads an optional YYYY-MM-DD query parameter.
func (app *applicationDependencies) readDate(qs url.Values, key string, v *validator.Validator) *data.Date {
	s := app.readString(qs, key)
	if s == "" {
		return nil
	}
	d, err := data.ParseDate(s)
	if err != nil {
		v.AddError(key, err.Error())
		return nil
	}
	return &d
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It enforces a 1 MB size limit, rejects unknown fields, and ensures the
// body contains exactly one JSON value. Errors are phrased for the client.
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBytes = 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.Is(err, data.ErrInvalidDate):
			return fmt.Errorf("body contains a date that %s", data.ErrInvalidDate)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// storageContext detaches storage work from client disconnects: once a
// request starts talking to the database it runs to completion or failure.
func storageContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
