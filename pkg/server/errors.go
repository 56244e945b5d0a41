package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is an error that knows its response status.
type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps err onto a response status, defaulting to 500.
func statusOf(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeJSONError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Error: message})
}
