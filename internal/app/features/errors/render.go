// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RenderJSON writes v as JSON with the given status.
func RenderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil || status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RenderError writes {"error": msg} with the given status.
func RenderError(w http.ResponseWriter, status int, msg string) {
	RenderJSON(w, status, ErrorBody{Error: msg})
}

// RenderUnauthorized answers 401.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	RenderError(w, http.StatusUnauthorized, "sign in required")
}

// RenderForbidden answers 403 with msg, or a generic message when empty.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg string) {
	if msg == "" {
		msg = "you don't have permission to do that"
	}
	RenderError(w, http.StatusForbidden, msg)
}

// RenderNotFound answers 404.
func RenderNotFound(w http.ResponseWriter, r *http.Request, what string) {
	RenderError(w, http.StatusNotFound, what+" not found")
}

// RenderValidation answers 422 with per-field messages. Nothing was written.
func RenderValidation(w http.ResponseWriter, fields map[string]string) {
	RenderJSON(w, http.StatusUnprocessableEntity, ErrorBody{Error: "validation failed", Fields: fields})
}

// RenderConflict answers 409.
func RenderConflict(w http.ResponseWriter, msg string) {
	RenderError(w, http.StatusConflict, msg)
}

// NotFound is the router's fallback handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderError(w, http.StatusNotFound, "no such endpoint")
}

// MethodNotAllowed is the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RenderError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// DecodeJSON reads a JSON body into v. Unknown fields are rejected so typos
// in field names surface as 400s.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// DecodeOr400 decodes the body into v and answers 400 on failure.
// It reports whether the handler should continue.
func DecodeOr400(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		RenderError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
