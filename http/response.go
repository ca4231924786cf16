package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/boldorider4/kvfront"
)

// WriteError writes a plain text error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(message)); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

// WriteHTML writes an HTML response
func WriteHTML(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write html response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// HandleError writes the response matching the error kind. Invalid input is
// a 400, a missing entry renders the 404 page and everything else is logged
// and reported as a 500.
func HandleError(w http.ResponseWriter, err error) {
	if errors.Is(err, kvfront.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "Invalid name")
		return
	}

	if errors.Is(err, kvfront.ErrNotFound) {
		writeNotFound(w)
		return
	}

	slog.Error("request error", "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

type listResponse struct {
	Names []string `json:"names"`
}

type entryResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Present bool   `json:"present"`
}

type createdResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
