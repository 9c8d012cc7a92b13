package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500; there is no retry machinery anywhere in this path.
func apiError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assess.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, assess.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, assess.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
