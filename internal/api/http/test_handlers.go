package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

// POST /tests
func CreateTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t assess.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		t2, err := store.GetTest(r.Context(), t.ID)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t2)
	}
}

// PUT /tests/{testID}
func UpdateTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		if _, err := store.GetTest(r.Context(), id); err != nil {
			apiError(w, err)
			return
		}
		var t assess.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		t.ID = id
		if err := store.PutTest(r.Context(), t); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		t2, err := store.GetTest(r.Context(), id)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t2)
	}
}

// GET /tests/{testID}
func GetTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// DELETE /tests/{testID}
func DeleteTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteTest(r.Context(), chi.URLParam(r, "testID")); err != nil {
			apiError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /tests?q=...&limit=50&offset=0
func ListTestsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListTests(r.Context(), assess.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
