package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

// POST /candidates
func CreateCandidateHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c assess.Candidate
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		created, err := store.CreateCandidate(r.Context(), c)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /candidates/{candidateID}
func GetCandidateHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCandidate(r.Context(), chi.URLParam(r, "candidateID"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /candidates?q=...&limit=50&offset=0
func ListCandidatesHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListCandidates(r.Context(), assess.ListOpts{
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
