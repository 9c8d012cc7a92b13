package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

// POST /assignments  { "candidate_id": "...", "test_id": "..." }
func CreateAssignmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CandidateID string `json:"candidate_id"`
			TestID      string `json:"test_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.CandidateID == "" || req.TestID == "" {
			http.Error(w, "candidate_id and test_id required", 400)
			return
		}
		a, err := store.Assign(r.Context(), req.CandidateID, req.TestID)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /assignments?test_id=...&candidate_id=...&status=...&limit=50&offset=0
func ListAssignmentsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListAssignments(r.Context(), assess.AssignmentListOpts{
			TestID:      strings.TrimSpace(r.URL.Query().Get("test_id")),
			CandidateID: strings.TrimSpace(r.URL.Query().Get("candidate_id")),
			Status:      strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:       parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:      parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type assignmentDetail struct {
	assess.Assignment
	Responses []assess.Response   `json:"responses"`
	Summary   assess.ScoreSummary `json:"summary"`
}

// GET /assignments/{assignmentID} — reviewer view: responses plus the
// aggregate, always re-derived from snapshot + responses.
func GetAssignmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assignmentID")
		a, err := store.GetAssignment(r.Context(), id)
		if err != nil {
			apiError(w, err)
			return
		}
		responses, err := store.ListResponses(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		summary, err := store.Summary(r.Context(), id)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assignmentDetail{Assignment: a, Responses: responses, Summary: summary})
	}
}

// DELETE /assignments/{assignmentID} — responses go with it (cascade).
func DeleteAssignmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteAssignment(r.Context(), chi.URLParam(r, "assignmentID")); err != nil {
			apiError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
