package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/audit"
)

// GET /assignments/{assignmentID}/events — lifecycle trail for one assignment.
func ListAssignmentEventsHandler(log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := log.ListByKey(r.Context(), chi.URLParam(r, "assignmentID"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}
