package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

// The /take surface is addressed purely by the assignment's access token;
// candidates hold no account and no JWT.

type takeView struct {
	Status      assess.AssignmentStatus `json:"status"`
	AssignedAt  int64                   `json:"assigned_at"`
	StartedAt   *int64                  `json:"started_at,omitempty"`
	CompletedAt *int64                  `json:"completed_at,omitempty"`
	Test        assess.Snapshot         `json:"test"`
}

// GET /take/{token}
func GetTakeHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAssignmentByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			apiError(w, err)
			return
		}
		snap, derr := assess.DecodeSnapshot(a.SnapshotJSON)
		if derr != nil || len(snap.Questions) == 0 {
			// Unreadable snapshot: serve the live test so the link still works.
			fresh, err := store.CreateSnapshot(r.Context(), a.TestID)
			if err != nil {
				apiError(w, err)
				return
			}
			snap = fresh
		}
		writeJSON(w, http.StatusOK, takeView{
			Status:      a.Status,
			AssignedAt:  a.AssignedAt,
			StartedAt:   a.StartedAt,
			CompletedAt: a.CompletedAt,
			Test:        snap.ForCandidate(),
		})
	}
}

// POST /take/{token}/start
func StartAssignmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.Start(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /take/{token}/answers  { "question_id": "...", "answer": "...", "time_taken_sec": 12 }
func SubmitAnswerHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAssignmentByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			apiError(w, err)
			return
		}
		if a.Status != assess.StatusInProgress {
			http.Error(w, "assignment is not in progress", http.StatusConflict)
			return
		}
		var req struct {
			QuestionID   string `json:"question_id"`
			Answer       string `json:"answer"`
			TimeTakenSec *int   `json:"time_taken_sec,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", 400)
			return
		}
		resp, err := store.SaveResponse(r.Context(), assess.SubmitAnswerInput{
			AssignmentID: a.ID,
			QuestionID:   req.QuestionID,
			Answer:       req.Answer,
			TimeTakenSec: req.TimeTakenSec,
		})
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /take/{token}/complete
func CompleteAssignmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.Complete(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /take/{token}/summary — available once completed.
func TakeSummaryHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAssignmentByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			apiError(w, err)
			return
		}
		if a.Status != assess.StatusCompleted {
			http.Error(w, "assignment not completed", http.StatusConflict)
			return
		}
		summary, err := store.Summary(r.Context(), a.ID)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
