package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
	"github.com/wenw80/GrowAssess-sub000/internal/grading"
	"github.com/wenw80/GrowAssess-sub000/internal/settings"
)

type applyGradeReq struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes,omitempty"`
}

// PUT /assignments/{assignmentID}/responses/{questionID}/grade
// Accepts a manually-or-AI-suggested numeric score into the response row.
func ApplyGradeHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))
		if assignmentID == "" || questionID == "" {
			http.Error(w, "assignmentID and questionID required", http.StatusBadRequest)
			return
		}
		var req applyGradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Score < 0 {
			http.Error(w, "score must be non-negative", http.StatusBadRequest)
			return
		}
		resp, err := store.ApplyGrade(r.Context(), assignmentID, questionID, req.Score, req.Notes)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /assignments/{assignmentID}/grading/batch
// Runs the AI suggester over every answered free-text/timed question that has
// no score yet (or the subset named in the body) and returns one result per
// item; failures are collected, never fatal to the batch. Suggestions are not
// persisted — a reviewer applies them via the grade endpoint.
func BatchGradeHandler(store assess.Store, suggester grading.Suggester, provider *settings.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		var req struct {
			QuestionIDs []string `json:"question_ids,omitempty"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		a, err := store.GetAssignment(r.Context(), assignmentID)
		if err != nil {
			apiError(w, err)
			return
		}
		responses, err := store.ListResponses(r.Context(), assignmentID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		snap, derr := assess.DecodeSnapshot(a.SnapshotJSON)
		if derr != nil || len(snap.Questions) == 0 {
			fresh, err := store.CreateSnapshot(r.Context(), a.TestID)
			if err != nil {
				apiError(w, err)
				return
			}
			snap = fresh
		}

		wanted := map[string]bool{}
		for _, id := range req.QuestionIDs {
			wanted[id] = true
		}

		items := make([]grading.Item, 0, len(responses))
		for _, resp := range responses {
			if len(wanted) > 0 && !wanted[resp.QuestionID] {
				continue
			}
			if resp.Answer == nil || resp.Score != nil {
				continue
			}
			q, ok := snap.QuestionByID(resp.QuestionID)
			if !ok || q.Type == assess.QuestionMultipleChoice {
				continue
			}
			items = append(items, grading.Item{
				QuestionID: q.ID,
				Content:    q.Content,
				MaxPoints:  q.Points,
				Answer:     *resp.Answer,
			})
		}

		cfg, err := provider.GradingConfig(r.Context())
		if err != nil {
			http.Error(w, "grading config: "+err.Error(), 500)
			return
		}
		results := grading.GradeBatch(r.Context(), suggester, cfg, items)
		writeJSON(w, http.StatusOK, results)
	}
}
