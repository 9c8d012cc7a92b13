package http

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
)

type resultRow struct {
	CandidateID    string `json:"candidate_id"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	Status         string `json:"status"`
	AssignedAt     int64  `json:"assigned_at"`
	CompletedAt    *int64 `json:"completed_at,omitempty"`

	EarnedPoints float64 `json:"earned_points"`
	TotalPoints  int     `json:"total_points"`
	Percentage   int     `json:"percentage"`
}

const exportPageSize = 500

// listAllAssignments pages through every assignment of a test so the export
// is never truncated at one page.
func listAllAssignments(ctx context.Context, store assess.Store, testID string, pageSize int) ([]assess.Assignment, error) {
	var all []assess.Assignment
	for offset := 0; ; offset += pageSize {
		page, err := store.ListAssignments(ctx, assess.AssignmentListOpts{
			TestID: testID,
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// GET /tests/{testID}/results?format=json|csv
// Aggregates are recomputed per assignment from its snapshot and responses.
func ExportResultsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		assignments, err := listAllAssignments(r.Context(), store, testID, exportPageSize)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		rows := make([]resultRow, 0, len(assignments))
		for _, a := range assignments {
			row := resultRow{
				CandidateID: a.CandidateID,
				Status:      string(a.Status),
				AssignedAt:  a.AssignedAt,
				CompletedAt: a.CompletedAt,
			}
			if c, err := store.GetCandidate(r.Context(), a.CandidateID); err == nil {
				row.CandidateName = c.Name
				row.CandidateEmail = c.Email
			}
			if s, err := store.Summary(r.Context(), a.ID); err == nil {
				row.EarnedPoints = s.EarnedPoints
				row.TotalPoints = s.TotalPoints
				row.Percentage = s.Percentage
			}
			rows = append(rows, row)
		}

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="results-`+testID+`.csv"`)
			cw := csv.NewWriter(w)
			_ = cw.Write([]string{"candidate_id", "name", "email", "status", "earned", "total", "percentage"})
			for _, row := range rows {
				_ = cw.Write([]string{
					row.CandidateID, row.CandidateName, row.CandidateEmail, row.Status,
					strconv.FormatFloat(row.EarnedPoints, 'f', -1, 64),
					strconv.Itoa(row.TotalPoints),
					strconv.Itoa(row.Percentage),
				})
			}
			cw.Flush()
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
