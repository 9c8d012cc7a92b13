package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	apihttp "github.com/wenw80/GrowAssess-sub000/internal/api/http"
	"github.com/wenw80/GrowAssess-sub000/internal/assess"
	"github.com/wenw80/GrowAssess-sub000/internal/db"
)

func newTakeServer(t *testing.T) (*httptest.Server, *assess.SQLStore) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	store := assess.NewSQLStore(dbh, "sqlite")

	r := chi.NewRouter()
	r.Route("/take/{token}", func(r chi.Router) {
		r.Get("/", apihttp.GetTakeHandler(store))
		r.Post("/start", apihttp.StartAssignmentHandler(store))
		r.Post("/answers", apihttp.SubmitAnswerHandler(store))
		r.Post("/complete", apihttp.CompleteAssignmentHandler(store))
		r.Get("/summary", apihttp.TakeSummaryHandler(store))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func seedAssignment(t *testing.T, store *assess.SQLStore) assess.Assignment {
	t.Helper()
	ctx := context.Background()
	test := assess.Test{
		ID:    "t1",
		Title: "Screening",
		Questions: []assess.Question{{
			ID: "q1", Type: assess.QuestionMultipleChoice, Content: "Pick one.", Points: 2, Order: 1,
			Options: []assess.Option{
				{ID: "A", Text: "right", Points: 2, Weighted: true},
				{ID: "B", Text: "wrong", Points: 0, Weighted: true},
			},
			CorrectOptionID: "A",
		}},
	}
	if err := store.PutTest(ctx, test); err != nil {
		t.Fatalf("put test: %v", err)
	}
	c, err := store.CreateCandidate(ctx, assess.Candidate{Name: "C", Email: "c@example.com"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	a, err := store.Assign(ctx, c.ID, test.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	return a
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestTakeFlow(t *testing.T) {
	srv, store := newTakeServer(t)
	a := seedAssignment(t, store)
	base := srv.URL + "/take/" + a.AccessToken

	// The candidate view never leaks the answer key.
	resp, err := http.Get(base)
	if err != nil {
		t.Fatalf("get take: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("get take: status %d", resp.StatusCode)
	}
	var view struct {
		Status string `json:"status"`
		Test   struct {
			Questions []struct {
				ID              string `json:"id"`
				CorrectOptionID string `json:"correct_option_id"`
				Options         []struct {
					ID     string `json:"id"`
					Points int    `json:"points"`
				} `json:"options"`
			} `json:"questions"`
		} `json:"test"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	resp.Body.Close()
	if view.Status != "not_started" {
		t.Fatalf("view status: %s", view.Status)
	}
	if len(view.Test.Questions) != 1 || view.Test.Questions[0].CorrectOptionID != "" {
		t.Fatalf("answer key leaked: %+v", view.Test.Questions)
	}
	for _, o := range view.Test.Questions[0].Options {
		if o.Points != 0 {
			t.Fatalf("option weights leaked: %+v", o)
		}
	}

	// Answering before starting is rejected.
	resp = postJSON(t, base+"/answers", map[string]any{"question_id": "q1", "answer": "A"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("answer before start: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, base+"/start", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, base+"/answers", map[string]any{"question_id": "q1", "answer": "A", "time_taken_sec": 30})
	if resp.StatusCode != 200 {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	var saved assess.Response
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if saved.Score == nil || *saved.Score != 2 {
		t.Fatalf("score: %+v", saved.Score)
	}

	// Summary is gated on completion.
	resp, err = http.Get(base + "/summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("summary before complete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, base+"/complete", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("complete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.Get(base + "/summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var sum assess.ScoreSummary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	resp.Body.Close()
	if sum.EarnedPoints != 2 || sum.TotalPoints != 2 || sum.Percentage != 100 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestTakeUnknownToken(t *testing.T) {
	srv, _ := newTakeServer(t)
	resp, err := http.Get(srv.URL + "/take/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestDoubleStartOverHTTP(t *testing.T) {
	srv, store := newTakeServer(t)
	a := seedAssignment(t, store)
	base := srv.URL + "/take/" + a.AccessToken

	resp := postJSON(t, base+"/start", nil)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("first start: status %d", resp.StatusCode)
	}
	resp = postJSON(t, base+"/start", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start: status %d", resp.StatusCode)
	}
}
