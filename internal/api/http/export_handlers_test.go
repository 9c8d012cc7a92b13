package http

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/wenw80/GrowAssess-sub000/internal/assess"
	"github.com/wenw80/GrowAssess-sub000/internal/db"
)

func TestListAllAssignmentsSpansPages(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	store := assess.NewSQLStore(dbh, "sqlite")

	test := assess.Test{
		ID:    "t1",
		Title: "Screening",
		Questions: []assess.Question{
			{ID: "q1", Type: assess.QuestionFreeText, Content: "essay", Points: 5, Order: 1},
		},
	}
	if err := store.PutTest(ctx, test); err != nil {
		t.Fatalf("put test: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		c, err := store.CreateCandidate(ctx, assess.Candidate{
			Name: fmt.Sprintf("c%d", i), Email: fmt.Sprintf("c%d@example.com", i),
		})
		if err != nil {
			t.Fatalf("candidate %d: %v", i, err)
		}
		if _, err := store.Assign(ctx, c.ID, test.ID); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}

	// A page size smaller than the row count forces multiple fetches.
	all, err := listAllAssignments(ctx, store, test.ID, 2)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != n {
		t.Fatalf("expected %d assignments across pages, got %d", n, len(all))
	}
	seen := map[string]bool{}
	for _, a := range all {
		if seen[a.ID] {
			t.Fatalf("assignment %s returned twice", a.ID)
		}
		seen[a.ID] = true
	}
}
