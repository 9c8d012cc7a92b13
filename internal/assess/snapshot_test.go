package assess

import (
	"errors"
	"reflect"
	"testing"
)

func sampleTest() Test {
	return Test{
		ID:              "t1",
		Title:           "Backend Screening",
		Requirements:    "90 minutes, no external help",
		Tags:            []string{"go", "backend"},
		DurationMinutes: 90,
		Questions: []Question{
			{
				ID: "q2", Type: QuestionFreeText, Content: "Explain indexes.", Points: 5, Order: 2,
			},
			{
				ID: "q1", Type: QuestionMultipleChoice, Content: "Pick one.", Points: 1, Order: 1,
				Options: []Option{
					{ID: "a", Text: "Right", Points: 1, Weighted: true},
					{ID: "b", Text: "Wrong", Points: 0, Weighted: true},
				},
				CorrectOptionID: "a",
			},
			{
				ID: "q3", Type: QuestionTimedTask, Content: "Fix the bug.", Points: 10, Order: 3,
				TimeLimitSec: 600,
			},
		},
	}
}

func TestBuildSnapshotOrdersQuestions(t *testing.T) {
	s := BuildSnapshot(sampleTest())
	if len(s.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(s.Questions))
	}
	for i, want := range []string{"q1", "q2", "q3"} {
		if s.Questions[i].ID != want {
			t.Fatalf("question %d: expected %s, got %s", i, want, s.Questions[i].ID)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := BuildSnapshot(sampleTest())
	raw, err := EncodeSnapshot(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, s)
	}
}

func TestSnapshotRoundTripLegacyOptions(t *testing.T) {
	// Options without a points field must survive the trip as legacy rows.
	s := Snapshot{
		Title: "Legacy",
		Questions: []SnapshotQuestion{{
			ID: "q1", Type: QuestionMultipleChoice, Content: "?", Points: 2, Order: 1,
			Options: []Option{
				{ID: "a", Text: "yes"},
				{ID: "b", Text: "no"},
			},
			CorrectOptionID: "a",
		}},
	}
	raw, err := EncodeSnapshot(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, s)
	}
	if got.Questions[0].Options[0].Weighted {
		t.Fatalf("legacy option decoded as weighted")
	}
}

func TestDecodeSnapshotMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json", `[1,2,3`} {
		_, err := DecodeSnapshot(raw)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("input %q: expected *DecodeError, got %v", raw, err)
		}
	}
}

func TestForCandidateStripsKeys(t *testing.T) {
	s := BuildSnapshot(sampleTest())
	public := s.ForCandidate()
	for _, q := range public.Questions {
		if q.CorrectOptionID != "" {
			t.Fatalf("question %s: correct option leaked", q.ID)
		}
		for _, o := range q.Options {
			if o.Points != 0 || o.Weighted {
				t.Fatalf("question %s: option points leaked", q.ID)
			}
		}
	}
	// Original untouched.
	if s.Questions[0].CorrectOptionID != "a" {
		t.Fatalf("ForCandidate mutated the source snapshot")
	}
}
