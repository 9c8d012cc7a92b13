package assess

import (
	"encoding/json"
	"sort"
	"strings"
)

// Snapshot is the frozen copy of a test taken when it is assigned. Scoring
// always runs against the snapshot, so edits to the live test never change
// an in-flight or completed assessment.
type Snapshot struct {
	Title           string             `json:"title"`
	Requirements    string             `json:"requirements,omitempty"`
	Tags            []string           `json:"tags,omitempty"`
	DurationMinutes int                `json:"duration_minutes,omitempty"`
	Questions       []SnapshotQuestion `json:"questions"`
}

type SnapshotQuestion struct {
	ID              string       `json:"id"`
	Type            QuestionType `json:"type"`
	Content         string       `json:"content"`
	Points          int          `json:"points"`
	Order           int          `json:"order"`
	Options         []Option     `json:"options,omitempty"`
	CorrectOptionID string       `json:"correct_option_id,omitempty"`
	TimeLimitSec    int          `json:"time_limit_sec,omitempty"`
}

// BuildSnapshot deep-copies everything needed to render and score the test
// without further lookups. Questions come out ordered ascending by Order.
func BuildSnapshot(t Test) Snapshot {
	s := Snapshot{
		Title:           t.Title,
		Requirements:    t.Requirements,
		DurationMinutes: t.DurationMinutes,
	}
	if len(t.Tags) > 0 {
		s.Tags = append([]string(nil), t.Tags...)
	}
	qs := make([]SnapshotQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		sq := SnapshotQuestion{
			ID:              q.ID,
			Type:            q.Type,
			Content:         q.Content,
			Points:          q.Points,
			Order:           q.Order,
			CorrectOptionID: q.CorrectOptionID,
			TimeLimitSec:    q.TimeLimitSec,
		}
		if len(q.Options) > 0 {
			sq.Options = append([]Option(nil), q.Options...)
		}
		qs = append(qs, sq)
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	s.Questions = qs
	return s
}

// EncodeSnapshot produces the storable text form.
func EncodeSnapshot(s Snapshot) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSnapshot parses a stored snapshot. Empty or malformed input yields a
// *DecodeError; callers fall back to the live test in that case.
func DecodeSnapshot(raw string) (Snapshot, error) {
	if strings.TrimSpace(raw) == "" {
		return Snapshot{}, &DecodeError{Reason: "empty payload"}
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, &DecodeError{Reason: "malformed payload", Err: err}
	}
	return s, nil
}

// QuestionByID finds a question in the snapshot.
func (s Snapshot) QuestionByID(id string) (SnapshotQuestion, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return SnapshotQuestion{}, false
}

// ForCandidate returns a serving copy with answer keys and per-option point
// values stripped, parity with what the candidate-facing endpoints expose.
func (s Snapshot) ForCandidate() Snapshot {
	out := s
	out.Questions = make([]SnapshotQuestion, len(s.Questions))
	copy(out.Questions, s.Questions)
	for i := range out.Questions {
		out.Questions[i].CorrectOptionID = ""
		if len(out.Questions[i].Options) > 0 {
			opts := make([]Option, len(out.Questions[i].Options))
			copy(opts, out.Questions[i].Options)
			for j := range opts {
				opts[j].Points = 0
				opts[j].Weighted = false
			}
			out.Questions[i].Options = opts
		}
	}
	return out
}
