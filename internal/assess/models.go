package assess

import "encoding/json"

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFreeText       QuestionType = "free_text"
	QuestionTimedTask      QuestionType = "timed_task"
)

// MinTimeLimitSec is the floor for timed-task questions.
const MinTimeLimitSec = 10

// Option is the canonical in-memory form of an answer choice. Older tests
// stored options without per-option points; those decode with Weighted=false
// and are scored binary against the question's own point value.
type Option struct {
	ID       string
	Text     string
	Points   int
	Weighted bool
}

type optionWire struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Points *int   `json:"points,omitempty"`
}

func (o Option) MarshalJSON() ([]byte, error) {
	w := optionWire{ID: o.ID, Text: o.Text}
	if o.Weighted {
		p := o.Points
		w.Points = &p
	}
	return json.Marshal(w)
}

func (o *Option) UnmarshalJSON(b []byte) error {
	var w optionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	o.ID = w.ID
	o.Text = w.Text
	if w.Points != nil {
		o.Points = *w.Points
		o.Weighted = true
	} else {
		o.Points = 0
		o.Weighted = false
	}
	return nil
}

type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Content string       `json:"content"`
	Points  int          `json:"points"`
	Order   int          `json:"order"`

	// multiple_choice only
	Options         []Option `json:"options,omitempty"`
	CorrectOptionID string   `json:"correct_option_id,omitempty"`

	// timed_task only
	TimeLimitSec int `json:"time_limit_sec,omitempty"`
}

type Test struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Requirements    string     `json:"requirements,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Questions       []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

type Candidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "not_started"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
)

type Assignment struct {
	ID          string           `json:"id"`
	CandidateID string           `json:"candidate_id"`
	TestID      string           `json:"test_id"`
	AccessToken string           `json:"access_token"`
	Status      AssignmentStatus `json:"status"`
	AssignedAt  int64            `json:"assigned_at"`
	StartedAt   *int64           `json:"started_at,omitempty"`
	CompletedAt *int64           `json:"completed_at,omitempty"`

	// SnapshotJSON is the frozen test captured at assignment time. It is
	// written once and never touched by later edits to the live test.
	SnapshotJSON string `json:"-"`
}

type Response struct {
	AssignmentID string   `json:"assignment_id"`
	QuestionID   string   `json:"question_id"`
	Answer       *string  `json:"answer"`
	IsCorrect    *bool    `json:"is_correct"`
	Score        *float64 `json:"score"`
	TimeTakenSec *int     `json:"time_taken_sec,omitempty"`
	GraderNotes  string   `json:"grader_notes,omitempty"`
	UpdatedAt    int64    `json:"updated_at,omitempty"`
}

// ScoreSummary is the roll-up for one assignment, always re-derived from the
// snapshot and the response set rather than stored.
type ScoreSummary struct {
	EarnedPoints float64 `json:"earned_points"`
	TotalPoints  int     `json:"total_points"`
	Percentage   int     `json:"percentage"`
}
