package assess

import "context"

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type AssignmentListOpts struct {
	TestID      string
	CandidateID string
	Status      string
	Limit       int
	Offset      int
}

// TestSummary is the list-view projection of a test.
type TestSummary struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Tags            []string `json:"tags,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	QuestionCount   int      `json:"question_count"`
	CreatedAt       int64    `json:"created_at"`
}

// SubmitAnswerInput is one candidate answer for one question.
type SubmitAnswerInput struct {
	AssignmentID string
	QuestionID   string
	Answer       string
	TimeTakenSec *int
}

// Store is the persistence surface for the assessment core.
type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)
	DeleteTest(ctx context.Context, id string) error
	ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error)

	CreateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	GetCandidate(ctx context.Context, id string) (Candidate, error)
	ListCandidates(ctx context.Context, opts ListOpts) ([]Candidate, error)

	// CreateSnapshot freezes the current shape of a test.
	CreateSnapshot(ctx context.Context, testID string) (Snapshot, error)

	Assign(ctx context.Context, candidateID, testID string) (Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	GetAssignmentByToken(ctx context.Context, token string) (Assignment, error)
	ListAssignments(ctx context.Context, opts AssignmentListOpts) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error

	Start(ctx context.Context, token string) (Assignment, error)
	Complete(ctx context.Context, token string) (Assignment, error)

	SaveResponse(ctx context.Context, in SubmitAnswerInput) (Response, error)
	ApplyGrade(ctx context.Context, assignmentID, questionID string, score float64, notes string) (Response, error)
	ListResponses(ctx context.Context, assignmentID string) ([]Response, error)

	// Summary re-derives the aggregate score from snapshot + responses.
	Summary(ctx context.Context, assignmentID string) (ScoreSummary, error)
}
