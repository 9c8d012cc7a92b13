package grading

import "context"

// Config is the per-call configuration for the external grading service,
// resolved by the caller (env or settings store) and passed in explicitly.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

// Item is a minimal view of one ungraded response. Keep this decoupled from
// the store's question shape.
type Item struct {
	QuestionID string
	Content    string // question text as the candidate saw it
	MaxPoints  int
	Answer     string
}

// Suggestion is the outcome of grading a single item.
type Suggestion struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Suggester produces a suggested score for a free-text or timed answer.
// Suggestions are advisory: a reviewer accepts or edits them before they
// land on the response row.
type Suggester interface {
	Suggest(ctx context.Context, cfg Config, item Item) (Suggestion, error)
}
