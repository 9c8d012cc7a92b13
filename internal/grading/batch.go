package grading

import "context"

// BatchItem is the per-item outcome of a bulk grading run.
type BatchItem struct {
	QuestionID string     `json:"question_id"`
	OK         bool       `json:"ok"`
	Err        string     `json:"error,omitempty"`
	Suggestion Suggestion `json:"suggestion"`
}

// GradeBatch runs items sequentially and collects one result per item.
// A failed item is recorded and the batch moves on; one bad response must
// never abort the rest.
func GradeBatch(ctx context.Context, s Suggester, cfg Config, items []Item) []BatchItem {
	out := make([]BatchItem, 0, len(items))
	for _, item := range items {
		res := BatchItem{QuestionID: item.QuestionID}
		sg, err := s.Suggest(ctx, cfg, item)
		if err != nil {
			res.Err = err.Error()
		} else {
			res.OK = true
			res.Suggestion = sg
		}
		out = append(out, res)
	}
	return out
}
