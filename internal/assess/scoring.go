package assess

import "math"

// ScoreAnswer computes the provisional grade for one submitted answer.
// Free-text and timed questions defer to manual or AI-assisted grading, so
// both return values are nil for them. For multiple-choice:
//
//   - a weighted option scores its own point value, and IsCorrect reflects
//     only the correct-option flag (partial credit keeps the two independent);
//   - a legacy option scores the question's points or zero, binary;
//   - an answer matching no option scores zero, flagged incorrect.
func ScoreAnswer(q SnapshotQuestion, answer string) (score *float64, isCorrect *bool) {
	if q.Type != QuestionMultipleChoice {
		return nil, nil
	}
	correct := answer == q.CorrectOptionID
	for _, opt := range q.Options {
		if opt.ID != answer {
			continue
		}
		var s float64
		if opt.Weighted {
			s = float64(opt.Points)
		} else if correct {
			s = float64(q.Points)
		}
		return &s, &correct
	}
	zero := 0.0
	wrong := false
	return &zero, &wrong
}

// Aggregate rolls up an assignment's responses against its snapshot
// questions. An explicit score always wins over the correctness flag; the
// flag only backfills points for rows graded before scores existed.
func Aggregate(questions []SnapshotQuestion, responses []Response) ScoreSummary {
	total := 0
	points := make(map[string]int, len(questions))
	for _, q := range questions {
		total += q.Points
		points[q.ID] = q.Points
	}

	earned := 0.0
	for _, r := range responses {
		switch {
		case r.Score != nil:
			earned += *r.Score
		case r.IsCorrect != nil && *r.IsCorrect:
			earned += float64(points[r.QuestionID])
		}
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(earned / float64(total) * 100))
	}
	return ScoreSummary{EarnedPoints: earned, TotalPoints: total, Percentage: pct}
}
