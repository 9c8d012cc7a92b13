package assess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wenw80/GrowAssess-sub000/internal/audit"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *audit.Log
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, events: audit.NewLog(db)}
}

/* ---------------- tests ---------------- */

func validateTest(t Test) error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title required")
	}
	for _, q := range t.Questions {
		if q.Points < 0 {
			return fmt.Errorf("question %q: points must be non-negative", q.ID)
		}
		switch q.Type {
		case QuestionMultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %q: options required", q.ID)
			}
			for _, o := range q.Options {
				if o.Weighted && o.Points < 0 {
					return fmt.Errorf("question %q: option %q: points must be non-negative", q.ID, o.ID)
				}
			}
		case QuestionTimedTask:
			if q.TimeLimitSec < MinTimeLimitSec {
				return fmt.Errorf("question %q: time limit below %ds", q.ID, MinTimeLimitSec)
			}
		case QuestionFreeText:
			// nothing extra
		default:
			return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
		}
	}
	return nil
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	for i := range t.Questions {
		if t.Questions[i].ID == "" {
			t.Questions[i].ID = uuid.NewString()
		}
		if t.Questions[i].Order == 0 {
			t.Questions[i].Order = i + 1
		}
	}
	if err := validateTest(t); err != nil {
		return err
	}
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	tj, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,description,requirements,tags_json,duration_minutes,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		  requirements=EXCLUDED.requirements, tags_json=EXCLUDED.tags_json,
		  duration_minutes=EXCLUDED.duration_minutes, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Title, t.Description, t.Requirements, string(tj), t.DurationMinutes, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,requirements,tags_json,duration_minutes,questions_json,created_at
		FROM tests WHERE id=$1`, id)
	var t Test
	var tagsJSON, qJSON string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Requirements, &tagsJSON, &t.DurationMinutes, &qJSON, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, fmt.Errorf("test %q: %w", id, ErrNotFound)
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qJSON), &t.Questions); err != nil {
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) DeleteTest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("test %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,tags_json,duration_minutes,questions_json,created_at
		FROM tests WHERE ($1 = '' OR title LIKE '%' || $1 || '%')
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, opts.Q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TestSummary{}
	for rows.Next() {
		var ts TestSummary
		var tagsJSON, qJSON string
		if err := rows.Scan(&ts.ID, &ts.Title, &tagsJSON, &ts.DurationMinutes, &qJSON, &ts.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &ts.Tags)
		var qs []Question
		if err := json.Unmarshal([]byte(qJSON), &qs); err == nil {
			ts.QuestionCount = len(qs)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

/* ---------------- candidates ---------------- */

func (s *SQLStore) CreateCandidate(ctx context.Context, c Candidate) (Candidate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Email == "" {
		return Candidate{}, errors.New("email required")
	}
	c.CreatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `INSERT INTO candidates (id,name,email,created_at)
		VALUES ($1,$2,$3,$4) ON CONFLICT (email) DO NOTHING`,
		c.ID, c.Name, c.Email, c.CreatedAt)
	if err != nil {
		return Candidate{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Candidate{}, fmt.Errorf("candidate %q: %w", c.Email, ErrConflict)
	}
	return c, nil
}

func (s *SQLStore) GetCandidate(ctx context.Context, id string) (Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,email,created_at FROM candidates WHERE id=$1`, id)
	var c Candidate
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, fmt.Errorf("candidate %q: %w", id, ErrNotFound)
		}
		return Candidate{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCandidates(ctx context.Context, opts ListOpts) ([]Candidate, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,email,created_at FROM candidates
		WHERE ($1 = '' OR name LIKE '%' || $1 || '%' OR email LIKE '%' || $1 || '%')
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, opts.Q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Candidate{}
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ---------------- snapshot ---------------- */

func (s *SQLStore) CreateSnapshot(ctx context.Context, testID string) (Snapshot, error) {
	t, err := s.GetTest(ctx, testID)
	if err != nil {
		return Snapshot{}, err
	}
	return BuildSnapshot(t), nil
}

/* ---------------- assignments ---------------- */

func (s *SQLStore) Assign(ctx context.Context, candidateID, testID string) (Assignment, error) {
	if _, err := s.GetCandidate(ctx, candidateID); err != nil {
		return Assignment{}, err
	}
	snap, err := s.CreateSnapshot(ctx, testID)
	if err != nil {
		return Assignment{}, err
	}
	snapJSON, err := EncodeSnapshot(snap)
	if err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		ID:           uuid.NewString(),
		CandidateID:  candidateID,
		TestID:       testID,
		AccessToken:  NewAccessToken(),
		Status:       StatusNotStarted,
		AssignedAt:   time.Now().Unix(),
		SnapshotJSON: snapJSON,
	}
	// Uniqueness of (candidate, test) rides on the table constraint so two
	// concurrent assigns cannot both land.
	res, err := s.db.ExecContext(ctx, `INSERT INTO assignments
		(id,candidate_id,test_id,access_token,status,snapshot_json,assigned_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (candidate_id, test_id) DO NOTHING`,
		a.ID, a.CandidateID, a.TestID, a.AccessToken, string(a.Status), a.SnapshotJSON, a.AssignedAt)
	if err != nil {
		return Assignment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Assignment{}, fmt.Errorf("assignment for candidate %q test %q: %w", candidateID, testID, ErrConflict)
	}
	_ = s.events.Append(ctx, audit.AssignmentCreated, a.ID, map[string]string{
		"candidate_id": candidateID, "test_id": testID,
	})
	return a, nil
}

const assignmentCols = `id,candidate_id,test_id,access_token,status,snapshot_json,assigned_at,started_at,completed_at`

func (s *SQLStore) scanAssignment(row *sql.Row) (Assignment, error) {
	var a Assignment
	var status string
	var started, completed sql.NullInt64
	if err := row.Scan(&a.ID, &a.CandidateID, &a.TestID, &a.AccessToken, &status, &a.SnapshotJSON, &a.AssignedAt, &started, &completed); err != nil {
		return Assignment{}, err
	}
	a.Status = AssignmentStatus(status)
	if started.Valid {
		v := started.Int64
		a.StartedAt = &v
	}
	if completed.Valid {
		v := completed.Int64
		a.CompletedAt = &v
	}
	return a, nil
}

func (s *SQLStore) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM assignments WHERE id=$1`, id)
	a, err := s.scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Assignment{}, fmt.Errorf("assignment %q: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *SQLStore) GetAssignmentByToken(ctx context.Context, token string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM assignments WHERE access_token=$1`, token)
	a, err := s.scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Assignment{}, fmt.Errorf("assignment: %w", ErrNotFound)
	}
	return a, err
}

func (s *SQLStore) ListAssignments(ctx context.Context, opts AssignmentListOpts) ([]Assignment, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx, `SELECT `+assignmentCols+` FROM assignments
		WHERE ($1 = '' OR test_id = $1)
		  AND ($2 = '' OR candidate_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY assigned_at DESC, id LIMIT $4 OFFSET $5`,
		opts.TestID, opts.CandidateID, opts.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Assignment{}
	for rows.Next() {
		var a Assignment
		var status string
		var started, completed sql.NullInt64
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.TestID, &a.AccessToken, &status, &a.SnapshotJSON, &a.AssignedAt, &started, &completed); err != nil {
			return nil, err
		}
		a.Status = AssignmentStatus(status)
		if started.Valid {
			v := started.Int64
			a.StartedAt = &v
		}
		if completed.Valid {
			v := completed.Int64
			a.CompletedAt = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAssignment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment %q: %w", id, ErrNotFound)
	}
	return nil
}

// Start moves not_started -> in_progress. The status guard lives in the
// UPDATE itself so two concurrent calls resolve to one winner; the loser
// sees the row already advanced and gets ErrInvalidTransition.
func (s *SQLStore) Start(ctx context.Context, token string) (Assignment, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE assignments SET status=$1, started_at=$2
		WHERE access_token=$3 AND status=$4`,
		string(StatusInProgress), time.Now().Unix(), token, string(StatusNotStarted))
	if err != nil {
		return Assignment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		a, err := s.GetAssignmentByToken(ctx, token)
		if err != nil {
			return Assignment{}, err
		}
		return Assignment{}, fmt.Errorf("start from %s: %w", a.Status, ErrInvalidTransition)
	}
	a, err := s.GetAssignmentByToken(ctx, token)
	if err != nil {
		return Assignment{}, err
	}
	_ = s.events.Append(ctx, audit.AssignmentStarted, a.ID, nil)
	return a, nil
}

// Complete moves to completed. Repeat completion is tolerated (the original
// completion timestamp is kept); completing a never-started assignment is
// rejected.
func (s *SQLStore) Complete(ctx context.Context, token string) (Assignment, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE assignments
		SET status=$1, completed_at=COALESCE(completed_at,$2)
		WHERE access_token=$3 AND status IN ($4,$5)`,
		string(StatusCompleted), time.Now().Unix(), token,
		string(StatusInProgress), string(StatusCompleted))
	if err != nil {
		return Assignment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		a, err := s.GetAssignmentByToken(ctx, token)
		if err != nil {
			return Assignment{}, err
		}
		return Assignment{}, fmt.Errorf("complete from %s: %w", a.Status, ErrInvalidTransition)
	}
	a, err := s.GetAssignmentByToken(ctx, token)
	if err != nil {
		return Assignment{}, err
	}
	_ = s.events.Append(ctx, audit.AssignmentCompleted, a.ID, nil)
	return a, nil
}

/* ---------------- responses & scoring ---------------- */

// resolveQuestion reads question metadata snapshot-first. A valid non-empty
// snapshot is authoritative: a question it does not contain cannot be
// answered, even if the live test has since grown one. The live test is only
// consulted for assignments whose snapshot is missing or unreadable.
func (s *SQLStore) resolveQuestion(ctx context.Context, a Assignment, questionID string) (SnapshotQuestion, error) {
	if snap, err := DecodeSnapshot(a.SnapshotJSON); err == nil && len(snap.Questions) > 0 {
		if q, ok := snap.QuestionByID(questionID); ok {
			return q, nil
		}
		return SnapshotQuestion{}, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
	}
	t, err := s.GetTest(ctx, a.TestID)
	if err != nil {
		return SnapshotQuestion{}, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
	}
	live := BuildSnapshot(t)
	if q, ok := live.QuestionByID(questionID); ok {
		return q, nil
	}
	return SnapshotQuestion{}, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
}

// scoringQuestions returns the question set the aggregate is computed over,
// under the same snapshot-first policy as resolveQuestion.
func (s *SQLStore) scoringQuestions(ctx context.Context, a Assignment) ([]SnapshotQuestion, error) {
	if snap, err := DecodeSnapshot(a.SnapshotJSON); err == nil && len(snap.Questions) > 0 {
		return snap.Questions, nil
	}
	t, err := s.GetTest(ctx, a.TestID)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(t).Questions, nil
}

func (s *SQLStore) SaveResponse(ctx context.Context, in SubmitAnswerInput) (Response, error) {
	a, err := s.GetAssignment(ctx, in.AssignmentID)
	if err != nil {
		return Response{}, err
	}
	q, err := s.resolveQuestion(ctx, a, in.QuestionID)
	if err != nil {
		return Response{}, err
	}
	score, isCorrect := ScoreAnswer(q, in.Answer)

	// Single atomic upsert on the composite key: a candidate revisiting a
	// question overwrites the prior row, never duplicates it.
	_, err = s.db.ExecContext(ctx, `INSERT INTO responses
		(assignment_id,question_id,answer,is_correct,score,time_taken_sec,grader_notes,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,'',$7)
		ON CONFLICT (assignment_id, question_id) DO UPDATE SET
		  answer=EXCLUDED.answer, is_correct=EXCLUDED.is_correct, score=EXCLUDED.score,
		  time_taken_sec=EXCLUDED.time_taken_sec, updated_at=EXCLUDED.updated_at`,
		in.AssignmentID, in.QuestionID, in.Answer, isCorrect, score, in.TimeTakenSec, time.Now().Unix())
	if err != nil {
		return Response{}, err
	}
	return s.getResponse(ctx, in.AssignmentID, in.QuestionID)
}

func (s *SQLStore) ApplyGrade(ctx context.Context, assignmentID, questionID string, score float64, notes string) (Response, error) {
	if _, err := s.GetAssignment(ctx, assignmentID); err != nil {
		return Response{}, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO responses
		(assignment_id,question_id,answer,is_correct,score,time_taken_sec,grader_notes,updated_at)
		VALUES ($1,$2,NULL,NULL,$3,NULL,$4,$5)
		ON CONFLICT (assignment_id, question_id) DO UPDATE SET
		  score=EXCLUDED.score, grader_notes=EXCLUDED.grader_notes, updated_at=EXCLUDED.updated_at`,
		assignmentID, questionID, score, notes, time.Now().Unix())
	if err != nil {
		return Response{}, err
	}
	_ = s.events.Append(ctx, audit.ResponseGraded, assignmentID, map[string]any{
		"question_id": questionID, "score": score,
	})
	return s.getResponse(ctx, assignmentID, questionID)
}

const responseCols = `assignment_id,question_id,answer,is_correct,score,time_taken_sec,grader_notes,updated_at`

func (s *SQLStore) getResponse(ctx context.Context, assignmentID, questionID string) (Response, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+responseCols+` FROM responses
		WHERE assignment_id=$1 AND question_id=$2`, assignmentID, questionID)
	r, err := scanResponse(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, fmt.Errorf("response: %w", ErrNotFound)
	}
	return r, err
}

func scanResponse(scan func(...any) error) (Response, error) {
	var r Response
	var answer sql.NullString
	var isCorrect sql.NullBool
	var score sql.NullFloat64
	var timeTaken sql.NullInt64
	if err := scan(&r.AssignmentID, &r.QuestionID, &answer, &isCorrect, &score, &timeTaken, &r.GraderNotes, &r.UpdatedAt); err != nil {
		return Response{}, err
	}
	if answer.Valid {
		v := answer.String
		r.Answer = &v
	}
	if isCorrect.Valid {
		v := isCorrect.Bool
		r.IsCorrect = &v
	}
	if score.Valid {
		v := score.Float64
		r.Score = &v
	}
	if timeTaken.Valid {
		v := int(timeTaken.Int64)
		r.TimeTakenSec = &v
	}
	return r, nil
}

func (s *SQLStore) ListResponses(ctx context.Context, assignmentID string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+responseCols+` FROM responses
		WHERE assignment_id=$1 ORDER BY question_id`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Response{}
	for rows.Next() {
		r, err := scanResponse(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Summary(ctx context.Context, assignmentID string) (ScoreSummary, error) {
	a, err := s.GetAssignment(ctx, assignmentID)
	if err != nil {
		return ScoreSummary{}, err
	}
	questions, err := s.scoringQuestions(ctx, a)
	if err != nil {
		return ScoreSummary{}, err
	}
	responses, err := s.ListResponses(ctx, assignmentID)
	if err != nil {
		return ScoreSummary{}, err
	}
	return Aggregate(questions, responses), nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
