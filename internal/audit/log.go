package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types appended by the assessment store.
const (
	AssignmentCreated   = "AssignmentCreated"
	AssignmentStarted   = "AssignmentStarted"
	AssignmentCompleted = "AssignmentCompleted"
	ResponseGraded      = "ResponseGraded"
)

type Event struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// Log is an append-only record of lifecycle transitions, keyed by the
// natural key of the affected entity (assignment ID).
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, typ, key string, data any) error {
	payload := "{}"
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_events (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, payload, time.Now().Unix())
	return err
}

func (l *Log) ListByKey(ctx context.Context, key string) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM audit_events WHERE key=$1 ORDER BY seq ASC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
