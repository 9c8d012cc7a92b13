package assess

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// DecodeError marks a snapshot payload that is present but unreadable.
// Callers recover by treating it the same as an absent snapshot.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot decode: %s: %v", e.Reason, e.Err)
	}
	return "snapshot decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }
