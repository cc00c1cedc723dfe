package interview

import (
	"errors"
	"fmt"
)

// Precondition errors returned by Session operations.
var (
	ErrAlreadyRunning    = errors.New("interview already running")
	ErrAlreadyScoring    = errors.New("scoring already in progress")
	ErrNotFinished       = errors.New("interview is not finished")
	ErrNotScored         = errors.New("interview has not been scored")
	ErrNoCurrentQuestion = errors.New("no current question")
	ErrProfileIncomplete = errors.New("candidate profile is incomplete")
	// ErrStaleAnswer is returned when the question being answered is no
	// longer the current one, typically because its timer expired.
	ErrStaleAnswer = errors.New("question is no longer current")
)

// SnapshotError reports a failed roster hand-off.
type SnapshotError struct {
	Cause error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("failed to save roster snapshot: %v", e.Cause)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// ErrSessionReset is returned when the session was reset while an external
// call was outstanding. The call's result is discarded.
var ErrSessionReset = errors.New("session was reset")

// ScoringFailedError reports that the scorer itself failed. The session
// returns to the unscored state.
type ScoringFailedError struct {
	Cause error
}

func (e *ScoringFailedError) Error() string {
	return fmt.Sprintf("scoring failed: %v", e.Cause)
}

func (e *ScoringFailedError) Unwrap() error {
	return e.Cause
}
