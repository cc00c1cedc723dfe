package scoring

import "fmt"

// ScoringError reports why the remote stage could not score an interview
type ScoringError struct {
	Message string
	Cause   error
}

func (e *ScoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scoring failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("scoring failed: %s", e.Message)
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}
