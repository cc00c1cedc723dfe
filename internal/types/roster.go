package types

import "time"

// RosterEntry is an immutable snapshot of a finished and scored interview.
type RosterEntry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	ResumeMeta *ResumeMeta   `json:"resumeMeta,omitempty"`
	FinalScore *int          `json:"finalScore"`
	Summary    string        `json:"summary"`
	CreatedAt  time.Time     `json:"createdAt"`
	Questions  []Question    `json:"questions"`
	Answers    []Answer      `json:"answers"`
	Scores     []ScoreEntry  `json:"scores"`
	Messages   []ChatMessage `json:"messages"`
}

// SameCandidate reports whether two entries refer to the same identity.
// Entries match by email when both carry one, otherwise by ID.
func (e *RosterEntry) SameCandidate(other *RosterEntry) bool {
	if e.Email != "" && other.Email != "" {
		return e.Email == other.Email
	}
	return e.ID == other.ID
}

// Score returns the final score, or zero when unset.
func (e *RosterEntry) Score() int {
	if e.FinalScore == nil {
		return 0
	}
	return *e.FinalScore
}
