package scoring

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/types"
)

// Scorer scores a finished interview.
type Scorer interface {
	Score(ctx context.Context, profile types.CandidateProfile, questions []types.Question, answers []types.Answer) types.ScoreResult
}

// Adapter composes the remote stage with the heuristic. A nil Client means
// no credential is configured. OnFallback observes degraded mode; Score
// itself never reports an error.
type Adapter struct {
	Client     llm.Client
	OnFallback func(reason error)
}

// Score returns the remote result when available and the heuristic otherwise.
func (a *Adapter) Score(ctx context.Context, profile types.CandidateProfile, questions []types.Question, answers []types.Answer) types.ScoreResult {
	if a.Client == nil {
		a.fallback(llm.ErrMissingAPIKey)
		return Heuristic(questions, answers)
	}

	result, err := a.remote(ctx, NewRequest(profile, questions, answers))
	if err != nil {
		a.fallback(err)
		return Heuristic(questions, answers)
	}
	return result
}

func (a *Adapter) remote(ctx context.Context, req Request) (result types.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ScoringError{Message: fmt.Sprintf("panic in scoring service: %v", r)}
		}
	}()
	return Remote(ctx, a.Client, req)
}

func (a *Adapter) fallback(reason error) {
	if a.OnFallback != nil {
		a.OnFallback(reason)
	}
}
