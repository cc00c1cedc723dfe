package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/llm/llmtest"
	"github.com/jonathan/interview-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adapterQuestions = []types.Question{
		{ID: "q1", Difficulty: types.DifficultyEasy, Text: "Easy one"},
		{ID: "q2", Difficulty: types.DifficultyMedium, Text: "Medium one"},
	}
	adapterAnswers = []types.Answer{
		{QuestionID: "q1", Text: "one two three four five six seven eight"},
		{QuestionID: "q2", Text: ""},
	}
)

func TestAdapter_NoClientUsesHeuristic(t *testing.T) {
	var reasons []error
	a := &Adapter{OnFallback: func(err error) { reasons = append(reasons, err) }}

	result := a.Score(context.Background(), types.CandidateProfile{}, adapterQuestions, adapterAnswers)

	assert.Equal(t, Heuristic(adapterQuestions, adapterAnswers), result)
	assert.Equal(t, 2, result.FinalScore)
	require.Len(t, reasons, 1)
	assert.ErrorIs(t, reasons[0], llm.ErrMissingAPIKey)
}

func TestAdapter_RemoteSuccess(t *testing.T) {
	called := false
	a := &Adapter{
		Client:     llmtest.Reply(`{"scores":[{"questionId":"q1","score":8,"feedback":"Good"},{"questionId":"q2","score":6}],"summary":"Strong."}`),
		OnFallback: func(error) { called = true },
	}

	result := a.Score(context.Background(), types.CandidateProfile{Name: "Jane"}, adapterQuestions, adapterAnswers)

	assert.False(t, called)
	assert.Equal(t, 14, result.FinalScore)
	assert.Equal(t, "Strong.", result.Summary)
	assert.Equal(t, "Good", result.Scores[0].Feedback)
}

func TestAdapter_RemoteFailureFallsBack(t *testing.T) {
	var reason error
	a := &Adapter{
		Client:     llmtest.Fail(errors.New("network down")),
		OnFallback: func(err error) { reason = err },
	}

	result := a.Score(context.Background(), types.CandidateProfile{}, adapterQuestions, adapterAnswers)

	assert.Equal(t, HeuristicSummary, result.Summary)
	var scoringErr *ScoringError
	assert.ErrorAs(t, reason, &scoringErr)
}

func TestAdapter_MalformedReplyFallsBack(t *testing.T) {
	a := &Adapter{Client: llmtest.Reply("not json at all")}

	result := a.Score(context.Background(), types.CandidateProfile{}, adapterQuestions, adapterAnswers)

	assert.Equal(t, Heuristic(adapterQuestions, adapterAnswers), result)
}

func TestAdapter_PanicFallsBack(t *testing.T) {
	var reason error
	a := &Adapter{
		Client: &llmtest.MockClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				panic("boom")
			},
		},
		OnFallback: func(err error) { reason = err },
	}

	var result types.ScoreResult
	require.NotPanics(t, func() {
		result = a.Score(context.Background(), types.CandidateProfile{}, adapterQuestions, adapterAnswers)
	})
	assert.Equal(t, HeuristicSummary, result.Summary)
	require.Error(t, reason)
	assert.Contains(t, reason.Error(), "boom")
}
