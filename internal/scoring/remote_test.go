package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/llm/llmtest"
	"github.com/jonathan/interview-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOrder        = []string{"q1", "q2"}
	testDifficulties = map[string]types.Difficulty{
		"q1": types.DifficultyEasy,
		"q2": types.DifficultyHard,
	}
)

func TestParse_Success(t *testing.T) {
	reply := `{
		"scores": [
			{"questionId": "q2", "difficulty": "easy", "score": 7, "feedback": "Solid"},
			{"questionId": "q1", "difficulty": "hard", "score": 4, "feedback": "Brief"}
		],
		"finalScore": 99,
		"summary": "Good candidate."
	}`

	result, err := Parse(reply, testOrder, testDifficulties)
	require.NoError(t, err)

	require.Len(t, result.Scores, 2)
	assert.Equal(t, "q1", result.Scores[0].QuestionID)
	assert.Equal(t, types.DifficultyEasy, result.Scores[0].Difficulty, "difficulty comes from the question list")
	assert.Equal(t, 4, result.Scores[0].Score)
	assert.Equal(t, "q2", result.Scores[1].QuestionID)
	assert.Equal(t, types.DifficultyHard, result.Scores[1].Difficulty)
	assert.Equal(t, 11, result.FinalScore, "reported finalScore is replaced by the sum")
	assert.Equal(t, "Good candidate.", result.Summary)
}

func TestParse_CoercesScores(t *testing.T) {
	reply := `{"scores": [
		{"questionId": "q1", "score": "9"},
		{"questionId": "q2", "score": 14.6}
	]}`

	result, err := Parse(reply, testOrder, testDifficulties)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Scores[0].Score, "string scores become zero")
	assert.Equal(t, 10, result.Scores[1].Score, "scores are clamped")
	assert.Equal(t, 10, result.FinalScore)
	assert.Equal(t, SummaryUnavailable, result.Summary)
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"7", 7},
		{"6.5", 7},
		{"-3", 0},
		{"11", 10},
		{"null", 0},
		{"true", 0},
		{`"8"`, 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceScore([]byte(tt.raw)))
		})
	}
}

func TestParse_DropsUnknownAndDuplicateIDs(t *testing.T) {
	reply := `{"scores": [
		{"questionId": "q1", "score": 5},
		{"questionId": "q1", "score": 9},
		{"questionId": "q9", "score": 10},
		{"questionId": "q2", "score": 3}
	], "summary": ""}`

	result, err := Parse(reply, testOrder, testDifficulties)
	require.NoError(t, err)

	require.Len(t, result.Scores, 2)
	assert.Equal(t, 5, result.Scores[0].Score, "first score for a question wins")
	assert.Equal(t, 8, result.FinalScore)
	assert.Equal(t, SummaryUnavailable, result.Summary)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "I cannot score this."},
		{"missing question", `{"scores": [{"questionId": "q1", "score": 5}]}`},
		{"no scores", `{"summary": "fine"}`},
		{"schema violation", `{"scores": [{"score": 5}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.reply, testOrder, testDifficulties)
			var scoringErr *ScoringError
			assert.ErrorAs(t, err, &scoringErr)
		})
	}
}

func TestParse_FencedReply(t *testing.T) {
	reply := "Here you go:\n```json\n{\"scores\":[{\"questionId\":\"q1\",\"score\":2},{\"questionId\":\"q2\",\"score\":3}],\"summary\":\"ok\"}\n```"

	result, err := Parse(reply, testOrder, testDifficulties)
	require.NoError(t, err)
	assert.Equal(t, 5, result.FinalScore)
}

func TestRemote_SendsPayload(t *testing.T) {
	mock := llmtest.Reply(`{"scores":[{"questionId":"q1","score":6}],"summary":"ok"}`)
	var tier llm.ModelTier
	inner := mock.GenerateJSONFunc
	mock.GenerateJSONFunc = func(ctx context.Context, prompt string, tr llm.ModelTier) (string, error) {
		tier = tr
		return inner(ctx, prompt, tr)
	}

	req := NewRequest(
		types.CandidateProfile{Name: "Jane Doe", Email: "jane@example.com"},
		[]types.Question{{ID: "q1", Difficulty: types.DifficultyMedium, Text: "What is a closure?"}},
		[]types.Answer{{QuestionID: "q1", Text: "A function with captured scope"}},
	)
	result, err := Remote(context.Background(), mock, req)
	require.NoError(t, err)

	assert.Equal(t, llm.TierStandard, tier)
	assert.Equal(t, types.DifficultyMedium, result.Scores[0].Difficulty)
	require.Len(t, mock.Prompts(), 1)
	prompt := mock.Prompts()[0]
	assert.True(t, strings.Contains(prompt, "What is a closure?"))
	assert.True(t, strings.Contains(prompt, "jane@example.com"))
	assert.False(t, strings.Contains(prompt, "{{.Payload}}"))
}

func TestRemote_ClientError(t *testing.T) {
	cause := errors.New("quota exceeded")
	_, err := Remote(context.Background(), llmtest.Fail(cause), Request{})

	var scoringErr *ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.ErrorIs(t, err, cause)
}
