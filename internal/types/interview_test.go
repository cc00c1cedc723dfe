package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyTimeLimit(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		want       int
	}{
		{DifficultyEasy, 20},
		{DifficultyMedium, 60},
		{DifficultyHard, 120},
		{Difficulty("expert"), DefaultTimeLimit},
	}

	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.difficulty.TimeLimit())
		})
	}
}

func TestQuestionLimit(t *testing.T) {
	assert.Equal(t, 45, Question{Difficulty: DifficultyEasy, TimeLimit: 45}.Limit())
	assert.Equal(t, 120, Question{Difficulty: DifficultyHard}.Limit())
}

func TestCandidateProfile_GetSet(t *testing.T) {
	var p CandidateProfile
	assert.False(t, p.Complete())

	p.Set(FieldName, "Jane Doe")
	p.Set(FieldEmail, "jane@example.com")
	p.Set("nickname", "JD")
	assert.Equal(t, "Jane Doe", p.Get(FieldName))
	assert.Equal(t, "jane@example.com", p.Get(FieldEmail))
	assert.Equal(t, "", p.Get("nickname"))
	assert.False(t, p.Complete())

	p.Set(FieldPhone, "+1 555-123-4567")
	assert.True(t, p.Complete())
}

func TestRosterEntry_SameCandidate(t *testing.T) {
	a := &RosterEntry{ID: "1", Email: "jane@example.com"}
	b := &RosterEntry{ID: "2", Email: "jane@example.com"}
	c := &RosterEntry{ID: "1"}
	d := &RosterEntry{ID: "3", Email: "other@example.com"}

	assert.True(t, a.SameCandidate(b))
	assert.True(t, a.SameCandidate(c), "falls back to ID when one side has no email")
	assert.False(t, a.SameCandidate(d))
}

func TestRequestValidation(t *testing.T) {
	assert.Error(t, (&ChatRequest{}).Validate())
	assert.NoError(t, (&ChatRequest{Text: "Jane"}).Validate())

	assert.NoError(t, (&UIStateRequest{ActiveTab: TabInterviewer}).Validate())
	assert.Error(t, (&UIStateRequest{ActiveTab: "settings"}).Validate())

	assert.NoError(t, (&AnswerRequest{}).Validate(), "empty answers are allowed")
	assert.Error(t, (&InterviewerLoginRequest{}).Validate())
}
