package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/types"
)

func TestPrintExtraction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExtraction(&ingestion.Result{
		Fields: ingestion.Fields{Name: "Jane Doe", Email: "jane@example.com"},
		Meta:   &types.ResumeMeta{Name: "cv.pdf", Type: "application/pdf", Size: 1024},
	})
	output := buf.String()

	assert.Contains(t, output, "RÉSUMÉ")
	assert.Contains(t, output, "cv.pdf")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "jane@example.com")
	assert.Contains(t, output, "Phone:  —")
}

func TestPrintExtraction_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintExtraction(nil)
	assert.Empty(t, buf.String())
}

func TestPrintQuestion_WrapsLongText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	q := types.Question{
		ID:         "q5",
		Difficulty: types.DifficultyHard,
		Text:       "Given a large React app, how would you split bundles and optimize TTI? Mention code-splitting and caching strategies.",
	}
	p.PrintQuestion(4, 6, q)
	output := buf.String()

	assert.Contains(t, output, "QUESTION 5/6  [HARD, 120s]")
	assert.Contains(t, output, "caching strategies.")
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestPrintScoreResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScoreResult(types.ScoreResult{
		Scores: []types.ScoreEntry{
			{QuestionID: "q1", Difficulty: types.DifficultyEasy, Score: 7, Feedback: "Good"},
			{QuestionID: "q2", Difficulty: types.DifficultyEasy, Score: 0, Feedback: "No answer"},
		},
		FinalScore: 7,
		Summary:    "Solid basics.",
	})
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW RESULTS")
	assert.Contains(t, output, "Final score: 7/20")
	assert.Contains(t, output, "Solid basics.")
}

func TestPrintRosterTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRosterTable(nil)
	assert.Equal(t, "No candidates yet.\n", buf.String())

	buf.Reset()
	score := 42
	p.PrintRosterTable([]types.RosterEntry{
		{ID: "a", Name: "Jane Doe", Email: "jane@example.com", FinalScore: &score, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Name: "John Roe"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "42")
	assert.Contains(t, lines[1], "2025-03-01")
	assert.Contains(t, lines[2], "-")
}

func TestPrintRosterEntry(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	score := 9
	p.PrintRosterEntry(types.RosterEntry{
		ID:         "abc",
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		FinalScore: &score,
		Summary:    "Promising.",
		Questions: []types.Question{
			{ID: "q1", Difficulty: types.DifficultyEasy, Text: "What is JSX?"},
			{ID: "q2", Difficulty: types.DifficultyEasy, Text: "let vs var?"},
		},
		Answers: []types.Answer{
			{QuestionID: "q1", Text: "Syntax sugar"},
			{QuestionID: "q2", Text: "", TimedOut: true},
		},
		Scores: []types.ScoreEntry{
			{QuestionID: "q1", Score: 9, Feedback: "Good"},
		},
		Messages: []types.ChatMessage{{Role: types.RoleBot, Text: "Hi"}},
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE abc")
	assert.Contains(t, output, "Promising.")
	assert.Contains(t, output, "Answer: Syntax sugar")
	assert.Contains(t, output, "Answer: (empty) [timed out]")
	assert.Contains(t, output, "Score: 9/10  Good")
	assert.Contains(t, output, "bot: Hi")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5))
}
