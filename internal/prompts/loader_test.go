package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("interview.json", "score-answers")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Score each answer from 0-10")
	assert.Contains(t, prompt, "{{.Payload}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("interview.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("interview.json", "missing")
	})
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, {{.Name}} has {{.Count}} questions. {{.Unknown}}", map[string]string{
		"Name":  "Jane",
		"Count": "6",
	})
	assert.Equal(t, "Hello Jane, Jane has 6 questions. {{.Unknown}}", out)
}

func TestGenerateQuestionsPrompt(t *testing.T) {
	prompt := MustGet("interview.json", "generate-questions")
	out := Format(prompt, map[string]string{"Role": "Full Stack (React + Node)", "Count": "6", "PerDifficulty": "2"})

	assert.Contains(t, out, "Full Stack (React + Node)")
	assert.Contains(t, out, "exactly 6 questions")
	assert.NotContains(t, out, "{{.")
}
