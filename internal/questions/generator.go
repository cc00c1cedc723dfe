// Package questions produces the question set for an interview: a remote
// stage asks the LLM for questions, and a fixed set is used when that fails.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/prompts"
	"github.com/jonathan/interview-assistant/internal/schemas"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	// Total is the number of questions in an interview.
	Total = 6
	// PerDifficulty is the number of questions asked per difficulty band.
	PerDifficulty = 2
	// DefaultRole is the role the questions are written for.
	DefaultRole = "Full Stack (React + Node)"
)

var fallbackSet = []struct {
	difficulty types.Difficulty
	text       string
}{
	{types.DifficultyEasy, "Explain the difference between let, const, and var in JavaScript."},
	{types.DifficultyEasy, "What is JSX and how does it relate to React.createElement?"},
	{types.DifficultyMedium, "Describe how React reconciliation works and why keys are important in lists."},
	{types.DifficultyMedium, "Design a REST endpoint in Node/Express to create a user. Outline routes and middleware."},
	{types.DifficultyHard, "Given a large React app, how would you split bundles and optimize TTI? Mention code-splitting and caching strategies."},
	{types.DifficultyHard, "Implement a robust error handling strategy in a Node.js API with centralized error middleware and logging."},
}

// Fallback returns the fixed six-question set with difficulty-derived time limits.
func Fallback() []types.Question {
	qs := make([]types.Question, len(fallbackSet))
	for i, q := range fallbackSet {
		qs[i] = types.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Difficulty: q.difficulty,
			Text:       q.text,
			TimeLimit:  q.difficulty.TimeLimit(),
		}
	}
	return qs
}

// Source produces a question set.
type Source interface {
	Generate(ctx context.Context) []types.Question
}

// Generator composes the remote stage with the fallback set. A nil Client
// means no credential is configured.
type Generator struct {
	Client     llm.Client
	Role       string
	OnFallback func(reason error)
}

// Generate never fails; any remote error yields the fallback set.
func (g *Generator) Generate(ctx context.Context) []types.Question {
	if g.Client == nil {
		g.fallback(llm.ErrMissingAPIKey)
		return Fallback()
	}

	qs, err := Remote(ctx, g.Client, g.role())
	if err != nil {
		g.fallback(err)
		return Fallback()
	}
	return qs
}

func (g *Generator) role() string {
	if g.Role == "" {
		return DefaultRole
	}
	return g.Role
}

func (g *Generator) fallback(reason error) {
	if g.OnFallback != nil {
		g.OnFallback(reason)
	}
}

// generatedQuestion is the shape requested from the model. IDs sometimes
// come back as numbers.
type generatedQuestion struct {
	ID         json.RawMessage  `json:"id"`
	Difficulty types.Difficulty `json:"difficulty"`
	Text       string           `json:"text"`
}

// Remote asks the model for a question set and normalizes it. It returns an
// error unless exactly PerDifficulty questions of each band can be assembled.
func Remote(ctx context.Context, client llm.Client, role string) ([]types.Question, error) {
	prompt := prompts.Format(prompts.MustGet("interview.json", "generate-questions"), map[string]string{
		"Role":          role,
		"Count":         strconv.Itoa(Total),
		"PerDifficulty": strconv.Itoa(PerDifficulty),
	})

	reply, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &GenerationError{Message: "LLM generation failed", Cause: err}
	}
	return Parse(reply)
}

// Parse extracts, validates and orders a question set from a model reply.
func Parse(reply string) ([]types.Question, error) {
	raw, ok := llm.ExtractJSONArray(reply)
	if !ok {
		return nil, &GenerationError{Message: "no JSON array in response"}
	}
	if err := schemas.Validate(schemas.QuestionsSchema, raw); err != nil {
		return nil, &GenerationError{Message: "response failed schema validation", Cause: err}
	}

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, &GenerationError{Message: "failed to parse questions", Cause: err}
	}

	normalized := make([]types.Question, 0, len(generated))
	for i, g := range generated {
		normalized = append(normalized, types.Question{
			ID:         normalizeID(g.ID, i),
			Difficulty: g.Difficulty,
			Text:       g.Text,
			TimeLimit:  g.Difficulty.TimeLimit(),
		})
	}

	ordered := make([]types.Question, 0, Total)
	for _, d := range types.DifficultyOrder {
		n := 0
		for _, q := range normalized {
			if q.Difficulty == d && n < PerDifficulty {
				ordered = append(ordered, q)
				n++
			}
		}
	}
	if len(ordered) != Total {
		return nil, &GenerationError{Message: fmt.Sprintf("expected %d questions across difficulties, got %d", Total, len(ordered))}
	}
	if err := uniqueIDs(ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// normalizeID accepts string or numeric ids and falls back to q<n>.
func normalizeID(raw json.RawMessage, index int) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
		return "q" + n.String()
	}
	return fmt.Sprintf("q%d", index+1)
}

func uniqueIDs(qs []types.Question) error {
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID] {
			return &GenerationError{Message: fmt.Sprintf("duplicate question id %q", q.ID)}
		}
		seen[q.ID] = true
	}
	return nil
}
