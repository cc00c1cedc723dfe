package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/prompts"
	"github.com/jonathan/interview-assistant/internal/schemas"
	"github.com/jonathan/interview-assistant/internal/types"
)

// SummaryUnavailable is used when the service returns no summary.
const SummaryUnavailable = "Summary unavailable."

// Request is the payload sent to the scoring service.
type Request struct {
	Candidate requestCandidate  `json:"candidate"`
	Questions []requestQuestion `json:"questions"`
	Answers   []requestAnswer   `json:"answers"`
}

type requestCandidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type requestQuestion struct {
	ID         string           `json:"id"`
	Difficulty types.Difficulty `json:"difficulty"`
	Text       string           `json:"text"`
}

type requestAnswer struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	TimedOut   bool   `json:"timedOut"`
}

// NewRequest builds the scoring payload from session data.
func NewRequest(profile types.CandidateProfile, questions []types.Question, answers []types.Answer) Request {
	req := Request{
		Candidate: requestCandidate{Name: profile.Name, Email: profile.Email, Phone: profile.Phone},
		Questions: make([]requestQuestion, len(questions)),
		Answers:   make([]requestAnswer, len(answers)),
	}
	for i, q := range questions {
		req.Questions[i] = requestQuestion{ID: q.ID, Difficulty: q.Difficulty, Text: q.Text}
	}
	for i, a := range answers {
		req.Answers[i] = requestAnswer{QuestionID: a.QuestionID, Text: a.Text, TimedOut: a.TimedOut}
	}
	return req
}

// serviceReply mirrors the JSON requested from the model. Scores are kept raw
// so non-numeric values can be coerced instead of failing the decode. The
// reported finalScore is ignored; the total is always the sum of the scores.
type serviceReply struct {
	Scores []struct {
		QuestionID string          `json:"questionId"`
		Score      json.RawMessage `json:"score"`
		Feedback   *string         `json:"feedback"`
	} `json:"scores"`
	Summary *string `json:"summary"`
}

// Remote asks the model to score the interview. Difficulty always comes from
// the question list, never from the reply.
func Remote(ctx context.Context, client llm.Client, req Request) (types.ScoreResult, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return types.ScoreResult{}, &ScoringError{Message: "failed to encode request", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("interview.json", "score-answers"), map[string]string{
		"Payload": string(payload),
	})

	reply, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return types.ScoreResult{}, &ScoringError{Message: "LLM generation failed", Cause: err}
	}

	difficulties := make(map[string]types.Difficulty, len(req.Questions))
	order := make([]string, len(req.Questions))
	for i, q := range req.Questions {
		difficulties[q.ID] = q.Difficulty
		order[i] = q.ID
	}
	return Parse(reply, order, difficulties)
}

// Parse converts a model reply into a ScoreResult aligned with the question
// order. Every question must receive a score.
func Parse(reply string, order []string, difficulties map[string]types.Difficulty) (types.ScoreResult, error) {
	raw, ok := llm.ExtractJSONObject(reply)
	if !ok {
		return types.ScoreResult{}, &ScoringError{Message: "no JSON object in response"}
	}
	if err := schemas.Validate(schemas.ScoringSchema, raw); err != nil {
		return types.ScoreResult{}, &ScoringError{Message: "response failed schema validation", Cause: err}
	}

	var parsed serviceReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return types.ScoreResult{}, &ScoringError{Message: "failed to parse response", Cause: err}
	}

	byQuestion := make(map[string]types.ScoreEntry, len(parsed.Scores))
	for _, s := range parsed.Scores {
		d, known := difficulties[s.QuestionID]
		if !known {
			continue
		}
		if _, dup := byQuestion[s.QuestionID]; dup {
			continue
		}
		entry := types.ScoreEntry{
			QuestionID: s.QuestionID,
			Difficulty: d,
			Score:      coerceScore(s.Score),
		}
		if s.Feedback != nil {
			entry.Feedback = *s.Feedback
		}
		byQuestion[s.QuestionID] = entry
	}

	result := types.ScoreResult{Scores: make([]types.ScoreEntry, 0, len(order))}
	for _, id := range order {
		entry, ok := byQuestion[id]
		if !ok {
			return types.ScoreResult{}, &ScoringError{Message: fmt.Sprintf("no score returned for question %q", id)}
		}
		result.Scores = append(result.Scores, entry)
		result.FinalScore += entry.Score
	}

	result.Summary = SummaryUnavailable
	if parsed.Summary != nil && *parsed.Summary != "" {
		result.Summary = *parsed.Summary
	}
	return result, nil
}

// coerceScore returns a rounded, clamped score for numeric JSON values and 0
// for anything else.
func coerceScore(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) {
		return 0
	}
	return clamp(int(math.Round(f)))
}
