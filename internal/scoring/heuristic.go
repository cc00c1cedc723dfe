// Package scoring scores a finished interview. A remote stage asks the LLM to
// grade the answers; a deterministic length heuristic is the fallback.
package scoring

import (
	"math"
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// Fixed heuristic texts.
const (
	FeedbackAnswered = "Auto-scored (length heuristic)."
	FeedbackNoAnswer = "No answer provided."
	HeuristicSummary = "Auto-generated summary: candidate provided answers scored with a simple heuristic for demo purposes."
)

// MaxScore is the upper bound of a per-question score.
const MaxScore = 10

// Divisor returns the number of words per point for a difficulty.
func Divisor(d types.Difficulty) int {
	switch d {
	case types.DifficultyEasy:
		return 4
	case types.DifficultyMedium:
		return 6
	default:
		return 8
	}
}

// HeuristicScore scores a single answer by word count.
func HeuristicScore(answer string, d types.Difficulty) int {
	if answer == "" {
		return 0
	}
	words := len(strings.Fields(answer))
	score := int(math.Round(float64(words) / float64(Divisor(d))))
	return clamp(score)
}

// Heuristic scores every question deterministically. finalScore is always
// the sum of the per-question scores.
func Heuristic(questions []types.Question, answers []types.Answer) types.ScoreResult {
	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, seen := byQuestion[a.QuestionID]; !seen {
			byQuestion[a.QuestionID] = a.Text
		}
	}

	scores := make([]types.ScoreEntry, 0, len(questions))
	total := 0
	for _, q := range questions {
		text := byQuestion[q.ID]
		entry := types.ScoreEntry{
			QuestionID: q.ID,
			Difficulty: q.Difficulty,
			Score:      HeuristicScore(text, q.Difficulty),
			Feedback:   FeedbackNoAnswer,
		}
		if text != "" {
			entry.Feedback = FeedbackAnswered
		}
		total += entry.Score
		scores = append(scores, entry)
	}

	return types.ScoreResult{
		Scores:     scores,
		FinalScore: total,
		Summary:    HeuristicSummary,
	}
}

func clamp(score int) int {
	return max(0, min(MaxScore, score))
}
