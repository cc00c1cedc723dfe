// Package types provides type definitions for structured data used throughout the interview assistant.
package types

import "time"

// Difficulty is the difficulty band of an interview question.
type Difficulty string

// Difficulty levels, in interview order.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyOrder is the order in which question bands are asked.
var DifficultyOrder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// DefaultTimeLimit is used for questions whose difficulty is not recognized.
const DefaultTimeLimit = 60

// TimeLimit returns the default answer time in seconds for the difficulty.
func (d Difficulty) TimeLimit() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	default:
		return DefaultTimeLimit
	}
}

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Profile field names, in the order they are collected.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// RequiredFields lists the profile attributes the chat loop collects.
var RequiredFields = []string{FieldName, FieldEmail, FieldPhone}

// ResumeMeta describes the uploaded résumé file.
type ResumeMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// CandidateProfile holds the contact details captured for a candidate.
// Empty strings mean the field has not been captured yet.
type CandidateProfile struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	ResumeMeta *ResumeMeta `json:"resumeMeta,omitempty"`
}

// Get returns the value of a named profile field.
func (p *CandidateProfile) Get(field string) string {
	switch field {
	case FieldName:
		return p.Name
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	}
	return ""
}

// Set writes the value of a named profile field. Unknown fields are ignored.
func (p *CandidateProfile) Set(field, value string) {
	switch field {
	case FieldName:
		p.Name = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	}
}

// Complete reports whether every required field has been captured.
func (p *CandidateProfile) Complete() bool {
	return p.Name != "" && p.Email != "" && p.Phone != ""
}

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// ChatMessage is a single entry of the chat transcript.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Question is one interview question. Immutable once generated for a session.
type Question struct {
	ID         string     `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
	Text       string     `json:"text"`
	TimeLimit  int        `json:"timeLimit"`
}

// Limit returns the question's time limit, deriving it from the difficulty when unset.
func (q Question) Limit() int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return q.Difficulty.TimeLimit()
}

// Answer is the candidate's response to a question.
type Answer struct {
	QuestionID  string    `json:"questionId"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submittedAt"`
	TimedOut    bool      `json:"timedOut"`
}

// ScoreEntry is the score for a single question.
type ScoreEntry struct {
	QuestionID string     `json:"questionId"`
	Difficulty Difficulty `json:"difficulty"`
	Score      int        `json:"score"`
	Feedback   string     `json:"feedback"`
}

// ScoreResult is the batch output of the scoring adapter.
type ScoreResult struct {
	Scores     []ScoreEntry `json:"scores"`
	FinalScore int          `json:"finalScore"`
	Summary    string       `json:"summary"`
}

// InterviewStatus is the lifecycle state of the question/answer loop.
type InterviewStatus string

// Interview lifecycle states.
const (
	InterviewIdle     InterviewStatus = "idle"
	InterviewRunning  InterviewStatus = "running"
	InterviewFinished InterviewStatus = "finished"
)

// ScoringStatus is the lifecycle state of scoring.
type ScoringStatus string

// Scoring lifecycle states.
const (
	ScoringIdle    ScoringStatus = "idle"
	ScoringRunning ScoringStatus = "scoring"
	ScoringDone    ScoringStatus = "done"
)

// InterviewState is the persisted shape of an interview session.
type InterviewState struct {
	Profile              CandidateProfile `json:"profile"`
	Messages             []ChatMessage    `json:"messages"`
	MissingFields        []string         `json:"missingFields"`
	InterviewStatus      InterviewStatus  `json:"interviewStatus"`
	Questions            []Question       `json:"questions"`
	CurrentQuestionIndex int              `json:"currentQuestionIndex"`
	Answers              []Answer         `json:"answers"`
	ScoringStatus        ScoringStatus    `json:"scoringStatus"`
	Scores               []ScoreEntry     `json:"scores"`
	FinalScore           *int             `json:"finalScore"`
	Summary              string           `json:"summary"`
}

// Tabs of the application.
const (
	TabInterviewee = "interviewee"
	TabInterviewer = "interviewer"
)

// UIState is the persisted view state of a browser session.
type UIState struct {
	ActiveTab         string `json:"activeTab"`
	InProgress        bool   `json:"inProgress"`
	WelcomeBackNeeded bool   `json:"welcomeBackNeeded"`
}

// DefaultUIState returns the initial view state.
func DefaultUIState() UIState {
	return UIState{ActiveTab: TabInterviewee}
}
