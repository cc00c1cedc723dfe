package types

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New()

// SaveProfileRequest carries the fields extracted from a résumé (or typed by
// the candidate) that should be merged into the session profile.
type SaveProfileRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email" validate:"omitempty,max=320"`
	Phone      string      `json:"phone" validate:"omitempty,max=64"`
	ResumeMeta *ResumeMeta `json:"resumeMeta,omitempty"`
}

// ChatRequest is a single chat submission from the candidate.
type ChatRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// AnswerRequest submits the answer to the current question. When
// QuestionID is set the answer is rejected if that question has already
// moved on.
type AnswerRequest struct {
	QuestionID string `json:"questionId,omitempty" validate:"max=64"`
	Text       string `json:"text" validate:"max=20000"`
	TimedOut   bool   `json:"timedOut"`
}

// DraftRequest records the answer being typed for the current question.
type DraftRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

// UIStateRequest updates the persisted view state.
type UIStateRequest struct {
	ActiveTab          string `json:"activeTab" validate:"required,oneof=interviewee interviewer"`
	DismissWelcomeBack bool   `json:"dismissWelcomeBack"`
}

// InterviewerLoginRequest authenticates a dashboard user.
type InterviewerLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// InterviewerLoginResponse carries the dashboard bearer token.
type InterviewerLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// Validate validates the SaveProfileRequest.
func (r *SaveProfileRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ChatRequest.
func (r *ChatRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the AnswerRequest.
func (r *AnswerRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the DraftRequest.
func (r *DraftRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UIStateRequest.
func (r *UIStateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the InterviewerLoginRequest.
func (r *InterviewerLoginRequest) Validate() error {
	return validate.Struct(r)
}
