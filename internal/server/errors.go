package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/roster"
)

// ErrSessionNotFound indicates no live or persisted session has the id.
type ErrSessionNotFound struct {
	ID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrInvalidCredentials indicates a failed interviewer login.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature whose backing service is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

var conflictErrors = []error{
	interview.ErrAlreadyRunning,
	interview.ErrAlreadyScoring,
	interview.ErrNotFinished,
	interview.ErrNotScored,
	interview.ErrNoCurrentQuestion,
	interview.ErrStaleAnswer,
	interview.ErrProfileIncomplete,
	interview.ErrSessionReset,
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}

	var (
		notFound     *ErrSessionNotFound
		credentials  *ErrInvalidCredentials
		validation   *ErrValidation
		unavailable  *ErrUnavailable
		unsupported  *ingestion.UnsupportedFileTypeError
		extraction   *ingestion.ExtractionError
		invalidInput validator.ValidationErrors
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, roster.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &validation), errors.As(err, &invalidInput):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage flattens validator errors into a short message.
func validationMessage(err error) string {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		ve := invalid[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return err.Error()
}
