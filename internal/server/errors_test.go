package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"already running", interview.ErrAlreadyRunning, http.StatusConflict},
		{"wrapped not finished", fmt.Errorf("scoring: %w", interview.ErrNotFinished), http.StatusConflict},
		{"profile incomplete", interview.ErrProfileIncomplete, http.StatusConflict},
		{"session reset", interview.ErrSessionReset, http.StatusConflict},
		{"session not found", &ErrSessionNotFound{ID: "x"}, http.StatusNotFound},
		{"roster not found", fmt.Errorf("get: %w", roster.ErrNotFound), http.StatusNotFound},
		{"credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"validation", &ErrValidation{Field: "body", Message: "bad"}, http.StatusBadRequest},
		{"validator", (&types.ChatRequest{}).Validate(), http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unsupported", &ingestion.UnsupportedFileTypeError{Filename: "a.txt"}, http.StatusUnsupportedMediaType},
		{"extraction", &ingestion.ExtractionError{Format: "pdf", Cause: errors.New("boom")}, http.StatusUnprocessableEntity},
		{"unavailable", &ErrUnavailable{Feature: "uploads"}, http.StatusServiceUnavailable},
		{"snapshot", &interview.SnapshotError{Cause: errors.New("db down")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	err := (&types.ChatRequest{}).Validate()
	assert.Equal(t, "validation error: Text - required", validationMessage(err))

	assert.Equal(t, "validation error: file - missing", validationMessage(&ErrValidation{Field: "file", Message: "missing"}))
}
