package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/types"
)

// handleLogin exchanges the interviewer password for a dashboard token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.jwtService == nil || s.cfg.InterviewerPasswordHash == "" {
		s.fail(w, &ErrUnavailable{Feature: "interviewer dashboard"})
		return
	}

	var req types.InterviewerLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	if !s.passwords.VerifyPassword(req.Password, s.cfg.InterviewerPasswordHash) {
		s.logger.Warn("interviewer login failed", zap.String("client", clientID(r)))
		s.fail(w, &ErrInvalidCredentials{})
		return
	}

	token, ttl, err := s.jwtService.GenerateToken(interviewerSubject)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.InterviewerLoginResponse{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
	})
}
