package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/types"
)

// uploadOverhead allows for multipart framing around the résumé file.
const uploadOverhead = 1 << 20

// SessionResponse is the full view of a session.
type SessionResponse struct {
	ID    string                `json:"id"`
	State types.InterviewState  `json:"state"`
	UI    types.UIState         `json:"ui"`
	Timer interview.TimerStatus `json:"timer"`
}

// ResumeResponse is returned after a résumé upload.
type ResumeResponse struct {
	Fields     ingestion.Fields    `json:"fields"`
	ResumeMeta *types.ResumeMeta   `json:"resumeMeta"`
	Hash       string              `json:"hash"`
	Messages   []types.ChatMessage `json:"messages"`
}

// ProfileResponse is returned after the profile or a chat message is saved.
type ProfileResponse struct {
	Profile       types.CandidateProfile `json:"profile"`
	MissingFields []string               `json:"missingFields"`
	Messages      []types.ChatMessage    `json:"messages"`
}

// ChatResponse adds whether the chat message filled a field.
type ChatResponse struct {
	ProfileResponse
	Accepted bool `json:"accepted"`
}

func sessionView(m *managedSession) SessionResponse {
	return SessionResponse{
		ID:    m.id,
		State: m.session.State(),
		UI:    m.session.UI(),
		Timer: m.session.Timer(),
	}
}

func profileView(st types.InterviewState) ProfileResponse {
	return ProfileResponse{
		Profile:       st.Profile,
		MissingFields: st.MissingFields,
		Messages:      st.Messages,
	}
}

// session resolves the {id} path value.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*managedSession, bool) {
	m, err := s.registry.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return m, true
}

// handleCreateSession starts a new interviewee session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	m, err := s.registry.Create(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+m.id)
	s.jsonResponse(w, http.StatusCreated, sessionView(m))
}

// handleGetSession returns the session state, restoring it if needed.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionView(m))
}

// handleDeleteSession stops a session and forgets its persisted state.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetSession returns the session to its initial state.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	m.session.Reset()
	s.jsonResponse(w, http.StatusOK, sessionView(m))
}

// handleUploadResume extracts the contact fields from a multipart "file"
// upload and posts them to the chat. The profile is not changed until the
// candidate saves it.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.ingester == nil {
		s.fail(w, &ErrUnavailable{Feature: "résumé upload"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxResumeBytes+uploadOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, err)
			return
		}
		s.fail(w, &ErrValidation{Field: "file", Message: "a multipart file field named \"file\" is required"})
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := s.ingester.Ingest(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.fail(w, err)
		return
	}

	m.session.RecordExtraction(result.Fields.Name, result.Fields.Email, result.Fields.Phone)
	s.jsonResponse(w, http.StatusOK, ResumeResponse{
		Fields:     result.Fields,
		ResumeMeta: result.Meta,
		Hash:       result.Hash,
		Messages:   m.session.State().Messages,
	})
}

// handleSaveProfile merges extracted or typed fields into the profile.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.SaveProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	m.session.SaveProfile(types.CandidateProfile{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		ResumeMeta: req.ResumeMeta,
	})
	s.jsonResponse(w, http.StatusOK, profileView(m.session.State()))
}

// handleChat feeds a candidate message into the missing-field loop.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	accepted := m.session.SendChat(req.Text)
	s.jsonResponse(w, http.StatusOK, ChatResponse{
		ProfileResponse: profileView(m.session.State()),
		Accepted:        accepted,
	})
}

// handleUpdateUI switches the active tab and optionally clears the
// welcome-back prompt.
func (s *Server) handleUpdateUI(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.UIStateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	m.session.SetActiveTab(req.ActiveTab)
	if req.DismissWelcomeBack {
		m.session.DismissWelcomeBack()
	}
	s.jsonResponse(w, http.StatusOK, m.session.UI())
}
