package server

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/types"
)

// keepAliveInterval spaces comment lines on idle timer streams.
const keepAliveInterval = 15 * time.Second

// InterviewResponse describes the question loop after a change.
type InterviewResponse struct {
	Status               types.InterviewStatus `json:"interviewStatus"`
	CurrentQuestionIndex int                   `json:"currentQuestionIndex"`
	Total                int                   `json:"total"`
	Question             *types.Question       `json:"question,omitempty"`
	Answer               *types.Answer         `json:"answer,omitempty"`
	Timer                interview.TimerStatus `json:"timer"`
}

func interviewView(m *managedSession) InterviewResponse {
	st := m.session.State()
	resp := InterviewResponse{
		Status:               st.InterviewStatus,
		CurrentQuestionIndex: st.CurrentQuestionIndex,
		Total:                len(st.Questions),
		Timer:                m.session.Timer(),
	}
	if q, ok := m.session.CurrentQuestion(); ok {
		resp.Question = &q
	}
	return resp
}

// startTimer starts the countdown for the question now showing. Having no
// current question is not an error here.
func (s *Server) startTimer(m *managedSession) {
	if err := m.session.StartTimer(); err != nil && !errors.Is(err, interview.ErrNoCurrentQuestion) {
		s.logger.Warn("failed to start timer", zap.String("session_id", m.id), zap.Error(err))
	}
}

// handleStartInterview generates the questions and starts the first countdown.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := m.session.StartInterview(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	s.startTimer(m)
	s.jsonResponse(w, http.StatusOK, interviewView(m))
}

// handleSubmitAnswer records the answer to the current question and starts
// the countdown for the next one.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	var answer types.Answer
	var err error
	if req.QuestionID != "" && !req.TimedOut {
		answer, err = m.session.AnswerQuestion(req.QuestionID, req.Text)
	} else {
		answer, err = m.session.SubmitAnswer(req.Text, req.TimedOut)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.startTimer(m)

	resp := interviewView(m)
	resp.Answer = &answer
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSaveDraft stores the partial answer submitted if the timer expires.
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := m.session.SetDraft(req.Text); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartTimer resumes the countdown, e.g. after the welcome-back prompt.
func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := m.session.StartTimer(); err != nil {
		s.fail(w, err)
		return
	}
	m.session.DismissWelcomeBack()
	s.jsonResponse(w, http.StatusOK, m.session.Timer())
}

// handleTimerStream streams timer and lifecycle events as server-sent events.
// The first event is the current timer status. An error event ends the
// stream when the session is deleted or the server shuts down.
func (s *Server) handleTimerStream(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	events, unsubscribe := m.events.subscribe()
	defer unsubscribe()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("timer", m.session.Timer()); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		case ev, open := <-events:
			if !open {
				sse.WriteError("session closed")
				return
			}
			if err := sse.WriteEvent(ev.Name, ev.Data); err != nil {
				return
			}
			if ev.Name == string(interview.EventExpired) {
				if err := sse.WriteEvent("timer", m.session.Timer()); err != nil {
					return
				}
			}
		}
	}
}

// handleRequestScoring scores the finished interview. A successful result
// is also saved to the roster.
func (s *Server) handleRequestScoring(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	result, err := m.session.RequestScoring(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleSaveSnapshot writes the scored interview to the roster again.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := m.session.SaveSnapshot(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}
