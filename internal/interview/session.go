// Package interview implements the interview session state machine: the
// missing-field chat loop, the timed question/answer loop, scoring and the
// roster hand-off.
package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/scoring"
	"github.com/jonathan/interview-assistant/internal/types"
)

// Roster receives snapshots of scored interviews.
type Roster interface {
	Upsert(ctx context.Context, entry types.RosterEntry) (types.RosterEntry, error)
}

// Lifecycle events reported through Options.OnLifecycle.
const (
	LifecycleStarted  = "started"
	LifecycleFinished = "finished"
	LifecycleScored   = "scored"
	LifecycleSaved    = "saved"
	LifecycleReset    = "reset"
)

// Options configures a Session. Zero values fall back to the offline
// collaborators and the real clock.
type Options struct {
	Questions questions.Source
	Scorer    scoring.Scorer
	Roster    Roster
	Clock     Clock
	Logger    *zap.Logger

	// OnChange receives a copy of the state after every mutation. It runs
	// while the session is locked and must not call back into the session.
	OnChange func(types.InterviewState)
	// OnUIChange receives the view state after it changes.
	OnUIChange  func(types.UIState)
	OnLifecycle func(event string)
}

// Session owns one candidate's interview state. All methods are safe for
// concurrent use; operations are applied one at a time.
type Session struct {
	mu    sync.Mutex
	opts  Options
	state types.InterviewState
	ui    types.UIState
	timer *Timer
	draft string

	// starting is set while questions are being generated.
	starting bool
	// epoch changes on Reset and when StartInterview begins and commits, so
	// results of outstanding external calls can be discarded.
	epoch      uint64
	snapshotID string
}

// NewSession returns a session in its initial state.
func NewSession(opts Options) *Session {
	if opts.Questions == nil {
		opts.Questions = &questions.Generator{}
	}
	if opts.Scorer == nil {
		opts.Scorer = &scoring.Adapter{}
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		opts:  opts,
		state: initialState(),
		ui:    types.DefaultUIState(),
		timer: NewTimer(0),
	}
}

func initialState() types.InterviewState {
	return types.InterviewState{
		Messages:        []types.ChatMessage{{Role: types.RoleBot, Text: WelcomeMessage}},
		MissingFields:   []string{},
		InterviewStatus: types.InterviewIdle,
		Questions:       []types.Question{},
		Answers:         []types.Answer{},
		ScoringStatus:   types.ScoringIdle,
		Scores:          []types.ScoreEntry{},
	}
}

// State returns a copy of the interview state.
func (s *Session) State() types.InterviewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// UI returns the view state.
func (s *Session) UI() types.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// TimerStatus reports the countdown of the current question.
type TimerStatus struct {
	QuestionID string `json:"questionId,omitempty"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	Running    bool   `json:"running"`
}

// Timer returns the countdown state of the current question.
func (s *Session) Timer() TimerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := TimerStatus{Limit: s.timer.Limit(), Remaining: s.timer.Remaining(), Running: s.timer.Running()}
	if q, ok := s.currentLocked(); ok {
		status.QuestionID = q.ID
	}
	return status
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (types.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (types.Question, bool) {
	if s.state.InterviewStatus != types.InterviewRunning {
		return types.Question{}, false
	}
	if s.state.CurrentQuestionIndex >= len(s.state.Questions) {
		return types.Question{}, false
	}
	return s.state.Questions[s.state.CurrentQuestionIndex], true
}

// StartInterview begins a new interview from idle or finished. Question
// generation runs without holding the session lock; it never fails because
// the generator falls back to the fixed set. The timer for the first
// question is loaded but not started.
func (s *Session) StartInterview(ctx context.Context) ([]types.Question, error) {
	s.mu.Lock()
	switch {
	case s.starting || s.state.InterviewStatus == types.InterviewRunning:
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	case s.state.ScoringStatus == types.ScoringRunning:
		s.mu.Unlock()
		return nil, ErrAlreadyScoring
	case !s.state.Profile.Complete():
		s.mu.Unlock()
		return nil, ErrProfileIncomplete
	}
	s.starting = true
	s.epoch++
	epoch := s.epoch
	source := s.opts.Questions
	s.mu.Unlock()

	qs := source.Generate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil, ErrSessionReset
	}
	s.starting = false
	s.epoch++

	if len(qs) == 0 {
		qs = questions.Fallback()
	}
	loaded := make([]types.Question, len(qs))
	for i, q := range qs {
		q.TimeLimit = q.Limit()
		loaded[i] = q
	}

	s.state.InterviewStatus = types.InterviewRunning
	s.state.Questions = loaded
	s.state.CurrentQuestionIndex = 0
	s.state.Answers = []types.Answer{}
	s.state.Scores = []types.ScoreEntry{}
	s.state.FinalScore = nil
	s.state.Summary = ""
	s.state.ScoringStatus = types.ScoringIdle
	s.draft = ""
	s.snapshotID = ""
	s.timer.Reset(loaded[0].Limit())

	s.ui.InProgress = true
	s.ui.WelcomeBackNeeded = false
	s.changed()
	s.uiChanged()
	s.lifecycle(LifecycleStarted)

	s.opts.Logger.Info("interview started", zap.Int("questions", len(loaded)))
	return append([]types.Question(nil), loaded...), nil
}

// StartTimer starts the countdown for the current question. After every
// answer the timer is reloaded for the next question and must be started
// again.
func (s *Session) StartTimer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.currentLocked(); !ok {
		return ErrNoCurrentQuestion
	}
	s.timer.Start()
	return nil
}

// StopTimer pauses the countdown without any event.
func (s *Session) StopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Stop()
}

// SetDraft records the answer being typed. It is submitted if the timer
// expires.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.currentLocked(); !ok {
		return ErrNoCurrentQuestion
	}
	s.draft = text
	return nil
}

// SubmitAnswer records the answer to the current question and advances.
// Without a current question it changes nothing and returns
// ErrNoCurrentQuestion.
func (s *Session) SubmitAnswer(text string, timedOut bool) (types.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(text, timedOut)
}

// AnswerQuestion submits text only while questionID is still the current
// question. Otherwise it changes nothing and returns ErrStaleAnswer.
func (s *Session) AnswerQuestion(questionID, text string) (types.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.currentLocked()
	if !ok {
		return types.Answer{}, ErrNoCurrentQuestion
	}
	if q.ID != questionID {
		return types.Answer{}, ErrStaleAnswer
	}
	return s.submitLocked(text, false)
}

func (s *Session) submitLocked(text string, timedOut bool) (types.Answer, error) {
	q, ok := s.currentLocked()
	if !ok {
		return types.Answer{}, ErrNoCurrentQuestion
	}

	answer := types.Answer{
		QuestionID:  q.ID,
		Text:        strings.TrimSpace(text),
		SubmittedAt: s.opts.Clock.Now(),
		TimedOut:    timedOut,
	}
	s.state.Answers = append(s.state.Answers, answer)
	s.state.CurrentQuestionIndex++
	s.draft = ""

	if s.state.CurrentQuestionIndex < len(s.state.Questions) {
		s.timer.Reset(s.state.Questions[s.state.CurrentQuestionIndex].Limit())
	} else {
		s.state.InterviewStatus = types.InterviewFinished
		s.timer.Reset(0)
		s.ui.InProgress = false
		s.uiChanged()
		s.lifecycle(LifecycleFinished)
	}
	s.changed()
	return answer, nil
}

// Tick advances the current question's countdown by one second. When it
// expires the draft is submitted as a timed-out answer and the countdown for
// the next question is started.
func (s *Session) Tick() []TimerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.currentLocked()
	if !ok {
		return nil
	}
	events := s.timer.AdvanceOneSecond()
	expired := false
	for i := range events {
		events[i].QuestionID = q.ID
		if events[i].Kind == EventExpired {
			expired = true
		}
	}
	if !expired {
		return events
	}

	if _, err := s.submitLocked(s.draft, true); err != nil {
		return events
	}
	if _, ok := s.currentLocked(); ok {
		s.timer.Start()
	}
	return events
}

// RequestScoring scores a finished interview. The scorer runs without the
// session lock. A successful result is stored and handed to the roster.
func (s *Session) RequestScoring(ctx context.Context) (types.ScoreResult, error) {
	s.mu.Lock()
	switch {
	case s.state.ScoringStatus == types.ScoringRunning:
		s.mu.Unlock()
		return types.ScoreResult{}, ErrAlreadyScoring
	case s.starting:
		s.mu.Unlock()
		return types.ScoreResult{}, ErrAlreadyRunning
	case s.state.InterviewStatus != types.InterviewFinished:
		s.mu.Unlock()
		return types.ScoreResult{}, ErrNotFinished
	}
	s.state.ScoringStatus = types.ScoringRunning
	epoch := s.epoch
	profile := s.state.Profile
	qs := append([]types.Question(nil), s.state.Questions...)
	answers := append([]types.Answer(nil), s.state.Answers...)
	scorer := s.opts.Scorer
	s.changed()
	s.mu.Unlock()

	result, err := score(ctx, scorer, profile, qs, answers)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return types.ScoreResult{}, ErrSessionReset
	}
	if err != nil {
		s.state.ScoringStatus = types.ScoringIdle
		s.botSay(ScoringFailedMessage)
		s.changed()
		s.mu.Unlock()
		s.opts.Logger.Error("scoring failed", zap.Error(err))
		return types.ScoreResult{}, &ScoringFailedError{Cause: err}
	}

	final := result.FinalScore
	s.state.Scores = append([]types.ScoreEntry(nil), result.Scores...)
	s.state.FinalScore = &final
	s.state.Summary = result.Summary
	s.state.ScoringStatus = types.ScoringDone
	s.changed()
	s.lifecycle(LifecycleScored)
	s.mu.Unlock()

	if _, err := s.SaveSnapshot(ctx); err != nil {
		s.opts.Logger.Warn("roster snapshot failed", zap.Error(err))
	}
	return result, nil
}

func score(ctx context.Context, scorer scoring.Scorer, profile types.CandidateProfile, qs []types.Question, answers []types.Answer) (result types.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panicked: %v", r)
		}
	}()
	return scorer.Score(ctx, profile, qs, answers), nil
}

// SaveSnapshot writes the scored interview into the roster. Repeated calls
// for the same interview update the same entry.
func (s *Session) SaveSnapshot(ctx context.Context) (types.RosterEntry, error) {
	s.mu.Lock()
	if s.state.ScoringStatus != types.ScoringDone {
		s.mu.Unlock()
		return types.RosterEntry{}, ErrNotScored
	}
	if s.snapshotID == "" {
		s.snapshotID = uuid.NewString()
	}
	entry := s.snapshotLocked()
	roster := s.opts.Roster
	s.mu.Unlock()

	if roster == nil {
		return entry, nil
	}
	saved, err := roster.Upsert(ctx, entry)
	if err != nil {
		return types.RosterEntry{}, &SnapshotError{Cause: err}
	}

	s.mu.Lock()
	if s.snapshotID == entry.ID {
		s.snapshotID = saved.ID
	}
	s.lifecycle(LifecycleSaved)
	s.mu.Unlock()
	return saved, nil
}

func (s *Session) snapshotLocked() types.RosterEntry {
	st := cloneState(s.state)
	return types.RosterEntry{
		ID:         s.snapshotID,
		Name:       st.Profile.Name,
		Email:      st.Profile.Email,
		Phone:      st.Profile.Phone,
		ResumeMeta: st.Profile.ResumeMeta,
		FinalScore: st.FinalScore,
		Summary:    st.Summary,
		CreatedAt:  s.opts.Clock.Now(),
		Questions:  st.Questions,
		Answers:    st.Answers,
		Scores:     st.Scores,
		Messages:   st.Messages,
	}
}

// Reset returns the session to its initial state. Results of outstanding
// generation or scoring calls are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.starting = false
	s.state = initialState()
	s.timer.Reset(0)
	s.draft = ""
	s.snapshotID = ""
	s.ui.InProgress = false
	s.ui.WelcomeBackNeeded = false
	s.changed()
	s.uiChanged()
	s.lifecycle(LifecycleReset)
}

// SetActiveTab switches the persisted view.
func (s *Session) SetActiveTab(tab string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ui.ActiveTab = tab
	s.uiChanged()
}

// DismissWelcomeBack clears the resume prompt shown after a restore.
func (s *Session) DismissWelcomeBack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ui.WelcomeBackNeeded {
		return
	}
	s.ui.WelcomeBackNeeded = false
	s.uiChanged()
}

// Restore replaces the session with persisted state. The countdown of a
// running interview restarts from the full limit of the current question and
// stays stopped. An interrupted scoring call is treated as never started.
func (s *Session) Restore(state types.InterviewState, ui types.UIState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.starting = false
	s.draft = ""
	s.snapshotID = ""
	s.state = normalizeState(state)
	s.ui = ui
	if s.ui.ActiveTab == "" {
		s.ui.ActiveTab = types.TabInterviewee
	}

	if q, ok := s.currentLocked(); ok {
		s.timer.Reset(q.Limit())
		s.ui.InProgress = true
		s.ui.WelcomeBackNeeded = true
	} else {
		s.timer.Reset(0)
		s.ui.InProgress = false
		s.ui.WelcomeBackNeeded = false
	}
}

func normalizeState(st types.InterviewState) types.InterviewState {
	st = cloneState(st)
	if len(st.Messages) == 0 {
		st.Messages = []types.ChatMessage{{Role: types.RoleBot, Text: WelcomeMessage}}
	}
	if st.InterviewStatus == "" {
		st.InterviewStatus = types.InterviewIdle
	}
	if st.ScoringStatus == "" || st.ScoringStatus == types.ScoringRunning {
		st.ScoringStatus = types.ScoringIdle
	}
	st.CurrentQuestionIndex = max(0, min(st.CurrentQuestionIndex, len(st.Questions)))
	if st.InterviewStatus == types.InterviewRunning && st.CurrentQuestionIndex == len(st.Questions) {
		st.InterviewStatus = types.InterviewFinished
	}
	return st
}

func cloneState(st types.InterviewState) types.InterviewState {
	out := st
	if st.Profile.ResumeMeta != nil {
		meta := *st.Profile.ResumeMeta
		out.Profile.ResumeMeta = &meta
	}
	if st.FinalScore != nil {
		final := *st.FinalScore
		out.FinalScore = &final
	}
	out.Messages = append([]types.ChatMessage{}, st.Messages...)
	out.MissingFields = append([]string{}, st.MissingFields...)
	out.Questions = append([]types.Question{}, st.Questions...)
	out.Answers = append([]types.Answer{}, st.Answers...)
	out.Scores = append([]types.ScoreEntry{}, st.Scores...)
	return out
}

func (s *Session) changed() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(cloneState(s.state))
	}
}

func (s *Session) uiChanged() {
	if s.opts.OnUIChange != nil {
		s.opts.OnUIChange(s.ui)
	}
}

func (s *Session) lifecycle(event string) {
	if s.opts.OnLifecycle != nil {
		s.opts.OnLifecycle(event)
	}
}

// Driver feeds clock ticks into a session's timer until its context ends.
type Driver struct {
	Session *Session
	Clock   Clock
	// OnEvent receives every timer event after the session has applied it.
	OnEvent func(TimerEvent)
}

// Run blocks until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	clock := d.Clock
	if clock == nil {
		clock = RealClock{}
	}
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			for _, ev := range d.Session.Tick() {
				if d.OnEvent != nil {
					d.OnEvent(ev)
				}
			}
		}
	}
}
