package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/metrics"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/scoring"
	"github.com/jonathan/interview-assistant/internal/state"
	"github.com/jonathan/interview-assistant/internal/types"
)

// persistTimeout bounds a single state write.
const persistTimeout = 5 * time.Second

// managedSession is a live session with its timer driver and subscribers.
type managedSession struct {
	id      string
	session *interview.Session
	events  *hub

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Registry owns the live interview sessions. Sessions not in memory are
// restored from the state store the first time they are requested.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*managedSession

	state     state.Store
	roster    roster.Store
	questions questions.Source
	scorer    scoring.Scorer
	clock     interview.Clock
	metrics   *metrics.Metrics
	logger    *zap.Logger

	// ctx parents every timer driver; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	State     state.Store
	Roster    roster.Store
	Questions questions.Source
	Scorer    scoring.Scorer
	Clock     interview.Clock
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = interview.RealClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		sessions:  make(map[string]*managedSession),
		state:     opts.State,
		roster:    opts.Roster,
		questions: opts.Questions,
		scorer:    opts.Scorer,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Create starts a new session and persists its initial state.
func (reg *Registry) Create(ctx context.Context) (*managedSession, error) {
	m := reg.newManaged(uuid.NewString())
	if err := reg.persistAll(ctx, m); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	reg.sessions[m.id] = m
	reg.mu.Unlock()

	reg.logger.Info("session created", zap.String("session_id", m.id))
	return m, nil
}

// Get returns a live session, restoring it from the state store if needed.
func (reg *Registry) Get(ctx context.Context, id string) (*managedSession, error) {
	reg.mu.Lock()
	m, ok := reg.sessions[id]
	reg.mu.Unlock()
	if ok {
		return m, nil
	}
	if reg.state == nil {
		return nil, &ErrSessionNotFound{ID: id}
	}

	var st types.InterviewState
	found, err := state.LoadJSON(ctx, reg.state, state.Key(state.SectionCandidate, id), &st)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &ErrSessionNotFound{ID: id}
	}
	ui := types.DefaultUIState()
	if _, err := state.LoadJSON(ctx, reg.state, state.Key(state.SectionSession, id), &ui); err != nil {
		return nil, err
	}

	restored := reg.newManaged(id)
	restored.session.Restore(st, ui)

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if existing, ok := reg.sessions[id]; ok {
		return existing, nil
	}
	reg.sessions[id] = restored
	if _, running := restored.session.CurrentQuestion(); running {
		reg.startDriver(restored)
	}
	reg.logger.Info("session restored", zap.String("session_id", id))
	return restored, nil
}

// Delete stops a session and removes its persisted sections.
func (reg *Registry) Delete(ctx context.Context, id string) error {
	reg.mu.Lock()
	m, ok := reg.sessions[id]
	delete(reg.sessions, id)
	reg.mu.Unlock()

	if ok {
		reg.stopDriver(m)
		m.events.close()
	}
	if reg.state == nil {
		if !ok {
			return &ErrSessionNotFound{ID: id}
		}
		return nil
	}
	if !ok {
		var st types.InterviewState
		found, err := state.LoadJSON(ctx, reg.state, state.Key(state.SectionCandidate, id), &st)
		if err != nil {
			return err
		}
		if !found {
			return &ErrSessionNotFound{ID: id}
		}
	}
	if err := reg.state.Delete(ctx, state.Key(state.SectionCandidate, id)); err != nil {
		return err
	}
	return reg.state.Delete(ctx, state.Key(state.SectionSession, id))
}

// Close stops every timer driver and waits for them to exit.
func (reg *Registry) Close() {
	reg.cancel()
	reg.wg.Wait()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, m := range reg.sessions {
		m.events.close()
	}
}

// Len returns the number of live sessions.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}

func (reg *Registry) newManaged(id string) *managedSession {
	m := &managedSession{id: id, events: newHub()}
	logger := reg.logger.With(zap.String("session_id", id))

	m.session = interview.NewSession(interview.Options{
		Questions: reg.questions,
		Scorer:    reg.scorer,
		Roster:    reg.roster,
		Clock:     reg.clock,
		Logger:    logger,
		OnChange: func(st types.InterviewState) {
			reg.persist(state.Key(state.SectionCandidate, id), st)
		},
		OnUIChange: func(ui types.UIState) {
			reg.persist(state.Key(state.SectionSession, id), ui)
		},
		OnLifecycle: func(event string) {
			if reg.metrics != nil {
				reg.metrics.Lifecycle(event)
			}
			switch event {
			case interview.LifecycleStarted:
				reg.startDriver(m)
			case interview.LifecycleFinished, interview.LifecycleReset:
				reg.stopDriver(m)
			}
			m.events.publish(streamEvent{Name: "lifecycle", Data: map[string]string{"event": event}})
		},
	})
	return m
}

// startDriver runs the timer driver for m until the interview ends.
func (reg *Registry) startDriver(m *managedSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(reg.ctx)
	m.cancel = cancel

	driver := &interview.Driver{
		Session: m.session,
		Clock:   reg.clock,
		OnEvent: func(ev interview.TimerEvent) {
			m.events.publish(streamEvent{Name: string(ev.Kind), Data: ev})
		},
	}
	reg.wg.Add(1)
	go func() {
		defer reg.wg.Done()
		_ = driver.Run(ctx)
	}()
}

func (reg *Registry) stopDriver(m *managedSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (reg *Registry) persist(key string, v any) {
	if reg.state == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := state.SaveJSON(ctx, reg.state, key, v); err != nil {
		reg.logger.Error("failed to persist state", zap.String("key", key), zap.Error(err))
	}
}

func (reg *Registry) persistAll(ctx context.Context, m *managedSession) error {
	if reg.state == nil {
		return nil
	}
	if err := state.SaveJSON(ctx, reg.state, state.Key(state.SectionCandidate, m.id), m.session.State()); err != nil {
		return err
	}
	return state.SaveJSON(ctx, reg.state, state.Key(state.SectionSession, m.id), m.session.UI())
}

// streamEvent is one server-sent event.
type streamEvent struct {
	Name string
	Data any
}

// hub fans events out to subscribers. Slow subscribers miss events rather
// than block the publisher.
type hub struct {
	mu     sync.Mutex
	subs   map[chan streamEvent]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[chan streamEvent]struct{})}
}

func (h *hub) subscribe() (<-chan streamEvent, func()) {
	ch := make(chan streamEvent, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *hub) publish(ev streamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
