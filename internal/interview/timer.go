package interview

// TimerEventKind identifies a timer event.
type TimerEventKind string

// Timer event kinds.
const (
	EventTick    TimerEventKind = "tick"
	EventExpired TimerEventKind = "expired"
)

// TimerEvent is emitted by AdvanceOneSecond. Remaining is the value after the
// decrement.
type TimerEvent struct {
	Kind       TimerEventKind `json:"kind"`
	Remaining  int            `json:"remaining"`
	QuestionID string         `json:"questionId,omitempty"`
}

// Timer is a cooperative countdown for the current question. It does not own
// a goroutine: a driver calls AdvanceOneSecond once per elapsed second.
type Timer struct {
	limit     int
	remaining int
	running   bool
}

// NewTimer returns a stopped timer loaded with limit seconds.
func NewTimer(limit int) *Timer {
	t := &Timer{}
	t.Reset(limit)
	return t
}

// Reset loads a new limit and stops the timer. Start must be called again.
func (t *Timer) Reset(limit int) {
	if limit < 0 {
		limit = 0
	}
	t.limit = limit
	t.remaining = limit
	t.running = false
}

// Start resumes the countdown. A timer with nothing remaining stays stopped.
func (t *Timer) Start() {
	if t.remaining > 0 {
		t.running = true
	}
}

// Stop halts the countdown without emitting an event.
func (t *Timer) Stop() {
	t.running = false
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool { return t.running }

// Remaining returns the seconds left.
func (t *Timer) Remaining() int { return t.remaining }

// Limit returns the limit passed to the last Reset.
func (t *Timer) Limit() int { return t.limit }

// AdvanceOneSecond decrements the countdown and returns the resulting events.
// The tick that reaches zero is followed by exactly one expiry event, after
// which the timer is stopped. A stopped timer returns nil.
func (t *Timer) AdvanceOneSecond() []TimerEvent {
	if !t.running {
		return nil
	}

	t.remaining--
	if t.remaining > 0 {
		return []TimerEvent{{Kind: EventTick, Remaining: t.remaining}}
	}

	t.remaining = 0
	t.running = false
	return []TimerEvent{
		{Kind: EventTick, Remaining: 0},
		{Kind: EventExpired, Remaining: 0},
	}
}
