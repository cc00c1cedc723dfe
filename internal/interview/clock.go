package interview

import (
	"sync"
	"time"
)

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source for timer drivers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualClock is advanced explicitly by tests. Every ticker created from it
// fires once per Advance step, regardless of its period.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock returns a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) NewTicker(time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time), done: make(chan struct{})}
	m.tickers = append(m.tickers, t)
	return t
}

// Tickers returns the number of live tickers.
func (m *ManualClock) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by steps seconds. Each tick is handed to
// every live ticker before the next one is sent, so Advance blocks until the
// consumers have received them.
func (m *ManualClock) Advance(steps int) {
	for range steps {
		m.mu.Lock()
		m.now = m.now.Add(time.Second)
		now := m.now
		tickers := append([]*manualTicker(nil), m.tickers...)
		m.mu.Unlock()

		for _, t := range tickers {
			t.send(now)
		}
	}
}

type manualTicker struct {
	c    chan time.Time
	once sync.Once
	done chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *manualTicker) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *manualTicker) send(now time.Time) {
	select {
	case t.c <- now:
	case <-t.done:
	}
}
