package chrono

import (
	"sync"
	"time"

	"webcivil-assist/lib/timezone"
)

// API is what anything waiting on or reading the clock should use.
type API interface {
	// Now returns the current time in court time.
	Now() time.Time
	// After fires once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// StandardImpl is the system clock.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return timezone.Now()
}

func (StandardImpl) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// ManualImpl is a clock for tests, waits return immediately and move the
// clock forward.
type ManualImpl struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func NewManualImpl(now time.Time) *ManualImpl {
	return &ManualImpl{now: now}
}

func (m *ManualImpl) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualImpl) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.waits = append(m.waits, d)

	fired := make(chan time.Time, 1)
	fired <- m.now
	return fired
}

// Waits lists every duration passed to After.
func (m *ManualImpl) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.waits...)
}
