package errors

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerSettings tunes a CircuitBreaker. Zero values fall back to defaults
// suited for the price oracle: trip after half of the last ten calls fail,
// probe again after 30 seconds.
type BreakerSettings struct {
	FailureRatio float64
	MinCalls     int
	OpenFor      time.Duration
	ProbeCalls   int
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.5
	}
	if s.MinCalls <= 0 {
		s.MinCalls = 10
	}
	if s.OpenFor <= 0 {
		s.OpenFor = 30 * time.Second
	}
	if s.ProbeCalls <= 0 {
		s.ProbeCalls = 3
	}
	return s
}

// CircuitBreaker guards outbound calls to a flaky upstream. While open it
// fails fast with ErrCircuitOpen; after OpenFor it lets a few probe calls
// through and closes again once they all succeed.
type CircuitBreaker struct {
	settings BreakerSettings

	mu       sync.Mutex
	state    State
	calls    int
	failed   int
	passed   int
	openedAt time.Time
}

// NewCircuitBreaker returns a closed breaker with default settings.
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWith(BreakerSettings{})
}

// NewCircuitBreakerWith returns a closed breaker with the given settings.
func NewCircuitBreakerWith(settings BreakerSettings) *CircuitBreaker {
	return &CircuitBreaker{settings: settings.withDefaults()}
}

// Call runs fn unless the breaker is open. The fn error is returned as-is so
// callers can wrap it; rejections return ErrCircuitOpen.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if fn == nil {
		return nil
	}

	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.observe(err == nil)
	return err
}

// State reports the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.settings.OpenFor {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.resetWindow()
	case StateHalfOpen:
		if cb.calls >= cb.settings.ProbeCalls {
			return ErrCircuitOpen
		}
	}

	cb.calls++
	return nil
}

func (cb *CircuitBreaker) observe(ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !ok {
		cb.failed++
		if cb.state == StateHalfOpen {
			cb.trip()
			return
		}
		if cb.calls >= cb.settings.MinCalls &&
			float64(cb.failed)/float64(cb.calls) >= cb.settings.FailureRatio {
			cb.trip()
		}
		return
	}

	cb.passed++
	if cb.state == StateHalfOpen && cb.passed >= cb.settings.ProbeCalls {
		cb.state = StateClosed
		cb.resetWindow()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openedAt = time.Now()
	cb.resetWindow()
}

func (cb *CircuitBreaker) resetWindow() {
	cb.calls = 0
	cb.failed = 0
	cb.passed = 0
}
