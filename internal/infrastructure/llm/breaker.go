package llm

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the provider while the
// breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState is the state of a CircuitBreaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// BreakerConfig configures a CircuitBreaker
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker
	FailureThreshold int
	// SuccessThreshold successes in half-open close it again
	SuccessThreshold int
	// OpenTimeout is how long the breaker stays open before probing
	OpenTimeout time.Duration
	// HalfOpenMaxRequests bounds concurrent probes
	HalfOpenMaxRequests int
}

// DefaultBreakerConfig returns 5 failures, 2 successes, 30s open
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

// CircuitBreaker short-circuits calls to a failing dependency
type CircuitBreaker struct {
	config BreakerConfig
	now    func() time.Time

	mu            sync.Mutex
	state         BreakerState
	failures      int
	successes     int
	halfOpenCount int
	openedAt      time.Time

	onStateChange func(from, to BreakerState)
}

// NewCircuitBreaker creates a closed breaker. Zero thresholds fall back to
// the defaults.
func NewCircuitBreaker(config BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = def.OpenTimeout
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = def.HalfOpenMaxRequests
	}
	return &CircuitBreaker{config: config, now: time.Now, state: BreakerClosed}
}

// OnStateChange registers a callback run after each transition, outside the lock
func (cb *CircuitBreaker) OnStateChange(fn func(from, to BreakerState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs fn unless the breaker is open. fn's error counts as a failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn()
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	var transition func()
	defer func() {
		cb.mu.Unlock()
		if transition != nil {
			transition()
		}
	}()

	if cb.state == BreakerOpen && cb.now().Sub(cb.openedAt) >= cb.config.OpenTimeout {
		transition = cb.setState(BreakerHalfOpen)
	}

	switch cb.state {
	case BreakerOpen:
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	var transition func()
	defer func() {
		cb.mu.Unlock()
		if transition != nil {
			transition()
		}
	}()

	switch cb.state {
	case BreakerHalfOpen:
		cb.halfOpenCount--
		if err != nil {
			transition = cb.setState(BreakerOpen)
			return
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			transition = cb.setState(BreakerClosed)
		}
	case BreakerClosed:
		if err == nil {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			transition = cb.setState(BreakerOpen)
		}
	}
}

// setState must be called with mu held; it returns the notification to
// run after unlocking
func (cb *CircuitBreaker) setState(to BreakerState) func() {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCount = 0
	if to == BreakerOpen {
		cb.openedAt = cb.now()
	}
	if fn := cb.onStateChange; fn != nil && from != to {
		return func() { fn(from, to) }
	}
	return nil
}

// State returns the current state, moving open to half-open once the
// timeout has elapsed
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen && cb.now().Sub(cb.openedAt) >= cb.config.OpenTimeout {
		return BreakerHalfOpen
	}
	return cb.state
}

// Reset closes the breaker and clears its counters
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = BreakerClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCount = 0
}
