// Package resilience holds the fault-tolerance helpers used around the
// engine's external dependencies: a circuit breaker for the query cache,
// backoff retry for corpus loads, and a timeout wrapper for rebuilds.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling fn while the breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

type BreakerConfig struct {
	// Threshold is the number of failures in a row that opens the breaker.
	Threshold int
	// Cooldown is how long an open breaker rejects calls before letting a
	// single trial call through.
	Cooldown time.Duration
	// Ignore marks errors that are answers rather than outages, such as a
	// cache miss. They reset the failure count like a success.
	Ignore func(error) bool
	// OnStateChange runs under the breaker's lock.
	OnStateChange func(name string, from, to State)
}

// CircuitBreaker fails fast after Threshold consecutive failures. Once the
// cooldown passes it admits one trial call; its outcome closes or reopens
// the breaker, and other calls are rejected while it runs.
type CircuitBreaker struct {
	name   string
	cfg    BreakerConfig
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

// Execute calls fn unless the breaker is open and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err == nil || (cb.cfg.Ignore != nil && cb.cfg.Ignore(err)))
	return err
}

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
		wait := cb.cfg.Cooldown - cb.now().Sub(cb.openedAt)
		if wait > 0 {
			return fmt.Errorf("%s: %w (retry in %v)", cb.name, ErrCircuitOpen, wait.Round(time.Millisecond))
		}
		cb.setState(StateHalfOpen)
	case StateHalfOpen:
		return fmt.Errorf("%s: %w (trial call in flight)", cb.name, ErrCircuitOpen)
	}
	return nil
}

func (cb *CircuitBreaker) record(ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if ok {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.setState(StateClosed)
		}
		return
	}
	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.cfg.Threshold {
		cb.openedAt = cb.now()
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if to == StateOpen {
		cb.logger.Warn("circuit opened", "from", from.String(), "failures", cb.failures)
	} else {
		cb.logger.Info("circuit state changed", "from", from.String(), "to", to.String())
	}
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.name, from, to)
	}
}
