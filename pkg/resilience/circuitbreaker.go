package resilience

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/streamops/replay-service/pkg/errors"
)

// ErrCircuitOpen is returned when the breaker is open and fast-failing.
var ErrCircuitOpen = apperrors.New("CIRCUIT_OPEN", "circuit breaker is open", nil)

// ErrTooManyRequests is returned when a half-open breaker already has its
// one probe request in flight.
var ErrTooManyRequests = apperrors.New("CIRCUIT_HALF_OPEN_LIMIT", "too many requests while circuit is half-open", nil)

// halfOpenProbeLimit bounds how many requests a half-open circuit lets
// through before deciding whether to close or reopen.
const halfOpenProbeLimit = 1

// CircuitBreaker guards a single failing-prone operation, tripping open
// after FailureThreshold consecutive failures and probing for recovery
// after Timeout.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int64
	successes     int64
	halfOpenCount int64
	lastFailure   time.Time
}

// NewCircuitBreaker builds a breaker from cfg, applying DefaultCircuitBreakerConfig's
// zero-value fallbacks for any field left unset.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = defaults.SuccessThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// Execute runs fn if the circuit allows it, and updates state from the
// outcome. It returns ErrCircuitOpen / ErrTooManyRequests without calling
// fn when the circuit is not letting requests through.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn Executor) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.after(err == nil)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) <= cb.cfg.Timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.halfOpenCount = 1
		return nil
	case StateHalfOpen:
		if cb.halfOpenCount >= halfOpenProbeLimit {
			return ErrTooManyRequests
		}
		cb.halfOpenCount++
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) after(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if success {
			cb.failures = 0
			return
		}
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		if !success {
			cb.setState(StateOpen)
			return
		}
		cb.halfOpenCount--
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
}

// setState transitions the breaker and resets its per-state counters.
// Callers must hold cb.mu.
func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}
	from := cb.state
	cb.state = s
	cb.failures, cb.successes, cb.halfOpenCount = 0, 0, 0
	if s == StateOpen {
		cb.lastFailure = time.Now()
	}
	if cb.cfg.OnStateChange != nil {
		go cb.cfg.OnStateChange(cb.cfg.Name, from, s)
	}
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
