// Package mcpgateway is the MCP Gateway Client: it fans calls out to external tools
// over the Model Context Protocol, guarding each tool behind its own circuit breaker so
// a failing tool degrades gracefully instead of cascading into every request.
package mcpgateway

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState is one of the three states a breaker can be in.
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half_open"
)

// CircuitOpenError is returned by CanExecute when the breaker is open and the recovery
// timeout has not yet elapsed.
type CircuitOpenError struct {
	RemainingTime time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open, retry in %s", e.RemainingTime)
}

// CircuitBreaker tracks consecutive failures for one tool and trips open once the
// failure threshold is reached, only allowing a single half-open probe after the
// recovery timeout elapses.
type CircuitBreaker struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration

	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time
	state           CircuitState
}

func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		FailureThreshold: failureThreshold,
		RecoveryTimeout:  recoveryTimeout,
		state:            StateClosed,
	}
}

// CanExecute reports whether a call may proceed. Closed always allows it; Open allows it
// only once RecoveryTimeout has elapsed since the last failure, at which point the
// breaker transitions to HalfOpen and allows exactly one probe; HalfOpen allows the
// in-flight probe and nothing else until it resolves via RecordSuccess/RecordFailure.
func (c *CircuitBreaker) CanExecute() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		return &CircuitOpenError{RemainingTime: 0}
	case StateOpen:
		elapsed := time.Since(c.lastFailureTime)
		if elapsed >= c.RecoveryTimeout {
			c.state = StateHalfOpen
			return nil
		}
		return &CircuitOpenError{RemainingTime: c.RecoveryTimeout - elapsed}
	default:
		return nil
	}
}

// RecordSuccess resets the breaker to Closed with a zeroed failure count.
func (c *CircuitBreaker) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount = 0
	c.state = StateClosed
}

// RecordFailure increments the failure count and opens the circuit once the threshold
// is reached (including immediately, if the failing call was the HalfOpen probe).
func (c *CircuitBreaker) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount++
	c.lastFailureTime = time.Now()
	if c.state == StateHalfOpen || c.failureCount >= c.FailureThreshold {
		c.state = StateOpen
	}
}

// State returns the breaker's current state, for diagnostics/logging.
func (c *CircuitBreaker) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
