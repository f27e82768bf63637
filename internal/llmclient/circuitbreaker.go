package llmclient

import (
	"log"
	"sync"
	"time"
)

// breakerState mirrors pnocera-SciFind's circuit breaker states, trimmed to
// the three this client needs.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// circuitBreaker trips after a run of consecutive transient failures on one
// backend and holds requests back for a cooldown period, so a struggling
// backend doesn't eat the full retry budget on every paper in the queue.
type circuitBreaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	cooldown         time.Duration
	state            breakerState
	consecutiveFails int
	openedAt         time.Time
}

func newCircuitBreaker(name string, failureThreshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            stateClosed,
	}
}

// Allow reports whether a request may proceed, flipping an open breaker to
// half-open once the cooldown has elapsed.
func (cb *circuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.openedAt) >= cb.cooldown {
			cb.state = stateHalfOpen
			return true
		}
		return false
	default: // stateHalfOpen: every request is let through (no single-probe limit); the next Record closes or reopens
		return true
	}
}

// Record updates breaker state with the outcome of an allowed request.
func (cb *circuitBreaker) Record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		if cb.state != stateClosed {
			log.Printf("[INFO] circuit breaker %q closed after recovery probe", cb.name)
		}
		cb.state = stateClosed
		cb.consecutiveFails = 0
		return
	}

	cb.consecutiveFails++
	if cb.state == stateHalfOpen || cb.consecutiveFails >= cb.failureThreshold {
		if cb.state != stateOpen {
			log.Printf("[WARN] circuit breaker %q opened after %d consecutive failures", cb.name, cb.consecutiveFails)
		}
		cb.state = stateOpen
		cb.openedAt = time.Now()
	}
}

// State reports the current breaker state for diagnostics.
func (cb *circuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
