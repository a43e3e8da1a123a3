package reconcile

import (
	"time"

	"shepherd/internal/check"
)

const (
	// failureThreshold is 5: consecutive failing ticks before respawns pause.
	failureThreshold = 5
	// backoffDuration is 30s: how long respawns stay paused after the last failure.
	backoffDuration = 30 * time.Second
	// failureResetWindow is 300s: quiet period after which the counter clears.
	failureResetWindow = 300 * time.Second
)

// Backoff tracks consecutive reconciliation failures and gates respawn
// attempts. It is owned exclusively by the reconcile loop — ticks are
// serialized, so no locking is needed. State lives in memory only and is
// lost on restart.
type Backoff struct {
	clock       Clock
	failures    uint
	lastFailure time.Time // zero when no failure is recorded
}

// NewBackoff creates a Backoff in the normal (non-suppressing) state.
func NewBackoff(clock Clock) *Backoff {
	check.Assert(clock != nil, "NewBackoff: clock must not be nil")
	return &Backoff{clock: clock}
}

// RegisterFailure increments the consecutive-failure counter and stamps the
// current time. Called once per tick whenever dead replicas were observed.
func (b *Backoff) RegisterFailure() {
	b.failures++
	b.lastFailure = b.clock.Now()
}

// MaybeReset clears the counter once the reset window has elapsed since the
// last failure. Called once per tick whenever no dead replicas were observed.
func (b *Backoff) MaybeReset() {
	if b.lastFailure.IsZero() {
		return
	}
	if b.clock.Now().Sub(b.lastFailure) > failureResetWindow {
		b.failures = 0
		b.lastFailure = time.Time{}
	}
}

// InBackoff reports whether respawns are currently suppressed: a failure is
// recorded, the counter has reached the threshold, and the backoff duration
// has not yet elapsed. The gate applies to scale-up only — dead cleanup and
// scale-down always proceed.
func (b *Backoff) InBackoff() bool {
	if b.lastFailure.IsZero() || b.failures < failureThreshold {
		return false
	}
	return b.clock.Now().Sub(b.lastFailure) < backoffDuration
}

// Failures returns the consecutive-failure count, for logging.
func (b *Backoff) Failures() uint { return b.failures }
