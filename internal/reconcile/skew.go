package reconcile

import (
	"context"
	"sync"
	"time"

	"shepherd/internal/check"

	"github.com/beevik/ntp"
)

const (
	defaultNTPPool      = "pool.ntp.org"
	defaultNTPInterval  = 60 * time.Second
	defaultNTPThreshold = 500 * time.Millisecond
)

// SkewStatus is the latest clock-skew sample. A zero CheckedAt means no
// sample has been taken yet.
type SkewStatus struct {
	Offset    time.Duration
	Healthy   bool
	Error     string
	CheckedAt time.Time
}

// SkewChecker periodically samples the local clock offset against an NTP
// pool. Backoff windows are wall-clock arithmetic, so a drifting clock
// silently shortens or stretches them; the checker only reports — it never
// gates reconciliation decisions.
type SkewChecker struct {
	mu        sync.RWMutex
	status    SkewStatus
	pool      string
	interval  time.Duration
	threshold time.Duration
	clock     Clock

	// CheckFunc overrides the NTP query, for tests.
	CheckFunc func() SkewStatus
}

// NewSkewChecker creates a checker with the default pool and thresholds.
func NewSkewChecker(clock Clock) *SkewChecker {
	check.Assert(clock != nil, "NewSkewChecker: clock must not be nil")
	return &SkewChecker{
		pool:      defaultNTPPool,
		interval:  defaultNTPInterval,
		threshold: defaultNTPThreshold,
		clock:     clock,
	}
}

// Run samples immediately and then at the checker interval until the
// context ends.
func (s *SkewChecker) Run(ctx context.Context) {
	s.check()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *SkewChecker) check() {
	if s.CheckFunc != nil {
		st := s.CheckFunc()
		s.mu.Lock()
		s.status = st
		s.mu.Unlock()
		return
	}

	resp, err := ntp.Query(s.pool)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if err != nil {
		s.status = SkewStatus{
			Error:     err.Error(),
			Healthy:   false,
			CheckedAt: now,
		}
		return
	}

	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}

	s.status = SkewStatus{
		Offset:    resp.ClockOffset,
		Healthy:   offset < s.threshold,
		CheckedAt: now,
	}
}

// Status returns the latest sample.
func (s *SkewChecker) Status() SkewStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
