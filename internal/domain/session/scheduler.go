package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quillpress/quillctl/internal/domain/token"
)

// maxTimerDelay is the largest delay a single deferred call may wait,
// 2147483647 ms (~24.8 days). Tokens valid for longer than this are handled
// by re-arming when the capped wait elapses, never by firing early.
const maxTimerDelay = 2147483647 * time.Millisecond

// ExpireFunc receives the invalidation reason when a scheduled expiry fires.
type ExpireFunc func(Reason)

// Scheduler decodes a token's expiry claim and arms at most one deferred
// invalidation callback. Arming replaces any earlier timer; it never stacks.
type Scheduler struct {
	clock  Clock
	logger *slog.Logger

	mu    sync.Mutex
	gen   uint64 // incremented on every arm/cancel; stale callbacks bail out
	timer Timer
}

// NewScheduler creates a Scheduler. A nil clock means the system clock.
func NewScheduler(clock Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{clock: clock, logger: logger}
}

// Schedule arms the expiry callback for the given token.
//
// A token whose claims cannot be decoded is not retried: onExpire is invoked
// immediately with ReasonInvalidToken. A token already past its expiry fires
// immediately with ReasonExpired. Both immediate paths run synchronously on
// the calling goroutine, so callers observe the invalidation before Schedule
// returns. Otherwise a one-shot timer is armed for min(remaining,
// maxTimerDelay); a capped wait re-checks the real expiry when it elapses
// and re-arms until true expiry.
func (s *Scheduler) Schedule(tok string, onExpire ExpireFunc) {
	claims, err := token.Decode(tok)
	if err != nil {
		s.Cancel()
		s.logger.Debug("token undecodable, invalidating", "error", err)
		onExpire(ReasonInvalidToken)
		return
	}

	s.mu.Lock()
	s.cancelLocked()
	s.gen++
	gen := s.gen

	remaining := claims.ExpiresAt.Sub(s.clock.Now())
	if remaining <= 0 {
		s.mu.Unlock()
		s.logger.Debug("token already expired at scheduling time",
			"expires_at", claims.ExpiresAt,
		)
		onExpire(ReasonExpired)
		return
	}

	s.armLocked(gen, claims.ExpiresAt, remaining, onExpire)
	s.mu.Unlock()
}

// armLocked starts the deferred call. Caller holds s.mu.
func (s *Scheduler) armLocked(gen uint64, expiresAt time.Time, remaining time.Duration, onExpire ExpireFunc) {
	delay := remaining
	if delay > maxTimerDelay {
		delay = maxTimerDelay
	}
	s.logger.Debug("scheduling session expiry",
		"expires_at", expiresAt,
		"delay", delay,
		"capped", remaining > maxTimerDelay,
	)
	s.timer = s.clock.AfterFunc(delay, func() {
		s.onTimer(gen, expiresAt, onExpire)
	})
}

// onTimer runs when the deferred call fires. A stale generation means the
// timer was cancelled or replaced after firing was already committed.
func (s *Scheduler) onTimer(gen uint64, expiresAt time.Time, onExpire ExpireFunc) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}

	if remaining := expiresAt.Sub(s.clock.Now()); remaining > 0 {
		// Capped wait elapsed before the token's real expiry: re-arm.
		s.armLocked(gen, expiresAt, remaining, onExpire)
		s.mu.Unlock()
		return
	}

	s.timer = nil
	s.mu.Unlock()
	onExpire(ReasonExpired)
}

// Cancel stops any pending deferred call. Safe to call on an already-fired
// or already-cancelled scheduler.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Armed reports whether a deferred call is currently pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
