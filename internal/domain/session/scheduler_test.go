package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tokenExpiringAt builds a bearer token whose exp claim is the given instant.
func tokenExpiringAt(t *testing.T, at time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": at.Unix()})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

// reasonRecorder collects invalidation reasons.
type reasonRecorder struct {
	reasons []Reason
}

func (r *reasonRecorder) expire(reason Reason) {
	r.reasons = append(r.reasons, reason)
}

func TestSchedulerFailFastOnMalformedToken(t *testing.T) {
	clk := newFakeClock()
	s := NewScheduler(clk, testLogger())
	rec := &reasonRecorder{}

	s.Schedule("not-a-jwt", rec.expire)

	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonInvalidToken {
		t.Fatalf("reasons = %v, want [ReasonInvalidToken]", rec.reasons)
	}
	if s.Armed() {
		t.Error("Armed() = true after fail-fast, want false")
	}
	if clk.pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clk.pending())
	}
}

func TestSchedulerFiresImmediatelyWhenAlreadyExpired(t *testing.T) {
	clk := newFakeClock()
	s := NewScheduler(clk, testLogger())
	rec := &reasonRecorder{}

	s.Schedule(tokenExpiringAt(t, clk.Now().Add(-1*time.Minute)), rec.expire)

	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonExpired {
		t.Fatalf("reasons = %v, want [ReasonExpired]", rec.reasons)
	}
	if s.Armed() {
		t.Error("Armed() = true, want false")
	}
}

func TestSchedulerExpiryBoundary(t *testing.T) {
	clk := newFakeClock()
	s := NewScheduler(clk, testLogger())
	rec := &reasonRecorder{}

	s.Schedule(tokenExpiringAt(t, clk.Now().Add(5*time.Second)), rec.expire)

	clk.Advance(4999 * time.Millisecond)
	if len(rec.reasons) != 0 {
		t.Fatalf("fired after 4999ms: reasons = %v", rec.reasons)
	}
	if !s.Armed() {
		t.Fatal("Armed() = false before expiry, want true")
	}

	clk.Advance(2 * time.Millisecond)
	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonExpired {
		t.Fatalf("reasons = %v, want [ReasonExpired]", rec.reasons)
	}
	if s.Armed() {
		t.Error("Armed() = true after firing, want false")
	}
}

func TestSchedulerReArmsAfterCappedDelay(t *testing.T) {
	clk := newFakeClock()
	s := NewScheduler(clk, testLogger())
	rec := &reasonRecorder{}

	// Token valid well past the single-timer cap.
	s.Schedule(tokenExpiringAt(t, clk.Now().Add(maxTimerDelay+6*time.Hour)), rec.expire)

	// The capped wait elapses: the scheduler must re-arm, not fire early.
	clk.Advance(maxTimerDelay)
	if len(rec.reasons) != 0 {
		t.Fatalf("fired at capped delay: reasons = %v", rec.reasons)
	}
	if !s.Armed() {
		t.Fatal("Armed() = false after capped fire, want re-armed timer")
	}

	clk.Advance(6 * time.Hour)
	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonExpired {
		t.Fatalf("reasons = %v, want [ReasonExpired] at true expiry", rec.reasons)
	}
}

func TestSchedulerReplacesPriorTimer(t *testing.T) {
	clk := newFakeClock()
	s := NewScheduler(clk, testLogger())
	rec := &reasonRecorder{}

	s.Schedule(tokenExpiringAt(t, clk.Now().Add(1*time.Minute)), rec.expire)
	s.Schedule(tokenExpiringAt(t, clk.Now().Add(2*time.Minute)), rec.expire)

	clk.Advance(3 * time.Minute)
	if len(rec.reasons) != 1 {
		t.Fatalf("fired %d times, want 1 (arming must replace, not stack)", len(rec.reasons))
	}
}

func TestSchedulerCancel(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, s *Scheduler, clk *fakeClock, rec *reasonRecorder)
	}{
		{
			name: "cancel pending timer",
			run: func(t *testing.T, s *Scheduler, clk *fakeClock, rec *reasonRecorder) {
				s.Schedule(tokenExpiringAt(t, clk.Now().Add(1*time.Minute)), rec.expire)
				s.Cancel()
				clk.Advance(2 * time.Minute)
				if len(rec.reasons) != 0 {
					t.Errorf("fired after Cancel: reasons = %v", rec.reasons)
				}
			},
		},
		{
			name: "cancel with nothing armed",
			run: func(t *testing.T, s *Scheduler, clk *fakeClock, rec *reasonRecorder) {
				s.Cancel()
				s.Cancel()
			},
		},
		{
			name: "cancel after fire",
			run: func(t *testing.T, s *Scheduler, clk *fakeClock, rec *reasonRecorder) {
				s.Schedule(tokenExpiringAt(t, clk.Now().Add(1*time.Second)), rec.expire)
				clk.Advance(2 * time.Second)
				s.Cancel()
				if len(rec.reasons) != 1 {
					t.Errorf("reasons = %v, want single expiry", rec.reasons)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := newFakeClock()
			s := NewScheduler(clk, testLogger())
			tt.run(t, s, clk, &reasonRecorder{})
		})
	}
}

func TestSchedulerRealClockImmediatePaths(t *testing.T) {
	// The system clock is only exercised on paths that need no time travel.
	s := NewScheduler(nil, testLogger())
	rec := &reasonRecorder{}

	s.Schedule("garbage", rec.expire)
	s.Schedule(tokenExpiringAt(t, time.Now().Add(-1*time.Hour)), rec.expire)
	s.Cancel()

	want := []Reason{ReasonInvalidToken, ReasonExpired}
	if len(rec.reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", rec.reasons, want)
	}
	for i := range want {
		if rec.reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %v, want %v", i, rec.reasons[i], want[i])
		}
	}
}
