package transport

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDelayBackoffThenCapped(t *testing.T) {
	p := DefaultReconnectPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1000 * time.Millisecond},
		{1, 1500 * time.Millisecond},
		{2, 2250 * time.Millisecond},
		{3, 3375 * time.Millisecond},
		{4, 5062500 * time.Microsecond},
		{5, 8 * time.Second},  // persistent phase
		{10, 8 * time.Second}, // stays there
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelayCapBeforePersistent(t *testing.T) {
	p := ReconnectPolicy{
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		MaxAttempts:     20,
		PersistentDelay: 8 * time.Second,
	}

	// 1.5^9 ≈ 38.4, past the 30s cap.
	if got := p.Delay(9); got != 30*time.Second {
		t.Errorf("Delay(9) = %v, want capped 30s", got)
	}
	// Monotonic non-decreasing up to the cap.
	prev := time.Duration(0)
	for attempt := 0; attempt < 15; attempt++ {
		d := p.Delay(attempt)
		if d < prev {
			t.Errorf("Delay(%d) = %v decreased from %v", attempt, d, prev)
		}
		prev = d
	}
}

func TestReconnectorEntersPersistentMode(t *testing.T) {
	policy := ReconnectPolicy{
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		MaxAttempts:     3,
		PersistentDelay: time.Hour, // never fires during the test
	}
	r := NewReconnector(policy, zerolog.Nop(), func() {})

	for i := 0; i < 3; i++ {
		r.ScheduleRetry()
		if r.InPersistentMode() {
			t.Fatalf("persistent mode after %d attempts, want backoff phase", i+1)
		}
	}

	r.ScheduleRetry()
	if !r.InPersistentMode() {
		t.Error("not in persistent mode after MaxAttempts failures")
	}
	if r.Attempts() != 4 {
		t.Errorf("attempts = %d, want 4", r.Attempts())
	}

	r.Disable()
}

func TestReconnectorResetExitsPersistentMode(t *testing.T) {
	policy := ReconnectPolicy{
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		MaxAttempts:     1,
		PersistentDelay: time.Hour,
	}
	r := NewReconnector(policy, zerolog.Nop(), func() {})

	r.ScheduleRetry()
	r.ScheduleRetry()
	if !r.InPersistentMode() {
		t.Fatal("expected persistent mode")
	}

	// A successful connection resets unconditionally; the next failure
	// starts the ramp from scratch.
	r.Reset()
	if r.InPersistentMode() {
		t.Error("persistent mode survived Reset")
	}
	if r.Attempts() != 0 {
		t.Errorf("attempts = %d after Reset, want 0", r.Attempts())
	}

	r.Disable()
}

func TestReconnectorDisableCancelsScheduledAttempt(t *testing.T) {
	var fired atomic.Int32
	policy := ReconnectPolicy{
		BaseDelay:       30 * time.Millisecond,
		MaxDelay:        30 * time.Millisecond,
		MaxAttempts:     5,
		PersistentDelay: 30 * time.Millisecond,
	}
	r := NewReconnector(policy, zerolog.Nop(), func() { fired.Add(1) })

	r.ScheduleRetry()
	r.Disable()

	time.Sleep(100 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("attempt fired %d times after Disable, want 0", n)
	}
	if r.Attempts() != 0 {
		t.Errorf("attempts = %d after Disable, want 0", r.Attempts())
	}

	// Disabled reconnectors ignore further scheduling.
	r.ScheduleRetry()
	time.Sleep(60 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("attempt fired %d times while disabled, want 0", n)
	}
}

func TestReconnectorAttemptFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	policy := ReconnectPolicy{
		BaseDelay:       5 * time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		MaxAttempts:     5,
		PersistentDelay: 5 * time.Millisecond,
	}
	r := NewReconnector(policy, zerolog.Nop(), func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	r.ScheduleRetry()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled attempt never fired")
	}

	r.Disable()
}

func TestReconnectorCountdownObserved(t *testing.T) {
	ticks := make(chan int, 16)
	policy := ReconnectPolicy{
		BaseDelay:       time.Millisecond,
		MaxDelay:        time.Millisecond,
		MaxAttempts:     0, // straight to persistent phase
		PersistentDelay: 3 * time.Second,
	}
	r := NewReconnector(policy, zerolog.Nop(), func() {})
	r.SetCountdownObserver(func(left int) {
		select {
		case ticks <- left:
		default:
		}
	})

	r.ScheduleRetry()
	select {
	case left := <-ticks:
		if left != 3 {
			t.Errorf("initial countdown = %d, want 3", left)
		}
	case <-time.After(time.Second):
		t.Fatal("countdown observer never called")
	}

	r.Disable()
	if r.CountdownSeconds() != 0 {
		t.Errorf("countdown = %d after Disable, want 0", r.CountdownSeconds())
	}
}
