package transport

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Reconnection runs in two phases. While attempts are below MaxAttempts the
// delay ramps exponentially, recovering quickly from transient blips. Past
// that the policy switches to a fixed slow interval and retries indefinitely,
// so a sustained outage never turns into a tight reconnect storm.

// ReconnectPolicy holds the tuning knobs for both phases.
type ReconnectPolicy struct {
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	MaxAttempts     int
	PersistentDelay time.Duration
}

// DefaultReconnectPolicy returns the stock two-phase policy.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		MaxAttempts:     5,
		PersistentDelay: 8 * time.Second,
	}
}

// Delay computes the wait before the given attempt. Attempts at or past
// MaxAttempts land in the persistent phase.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	if attempt >= p.MaxAttempts {
		return p.PersistentDelay
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(1.5, float64(attempt)))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Persistent reports whether the given attempt count is in the persistent
// phase.
func (p ReconnectPolicy) Persistent(attempt int) bool {
	return attempt >= p.MaxAttempts
}

// Reconnector schedules reconnection attempts according to a ReconnectPolicy.
// It owns exactly one timer handle at a time: the previous timer is always
// stopped before a new one is armed, so an attempt can never be scheduled
// twice. The countdown ticker exists purely for observability while in the
// persistent phase; no control flow reads it.
type Reconnector struct {
	policy  ReconnectPolicy
	attempt func()
	logger  zerolog.Logger

	// onCountdown, when set, receives whole-second ticks while waiting in
	// the persistent phase.
	onCountdown func(secondsLeft int)

	mu            sync.Mutex
	attempts      int
	persistent    bool
	enabled       bool
	timer         *time.Timer
	countdownStop chan struct{}
	countdownLeft int
}

// NewReconnector creates a reconnector that invokes attempt when a scheduled
// retry fires. attempt runs on the timer goroutine and must not block.
func NewReconnector(policy ReconnectPolicy, logger zerolog.Logger, attempt func()) *Reconnector {
	return &Reconnector{
		policy:  policy,
		attempt: attempt,
		logger:  logger.With().Str("component", "reconnect").Logger(),
		enabled: true,
	}
}

// SetCountdownObserver registers a callback for persistent-phase countdown
// ticks. Cosmetic only.
func (r *Reconnector) SetCountdownObserver(fn func(secondsLeft int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCountdown = fn
}

// ScheduleRetry arms the next reconnection attempt after a failed or lost
// connection. No-op when auto-reconnect is disabled.
func (r *Reconnector) ScheduleRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	r.stopTimerLocked()

	delay := r.policy.Delay(r.attempts)
	entering := r.policy.Persistent(r.attempts)
	if entering && !r.persistent {
		r.logger.Warn().
			Int("attempts", r.attempts).
			Dur("interval", delay).
			Msg("entering persistent retry mode")
	}
	r.persistent = entering
	r.attempts++

	r.logger.Info().
		Int("attempt", r.attempts).
		Dur("delay", delay).
		Bool("persistent", r.persistent).
		Msg("reconnect scheduled")

	r.timer = time.AfterFunc(delay, r.attempt)
	if r.persistent {
		r.startCountdownLocked(delay)
	}
}

// Reset clears all retry state after a successful connection. Exits the
// persistent phase unconditionally.
func (r *Reconnector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopTimerLocked()
	r.attempts = 0
	r.persistent = false
}

// Disable cancels any scheduled attempt and countdown and resets attempts
// without dialing. This is the only path that suppresses auto-reconnect.
func (r *Reconnector) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
	r.stopTimerLocked()
	r.attempts = 0
	r.persistent = false
}

// Enable re-arms the reconnector after a Disable, typically when the caller
// reconnects manually.
func (r *Reconnector) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
}

// Attempts returns the current failed-attempt count.
func (r *Reconnector) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// InPersistentMode reports whether the policy has switched to fixed-interval
// retries.
func (r *Reconnector) InPersistentMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistent
}

// CountdownSeconds returns the seconds remaining before the next persistent
// retry, or zero outside the persistent phase.
func (r *Reconnector) CountdownSeconds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdownLeft
}

// stopTimerLocked cancels the pending timer and countdown. Callers hold mu.
func (r *Reconnector) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.countdownStop != nil {
		close(r.countdownStop)
		r.countdownStop = nil
	}
	r.countdownLeft = 0
}

// startCountdownLocked ticks the remaining wait down once per second for UX
// observers. Callers hold mu.
func (r *Reconnector) startCountdownLocked(delay time.Duration) {
	stop := make(chan struct{})
	r.countdownStop = stop
	r.countdownLeft = int(delay / time.Second)
	if r.onCountdown != nil {
		r.onCountdown(r.countdownLeft)
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.mu.Lock()
				if r.countdownStop != stop {
					r.mu.Unlock()
					return
				}
				if r.countdownLeft > 0 {
					r.countdownLeft--
				}
				left := r.countdownLeft
				fn := r.onCountdown
				r.mu.Unlock()
				if fn != nil {
					fn(left)
				}
			}
		}
	}()
}
