// Package correlate matches responses arriving on a multiplexed WebSocket
// channel back to the requests that caused them. The Table is the primary,
// id-keyed mechanism; the History plus the recovery heuristic in recovery.go
// is a best-effort fallback for responses that arrive without a usable id.
package correlate

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is how long a registered request may wait for its response.
const DefaultTimeout = 30 * time.Second

// Outcome is the settled result of a pending request. Exactly one of Result
// and Err is meaningful.
type Outcome struct {
	Result json.RawMessage
	Err    error
}

type pending struct {
	id        string
	ch        chan Outcome
	timer     *time.Timer
	createdAt time.Time
}

// Table tracks outstanding request ids. Every registered id settles exactly
// once: by Resolve, by Reject, or by timeout expiry, whichever comes first.
// Later settlements of the same id are silent no-ops.
type Table struct {
	mu      sync.Mutex
	pending map[string]*pending
	timeout time.Duration
	logger  zerolog.Logger
}

// NewTable creates a correlation table. A timeout of zero uses
// DefaultTimeout.
func NewTable(timeout time.Duration, logger zerolog.Logger) *Table {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Table{
		pending: make(map[string]*pending),
		timeout: timeout,
		logger:  logger.With().Str("component", "correlate").Logger(),
	}
}

// Register creates a pending entry for id and returns the channel its
// outcome will be delivered on. The channel is buffered so a settle never
// blocks on a caller that already gave up.
func (t *Table) Register(id string) <-chan Outcome {
	p := &pending{
		id:        id,
		ch:        make(chan Outcome, 1),
		createdAt: time.Now(),
	}
	p.timer = time.AfterFunc(t.timeout, func() {
		t.Reject(id, &TimeoutError{ID: id, Seconds: t.timeout.Seconds()})
	})

	t.mu.Lock()
	t.pending[id] = p
	t.mu.Unlock()
	return p.ch
}

// Resolve settles id with a result. Returns false if the id is unknown:
// already settled, expired, or never registered.
func (t *Table) Resolve(id string, result json.RawMessage) bool {
	p := t.take(id)
	if p == nil {
		return false
	}
	p.ch <- Outcome{Result: result}
	return true
}

// Reject settles id with an error. Unknown ids are a no-op, which is what
// makes the timeout-vs-late-response race safe: whichever settles first
// removes the entry, the loser finds nothing.
func (t *Table) Reject(id string, err error) bool {
	p := t.take(id)
	if p == nil {
		return false
	}
	p.ch <- Outcome{Err: err}
	return true
}

// Extend restarts the timeout clock for id. Called when a progress update
// arrives, so a long-running command stays alive as long as the plugin keeps
// reporting.
func (t *Table) Extend(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[id]
	if !ok {
		return false
	}
	p.timer.Reset(t.timeout)
	return true
}

// FailAll rejects every outstanding request. Called on transport close so no
// caller is left hanging on a connection that will never answer.
func (t *Table) FailAll(err error) int {
	t.mu.Lock()
	drained := make([]*pending, 0, len(t.pending))
	for id, p := range t.pending {
		p.timer.Stop()
		drained = append(drained, p)
		delete(t.pending, id)
	}
	t.mu.Unlock()

	for _, p := range drained {
		p.ch <- Outcome{Err: err}
	}
	if len(drained) > 0 {
		t.logger.Warn().Int("count", len(drained)).Err(err).Msg("failed all pending requests")
	}
	return len(drained)
}

// Len reports the number of outstanding requests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// take removes and returns the entry for id, stopping its timer.
func (t *Table) take(id string) *pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[id]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(t.pending, id)
	return p
}
