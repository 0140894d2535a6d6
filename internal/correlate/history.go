package correlate

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultHistoryCap bounds each per-command bucket.
const DefaultHistoryCap = 10

// HistoryEntry records one issued command id. Params are kept only for
// diagnostics; recovery matches on command name and recency alone.
type HistoryEntry struct {
	Command   string
	ID        string
	Timestamp time.Time
	Params    json.RawMessage

	// seq orders entries issued within the same clock tick.
	seq uint64
}

// History is a bounded FIFO of recently issued command ids, bucketed by
// command name. It exists solely to feed the id-recovery heuristic and is
// never consulted for primary correlation.
type History struct {
	mu      sync.Mutex
	buckets map[string][]HistoryEntry
	cap     int
	nextSeq uint64
}

// NewHistory creates a history with the given per-command cap. A cap of zero
// uses DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{
		buckets: make(map[string][]HistoryEntry),
		cap:     capacity,
	}
}

// Record appends an issued id to its command bucket, evicting the oldest
// entry once the bucket is full.
func (h *History) Record(command, id string, params json.RawMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	bucket := h.buckets[command]
	if len(bucket) >= h.cap {
		bucket = bucket[1:]
	}
	h.nextSeq++
	h.buckets[command] = append(bucket, HistoryEntry{
		Command:   command,
		ID:        id,
		Timestamp: time.Now(),
		Params:    params,
		seq:       h.nextSeq,
	})
}

// Latest returns the most recently recorded entry for command.
func (h *History) Latest(command string) (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	bucket := h.buckets[command]
	if len(bucket) == 0 {
		return HistoryEntry{}, false
	}
	return bucket[len(bucket)-1], true
}

// LatestAny returns the most recently recorded entry across all buckets.
// Buckets are snapshotted under the lock; nothing mutates while iterating.
func (h *History) LatestAny() (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var best HistoryEntry
	found := false
	for _, bucket := range h.buckets {
		last := bucket[len(bucket)-1]
		if !found || last.seq > best.seq {
			best = last
			found = true
		}
	}
	return best, found
}

// Len reports the total number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, bucket := range h.buckets {
		n += len(bucket)
	}
	return n
}
