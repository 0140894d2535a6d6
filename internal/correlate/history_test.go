package correlate

import (
	"fmt"
	"testing"
)

func TestHistoryLatestPerCommand(t *testing.T) {
	h := NewHistory(10)
	h.Record("create_rectangle", "rect-1", nil)
	h.Record("create_text", "text-1", nil)
	h.Record("create_rectangle", "rect-2", nil)

	entry, ok := h.Latest("create_rectangle")
	if !ok || entry.ID != "rect-2" {
		t.Errorf("Latest(create_rectangle) = (%v, %v), want rect-2", entry.ID, ok)
	}

	if _, ok := h.Latest("delete_node"); ok {
		t.Error("Latest of unrecorded command = true, want false")
	}
}

func TestHistoryBucketEviction(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 15; i++ {
		h.Record("create_rectangle", fmt.Sprintf("rect-%d", i), nil)
	}

	if h.Len() != 10 {
		t.Errorf("bucket holds %d entries, want 10", h.Len())
	}

	// Oldest five are evicted FIFO; the newest survives.
	entry, _ := h.Latest("create_rectangle")
	if entry.ID != "rect-14" {
		t.Errorf("latest id = %s, want rect-14", entry.ID)
	}
}

func TestHistoryLatestAny(t *testing.T) {
	h := NewHistory(10)
	if _, ok := h.LatestAny(); ok {
		t.Error("LatestAny on empty history = true, want false")
	}

	h.Record("create_rectangle", "rect-1", nil)
	h.Record("set_fill_color", "fill-1", nil)
	h.Record("move_node", "move-1", nil)

	entry, ok := h.LatestAny()
	if !ok || entry.ID != "move-1" {
		t.Errorf("LatestAny = (%v, %v), want move-1", entry.ID, ok)
	}
}
