package correlate

import (
	"encoding/json"
	"testing"

	"github.com/figrelay/figma-relay/internal/wire"
)

func TestRecoverIDExplicitIDWins(t *testing.T) {
	h := NewHistory(10)
	h.Record("create_rectangle", "rect-1", nil)

	m := &wire.Message{ID: "explicit", Result: json.RawMessage(`{"id":"n1","width":10,"height":20}`)}
	id, ok := RecoverID(h, m)
	if !ok || id != "explicit" {
		t.Errorf("RecoverID = (%s, %v), want explicit id untouched", id, ok)
	}
}

func TestRecoverIDByFingerprint(t *testing.T) {
	tests := []struct {
		name   string
		result string
		record string
		wantID string
	}{
		{
			name:   "rectangle shape",
			result: `{"id":"n1","width":100,"height":50,"name":"Rect"}`,
			record: "create_rectangle",
			wantID: "rect-7",
		},
		{
			name:   "text shape",
			result: `{"id":"n2","characters":"hello"}`,
			record: "create_text",
			wantID: "rect-7",
		},
		{
			name:   "text scan",
			result: `{"textNodes":[],"count":0}`,
			record: "scan_text_nodes",
			wantID: "rect-7",
		},
		{
			name:   "command echo in result",
			result: `{"command":"delete_node","deleted":true}`,
			record: "delete_node",
			wantID: "rect-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(10)
			// A decoy from another command, issued first.
			h.Record("get_selection", "decoy-1", nil)
			h.Record(tt.record, tt.wantID, nil)

			m := &wire.Message{Result: json.RawMessage(tt.result)}
			id, ok := RecoverID(h, m)
			if !ok {
				t.Fatal("RecoverID failed, want recovery")
			}
			if id != tt.wantID {
				t.Errorf("RecoverID = %s, want %s", id, tt.wantID)
			}
		})
	}
}

func TestRecoverIDGlobalFallback(t *testing.T) {
	h := NewHistory(10)
	h.Record("set_fill_color", "fill-1", nil)
	h.Record("move_node", "move-9", nil)

	// No fingerprint matches a bare error message; the globally most-recent
	// id is the best remaining guess.
	m := &wire.Message{Error: "something went wrong"}
	id, ok := RecoverID(h, m)
	if !ok || id != "move-9" {
		t.Errorf("RecoverID = (%s, %v), want move-9 via global fallback", id, ok)
	}
}

func TestRecoverIDNothingToRecover(t *testing.T) {
	h := NewHistory(10)
	m := &wire.Message{Result: json.RawMessage(`{"unrelated":true}`)}
	if id, ok := RecoverID(h, m); ok {
		t.Errorf("RecoverID on empty history = (%s, true), want failure", id)
	}
}

func TestInferCommandNoFalsePositives(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"empty result", ``},
		{"non-object result", `"just a string"`},
		{"partial fingerprint", `{"width":10,"height":20}`},
		{"unknown shape", `{"foo":1,"bar":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &wire.Message{Result: json.RawMessage(tt.result)}
			if cmd, ok := inferCommand(m); ok {
				t.Errorf("inferCommand = (%s, true), want no inference", cmd)
			}
		})
	}
}
