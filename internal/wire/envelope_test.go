package wire

import (
	"encoding/json"
	"testing"
)

func TestDecodeMessageResponse(t *testing.T) {
	raw := `{"id":"env-1","type":"message","channel":"abc12345","message":{"id":"req-1","result":{"ok":true}}}`

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeMessage {
		t.Errorf("Type = %q, want %q", env.Type, TypeMessage)
	}

	msg, err := env.DecodeMessage()
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.ID != "req-1" {
		t.Errorf("ID = %q, want req-1", msg.ID)
	}
	if !msg.IsResponse() {
		t.Error("message with a result should be a response")
	}
}

func TestDecodeMessageEmpty(t *testing.T) {
	env := Envelope{Type: TypeSystem}
	if _, err := env.DecodeMessage(); err == nil {
		t.Error("expected error for envelope without message")
	}
}

func TestIsResponse(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"result", Message{ID: "1", Result: json.RawMessage(`{}`)}, true},
		{"error", Message{ID: "1", Error: "boom"}, true},
		{"invocation", Message{ID: "1", Command: "get_selection"}, false},
		{"invocation with params", Message{Command: "move_node", Params: json.RawMessage(`{}`)}, false},
		{"empty", Message{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.IsResponse(); got != tc.want {
				t.Errorf("IsResponse() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorTextBareString(t *testing.T) {
	raw := `{"type":"error","message":"channel is full"}`

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeError {
		t.Fatalf("Type = %q, want %q", env.Type, TypeError)
	}
	if got := env.ErrorText(); got != "channel is full" {
		t.Errorf("ErrorText() = %q, want %q", got, "channel is full")
	}
	if _, err := env.DecodeMessage(); err == nil {
		t.Error("DecodeMessage should fail for a bare-string message")
	}
}

func TestNewCommandDuplicatesID(t *testing.T) {
	env, err := NewCommand("req-7", "abc12345", "create_rectangle", json.RawMessage(`{"width":10}`))
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	if env.ID != "req-7" {
		t.Errorf("envelope ID = %q, want req-7", env.ID)
	}
	if env.Type != TypeMessage || env.Channel != "abc12345" {
		t.Errorf("envelope = %+v, want message on abc12345", env)
	}

	msg, err := env.DecodeMessage()
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.ID != "req-7" {
		t.Errorf("inner ID = %q, want req-7", msg.ID)
	}
	if msg.Command != "create_rectangle" {
		t.Errorf("Command = %q, want create_rectangle", msg.Command)
	}
}

func TestNewResultLeavesEnvelopeIDEmpty(t *testing.T) {
	env, err := NewResult("req-9", "abc12345", json.RawMessage(`{"pong":true}`), "")
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	if env.ID != "" {
		t.Errorf("envelope ID = %q, want empty", env.ID)
	}

	msg, err := env.DecodeMessage()
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.ID != "req-9" {
		t.Errorf("inner ID = %q, want req-9", msg.ID)
	}
	if !msg.IsResponse() {
		t.Error("result message should be a response")
	}
}

func TestNewResultCarriesError(t *testing.T) {
	env, err := NewResult("req-9", "abc12345", nil, "unknown command")
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	msg, err := env.DecodeMessage()
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Error != "unknown command" {
		t.Errorf("Error = %q, want unknown command", msg.Error)
	}
}

func TestNewJoin(t *testing.T) {
	env := NewJoin("abc12345")
	if env.Type != TypeJoin || env.Channel != "abc12345" {
		t.Errorf("join envelope = %+v", env)
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal join: %v", err)
	}
	want := `{"type":"join","channel":"abc12345"}`
	if string(data) != want {
		t.Errorf("join wire form = %s, want %s", data, want)
	}
}
