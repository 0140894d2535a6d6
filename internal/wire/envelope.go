// Package wire defines the JSON envelope protocol spoken between the relay,
// the Figma plugin, and this bridge.
package wire

import (
	"encoding/json"
	"fmt"
)

// EnvelopeType tags the outer wire message.
type EnvelopeType string

const (
	// TypeJoin announces a channel subscription to the relay.
	TypeJoin EnvelopeType = "join"
	// TypeMessage carries a command, a result, or a command error.
	TypeMessage EnvelopeType = "message"
	// TypeProgress carries an incremental progress report for a
	// long-running command. It never consumes a pending request.
	TypeProgress EnvelopeType = "progress_update"
	// TypeSystem carries relay control traffic such as join acks.
	TypeSystem EnvelopeType = "system"
	// TypeError carries a relay-level error. Its message field is a bare
	// string, not a Message object.
	TypeError EnvelopeType = "error"
)

// Envelope is the outer wire message. The message field is kept raw because
// its shape depends on the envelope type: an object for message/system
// envelopes, a bare string for error envelopes.
type Envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    EnvelopeType    `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Message is the inner payload of message, system, and progress envelopes.
// A message with a non-empty Command is an invocation; one with Result or
// Error set is a response correlated by ID.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsResponse reports whether the message answers an earlier command rather
// than initiating one.
func (m *Message) IsResponse() bool {
	return m.Command == "" && (m.Result != nil || m.Error != "")
}

// DecodeMessage parses the inner message object. It fails for error
// envelopes, whose message field is a string; use ErrorText for those.
func (e *Envelope) DecodeMessage() (*Message, error) {
	if len(e.Message) == 0 {
		return nil, fmt.Errorf("envelope %q has no message", e.Type)
	}
	var m Message
	if err := json.Unmarshal(e.Message, &m); err != nil {
		return nil, fmt.Errorf("parsing %s message: %w", e.Type, err)
	}
	return &m, nil
}

// ErrorText extracts the error string of a type "error" envelope.
func (e *Envelope) ErrorText() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err != nil {
		return string(e.Message)
	}
	return s
}

// NewCommand builds an outbound command envelope. The correlation id is
// duplicated on the envelope and the inner message so either layer can be
// used to match the response.
func NewCommand(id, channel, command string, params json.RawMessage) (*Envelope, error) {
	inner, err := json.Marshal(Message{ID: id, Command: command, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encoding command %s: %w", command, err)
	}
	return &Envelope{ID: id, Type: TypeMessage, Channel: channel, Message: inner}, nil
}

// NewResult builds an outbound response envelope for an inbound invocation.
// Correlation rides on the inner message id; the envelope id is left for the
// caller to assign fresh.
func NewResult(id, channel string, result json.RawMessage, cmdErr string) (*Envelope, error) {
	inner, err := json.Marshal(Message{ID: id, Result: result, Error: cmdErr})
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &Envelope{Type: TypeMessage, Channel: channel, Message: inner}, nil
}

// NewJoin builds the channel subscription envelope.
func NewJoin(channel string) *Envelope {
	return &Envelope{Type: TypeJoin, Channel: channel}
}
