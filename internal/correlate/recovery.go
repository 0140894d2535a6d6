package correlate

import (
	"encoding/json"

	"github.com/figrelay/figma-relay/internal/wire"
)

// Certain plugin-side async callbacks drop the request id on the floor, so
// their responses arrive uncorrelatable. RecoverID salvages those by guessing
// the originating command from the result's shape and picking the most recent
// id issued for that command. This is a documented best-effort trade-off: a
// small risk of misattribution is accepted over permanently hung callers. The
// primary id-keyed path never depends on it, so this whole file can be
// removed without breaking correlation for well-behaved responses.

// shapeFingerprint maps a set of result fields to the command that most
// plausibly produced it. Keep this table narrow: a fingerprint that matches
// too eagerly misroutes responses instead of rescuing them.
type shapeFingerprint struct {
	command string
	fields  []string
}

var fingerprints = []shapeFingerprint{
	{command: "create_rectangle", fields: []string{"id", "width", "height"}},
	{command: "create_text", fields: []string{"id", "characters"}},
	{command: "scan_text_nodes", fields: []string{"textNodes", "count"}},
	{command: "export_node_as_image", fields: []string{"imageData", "mimeType"}},
	{command: "get_selection", fields: []string{"selectionCount", "selection"}},
}

// RecoverID determines the correlation id for an inbound response message.
// It returns the explicit id when one is present; otherwise it infers the
// command from the result shape and falls back to history, finally to the
// globally most-recent id. ok is false when nothing can be recovered and the
// message must be dropped.
func RecoverID(h *History, m *wire.Message) (id string, ok bool) {
	if m.ID != "" {
		return m.ID, true
	}

	if cmd, inferred := inferCommand(m); inferred {
		if entry, found := h.Latest(cmd); found {
			return entry.ID, true
		}
	}

	if entry, found := h.LatestAny(); found {
		return entry.ID, true
	}
	return "", false
}

// inferCommand guesses the originating command type for a response without
// an id. An explicit command echo in the result wins over fingerprints.
func inferCommand(m *wire.Message) (string, bool) {
	if m.Command != "" {
		return m.Command, true
	}
	if len(m.Result) == 0 {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.Result, &fields); err != nil {
		return "", false
	}
	if echo, ok := fields["command"]; ok {
		var cmd string
		if err := json.Unmarshal(echo, &cmd); err == nil && cmd != "" {
			return cmd, true
		}
	}

	for _, fp := range fingerprints {
		if matchesAll(fields, fp.fields) {
			return fp.command, true
		}
	}
	return "", false
}

func matchesAll(fields map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}
