package correlate

import "fmt"

// TimeoutError rejects a pending request that outlived its deadline. The
// caller may safely retry the whole command.
type TimeoutError struct {
	ID      string
	Seconds float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out after %.0fs", e.ID, e.Seconds)
}

// ConnectionLostError rejects every request that was in flight when the
// transport dropped.
type ConnectionLostError struct {
	Reason string
}

func (e *ConnectionLostError) Error() string {
	if e.Reason == "" {
		return "connection lost before response arrived"
	}
	return "connection lost before response arrived: " + e.Reason
}

// CommandError wraps the error field of a response envelope: the document
// engine executed the command and reported failure.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	if e.Command == "" {
		return "command failed: " + e.Message
	}
	return fmt.Sprintf("command %s failed: %s", e.Command, e.Message)
}
