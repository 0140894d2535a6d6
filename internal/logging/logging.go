// Package logging sets up the process logger. The MCP server owns stdio, so
// logs must never touch stdout: they go to a file under the home directory,
// falling back to stderr when the file cannot be opened.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFileName is the log file created in the user's home directory.
const DefaultFileName = ".figma-relay.log"

// New creates the process logger. With debug enabled the level drops to
// Debug, otherwise Info. The returned closer flushes and releases the log
// file; it is a no-op for the stderr fallback.
func New(debug bool) (zerolog.Logger, func() error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	path := filepath.Join(home, DefaultFileName)
	if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		w = f
		closeFn = f.Close
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	logger.Info().Time("started", time.Now()).Int("pid", os.Getpid()).Msg("logger initialized")
	return logger, closeFn
}
