// Package logging sets up the server's structured JSON log, the one
// place the editor process is allowed to write to stdout/stderr's
// stand-in: a file under the session directory. The client process
// never logs; it is a thin byte relay.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the server logger.
type Options struct {
	Level   string // "debug", "info", "warn", "error"
	LogPath string // file to append JSON lines to; "" disables file output
}

// New builds a slog.Logger writing one JSON object per line to opts.LogPath
// (created if absent), falling back to io.Discard if no path is given so a
// misconfigured server never blocks on a write nobody reads.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)

	var w io.Writer = io.Discard
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
