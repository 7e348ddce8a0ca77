// Package observe wires logging, metrics, and tracing for quillctl.
package observe

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// File, when set, adds a rotating file output alongside stderr.
	File string
	// MaxSizeMB bounds each rotated log file. Zero means 10.
	MaxSizeMB int
	// MaxBackups bounds how many rotated files to keep. Zero means 3.
	MaxBackups int
}

// NewLogger builds the process-wide slog logger. The returned closer flushes
// and closes the rotating file writer when one is configured.
func NewLogger(opts LogOptions) (*slog.Logger, func() error) {
	var w io.Writer = os.Stderr
	closer := func() error { return nil }

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
	})
	return slog.New(handler), closer
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
