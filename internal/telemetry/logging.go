// Package telemetry configures structured logging and the engine's
// OpenTelemetry counters.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"goa.design/clue/log"
)

// LogConfig selects the log format and destination.
type LogConfig struct {
	// Format is "json", "terminal" or "auto" (terminal when stderr is a TTY).
	Format string `mapstructure:"format"`
	// Debug enables debug logs.
	Debug bool `mapstructure:"debug"`
	// File, when set, receives the logs instead of stderr.
	File string `mapstructure:"file"`
}

// SetupLogging returns ctx carrying a configured clue logger. The returned
// close function releases the log file, if any.
func SetupLogging(ctx context.Context, cfg LogConfig) (context.Context, func() error, error) {
	var (
		out     io.Writer = os.Stderr
		closeFn           = func() error { return nil }
		tty               = log.IsTerminal()
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return ctx, closeFn, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return ctx, closeFn, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn, tty = f, f.Close, false
	}

	format := log.FormatJSON
	switch strings.ToLower(cfg.Format) {
	case "terminal", "text":
		format = log.FormatTerminal
	case "json":
	case "", "auto":
		if tty {
			format = log.FormatTerminal
		}
	default:
		return ctx, closeFn, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(out))
	if cfg.Debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	return ctx, closeFn, nil
}
