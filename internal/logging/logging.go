// Package logging builds the structured logger shared by the CLI, the MCP
// server and the web API.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Config selects level, format and destination.
type Config struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// ParseLevel maps a level name to a charm level. Unknown names map to info.
func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New returns a logger writing to cfg.Output, or stderr when unset.
// Stdout is reserved for command output and the MCP protocol.
func New(cfg Config) *charmlog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	logger := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           ParseLevel(cfg.Level),
		Prefix:          "flow",
	})
	if cfg.JSON {
		logger.SetFormatter(charmlog.JSONFormatter)
	} else {
		logger.SetFormatter(charmlog.TextFormatter)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}

type ctxKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) *charmlog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Discard()
}
