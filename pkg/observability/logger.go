// Package observability provides structured logging and health checks for
// overland.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every log record.
const ServiceName = "overland"

// LogFormat specifies the output format for logs.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogConfig configures the logger.
type LogConfig struct {
	Level     slog.Level
	Format    LogFormat
	Output    io.Writer // defaults to os.Stderr
	AddSource bool
	Version   string
}

// LogConfigFor builds a LogConfig from application settings. Production
// defaults to JSON with source locations; anything else to text. An
// unparseable level falls back to info.
func LogConfigFor(appEnv, level, format, version string) LogConfig {
	cfg := LogConfig{
		Level:   slog.LevelInfo,
		Format:  LogFormatText,
		Output:  os.Stderr,
		Version: version,
	}
	if appEnv == "production" {
		cfg.Format = LogFormatJSON
		cfg.AddSource = true
	}
	if lvl, err := ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	if format != "" {
		cfg.Format = LogFormat(strings.ToLower(format))
	}
	return cfg
}

// ParseLevel accepts slog level names ("debug", "WARN", "info+2").
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.TrimSpace(s)))
	return lvl, err
}

// NewLogger creates a structured logger that tags records with the service,
// its version and the correlation id found in the record's context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	attrs := []slog.Attr{slog.String("service", ServiceName)}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	return slog.New(correlationHandler{handler.WithAttrs(attrs)})
}

// correlationHandler adds the context's correlation id to each record.
type correlationHandler struct {
	slog.Handler
}

func (h correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := CorrelationIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String(CorrelationIDKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return correlationHandler{h.Handler.WithAttrs(attrs)}
}

func (h correlationHandler) WithGroup(name string) slog.Handler {
	return correlationHandler{h.Handler.WithGroup(name)}
}
