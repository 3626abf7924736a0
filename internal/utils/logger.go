package utils

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the application logger: slog with a component tag
type Logger struct {
	*slog.Logger
	root      *slog.Logger
	component string
}

// LoggerConfig selects level, output format and destination
type LoggerConfig struct {
	Level     string
	Format    string // "text" or "json"
	Component string
	Output    io.Writer
}

// NewLogger creates a new logger
func NewLogger(cfg LoggerConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	component := cfg.Component
	if component == "" {
		component = "app"
	}
	root := slog.New(handler)
	return &Logger{
		Logger:    root.With("component", component),
		root:      root,
		component: component,
	}
}

// NopLogger discards everything; used by tests
func NopLogger() *Logger {
	return NewLogger(LoggerConfig{Output: io.Discard})
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// WithComponent returns a child logger tagged with another component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.root.With("component", component),
		root:      l.root,
		component: component,
	}
}

// With returns a child logger carrying the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		root:      l.root.With(args...),
		component: l.component,
	}
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}

// LogError logs err at error level unless the context was cancelled
func (l *Logger) LogError(ctx context.Context, msg string, err error, args ...any) {
	if ctx.Err() != nil {
		l.WarnContext(ctx, msg, append(args, "error", err, "cancelled", true)...)
		return
	}
	l.ErrorContext(ctx, msg, append(args, "error", err)...)
}

// SetDefault installs the logger as the process default
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
