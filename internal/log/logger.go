package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a component. The component is attached
// once, so records never carry it twice.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

// Config holds logger configuration. Output defaults to stdout.
type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp}
}

// NewWithLevel creates a text logger on stdout for a component
func NewWithLevel(level slog.Level, component string) *Logger {
	return New(Config{Level: level, Component: component})
}

func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: config.Level})
	component := config.Component
	if component == "" {
		component = ComponentApp
	}
	return bind(slog.New(handler), component)
}

func bind(base *slog.Logger, component string) *Logger {
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return bind(l.base.With(args...), l.component)
}

// WithComponent returns the same logger under another component name.
func (l *Logger) WithComponent(component string) *Logger {
	return bind(l.base, component)
}

// Unbound returns the underlying logger without the component attribute,
// for callers that set the component field themselves.
func (l *Logger) Unbound() *slog.Logger {
	return l.base
}

// SetDefault makes logger the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
