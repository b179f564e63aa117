package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is an interface for logging
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// ZeroLogger implements Logger using zerolog
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a new ZeroLogger writing to stdout
func New() *ZeroLogger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()
	return &ZeroLogger{logger: logger}
}

// WithLevel creates a new ZeroLogger with the specified level
func WithLevel(level string) func(*ZeroLogger) {
	return func(l *ZeroLogger) {
		switch level {
		case "debug":
			l.logger = l.logger.Level(zerolog.DebugLevel)
		case "info":
			l.logger = l.logger.Level(zerolog.InfoLevel)
		case "warn":
			l.logger = l.logger.Level(zerolog.WarnLevel)
		case "error":
			l.logger = l.logger.Level(zerolog.ErrorLevel)
		default:
			l.logger = l.logger.Level(zerolog.InfoLevel)
		}
	}
}

// emit attaches context identifiers and fields to the event
func emit(ctx context.Context, event *zerolog.Event, msg string, fields map[string]interface{}) {
	if traceID, ok := ctx.Value("trace_id").(string); ok {
		event = event.Str("trace_id", traceID)
	}
	if orgID, ok := ctx.Value("org_id").(string); ok {
		event = event.Str("org_id", orgID)
	}

	for k, v := range fields {
		event = event.Interface(k, v)
	}

	event.Msg(msg)
}

// Info logs an info message
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(ctx, l.logger.Info(), msg, fields)
}

// Warn logs a warning message
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(ctx, l.logger.Warn(), msg, fields)
}

// Error logs an error message
func (l *ZeroLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(ctx, l.logger.Error(), msg, fields)
}

// Debug logs a debug message
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(ctx, l.logger.Debug(), msg, fields)
}

// NoopLogger discards everything. It is the default sink so that
// constructing an engine has no logging side effects unless a logger is
// injected.
type NoopLogger struct{}

// Noop returns a logger that discards all messages
func Noop() *NoopLogger {
	return &NoopLogger{}
}

// Info discards the message
func (l *NoopLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {}

// Warn discards the message
func (l *NoopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {}

// Error discards the message
func (l *NoopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

// Debug discards the message
func (l *NoopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
