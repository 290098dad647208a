// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	GlobalLogger = NewLogger(os.Stdout, slog.LevelInfo)
}

// NewLogger builds a JSON logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	CorrelationID LogContextKey = "correlation_id"
)

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// CounterLogger provides structured logging for unread counter mutations.
type CounterLogger struct {
	counter string
	logger  *Logger
}

// NewCounterLogger creates a CounterLogger for the named counter.
func NewCounterLogger(counter string) *CounterLogger {
	return &CounterLogger{
		counter: counter,
		logger:  GlobalLogger,
	}
}

// LogClamp logs a rejected negative value that was clamped to zero.
func (l *CounterLogger) LogClamp(requested int) {
	l.logger.Warn("negative unread count clamped to zero",
		slog.String("counter", l.counter),
		slog.Int("requested", requested),
	)
}

// LogChange logs a counter transition at debug level.
func (l *CounterLogger) LogChange(operation string, from, to int) {
	l.logger.Debug("unread counter changed",
		slog.String("counter", l.counter),
		slog.String("operation", operation),
		slog.Int("from", from),
		slog.Int("to", to),
	)
}

// LogGuardAmbiguity records a message that satisfied more than one variant guard.
func LogGuardAmbiguity(ctx context.Context, err error, resolved string) {
	GuardAmbiguities.WithLabelValues(resolved).Inc()
	GlobalLogger.WarnContext(ctx, "ambiguous chat message variant",
		slog.String("resolved", resolved),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogServiceCall logs a service method call.
func LogServiceCall(ctx context.Context, service, method string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("service", service),
		slog.String("method", method),
		slog.String("type", "service_call"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.InfoContext(ctx, "service call", attrs...)
}

// LogServiceError logs a failed service method call.
func LogServiceError(ctx context.Context, service, method string, err error) {
	GlobalLogger.ErrorContext(ctx, "service error",
		slog.String("service", service),
		slog.String("method", method),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
