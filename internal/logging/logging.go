// Package logging provides the structured logger used across the service.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// TraceIDKey carries the per-request trace identifier.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey carries the authenticated account id, if any.
	UserIDKey contextKey = "user_id"
	// RoleKey carries the resolved role of the caller.
	RoleKey contextKey = "role"
)

// Logger wraps logrus with context-aware field extraction.
type Logger struct {
	entry *logrus.Entry
}

// New creates a named logger writing JSON to stdout. Level is read from
// LOG_LEVEL (debug, info, warn, error); default info.
func New(component string) *Logger {
	return NewWithOutput(component, os.Stdout)
}

// NewWithOutput creates a named logger writing to the given sink.
func NewWithOutput(component string, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{entry: base.WithField("component", component)}
}

// WithContext attaches trace id, user id and role from the context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry
	if ctx != nil {
		if traceID := GetTraceID(ctx); traceID != "" {
			entry = entry.WithField("trace_id", traceID)
		}
		if userID := GetUserID(ctx); userID != "" {
			entry = entry.WithField("user_id", userID)
		}
		if role := GetRole(ctx); role != "" {
			entry = entry.WithField("role", role)
		}
	}
	return &Logger{entry: entry}
}

// WithField returns a logger with one extra structured field.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with multiple extra fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError attaches an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...any) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...any)  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...any) { l.entry.Error(args...) }

// LogRequest emits the standard access-log line.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).WithFields(map[string]any{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("http request")
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string { return uuid.NewString() }

// WithTraceID stores a trace id on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace id, or "".
func GetTraceID(ctx context.Context) string { return stringValue(ctx, TraceIDKey) }

// GetUserID extracts the authenticated account id, or "".
func GetUserID(ctx context.Context) string { return stringValue(ctx, UserIDKey) }

// GetRole extracts the caller role, or "".
func GetRole(ctx context.Context) string { return stringValue(ctx, RoleKey) }

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
