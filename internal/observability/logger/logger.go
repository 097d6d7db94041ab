package logger

import (
	"context"
	"fmt"
	"strings"

	"lexfirm-api/internal/observability/requestid"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerContextKey    contextKey = "logger"
	firmIDContextKey    contextKey = "firm_id"
	userIDContextKey    contextKey = "user_id"
	rootErrorContextKey contextKey = "root_err"
)

type rootErrorContainer struct {
	err error
}

// Logger wraps zap.Logger to enforce structured logging standards.
type Logger struct {
	zap         *zap.Logger
	serviceName string
}

// Field represents a structured log field.
type Field = zapcore.Field

// New creates a Logger emitting JSON with RFC3339Nano timestamps.
// level: "debug", "info", "warn", "error".
func New(serviceName string, level string) (*Logger, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("serviceName is required")
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	z = z.With(zap.String("service", serviceName))

	return &Logger{
		zap:         z,
		serviceName: serviceName,
	}, nil
}

// Module returns a field naming the component emitting the log entry.
func Module(name string) Field {
	return zap.String("module", name)
}

// Action returns a field naming the operation being performed.
func Action(name string) Field {
	return zap.String("action", name)
}

// Info logs at info level with context-derived request/firm/user ids.
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...Field) {
	contextFields := []Field{}

	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		contextFields = append(contextFields, zap.String("request_id", requestID))
	}
	if firmID := GetFirmIDFromContext(ctx); firmID != "" {
		contextFields = append(contextFields, zap.String("firm_id", firmID))
	}
	if userID := GetUserIDFromContext(ctx); userID != "" {
		contextFields = append(contextFields, zap.String("user_id", userID))
	}

	allFields := append(contextFields, sanitizeFields(fields)...)

	switch level {
	case zapcore.DebugLevel:
		l.zap.Debug(msg, allFields...)
	case zapcore.InfoLevel:
		l.zap.Info(msg, allFields...)
	case zapcore.WarnLevel:
		l.zap.Warn(msg, allFields...)
	case zapcore.ErrorLevel:
		l.zap.Error(msg, allFields...)
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// sanitizeFields redacts keys that must never reach log storage: credentials
// and direct PII (client and lawyer contact data flows through this API).
func sanitizeFields(fields []Field) []Field {
	forbiddenKeys := map[string]bool{
		"authorization": true,
		"token":         true,
		"password":      true,
		"password_hash": true,
		"secret":        true,
		"api_key":       true,
		"database_url":  true,
		"jwt":           true,
		"bearer":        true,
		"credential":    true,
		"email":         true,
		"phone":         true,
		"full_name":     true,
	}

	sanitized := make([]Field, 0, len(fields))
	for _, field := range fields {
		if forbiddenKeys[strings.ToLower(field.Key)] {
			sanitized = append(sanitized, zap.String(field.Key, "[REDACTED]"))
		} else {
			sanitized = append(sanitized, field)
		}
	}
	return sanitized
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Context value getters.

func GetRequestIDFromContext(ctx context.Context) string {
	return requestid.GetRequestID(ctx)
}

func GetFirmIDFromContext(ctx context.Context) string {
	if v := ctx.Value(firmIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func GetUserIDFromContext(ctx context.Context) string {
	if v := ctx.Value(userIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// Context value setters.

func SetFirmIDInContext(ctx context.Context, firmID string) context.Context {
	return context.WithValue(ctx, firmIDContextKey, firmID)
}

func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetLogger retrieves the logger from context, falling back to a fresh one.
func GetLogger(ctx context.Context) *Logger {
	if v := ctx.Value(loggerContextKey); v != nil {
		if l, ok := v.(*Logger); ok {
			return l
		}
	}
	l, _ := New("lexfirm-api", "info")
	return l
}

// SetLoggerInContext stores the logger in context.
func SetLoggerInContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, l)
}

// InitRootErrorContext attaches a container that downstream code can fill with
// the root cause of a 5xx response; the request logger reads it at request end.
func InitRootErrorContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, rootErrorContextKey, &rootErrorContainer{})
}

// SetRootError records the root cause error in the context container.
func SetRootError(ctx context.Context, err error) {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		container.err = err
	}
}

// GetRootError returns the recorded root cause error, if any.
func GetRootError(ctx context.Context) error {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		return container.err
	}
	return nil
}
