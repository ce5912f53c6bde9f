// Package logger wraps zerolog with context-scoped request IDs so every
// log line of one request carries the same correlation id.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// LoggerKey is the context key for the request-scoped logger
	LoggerKey contextKey = "logger"
)

var (
	globalLogger zerolog.Logger
	counter      uint64
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output io.Writer
}

// InitWithFile initializes the logger with console plus rotating file output
func InitWithFile(filename, level, format string) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		panic(err)
	}

	logFile := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	Init(Config{
		Level:  level,
		Format: format,
		Output: io.MultiWriter(os.Stdout, logFile),
	})
}

// Init initializes the global logger
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "2006-01-02 15:04:05.000",
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprintf("%-7s", i))
			},
		}
	}

	globalLogger = zerolog.New(output).With().Timestamp().Caller().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GenerateRequestID mints a unique request ID
// Format: timestamp-counter-random, e.g. 20231201102830-000001-a3f2b1
func GenerateRequestID() string {
	count := atomic.AddUint64(&counter, 1)
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	return fmt.Sprintf("%s-%06d-%s",
		time.Now().Format("20060102150405"), count, hex.EncodeToString(randomBytes))
}

// WithRequestID creates a new context carrying a request-scoped logger
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return context.WithValue(ctx, LoggerKey, &logger)
}

// WithFields adds fields to the context logger
func WithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	event := FromContext(ctx).With()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	logger := event.Logger()
	return context.WithValue(ctx, LoggerKey, &logger)
}

// FromContext extracts the logger from context, falling back to the
// global logger
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if logger, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return &globalLogger
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// Debug logs a debug message
func Debug(ctx context.Context) *zerolog.Event { return FromContext(ctx).Debug() }

// Info logs an info message
func Info(ctx context.Context) *zerolog.Event { return FromContext(ctx).Info() }

// Warn logs a warning message
func Warn(ctx context.Context) *zerolog.Event { return FromContext(ctx).Warn() }

// Error logs an error message
func Error(ctx context.Context) *zerolog.Event { return FromContext(ctx).Error() }

// InfoGlobal logs an info message without context
func InfoGlobal() *zerolog.Event { return globalLogger.Info() }

// ErrorGlobal logs an error message without context
func ErrorGlobal() *zerolog.Event { return globalLogger.Error() }

// FatalGlobal logs a fatal message and exits
func FatalGlobal() *zerolog.Event { return globalLogger.Fatal() }
