package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config represents logging configuration compatible with the config package
type Config struct {
	Enabled         bool   `toml:"enabled"`
	Directory       string `toml:"directory"`
	FilenamePattern string `toml:"filename_pattern"`
	Level           string `toml:"level"`
	ConsoleOutput   bool   `toml:"console_output"`
}

// Logger wraps slog.Logger with optional file output
type Logger struct {
	*slog.Logger
	file   *os.File
	mu     sync.Mutex
	writer io.Writer
}

var (
	// Global logger instance
	globalLogger *Logger
	globalMu     sync.Mutex
)

// Initialize creates and configures the global logger instance with the given configuration
func Initialize(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}

	globalMu.Lock()
	old := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Get returns the global logger instance, creating a fallback console logger if not initialized
func Get() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		// Stderr keeps the dashboard output on stdout readable
		globalLogger = &Logger{
			Logger: slog.New(newHandler(os.Stderr, slog.LevelInfo)),
			writer: os.Stderr,
		}
	}
	return globalLogger
}

// New creates a logger with the given configuration
func New(config Config) (*Logger, error) {
	l := &Logger{}

	writers := []io.Writer{}
	if config.ConsoleOutput {
		writers = append(writers, os.Stderr)
	}

	if config.Enabled {
		dir := config.Directory
		if dir == "" {
			dir = "logs"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		fileName := filepath.Join(dir, generateLogFilename(config.FilenamePattern, time.Now()))
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		writers = append(writers, file)
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}
	l.writer = io.MultiWriter(writers...)
	l.Logger = slog.New(newHandler(l, parseLogLevel(config.Level)))

	return l, nil
}

// NewWithWriter creates a logger writing to w, used by tests to capture output
func NewWithWriter(w io.Writer, level string) *Logger {
	l := &Logger{writer: w}
	l.Logger = slog.New(newHandler(l, parseLogLevel(level)))
	return l
}

// SetGlobal replaces the global logger
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02T15:04:05.000-07:00"))
			}
			return a
		},
	})
}

// generateLogFilename creates a filename from the pattern using date formatting
func generateLogFilename(pattern string, now time.Time) string {
	if pattern == "" {
		pattern = "weatherdash-YYYYMMDD.log"
	}

	result := pattern
	result = strings.ReplaceAll(result, "YYYY", fmt.Sprintf("%04d", now.Year()))
	result = strings.ReplaceAll(result, "MM", fmt.Sprintf("%02d", now.Month()))
	result = strings.ReplaceAll(result, "DD", fmt.Sprintf("%02d", now.Day()))
	return result
}

// parseLogLevel is ParseLevel with unknown names falling back to INFO
func parseLogLevel(level string) slog.Level {
	l, _ := ParseLevel(level)
	return l
}

// Write implements io.Writer so the handler output goes through the mutex
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Write(p)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Package-level logging functions - these use the global logger

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	Get().Debug(fmt.Sprintf(format, args...))
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	Get().Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	Get().Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	Get().Error(fmt.Sprintf(format, args...))
}

// Fatal logs a fatal message and exits
func Fatal(format string, args ...interface{}) {
	Get().Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

// RedactURL masks the appid query parameter so API keys never reach the logs
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("appid") == "" {
		return raw
	}
	q.Set("appid", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

// LogAPIRequest logs the start of an API request with structured fields
func LogAPIRequest(method, rawURL string, headers map[string]string) {
	fields := []any{
		"method", method,
		"url", RedactURL(rawURL),
		"type", "api_request",
	}

	if userAgent := headers["User-Agent"]; userAgent != "" {
		fields = append(fields, "user_agent", userAgent)
	}

	Get().LogAttrs(context.Background(), slog.LevelDebug, "API request started", slog.Group("request", fields...))
}

// LogAPIResponse logs an API response with structured fields
func LogAPIResponse(method, rawURL string, statusCode int, duration string, bodySize int) {
	level := slog.LevelDebug
	if statusCode >= 400 {
		level = slog.LevelWarn
	}
	if statusCode >= 500 {
		level = slog.LevelError
	}

	Get().LogAttrs(context.Background(), level, "API request completed",
		slog.Group("request",
			"method", method,
			"url", RedactURL(rawURL),
			"status_code", statusCode,
			"duration", duration,
			"body_size", bodySize,
			"type", "api_response",
		),
	)
}

// LogOperationStart logs the beginning of an operation and returns a completion function
func LogOperationStart(operation string, details map[string]any) func(error) {
	startTime := time.Now()

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("type", "operation_start"),
	}

	if len(details) > 0 {
		detailAttrs := make([]any, 0, len(details)*2)
		for k, v := range details {
			detailAttrs = append(detailAttrs, k, v)
		}
		attrs = append(attrs, slog.Group("details", detailAttrs...))
	}

	Get().LogAttrs(context.Background(), slog.LevelDebug, "Operation started", attrs...)

	return func(err error) {
		level := slog.LevelDebug
		message := "Operation completed"

		completionAttrs := []slog.Attr{
			slog.String("operation", operation),
			slog.String("type", "operation_complete"),
			slog.Duration("duration", time.Since(startTime)),
			slog.Bool("success", err == nil),
		}

		if err != nil {
			level = slog.LevelWarn
			message = "Operation failed"
			completionAttrs = append(completionAttrs, slog.String("error", err.Error()))
		}

		Get().LogAttrs(context.Background(), level, message, completionAttrs...)
	}
}

// ParseLevel converts a configuration level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}
