package errorutil

import (
	"fmt"
	"log/slog"
)

// LogAndWrap logs an error with structured context and returns a wrapped error
func LogAndWrap(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) error {
	if logger == nil || err == nil {
		return err
	}

	logger.Error(operation+" failed", toAny(err, attrs)...)
	return fmt.Errorf("%s: %w", operation, err)
}

// LogWarning logs a non-fatal error as warning without wrapping
// Used for recoverable errors that should be logged but don't stop processing
func LogWarning(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) {
	if logger == nil || err == nil {
		return
	}

	logger.Warn("Non-fatal error in "+operation, toAny(err, attrs)...)
}

func toAny(err error, attrs []slog.Attr) []any {
	anyAttrs := make([]any, 0, len(attrs)+1)
	anyAttrs = append(anyAttrs, slog.String("error", err.Error()))
	for _, attr := range attrs {
		anyAttrs = append(anyAttrs, attr)
	}
	return anyAttrs
}

// QueryContext creates context attributes for weather query operations
func QueryContext(city, units string) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if city != "" {
		attrs = append(attrs, slog.String("city", city))
	}
	if units != "" {
		attrs = append(attrs, slog.String("units", units))
	}
	return attrs
}

// ConfigContext creates context attributes for configuration operations
func ConfigContext(configFile string) []slog.Attr {
	if configFile == "" {
		return nil
	}
	return []slog.Attr{slog.String("config_file", configFile)}
}
