package logger

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoggerInitialization tests the initialization of the global logger
func TestLoggerInitialization(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name: "console-only config",
			config: Config{
				Enabled:       false,
				ConsoleOutput: true,
				Level:         "info",
			},
		},
		{
			name: "file logging config",
			config: Config{
				Enabled:         true,
				Directory:       t.TempDir(),
				FilenamePattern: "test-YYYYMMDD.log",
				Level:           "debug",
			},
		},
		{
			name: "invalid log level defaults to info",
			config: Config{
				ConsoleOutput: true,
				Level:         "invalid-level",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Initialize(tt.config)
			if (err != nil) != tt.wantError {
				t.Errorf("Initialize() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
	SetGlobal(nil)
}

// TestLogLevels tests that log levels are properly filtered
func TestLogLevels(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		Enabled:         true,
		Directory:       tmpDir,
		FilenamePattern: "test.log",
		Level:           "warn",
	}

	if err := Initialize(config); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	defer SetGlobal(nil)

	Debug("This debug message should not appear")
	Info("This info message should not appear")
	Warn("This warning should appear")
	Error("This error should appear")

	content, err := os.ReadFile(filepath.Join(tmpDir, "test.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	if strings.Contains(logContent, "debug message") {
		t.Error("Debug message appeared when log level was warn")
	}
	if strings.Contains(logContent, "info message") {
		t.Error("Info message appeared when log level was warn")
	}
	if !strings.Contains(logContent, "warning should appear") {
		t.Error("Warning message did not appear")
	}
	if !strings.Contains(logContent, "error should appear") {
		t.Error("Error message did not appear")
	}
}

// TestFilenamePatternGeneration tests the date pattern replacement
func TestFilenamePatternGeneration(t *testing.T) {
	now := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		pattern  string
		expected string
	}{
		{"test-YYYYMMDD.log", "test-20240307.log"},
		{"app-YYYY-MM-DD.log", "app-2024-03-07.log"},
		{"", "weatherdash-20240307.log"},
		{"static.log", "static.log"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result := generateLogFilename(tt.pattern, now)
			if result != tt.expected {
				t.Errorf("generateLogFilename(%q) = %s, want %s", tt.pattern, result, tt.expected)
			}
		})
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{
			name:     "appid masked",
			input:    "https://api.openweathermap.org/data/2.5/weather?appid=secret123&q=London&units=metric",
			contains: "appid=REDACTED",
			absent:   "secret123",
		},
		{
			name:     "no appid untouched",
			input:    "https://api.openweathermap.org/data/2.5/weather?q=London",
			contains: "q=London",
			absent:   "REDACTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RedactURL(tt.input)
			if !strings.Contains(result, tt.contains) {
				t.Errorf("RedactURL() = %s, expected to contain %s", result, tt.contains)
			}
			if strings.Contains(result, tt.absent) {
				t.Errorf("RedactURL() = %s, expected not to contain %s", result, tt.absent)
			}
		})
	}
}

// TestStructuredLogging tests the structured logging helpers
func TestStructuredLogging(t *testing.T) {
	var out strings.Builder
	SetGlobal(NewWithWriter(&out, "debug"))
	defer SetGlobal(nil)

	LogAPIRequest("GET", "https://example.test/weather?appid=k3y&q=Paris", map[string]string{"User-Agent": "Weatherdash/1.0"})
	LogAPIResponse("GET", "https://example.test/weather?appid=k3y&q=Paris", 404, "12ms", 40)

	complete := LogOperationStart("fetch_current", map[string]any{"city": "Paris"})
	complete(errors.New("boom"))

	logStr := out.String()
	for _, expected := range []string{
		"API request started",
		"user_agent=Weatherdash/1.0",
		"status_code=404",
		"level=WARN",
		"operation=fetch_current",
		"details.city=Paris",
		"Operation failed",
		"error=boom",
	} {
		if !strings.Contains(logStr, expected) {
			t.Errorf("Log output missing %q:\n%s", expected, logStr)
		}
	}
	if strings.Contains(logStr, "k3y") {
		t.Error("API key leaked into log output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"fatal", slog.LevelInfo, true},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
