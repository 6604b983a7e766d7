package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"weatherdash/internal/errorutil"
	"weatherdash/internal/logger"
)

const (
	// APIKeyEnvVar is read from the environment, then from the .env file
	APIKeyEnvVar = "OPENWEATHER_API_KEY"

	// DefaultEnvFile is looked up in the working directory
	DefaultEnvFile = ".env"
)

// APIs contains API key configurations
type APIs struct {
	OpenWeather string `toml:"openweather"`
}

// Weather contains weather query configuration
type Weather struct {
	DefaultCity    string `toml:"default_city"`    // City shown at the prompt
	Units          string `toml:"units"`           // metric or imperial
	TimeoutSeconds int    `toml:"timeout_seconds"` // Per-request HTTP timeout
	BaseURL        string `toml:"base_url"`        // OpenWeather API base URL
}

// Cache contains the in-memory memo configuration
type Cache struct {
	TTLSeconds *int `toml:"ttl_seconds"` // 0 disables memoization, unset means 600
}

// TTL returns the memo window, zero when memoization is disabled
func (c Cache) TTL() time.Duration {
	if c.TTLSeconds == nil {
		return 0
	}
	return time.Duration(*c.TTLSeconds) * time.Second
}

// Dashboard contains interactive front end settings
type Dashboard struct {
	HistorySize  int  `toml:"history_size"`  // Number of recent searches kept
	ShowForecast bool `toml:"show_forecast"` // Fetch the 5-day forecast with every lookup
}

// Logging contains logging configuration
type Logging struct {
	Enabled         bool   `toml:"enabled"`          // Enable file logging
	Directory       string `toml:"directory"`        // Log directory (relative or absolute)
	FilenamePattern string `toml:"filename_pattern"` // Log filename with date patterns
	Level           string `toml:"level"`            // Log level: debug, info, warn, error
	ConsoleOutput   bool   `toml:"console_output"`   // Also output to stderr
}

// Config represents the complete application configuration
type Config struct {
	APIs      APIs      `toml:"apis"`
	Weather   Weather   `toml:"weather"`
	Cache     Cache     `toml:"cache"`
	Dashboard Dashboard `toml:"dashboard"`
	Logging   Logging   `toml:"logging"`
}

// Default returns a configuration with every default applied, used when no
// configuration file exists
func Default() *Config {
	config := &Config{}
	config.ApplyDefaults()
	return config
}

// LoadConfig reads and parses a TOML configuration file
func LoadConfig(configPath string) (*Config, error) {
	// Clean the path to handle both Windows and Unix paths
	cleanPath := filepath.Clean(configPath)

	// Read the TOML file
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: cleanPath,
			}
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", errorutil.NewFileError("read", cleanPath, err))
	}

	// Parse TOML into Config struct
	var config Config
	err = toml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}

	// Apply default values
	config.ApplyDefaults()

	return &config, nil
}

// ApplyDefaults sets default values for optional configuration fields
func (c *Config) ApplyDefaults() {
	// Default weather settings
	if strings.TrimSpace(c.Weather.DefaultCity) == "" {
		c.Weather.DefaultCity = "New York"
	}
	if strings.TrimSpace(c.Weather.Units) == "" {
		c.Weather.Units = "metric"
	}
	if c.Weather.TimeoutSeconds <= 0 {
		c.Weather.TimeoutSeconds = 10
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		c.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	}

	// Default cache settings. An explicit 0 is kept, negatives are caught by Validate.
	if c.Cache.TTLSeconds == nil {
		ttl := 600
		c.Cache.TTLSeconds = &ttl
	}

	// Default dashboard settings
	if c.Dashboard.HistorySize <= 0 {
		c.Dashboard.HistorySize = 10
	}
	// ShowForecast defaults to false, the -forecast flag turns it on

	// Default logging settings
	if strings.TrimSpace(c.Logging.Directory) == "" {
		c.Logging.Directory = "logs"
	}
	if strings.TrimSpace(c.Logging.FilenamePattern) == "" {
		c.Logging.FilenamePattern = "weatherdash-YYYYMMDD.log"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
}

// LoggerConfig converts the logging section for logger.Initialize
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Enabled:         c.Logging.Enabled,
		Directory:       c.Logging.Directory,
		FilenamePattern: c.Logging.FilenamePattern,
		Level:           c.Logging.Level,
		ConsoleOutput:   c.Logging.ConsoleOutput,
	}
}

// ResolveAPIKey fills an empty apis.openweather from the environment or the
// env file. A key set in the TOML file always wins.
func (c *Config) ResolveAPIKey(envFile string) error {
	if strings.TrimSpace(c.APIs.OpenWeather) != "" {
		return nil
	}

	key, err := LoadAPIKey(envFile)
	if err != nil {
		return err
	}
	c.APIs.OpenWeather = key
	return nil
}

// HasAPIKey reports whether an OpenWeather key is configured
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIs.OpenWeather) != ""
}

// LoadAPIKey returns OPENWEATHER_API_KEY from the process environment, falling
// back to envFile (DefaultEnvFile when empty). A missing env file is not an
// error; the key is then empty.
func LoadAPIKey(envFile string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		return key, nil
	}

	if envFile == "" {
		envFile = DefaultEnvFile
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load env file: %w", errorutil.NewFileError("read", envFile, err))
	}

	return strings.TrimSpace(values[APIKeyEnvVar]), nil
}

// ConfigNotFoundError represents a missing configuration file
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s\n\nTo create a sample configuration file, run:\n  %s --generate-config", e.Path, filepath.Base(os.Args[0]))
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for correctness and completeness.
// The API key is optional: without one only the demo cities resolve.
func (c *Config) Validate() error {
	var errors []ValidationError

	// Validate weather settings
	if err := c.validateWeather(); err != nil {
		errors = append(errors, err...)
	}

	// Validate cache settings
	if err := c.validateCache(); err != nil {
		errors = append(errors, err...)
	}

	// Validate dashboard settings
	if err := c.validateDashboard(); err != nil {
		errors = append(errors, err...)
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}

	return nil
}

// MultiValidationError represents multiple validation errors
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	var messages []string
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// validateWeather checks weather configuration
func (c *Config) validateWeather() []ValidationError {
	var errors []ValidationError

	// Validate units
	validUnits := []string{"metric", "imperial"}
	units := strings.ToLower(strings.TrimSpace(c.Weather.Units))
	if units == "" {
		errors = append(errors, ValidationError{
			Field:   "weather.units",
			Message: "units field is required (metric or imperial)",
		})
	} else if !contains(validUnits, units) {
		errors = append(errors, ValidationError{
			Field:   "weather.units",
			Message: fmt.Sprintf("units must be one of: %s, got '%s'", strings.Join(validUnits, ", "), c.Weather.Units),
		})
	}

	if c.Weather.TimeoutSeconds < 1 || c.Weather.TimeoutSeconds > 120 {
		errors = append(errors, ValidationError{
			Field:   "weather.timeout_seconds",
			Message: fmt.Sprintf("timeout_seconds must be between 1 and 120, got %d", c.Weather.TimeoutSeconds),
		})
	}

	baseURL := strings.TrimSpace(c.Weather.BaseURL)
	if baseURL != "" && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "weather.base_url",
			Message: fmt.Sprintf("base_url must start with http:// or https://, got '%s'", c.Weather.BaseURL),
		})
	}

	return errors
}

// validateCache checks memo configuration
func (c *Config) validateCache() []ValidationError {
	var errors []ValidationError

	if ttl := c.Cache.TTLSeconds; ttl != nil && (*ttl < 0 || *ttl > 86400) {
		errors = append(errors, ValidationError{
			Field:   "cache.ttl_seconds",
			Message: fmt.Sprintf("ttl_seconds must be between 0 and 86400, got %d", *ttl),
		})
	}

	return errors
}

// validateDashboard checks front end configuration
func (c *Config) validateDashboard() []ValidationError {
	var errors []ValidationError

	if c.Dashboard.HistorySize < 1 || c.Dashboard.HistorySize > 100 {
		errors = append(errors, ValidationError{
			Field:   "dashboard.history_size",
			Message: fmt.Sprintf("history_size must be between 1 and 100, got %d", c.Dashboard.HistorySize),
		})
	}

	return errors
}

// validateLogging checks logging configuration
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if level := strings.TrimSpace(c.Logging.Level); level != "" {
		if _, err := logger.ParseLevel(level); err != nil {
			errors = append(errors, ValidationError{
				Field:   "logging.level",
				Message: fmt.Sprintf("level must be one of: debug, info, warn, error, got '%s'", c.Logging.Level),
			})
		}
	}

	// Validate directory if logging is enabled
	if c.Logging.Enabled {
		if strings.TrimSpace(c.Logging.Directory) == "" {
			errors = append(errors, ValidationError{
				Field:   "logging.directory",
				Message: "directory is required when logging is enabled",
			})
		}
		if strings.TrimSpace(c.Logging.FilenamePattern) == "" {
			errors = append(errors, ValidationError{
				Field:   "logging.filename_pattern",
				Message: "filename_pattern is required when logging is enabled",
			})
		} else if strings.ContainsAny(c.Logging.FilenamePattern, `/\`) {
			errors = append(errors, ValidationError{
				Field:   "logging.filename_pattern",
				Message: "filename_pattern must be a file name, not a path",
			})
		}
	}

	return errors
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// GenerateSampleConfig creates a sample configuration file at the specified path
func GenerateSampleConfig(configPath string) error {
	sampleConfig := `# Weatherdash Configuration File
# Terminal weather dashboard backed by OpenWeatherMap

[apis]
# Get your OpenWeather API key at: https://openweathermap.org/api
# Leave empty to read OPENWEATHER_API_KEY from the environment or a .env file.
# Without a key only the demo cities (London, New York, Tokyo) resolve.
openweather = ""

[weather]
# City looked up when you press enter at an empty prompt
default_city = "New York"

# Units: "metric" (°C, m/s) or "imperial" (°F, mph)
units = "metric"

# Per-request HTTP timeout in seconds
timeout_seconds = 10

# OpenWeather API base URL
base_url = "https://api.openweathermap.org/data/2.5"

[cache]
# Successful lookups are reused for this many seconds (0 disables)
ttl_seconds = 600

[dashboard]
# Number of recent searches kept in the session history
history_size = 10

# Fetch the 5-day forecast with every lookup
show_forecast = true

[logging]
enabled = false                            # Enable file logging
directory = "logs"                         # Log directory (relative to working dir or absolute path)
filename_pattern = "weatherdash-YYYYMMDD.log" # YYYY=year, MM=month, DD=day
level = "info"                             # Log level: debug, info, warn, error
console_output = false                     # Also log to stderr
`

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", errorutil.NewFileError("create", dir, err))
	}

	// Write sample config
	if err := os.WriteFile(configPath, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", errorutil.NewFileError("write", configPath, err))
	}

	return nil
}
