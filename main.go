package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"weatherdash/api"
	"weatherdash/config"
	"weatherdash/internal/dashboard"
	"weatherdash/internal/errorutil"
	"weatherdash/internal/logger"
)

func main() {
	os.Exit(run())
}

// run wires the dashboard and returns the process exit code
func run() int {
	// Define command-line flags
	configPath := flag.String("config", getDefaultConfigPath(), "Path to TOML configuration file")
	envFile := flag.String("env-file", config.DefaultEnvFile, "Env file consulted for OPENWEATHER_API_KEY")
	city := flag.String("city", "", "Look up one city and exit")
	units := flag.String("units", "", "Units: metric or imperial (overrides the config file)")
	forecast := flag.Bool("forecast", false, "Also show the 5-day forecast")
	logLevel := flag.String("log-level", "", "Logging level (debug, info, warn, error)")
	generateConfig := flag.Bool("generate-config", false, "Generate a sample configuration file and exit")
	flag.Parse()

	// Handle config generation
	if *generateConfig {
		if err := config.GenerateSampleConfig(*configPath); err != nil {
			exitOnError("generate sample config", err, *configPath)
		}
		logger.Info("Sample configuration file created at: %s", *configPath)
		logger.Info("Add your OpenWeather API key or set %s", config.APIKeyEnvVar)
		return 0
	}

	cfg := loadConfig(*configPath)

	// Flags override the file
	if *units != "" {
		cfg.Weather.Units = *units
	}
	if *logLevel != "" {
		if _, err := logger.ParseLevel(*logLevel); err != nil {
			logger.Warn("Invalid log level: %s, using %s", *logLevel, cfg.Logging.Level)
		} else {
			cfg.Logging.Level = *logLevel
		}
	}
	if *forecast {
		cfg.Dashboard.ShowForecast = true
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Configuration validation failed: %v", err)
	}

	if err := logger.Initialize(cfg.LoggerConfig()); err != nil {
		logger.Fatal("Failed to initialize logging: %v", err)
	}
	defer logger.Get().Close()

	if err := cfg.ResolveAPIKey(*envFile); err != nil {
		var fileErr *errorutil.FileError
		if errors.As(err, &fileErr) && fileErr.IsPermission() {
			logger.Warn("Permission denied reading %s, check the file mode", fileErr.Path)
		} else {
			logger.Warn("Could not read API key: %v", err)
		}
	}
	if !cfg.HasAPIKey() {
		logger.Warn("No %s found. Only the demo cities will resolve: %s",
			config.APIKeyEnvVar, strings.Join(api.DemoCities(), ", "))
	}

	sessionUnits, err := api.ParseUnits(cfg.Weather.Units)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	client := api.NewWeatherClient()
	client.SetBaseURL(cfg.Weather.BaseURL)
	client.SetTimeout(time.Duration(cfg.Weather.TimeoutSeconds) * time.Second)

	memo := api.NewMemo(client, cfg.Cache.TTL())
	dash := dashboard.New(memo, cfg.APIs.OpenWeather)

	session := dashboard.NewSession(sessionUnits, cfg.Dashboard.HistorySize)
	session.ShowForecast = cfg.Dashboard.ShowForecast

	logger.Debug("Session %s: units=%s, forecast=%v, memo_ttl=%s",
		session.ID, session.Units, session.ShowForecast, cfg.Cache.TTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One-shot mode
	if *city != "" {
		return runOnce(ctx, dash, session, *city, os.Stdout, os.Stderr)
	}

	fmt.Println("Weatherdash - current conditions and forecasts from OpenWeatherMap")
	fmt.Println("Type :help for commands")

	shell := dashboard.NewShell(dash, session, os.Stdout, cfg.Weather.DefaultCity)
	shell.SetPurger(memo)
	if err := shell.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Dashboard stopped: %v", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration file, falling back to defaults when the
// file does not exist
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		logger.Debug("Configuration loaded from: %s", path)
		return cfg
	}

	var configNotFound *config.ConfigNotFoundError
	if errors.As(err, &configNotFound) {
		logger.Debug("No configuration file at %s, using defaults", configNotFound.Path)
		return config.Default()
	}

	exitOnError("load configuration", err, path)
	return nil
}

// exitOnError logs err with the config file as context and exits
func exitOnError(operation string, err error, configFile string) {
	errorutil.LogAndWrap(logger.Get().Logger, operation, err, errorutil.ConfigContext(configFile)...)
	os.Exit(1)
}

// runOnce looks up a single city and returns the process exit code
func runOnce(ctx context.Context, dash *dashboard.Dashboard, session *dashboard.Session, city string, out, errOut io.Writer) int {
	view, err := dash.Lookup(ctx, session, city)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 2
	}

	fmt.Fprint(out, dashboard.RenderView(view))
	if !view.Current.IsOk() {
		return 1
	}
	return 0
}

// getDefaultConfigPath returns a cross-platform default config path
func getDefaultConfigPath() string {
	// Try to use config.toml in the current directory
	return filepath.Clean("config.toml")
}
