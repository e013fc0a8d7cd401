package config

import (
	"os"
	"strconv"
	"time"

	"datadash/internal/errors"
)

const defaultIntro = `Preview a tabular file from a GitHub repository, or upload your own
CSV, JSON, XML or Excel file. Pick two columns to plot one against the other.`

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Chart   ChartConfig
	Session SessionConfig
	Remote  RemoteConfig
	Intro   string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// DataConfig holds the dashboard's default inputs and preview size
type DataConfig struct {
	DefaultRepoURL  string
	DefaultFilePath string
	PreviewRows     int
}

// ChartConfig holds chart image dimensions
type ChartConfig struct {
	Width  int
	Height int
}

// SessionConfig holds dashboard session settings
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// RemoteConfig holds remote fetch settings. A zero timeout means requests
// are not bounded.
type RemoteConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  loadServerConfig(),
		Data:    loadDataConfig(),
		Chart:   loadChartConfig(),
		Session: loadSessionConfig(),
		Remote:  RemoteConfig{Timeout: getEnvDurationOrDefault("REMOTE_TIMEOUT", 0)},
		Intro:   getEnvOrDefault("DASHBOARD_INTRO", defaultIntro),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) << 20,
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		DefaultRepoURL:  getEnvOrDefault("DEFAULT_REPO_URL", "https://github.com/your-username/your-repo"),
		DefaultFilePath: getEnvOrDefault("DEFAULT_FILE_PATH", "data/your-data.csv"),
		PreviewRows:     getEnvIntOrDefault("PREVIEW_ROWS", 100),
	}
}

func loadChartConfig() ChartConfig {
	return ChartConfig{
		Width:  getEnvIntOrDefault("CHART_WIDTH", 960),
		Height: getEnvIntOrDefault("CHART_HEIGHT", 420),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:           getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 10*time.Minute),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Data.PreviewRows <= 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be positive")
	}
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return errors.ConfigInvalid("CHART_WIDTH and CHART_HEIGHT must be positive")
	}
	if config.Session.TTL < 0 {
		return errors.ConfigInvalid("SESSION_TTL must not be negative")
	}
	if config.Session.SweepInterval <= 0 {
		return errors.ConfigInvalid("SESSION_SWEEP_INTERVAL must be positive")
	}
	if config.Remote.Timeout < 0 {
		return errors.ConfigInvalid("REMOTE_TIMEOUT must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
