// Package daemon manages the cfdaily daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Judge     JudgeConfig     `toml:"judge"`
	Problems  ProblemsConfig  `toml:"problems"`
	Streak    StreakConfig    `toml:"streak"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// JudgeConfig controls the judge API client.
type JudgeConfig struct {
	BaseURL          string `toml:"base_url"`
	Timeout          string `toml:"timeout"`
	RetryAttempts    int    `toml:"retry_attempts"`
	SubmissionWindow int    `toml:"submission_window"` // recent submissions inspected per check
}

// ProblemsConfig controls the rating brackets for the daily picks.
type ProblemsConfig struct {
	MinRating     int `toml:"min_rating"`
	MaxRating     int `toml:"max_rating"`
	BufferLow     int `toml:"buffer_low"`
	BufferHigh    int `toml:"buffer_high"`
	DefaultRating int `toml:"default_rating"`
}

// StreakConfig controls streak derivation and the check schedule.
type StreakConfig struct {
	CheckTimes  []string `toml:"check_times"` // "HH:MM", UTC
	WalkCeiling int      `toml:"walk_ceiling"`
}

// TelemetryConfig controls optional observability surfaces.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := cfdailyHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8642,
		},
		Judge: JudgeConfig{
			BaseURL:          "https://codeforces.com/api",
			Timeout:          "10s",
			RetryAttempts:    3,
			SubmissionWindow: 100,
		},
		Problems: ProblemsConfig{
			MinRating:     800,
			MaxRating:     3500,
			BufferLow:     100,
			BufferHigh:    300,
			DefaultRating: 1200,
		},
		Streak: StreakConfig{
			CheckTimes:  []string{"00:00", "12:00"},
			WalkCeiling: 365,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "cfdaily.log"),
		},
	}
}

// LoadConfig reads config from ~/.cfdaily/config.toml, falling back to
// defaults when no file exists yet.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(cfdailyHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.cfdaily/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(cfdailyHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// cfdailyHome returns the cfdaily data directory.
func cfdailyHome() string {
	if env := os.Getenv("CFDAILY_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cfdaily")
}

// Home is exported for use by other packages.
func Home() string {
	return cfdailyHome()
}
