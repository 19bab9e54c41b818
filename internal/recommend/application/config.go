package application

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives the recommendation agent. Values come from env vars, with
// an optional YAML file (AGENT_CONFIG) taking precedence for the fields
// it sets.
type Config struct {
	WindowMinutes  int  `yaml:"window_minutes"`
	TickIntervalMs int  `yaml:"tick_interval_ms"`
	InitialDelayMs int  `yaml:"initial_delay_ms"`
	HistoryDays    int  `yaml:"history_days"`
	SingleFlight   bool `yaml:"single_flight"`
}

// DefaultConfig returns the stock agent settings.
func DefaultConfig() Config {
	return Config{
		WindowMinutes:  60,
		TickIntervalMs: 60000,
		InitialDelayMs: 5000,
		HistoryDays:    7,
	}
}

// LoadConfig loads agent config from env and the optional YAML file.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.WindowMinutes = getenvIntDefault("AGENT_WINDOW_MINUTES", cfg.WindowMinutes)
	cfg.TickIntervalMs = getenvIntDefault("AGENT_TICK_INTERVAL_MS", cfg.TickIntervalMs)
	cfg.InitialDelayMs = getenvIntDefault("AGENT_INITIAL_DELAY_MS", cfg.InitialDelayMs)
	cfg.HistoryDays = getenvIntDefault("FORECAST_HISTORY_DAYS", cfg.HistoryDays)
	cfg.SingleFlight = getenvBoolDefault("AGENT_SINGLE_FLIGHT", cfg.SingleFlight)

	if path := os.Getenv("AGENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// TickInterval returns the scheduler cadence.
func (c Config) TickInterval() time.Duration {
	if c.TickIntervalMs <= 0 {
		return time.Minute
	}
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// InitialDelay returns the delay before the first tick.
func (c Config) InitialDelay() time.Duration {
	if c.InitialDelayMs < 0 {
		return 0
	}
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

// EffectiveWindowMinutes clamps the lookback window to at least a minute.
func (c Config) EffectiveWindowMinutes() int {
	if c.WindowMinutes < 1 {
		return 1
	}
	return c.WindowMinutes
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
