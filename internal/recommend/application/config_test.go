package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WindowMinutes != 60 || cfg.TickIntervalMs != 60000 || cfg.InitialDelayMs != 5000 || cfg.HistoryDays != 7 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SingleFlight {
		t.Fatal("single flight must default off")
	}
	if cfg.TickInterval() != time.Minute {
		t.Fatalf("tick interval = %v", cfg.TickInterval())
	}
	if cfg.InitialDelay() != 5*time.Second {
		t.Fatalf("initial delay = %v", cfg.InitialDelay())
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AGENT_WINDOW_MINUTES", "30")
	t.Setenv("AGENT_TICK_INTERVAL_MS", "15000")
	t.Setenv("AGENT_SINGLE_FLIGHT", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WindowMinutes != 30 || cfg.TickIntervalMs != 15000 || !cfg.SingleFlight {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadConfigYAMLOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	data := []byte("window_minutes: 120\nhistory_days: 14\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("AGENT_WINDOW_MINUTES", "30")
	t.Setenv("AGENT_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WindowMinutes != 120 || cfg.HistoryDays != 14 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
}

func TestEffectiveWindowMinutesClamp(t *testing.T) {
	cfg := Config{WindowMinutes: -5}
	if cfg.EffectiveWindowMinutes() != 1 {
		t.Fatalf("got %d, want 1", cfg.EffectiveWindowMinutes())
	}
	cfg.WindowMinutes = 45
	if cfg.EffectiveWindowMinutes() != 45 {
		t.Fatalf("got %d, want 45", cfg.EffectiveWindowMinutes())
	}
}
