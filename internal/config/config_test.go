package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/ledger")
	for _, k := range []string{"REWARD_THRESHOLD", "RESET_INTERVAL", "RESET_TIMEZONE", "REDIS_ADDRESS", "STATS_NOTIFIER", "CORS_ORIGINS", "SERVER_PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RewardThreshold != 36000 || cfg.ResetInterval != 24*time.Hour || cfg.ServerPort != "8080" {
		t.Fatalf("defaults got=%+v", cfg)
	}
	if cfg.StatsNotifier != "none" || cfg.ResetLocation != time.UTC {
		t.Fatalf("notifier/location got=%s/%v", cfg.StatsNotifier, cfg.ResetLocation)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSOrigins got=%v", cfg.CORSOrigins)
	}
}

func TestLoadRedisEnablesNotifier(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/ledger")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("STATS_NOTIFIER", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StatsNotifier != "redis" || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("got notifier=%s origins=%v", cfg.StatsNotifier, cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":      {"DB_DSN": ""},
		"bad threshold":    {"DB_DSN": "x", "REWARD_THRESHOLD": "lots"},
		"bad interval":     {"DB_DSN": "x", "RESET_INTERVAL": "daily"},
		"bad timezone":     {"DB_DSN": "x", "RESET_TIMEZONE": "Mars/Olympus"},
		"redis no address": {"DB_DSN": "x", "STATS_NOTIFIER": "redis", "REDIS_ADDRESS": ""},
		"unknown notifier": {"DB_DSN": "x", "STATS_NOTIFIER": "kafka"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"REWARD_THRESHOLD", "RESET_INTERVAL", "RESET_TIMEZONE", "REDIS_ADDRESS", "STATS_NOTIFIER"} {
				t.Setenv(k, "")
			}
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("Load succeeded, want error")
			}
		})
	}
}
