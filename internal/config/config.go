package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseDSN        string
	ServerPort         string
	Environment        string
	LogLevel           string
	CORSOrigins        []string
	RewardThreshold    int64
	ResetInterval      time.Duration
	ResetLocation      *time.Location
	RedisAddress       string
	RedisPassword      string
	StatsNotifier      string
	ColumnKeywordsFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDSN:        os.Getenv("DB_DSN"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		StatsNotifier:      strings.ToLower(os.Getenv("STATS_NOTIFIER")),
		ColumnKeywordsFile: os.Getenv("COLUMN_KEYWORDS_FILE"),
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}

	threshold, err := strconv.ParseInt(getEnv("REWARD_THRESHOLD", "36000"), 10, 64)
	if err != nil || threshold <= 0 {
		return nil, fmt.Errorf("invalid REWARD_THRESHOLD %q", os.Getenv("REWARD_THRESHOLD"))
	}
	cfg.RewardThreshold = threshold

	interval, err := time.ParseDuration(getEnv("RESET_INTERVAL", "24h"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("invalid RESET_INTERVAL %q", os.Getenv("RESET_INTERVAL"))
	}
	cfg.ResetInterval = interval

	loc, err := time.LoadLocation(getEnv("RESET_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TIMEZONE: %w", err)
	}
	cfg.ResetLocation = loc

	if cfg.StatsNotifier == "" {
		cfg.StatsNotifier = "none"
		if cfg.RedisAddress != "" {
			cfg.StatsNotifier = "redis"
		}
	}
	switch cfg.StatsNotifier {
	case "redis":
		if cfg.RedisAddress == "" {
			return nil, errors.New("STATS_NOTIFIER=redis requires REDIS_ADDRESS")
		}
	case "outbox", "none":
	default:
		return nil, fmt.Errorf("unknown STATS_NOTIFIER %q", cfg.StatsNotifier)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
