package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the server and the scheduled jobs.
type Config struct {
	ListenAddr  string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	// Daily HH:MM trigger times for the two independent jobs. When
	// JobEvery is set both jobs run at that cadence instead, which is
	// handy for local development.
	DueCheckAt    string
	RepeatCheckAt string
	JobEvery      time.Duration
	JobTimeout    time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:    strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:      parseHours(strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS"))),
		DueCheckAt:    strings.TrimSpace(os.Getenv("DUE_CHECK_AT")),
		RepeatCheckAt: strings.TrimSpace(os.Getenv("REPEAT_CHECK_AT")),
		JobEvery:      parseDuration(strings.TrimSpace(os.Getenv("JOB_INTERVAL"))),
		JobTimeout:    parseMinutes(strings.TrimSpace(os.Getenv("JOB_TIMEOUT_MINUTES"))),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskboard.db"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.DueCheckAt == "" {
		cfg.DueCheckAt = "01:00"
	}
	if cfg.RepeatCheckAt == "" {
		cfg.RepeatCheckAt = "02:00"
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 10 * time.Minute
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "h")
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "m")
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
