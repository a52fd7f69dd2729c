package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("DUE_CHECK_AT", "")
	t.Setenv("REPEAT_CHECK_AT", "")
	t.Setenv("JOB_INTERVAL", "")
	t.Setenv("JOB_TIMEOUT_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DatabaseURL != "taskboard.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
	if cfg.DueCheckAt != "01:00" || cfg.RepeatCheckAt != "02:00" {
		t.Errorf("trigger times = %q / %q", cfg.DueCheckAt, cfg.RepeatCheckAt)
	}
	if cfg.JobEvery != 0 {
		t.Errorf("JobEvery = %s, want 0", cfg.JobEvery)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing JWT_SECRET accepted")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("DUE_CHECK_AT", "05:30")
	t.Setenv("JOB_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %s, want 2h", cfg.TokenTTL)
	}
	if cfg.DueCheckAt != "05:30" {
		t.Errorf("DueCheckAt = %q", cfg.DueCheckAt)
	}
	if cfg.JobEvery != 15*time.Minute {
		t.Errorf("JobEvery = %s, want 15m", cfg.JobEvery)
	}
}
