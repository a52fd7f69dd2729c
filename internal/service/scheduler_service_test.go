package service

import (
	"context"
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"01:00", "0 0 1 * * *", false},
		{"23:59", "0 59 23 * * *", false},
		{"7:05", "0 5 7 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := dailySpec(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("dailySpec(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("dailySpec(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("dailySpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntervalSpec(t *testing.T) {
	tests := []struct {
		in      time.Duration
		want    string
		wantErr bool
	}{
		{time.Minute, "@every 60s", false},
		{90 * time.Second, "@every 90s", false},
		{time.Hour, "@every 3600s", false},
		{500 * time.Millisecond, "@every 1s", false},
		{0, "", true},
		{-time.Second, "", true},
	}
	for _, tt := range tests {
		got, err := intervalSpec(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("intervalSpec(%v) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("intervalSpec(%v): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("intervalSpec(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchedulerRegistration(t *testing.T) {
	noop := func(ctx context.Context, now time.Time) error { return nil }

	s := NewScheduler(time.UTC, time.Minute)
	if err := s.RunDaily("due check", "01:00", noop); err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if err := s.RunEvery("repeat check", 5*time.Minute, noop); err != nil {
		t.Fatalf("RunEvery: %v", err)
	}
	if err := s.RunDaily("due check", "25:00", noop); err == nil {
		t.Error("RunDaily accepted an invalid time")
	}
	if err := s.RunEvery("repeat check", 0, noop); err == nil {
		t.Error("RunEvery accepted a zero interval")
	}
}
