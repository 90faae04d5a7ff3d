package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Upstream.ScheduleURL != defaultScheduleURL {
		t.Fatalf("expected default schedule url, got %s", cfg.Upstream.ScheduleURL)
	}
	if cfg.Upstream.Timeout != defaultUpstreamTimeout {
		t.Fatalf("expected default upstream timeout %s, got %s", defaultUpstreamTimeout, cfg.Upstream.Timeout)
	}
	if cfg.NextGame.DefaultTeamID != defaultTeamID {
		t.Fatalf("expected default team %d, got %d", defaultTeamID, cfg.NextGame.DefaultTeamID)
	}
	if cfg.NextGame.LineupOrder != "position" {
		t.Fatalf("expected position lineup order by default, got %s", cfg.NextGame.LineupOrder)
	}
	if cfg.Cache.RedisURL != "" {
		t.Fatalf("expected memory cache by default, got redis url %s", cfg.Cache.RedisURL)
	}
	if !cfg.Refresh.Enabled || cfg.Refresh.Schedule != defaultRefreshSchedule {
		t.Fatalf("unexpected refresh defaults %+v", cfg.Refresh)
	}
	if cfg.Admin.Token != "" || cfg.Admin.CronSecret != "" {
		t.Fatalf("expected empty admin secrets by default, got %+v", cfg.Admin)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "5000")
	t.Setenv(envRedisURL, "redis://localhost:6379/0")
	t.Setenv(envStatsBaseURL, "http://stats.example.com")
	t.Setenv(envUpstreamTimeout, "3s")
	t.Setenv(envUpstreamRPS, "0.5")
	t.Setenv(envDefaultTeam, "1610612747")
	t.Setenv(envLineupOrder, "Minutes")
	t.Setenv(envAdminToken, "admin-secret")
	t.Setenv(envCronSecret, "cron-secret")
	t.Setenv(envRefreshEnabled, "false")

	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("expected redis url override, got %s", cfg.Cache.RedisURL)
	}
	if cfg.Upstream.StatsBaseURL != "http://stats.example.com" {
		t.Fatalf("expected stats base url override, got %s", cfg.Upstream.StatsBaseURL)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Fatalf("expected 3s upstream timeout, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.RequestsPerSec != 0.5 {
		t.Fatalf("expected 0.5 rps, got %v", cfg.Upstream.RequestsPerSec)
	}
	if cfg.NextGame.DefaultTeamID != 1610612747 {
		t.Fatalf("expected team override, got %d", cfg.NextGame.DefaultTeamID)
	}
	if cfg.NextGame.LineupOrder != "minutes" {
		t.Fatalf("expected minutes lineup order, got %s", cfg.NextGame.LineupOrder)
	}
	if cfg.Admin.Token != "admin-secret" || cfg.Admin.CronSecret != "cron-secret" {
		t.Fatalf("expected admin secrets override, got %+v", cfg.Admin)
	}
	if cfg.Refresh.Enabled {
		t.Fatal("expected refresh disabled")
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv(envAggregateTimeout, "not-a-duration")
	cfg := Load()
	if cfg.NextGame.AggregateTimeout != defaultAggregateTimeout {
		t.Fatalf("expected default aggregate timeout on invalid value, got %s", cfg.NextGame.AggregateTimeout)
	}
}

func TestLoadUnknownLineupOrderFallsBack(t *testing.T) {
	t.Setenv(envLineupOrder, "alphabetical")
	cfg := Load()
	if cfg.NextGame.LineupOrder != defaultLineupOrder {
		t.Fatalf("expected default lineup order, got %s", cfg.NextGame.LineupOrder)
	}
}
