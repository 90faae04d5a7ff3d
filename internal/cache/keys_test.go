package cache

import (
	"testing"
	"time"
)

func TestKeyScheme(t *testing.T) {
	tests := map[string]string{
		AggregateKey(1610612739):            "aggregate:1610612739",
		StaleAggregateKey(1610612739):       "aggregate:stale:1610612739",
		InjuriesKey(1610612739, "2025-11-01"): "injuries:1610612739:2025-11-01",
		LeagueInjuriesKey("2025-11-01"):     "injuries:league:2025-11-01",
		RosterKey(7):                        "roster:7",
		GameLogKey(7):                       "gamelog:7",
		HeadToHeadKey(1, 2):                 "h2h:1:2",
		BoxScoreTopsKey("0022500001"):       "boxscore-tops:0022500001",
		BoxScoreKey("0022500001"):           "boxscore:0022500001",
		LineupsKey("0022500001", 7):         "lineups:0022500001:7",
		RecentStartersKey(7):                "recent-starters:7",
	}
	for got, want := range tests {
		if got != want {
			t.Fatalf("expected %q got %q", want, got)
		}
	}
}

func TestResource(t *testing.T) {
	if Resource("aggregate:stale:1") != "aggregate" || Resource("schedule") != "schedule" {
		t.Fatalf("unexpected resource labels")
	}
}

func TestAggregateTTL(t *testing.T) {
	if AggregateTTL(true) != 30*time.Minute || AggregateTTL(false) != 6*time.Hour {
		t.Fatalf("unexpected aggregate ttl")
	}
}
