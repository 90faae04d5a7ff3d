package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
	"github.com/preston-bernstein/nba-next-game-service/internal/teststubs"
)

const (
	cavs    = 1610612739
	celtics = 1610612738
)

const rosterBody = `{"resultSets":[
 {"name":"CommonTeamRoster","headers":["TeamID","PLAYER","NUM","POSITION","PLAYER_ID"],
  "rowSet":[[1610612739,"Donovan Mitchell","45","G",1628378],
            [1610612739,"Evan Mobley","4","F-C",1630596],
            [1610612739,"",null,"",0]]},
 {"name":"Coaches","headers":["COACH_NAME"],"rowSet":[["Kenny Atkinson"]]}]}`

const gameLogBody = `{"resultSets":[{"name":"TeamGameLog",
 "headers":["Team_ID","Game_ID","GAME_DATE","MATCHUP","WL","PTS"],
 "rowSet":[["1610612739","0022500100","NOV 02, 2025","CLE vs. BOS","W",120],
           ["1610612739","0022500050","OCT 28, 2025","CLE @ NYK","L",99]]}]}`

func newSource(t *testing.T, up *testutil.Upstream, now time.Time) (*Source, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	src := NewSource(teststubs.Client(providers.UpstreamStats, up), "https://stats.test/stats/", store, nil)
	src.now = testutil.NowAt(now)
	return src, store
}

func TestFetchRosterParsesAndCaches(t *testing.T) {
	up := testutil.NewUpstream(testutil.Route{Match: "/commonteamroster", Body: rosterBody})
	src, _ := newSource(t, up, time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC))

	players, err := src.FetchRoster(context.Background(), cavs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	if players[0].FirstName != "Donovan" || players[0].LastName != "Mitchell" || players[0].JerseyNumber != "45" {
		t.Fatalf("unexpected first player %+v", players[0])
	}
	if _, err := src.FetchRoster(context.Background(), cavs); err != nil {
		t.Fatalf("unexpected error on cached read: %v", err)
	}
	if up.Hits("/commonteamroster") != 1 {
		t.Fatalf("expected cached second read, got %d hits", up.Hits("/commonteamroster"))
	}
}

func TestFetchRosterSendsSeason(t *testing.T) {
	f := &teststubs.StubFetcher{Bodies: map[string]string{"commonteamroster": rosterBody}}
	src := NewSource(f, "https://stats.test/stats", nil, nil)
	src.now = testutil.NowAt(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if _, err := src.FetchRoster(context.Background(), cavs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Requested("Season=2025-26") || !f.Requested("TeamID=1610612739") {
		t.Fatalf("unexpected request urls %v", f.URLs)
	}
}

func TestFetchRosterEmptyIsNotCached(t *testing.T) {
	up := testutil.NewUpstream(testutil.Route{Match: "/commonteamroster", Body: `{"resultSets":[{"name":"CommonTeamRoster","headers":["PLAYER_ID","PLAYER"],"rowSet":[]}]}`})
	src, store := newSource(t, up, time.Now())

	players, err := src.FetchRoster(context.Background(), cavs)
	if err != nil || len(players) != 0 {
		t.Fatalf("expected empty roster, got %v err=%v", players, err)
	}
	left := len(store.KeysMatching(context.Background(), ""))
	if left != 0 {
		t.Fatalf("expected nothing cached, got %d entries", left)
	}
}

func TestFetchRosterPropagatesUpstreamError(t *testing.T) {
	up := testutil.NewUpstream(testutil.Route{Match: "/commonteamroster", Status: 500, Body: "boom"})
	src, _ := newSource(t, up, time.Now())
	var se *providers.StatusError
	if _, err := src.FetchRoster(context.Background(), cavs); !errors.As(err, &se) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchGameLog(t *testing.T) {
	up := testutil.NewUpstream(testutil.Route{Match: "/teamgamelog", Body: gameLogBody})
	src, store := newSource(t, up, time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC))

	games, err := src.FetchGameLog(context.Background(), cavs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	home := games[0]
	if home.GameID != "0022500100" || home.GameDate != "2025-11-02" {
		t.Fatalf("unexpected first game %+v", home)
	}
	if home.HomeTeam.TeamID != cavs || home.AwayTeam.Tricode != "BOS" {
		t.Fatalf("expected CLE home vs BOS, got %+v", home)
	}
	if home.HomeScore == nil || *home.HomeScore != 120 || home.AwayScore != nil {
		t.Fatalf("expected only the home score, got %v/%v", home.HomeScore, home.AwayScore)
	}
	if home.Result != domain.ResultWin {
		t.Fatalf("expected W from the log, got %q", home.Result)
	}
	away := games[1]
	if away.AwayTeam.TeamID != cavs || away.HomeTeam.Tricode != "NYK" || away.AwayScore == nil {
		t.Fatalf("expected CLE away at NYK, got %+v", away)
	}
	if _, ok := store.Get(context.Background(), cache.GameLogKey(cavs)); !ok {
		t.Fatalf("expected game log cached")
	}
}

func TestParseMatchup(t *testing.T) {
	tests := []struct {
		in         string
		self, opp  string
		home       bool
	}{
		{"CLE vs. BOS", "CLE", "BOS", true},
		{"CLE @ BOS", "CLE", "BOS", false},
		{" LAL vs. GSW ", "LAL", "GSW", true},
		{"garbage", "garbage", "", false},
	}
	for _, tt := range tests {
		self, opp, home := ParseMatchup(tt.in)
		if self != tt.self || opp != tt.opp || home != tt.home {
			t.Fatalf("ParseMatchup(%q) = %q %q %v", tt.in, self, opp, home)
		}
	}
}

func TestParseStatsDate(t *testing.T) {
	cases := map[string]string{
		"NOV 02, 2025":        "2025-11-02",
		"Oct 5, 2025":         "2025-10-05",
		"2025-12-25":          "2025-12-25",
		"2025-12-25T00:00:00": "2025-12-25",
		"soon":                "soon",
	}
	for in, want := range cases {
		if got := parseStatsDate(in); got != want {
			t.Fatalf("parseStatsDate(%q) = %q, want %q", in, got, want)
		}
	}
}
