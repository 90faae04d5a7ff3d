package nextgame

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/schedule"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
)

const (
	cavs    = 1610612739
	celtics = 1610612738
	nets    = 1610612751
)

var now = testutil.MustParseRFC3339("2025-11-08T15:00:00Z")

func info(t *testing.T, id int) domain.TeamInfo {
	t.Helper()
	meta, ok := domain.TeamByID(id)
	if !ok {
		t.Fatalf("unknown team %d", id)
	}
	return meta.Info()
}

func final(t *testing.T, id, kickoff string, home, away int, homeScore, awayScore int, homeRec, awayRec domain.Record) domain.Game {
	return domain.Game{
		GameID:     id,
		Status:     domain.StatusFinal,
		KickoffUTC: testutil.MustParseRFC3339(kickoff),
		HomeTeam:   info(t, home),
		AwayTeam:   info(t, away),
		HomeScore:  domain.IntPtr(homeScore),
		AwayScore:  domain.IntPtr(awayScore),
		HomeRecord: homeRec,
		AwayRecord: awayRec,
	}
}

// fixtureSchedule: two cavs finals (one against the celtics) and tonight's home game against the celtics.
func fixtureSchedule(t *testing.T) schedule.Schedule {
	return schedule.Schedule{SeasonYear: "2025-26", Games: []domain.Game{
		final(t, "0022500101", "2025-11-01T23:30:00Z", cavs, celtics, 110, 100, domain.Record{Wins: 6, Losses: 2}, domain.Record{Wins: 4, Losses: 4}),
		final(t, "0022500140", "2025-11-05T00:30:00Z", nets, cavs, 95, 105, domain.Record{Wins: 2, Losses: 7}, domain.Record{Wins: 7, Losses: 2}),
		{
			GameID:     "0022500180",
			Status:     domain.StatusScheduled,
			StatusText: "6:30 pm ET",
			KickoffUTC: testutil.MustParseRFC3339("2025-11-08T23:30:00Z"),
			HomeTeam:   info(t, cavs),
			AwayTeam:   info(t, celtics),
			Venue:      domain.Venue{Arena: "Rocket Arena", City: "Cleveland", State: "OH"},
			Broadcasts: []domain.Broadcast{{Scope: "natl", Media: "tv", Display: "ESPN"}},
		},
	}}
}

type fakeSchedule struct {
	sched schedule.Schedule
	err   error
	// gate, when set, blocks Fetch until closed or the context ends.
	gate  chan struct{}
	calls atomic.Int32
}

func (f *fakeSchedule) Fetch(ctx context.Context) (schedule.Schedule, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return schedule.Schedule{}, ctx.Err()
		}
	}
	return f.sched, f.err
}

type fakeStandings struct {
	table []domain.StandingsEntry
	err   error
	calls atomic.Int32
}

func (f *fakeStandings) Fetch(context.Context) ([]domain.StandingsEntry, error) {
	f.calls.Add(1)
	return f.table, f.err
}

type fakeInjuries struct {
	byTeam map[int][]domain.InjuryEntry
	err    error
	mu     sync.Mutex
	dates  []string
}

func (f *fakeInjuries) Fetch(_ context.Context, teamID int, date string, _ bool) ([]domain.InjuryEntry, error) {
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.byTeam[teamID], nil
}

type fakeStats struct {
	rosters  map[int][]domain.Player
	gameLogs map[int][]domain.GameSummary
	h2h      []domain.GameSummary
	err      error
}

func (f *fakeStats) FetchRoster(_ context.Context, teamID int) ([]domain.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[teamID], nil
}

func (f *fakeStats) FetchGameLog(_ context.Context, teamID int) ([]domain.GameSummary, error) {
	return f.gameLogs[teamID], nil
}

func (f *fakeStats) FetchHeadToHead(context.Context, int, int) ([]domain.GameSummary, error) {
	out := make([]domain.GameSummary, len(f.h2h))
	copy(out, f.h2h)
	return out, nil
}

type fakeLineups struct {
	mu      sync.Mutex
	rosters map[int][]domain.Player
}

func (f *fakeLineups) Project(_ context.Context, _ string, teamID int, _ []domain.InjuryEntry, roster []domain.Player) []domain.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rosters == nil {
		f.rosters = make(map[int][]domain.Player)
	}
	f.rosters[teamID] = roster
	if len(roster) > 0 {
		return roster[:1]
	}
	return nil
}

type fakeBoxScores struct {
	gameID       string
	homeID, away int
}

func (f *fakeBoxScores) TopPerformers(_ context.Context, gameID string, homeID, awayID int) *domain.LastH2HBoxScore {
	f.gameID, f.homeID, f.away = gameID, homeID, awayID
	return &domain.LastH2HBoxScore{GameID: gameID, HomeTeamID: homeID, AwayTeamID: awayID}
}

type harness struct {
	svc       *Service
	store     *cache.MemoryStore
	rec       *metrics.Recorder
	schedule  *fakeSchedule
	standings *fakeStandings
	injuries  *fakeInjuries
	stats     *fakeStats
	lineups   *fakeLineups
	box       *fakeBoxScores
}

func newHarness(t *testing.T, timeout time.Duration) *harness {
	t.Helper()
	h := &harness{
		store:    cache.NewMemoryStore(),
		rec:      metrics.NewRecorder(),
		schedule: &fakeSchedule{sched: fixtureSchedule(t)},
		standings: &fakeStandings{table: []domain.StandingsEntry{
			{TeamID: cavs, Tricode: "CLE", Wins: 7, Losses: 2, LeagueRank: 2, ConferenceRank: 1},
			{TeamID: celtics, Tricode: "BOS", Wins: 4, Losses: 5, LeagueRank: 17, ConferenceRank: 9},
		}},
		injuries: &fakeInjuries{byTeam: map[int][]domain.InjuryEntry{
			cavs:    {{PlayerName: "Strus, Max", Status: domain.InjuryOut, Reason: "Injury/Illness - Right Foot; Surgery"}},
			celtics: {{PlayerName: "Tatum, Jayson", Status: domain.InjuryOut, Reason: "Achilles"}},
		}},
		stats: &fakeStats{rosters: map[int][]domain.Player{
			cavs:    {{PersonID: 1629622, FirstName: "Max", LastName: "Strus", Position: "G-F", JerseyNumber: "1"}},
			celtics: {{PersonID: 1628369, FirstName: "Jayson", LastName: "Tatum", Position: "F", JerseyNumber: "0"}},
		}},
		lineups: &fakeLineups{},
		box:     &fakeBoxScores{},
	}
	h.svc = NewService(Sources{
		Schedule:  h.schedule,
		Standings: h.standings,
		Injuries:  h.injuries,
		Stats:     h.stats,
		Lineups:   h.lineups,
		BoxScores: h.box,
	}, Config{
		DefaultTeamID: cavs,
		Timeout:       timeout,
		Location:      time.UTC,
		Cache:         h.store,
		Metrics:       h.rec,
	})
	h.svc.now = testutil.NowAt(now)
	return h
}
