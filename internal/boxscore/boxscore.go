// Package boxscore reduces a completed game's box score to per-side leaderboards.
package boxscore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/normalize"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/stats"
)

// TopN is the length of each leaderboard.
const TopN = 3

// StatsBoxScores is the fallback box score reader.
type StatsBoxScores interface {
	FetchBoxScore(ctx context.Context, gameID string) (stats.ResultSet, error)
}

// Aggregator builds LastH2HBoxScore values from the live CDN or the stats API.
type Aggregator struct {
	live     providers.Fetcher
	liveBase string
	stats    StatsBoxScores
	cache    cache.Store
	logger   *slog.Logger
}

// NewAggregator builds an Aggregator. A nil live fetcher skips the CDN.
func NewAggregator(live providers.Fetcher, liveBaseURL string, statsSrc StatsBoxScores, store cache.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		live:     live,
		liveBase: strings.TrimRight(liveBaseURL, "/"),
		stats:    statsSrc,
		cache:    store,
		logger:   logger,
	}
}

// line is one player's contribution to the leaderboards.
type line struct {
	personID int
	name     string
	jersey   string
	teamID   int
	points   int
	rebounds int
	assists  int
}

func (l line) scored() bool {
	return l.points > 0 || l.rebounds > 0 || l.assists > 0
}

type liveBoxScore struct {
	Game struct {
		GameID   string   `json:"gameId"`
		HomeTeam liveTeam `json:"homeTeam"`
		AwayTeam liveTeam `json:"awayTeam"`
	} `json:"game"`
}

type liveTeam struct {
	TeamID  normalize.FlexInt `json:"teamId"`
	Players []livePlayer      `json:"players"`
}

type livePlayer struct {
	PersonID   normalize.FlexInt `json:"personId"`
	Name       string            `json:"name"`
	JerseyNum  string            `json:"jerseyNum"`
	Statistics struct {
		Points        normalize.FlexInt `json:"points"`
		ReboundsTotal normalize.FlexInt `json:"reboundsTotal"`
		Assists       normalize.FlexInt `json:"assists"`
	} `json:"statistics"`
}

// TopPerformers returns the top three scorers, rebounders and passers per side
// plus the game-high person ids. It returns nil when neither source has data.
func (a *Aggregator) TopPerformers(ctx context.Context, gameID string, homeID, awayID int) *domain.LastH2HBoxScore {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil
	}
	key := cache.BoxScoreTopsKey(gameID)
	if cached, ok := cache.GetJSON[domain.LastH2HBoxScore](ctx, a.cache, key); ok {
		return &cached
	}
	logger := logging.FromContext(ctx, a.logger)

	lines, err := a.fromLive(ctx, gameID, homeID, awayID)
	if err != nil {
		logging.Warn(logger, "live box score unavailable",
			logging.FieldUpstream, providers.UpstreamLive,
			logging.FieldGameID, gameID,
			logging.FieldError, err,
		)
	}
	if len(lines) == 0 && a.stats != nil {
		rows, err := a.stats.FetchBoxScore(ctx, gameID)
		if err != nil {
			logging.Warn(logger, "stats box score unavailable",
				logging.FieldUpstream, providers.UpstreamStats,
				logging.FieldGameID, gameID,
				logging.FieldError, err,
			)
			return nil
		}
		lines = fromRows(rows)
	}
	if len(lines) == 0 {
		return nil
	}

	out := build(gameID, homeID, awayID, lines)
	cache.SetJSON(ctx, a.cache, key, out, cache.TTLBoxScore)
	return &out
}

func (a *Aggregator) fromLive(ctx context.Context, gameID string, homeID, awayID int) ([]line, error) {
	if a.live == nil || a.liveBase == "" {
		return nil, nil
	}
	var box liveBoxScore
	url := fmt.Sprintf("%s/boxscore/boxscore_%s.json", a.liveBase, gameID)
	if err := a.live.GetJSON(ctx, url, &box); err != nil {
		return nil, err
	}
	home, away := box.Game.HomeTeam, box.Game.AwayTeam
	if home.TeamID.Value != homeID || away.TeamID.Value != awayID {
		return nil, fmt.Errorf("live box score %s teams %d/%d do not match %d/%d",
			gameID, home.TeamID.Value, away.TeamID.Value, homeID, awayID)
	}
	var out []line
	for _, side := range []liveTeam{home, away} {
		for _, p := range side.Players {
			l := line{
				personID: p.PersonID.Value,
				name:     strings.TrimSpace(p.Name),
				jersey:   strings.TrimSpace(p.JerseyNum),
				teamID:   side.TeamID.Value,
				points:   p.Statistics.Points.Value,
				rebounds: p.Statistics.ReboundsTotal.Value,
				assists:  p.Statistics.Assists.Value,
			}
			if l.name != "" && l.scored() {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func fromRows(rs stats.ResultSet) []line {
	var out []line
	for _, r := range stats.PlayerRows(rs, 0) {
		l := line{
			personID: r.PersonID,
			name:     r.Name,
			jersey:   r.JerseyNumber,
			teamID:   r.TeamID,
			points:   r.Points,
			rebounds: r.Rebounds,
			assists:  r.Assists,
		}
		if l.name != "" && l.teamID != 0 && l.scored() {
			out = append(out, l)
		}
	}
	return out
}

type statFn func(line) int

func points(l line) int   { return l.points }
func rebounds(l line) int { return l.rebounds }
func assists(l line) int  { return l.assists }

// build ranks lines into a LastH2HBoxScore. Equal values keep input order.
func build(gameID string, homeID, awayID int, lines []line) domain.LastH2HBoxScore {
	var home, away []line
	for _, l := range lines {
		switch l.teamID {
		case homeID:
			home = append(home, l)
		case awayID:
			away = append(away, l)
		}
	}
	return domain.LastH2HBoxScore{
		GameID:              gameID,
		HomeTeamID:          homeID,
		AwayTeamID:          awayID,
		HomeTopPts:          top(home, points),
		HomeTopReb:          top(home, rebounds),
		HomeTopAst:          top(home, assists),
		AwayTopPts:          top(away, points),
		AwayTopReb:          top(away, rebounds),
		AwayTopAst:          top(away, assists),
		GameHighPtsPersonID: gameHigh(lines, points),
		GameHighRebPersonID: gameHigh(lines, rebounds),
		GameHighAstPersonID: gameHigh(lines, assists),
	}
}

func ranked(lines []line, stat statFn) []line {
	out := make([]line, 0, len(lines))
	for _, l := range lines {
		if stat(l) > 0 {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return stat(out[i]) > stat(out[j]) })
	return out
}

func top(lines []line, stat statFn) []domain.Leader {
	sorted := ranked(lines, stat)
	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}
	out := make([]domain.Leader, len(sorted))
	for i, l := range sorted {
		out[i] = domain.Leader{PlayerName: l.name, PersonID: l.personID, Value: stat(l), JerseyNumber: l.jersey}
	}
	return out
}

func gameHigh(lines []line, stat statFn) *int {
	sorted := ranked(lines, stat)
	if len(sorted) == 0 {
		return nil
	}
	return domain.IntPtr(sorted[0].personID)
}
