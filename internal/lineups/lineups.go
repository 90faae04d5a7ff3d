// Package lineups projects each side's starting five.
package lineups

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/names"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/stats"
)

const (
	// StarterCount is the size of a lineup.
	StarterCount = 5
	// recentGames is how many of the latest game logs are scanned for starts.
	recentGames = 5
	// boxScoreFanout bounds concurrent box score reads.
	boxScoreFanout = 3
)

// Order selects the final sort of a projected lineup.
type Order string

const (
	OrderPosition Order = "position"
	OrderMinutes  Order = "minutes"
)

// ParseOrder maps config text to an Order, defaulting to position.
func ParseOrder(s string) Order {
	if Order(s) == OrderMinutes {
		return OrderMinutes
	}
	return OrderPosition
}

// Stats is the subset of the stats source the projector reads.
type Stats interface {
	FetchBoxScore(ctx context.Context, gameID string) (stats.ResultSet, error)
	FetchGameLog(ctx context.Context, teamID int) ([]domain.GameSummary, error)
	FetchRoster(ctx context.Context, teamID int) ([]domain.Player, error)
}

// Candidate is a player with the evidence used to rank them.
type Candidate struct {
	Player  domain.Player `json:"player"`
	Starts  int           `json:"starts"`
	Minutes float64       `json:"minutes"`
}

// Projector builds lineups from box scores, recent starts, rosters and injuries.
type Projector struct {
	stats  Stats
	cache  cache.Store
	logger *slog.Logger
	order  Order
}

// NewProjector builds a Projector. A nil store disables caching.
func NewProjector(src Stats, store cache.Store, logger *slog.Logger, order Order) *Projector {
	return &Projector{stats: src, cache: store, logger: logger, order: ParseOrder(string(order))}
}

// Project returns teamID's probable starters for gameID.
//
// If the game's box score already names five starters they are used as-is.
// Otherwise the most frequent recent starters are taken, skipping anyone an
// injury entry keeps out, and the roster fills any gap. roster may be nil, in
// which case it is fetched.
func (p *Projector) Project(ctx context.Context, gameID string, teamID int, injuries []domain.InjuryEntry, roster []domain.Player) []domain.Player {
	key := cache.LineupsKey(gameID, teamID)
	if cached, ok := cache.GetJSON[[]domain.Player](ctx, p.cache, key); ok {
		return cached
	}
	logger := logging.FromContext(ctx, p.logger)

	if rows, err := p.stats.FetchBoxScore(ctx, gameID); err == nil {
		if starters := Starters(rows, teamID); len(starters) == StarterCount {
			lineup := p.sorted(starters)
			cache.SetJSON(ctx, p.cache, key, lineup, cache.TTLLineups)
			return lineup
		}
	}

	if roster == nil {
		var err error
		if roster, err = p.stats.FetchRoster(ctx, teamID); err != nil {
			logging.Warn(logger, "roster unavailable for lineup", logging.FieldTeamID, teamID, logging.FieldError, err)
		}
	}

	recent := p.RecentStarters(ctx, teamID)
	excluded := excludedIDs(injuries, recent, roster)

	picked := make([]Candidate, 0, StarterCount)
	chosen := make(map[int]struct{}, StarterCount)
	add := func(c Candidate) {
		if len(picked) == StarterCount {
			return
		}
		if _, out := excluded[c.Player.PersonID]; out {
			return
		}
		if _, dup := chosen[c.Player.PersonID]; dup {
			return
		}
		chosen[c.Player.PersonID] = struct{}{}
		picked = append(picked, c)
	}
	for _, c := range recent {
		add(c)
	}
	for _, pl := range roster {
		add(Candidate{Player: pl})
	}

	jerseys := make(map[int]string, len(roster))
	for _, pl := range roster {
		if pl.JerseyNumber != "" {
			jerseys[pl.PersonID] = pl.JerseyNumber
		}
	}
	for i := range picked {
		if picked[i].Player.JerseyNumber == "" {
			picked[i].Player.JerseyNumber = jerseys[picked[i].Player.PersonID]
		}
	}

	lineup := p.sorted(picked)
	if len(lineup) > 0 {
		cache.SetJSON(ctx, p.cache, key, lineup, cache.TTLLineups)
	}
	return lineup
}

// RecentStarters counts starts over the team's latest games, most starts first
// with person id breaking ties. Box scores are read concurrently; a game whose
// box score fails is skipped.
func (p *Projector) RecentStarters(ctx context.Context, teamID int) []Candidate {
	key := cache.RecentStartersKey(teamID)
	if cached, ok := cache.GetJSON[[]Candidate](ctx, p.cache, key); ok {
		return cached
	}
	logger := logging.FromContext(ctx, p.logger)

	games, err := p.stats.FetchGameLog(ctx, teamID)
	if err != nil {
		logging.Warn(logger, "game log unavailable for recent starters", logging.FieldTeamID, teamID, logging.FieldError, err)
		return nil
	}
	if len(games) > recentGames {
		games = games[:recentGames]
	}

	perGame := make([][]Candidate, len(games))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(boxScoreFanout)
	for i, game := range games {
		i, gameID := i, game.GameID
		if gameID == "" {
			continue
		}
		g.Go(func() error {
			rows, err := p.stats.FetchBoxScore(gctx, gameID)
			if err != nil {
				logging.Warn(logger, "box score unavailable for recent starters", logging.FieldGameID, gameID, logging.FieldError, err)
				return nil
			}
			perGame[i] = Starters(rows, teamID)
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[int]*Candidate)
	for _, starters := range perGame {
		for _, s := range starters {
			c, ok := byID[s.Player.PersonID]
			if !ok {
				c = &Candidate{Player: s.Player}
				byID[s.Player.PersonID] = c
			}
			c.Starts++
			c.Minutes += s.Minutes
		}
	}
	out := make([]Candidate, 0, len(byID))
	for _, c := range byID {
		c.Minutes /= float64(c.Starts)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Starts != out[j].Starts {
			return out[i].Starts > out[j].Starts
		}
		return out[i].Player.PersonID < out[j].Player.PersonID
	})
	if len(out) > 0 {
		cache.SetJSON(ctx, p.cache, key, out, cache.TTLLineups)
	}
	return out
}

// Starters extracts teamID's starters from canonical box score rows. Rows with
// a start position are starters. Without a START_POSITION column the five
// players with the most minutes (then points) are used, ignoring anyone who
// has not played.
func Starters(rows stats.ResultSet, teamID int) []Candidate {
	players := stats.PlayerRows(rows, teamID)
	flagged := rows.Has(stats.ColStartPosition)
	if !flagged {
		sort.SliceStable(players, func(i, j int) bool {
			if players[i].Minutes != players[j].Minutes {
				return players[i].Minutes > players[j].Minutes
			}
			return players[i].Points > players[j].Points
		})
	}

	var out []Candidate
	for _, r := range players {
		if flagged && r.StartPosition == "" {
			continue
		}
		if !flagged && (r.Minutes == 0 || len(out) == StarterCount) {
			break
		}
		out = append(out, Candidate{Player: r.Player(), Starts: 1, Minutes: r.Minutes})
	}
	return out
}

// excludedIDs resolves injury names against every known player and returns
// the ids whose status keeps them out.
func excludedIDs(injuries []domain.InjuryEntry, recent []Candidate, roster []domain.Player) map[int]struct{} {
	out := make(map[int]struct{})
	if len(injuries) == 0 {
		return out
	}
	known := make([]domain.Player, 0, len(recent)+len(roster))
	for _, c := range recent {
		known = append(known, c.Player)
	}
	known = append(known, roster...)
	idx := names.NewIndex(known)
	for _, inj := range injuries {
		if !inj.Status.KeepsOutOfLineup() {
			continue
		}
		if pl, ok := idx.Resolve(inj.PlayerName); ok {
			out[pl.PersonID] = struct{}{}
		}
	}
	return out
}

var positionRank = map[string]int{
	"PG": 1, "G": 2, "SG": 2, "G-F": 3, "SF": 3, "F-G": 3,
	"F": 4, "PF": 4, "F-C": 4, "C-F": 5, "C": 5,
}

// PositionRank orders positions guard to center; unknown positions sort last.
func PositionRank(pos string) int {
	if r, ok := positionRank[pos]; ok {
		return r
	}
	return 99
}

func (p *Projector) sorted(cands []Candidate) []domain.Player {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	if p.order == OrderMinutes {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Minutes > sorted[j].Minutes })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool {
			return PositionRank(sorted[i].Player.Position) < PositionRank(sorted[j].Player.Position)
		})
	}
	out := make([]domain.Player, len(sorted))
	for i, c := range sorted {
		out[i] = c.Player
	}
	return out
}
