package nextgame

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/names"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/schedule"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/standings"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// RecentCount is how many recent games each side shows.
const RecentCount = 3

// aggregate builds a fresh response. Only a schedule failure or a missing
// upcoming game is an error; every other slice degrades to empty or placeholder.
func (s *Service) aggregate(ctx context.Context, teamID int) (domain.NextGameResponse, time.Duration, error) {
	now := s.now()
	sched, err := s.src.Schedule.Fetch(ctx)
	if err != nil {
		return domain.NextGameResponse{}, 0, fmt.Errorf("fetch schedule: %w", err)
	}
	game, ok := schedule.FindNextGame(sched, teamID, now)
	if !ok {
		return domain.NextGameResponse{}, 0, domain.ErrNoUpcomingGame
	}
	team := schedule.Team(game, teamID)
	opp := schedule.Opponent(game, teamID)
	gameDay := schedule.IsGameDay(game, now, s.loc)
	reportDate := timeutil.FormatDate(now.In(s.loc))

	var (
		table                 []domain.StandingsEntry
		teamInj, oppInj       []domain.InjuryEntry
		teamRoster, oppRoster []domain.Player
		teamRecent, oppRecent []domain.GameSummary
		h2h                   []domain.GameSummary
		teamLineup, oppLineup []domain.Player
		lastBox               *domain.LastH2HBoxScore
	)

	var g errgroup.Group
	g.Go(func() error { table = s.standings(ctx); return nil })
	g.Go(func() error { teamInj = s.injuries(ctx, team.TeamID, reportDate, gameDay); return nil })
	g.Go(func() error { oppInj = s.injuries(ctx, opp.TeamID, reportDate, gameDay); return nil })
	g.Go(func() error { teamRoster = s.roster(ctx, team.TeamID); return nil })
	g.Go(func() error { oppRoster = s.roster(ctx, opp.TeamID); return nil })
	g.Go(func() error { teamRecent = s.recent(ctx, sched, team.TeamID); return nil })
	g.Go(func() error { oppRecent = s.recent(ctx, sched, opp.TeamID); return nil })
	g.Go(func() error { h2h = s.headToHead(ctx, sched, team, opp, now); return nil })
	_ = g.Wait()

	var second errgroup.Group
	if s.src.Lineups != nil {
		second.Go(func() error {
			teamLineup = s.src.Lineups.Project(ctx, game.GameID, team.TeamID, teamInj, teamRoster)
			return nil
		})
		second.Go(func() error {
			oppLineup = s.src.Lineups.Project(ctx, game.GameID, opp.TeamID, oppInj, oppRoster)
			return nil
		})
	}
	if s.src.BoxScores != nil && len(h2h) > 0 && h2h[0].GameID != "" {
		last := h2h[0]
		second.Go(func() error {
			lastBox = s.src.BoxScores.TopPerformers(ctx, last.GameID, last.HomeTeam.TeamID, last.AwayTeam.TeamID)
			return nil
		})
	}
	_ = second.Wait()

	if err := ctx.Err(); err != nil {
		return domain.NextGameResponse{}, 0, err
	}

	status := game.StatusText
	if status == "" {
		status = game.Status.String()
	}
	resp := domain.NextGameResponse{
		TeamID: teamID,
		Game: domain.NextGameInfo{
			GameID:     game.GameID,
			DateTime:   game.KickoffUTC,
			Status:     status,
			Team:       team,
			Opponent:   opp,
			Location:   schedule.Location(game),
			IsHome:     schedule.IsHome(game, teamID),
			Broadcasts: orEmpty(game.Broadcasts),
		},
		Standings: pickStandings(table, sched, team, opp),
		Injuries: domain.InjuryPair{
			Team:     Enrich(teamInj, teamRoster),
			Opponent: Enrich(oppInj, oppRoster),
		},
		ProjectedLineups: domain.LineupPair{
			Team:     orEmpty(teamLineup),
			Opponent: orEmpty(oppLineup),
		},
		TeamRecentGames:        teamRecent,
		OpponentRecentGames:    oppRecent,
		HeadToHead:             h2h,
		LastHeadToHeadBoxScore: lastBox,
		LastUpdated:            now.UTC(),
	}
	logging.Info(logging.FromContext(ctx, s.cfg.Logger), "aggregate built",
		logging.FieldTeamID, teamID,
		logging.FieldGameID, game.GameID,
		logging.FieldDurationMS, s.now().Sub(now).Milliseconds(),
	)
	return resp, cache.AggregateTTL(gameDay), nil
}

func (s *Service) warn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, s.cfg.Logger), msg, args...)
}

func (s *Service) standings(ctx context.Context) []domain.StandingsEntry {
	table, err := s.src.Standings.Fetch(ctx)
	if err != nil {
		s.warn(ctx, "standings unavailable, deriving from schedule", logging.FieldError, err)
		return nil
	}
	return table
}

// pickStandings looks each side up in the standings table, then in
// schedule-derived standings, then falls back to a zero-record placeholder.
func pickStandings(table []domain.StandingsEntry, sched schedule.Schedule, team, opp domain.TeamInfo) domain.StandingsPair {
	var derived []domain.StandingsEntry
	lookup := func(t domain.TeamInfo) domain.StandingsEntry {
		if e, ok := standings.Find(table, t.TeamID); ok {
			return e
		}
		if derived == nil {
			derived = schedule.StandingsFromSchedule(sched)
		}
		if e, ok := standings.Find(derived, t.TeamID); ok {
			return e
		}
		return standings.Placeholder(t)
	}
	return domain.StandingsPair{Team: lookup(team), Opponent: lookup(opp)}
}

func (s *Service) injuries(ctx context.Context, teamID int, date string, gameDay bool) []domain.InjuryEntry {
	entries, err := s.src.Injuries.Fetch(ctx, teamID, date, gameDay)
	if err != nil {
		s.warn(ctx, "injury report unavailable", logging.FieldTeamID, teamID, logging.FieldDate, date, logging.FieldError, err)
		return []domain.InjuryEntry{}
	}
	return entries
}

// roster never returns nil so the lineup projector does not refetch a failed roster.
func (s *Service) roster(ctx context.Context, teamID int) []domain.Player {
	players, err := s.src.Stats.FetchRoster(ctx, teamID)
	if err != nil {
		s.warn(ctx, "roster unavailable", logging.FieldTeamID, teamID, logging.FieldError, err)
		return []domain.Player{}
	}
	return orEmpty(players)
}

// recent prefers schedule finals and falls back to the team game log.
func (s *Service) recent(ctx context.Context, sched schedule.Schedule, teamID int) []domain.GameSummary {
	games := schedule.RecentGames(sched, teamID, RecentCount)
	if len(games) == 0 {
		logged, err := s.src.Stats.FetchGameLog(ctx, teamID)
		if err != nil {
			s.warn(ctx, "game log fallback failed", logging.FieldTeamID, teamID, logging.FieldError, err)
		}
		if len(logged) > RecentCount {
			logged = logged[:RecentCount]
		}
		games = logged
	}
	return domain.SummariesForTeam(games, teamID)
}

// headToHead prefers schedule finals and falls back to the stats game finder,
// whose rows may lack tricodes for the two known sides.
func (s *Service) headToHead(ctx context.Context, sched schedule.Schedule, team, opp domain.TeamInfo, now time.Time) []domain.GameSummary {
	games := schedule.HeadToHead(sched, team.TeamID, opp.TeamID, now)
	if len(games) == 0 {
		api, err := s.src.Stats.FetchHeadToHead(ctx, team.TeamID, opp.TeamID)
		if err != nil {
			s.warn(ctx, "head-to-head fallback failed", logging.FieldTeamID, team.TeamID, logging.FieldError, err)
		}
		for i := range api {
			api[i].HomeTeam = fillTricode(api[i].HomeTeam, team, opp)
			api[i].AwayTeam = fillTricode(api[i].AwayTeam, team, opp)
		}
		games = api
	}
	return domain.SummariesForTeam(games, team.TeamID)
}

func fillTricode(side, team, opp domain.TeamInfo) domain.TeamInfo {
	if side.Tricode != "" && side.Tricode != domain.Placeholder {
		return side
	}
	for _, known := range []domain.TeamInfo{team, opp} {
		if side.TeamID == known.TeamID && known.Tricode != "" {
			side.Tricode = known.Tricode
		}
	}
	if side.Tricode == "" {
		side.Tricode = domain.Placeholder
	}
	return side
}

// Enrich replaces injury names with the roster's display name and fills
// jersey numbers and positions when the name resolves.
func Enrich(entries []domain.InjuryEntry, roster []domain.Player) []domain.InjuryEntry {
	out := make([]domain.InjuryEntry, len(entries))
	idx := names.NewIndex(roster)
	for i, e := range entries {
		if p, ok := idx.Resolve(e.PlayerName); ok {
			if full := p.FullName(); full != "" {
				e.PlayerName = full
			}
			if p.JerseyNumber != "" {
				e.JerseyNumber = p.JerseyNumber
			}
			if e.Position == "" {
				e.Position = p.Position
			}
		}
		out[i] = e
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
