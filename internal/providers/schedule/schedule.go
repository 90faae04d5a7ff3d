// Package schedule reads the league schedule feed and derives next game,
// recent form, head-to-head and fallback standings from it.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/normalize"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
)

// Schedule is the normalized season schedule.
type Schedule struct {
	SeasonYear string        `json:"seasonYear"`
	Games      []domain.Game `json:"games"`
}

// Source reads the schedule CDN through the cache.
type Source struct {
	client providers.Fetcher
	url    string
	cache  cache.Store
	logger *slog.Logger
}

// NewSource builds a schedule Source. A nil store disables caching.
func NewSource(client providers.Fetcher, url string, store cache.Store, logger *slog.Logger) *Source {
	return &Source{client: client, url: url, cache: store, logger: logger}
}

// Fetch returns the full season schedule.
func (s *Source) Fetch(ctx context.Context) (Schedule, error) {
	if cached, ok := cache.GetJSON[Schedule](ctx, s.cache, cache.KeySchedule); ok {
		return cached, nil
	}

	var payload wireSchedule
	if err := s.client.GetJSON(ctx, s.url, &payload); err != nil {
		return Schedule{}, fmt.Errorf("fetch schedule: %w", err)
	}
	sched := payload.normalize()
	logging.Info(logging.FromContext(ctx, s.logger), "schedule loaded",
		logging.FieldUpstream, providers.UpstreamSchedule,
		logging.FieldCount, len(sched.Games),
	)
	cache.SetJSON(ctx, s.cache, cache.KeySchedule, sched, cache.TTLSchedule)
	return sched, nil
}

type wireSchedule struct {
	LeagueSchedule struct {
		SeasonYear string `json:"seasonYear"`
		GameDates  []struct {
			GameDate string     `json:"gameDate"`
			Games    []wireGame `json:"games"`
		} `json:"gameDates"`
	} `json:"leagueSchedule"`
}

type wireGame struct {
	GameID          string            `json:"gameId"`
	GameCode        string            `json:"gameCode"`
	GameStatus      normalize.FlexInt `json:"gameStatus"`
	GameStatusText  string            `json:"gameStatusText"`
	GameDateTimeEst string            `json:"gameDateTimeEst"`
	GameDateTimeUTC string            `json:"gameDateTimeUTC"`
	ArenaName       string            `json:"arenaName"`
	ArenaCity       string            `json:"arenaCity"`
	ArenaState      string            `json:"arenaState"`
	HomeTeam        normalize.RawTeam `json:"homeTeam"`
	AwayTeam        normalize.RawTeam `json:"awayTeam"`
	Broadcasters    struct {
		National []wireBroadcaster `json:"nationalBroadcasters"`
		Home     []wireBroadcaster `json:"homeTvBroadcasters"`
		Away     []wireBroadcaster `json:"awayTvBroadcasters"`
	} `json:"broadcasters"`
}

type wireBroadcaster struct {
	Scope        string            `json:"broadcasterScope"`
	Media        string            `json:"broadcasterMedia"`
	ID           normalize.FlexInt `json:"broadcasterId"`
	Display      string            `json:"broadcasterDisplay"`
	Abbreviation string            `json:"broadcasterAbbreviation"`
	Description  string            `json:"broadcasterDescription"`
	VideoLink    string            `json:"broadcasterVideoLink"`
}

func (w wireSchedule) normalize() Schedule {
	sched := Schedule{SeasonYear: w.LeagueSchedule.SeasonYear}
	for _, day := range w.LeagueSchedule.GameDates {
		for _, g := range day.Games {
			if g.GameID == "" {
				continue
			}
			sched.Games = append(sched.Games, g.normalize())
		}
	}
	return sched
}

func (g wireGame) normalize() domain.Game {
	game := domain.Game{
		GameID:     g.GameID,
		GameCode:   g.GameCode,
		Status:     domain.GameStatus(g.GameStatus.Value),
		StatusText: strings.TrimSpace(g.GameStatusText),
		KickoffUTC: parseKickoff(g.GameDateTimeUTC),
		KickoffEst: g.GameDateTimeEst,
		HomeTeam:   normalize.NormalizeTeam(g.HomeTeam),
		AwayTeam:   normalize.NormalizeTeam(g.AwayTeam),
		HomeScore:  g.HomeTeam.Score.Ptr(),
		AwayScore:  g.AwayTeam.Score.Ptr(),
		HomeRecord: domain.Record{Wins: g.HomeTeam.Wins.Value, Losses: g.HomeTeam.Losses.Value},
		AwayRecord: domain.Record{Wins: g.AwayTeam.Wins.Value, Losses: g.AwayTeam.Losses.Value},
		Venue: domain.Venue{
			Arena: strings.TrimSpace(g.ArenaName),
			City:  strings.TrimSpace(g.ArenaCity),
			State: strings.TrimSpace(g.ArenaState),
		},
	}
	game.Broadcasts = appendBroadcasts(game.Broadcasts, "natl", g.Broadcasters.National)
	game.Broadcasts = appendBroadcasts(game.Broadcasts, "home", g.Broadcasters.Home)
	game.Broadcasts = appendBroadcasts(game.Broadcasts, "away", g.Broadcasters.Away)
	return game
}

func appendBroadcasts(out []domain.Broadcast, scope string, in []wireBroadcaster) []domain.Broadcast {
	for _, b := range in {
		if b.Scope == "" {
			b.Scope = scope
		}
		out = append(out, domain.Broadcast{
			Scope:        b.Scope,
			Media:        b.Media,
			ID:           b.ID.Value,
			Display:      b.Display,
			Abbreviation: b.Abbreviation,
			Description:  b.Description,
			VideoLink:    b.VideoLink,
		})
	}
	return out
}

var kickoffLayouts = []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02T15:04:05"}

// parseKickoff reads the UTC kickoff; unparseable values stay zero.
func parseKickoff(raw string) time.Time {
	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
