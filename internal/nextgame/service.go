// Package nextgame assembles the next-game aggregate for one team.
package nextgame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/schedule"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

const defaultTimeout = 10 * time.Second

// Stale reasons reported to metrics.
const (
	staleTimeout   = "timeout"
	staleRateLimit = "rate_limit"
	staleUpstream  = "upstream"
)

type ScheduleSource interface {
	Fetch(ctx context.Context) (schedule.Schedule, error)
}

type StandingsSource interface {
	Fetch(ctx context.Context) ([]domain.StandingsEntry, error)
}

type InjurySource interface {
	Fetch(ctx context.Context, teamID int, date string, isGameDay bool) ([]domain.InjuryEntry, error)
}

type StatsSource interface {
	FetchRoster(ctx context.Context, teamID int) ([]domain.Player, error)
	FetchGameLog(ctx context.Context, teamID int) ([]domain.GameSummary, error)
	FetchHeadToHead(ctx context.Context, teamA, teamB int) ([]domain.GameSummary, error)
}

type LineupProjector interface {
	Project(ctx context.Context, gameID string, teamID int, injuries []domain.InjuryEntry, roster []domain.Player) []domain.Player
}

type BoxScoreAggregator interface {
	TopPerformers(ctx context.Context, gameID string, homeID, awayID int) *domain.LastH2HBoxScore
}

// Sources are the components one aggregation fans out to. Schedule, Standings,
// Injuries and Stats are required; Lineups and BoxScores may be nil.
type Sources struct {
	Schedule  ScheduleSource
	Standings StandingsSource
	Injuries  InjurySource
	Stats     StatsSource
	Lineups   LineupProjector
	BoxScores BoxScoreAggregator
}

// Config carries the Service's policy and shared handles.
type Config struct {
	DefaultTeamID int
	// Timeout bounds one aggregation, measured from the first cold caller.
	Timeout  time.Duration
	Location *time.Location
	Cache    cache.Store
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Service answers next-game queries from cache, coalescing cold fetches per team.
type Service struct {
	src    Sources
	cfg    Config
	loc    *time.Location
	flight singleflight.Group
	now    func() time.Time
}

// NewService wires a Service. A nil cache disables caching and stale fallback.
func NewService(src Sources, cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	loc := cfg.Location
	if loc == nil {
		loc = timeutil.ResolveLocation(timeutil.DefaultZone)
	}
	return &Service{src: src, cfg: cfg, loc: loc, now: time.Now}
}

// DefaultTeamID is the team served when a caller names none.
func (s *Service) DefaultTeamID() int {
	return s.cfg.DefaultTeamID
}

// NextGame returns the aggregate for teamID (0 means the default team).
//
// A live cache hit returns immediately. Otherwise concurrent callers for the
// same team share one fan-out that runs detached from any single caller and is
// bounded by the configured timeout. On timeout, rate limiting or a schedule
// failure the last good aggregate is served if one exists.
func (s *Service) NextGame(ctx context.Context, teamID int) (domain.NextGameResponse, error) {
	if teamID == 0 {
		teamID = s.cfg.DefaultTeamID
	}
	if _, ok := domain.TeamByID(teamID); !ok {
		return domain.NextGameResponse{}, fmt.Errorf("%w: %d", domain.ErrUnknownTeam, teamID)
	}
	if cached, ok := cache.GetJSON[domain.NextGameResponse](ctx, s.cfg.Cache, cache.AggregateKey(teamID)); ok {
		return cached, nil
	}

	ch := s.flight.DoChan(strconv.Itoa(teamID), func() (any, error) {
		detached := context.WithoutCancel(ctx)
		// A flight that just finished may have filled the cache.
		if cached, ok := cache.GetJSON[domain.NextGameResponse](detached, s.cfg.Cache, cache.AggregateKey(teamID)); ok {
			return cached, nil
		}
		return s.load(detached, teamID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.NextGameResponse{}, res.Err
		}
		return res.Val.(domain.NextGameResponse), nil
	case <-ctx.Done():
		return domain.NextGameResponse{}, ctx.Err()
	}
}

type outcome struct {
	resp domain.NextGameResponse
	ttl  time.Duration
	err  error
}

// load runs one aggregation against the deadline and applies the fallback policy.
func (s *Service) load(ctx context.Context, teamID int) (domain.NextGameResponse, error) {
	actx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		resp, ttl, err := s.aggregate(actx, teamID)
		done <- outcome{resp: resp, ttl: ttl, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-actx.Done():
		out.err = domain.ErrTimeout
	}
	if out.err != nil {
		return s.fallback(ctx, teamID, out.err)
	}

	cache.SetJSON(ctx, s.cfg.Cache, cache.AggregateKey(teamID), out.resp, out.ttl)
	cache.SetJSON(ctx, s.cfg.Cache, cache.StaleAggregateKey(teamID), out.resp, cache.TTLStale)
	return out.resp, nil
}

func (s *Service) fallback(ctx context.Context, teamID int, err error) (domain.NextGameResponse, error) {
	if errors.Is(err, domain.ErrNoUpcomingGame) {
		return domain.NextGameResponse{}, err
	}
	timedOut := errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
	reason := staleUpstream
	if timedOut {
		reason = staleTimeout
	} else if _, ok := providers.AsRateLimitError(err); ok {
		reason = staleRateLimit
	}

	logger := logging.FromContext(ctx, s.cfg.Logger)
	if stale, ok := cache.GetJSON[domain.NextGameResponse](ctx, s.cfg.Cache, cache.StaleAggregateKey(teamID)); ok {
		logging.Warn(logger, "serving stale aggregate",
			logging.FieldTeamID, teamID,
			"reason", reason,
			logging.FieldError, err,
		)
		s.cfg.Metrics.RecordStaleServed(reason)
		return stale, nil
	}
	if timedOut {
		return domain.NextGameResponse{}, domain.ErrTimeout
	}
	return domain.NextGameResponse{}, err
}
