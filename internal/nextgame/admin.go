package nextgame

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
)

// Invalidate clears the schedule, standings, live aggregates and injury reports
// so the next request refetches them. The stale aggregate backups survive a
// scoped clear; all removes every key. It returns the count and the keys removed.
func (s *Service) Invalidate(ctx context.Context, all bool) (int, []string) {
	store := s.cfg.Cache
	if store == nil {
		return 0, []string{}
	}
	var (
		n    int
		keys []string
	)
	if all {
		n, keys = cache.DeletePrefixes(ctx, store, "")
	} else {
		n, keys = cache.DeleteLivePrefixes(ctx, store, cache.KeySchedule, cache.KeyStandings, cache.PrefixAggregate, cache.PrefixInjuries)
	}
	if len(keys) == 0 {
		return 0, []string{}
	}
	logging.Info(logging.FromContext(ctx, s.cfg.Logger), "cache invalidated",
		logging.FieldCount, n,
		"all", all,
	)
	return n, keys
}

// Warm drops the schedule, standings and live aggregates, then refetches the
// schedule, the standings and the default team's aggregate. A missing upcoming
// game is not a failure; a schedule error is.
func (s *Service) Warm(ctx context.Context) error {
	store := s.cfg.Cache
	if store != nil {
		cache.DeleteLivePrefixes(ctx, store, cache.KeySchedule, cache.KeyStandings, cache.PrefixAggregate)
	}

	if _, err := s.src.Schedule.Fetch(ctx); err != nil {
		return fmt.Errorf("warm schedule: %w", err)
	}
	if _, err := s.src.Standings.Fetch(ctx); err != nil {
		s.warn(ctx, "warm standings failed", logging.FieldError, err)
	}
	if s.cfg.DefaultTeamID == 0 {
		return nil
	}
	if _, err := s.NextGame(ctx, s.cfg.DefaultTeamID); err != nil && !errors.Is(err, domain.ErrNoUpcomingGame) {
		return fmt.Errorf("warm aggregate: %w", err)
	}
	return nil
}
