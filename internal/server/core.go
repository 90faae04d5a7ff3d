package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/boxscore"
	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/lineups"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/nextgame"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/injuries"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/schedule"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/standings"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/stats"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// Core is the aggregation stack shared by the HTTP server and the CLI.
type Core struct {
	Service  *nextgame.Service
	Cache    cache.Store
	Location *time.Location
}

// Close releases the cache backend.
func (c *Core) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// clientFactory gives every upstream its own client so breakers and limiters stay independent.
type clientFactory struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

func (f clientFactory) build(name string, headers map[string]string) *providers.Client {
	cc := providers.ClientConfigFor(name, f.cfg, headers, f.logger, f.metrics)
	cc.HTTPClient = f.httpClient
	return providers.NewClient(cc)
}

// NewCore builds the cache, every upstream source and the orchestrator from config.
func NewCore(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) *Core {
	return newCore(ctx, cfg, logger, recorder, nil)
}

func newCore(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, httpClient *http.Client) *Core {
	loc := timeutil.ResolveLocation(cfg.NextGame.Timezone)
	store := cache.New(ctx, cfg.Cache, logger, recorder)
	up := cfg.Upstream
	clients := clientFactory{cfg: up, httpClient: httpClient, logger: logger, metrics: recorder}

	statsClient := clients.build(providers.UpstreamStats, providers.StatsHeaders)
	statsSrc := stats.NewSource(statsClient, up.StatsBaseURL, store, logger)

	var fallback providers.Fetcher
	if up.InjuryHTMLURL != "" {
		fallback = clients.build(providers.UpstreamCBS, providers.BrowserHeaders)
	}
	injurySrc := injuries.NewSource(injuries.Config{
		Client:      clients.build(providers.UpstreamInjuries, providers.BrowserHeaders),
		Fallback:    fallback,
		PageURL:     up.InjuryPageURL,
		DocBaseURL:  up.InjuryDocURL,
		FallbackURL: up.InjuryHTMLURL,
		Cache:       store,
		Logger:      logger,
		Location:    loc,
	})

	src := nextgame.Sources{
		Schedule:  schedule.NewSource(clients.build(providers.UpstreamSchedule, providers.BrowserHeaders), up.ScheduleURL, store, logger),
		Standings: standings.NewSource(statsClient, up.StatsBaseURL, store, logger),
		Injuries:  injurySrc,
		Stats:     statsSrc,
		Lineups:   lineups.NewProjector(statsSrc, store, logger, lineups.ParseOrder(cfg.NextGame.LineupOrder)),
		BoxScores: boxscore.NewAggregator(clients.build(providers.UpstreamLive, providers.StatsHeaders), up.LiveBaseURL, statsSrc, store, logger),
	}
	svc := nextgame.NewService(src, nextgame.Config{
		DefaultTeamID: cfg.NextGame.DefaultTeamID,
		Timeout:       cfg.NextGame.AggregateTimeout,
		Location:      loc,
		Cache:         store,
		Logger:        logger,
		Metrics:       recorder,
	})

	logging.Info(logger, "aggregation core ready",
		logging.FieldTeamID, cfg.NextGame.DefaultTeamID,
		"timezone", loc.String(),
		"lineup_order", cfg.NextGame.LineupOrder,
	)
	return &Core{Service: svc, Cache: store, Location: loc}
}
