package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	httpserver "github.com/preston-bernstein/nba-next-game-service/internal/http"
	"github.com/preston-bernstein/nba-next-game-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-next-game-service/internal/http/middleware"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	core          *Core
	httpServer    httpServer
	metricsServer httpServer
	refresher     Refresher
	metricsStop   func(context.Context) error
}

// New constructs a server with the default upstream, cache and refresh wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithMetrics(cfg, logger, nil, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, upstream *http.Client) *Server {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	core := newCore(context.Background(), cfg, logger, recorder, upstream)
	refresher := buildRefresher(cfg, core, logger, recorder)
	httpSrv := buildHTTPServer(cfg, core, refresher, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		core:          core,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		refresher:     refresher,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, core *Core, httpSrv httpServer, refresher Refresher) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		core:       core,
		httpServer: httpSrv,
		refresher:  refresher,
	}
}

// buildRefresher returns nil when refresh is disabled or the schedule is invalid.
func buildRefresher(cfg config.Config, core *Core, logger *slog.Logger, recorder *metrics.Recorder) Refresher {
	if !cfg.Refresh.Enabled {
		logging.Info(logger, "scheduled refresh disabled")
		return nil
	}
	sched, err := refresh.New(core.Service, cfg.Refresh.Schedule, core.Location, logger, recorder)
	if err != nil {
		logging.Error(logger, "scheduled refresh disabled", err, "schedule", cfg.Refresh.Schedule)
		return nil
	}
	return sched
}

func buildHTTPServer(cfg config.Config, core *Core, refresher Refresher, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	var statusFn func() refresh.Status
	refreshFn := core.Service.Warm
	if refresher != nil {
		statusFn = refresher.Status
		refreshFn = refresher.Run
	}

	handler := handlers.NewHandler(core.Service, logger, statusFn)
	admin := handlers.NewAdminHandler(core.Service, refreshFn, cfg.Admin.Token, cfg.Admin.CronSecret, logger)
	router := httpserver.NewRouter(handler, admin)
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the refresh loop and HTTP servers, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.refresher != nil {
		s.refresher.Start(ctx)
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", "addr", s.httpServer.Addr())
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", "addr", s.metricsServer.Addr())
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.refresher != nil {
		if err := s.refresher.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop refresh", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", logging.FieldError, err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", logging.FieldError, err)
		}
	}

	if err := s.core.Close(); err != nil {
		logging.Warn(s.logger, "cache close failed", logging.FieldError, err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", logging.FieldError, err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", logging.FieldError, err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
