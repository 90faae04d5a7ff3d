package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
	"github.com/preston-bernstein/nba-next-game-service/internal/teststubs"
)

const scheduleRoute = "scheduleLeagueV2"

// A kickoff far enough out that it is always the next game.
const scheduleBody = `{"leagueSchedule":{"seasonYear":"2099-00","gameDates":[
 {"gameDate":"03/01/2099 00:00:00","games":[
  {"gameId":"0029900001","gameStatus":1,"gameStatusText":"7:30 pm ET","gameDateTimeEst":"2099-03-01T19:30:00Z","gameDateTimeUTC":"2099-03-02T00:30:00Z",
   "arenaName":"Rocket Arena","arenaCity":"Cleveland","arenaState":"OH",
   "homeTeam":{"teamId":1610612739,"teamName":"Cavaliers","teamCity":"Cleveland","teamTricode":"CLE","wins":10,"losses":2,"score":0},
   "awayTeam":{"teamId":1610612738,"teamName":"Celtics","teamCity":"Boston","teamTricode":"BOS","wins":7,"losses":5,"score":0}}]}
]}}`

func testConfig() config.Config {
	return config.Config{
		Port: "0",
		Upstream: config.UpstreamConfig{
			ScheduleURL:   "https://cdn.test/static/json/staticData/scheduleLeagueV2_1.json",
			StatsBaseURL:  "https://stats.test/stats",
			LiveBaseURL:   "https://cdn.test/static/json/liveData",
			InjuryPageURL: "https://official.test/injury-report",
			InjuryDocURL:  "https://ak-static.test/referee/injury",
			InjuryHTMLURL: "https://cbs.test/nba/injuries/",
			Timeout:       time.Second,
			MaxAttempts:   1,
		},
		NextGame: config.NextGameConfig{
			DefaultTeamID:    1610612739,
			AggregateTimeout: 5 * time.Second,
			LineupOrder:      "position",
			Timezone:         "America/New_York",
		},
		Admin: config.AdminConfig{Token: "admin-secret"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *testutil.Upstream) {
	t.Helper()
	up := testutil.NewUpstream(testutil.Route{Match: scheduleRoute, Body: scheduleBody})
	logger, _ := testutil.NewBufferLogger()
	srv := newServerWithMetrics(cfg, logger, metrics.NewRecorder(), up.Client())
	t.Cleanup(func() { _ = srv.core.Close() })
	return srv, up
}

func TestServerServesHealthAndNextGame(t *testing.T) {
	srv, up := newTestServer(t, testConfig())
	h := srv.Handler()

	rr := testutil.Serve(h, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected middleware to set X-Request-ID")
	}

	rr = testutil.Serve(h, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.Serve(h, http.MethodGet, "/next-game", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp domain.NextGameResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.TeamID != 1610612739 || resp.Game.GameID != "0029900001" || !resp.Game.IsHome {
		t.Fatalf("unexpected aggregate %+v", resp.Game)
	}
	if resp.Game.Opponent.Tricode != "BOS" {
		t.Fatalf("expected Celtics opponent, got %+v", resp.Game.Opponent)
	}
	if resp.Injuries.Team == nil || resp.Injuries.Opponent == nil {
		t.Fatalf("expected degraded injury slices to be empty lists")
	}

	rr = testutil.Serve(h, http.MethodGet, "/next-game?teamId=1610612739", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := up.Hits(scheduleRoute); got != 1 {
		t.Fatalf("expected cached schedule and aggregate, got %d schedule reads", got)
	}
}

func TestServerMapsHandlerErrors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	h := srv.Handler()

	rr := testutil.Serve(h, http.MethodGet, "/next-game?teamId=42", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	// Nets have no game in the fixture schedule.
	rr = testutil.Serve(h, http.MethodGet, "/next-game?teamId=1610612751", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestServerAdminRoutes(t *testing.T) {
	srv, up := newTestServer(t, testConfig())
	h := srv.Handler()

	rr := testutil.Serve(h, http.MethodGet, "/next-game", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.Serve(h, http.MethodPost, "/admin/cache/clear", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/admin/cache/clear", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	rr = testutil.ServeRequest(h, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var cleared struct {
		OK      bool     `json:"ok"`
		Cleared int      `json:"cleared"`
		Keys    []string `json:"keys"`
	}
	testutil.DecodeJSON(t, rr, &cleared)
	if !cleared.OK || cleared.Cleared == 0 {
		t.Fatalf("expected keys cleared, got %+v", cleared)
	}

	// No CRON_SECRET configured, so the hook is open and warms synchronously.
	rr = testutil.Serve(h, http.MethodGet, "/cron/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := up.Hits(scheduleRoute); got != 2 {
		t.Fatalf("expected warm to refetch the schedule once, got %d reads", got)
	}
}

func TestServerReadyReflectsRefreshStatus(t *testing.T) {
	cfg := testConfig()
	up := testutil.NewUpstream(testutil.Route{Match: scheduleRoute, Body: scheduleBody})
	core := newCore(context.Background(), cfg, nil, nil, up.Client())
	defer core.Close()

	stub := &teststubs.StubRefresher{StatusVal: refresh.Status{ConsecutiveFailures: 1, LastError: "schedule: 503"}}
	h := buildHTTPServer(cfg, core, stub, nil, nil).Handler()

	rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	rr = testutil.Serve(h, http.MethodPost, "/cron/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if _, _, run := stub.Calls(); run != 1 {
		t.Fatalf("expected cron hook to go through the refresher, got %d runs", run)
	}
}

func TestBuildRefresher(t *testing.T) {
	cfg := testConfig()
	core := newCore(context.Background(), cfg, nil, nil, testutil.NewUpstream().Client())
	defer core.Close()

	if r := buildRefresher(cfg, core, nil, nil); r != nil {
		t.Fatalf("expected nil refresher when disabled")
	}
	cfg.Refresh = config.RefreshConfig{Enabled: true, Schedule: "every now and then"}
	if r := buildRefresher(cfg, core, nil, nil); r != nil {
		t.Fatalf("expected nil refresher for invalid schedule")
	}
	cfg.Refresh.Schedule = refresh.DefaultSchedule
	if r := buildRefresher(cfg, core, nil, nil); r == nil {
		t.Fatalf("expected refresher for a valid schedule")
	}
}

func TestNewConstructsServer(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	srv := New(cfg, nil)
	defer srv.core.Close()
	if srv.Handler() == nil || srv.logger == nil || srv.metrics == nil {
		t.Fatalf("expected handler, logger and recorder")
	}
	if srv.metricsServer != nil {
		t.Fatalf("expected no metrics server when disabled")
	}
}

func TestRunStartsAndStopsComponents(t *testing.T) {
	httpSrv := &testutil.StubHTTPServer{AddrVal: ":0", HandlerVal: http.NewServeMux()}
	stub := &teststubs.StubRefresher{}
	srv := newServerWithDeps(config.Config{}, nil, nil, httpSrv, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, cancel)

	start, stop, _ := stub.Calls()
	if start != 1 || stop != 1 {
		t.Fatalf("expected refresher started and stopped once, got start=%d stop=%d", start, stop)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected http shutdown, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownContinuesWhenRefreshStopErrors(t *testing.T) {
	httpSrv := &testutil.StubHTTPServer{}
	stub := &teststubs.StubRefresher{StopErr: errors.New("stop failed")}
	srv := newServerWithDeps(config.Config{}, nil, nil, httpSrv, stub)

	srv.gracefulShutdown()
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected http shutdown despite refresh stop error")
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	orig := shutdownTimeout
	shutdownTimeout = 20 * time.Millisecond
	defer func() { shutdownTimeout = orig }()

	blocking := &testutil.BlockingHTTPServer{Unblock: make(chan struct{})}
	srv := newServerWithDeps(config.Config{}, nil, nil, blocking, nil)

	done := make(chan struct{})
	go func() {
		srv.gracefulShutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("graceful shutdown did not honor its timeout")
	}
	if blocking.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown attempt")
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, nil, &testutil.ErrHTTPServer{}, nil)
	stopped := make(chan struct{})
	srv.startServer(func() { close(stopped) })

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("expected listen failure to trigger stop")
	}
}

func TestServerStartIgnoresServerClosed(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, nil, &testutil.CloseableHTTPServer{}, nil)
	stopped := make(chan struct{}, 1)
	srv.startServer(func() { stopped <- struct{}{} })

	select {
	case <-stopped:
		t.Fatalf("ErrServerClosed must not trigger stop")
	case <-time.After(50 * time.Millisecond):
	}
}
