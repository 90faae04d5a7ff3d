package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
)

type stubNextGame struct {
	resp   domain.NextGameResponse
	err    error
	teamID int
	calls  int
}

func (s *stubNextGame) NextGame(_ context.Context, teamID int) (domain.NextGameResponse, error) {
	s.calls++
	s.teamID = teamID
	return s.resp, s.err
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubNextGame{}, nil, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(&stubNextGame{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestHealthRejectsPost(t *testing.T) {
	h := NewHandler(&stubNextGame{}, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodPost, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestReady(t *testing.T) {
	now := time.Date(2025, 11, 8, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		status func() refresh.Status
		want   int
		errMsg string
	}{
		{name: "refresh disabled", status: nil, want: http.StatusOK},
		{name: "warmed", status: func() refresh.Status { return refresh.Status{LastSuccess: now} }, want: http.StatusOK},
		{name: "never warmed", status: func() refresh.Status { return refresh.Status{} }, want: http.StatusServiceUnavailable, errMsg: "not ready"},
		{
			name: "failing",
			status: func() refresh.Status {
				return refresh.Status{LastSuccess: now, ConsecutiveFailures: 3, LastError: "schedule down"}
			},
			want:   http.StatusServiceUnavailable,
			errMsg: "schedule down",
		},
	}
	for _, tt := range tests {
		h := NewHandler(&stubNextGame{}, nil, tt.status)
		rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
		if rr.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, rr.Code)
		}
		if tt.errMsg != "" {
			var body map[string]string
			testutil.DecodeJSON(t, rr, &body)
			if body["error"] != tt.errMsg {
				t.Fatalf("%s: expected error %q, got %q", tt.name, tt.errMsg, body["error"])
			}
		}
	}
}

func TestNextGameDefaultsTeam(t *testing.T) {
	svc := &stubNextGame{resp: domain.NextGameResponse{TeamID: 1610612739}}
	h := NewHandler(svc, nil, nil)

	rr := testutil.Serve(http.HandlerFunc(h.NextGame), http.MethodGet, "/next-game", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp domain.NextGameResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.TeamID != 1610612739 {
		t.Fatalf("unexpected body %+v", resp)
	}
	if svc.teamID != 0 {
		t.Fatalf("expected default team (0) passed through, got %d", svc.teamID)
	}
}

func TestNextGamePassesTeamID(t *testing.T) {
	svc := &stubNextGame{}
	h := NewHandler(svc, nil, nil)

	rr := testutil.Serve(http.HandlerFunc(h.NextGame), http.MethodGet, "/next-game?teamId=1610612738", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if svc.teamID != 1610612738 {
		t.Fatalf("expected team id forwarded, got %d", svc.teamID)
	}
}

func TestNextGameRejectsBadTeamID(t *testing.T) {
	for _, raw := range []string{"abc", "-4", "0", "1.5"} {
		svc := &stubNextGame{}
		h := NewHandler(svc, nil, nil)
		rr := testutil.Serve(http.HandlerFunc(h.NextGame), http.MethodGet, "/next-game?teamId="+raw, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		if svc.calls != 0 {
			t.Fatalf("teamId %q should not reach the service", raw)
		}
	}
}

func TestNextGameErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no upcoming game", domain.ErrNoUpcomingGame, http.StatusNotFound},
		{"unknown team", fmt.Errorf("%w: %d", domain.ErrUnknownTeam, 42), http.StatusBadRequest},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout},
		{"rate limited", fmt.Errorf("fetch schedule: %w", &providers.RateLimitError{Provider: providers.UpstreamSchedule, StatusCode: 429}), http.StatusServiceUnavailable},
		{"breaker open", fmt.Errorf("fetch schedule: %w", providers.ErrProviderUnavailable), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		h := NewHandler(&stubNextGame{err: tt.err}, nil, nil)
		rr := testutil.Serve(http.HandlerFunc(h.NextGame), http.MethodGet, "/next-game", nil)
		if rr.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, rr.Code)
		}
		var body map[string]string
		testutil.DecodeJSON(t, rr, &body)
		if body["error"] == "" {
			t.Fatalf("%s: expected error message", tt.name)
		}
	}
}

func TestNextGameRejectsPost(t *testing.T) {
	h := NewHandler(&stubNextGame{}, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.NextGame), http.MethodPost, "/next-game", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}
