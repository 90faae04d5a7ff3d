package handlers

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
)

// NextGameService builds the aggregate for a team. A zero team id means the default team.
type NextGameService interface {
	NextGame(ctx context.Context, teamID int) (domain.NextGameResponse, error)
}

// Handler wires the public routes to the orchestrator.
type Handler struct {
	svc      NextGameService
	logger   *slog.Logger
	statusFn func() refresh.Status
}

// NewHandler constructs a Handler. A nil statusFn reports ready unconditionally.
func NewHandler(svc NextGameService, logger *slog.Logger, statusFn func() refresh.Status) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports liveness.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the scheduled refresh has warmed the cache recently.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// NextGame returns the aggregate for ?teamId=, or the default team when absent.
func (h *Handler) NextGame(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	logger := loggerFromContext(r, h.logger)

	teamID, ok := parseTeamID(r.URL.Query().Get("teamId"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid teamId", logger)
		return
	}

	resp, err := h.svc.NextGame(r.Context(), teamID)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= nethttp.StatusInternalServerError {
			logging.Error(logger, "next game failed", err, logging.FieldTeamID, teamID)
		}
		writeError(w, r, status, msg, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, resp, logger)
}

func parseTeamID(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// errorStatus maps orchestrator errors onto HTTP statuses and client-safe messages.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoUpcomingGame):
		return nethttp.StatusNotFound, "No upcoming game found"
	case errors.Is(err, domain.ErrUnknownTeam):
		return nethttp.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTimeout):
		return nethttp.StatusGatewayTimeout, domain.ErrTimeout.Error()
	case errors.Is(err, context.Canceled):
		return nethttp.StatusServiceUnavailable, "request canceled"
	}
	if _, ok := providers.AsRateLimitError(err); ok {
		return nethttp.StatusServiceUnavailable, "upstream rate limited, please try again shortly"
	}
	return nethttp.StatusBadGateway, "Failed to fetch next game data"
}
