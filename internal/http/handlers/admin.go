package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/http/requestutil"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
)

// CacheAdmin clears cached upstream data.
type CacheAdmin interface {
	Invalidate(ctx context.Context, all bool) (int, []string)
}

// AdminHandler exposes operator endpoints: cache clearing and the cron refresh hook.
type AdminHandler struct {
	cache      CacheAdmin
	refresh    func(context.Context) error
	adminToken string
	cronSecret string
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdminHandler constructs an AdminHandler. Empty credentials leave the matching route open.
func NewAdminHandler(cache CacheAdmin, refresh func(context.Context) error, adminToken, cronSecret string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cache:      cache,
		refresh:    refresh,
		adminToken: adminToken,
		cronSecret: cronSecret,
		logger:     logger,
		now:        time.Now,
	}
}

// ClearCache drops the live schedule, standings, aggregate and injury keys.
// With ?all=1 every key under the service prefix goes.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet, http.MethodPost) {
		return
	}
	if !h.authorize(w, r, h.adminToken) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if h.cache == nil {
		writeError(w, r, http.StatusServiceUnavailable, "cache not configured", logger)
		return
	}

	all := r.URL.Query().Get("all") == "1"
	cleared, keys := h.cache.Invalidate(r.Context(), all)
	logging.Info(logger, "admin cache cleared",
		logging.FieldCount, cleared,
		"all", all,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"cleared": cleared,
		"keys":    keys,
	}, logger)
}

// CronRefresh runs one refresh cycle synchronously.
func (h *AdminHandler) CronRefresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet, http.MethodPost) {
		return
	}
	if !h.authorize(w, r, h.cronSecret) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if h.refresh == nil {
		writeError(w, r, http.StatusServiceUnavailable, "refresh not configured", logger)
		return
	}

	now := h.now()
	if err := h.refresh(r.Context()); err != nil {
		logging.Error(logger, "cron refresh failed", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to refresh cache", logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": now.UTC().Format(time.RFC3339Nano),
	}, logger)
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request, secret string) bool {
	if secret == "" {
		return true
	}
	got := []byte(r.Header.Get("Authorization"))
	want := []byte("Bearer " + secret)
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return true
	}
	logging.Warn(h.logger, "admin unauthorized",
		logging.FieldPath, r.URL.Path,
		"client_ip", requestutil.ClientIP(r),
	)
	writeError(w, r, http.StatusUnauthorized, "Unauthorized", h.logger)
	return false
}

func requireMethod(w http.ResponseWriter, r *http.Request, logger *slog.Logger, allowed ...string) bool {
	for _, m := range allowed {
		if r.Method == m {
			return true
		}
	}
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}
