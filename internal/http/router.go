package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/nba-next-game-service/internal/http/handlers"
)

// NewRouter registers the public and operator routes on a ServeMux.
// A nil admin handler leaves the operator routes unmounted.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/next-game", handler.NextGame)
	if admin != nil {
		mux.HandleFunc("/admin/cache/clear", admin.ClearCache)
		mux.HandleFunc("/cron/refresh", admin.CronRefresh)
	}
	return mux
}
