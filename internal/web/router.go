package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

// RouterConfig holds the dependencies of the HTTP surface
type RouterConfig struct {
	Logger   *slog.Logger
	Store    *player.Service
	State    *world.State
	Feed     *Feed
	Networks func() []string
}

// NewRouter creates the realm's HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := &handlers{
		store:    cfg.Store,
		state:    cfg.State,
		networks: cfg.Networks,
	}

	// SSE connections are long-lived, keep them off the request logger.
	// Registered before the /api subrouter so the prefix match wins.
	if cfg.Feed != nil {
		feed := r.PathPrefix("/api/feed").Subrouter()
		feed.Use(recovery(cfg.Logger))
		feed.HandleFunc("", cfg.Feed.serveFeed).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recovery(cfg.Logger))
	api.Use(logging(cfg.Logger))

	api.HandleFunc("/players", h.listPlayers).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}", h.getPlayer).Methods(http.MethodGet)
	api.HandleFunc("/online", h.listOnline).Methods(http.MethodGet)
	api.HandleFunc("/events", h.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/quest", h.getQuest).Methods(http.MethodGet)
	api.HandleFunc("/state", h.getState).Methods(http.MethodGet)

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
