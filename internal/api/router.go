package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokerleague/internal/api/handler"
	"github.com/mcoot/pokerleague/internal/api/middleware"
	"github.com/mcoot/pokerleague/internal/api/response"
	sharedmw "github.com/mcoot/pokerleague/internal/middleware"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/services/league"
	"github.com/mcoot/pokerleague/internal/web/sse"
)

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	League      *league.Controller
	HubManager  *sse.HubManager
	Storage     Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	eventHandler := handler.NewEventHandler(cfg.League, cfg.Logger)
	entryHandler := handler.NewEntryHandler(cfg.League, cfg.Logger)
	playerHandler := handler.NewPlayerHandler(cfg.League, cfg.Logger)
	streamHandler := handler.NewStreamHandler(cfg.HubManager, cfg.AuthService)

	adminMiddleware := middleware.Admin(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(sharedmw.RequestID)
	api.Use(sharedmw.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler(cfg.Storage)).Methods(http.MethodGet)

	// Public reads
	api.HandleFunc("/events", eventHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/events/stream", streamHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}", eventHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}/results", eventHandler.Results).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}/stream", streamHandler.Event).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/standings", playerHandler.Standings).Methods(http.MethodGet)
	api.HandleFunc("/standings/stream", streamHandler.Standings).Methods(http.MethodGet)

	// Admin routes
	admin := api.NewRoute().Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/events", eventHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/events/{eventID}/entries", entryHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/events/{eventID}/entries", entryHandler.Add).Methods(http.MethodPost)
	admin.HandleFunc("/events/{eventID}/entries", entryHandler.BulkRemove).Methods(http.MethodDelete)
	admin.HandleFunc("/events/{eventID}/entries/bulk", entryHandler.BulkAdd).Methods(http.MethodPost)
	admin.HandleFunc("/events/{eventID}/entries/{entryID}", entryHandler.Remove).Methods(http.MethodDelete)
	admin.HandleFunc("/events/{eventID}/entries/{entryID}/rebuy", entryHandler.Rebuy).Methods(http.MethodPost)
	admin.HandleFunc("/events/{eventID}/entries/{entryID}/addon", entryHandler.Addon).Methods(http.MethodPost)
	admin.HandleFunc("/events/{eventID}/entries/{entryID}/result", entryHandler.Result).Methods(http.MethodPut)
	admin.HandleFunc("/events/{eventID}/players/{playerID}", entryHandler.SetSelected).Methods(http.MethodPut)
	admin.HandleFunc("/events/{eventID}/players/{playerID}", entryHandler.RemovePlayer).Methods(http.MethodDelete)
	admin.HandleFunc("/events/{eventID}/roster", entryHandler.SyncRoster).Methods(http.MethodPut)

	return r
}

func healthHandler(storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage != nil {
			if err := storage.Ping(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Storage: err.Error()})
				return
			}
		}
		response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Storage: "ok"})
	}
}
