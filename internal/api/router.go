package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mizucoffee/canislupus-server/internal/api/handler"
	"github.com/mizucoffee/canislupus-server/internal/api/middleware"
	"github.com/mizucoffee/canislupus-server/internal/api/response"
	"github.com/mizucoffee/canislupus-server/internal/registry"
	"github.com/mizucoffee/canislupus-server/internal/services/auth"
	"github.com/mizucoffee/canislupus-server/internal/services/sync"
	"github.com/mizucoffee/canislupus-server/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	SyncEngine  *sync.Engine
	Registry    *registry.Registry
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	sessionHandler := handler.NewSessionHandler(cfg.SyncEngine)
	wsHandler := ws.NewHandler(cfg.SyncEngine, cfg.Registry, cfg.Logger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes
	api.HandleFunc("/players", playerHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/players/code", playerHandler.NewCode).Methods(http.MethodGet)
	api.HandleFunc("/players/auth", playerHandler.Authenticate).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}/qr", playerHandler.QRCode).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/results", playerHandler.RecordResult).Methods(http.MethodPost)

	// Session routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Set).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Persistent event channel. The upgrade handshake bypasses the API
	// middleware chain so the recovery handler cannot write JSON onto a
	// hijacked connection.
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
