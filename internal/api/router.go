package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/navalcombat/internal/api/handler"
	"github.com/mcoot/navalcombat/internal/api/middleware"
	"github.com/mcoot/navalcombat/internal/events"
	"github.com/mcoot/navalcombat/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *game.Controller
	Hub        *events.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.Controller, cfg.Logger)
	saveHandler := handler.NewSaveHandler(cfg.Controller, cfg.Logger)

	// Logging runs outermost so a recovered panic is logged with its request id
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	// Session
	api.HandleFunc("/game", gameHandler.New).Methods(http.MethodPost)
	api.HandleFunc("/game", gameHandler.Get).Methods(http.MethodGet)

	// Setup
	api.HandleFunc("/game/ships/auto", gameHandler.AutoPlace).Methods(http.MethodPost)
	api.HandleFunc("/game/ships/{index:[0-9]+}", gameHandler.PlaceShip).Methods(http.MethodPost)
	api.HandleFunc("/game/ships/{index:[0-9]+}", gameHandler.RemoveShip).Methods(http.MethodDelete)
	api.HandleFunc("/game/ships/{index:[0-9]+}/rotate", gameHandler.RotateShip).Methods(http.MethodPost)
	api.HandleFunc("/game/start", gameHandler.Start).Methods(http.MethodPost)

	// Play
	api.HandleFunc("/game/fire", gameHandler.Fire).Methods(http.MethodPost)
	api.HandleFunc("/game/cpu", saveHandler.ResumeCPU).Methods(http.MethodPost)

	// Persistence
	api.HandleFunc("/game/save", saveHandler.Save).Methods(http.MethodPost)
	api.HandleFunc("/game/save", saveHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/game/save", saveHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/game/load", saveHandler.Load).Methods(http.MethodPost)

	// Event stream (only when a hub is configured)
	if cfg.Hub != nil {
		eventsHandler := handler.NewEventsHandler(cfg.Hub)
		api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)
	}

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
