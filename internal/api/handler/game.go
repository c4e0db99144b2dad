package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/navalcombat/internal/api/request"
	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/game"
)

// GameHandler handles setup and shot endpoints
type GameHandler struct {
	controller *game.Controller
	logger     *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		controller: controller,
		logger:     logger.With(slog.String("component", "game_handler")),
	}
}

// New handles POST /api/v1/game
func (h *GameHandler) New(w http.ResponseWriter, r *http.Request) {
	var req request.NewGameRequest
	if err := request.Decode(r, &req, true); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	state := h.controller.NewGame(r.Context(), req.Nickname)
	response.JSON(w, http.StatusCreated, response.GameStateFromModel(state))
}

// Get handles GET /api/v1/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.GameStateFromModel(h.controller.State()))
}

// PlaceShip handles POST /api/v1/game/ships/{index}
func (h *GameHandler) PlaceShip(w http.ResponseWriter, r *http.Request) {
	index, err := shipIndex(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.PlaceShipRequest
	if err := request.Decode(r, &req, false); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	ship, err := h.controller.PlaceShip(r.Context(), index, req.Col, req.Row, req.Vertical, req.Snap)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ShipFromModel(index, ship))
}

// RotateShip handles POST /api/v1/game/ships/{index}/rotate
func (h *GameHandler) RotateShip(w http.ResponseWriter, r *http.Request) {
	index, err := shipIndex(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	ship, err := h.controller.RotateShip(r.Context(), index)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ShipFromModel(index, ship))
}

// RemoveShip handles DELETE /api/v1/game/ships/{index}
func (h *GameHandler) RemoveShip(w http.ResponseWriter, r *http.Request) {
	index, err := shipIndex(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.controller.RemoveShip(r.Context(), index); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// AutoPlace handles POST /api/v1/game/ships/auto
func (h *GameHandler) AutoPlace(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.AutoPlace(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(state))
}

// Start handles POST /api/v1/game/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.Start(r.Context())
	if err != nil && !errors.Is(err, model.ErrPlacementExhausted) {
		WriteError(w, err)
		return
	}

	resp := response.StartResponse{Game: response.GameStateFromModel(state)}
	if err != nil {
		h.logger.Error("game started with an incomplete cpu fleet", slog.String("error", err.Error()))
		resp.Warning = err.Error()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Fire handles POST /api/v1/game/fire. The CPU's reply, if any, is played
// out before the response is written.
func (h *GameHandler) Fire(w http.ResponseWriter, r *http.Request) {
	var req request.FireRequest
	if err := request.Decode(r, &req, false); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	result, err := h.controller.Fire(r.Context(), req.Col, req.Row)
	if err != nil {
		if result == nil {
			WriteError(w, err)
			return
		}
		// The player's shot landed; only the CPU turn was cut short
		h.logger.Warn("cpu turn interrupted", slog.String("error", err.Error()))
	}
	response.JSON(w, http.StatusOK, response.FireResponseFromModel(result))
}

func shipIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, NewInvalidRequestError("Ship index must be a number")
	}
	return index, nil
}
