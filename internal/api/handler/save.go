package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/game"
)

// SaveHandler handles the saved game endpoints
type SaveHandler struct {
	controller *game.Controller
	logger     *slog.Logger
}

// NewSaveHandler creates a new save handler
func NewSaveHandler(controller *game.Controller, logger *slog.Logger) *SaveHandler {
	return &SaveHandler{
		controller: controller,
		logger:     logger.With(slog.String("component", "save_handler")),
	}
}

// Save handles POST /api/v1/game/save
func (h *SaveHandler) Save(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Save(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SaveSummaryFromModel(snap))
}

// Get handles GET /api/v1/game/save
func (h *SaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.SavedGame(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SaveSummaryFromModel(snap))
}

// Delete handles DELETE /api/v1/game/save
func (h *SaveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteSave(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Load handles POST /api/v1/game/load. A game saved during the CPU's turn
// resumes that turn before responding.
func (h *SaveHandler) Load(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.Load(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.LoadResponse{CPUShots: []response.Shot{}}
	if state.Phase == model.PhaseInProgress && state.Turn == model.SideCPU {
		shots, err := h.controller.CPUTurn(r.Context())
		if err != nil {
			h.logger.Warn("resumed cpu turn interrupted", slog.String("error", err.Error()))
		}
		resp.CPUShots = response.ShotsFromModel(shots)
		state = h.controller.State()
	}

	resp.Game = response.GameStateFromModel(state)
	response.JSON(w, http.StatusOK, resp)
}

// ResumeCPU handles POST /api/v1/game/cpu, playing out a CPU turn that an
// earlier request left unfinished
func (h *SaveHandler) ResumeCPU(w http.ResponseWriter, r *http.Request) {
	shots, err := h.controller.CPUTurn(r.Context())
	if err != nil && len(shots) == 0 {
		WriteError(w, err)
		return
	}
	resp := response.LoadResponse{
		Game:     response.GameStateFromModel(h.controller.State()),
		CPUShots: response.ShotsFromModel(shots),
	}
	response.JSON(w, http.StatusOK, resp)
}
