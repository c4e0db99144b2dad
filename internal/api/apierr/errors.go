package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/navalcombat/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPlacement   = "INVALID_PLACEMENT"
	CodeInvalidCoordinate  = "INVALID_COORDINATE"
	CodeShipNotFound       = "SHIP_NOT_FOUND"
	CodeFleetIncomplete    = "FLEET_INCOMPLETE"
	CodePlacementExhausted = "PLACEMENT_EXHAUSTED"
	CodeGameNotStarted     = "GAME_NOT_STARTED"
	CodeGameAlreadyStarted = "GAME_ALREADY_STARTED"
	CodeGameOver           = "GAME_OVER"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNoTargets          = "NO_TARGETS_REMAINING"
	CodeNoSavedGame        = "NO_SAVED_GAME"
	CodeSaveFailed         = "SAVE_FAILED"
	CodeLoadFailed         = "LOAD_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Setup
	case errors.Is(err, model.ErrInvalidPlacement):
		return &httpError{http.StatusConflict, APIError{CodeInvalidPlacement, "Ship cannot be placed there"}}
	case errors.Is(err, model.ErrShipNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeShipNotFound, "Ship not found"}}
	case errors.Is(err, model.ErrFleetIncomplete):
		return &httpError{http.StatusConflict, APIError{CodeFleetIncomplete, "Place every ship before starting"}}
	case errors.Is(err, model.ErrPlacementExhausted):
		return &httpError{http.StatusInternalServerError, APIError{CodePlacementExhausted, "Could not place the whole fleet"}}

	// Play
	case errors.Is(err, model.ErrInvalidCoordinate):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCoordinate, "Coordinate is off the board"}}
	case errors.Is(err, model.ErrGameNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameNotStarted, "Game has not started"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyStarted, "Game has already started"}}
	case errors.Is(err, model.ErrGameOver):
		return &httpError{http.StatusConflict, APIError{CodeGameOver, "Game is over"}}
	case errors.Is(err, model.ErrNotPlayerTurn), errors.Is(err, model.ErrNotCPUTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrNoTargetsRemaining):
		return &httpError{http.StatusConflict, APIError{CodeNoTargets, "No cells left to fire at"}}

	// Persistence
	case errors.Is(err, model.ErrNoSavedGame):
		return &httpError{http.StatusNotFound, APIError{CodeNoSavedGame, "No saved game"}}
	case errors.Is(err, model.ErrLoadFailed), errors.Is(err, model.ErrCorruptSnapshot):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeLoadFailed, "Saved game could not be loaded"}}
	case errors.Is(err, model.ErrSaveFailed):
		return &httpError{http.StatusInternalServerError, APIError{CodeSaveFailed, "Game could not be saved"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
