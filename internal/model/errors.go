package model

import "errors"

// Common errors used across the application
var (
	// Setup errors
	ErrInvalidPlacement   = errors.New("ship cannot be placed there")
	ErrShipNotFound       = errors.New("ship not found")
	ErrFleetIncomplete    = errors.New("fleet is not fully placed")
	ErrPlacementExhausted = errors.New("ran out of placement attempts")

	// Game errors
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameOver           = errors.New("game is over")
	ErrNotPlayerTurn      = errors.New("not the player's turn")
	ErrNotCPUTurn         = errors.New("not the cpu's turn")
	ErrInvalidCoordinate  = errors.New("coordinate is off the board")
	ErrNoTargetsRemaining = errors.New("no cells left to fire at")

	// Persistence errors
	ErrNoSavedGame     = errors.New("no saved game")
	ErrSaveFailed      = errors.New("failed to save game")
	ErrLoadFailed      = errors.New("failed to load game")
	ErrCorruptSnapshot = errors.New("snapshot is corrupt")
)
