package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameReset   EventType = "game_reset"
	EventGameStarted EventType = "game_started"
	EventShotFired   EventType = "shot_fired"
	EventTurnChanged EventType = "turn_changed"
	EventGameEnded   EventType = "game_ended"

	// Persistence events
	EventGameSaved  EventType = "game_saved"
	EventGameLoaded EventType = "game_loaded"
	EventSaveFailed EventType = "save_failed"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	Nickname  string `json:"nickname"`
	FirstTurn Side   `json:"first_turn"`
}

// ShotFiredPayload contains data for shot events
type ShotFiredPayload struct {
	Shot Shot `json:"shot"`
}

// TurnChangedPayload contains data for turn change events
type TurnChangedPayload struct {
	Turn Side `json:"turn"`
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Winner Winner `json:"winner"`
}

// GameSavedPayload contains data for save events
type GameSavedPayload struct {
	SavedAt int64 `json:"saved_at"`
}

// SaveFailedPayload contains data for failed save or load events
type SaveFailedPayload struct {
	Error string `json:"error"`
}
