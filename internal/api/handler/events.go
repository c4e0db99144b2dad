package handler

import (
	"net/http"

	"github.com/mcoot/navalcombat/internal/events"
)

// EventsHandler upgrades clients to the websocket event stream
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	events.ServeWS(w, r, h.hub)
}
