package request

// NewGameRequest is the request body for starting a new game
type NewGameRequest struct {
	Nickname string `json:"nickname,omitempty"`
}

// PlaceShipRequest is the request body for placing one ship.
// Snap moves a blocked ship to the nearest free anchor instead of failing.
type PlaceShipRequest struct {
	Col      int  `json:"col"`
	Row      int  `json:"row"`
	Vertical bool `json:"vertical"`
	Snap     bool `json:"snap,omitempty"`
}

// FireRequest is the request body for firing at the CPU board
type FireRequest struct {
	Col int `json:"col"`
	Row int `json:"row"`
}
