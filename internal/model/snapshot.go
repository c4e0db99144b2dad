package model

import "fmt"

// SnapshotVersion is bumped whenever the snapshot layout changes
const SnapshotVersion = 1

// ShipRecord is the persisted form of a ship
type ShipRecord struct {
	Name     string    `json:"name"`
	Cells    []Coord   `json:"cells"`
	State    ShipState `json:"state"`
	Anchor   Coord     `json:"anchor"`
	Vertical bool      `json:"vertical"`
	Length   int       `json:"length"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
}

// Snapshot is a self-contained copy of a session, safe to hand to another goroutine
type Snapshot struct {
	Version int `json:"version"`

	PlayerBoard Board `json:"player_board"`
	CPUBoard    Board `json:"cpu_board"`

	PlayerShips []ShipRecord `json:"player_ships"`
	CPUShips    []ShipRecord `json:"cpu_ships"`

	GameStarted         bool   `json:"game_started"`
	GameEnded           bool   `json:"game_ended"`
	CurrentTurn         Side   `json:"current_turn"`
	FirstPlayerMoveDone bool   `json:"first_player_move_done"`
	Winner              Winner `json:"winner"`
	Nickname            string `json:"nickname"`

	SavedAt int64 `json:"saved_at"` // epoch milliseconds
}

// NewShipRecord copies a ship into its persisted form
func NewShipRecord(s *Ship) ShipRecord {
	width, height := s.DimensionsInCells()
	return ShipRecord{
		Name:     s.Name,
		Cells:    append([]Coord(nil), s.Cells...),
		State:    s.State,
		Anchor:   s.Anchor,
		Vertical: s.Vertical,
		Length:   s.Length,
		Width:    width,
		Height:   height,
	}
}

// ToShip rebuilds a ship from its record
func (r ShipRecord) ToShip() *Ship {
	length := r.Length
	if length == 0 {
		length = len(r.Cells)
	}
	return &Ship{
		Name:     r.Name,
		Cells:    append([]Coord(nil), r.Cells...),
		State:    r.State,
		Anchor:   r.Anchor,
		Vertical: r.Vertical,
		Length:   length,
	}
}

// Board returns the snapshot board for a side
func (s *Snapshot) Board(side Side) *Board {
	if side == SidePlayer {
		return &s.PlayerBoard
	}
	return &s.CPUBoard
}

// Ships returns the snapshot ship records for a side
func (s *Snapshot) Ships(side Side) []ShipRecord {
	if side == SidePlayer {
		return s.PlayerShips
	}
	return s.CPUShips
}

// Validate checks that the snapshot describes a session that can be restored.
// Any problem is reported as ErrCorruptSnapshot.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrCorruptSnapshot)
	}
	if s.Version <= 0 || s.Version > SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, s.Version)
	}
	if !s.CurrentTurn.Valid() {
		return fmt.Errorf("%w: invalid turn %d", ErrCorruptSnapshot, s.CurrentTurn)
	}
	if len(s.PlayerShips) > FleetSize || len(s.CPUShips) > FleetSize {
		return fmt.Errorf("%w: too many ships", ErrCorruptSnapshot)
	}
	for _, side := range []Side{SidePlayer, SideCPU} {
		if err := validateSide(s.Board(side), s.Ships(side)); err != nil {
			return fmt.Errorf("%w: %s %s", ErrCorruptSnapshot, side, err)
		}
	}
	return nil
}

// validateSide checks that every hit was shot at on an occupied cell and that
// every ship cell is on the board and occupied
func validateSide(board *Board, records []ShipRecord) error {
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			if board.Hit[row][col] && !(board.Occupied[row][col] && board.ShotAt[row][col]) {
				return fmt.Errorf("hit at (%d, %d) without a shot ship cell", col, row)
			}
		}
	}
	for _, r := range records {
		for _, c := range r.Cells {
			if !c.InBounds() {
				return fmt.Errorf("ship %s off the board", r.Name)
			}
			if !board.Occupied.Get(c) {
				return fmt.Errorf("ship %s on unoccupied cell (%d, %d)", r.Name, c.Col, c.Row)
			}
		}
	}
	return nil
}
