package model

// ShipState is the damage state of a ship
type ShipState int

const (
	ShipIntact  ShipState = 0
	ShipDamaged ShipState = 1
	ShipSunk    ShipState = 2
)

// String returns a lowercase label for the state
func (s ShipState) String() string {
	switch s {
	case ShipIntact:
		return "intact"
	case ShipDamaged:
		return "damaged"
	case ShipSunk:
		return "sunk"
	default:
		return "unknown"
	}
}

// Footprint describes one ship of the fixed fleet in horizontal orientation
type Footprint struct {
	Name   string
	Length int
}

// Dimensions returns the width and height in cells for the given orientation
func (f Footprint) Dimensions(vertical bool) (width, height int) {
	if vertical {
		return 1, f.Length
	}
	return f.Length, 1
}

// FleetComposition is the fixed fleet, largest ship first
var FleetComposition = []Footprint{
	{Name: "Carrier", Length: 4},
	{Name: "Submarine-1", Length: 3},
	{Name: "Submarine-2", Length: 3},
	{Name: "Destroyer-1", Length: 2},
	{Name: "Destroyer-2", Length: 2},
	{Name: "Destroyer-3", Length: 2},
	{Name: "Frigate-1", Length: 1},
	{Name: "Frigate-2", Length: 1},
	{Name: "Frigate-3", Length: 1},
	{Name: "Frigate-4", Length: 1},
}

// FleetSize is the number of ships each side owns
const FleetSize = 10

// FleetCells is the total number of occupied cells in a complete fleet
const FleetCells = 20

// ShipView is what a caller hands the engine to describe a placed ship.
// A negative grid position means the ship has not been dropped on the board.
type ShipView interface {
	GridPosition() Coord
	DimensionsInCells() (width, height int)
}

// Ship is one vessel and its damage state
type Ship struct {
	Name     string    `json:"name"`
	Cells    []Coord   `json:"cells"`
	State    ShipState `json:"state"`
	Anchor   Coord     `json:"anchor"`
	Vertical bool      `json:"vertical"`
	Length   int       `json:"length"`
}

// NewShip creates an unplaced ship for a footprint
func NewShip(fp Footprint) *Ship {
	return &Ship{
		Name:   fp.Name,
		Length: fp.Length,
		Anchor: Coord{Col: -1, Row: -1},
	}
}

// Size returns the number of cells the ship occupies
func (s *Ship) Size() int {
	return len(s.Cells)
}

// IsPlaced returns true if the ship occupies any cells
func (s *Ship) IsPlaced() bool {
	return len(s.Cells) > 0
}

// Contains returns true if the ship occupies the coordinate
func (s *Ship) Contains(c Coord) bool {
	for _, cell := range s.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

// AllHit returns true if every cell of the ship is set in the hit grid
func (s *Ship) AllHit(hit *Grid) bool {
	for _, cell := range s.Cells {
		if !hit.Get(cell) {
			return false
		}
	}
	return true
}

// SetPosition moves the ship to an anchor and orientation, recomputing its cells
func (s *Ship) SetPosition(anchor Coord, vertical bool) {
	width, height := Footprint{Length: s.Length}.Dimensions(vertical)
	s.Anchor = anchor
	s.Vertical = vertical
	s.Cells = Cells(anchor.Col, anchor.Row, width, height)
}

// ClearPosition unplaces the ship
func (s *Ship) ClearPosition() {
	s.Anchor = Coord{Col: -1, Row: -1}
	s.Cells = nil
}

// GridPosition implements ShipView
func (s *Ship) GridPosition() Coord {
	if !s.IsPlaced() {
		return Coord{Col: -1, Row: -1}
	}
	return s.Anchor
}

// DimensionsInCells implements ShipView
func (s *Ship) DimensionsInCells() (width, height int) {
	return Footprint{Length: s.Length}.Dimensions(s.Vertical)
}

// Clone returns a deep copy of the ship
func (s *Ship) Clone() *Ship {
	c := *s
	c.Cells = append([]Coord(nil), s.Cells...)
	return &c
}

var _ ShipView = (*Ship)(nil)
