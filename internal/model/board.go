package model

// Board dimensions
const (
	GridRows = 10
	GridCols = 10
)

// Coord identifies a cell on the board
type Coord struct {
	Col int `json:"col"` // 0-indexed from left
	Row int `json:"row"` // 0-indexed from top
}

// InBounds returns true if the coordinate lies on the board
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < GridRows && c.Col >= 0 && c.Col < GridCols
}

// Grid is a row-major boolean matrix: Grid[row][col].
// It is an array, so assigning a Grid copies every cell.
type Grid [GridRows][GridCols]bool

// Get returns the cell value, or false when out of bounds
func (g *Grid) Get(c Coord) bool {
	if !c.InBounds() {
		return false
	}
	return g[c.Row][c.Col]
}

// Set writes the cell value if the coordinate is in bounds
func (g *Grid) Set(c Coord, v bool) {
	if c.InBounds() {
		g[c.Row][c.Col] = v
	}
}

// Count returns the number of true cells
func (g *Grid) Count() int {
	count := 0
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			if g[row][col] {
				count++
			}
		}
	}
	return count
}

// Board holds one side's occupancy and incoming fire
type Board struct {
	Occupied Grid `json:"occupied"` // cell holds a ship segment
	ShotAt   Grid `json:"shot_at"`  // cell has been fired upon by the opponent
	Hit      Grid `json:"hit"`      // occupied and shot at
}

// CanPlace reports whether a width x height rectangle anchored at
// (startCol, startRow) fits on the board without touching an occupied cell
func (b *Board) CanPlace(startCol, startRow, width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if startCol < 0 || startRow < 0 || startCol+width > GridCols || startRow+height > GridRows {
		return false
	}
	for row := startRow; row < startRow+height; row++ {
		for col := startCol; col < startCol+width; col++ {
			if b.Occupied[row][col] {
				return false
			}
		}
	}
	return true
}

// Place marks the rectangle as occupied. Callers validate with CanPlace first;
// restore paths rely on Place not re-validating.
func (b *Board) Place(startCol, startRow, width, height int) {
	b.fill(startCol, startRow, width, height, true)
}

// Remove clears the rectangle's occupancy
func (b *Board) Remove(startCol, startRow, width, height int) {
	b.fill(startCol, startRow, width, height, false)
}

func (b *Board) fill(startCol, startRow, width, height int, v bool) {
	for _, c := range Cells(startCol, startRow, width, height) {
		b.Occupied.Set(c, v)
	}
}

// ClearOccupancy empties the occupancy grid
func (b *Board) ClearOccupancy() {
	b.Occupied = Grid{}
}

// NearestValidPosition returns the preferred anchor if the footprint fits there,
// otherwise the first fitting anchor found walking outward ring by ring
// (Chebyshev distance), scanning delta-row then delta-col on each ring.
func (b *Board) NearestValidPosition(preferredCol, preferredRow, width, height int) (Coord, bool) {
	if b.CanPlace(preferredCol, preferredRow, width, height) {
		return Coord{Col: preferredCol, Row: preferredRow}, true
	}

	maxDistance := max(GridRows, GridCols)
	for distance := 1; distance <= maxDistance; distance++ {
		for dRow := -distance; dRow <= distance; dRow++ {
			for dCol := -distance; dCol <= distance; dCol++ {
				// Interior cells belong to an earlier ring
				if abs(dRow) != distance && abs(dCol) != distance {
					continue
				}
				col, row := preferredCol+dCol, preferredRow+dRow
				if b.CanPlace(col, row, width, height) {
					return Coord{Col: col, Row: row}, true
				}
			}
		}
	}
	return Coord{}, false
}

// Cells lists the coordinates covered by a rectangle, row by row
func Cells(startCol, startRow, width, height int) []Coord {
	if width <= 0 || height <= 0 {
		return nil
	}
	cells := make([]Coord, 0, width*height)
	for row := startRow; row < startRow+height; row++ {
		for col := startCol; col < startCol+width; col++ {
			cells = append(cells, Coord{Col: col, Row: row})
		}
	}
	return cells
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
