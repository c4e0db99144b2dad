package bot

import (
	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/model"
)

// MaxRandomDraws is how many random cells are tried before falling back to a scan
const MaxRandomDraws = 200

// RandomStrategy fires at uniformly random un-shot cells
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseTarget draws random cells until it finds one not yet shot at.
// After MaxRandomDraws misses it takes the first free cell in row-major order,
// so a nearly full board still terminates quickly.
func (s *RandomStrategy) ChooseTarget(shots *model.Grid) (model.Coord, bool) {
	for range MaxRandomDraws {
		c := model.Coord{
			Col: s.random.Intn(model.GridCols),
			Row: s.random.Intn(model.GridRows),
		}
		if !shots.Get(c) {
			return c, true
		}
	}

	for row := 0; row < model.GridRows; row++ {
		for col := 0; col < model.GridCols; col++ {
			if !shots[row][col] {
				return model.Coord{Col: col, Row: row}, true
			}
		}
	}
	return model.Coord{}, false
}

var _ Strategy = (*RandomStrategy)(nil)
