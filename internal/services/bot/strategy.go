package bot

import "github.com/mcoot/navalcombat/internal/model"

// Strategy defines how the CPU chooses where to fire
type Strategy interface {
	// ChooseTarget picks an un-shot cell given the shots already taken at the
	// opponent. It returns false when every cell has been fired upon.
	ChooseTarget(shots *model.Grid) (model.Coord, bool)
}
