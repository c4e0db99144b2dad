package placer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/model"
)

// DefaultMaxAttempts is the number of random draws tried per ship
const DefaultMaxAttempts = 1000

// Placer lays out a fleet at random positions
type Placer struct {
	random      random.Random
	maxAttempts int
	logger      *slog.Logger
}

// New creates a Placer with the default attempt budget
func New(rnd random.Random, logger *slog.Logger) *Placer {
	return &Placer{
		random:      rnd,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger.With(slog.String("component", "placer")),
	}
}

// WithMaxAttempts returns a copy of the placer using a different attempt budget
func (p *Placer) WithMaxAttempts(n int) *Placer {
	c := *p
	c.maxAttempts = n
	return &c
}

// PlaceFleet clears the board's occupancy and places every ship of the fixed
// fleet, largest first. A ship that can't be placed within the attempt budget
// is left unplaced and reported in the returned error; the returned slice
// always has one entry per footprint.
func (p *Placer) PlaceFleet(board *model.Board) ([]*model.Ship, error) {
	board.ClearOccupancy()

	ships := make([]*model.Ship, len(model.FleetComposition))
	var errs []error

	for i, fp := range model.FleetComposition {
		ship := model.NewShip(fp)
		ships[i] = ship

		if !p.placeShip(board, ship, fp) {
			p.logger.Error("could not place ship",
				slog.String("ship", fp.Name),
				slog.Int("attempts", p.maxAttempts),
			)
			errs = append(errs, fmt.Errorf("%w: %s", model.ErrPlacementExhausted, fp.Name))
			continue
		}

		p.logger.Debug("ship placed",
			slog.String("ship", fp.Name),
			slog.Int("col", ship.Anchor.Col),
			slog.Int("row", ship.Anchor.Row),
			slog.Bool("vertical", ship.Vertical),
		)
	}

	return ships, errors.Join(errs...)
}

func (p *Placer) placeShip(board *model.Board, ship *model.Ship, fp model.Footprint) bool {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		col := p.random.Intn(model.GridCols)
		row := p.random.Intn(model.GridRows)
		vertical := p.random.Intn(2) == 1

		width, height := fp.Dimensions(vertical)
		if !board.CanPlace(col, row, width, height) {
			continue
		}

		board.Place(col, row, width, height)
		ship.SetPosition(model.Coord{Col: col, Row: row}, vertical)
		return true
	}
	return false
}
