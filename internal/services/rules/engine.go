package rules

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/placer"
)

// Engine owns one session's boards and fleets and resolves every placement and shot.
// It does no locking: callers must serialize access.
type Engine struct {
	session *model.Session
	placer  *placer.Placer
	logger  *slog.Logger
}

// NewEngine creates an engine holding a blank session
func NewEngine(placer *placer.Placer, logger *slog.Logger) *Engine {
	return &Engine{
		session: model.NewSession(),
		placer:  placer,
		logger:  logger.With(slog.String("component", "rules")),
	}
}

// Placement

// CanPlaceShip reports whether a rectangle fits on a side's board
func (e *Engine) CanPlaceShip(side model.Side, col, row, width, height int) bool {
	if !side.Valid() {
		return false
	}
	return e.session.Board(side).CanPlace(col, row, width, height)
}

// PlaceShip marks a rectangle occupied on a side's board without re-validating
func (e *Engine) PlaceShip(side model.Side, col, row, width, height int) {
	if !side.Valid() {
		return
	}
	e.session.Board(side).Place(col, row, width, height)
}

// RemoveShip frees a rectangle on the player's board. The CPU fleet never moves.
func (e *Engine) RemoveShip(col, row, width, height int) {
	e.session.Board(model.SidePlayer).Remove(col, row, width, height)
}

// FindNearestValidPosition searches the player board for the closest anchor that fits
func (e *Engine) FindNearestValidPosition(col, row, width, height int) (model.Coord, bool) {
	return e.session.Board(model.SidePlayer).NearestValidPosition(col, row, width, height)
}

// SetPlayerFleet replaces the player's ships with the given views, in fleet order.
// Views with a negative grid position become unplaced ships.
func (e *Engine) SetPlayerFleet(views []model.ShipView) {
	ships := make([]*model.Ship, 0, model.FleetSize)
	for i := 0; i < len(views) && i < model.FleetSize; i++ {
		ships = append(ships, shipFromView(i, views[i]))
	}
	e.session.Fleets[model.SidePlayer] = ships
}

func shipFromView(index int, view model.ShipView) *model.Ship {
	width, height := view.DimensionsInCells()
	fp := model.Footprint{Name: fmt.Sprintf("Ship-%d", index+1), Length: max(width, height)}
	if index < len(model.FleetComposition) {
		fp.Name = model.FleetComposition[index].Name
	}

	ship := model.NewShip(fp)
	pos := view.GridPosition()
	if pos.Col >= 0 && pos.Row >= 0 {
		ship.SetPosition(pos, height > width)
	}
	return ship
}

// AutoPlacePlayerFleet lays out the player's fleet at random
func (e *Engine) AutoPlacePlayerFleet() error {
	ships, err := e.placer.PlaceFleet(e.session.Board(model.SidePlayer))
	e.session.Fleets[model.SidePlayer] = ships
	return err
}

// Lifecycle

// Start moves the session from setup to in progress and lays out the CPU fleet.
// If a CPU ship can't be placed the game still starts with the ships that fit,
// and the placement error is returned.
func (e *Engine) Start() error {
	if e.session.GameStarted {
		return model.ErrGameAlreadyStarted
	}
	if !fleetComplete(e.session.Fleet(model.SidePlayer)) {
		return model.ErrFleetIncomplete
	}

	ships, err := e.placer.PlaceFleet(e.session.Board(model.SideCPU))
	e.session.Fleets[model.SideCPU] = ships
	e.session.GameStarted = true
	e.session.CurrentTurn = model.SidePlayer

	if err != nil {
		e.logger.Error("cpu fleet incomplete", slog.String("error", err.Error()))
		return err
	}

	e.logger.Info("game started", slog.String("nickname", e.session.Nickname))
	return nil
}

func fleetComplete(ships []*model.Ship) bool {
	if len(ships) != model.FleetSize {
		return false
	}
	cells := 0
	for _, ship := range ships {
		if ship == nil || !ship.IsPlaced() {
			return false
		}
		cells += ship.Size()
	}
	return cells == model.FleetCells
}

// Reset discards all state and returns to a blank setup session
func (e *Engine) Reset() {
	e.session = model.NewSession()
}

// Shots

// Fire resolves a shot by shooter at (col, row) on the opponent's board
func (e *Engine) Fire(col, row int, shooter model.Side) model.Outcome {
	s := e.session
	if s.GameEnded {
		return model.OutcomeGameOver
	}

	target := model.Coord{Col: col, Row: row}
	if !shooter.Valid() || !target.InBounds() {
		e.logger.Warn("rejected shot",
			slog.String("shooter", shooter.String()),
			slog.Int("col", col),
			slog.Int("row", row),
		)
		return model.OutcomeError
	}
	if !s.GameStarted {
		e.logger.Warn("shot fired before game start", slog.String("shooter", shooter.String()))
		return model.OutcomeError
	}

	defender := shooter.Opponent()
	board := s.Board(defender)

	if board.ShotAt.Get(target) {
		return model.OutcomeAlreadyShot
	}
	board.ShotAt.Set(target, true)

	if !board.Occupied.Get(target) {
		return model.OutcomeMiss
	}
	board.Hit.Set(target, true)

	ship := findShip(s.Fleet(defender), target)
	if ship == nil {
		e.logger.Error("hit cell has no owning ship",
			slog.String("defender", defender.String()),
			slog.Int("col", col),
			slog.Int("row", row),
		)
		return model.OutcomeHit
	}

	if !ship.AllHit(&board.Hit) {
		ship.State = model.ShipDamaged
		return model.OutcomeHit
	}
	ship.State = model.ShipSunk

	if e.AllSunk(defender) {
		s.GameEnded = true
		s.Winner = model.WinnerFor(shooter)
		e.logger.Info("fleet destroyed", slog.String("winner", string(s.Winner)))
		return model.WinOutcome(shooter)
	}
	return model.OutcomeSunk
}

func findShip(ships []*model.Ship, c model.Coord) *model.Ship {
	for _, ship := range ships {
		if ship != nil && ship.Contains(c) {
			return ship
		}
	}
	return nil
}

// AllSunk reports whether every placed ship of a side is fully hit.
// A side with no placed ships is never considered sunk.
func (e *Engine) AllSunk(side model.Side) bool {
	if !side.Valid() {
		return false
	}
	hit := &e.session.Board(side).Hit
	sunk := 0
	for _, ship := range e.session.Fleet(side) {
		if ship == nil || ship.Size() == 0 {
			continue
		}
		if !ship.AllHit(hit) {
			return false
		}
		sunk++
	}
	return sunk > 0
}

// RemainingTargets reports whether the shooter has any cell left to fire at
func (e *Engine) RemainingTargets(shooter model.Side) bool {
	if !shooter.Valid() {
		return false
	}
	return e.session.Board(shooter.Opponent()).ShotAt.Count() < model.GridRows*model.GridCols
}

// Turn state, owned by the orchestrator

// SetCurrentTurn records whose turn it is
func (e *Engine) SetCurrentTurn(side model.Side) {
	e.session.CurrentTurn = side
}

// MarkFirstPlayerMove records that the player has fired at least once
func (e *Engine) MarkFirstPlayerMove() {
	e.session.FirstPlayerMoveDone = true
}

// SetNickname sets the player's display name
func (e *Engine) SetNickname(name string) {
	if name == "" {
		name = model.DefaultNickname
	}
	e.session.Nickname = name
}

// Read-only views

// Phase returns the session's lifecycle stage
func (e *Engine) Phase() model.Phase {
	return e.session.Phase()
}

// CurrentTurn returns whose turn it is
func (e *Engine) CurrentTurn() model.Side {
	return e.session.CurrentTurn
}

// Occupancy returns a copy of a side's occupancy grid
func (e *Engine) Occupancy(side model.Side) model.Grid {
	if !side.Valid() {
		return model.Grid{}
	}
	return e.session.Board(side).Occupied
}

// ShotGrid returns a copy of the shots received by a side
func (e *Engine) ShotGrid(side model.Side) model.Grid {
	if !side.Valid() {
		return model.Grid{}
	}
	return e.session.Board(side).ShotAt
}

// HitGrid returns a copy of the hits received by a side
func (e *Engine) HitGrid(side model.Side) model.Grid {
	if !side.Valid() {
		return model.Grid{}
	}
	return e.session.Board(side).Hit
}

// Fleet returns copies of a side's ships
func (e *Engine) Fleet(side model.Side) []*model.Ship {
	if !side.Valid() {
		return nil
	}
	return e.session.Clone().Fleets[side]
}

// Session returns a deep copy of the session
func (e *Engine) Session() *model.Session {
	return e.session.Clone()
}

// Persistence

// Snapshot captures a deep copy of the session stamped with the given time
func (e *Engine) Snapshot(now time.Time) *model.Snapshot {
	s := e.session
	return &model.Snapshot{
		Version:             model.SnapshotVersion,
		PlayerBoard:         s.Boards[model.SidePlayer],
		CPUBoard:            s.Boards[model.SideCPU],
		PlayerShips:         shipRecords(s.Fleet(model.SidePlayer)),
		CPUShips:            shipRecords(s.Fleet(model.SideCPU)),
		GameStarted:         s.GameStarted,
		GameEnded:           s.GameEnded,
		CurrentTurn:         s.CurrentTurn,
		FirstPlayerMoveDone: s.FirstPlayerMoveDone,
		Winner:              s.Winner,
		Nickname:            s.Nickname,
		SavedAt:             now.UnixMilli(),
	}
}

func shipRecords(ships []*model.Ship) []model.ShipRecord {
	records := make([]model.ShipRecord, 0, len(ships))
	for _, ship := range ships {
		if ship != nil {
			records = append(records, model.NewShipRecord(ship))
		}
	}
	return records
}

// Restore replaces the session with the snapshot's contents.
// The snapshot is copied; later changes to it don't reach the engine.
func (e *Engine) Restore(snap *model.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	s := model.NewSession()
	s.Boards[model.SidePlayer] = snap.PlayerBoard
	s.Boards[model.SideCPU] = snap.CPUBoard
	s.Fleets[model.SidePlayer] = shipsFromRecords(snap.PlayerShips)
	s.Fleets[model.SideCPU] = shipsFromRecords(snap.CPUShips)
	s.GameStarted = snap.GameStarted
	s.GameEnded = snap.GameEnded
	s.CurrentTurn = snap.CurrentTurn
	s.FirstPlayerMoveDone = snap.FirstPlayerMoveDone
	s.Winner = snap.Winner
	s.Nickname = snap.Nickname

	e.session = s
	e.logger.Info("session restored",
		slog.String("nickname", s.Nickname),
		slog.String("phase", string(s.Phase())),
	)
	return nil
}

func shipsFromRecords(records []model.ShipRecord) []*model.Ship {
	if len(records) == 0 {
		return nil
	}
	ships := make([]*model.Ship, len(records))
	for i, r := range records {
		ships[i] = r.ToShip()
	}
	return ships
}
