package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/navalcombat/internal/dependencies/mocks"
	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/placer"
	"github.com/mcoot/navalcombat/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = newSeededEngine(42)
}

func newSeededEngine(seed uint64) *Engine {
	logger := testutil.NopLogger()
	return NewEngine(placer.New(random.NewSeeded(seed), logger), logger)
}

// placeRowFleet puts ship i horizontally at the start of row i
func (s *EngineSuite) placeRowFleet() {
	views := make([]model.ShipView, 0, model.FleetSize)
	for i, fp := range model.FleetComposition {
		s.Require().True(s.engine.CanPlaceShip(model.SidePlayer, 0, i, fp.Length, 1))
		s.engine.PlaceShip(model.SidePlayer, 0, i, fp.Length, 1)
		ship := model.NewShip(fp)
		ship.SetPosition(model.Coord{Col: 0, Row: i}, false)
		views = append(views, ship)
	}
	s.engine.SetPlayerFleet(views)
}

func (s *EngineSuite) startGame() {
	s.placeRowFleet()
	s.Require().NoError(s.engine.Start())
}

func (s *EngineSuite) cpuCells() []model.Coord {
	var cells []model.Coord
	for _, ship := range s.engine.Fleet(model.SideCPU) {
		cells = append(cells, ship.Cells...)
	}
	return cells
}

// Placement tests

func (s *EngineSuite) TestCanPlaceShipRejectsOutOfBounds() {
	s.False(s.engine.CanPlaceShip(model.SidePlayer, 7, 0, 4, 1))
	s.False(s.engine.CanPlaceShip(model.SidePlayer, 0, 8, 1, 3))
	s.False(s.engine.CanPlaceShip(model.SidePlayer, -1, 0, 1, 1))
	s.True(s.engine.CanPlaceShip(model.SidePlayer, 6, 0, 4, 1))
}

func (s *EngineSuite) TestCanPlaceShipRejectsOverlap() {
	s.engine.PlaceShip(model.SidePlayer, 2, 2, 3, 1)

	s.False(s.engine.CanPlaceShip(model.SidePlayer, 4, 0, 1, 3))
	s.True(s.engine.CanPlaceShip(model.SidePlayer, 5, 0, 1, 3))
	// The CPU board is independent
	s.True(s.engine.CanPlaceShip(model.SideCPU, 4, 0, 1, 3))
}

func (s *EngineSuite) TestCanPlaceShipInvalidSide() {
	s.False(s.engine.CanPlaceShip(model.Side(7), 0, 0, 1, 1))
}

func (s *EngineSuite) TestPlaceShipUsesColumnRowAxes() {
	s.engine.PlaceShip(model.SidePlayer, 7, 2, 1, 3)

	grid := s.engine.Occupancy(model.SidePlayer)
	s.True(grid[2][7])
	s.True(grid[4][7])
	s.False(grid[7][2])
	s.Equal(3, grid.Count())
}

func (s *EngineSuite) TestRemoveShipClearsPlayerCells() {
	s.engine.PlaceShip(model.SidePlayer, 0, 0, 4, 1)
	s.engine.RemoveShip(0, 0, 4, 1)

	grid := s.engine.Occupancy(model.SidePlayer)
	s.Equal(0, grid.Count())
	s.True(s.engine.CanPlaceShip(model.SidePlayer, 0, 0, 4, 1))
}

func (s *EngineSuite) TestFindNearestValidPositionReturnsPreferredWhenFree() {
	pos, ok := s.engine.FindNearestValidPosition(3, 3, 2, 1)
	s.True(ok)
	s.Equal(model.Coord{Col: 3, Row: 3}, pos)
}

func (s *EngineSuite) TestFindNearestValidPositionShiftsOffEdge() {
	pos, ok := s.engine.FindNearestValidPosition(8, 0, 4, 1)
	s.Require().True(ok)
	s.True(s.engine.CanPlaceShip(model.SidePlayer, pos.Col, pos.Row, 4, 1))
	s.Equal(0, pos.Row)
	s.Equal(6, pos.Col)
}

func (s *EngineSuite) TestFindNearestValidPositionFullBoard() {
	for row := 0; row < model.GridRows; row++ {
		s.engine.PlaceShip(model.SidePlayer, 0, row, model.GridCols, 1)
	}
	_, ok := s.engine.FindNearestValidPosition(5, 5, 1, 1)
	s.False(ok)
}

func (s *EngineSuite) TestSetPlayerFleetKeepsUnplacedViews() {
	placed := model.NewShip(model.FleetComposition[0])
	placed.SetPosition(model.Coord{Col: 1, Row: 1}, true)
	unplaced := model.NewShip(model.FleetComposition[1])

	s.engine.SetPlayerFleet([]model.ShipView{placed, unplaced})

	fleet := s.engine.Fleet(model.SidePlayer)
	s.Require().Len(fleet, 2)
	s.Equal("Carrier", fleet[0].Name)
	s.True(fleet[0].Vertical)
	s.Equal([]model.Coord{{Col: 1, Row: 1}, {Col: 1, Row: 2}, {Col: 1, Row: 3}, {Col: 1, Row: 4}}, fleet[0].Cells)
	s.False(fleet[1].IsPlaced())
}

func (s *EngineSuite) TestAutoPlacePlayerFleetIsComplete() {
	s.Require().NoError(s.engine.AutoPlacePlayerFleet())

	fleet := s.engine.Fleet(model.SidePlayer)
	s.Len(fleet, model.FleetSize)
	grid := s.engine.Occupancy(model.SidePlayer)
	s.Equal(model.FleetCells, grid.Count())
}

// Start tests

func (s *EngineSuite) TestStartRequiresCompleteFleet() {
	err := s.engine.Start()
	s.ErrorIs(err, model.ErrFleetIncomplete)
	s.Equal(model.PhaseSetup, s.engine.Phase())
}

func (s *EngineSuite) TestStartPlacesCPUFleet() {
	s.startGame()

	s.Equal(model.PhaseInProgress, s.engine.Phase())
	s.Equal(model.SidePlayer, s.engine.CurrentTurn())

	sizes := make([]int, 0, model.FleetSize)
	for _, ship := range s.engine.Fleet(model.SideCPU) {
		sizes = append(sizes, ship.Size())
	}
	s.Equal([]int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}, sizes)

	grid := s.engine.Occupancy(model.SideCPU)
	s.Equal(model.FleetCells, grid.Count())
}

func (s *EngineSuite) TestStartTwice() {
	s.startGame()
	s.ErrorIs(s.engine.Start(), model.ErrGameAlreadyStarted)
}

func (s *EngineSuite) TestStartWithExhaustedPlacementStillStarts() {
	logger := testutil.NopLogger()
	rnd := mocks.NewMockRandom() // all zeros: only the carrier fits
	s.engine = NewEngine(placer.New(rnd, logger).WithMaxAttempts(5), logger)
	s.placeRowFleet()

	err := s.engine.Start()
	s.ErrorIs(err, model.ErrPlacementExhausted)
	s.Equal(model.PhaseInProgress, s.engine.Phase())

	grid := s.engine.Occupancy(model.SideCPU)
	s.Equal(4, grid.Count())
}

// Fire tests

func (s *EngineSuite) TestFireBeforeStart() {
	s.Equal(model.OutcomeError, s.engine.Fire(0, 0, model.SidePlayer))
	grid := s.engine.ShotGrid(model.SideCPU)
	s.Equal(0, grid.Count())
}

func (s *EngineSuite) TestFireRejectsInvalidInput() {
	s.startGame()

	s.Equal(model.OutcomeError, s.engine.Fire(-1, 0, model.SidePlayer))
	s.Equal(model.OutcomeError, s.engine.Fire(0, 10, model.SidePlayer))
	s.Equal(model.OutcomeError, s.engine.Fire(0, 0, model.Side(3)))

	grid := s.engine.ShotGrid(model.SideCPU)
	s.Equal(0, grid.Count())
}

func (s *EngineSuite) TestFireMissThenAlreadyShot() {
	s.startGame()

	// Player ships only cover the left of each row, so the far right column is water
	s.Equal(model.OutcomeMiss, s.engine.Fire(9, 0, model.SideCPU))
	s.Equal(model.OutcomeAlreadyShot, s.engine.Fire(9, 0, model.SideCPU))

	shots := s.engine.ShotGrid(model.SidePlayer)
	s.Equal(1, shots.Count())
	hits := s.engine.HitGrid(model.SidePlayer)
	s.Equal(0, hits.Count())
}

func (s *EngineSuite) TestFireHitDamagesShip() {
	s.startGame()

	s.Equal(model.OutcomeHit, s.engine.Fire(0, 0, model.SideCPU))

	carrier := s.engine.Fleet(model.SidePlayer)[0]
	s.Equal(model.ShipDamaged, carrier.State)
	s.True(s.engine.HitGrid(model.SidePlayer)[0][0])
}

func (s *EngineSuite) TestFireSinksShipAndStaysSunk() {
	s.startGame()

	for col := 0; col < 3; col++ {
		s.Equal(model.OutcomeHit, s.engine.Fire(col, 0, model.SideCPU))
	}
	s.Equal(model.OutcomeSunk, s.engine.Fire(3, 0, model.SideCPU))
	s.Equal(model.ShipSunk, s.engine.Fleet(model.SidePlayer)[0].State)

	// Re-firing at a sunk ship changes nothing
	s.Equal(model.OutcomeAlreadyShot, s.engine.Fire(1, 0, model.SideCPU))
	s.Equal(model.ShipSunk, s.engine.Fleet(model.SidePlayer)[0].State)
}

func (s *EngineSuite) TestFireOnFrigateSinksImmediately() {
	s.startGame()
	s.Equal(model.OutcomeSunk, s.engine.Fire(0, 9, model.SideCPU))
}

func (s *EngineSuite) TestFireOwnerlessHit() {
	s.startGame()

	free := model.Coord{Col: -1}
	occupied := s.engine.Occupancy(model.SideCPU)
	for row := 0; row < model.GridRows && free.Col < 0; row++ {
		for col := 0; col < model.GridCols; col++ {
			if !occupied[row][col] {
				free = model.Coord{Col: col, Row: row}
				break
			}
		}
	}
	s.engine.PlaceShip(model.SideCPU, free.Col, free.Row, 1, 1)

	s.Equal(model.OutcomeHit, s.engine.Fire(free.Col, free.Row, model.SidePlayer))
	s.Equal(model.PhaseInProgress, s.engine.Phase())
}

func (s *EngineSuite) TestPlayerWinsAndGameStaysOver() {
	s.startGame()

	cells := s.cpuCells()
	s.Require().Len(cells, model.FleetCells)

	var last model.Outcome
	for i, c := range cells {
		s.False(s.engine.AllSunk(model.SideCPU), "fleet sunk before shot %d", i+1)
		last = s.engine.Fire(c.Col, c.Row, model.SidePlayer)
	}
	s.Equal(model.OutcomeWinPlayer, last)
	s.Equal(model.PhaseEnded, s.engine.Phase())
	s.Equal(model.WinnerPlayer, s.engine.Session().Winner)
	s.True(s.engine.AllSunk(model.SideCPU))

	// Hit, missed and untouched cells all report the game is over
	gameOver := 0
	for row := 0; row < model.GridRows; row++ {
		for col := 0; col < model.GridCols; col++ {
			s.Equal(model.OutcomeGameOver, s.engine.Fire(col, row, model.SidePlayer))
			gameOver++
		}
	}
	s.Equal(model.GridRows*model.GridCols, gameOver)
	s.Equal(model.OutcomeGameOver, s.engine.Fire(0, 0, model.SideCPU))
	s.Equal(model.WinnerPlayer, s.engine.Session().Winner)
	s.True(s.engine.AllSunk(model.SideCPU))

	shots := s.engine.ShotGrid(model.SideCPU)
	s.Equal(model.FleetCells, shots.Count())
}

func (s *EngineSuite) TestCPUWins() {
	s.startGame()

	var last model.Outcome
	for i, fp := range model.FleetComposition {
		for col := 0; col < fp.Length; col++ {
			last = s.engine.Fire(col, i, model.SideCPU)
		}
	}
	s.Equal(model.OutcomeWinCPU, last)
	s.Equal(model.WinnerCPU, s.engine.Session().Winner)
	s.False(s.engine.AllSunk(model.SideCPU))
}

func (s *EngineSuite) TestAllSunkWithoutShips() {
	s.False(s.engine.AllSunk(model.SidePlayer))
	s.False(s.engine.AllSunk(model.SideCPU))
}

func (s *EngineSuite) TestRemainingTargets() {
	s.startGame()
	s.True(s.engine.RemainingTargets(model.SideCPU))

	for row := 0; row < model.GridRows; row++ {
		for col := 0; col < model.GridCols; col++ {
			if s.engine.Phase() == model.PhaseEnded {
				break
			}
			s.engine.Fire(col, row, model.SideCPU)
		}
	}
	// The CPU wins before exhausting the board
	s.True(s.engine.RemainingTargets(model.SideCPU))
	s.False(s.engine.RemainingTargets(model.Side(9)))
}

func (s *EngineSuite) TestResetReturnsToSetup() {
	s.startGame()
	s.engine.Fire(0, 0, model.SideCPU)

	s.engine.Reset()

	s.Equal(model.PhaseSetup, s.engine.Phase())
	s.Empty(s.engine.Fleet(model.SidePlayer))
	grid := s.engine.Occupancy(model.SidePlayer)
	s.Equal(0, grid.Count())
	s.Equal(model.DefaultNickname, s.engine.Session().Nickname)
}

// Copy semantics

func (s *EngineSuite) TestViewsAreCopies() {
	s.startGame()

	grid := s.engine.Occupancy(model.SidePlayer)
	grid[9][9] = true
	s.False(s.engine.Occupancy(model.SidePlayer)[9][9])

	fleet := s.engine.Fleet(model.SidePlayer)
	fleet[0].State = model.ShipSunk
	fleet[0].Cells[0] = model.Coord{Col: 9, Row: 9}
	s.Equal(model.ShipIntact, s.engine.Fleet(model.SidePlayer)[0].State)
	s.Equal(model.Coord{Col: 0, Row: 0}, s.engine.Fleet(model.SidePlayer)[0].Cells[0])
}

// Snapshot tests

func (s *EngineSuite) TestSnapshotRoundTrip() {
	s.engine.SetNickname("Ahab")
	s.startGame()

	// Misses, a damaged carrier and a sunk frigate on the player board
	s.engine.Fire(9, 9, model.SideCPU)
	s.engine.Fire(7, 2, model.SideCPU)
	s.engine.Fire(0, 0, model.SideCPU)
	s.engine.Fire(0, 6, model.SideCPU)
	// One shot on the CPU board
	s.engine.Fire(5, 5, model.SidePlayer)
	s.engine.MarkFirstPlayerMove()
	s.engine.SetCurrentTurn(model.SideCPU)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := s.engine.Snapshot(now)
	s.Equal(now.UnixMilli(), snap.SavedAt)
	s.Equal(model.SnapshotVersion, snap.Version)

	restored := newSeededEngine(7)
	s.Require().NoError(restored.Restore(snap))

	s.Equal(s.engine.Session(), restored.Session())
	s.Equal("Ahab", restored.Session().Nickname)
	s.Equal(model.SideCPU, restored.CurrentTurn())
	s.True(restored.Session().FirstPlayerMoveDone)

	// Column 7, row 2 must not come back transposed
	shots := restored.ShotGrid(model.SidePlayer)
	s.True(shots[2][7])
	s.False(shots[7][2])

	fleet := restored.Fleet(model.SidePlayer)
	s.Equal(model.ShipDamaged, fleet[0].State)
	s.Equal(model.ShipSunk, fleet[6].State)
	s.Equal(model.ShipIntact, fleet[1].State)
}

func (s *EngineSuite) TestRestoredGameContinues() {
	s.startGame()
	snap := s.engine.Snapshot(time.Now())

	restored := newSeededEngine(7)
	s.Require().NoError(restored.Restore(snap))

	s.Equal(model.OutcomeHit, restored.Fire(0, 0, model.SideCPU))
	s.Equal(model.OutcomeAlreadyShot, restored.Fire(0, 0, model.SideCPU))
	// The original is untouched
	s.False(s.engine.ShotGrid(model.SidePlayer)[0][0])
}

func (s *EngineSuite) TestSnapshotIsDetached() {
	s.startGame()
	snap := s.engine.Snapshot(time.Now())

	snap.PlayerBoard.Occupied[9][9] = true
	snap.PlayerShips[0].Cells[0] = model.Coord{Col: 5, Row: 5}

	s.False(s.engine.Occupancy(model.SidePlayer)[9][9])
	s.Equal(model.Coord{Col: 0, Row: 0}, s.engine.Fleet(model.SidePlayer)[0].Cells[0])
}

func (s *EngineSuite) TestRestoreRejectsBadSnapshots() {
	s.ErrorIs(s.engine.Restore(nil), model.ErrCorruptSnapshot)

	snap := s.engine.Snapshot(time.Now())
	snap.Version = model.SnapshotVersion + 1
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	snap = s.engine.Snapshot(time.Now())
	snap.CurrentTurn = model.Side(4)
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	snap = s.engine.Snapshot(time.Now())
	snap.CPUShips = []model.ShipRecord{{Name: "Ghost", Cells: []model.Coord{{Col: 10, Row: 0}}, Length: 1}}
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	s.startGame()

	// A hit on open water
	snap = s.engine.Snapshot(time.Now())
	snap.PlayerBoard.ShotAt[9][9] = true
	snap.PlayerBoard.Hit[9][9] = true
	s.Require().False(snap.PlayerBoard.Occupied[9][9])
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	// A hit that was never fired
	snap = s.engine.Snapshot(time.Now())
	snap.PlayerBoard.Hit[0][0] = true
	s.Require().True(snap.PlayerBoard.Occupied[0][0])
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	// A ship whose cells were cleared from the board
	snap = s.engine.Snapshot(time.Now())
	cell := snap.CPUShips[0].Cells[0]
	snap.CPUBoard.Occupied[cell.Row][cell.Col] = false
	s.ErrorIs(s.engine.Restore(snap), model.ErrCorruptSnapshot)

	// The rejected snapshots left the running game alone
	s.Equal(model.PhaseInProgress, s.engine.Phase())
	s.NoError(s.engine.Restore(s.engine.Snapshot(time.Now())))
}
