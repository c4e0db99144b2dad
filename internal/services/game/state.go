package game

import "github.com/mcoot/navalcombat/internal/model"

// State is what the player is allowed to see of a session: their own board
// in full, and only their shots and hits on the CPU board
type State struct {
	GameID              model.GameID
	Phase               model.Phase
	Turn                model.Side
	Winner              model.Winner
	Nickname            string
	FirstPlayerMoveDone bool

	PlayerBoard model.Board
	PlayerFleet []*model.Ship

	TargetShots         model.Grid
	TargetHits          model.Grid
	SunkEnemyShips      []*model.Ship
	EnemyShipsRemaining int
}

// FireResult is the outcome of a player shot and any CPU shots that followed
type FireResult struct {
	Shot     model.Shot
	CPUShots []model.Shot
	Turn     model.Side
	Phase    model.Phase
	Winner   model.Winner
}

func (c *Controller) stateLocked() *State {
	session := c.engine.Session()
	cpuBoard := session.Board(model.SideCPU)

	state := &State{
		GameID:              c.gameID,
		Phase:               session.Phase(),
		Turn:                session.CurrentTurn,
		Winner:              session.Winner,
		Nickname:            session.Nickname,
		FirstPlayerMoveDone: session.FirstPlayerMoveDone,
		PlayerBoard:         *session.Board(model.SidePlayer),
		PlayerFleet:         session.Fleet(model.SidePlayer),
		TargetShots:         cpuBoard.ShotAt,
		TargetHits:          cpuBoard.Hit,
	}

	for _, ship := range session.Fleet(model.SideCPU) {
		if ship == nil || !ship.IsPlaced() {
			continue
		}
		if ship.State == model.ShipSunk {
			state.SunkEnemyShips = append(state.SunkEnemyShips, ship)
		} else {
			state.EnemyShipsRemaining++
		}
	}
	return state
}
