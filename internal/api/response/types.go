package response

import (
	"time"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/game"
)

// Coord is a (col, row) board position
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// CoordFromModel converts a model.Coord
func CoordFromModel(c model.Coord) Coord {
	return Coord{Col: c.Col, Row: c.Row}
}

// Ship represents a ship in API responses
type Ship struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Length   int     `json:"length"`
	Placed   bool    `json:"placed"`
	Anchor   *Coord  `json:"anchor,omitempty"`
	Vertical bool    `json:"vertical"`
	State    string  `json:"state"`
	Cells    []Coord `json:"cells"`
}

// ShipFromModel converts a model.Ship at its fleet index
func ShipFromModel(index int, s *model.Ship) Ship {
	ship := Ship{
		Index:    index,
		Name:     s.Name,
		Length:   s.Length,
		Placed:   s.IsPlaced(),
		Vertical: s.Vertical,
		State:    s.State.String(),
		Cells:    make([]Coord, len(s.Cells)),
	}
	for i, c := range s.Cells {
		ship.Cells[i] = CoordFromModel(c)
	}
	if ship.Placed {
		anchor := CoordFromModel(s.Anchor)
		ship.Anchor = &anchor
	}
	return ship
}

// ShipsFromModel converts a fleet, keeping fleet order as the index
func ShipsFromModel(ships []*model.Ship) []Ship {
	result := make([]Ship, 0, len(ships))
	for i, s := range ships {
		if s == nil {
			continue
		}
		result = append(result, ShipFromModel(i, s))
	}
	return result
}

// OwnBoard is the player's own board, fully visible
type OwnBoard struct {
	Occupied model.Grid `json:"occupied"`
	ShotAt   model.Grid `json:"shot_at"`
	Hit      model.Grid `json:"hit"`
}

// TargetBoard is the CPU board as the player knows it
type TargetBoard struct {
	ShotAt model.Grid `json:"shot_at"`
	Hit    model.Grid `json:"hit"`
}

// GameState is the full player-visible state of the session
type GameState struct {
	GameID              string      `json:"game_id"`
	Phase               string      `json:"phase"`
	Turn                string      `json:"turn"`
	Winner              string      `json:"winner,omitempty"`
	Nickname            string      `json:"nickname"`
	FirstPlayerMoveDone bool        `json:"first_player_move_done"`
	PlayerBoard         OwnBoard    `json:"player_board"`
	PlayerFleet         []Ship      `json:"player_fleet"`
	TargetBoard         TargetBoard `json:"target_board"`
	SunkEnemyShips      []Ship      `json:"sunk_enemy_ships"`
	EnemyShipsRemaining int         `json:"enemy_ships_remaining"`
}

// GameStateFromModel converts a game.State
func GameStateFromModel(s *game.State) GameState {
	return GameState{
		GameID:              string(s.GameID),
		Phase:               string(s.Phase),
		Turn:                s.Turn.String(),
		Winner:              string(s.Winner),
		Nickname:            s.Nickname,
		FirstPlayerMoveDone: s.FirstPlayerMoveDone,
		PlayerBoard: OwnBoard{
			Occupied: s.PlayerBoard.Occupied,
			ShotAt:   s.PlayerBoard.ShotAt,
			Hit:      s.PlayerBoard.Hit,
		},
		PlayerFleet: ShipsFromModel(s.PlayerFleet),
		TargetBoard: TargetBoard{
			ShotAt: s.TargetShots,
			Hit:    s.TargetHits,
		},
		SunkEnemyShips:      ShipsFromModel(s.SunkEnemyShips),
		EnemyShipsRemaining: s.EnemyShipsRemaining,
	}
}

// StartResponse is the response for starting a game. Warning is set when
// the CPU fleet could not be fully placed.
type StartResponse struct {
	Game    GameState `json:"game"`
	Warning string    `json:"warning,omitempty"`
}

// Shot is one resolved shot
type Shot struct {
	Shooter string `json:"shooter"`
	Col     int    `json:"col"`
	Row     int    `json:"row"`
	Outcome string `json:"outcome"`
}

// ShotFromModel converts a model.Shot
func ShotFromModel(s model.Shot) Shot {
	return Shot{
		Shooter: s.Shooter.String(),
		Col:     s.Target.Col,
		Row:     s.Target.Row,
		Outcome: string(s.Outcome),
	}
}

// ShotsFromModel converts a list of shots
func ShotsFromModel(shots []model.Shot) []Shot {
	result := make([]Shot, len(shots))
	for i, s := range shots {
		result[i] = ShotFromModel(s)
	}
	return result
}

// FireResponse is the response for a player shot and the CPU turn it caused
type FireResponse struct {
	Shot     Shot   `json:"shot"`
	CPUShots []Shot `json:"cpu_shots"`
	Turn     string `json:"turn"`
	Phase    string `json:"phase"`
	Winner   string `json:"winner,omitempty"`
}

// FireResponseFromModel converts a game.FireResult
func FireResponseFromModel(r *game.FireResult) FireResponse {
	return FireResponse{
		Shot:     ShotFromModel(r.Shot),
		CPUShots: ShotsFromModel(r.CPUShots),
		Turn:     r.Turn.String(),
		Phase:    string(r.Phase),
		Winner:   string(r.Winner),
	}
}

// SaveSummary describes a saved game without exposing the CPU fleet
type SaveSummary struct {
	SavedAt     time.Time `json:"saved_at"`
	Nickname    string    `json:"nickname"`
	Phase       string    `json:"phase"`
	Turn        string    `json:"turn"`
	Winner      string    `json:"winner,omitempty"`
	PlayerShots int       `json:"player_shots"`
	CPUShots    int       `json:"cpu_shots"`
}

// SaveSummaryFromModel summarises a snapshot
func SaveSummaryFromModel(snap *model.Snapshot) SaveSummary {
	return SaveSummary{
		SavedAt:     time.UnixMilli(snap.SavedAt).UTC(),
		Nickname:    snap.Nickname,
		Phase:       string(snapshotPhase(snap)),
		Turn:        snap.CurrentTurn.String(),
		Winner:      string(snap.Winner),
		PlayerShots: snap.CPUBoard.ShotAt.Count(),
		CPUShots:    snap.PlayerBoard.ShotAt.Count(),
	}
}

func snapshotPhase(snap *model.Snapshot) model.Phase {
	switch {
	case snap.GameEnded:
		return model.PhaseEnded
	case snap.GameStarted:
		return model.PhaseInProgress
	default:
		return model.PhaseSetup
	}
}

// LoadResponse is the response for loading a saved game. CPUShots holds the
// shots of a CPU turn that was interrupted by the save and resumed on load.
type LoadResponse struct {
	Game     GameState `json:"game"`
	CPUShots []Shot    `json:"cpu_shots"`
}
