package model

// GameID identifies a game started by the orchestrator
type GameID string

// Side is one of the two combatants
type Side int

const (
	SidePlayer Side = 0
	SideCPU    Side = 1
)

// Valid returns true for the two known sides
func (s Side) Valid() bool {
	return s == SidePlayer || s == SideCPU
}

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideCPU
	}
	return SidePlayer
}

// String returns the side's label
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideCPU:
		return "cpu"
	default:
		return "unknown"
	}
}

// Winner records who won a finished game
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerPlayer Winner = "player"
	WinnerCPU    Winner = "cpu"
)

// WinnerFor returns the winner value for a side
func WinnerFor(side Side) Winner {
	if side == SidePlayer {
		return WinnerPlayer
	}
	return WinnerCPU
}

// Phase is the lifecycle stage of a session
type Phase string

const (
	PhaseSetup      Phase = "setup"       // Placing ships
	PhaseInProgress Phase = "in_progress" // Shots being exchanged
	PhaseEnded      Phase = "ended"       // One fleet is sunk
)

// DefaultNickname is used when a new game doesn't name the player
const DefaultNickname = "Captain"

// Session is the full mutable state of one game
type Session struct {
	Boards [2]Board   // indexed by Side
	Fleets [2][]*Ship // indexed by Side

	GameStarted         bool
	GameEnded           bool
	CurrentTurn         Side
	FirstPlayerMoveDone bool
	Winner              Winner
	Nickname            string
}

// NewSession returns a blank session in the setup phase
func NewSession() *Session {
	return &Session{
		CurrentTurn: SidePlayer,
		Nickname:    DefaultNickname,
	}
}

// Phase derives the lifecycle stage from the started/ended flags
func (s *Session) Phase() Phase {
	switch {
	case s.GameEnded:
		return PhaseEnded
	case s.GameStarted:
		return PhaseInProgress
	default:
		return PhaseSetup
	}
}

// Board returns the board for a side
func (s *Session) Board(side Side) *Board {
	return &s.Boards[side]
}

// Fleet returns the ships for a side
func (s *Session) Fleet(side Side) []*Ship {
	return s.Fleets[side]
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	for side := range s.Fleets {
		c.Fleets[side] = cloneShips(s.Fleets[side])
	}
	return &c
}

func cloneShips(ships []*Ship) []*Ship {
	if ships == nil {
		return nil
	}
	out := make([]*Ship, len(ships))
	for i, ship := range ships {
		if ship != nil {
			out[i] = ship.Clone()
		}
	}
	return out
}
