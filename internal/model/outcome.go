package model

// Outcome is the result code of a single shot
type Outcome string

const (
	OutcomeMiss        Outcome = "MISS"
	OutcomeHit         Outcome = "HIT"
	OutcomeSunk        Outcome = "SUNK"
	OutcomeAlreadyShot Outcome = "ALREADY_SHOT"
	OutcomeWinPlayer   Outcome = "WIN_PLAYER"
	OutcomeWinCPU      Outcome = "WIN_CPU"
	OutcomeGameOver    Outcome = "GAME_OVER"
	OutcomeError       Outcome = "ERROR"
)

// IsWin returns true for either winning outcome
func (o Outcome) IsWin() bool {
	return o == OutcomeWinPlayer || o == OutcomeWinCPU
}

// KeepsTurn returns true if the shooter fires again
func (o Outcome) KeepsTurn() bool {
	return o == OutcomeHit || o == OutcomeSunk
}

// ChangedState returns true if the shot mutated the session
func (o Outcome) ChangedState() bool {
	switch o {
	case OutcomeMiss, OutcomeHit, OutcomeSunk, OutcomeWinPlayer, OutcomeWinCPU:
		return true
	default:
		return false
	}
}

// WinOutcome returns the winning outcome for a shooter
func WinOutcome(shooter Side) Outcome {
	if shooter == SidePlayer {
		return OutcomeWinPlayer
	}
	return OutcomeWinCPU
}

// Shot is one resolved shot
type Shot struct {
	Shooter Side    `json:"shooter"`
	Target  Coord   `json:"target"`
	Outcome Outcome `json:"outcome"`
}
