package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/model"
)

// Board cell symbols
const (
	cellWater = '.'
	cellShip  = '#'
	cellHit   = 'X'
	cellMiss  = 'o'
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.GameState:
		o.printGameState(v)
	case response.StartResponse:
		if v.Warning != "" {
			fmt.Fprintf(o.w, "Warning: %s\n", v.Warning)
		}
		o.printGameState(v.Game)
	case response.LoadResponse:
		o.printShots(v.CPUShots)
		o.printGameState(v.Game)
	case response.Ship:
		o.printShip(v)
	case response.FireResponse:
		o.printFireResponse(v)
	case response.SaveSummary:
		o.printSaveSummary(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGameState(g response.GameState) {
	fmt.Fprintf(o.w, "Game: %s\n", g.GameID)
	fmt.Fprintf(o.w, "Captain: %s\n", g.Nickname)
	fmt.Fprintf(o.w, "Phase: %s\n", g.Phase)

	switch g.Phase {
	case string(model.PhaseSetup):
		fmt.Fprintln(o.w, "\nYour Fleet:")
		for _, ship := range g.PlayerFleet {
			o.printShip(ship)
		}
		fmt.Fprintln(o.w, "\nYour Waters:")
		o.printOwnBoard(g.PlayerBoard)
		return
	case string(model.PhaseInProgress):
		fmt.Fprintf(o.w, "Turn: %s\n", g.Turn)
	case string(model.PhaseEnded):
		fmt.Fprintf(o.w, "Winner: %s\n", g.Winner)
	}

	fmt.Fprintf(o.w, "Enemy ships afloat: %d\n", g.EnemyShipsRemaining)
	if len(g.SunkEnemyShips) > 0 {
		names := make([]string, len(g.SunkEnemyShips))
		for i, ship := range g.SunkEnemyShips {
			names[i] = ship.Name
		}
		fmt.Fprintf(o.w, "Sunk: %s\n", strings.Join(names, ", "))
	}

	fmt.Fprintln(o.w, "\nEnemy Waters:")
	o.printTargetBoard(g.TargetBoard)
	fmt.Fprintln(o.w, "\nYour Waters:")
	o.printOwnBoard(g.PlayerBoard)
}

func (o *Output) printShip(s response.Ship) {
	orientation := "horizontal"
	if s.Vertical {
		orientation = "vertical"
	}
	position := "not placed"
	if s.Anchor != nil {
		position = fmt.Sprintf("at (%d,%d)", s.Anchor.Col, s.Anchor.Row)
	}
	fmt.Fprintf(o.w, "  [%d] %-12s len %d %-10s %s", s.Index, s.Name, s.Length, orientation, position)
	if s.State != model.ShipIntact.String() {
		fmt.Fprintf(o.w, " (%s)", s.State)
	}
	fmt.Fprintln(o.w)
}

func (o *Output) printFireResponse(f response.FireResponse) {
	o.printShots([]response.Shot{f.Shot})
	o.printShots(f.CPUShots)

	switch {
	case f.Phase == string(model.PhaseEnded):
		fmt.Fprintf(o.w, "Game over, winner: %s\n", f.Winner)
	default:
		fmt.Fprintf(o.w, "Turn: %s\n", f.Turn)
	}
}

func (o *Output) printShots(shots []response.Shot) {
	for _, s := range shots {
		fmt.Fprintf(o.w, "%s fires at (%d,%d): %s\n", s.Shooter, s.Col, s.Row, s.Outcome)
	}
}

func (o *Output) printSaveSummary(s response.SaveSummary) {
	fmt.Fprintf(o.w, "Saved: %s\n", s.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(o.w, "Captain: %s\n", s.Nickname)
	fmt.Fprintf(o.w, "Phase: %s\n", s.Phase)
	if s.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", s.Winner)
	} else {
		fmt.Fprintf(o.w, "Turn: %s\n", s.Turn)
	}
	fmt.Fprintf(o.w, "Shots fired: %d by you, %d by the cpu\n", s.PlayerShots, s.CPUShots)
}

func (o *Output) printOwnBoard(b response.OwnBoard) {
	o.printBoard(func(row, col int) rune {
		switch {
		case b.Hit[row][col]:
			return cellHit
		case b.ShotAt[row][col]:
			return cellMiss
		case b.Occupied[row][col]:
			return cellShip
		default:
			return cellWater
		}
	})
}

func (o *Output) printTargetBoard(b response.TargetBoard) {
	o.printBoard(func(row, col int) rune {
		switch {
		case b.Hit[row][col]:
			return cellHit
		case b.ShotAt[row][col]:
			return cellMiss
		default:
			return cellWater
		}
	})
}

// printBoard draws a grid with column numbers across the top and row
// numbers down the side, both matching the (col, row) fire arguments
func (o *Output) printBoard(cell func(row, col int) rune) {
	var sb strings.Builder

	// Column headers
	sb.WriteString("    ")
	for col := 0; col < model.GridCols; col++ {
		fmt.Fprintf(&sb, " %d", col)
	}
	sb.WriteString("\n")

	sb.WriteString("   +")
	sb.WriteString(strings.Repeat("--", model.GridCols))
	sb.WriteString("-+\n")

	for row := 0; row < model.GridRows; row++ {
		fmt.Fprintf(&sb, " %d |", row)
		for col := 0; col < model.GridCols; col++ {
			sb.WriteByte(' ')
			sb.WriteRune(cell(row, col))
		}
		sb.WriteString(" |\n")
	}

	sb.WriteString("   +")
	sb.WriteString(strings.Repeat("--", model.GridCols))
	sb.WriteString("-+\n")

	fmt.Fprint(o.w, sb.String())
}
