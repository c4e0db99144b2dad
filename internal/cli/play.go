package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/factory"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/game"
)

func newPlayCmd() *cobra.Command {
	var (
		nickname string
		seed     uint64
		delay    time.Duration
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in this terminal",
		Long: `Play against the CPU in this terminal.

The game is saved after every move to the save directory, so "load" from
the menu resumes where you left off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cpu-delay") {
				delay = cfg.CPUShotDelay
			}
			if delay == 0 {
				delay = -1 // factory treats zero as the default pause
			}

			app, err := factory.New(factory.Config{
				Logger:       cfg.Logger(),
				StorageType:  factory.StorageTypeFile,
				SaveDir:      cfg.SaveDir,
				CPUShotDelay: delay,
				AutoSave:     !noSave,
				Seed:         seed,
			})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			session := NewPlaySession(app.Controller, nickname, cmd.InOrStdin(), cmd.OutOrStdout())
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", model.DefaultNickname, "Your name for new games")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible fleets and CPU shots")
	cmd.Flags().DurationVar(&delay, "cpu-delay", 0, "Pause before each CPU shot (0 for none)")
	cmd.Flags().BoolVar(&noSave, "no-autosave", false, "Only save when asked to")

	return cmd
}

// errQuit ends the session from any stage
var errQuit = errors.New("quit")

// PlaySession is an interactive game on a line-oriented terminal
type PlaySession struct {
	controller *game.Controller
	nickname   string
	scanner    *bufio.Scanner
	w          io.Writer
	out        *Output
}

// NewPlaySession creates a session reading commands from in and writing to w
func NewPlaySession(controller *game.Controller, nickname string, in io.Reader, w io.Writer) *PlaySession {
	return &PlaySession{
		controller: controller,
		nickname:   nickname,
		scanner:    bufio.NewScanner(in),
		w:          w,
		out:        NewOutput("text", w),
	}
}

// Run shows the main menu until the player exits or input ends
func (p *PlaySession) Run(ctx context.Context) error {
	fmt.Fprintln(p.w, "NAVAL COMBAT")
	for {
		if p.controller.HasSavedGame(ctx) {
			fmt.Fprintln(p.w, "\nMenu: new, load, exit")
		} else {
			fmt.Fprintln(p.w, "\nMenu: new, exit")
		}

		fields, err := p.prompt("menu")
		if err != nil {
			return quitIsNil(err)
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "new", "n":
			nickname := p.nickname
			if len(fields) > 1 {
				nickname = strings.Join(fields[1:], " ")
			}
			p.controller.NewGame(ctx, nickname)
			err = p.setup(ctx)
		case "load", "l":
			err = p.load(ctx)
		case "exit", "quit", "q":
			fmt.Fprintln(p.w, "Fair winds.")
			return nil
		default:
			fmt.Fprintf(p.w, "Unknown command %q\n", fields[0])
			continue
		}
		if err != nil {
			return quitIsNil(err)
		}
	}
}

func (p *PlaySession) load(ctx context.Context) error {
	state, err := p.controller.Load(ctx)
	switch {
	case errors.Is(err, model.ErrNoSavedGame):
		fmt.Fprintln(p.w, "No saved game.")
		return nil
	case err != nil:
		p.out.PrintError(err)
		return nil
	}

	fmt.Fprintf(p.w, "Welcome back, %s.\n", state.Nickname)
	switch state.Phase {
	case model.PhaseSetup:
		return p.setup(ctx)
	case model.PhaseEnded:
		p.showState()
		return nil
	}

	if state.Turn == model.SideCPU {
		fmt.Fprintln(p.w, "The CPU was about to fire...")
		shots, err := p.controller.CPUTurn(ctx)
		p.out.printShots(response.ShotsFromModel(shots))
		if err != nil {
			return err
		}
		if p.controller.State().Phase == model.PhaseEnded {
			p.showState()
			fmt.Fprintln(p.w, "Defeat. Your fleet is sunk.")
			return nil
		}
	}
	return p.battle(ctx)
}

const setupHelp = `Setup commands:
  auto                               place the whole fleet at random
  place <ship> <col> <row> [v]       place ship by index, v for vertical
  rotate <ship>                      turn a placed ship
  remove <ship>                      take a ship off the board
  board                              show your fleet
  start                              begin the battle
  menu                               back to the main menu`

func (p *PlaySession) setup(ctx context.Context) error {
	p.showState()
	fmt.Fprintln(p.w, setupHelp)

	for {
		fields, err := p.prompt("setup")
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "auto", "a":
			if _, err := p.controller.AutoPlace(ctx); err != nil {
				p.out.PrintError(err)
			}
			p.showState()
		case "place", "p":
			p.place(ctx, fields[1:])
		case "rotate", "r":
			index, ok := p.index(fields[1:])
			if !ok {
				continue
			}
			ship, err := p.controller.RotateShip(ctx, index)
			if err != nil {
				p.out.PrintError(err)
				continue
			}
			p.out.printShip(response.ShipFromModel(index, ship))
		case "remove", "rm":
			index, ok := p.index(fields[1:])
			if !ok {
				continue
			}
			if err := p.controller.RemoveShip(ctx, index); err != nil {
				p.out.PrintError(err)
			}
		case "board", "b":
			p.showState()
		case "start", "s":
			_, err := p.controller.Start(ctx)
			if err != nil && !errors.Is(err, model.ErrPlacementExhausted) {
				p.out.PrintError(err)
				continue
			}
			if err != nil {
				fmt.Fprintf(p.w, "Warning: %s\n", err)
			}
			return p.battle(ctx)
		case "menu", "m":
			return nil
		case "help", "h", "?":
			fmt.Fprintln(p.w, setupHelp)
		default:
			fmt.Fprintf(p.w, "Unknown command %q, try help\n", fields[0])
		}
	}
}

func (p *PlaySession) place(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(p.w, "Usage: place <ship> <col> <row> [v]")
		return
	}
	index, col, row, err := parseInts3(args[0], args[1], args[2])
	if err != nil {
		p.out.PrintError(err)
		return
	}
	vertical := len(args) > 3 && strings.HasPrefix(strings.ToLower(args[3]), "v")

	ship, err := p.controller.PlaceShip(ctx, index, col, row, vertical, true)
	if err != nil {
		p.out.PrintError(err)
		return
	}
	p.out.printShip(response.ShipFromModel(index, ship))
}

const battleHelp = `Battle commands:
  fire <col> <row>    fire at the enemy (or just <col> <row>)
  board               show both boards
  save                save now
  menu                back to the main menu`

func (p *PlaySession) battle(ctx context.Context) error {
	p.showState()
	fmt.Fprintln(p.w, battleHelp)

	for {
		fields, err := p.prompt("fire")
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "fire", "f":
			fields = fields[1:]
		case "board", "b":
			p.showState()
			continue
		case "save":
			if _, err := p.controller.Save(ctx); err != nil {
				p.out.PrintError(err)
			} else {
				fmt.Fprintln(p.w, "Game saved.")
			}
			continue
		case "menu", "m":
			return nil
		case "help", "h", "?":
			fmt.Fprintln(p.w, battleHelp)
			continue
		}

		if len(fields) != 2 {
			fmt.Fprintln(p.w, "Usage: fire <col> <row>")
			continue
		}
		col, errCol := strconv.Atoi(fields[0])
		row, errRow := strconv.Atoi(fields[1])
		if errCol != nil || errRow != nil {
			fmt.Fprintln(p.w, "Column and row must be numbers")
			continue
		}

		result, err := p.controller.Fire(ctx, col, row)
		if result == nil {
			p.out.PrintError(err)
			continue
		}
		p.out.printFireResponse(response.FireResponseFromModel(result))
		if err != nil {
			return err
		}

		if result.Phase == model.PhaseEnded {
			p.showState()
			if result.Winner == model.WinnerPlayer {
				fmt.Fprintln(p.w, "Victory! The enemy fleet is sunk.")
			} else {
				fmt.Fprintln(p.w, "Defeat. Your fleet is sunk.")
			}
			return nil
		}
	}
}

func (p *PlaySession) showState() {
	p.out.printGameState(response.GameStateFromModel(p.controller.State()))
}

func (p *PlaySession) index(args []string) (int, bool) {
	if len(args) < 1 {
		fmt.Fprintln(p.w, "Which ship? Give its index")
		return 0, false
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(p.w, "Ship index must be a number")
		return 0, false
	}
	return index, true
}

// prompt reads the next command line, returning errQuit at end of input
func (p *PlaySession) prompt(label string) ([]string, error) {
	fmt.Fprintf(p.w, "%s> ", label)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.w)
		if err := p.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errQuit
	}
	fields := strings.Fields(p.scanner.Text())
	if len(fields) > 0 {
		fields[0] = strings.ToLower(fields[0])
	}
	return fields, nil
}

func quitIsNil(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
