package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/navalcombat/internal/api/request"
	"github.com/mcoot/navalcombat/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Drive the game held by a server",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGamePlaceCmd())
	cmd.AddCommand(newGameRotateCmd())
	cmd.AddCommand(newGameRemoveCmd())
	cmd.AddCommand(newGameAutoCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameFireCmd())
	cmd.AddCommand(newGameSaveCmd())
	cmd.AddCommand(newGameLoadCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [nickname]",
		Short: "Discard the current game and set up a new one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.NewGameRequest
			if len(args) == 1 {
				req.Nickname = args[0]
			}

			var result response.GameState
			if err := client.Post(cmd.Context(), "/api/v1/game", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState
			if err := client.Get(cmd.Context(), "/api/v1/game", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamePlaceCmd() *cobra.Command {
	var vertical, snap bool

	cmd := &cobra.Command{
		Use:   "place <index> <col> <row>",
		Short: "Place a ship of your fleet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, col, row, err := parseInts3(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			req := request.PlaceShipRequest{Col: col, Row: row, Vertical: vertical, Snap: snap}
			var result response.Ship
			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/game/ships/%d", index), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&vertical, "vertical", false, "Lay the ship top to bottom")
	cmd.Flags().BoolVar(&snap, "snap", false, "Move to the nearest free position if blocked")

	return cmd
}

func newGameRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <index>",
		Short: "Turn a ship between horizontal and vertical",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index: %w", err)
			}

			var result response.Ship
			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/game/ships/%d/rotate", index), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Take a ship off the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index: %w", err)
			}

			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/game/ships/%d", index)); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Ship removed")
			return nil
		},
	}
}

func newGameAutoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Place your whole fleet at random",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState
			if err := client.Post(cmd.Context(), "/api/v1/game/ships/auto", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the battle once your fleet is placed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.StartResponse
			if err := client.Post(cmd.Context(), "/api/v1/game/start", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameFireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fire <col> <row>",
		Short: "Fire at the enemy board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid col: %w", err)
			}
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row: %w", err)
			}

			req := request.FireRequest{Col: col, Row: row}
			var result response.FireResponse
			if err := client.Post(cmd.Context(), "/api/v1/game/fire", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the server's game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SaveSummary
			if err := client.Post(cmd.Context(), "/api/v1/game/save", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Resume the server's saved game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.LoadResponse
			if err := client.Post(cmd.Context(), "/api/v1/game/load", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func parseInts3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid index: %w", err)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid col: %w", err)
	}
	z, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid row: %w", err)
	}
	return x, y, z, nil
}
