package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/navalcombat/internal/api/response"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage/file"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Inspect the local save",
	}

	cmd.AddCommand(newSaveStatusCmd())
	cmd.AddCommand(newSaveDeleteCmd())

	return cmd
}

func newSaveStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved game in the save directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := file.New(cfg.SaveDir, cfg.Logger())
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			snap, err := store.Load(cmd.Context())
			if errors.Is(err, model.ErrNoSavedGame) {
				out.PrintMessage("No saved game in " + store.Dir())
				return nil
			}
			if err != nil {
				return err
			}

			out.Print(response.SaveSummaryFromModel(snap))
			return nil
		},
	}
}

func newSaveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the saved game and its backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := file.New(cfg.SaveDir, cfg.Logger())
			if err := store.Delete(cmd.Context()); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Saved game deleted")
			return nil
		},
	}
}
