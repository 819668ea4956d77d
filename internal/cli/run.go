package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/config"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect recorded runs",
		Long:  `List and show explore and navigate runs recorded in ~/.mazebot/mazebot.db.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			wire.UseDatabase(cfg.Database.Path)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configDir, "config", ".", "Directory containing .mazebot/config.yaml")
	cmd.AddCommand(runListCmd())
	cmd.AddCommand(runShowCmd())
	return cmd
}

func runListCmd() *cobra.Command {
	var mode, outcome string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.HistoryAdapter().List(context.Background(), primary.RunFilters{
				Mode:    mode,
				Outcome: outcome,
				Limit:   limit,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Filter by mode (explore, navigate)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Filter by outcome (goal_reached, explored, unreachable, fault, cancelled)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 = all)")
	return cmd
}

func runShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a run with its final map and events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.HistoryAdapter().Show(context.Background(), args[0])
			return err
		},
	}
}
