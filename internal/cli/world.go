package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/adapters/sim"
)

// WorldCmd returns the world command
func WorldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "Work with simulator world files",
		Long: `World files describe a simulated arena for --world runs:

  floor: white        # colour of '.' tiles
  start: 0,0,N        # optional
  goal: 3,3           # optional
  layout: |           # top line is the highest y
    ..#.
    .R..
    ....
  cells:              # optional extra paint
    - at: 3,0
      color: brown

Layout tiles: '.' floor, '#' black, 'R' red, 'W' white, 'B' brown, '?' no reading.`,
	}

	cmd.AddCommand(worldShowCmd())
	return cmd
}

func worldShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Validate a world file and print its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sim.LoadWorld(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ World %s (%dx%d)\n", args[0], w.Cols(), w.Rows())
			if w.Start != nil {
				fmt.Printf("  Start: %s\n", *w.Start)
			}
			if w.Goal != nil {
				fmt.Printf("  Goal:  %s\n", *w.Goal)
			}
			fmt.Println()
			fmt.Print(w.Render())
			return nil
		},
	}
}
