package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/wire"
)

// ExploreCmd returns the explore command
func ExploreCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Visit every reachable cell and map the grid",
		Long: `Explore the grid depth-first, marking every reachable cell as
traversable or obstacle, then return to the start.

The robot is either simulated (--world) or driven over a serial bridge
(--device or serial.device in config).

Examples:
  mazebot explore --world arena.yaml
  mazebot explore --device /dev/ttyUSB0 --rows 6 --cols 6 --start 0,0,N`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, world, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			start, err := cfg.StartPose()
			if err != nil {
				return err
			}

			robot, err := openRobot(cfg, world, start)
			if err != nil {
				return err
			}
			defer robot.Close()

			ctx, stop := interruptContext(cmd)
			defer stop()

			save := !flags.noSave
			req := primary.ExploreRequest{RunSettings: runSettings(cfg, start, save)}
			_, err = wire.RunAdapter(cfg, robot, save).Explore(ctx, req)
			return err
		},
	}

	flags.bind(cmd)
	return cmd
}
