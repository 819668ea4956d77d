package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/wire"
)

// NavigateCmd returns the navigate command
func NavigateCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "navigate",
		Short: "Drive to a goal cell, discovering obstacles on the way",
		Long: `Navigate from the start pose to the goal. Each step goes forward when
possible, otherwise turns towards an open side (right first, or a seeded
random choice with --tie-break random), otherwise turns around.

The run ends unreachable when the known map proves the goal cannot be
reached. It faults when the step budget runs out first. Without --goal the
configured goal is used (3,3 on the default 4x4 mat).

Examples:
  mazebot navigate --device /dev/ttyUSB0
  mazebot navigate --world arena.yaml --goal 5,5
  mazebot navigate --world arena.yaml --goal 5,5 --tie-break random --seed 42`,
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
			req, err := navigateRequest(cfg, start, !flags.noSave)
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

			_, err = wire.RunAdapter(cfg, robot, req.Save).Navigate(ctx, req)
			return err
		},
	}

	flags.bindNavigate(cmd)
	return cmd
}
