package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/adapters/sim"
	"github.com/example/mazebot/internal/config"
	"github.com/example/mazebot/internal/core/navigate"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/wire"
)

// runFlags are the flags shared by explore and navigate.
// Precedence: flags, then the world file, then config.
type runFlags struct {
	configDir string
	world     string
	device    string
	start     string
	rows      int
	cols      int
	policy    string
	noSave    bool

	// navigate only
	goal     string
	tieBreak string
	seed     int64
	maxSteps int
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configDir, "config", ".", "Directory containing .mazebot/config.yaml")
	cmd.Flags().StringVar(&f.world, "world", "", "Run in the simulator using this world file")
	cmd.Flags().StringVar(&f.device, "device", "", "Serial device of the robot bridge (overrides config)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start pose as x,y,H (e.g. 0,0,N)")
	cmd.Flags().IntVar(&f.rows, "rows", 0, "Grid rows")
	cmd.Flags().IntVar(&f.cols, "cols", 0, "Grid columns")
	cmd.Flags().StringVar(&f.policy, "indeterminate", "", "Indeterminate reading policy: retry, traversable, obstacle")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "Do not record the run in history")
}

func (f *runFlags) bindNavigate(cmd *cobra.Command) {
	f.bind(cmd)
	cmd.Flags().StringVar(&f.goal, "goal", "", "Goal cell as x,y")
	cmd.Flags().StringVar(&f.tieBreak, "tie-break", "", "Side to prefer when forward is blocked: right or random")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed for the random tie-break")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "Step budget (0 = rows*cols*4)")
}

// resolve loads config and applies the world file and flags to it.
func (f *runFlags) resolve(cmd *cobra.Command) (*config.Config, *sim.World, error) {
	cfg, err := config.Load(f.configDir)
	if err != nil {
		return nil, nil, err
	}
	wire.UseDatabase(cfg.Database.Path)

	// A configured goal belongs to the configured mat. When a world file or
	// --rows/--cols reshape the grid, it is only kept if it still fits.
	configGoal := cfg.Goal

	var world *sim.World
	if f.world != "" {
		world, err = sim.LoadWorld(f.world)
		if err != nil {
			return nil, nil, err
		}
		cfg.Grid = config.GridConfig{Rows: world.Rows(), Cols: world.Cols()}
		if world.Start != nil {
			cfg.Start = poseArg(*world.Start)
		}
		if world.Goal != nil {
			cfg.Goal = fmt.Sprintf("%d,%d", world.Goal.X, world.Goal.Y)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.Grid.Rows = f.rows
	}
	if flags.Changed("cols") {
		cfg.Grid.Cols = f.cols
	}
	if world != nil && (cfg.Grid.Rows != world.Rows() || cfg.Grid.Cols != world.Cols()) {
		return nil, nil, fmt.Errorf("grid %dx%d does not match world %dx%d", cfg.Grid.Cols, cfg.Grid.Rows, world.Cols(), world.Rows())
	}
	if f.start != "" {
		cfg.Start = f.start
	}
	if f.device != "" {
		cfg.Serial.Device = f.device
	}
	if f.policy != "" {
		cfg.Indeterminate.Mode = f.policy
	}
	if cfg.Goal == configGoal && configGoal != "" && !goalFits(cfg) {
		cfg.Goal = ""
	}
	if f.goal != "" {
		cfg.Goal = f.goal
	}
	if f.tieBreak != "" {
		cfg.Navigation.TieBreak = f.tieBreak
	}
	if flags.Changed("seed") {
		cfg.Navigation.Seed = f.seed
	}
	if flags.Changed("max-steps") {
		cfg.Navigation.MaxSteps = f.maxSteps
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, world, nil
}

// openRobot connects to the simulator when a world is given, else to the serial bridge.
func openRobot(cfg *config.Config, world *sim.World, start pose.Pose) (*wire.Robot, error) {
	if world != nil {
		return wire.SimRobot(cfg, world, start)
	}
	if cfg.Serial.Device == "" {
		return nil, fmt.Errorf("no robot: pass --world for the simulator or --device for a serial bridge")
	}
	return wire.SerialRobot(cfg)
}

func runSettings(cfg *config.Config, start pose.Pose, save bool) primary.RunSettings {
	return primary.RunSettings{
		Rows:              cfg.Grid.Rows,
		Cols:              cfg.Grid.Cols,
		Start:             start,
		Policy:            cfg.Policy(),
		MaxMoveFailures:   cfg.MaxMoveFailures,
		DriftToleranceDeg: cfg.DriftToleranceDeg,
		Save:              save,
	}
}

func navigateRequest(cfg *config.Config, start pose.Pose, save bool) (primary.NavigateRequest, error) {
	goal, err := cfg.GoalPosition()
	if err != nil {
		return primary.NavigateRequest{}, fmt.Errorf("%w (pass --goal x,y)", err)
	}
	tb, err := navigate.ParseTieBreak(cfg.Navigation.TieBreak)
	if err != nil {
		return primary.NavigateRequest{}, err
	}
	return primary.NavigateRequest{
		RunSettings: runSettings(cfg, start, save),
		Goal:        goal,
		TieBreak:    tb,
		Seed:        cfg.Navigation.Seed,
		MaxSteps:    cfg.Navigation.MaxSteps,
	}, nil
}

// interruptContext cancels on Ctrl-C so the run stops between moves.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

func goalFits(cfg *config.Config) bool {
	g, err := cfg.GoalPosition()
	if err != nil {
		return true // let Validate report it
	}
	return g.X >= 0 && g.X < cfg.Grid.Cols && g.Y >= 0 && g.Y < cfg.Grid.Rows
}

func poseArg(p pose.Pose) string {
	return fmt.Sprintf("%d,%d,%s", p.Position.X, p.Position.Y, p.Heading)
}
