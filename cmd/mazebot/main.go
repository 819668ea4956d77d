package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/cli"
	"github.com/example/mazebot/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mazebot",
		Short:   "mazebot - grid maze explorer and navigator for a two-wheeled robot",
		Version: version.String(),
		Long: `mazebot drives a robot across a grid of floor tiles, discovering
obstacle tiles by driving onto them. It can explore the whole grid or
navigate to a goal, against a simulated world or a real robot on a
serial bridge.`,
		SilenceUsage: true,
	}

	// Runs
	rootCmd.AddCommand(cli.ExploreCmd())
	rootCmd.AddCommand(cli.NavigateCmd())
	rootCmd.AddCommand(cli.RunCmd())

	// Setup
	rootCmd.AddCommand(cli.WorldCmd())
	rootCmd.AddCommand(cli.ConfigCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
