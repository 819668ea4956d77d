package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/mazebot/internal/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage .mazebot/config.yaml",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var dir string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath(dir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.SaveConfig(dir, config.Default()); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  mazebot world show arena.yaml")
			fmt.Println("  mazebot explore --world arena.yaml")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "config", ".", "Directory to write .mazebot/config.yaml into")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	return cmd
}

func configShowCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, statErr := os.Stat(config.ConfigPath(dir))
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			if errors.Is(statErr, os.ErrNotExist) {
				fmt.Printf("# %s not found, showing defaults\n", config.ConfigPath(dir))
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))

			if err := cfg.Validate(); err != nil {
				fmt.Printf("\n✗ %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "config", ".", "Directory containing .mazebot/config.yaml")
	return cmd
}
