package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mazebot/internal/config"
	"github.com/example/mazebot/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a scratch run history.

These commands require MAZEBOT_DB to point at a scratch database so the
real history in ~/.mazebot/mazebot.db is never touched.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with fixture runs",
		Long: `Delete the dev database and recreate it with fixture data.

This command:
1. Deletes the existing dev database file
2. Creates a fresh database with the current schema
3. Seeds two sample runs with maps and events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Safety check: require MAZEBOT_DB to be set
			dbPath := os.Getenv(config.EnvDB)
			if dbPath == "" {
				return fmt.Errorf("%s not set\n\nThis safety check prevents accidental reset of your run history", config.EnvDB)
			}

			// Confirmation unless --force
			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			// Close any existing DB connection
			db.Close()
			db.SetPath(dbPath)

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nDev database reset complete!")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 2 runs (RUN-001 explore, RUN-002 navigate)")
			fmt.Println("  - 8 map cells, 4 events")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
