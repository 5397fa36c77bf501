// migrate applies or rolls back the embedded SQL migrations against DATABASE_URL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gemini-observatory/backend/internal/config"
	"gemini-observatory/backend/internal/db/migrate"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the observatory database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var steps int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("up", steps)
		},
	}
	up.Flags().IntVarP(&steps, "steps", "n", 0, "Number of migrations to apply (0 = all)")

	var downSteps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("down", downSteps)
		},
	}
	down.Flags().IntVarP(&downSteps, "steps", "n", 1, "Number of migrations to roll back (0 = all)")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			v, dirty, err := migrate.Version(dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func run(direction string, steps int) error {
	dsn, err := databaseURL()
	if err != nil {
		return err
	}
	return migrate.Run(dsn, direction, steps)
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", migrate.ErrNoDSN
	}
	return cfg.DatabaseURL, nil
}
