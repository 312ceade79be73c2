package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Manage database migrations for the ReadRepeat API.

This command provides subcommands to apply, rollback, and check the status
of the versioned SQL migrations. The server applies them on start when
database.auto_migrate is false.

Available subcommands:
  up      - Apply all pending migrations
  down    - Rollback the last migration
  status  - Show current migration status`,
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Long: `Apply all pending database migrations.

This command will apply all migrations that have not yet been applied
to the database, bringing the schema up to date.`,
		RunE: runMigrateUp,
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback the last migration",
		Long: `Rollback the last applied migration.

This command will undo the most recently applied migration,
reverting the database schema to the previous state.`,
		RunE: runMigrateDown,
	}
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to rollback (0 = all)")
	migrateDownCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long: `Display the current status of database migrations.

This command shows the schema version recorded in the database and
whether the last migration left it dirty.`,
		RunE: runMigrateStatus,
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	return migrateCmd
}

func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return err
	}
	return printMigrationStatus(cmd, db)
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes {
		target := fmt.Sprintf("%d migration(s)", steps)
		if steps <= 0 {
			target = "ALL migrations"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "WARNING: This will rollback %s. Continue? (y/N): ", target)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if r := strings.TrimSpace(response); r != "y" && r != "Y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Migration rollback cancelled")
			return nil
		}
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateDown(steps); err != nil {
		return err
	}
	return printMigrationStatus(cmd, db)
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return printMigrationStatus(cmd, db)
}

func printMigrationStatus(cmd *cobra.Command, db *database.DB) error {
	status, err := db.MigrationVersion()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")
	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintf(out, "Driver:           %s\n", db.Driver)
	if !status.Applied {
		fmt.Fprintln(out, "Current version:  none (no migrations applied)")
		return nil
	}
	fmt.Fprintf(out, "Current version:  %d\n", status.Version)
	if status.Dirty {
		fmt.Fprintln(out, "State:            DIRTY (fix the schema and force the version)")
	} else {
		fmt.Fprintln(out, "State:            clean")
	}
	return nil
}
