package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"buildcost/internal/backend"
	"buildcost/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the configured backend",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	var (
		dialect storage.Dialect
		dsn     string
	)
	switch backend.BackendType(cfg.DataBackend) {
	case backend.SQLiteBackend:
		dialect, dsn = storage.DialectSQLite, cfg.SQLiteDBPath
	case backend.PostgresBackend:
		dialect, dsn = storage.DialectPostgres, cfg.DatabaseURL
	default:
		fmt.Printf("  Backend %q has no schema, nothing to migrate.\n", cfg.DataBackend)
		return nil
	}
	if err := storage.RunMigrations(dialect, dsn); err != nil {
		return err
	}
	fmt.Printf("  Migrations applied (%s).\n", dialect)
	return nil
}
