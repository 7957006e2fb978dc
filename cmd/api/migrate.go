package main

import (
	"github.com/spf13/cobra"

	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/observability"
	"github.com/openticket/helpdesk/internal/persistence"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		RunE:  runMigrate,
	}
	migrateRollback bool
	migrateStatus   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "print migration status only")
	migrateCmd.MarkFlagsMutuallyExclusive("rollback", "status")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	direction := persistence.MigrateUp
	switch {
	case migrateRollback:
		direction = persistence.MigrateDown
	case migrateStatus:
		direction = persistence.MigrateStatus
	}
	return persistence.Migrate(cmd.Context(), cfg.Postgres.DSN, direction, logger)
}
