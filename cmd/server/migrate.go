package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mindweaver-server/internal/database"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/session"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the accounts, conversations, messages and
login_sessions tables.

When sessions are kept in the database, expired login sessions are
removed as well.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	a.log.Info("running database migrations")
	if err := database.Migrate(a.db); err != nil {
		return err
	}
	a.log.Info("database migrations completed")

	if st := strings.ToLower(a.cfg.Session.Store); st == storeDatabase || st == "db" {
		store := session.NewDBStore(repository.NewSessionRepository(a.db))
		removed, err := store.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		a.log.Info("expired sessions removed", "count", removed)
	}
	return nil
}
