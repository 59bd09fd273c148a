package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yusufkecer/medfit-backend/internal/db"
)

func (a *app) newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.RunMigrations(a.cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", a.cfg.DBBackend)
			return err
		},
	}, &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.RollbackMigrations(a.cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "migrations rolled back (%s)\n", a.cfg.DBBackend)
			return err
		},
	})
	return cmd
}
