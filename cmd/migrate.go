package cmd

import (
	"fmt"
	"os"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := postgres.Migrate(cmd.Context(), cfg.Database); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "schema applied to %s/%s\n", cfg.Database.Host, cfg.Database.DBName)
		return nil
	},
}
