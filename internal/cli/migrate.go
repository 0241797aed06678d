package cli

import (
	"context"
	"fmt"

	"github.com/safar/furnishop/internal/config"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/migrations"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dbCfg := config.LoadDatabase()
	db, err := database.NewConnection(&dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(context.Background(), db, migrations.Direction(args[0]))
	if err != nil {
		return err
	}

	for _, name := range applied {
		log.WithField("file", name).Info("migration applied")
	}
	return nil
}
