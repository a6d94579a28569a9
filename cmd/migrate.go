package cmd

import (
	"fmt"

	"judge-sync/core/database"
	"judge-sync/feature/judges/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the tables the engine writes to.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the judicial_entities and sync_runs tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		if err := db.AutoMigrate(&models.JudicialEntity{}, &models.SyncRun{}); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		tables := map[string][]string{
			models.JudicialEntity{}.TableName(): models.EntityColumns,
			models.SyncRun{}.TableName():        models.SyncRunColumns,
		}
		for table, required := range tables {
			missing, err := database.MissingColumns(db, table, required)
			if err != nil {
				return fmt.Errorf("failed to inspect %s: %w", table, err)
			}
			if len(missing) > 0 {
				return fmt.Errorf("table %s is missing columns %v", table, missing)
			}
			l.Info("Schema verified", zap.String("table", table), zap.Int("columns", len(required)))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
