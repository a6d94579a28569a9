package cmd

import (
	"context"
	"fmt"

	"judge-sync/feature/judges"
	"judge-sync/feature/judges/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runsLimit  int
	runsSyncID string
)

// runsCmd shows recorded sync runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent sync runs from the audit table",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		ctx := context.Background()
		audit := judges.NewAuditLogger(db, nil)

		if runsSyncID != "" {
			run, err := audit.Get(ctx, runsSyncID)
			if err != nil {
				return fmt.Errorf("failed to load run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("sync run %s not found", runsSyncID)
			}
			logRun(l, *run)
			return nil
		}

		runs, err := audit.Recent(ctx, runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		for _, run := range runs {
			logRun(l, run)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().StringVar(&runsSyncID, "id", "", "Show a single run by sync id")
	RootCmd.AddCommand(runsCmd)
}

func logRun(l *zap.Logger, run models.SyncRun) {
	fields := []zap.Field{
		zap.String("sync_id", run.SyncID),
		zap.String("kind", run.Kind),
		zap.String("status", run.Status),
		zap.Time("started_at", run.StartedAt),
	}
	if run.DurationMs != nil {
		fields = append(fields, zap.Int64("duration_ms", *run.DurationMs))
	}
	if run.ResultSummary != nil {
		fields = append(fields, zap.String("summary", *run.ResultSummary))
	}
	if run.ErrorMessage != nil {
		fields = append(fields, zap.String("error", *run.ErrorMessage))
	}
	l.Info("Sync run", fields...)
}
