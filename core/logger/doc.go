// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and the two encodings used by the CLI: console for
// interactive runs and json for cron-driven runs shipped to a log pipeline.
//
// # Run Correlation
//
// WithSyncID attaches the sync run identifier to a logger, so all lines written
// while a run is in progress can be joined with the persisted SyncRun record.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithSyncID(log, run.SyncID)
//	l.Info("Batch finished", zap.Int("processed", stats.Processed))
package logger
