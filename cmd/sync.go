package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"judge-sync/core/batch"
	"judge-sync/core/cache"
	"judge-sync/core/metrics"
	"judge-sync/core/registry"
	"judge-sync/core/storage"
	"judge-sync/feature/judges"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncIDs               []string
	syncBatchSize         int
	syncConcurrency       int
	syncJurisdiction      string
	syncForceRefresh      bool
	syncDiscoverLimit     int
	syncRetries           int
	syncInterBatchDelayMs int
	syncSkipWindowHours   int
	syncSkipDiscovery     bool
	syncMetricsTextfile   string
)

// syncCmd is the parent command for sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize local records with the remote registry",
}

// syncJudgesCmd runs one judge sync.
var syncJudgesCmd = &cobra.Command{
	Use:   "judges",
	Short: "Sync judicial entities (specific ids, stale refresh and discovery)",
	Long: `Sync judicial entities with the remote registry.

With --ids only those entities are reconciled. Otherwise entities not updated
within the staleness threshold are refreshed and new entities are discovered.

Examples:
  # Refresh stale federal judges and discover up to 300 new ones
  sync judges

  # Reconcile two specific registry ids
  sync judges --ids 1213,4411

  # Refresh every Californian judge, no discovery
  sync judges --jurisdiction CA --force-refresh --skip-discovery`,
	RunE: runSyncJudges,
}

func init() {
	f := syncJudgesCmd.Flags()
	f.StringSliceVar(&syncIDs, "ids", nil, "Registry ids to reconcile (comma separated)")
	f.IntVar(&syncBatchSize, "batch-size", 0, "Items per batch (default from config)")
	f.IntVar(&syncConcurrency, "concurrency", 0, "Concurrent items within a batch (default from config)")
	f.StringVar(&syncJurisdiction, "jurisdiction", "", "Two-letter state code, US for federal, or a native registry filter")
	f.BoolVar(&syncForceRefresh, "force-refresh", false, "Refresh every local entity regardless of staleness")
	f.IntVar(&syncDiscoverLimit, "discover-limit", 0, "Maximum new ids to discover (default from config)")
	f.IntVar(&syncRetries, "retries", 0, "Retries per item on transient failures")
	f.IntVar(&syncInterBatchDelayMs, "inter-batch-delay-ms", 0, "Delay between batches in milliseconds")
	f.IntVar(&syncSkipWindowHours, "skip-window-hours", 0, "Skip items synced within this many hours")
	f.BoolVar(&syncSkipDiscovery, "skip-discovery", false, "Only refresh stale entities")
	f.StringVar(&syncMetricsTextfile, "metrics-textfile", "", "Write run metrics to this file in Prometheus text format")

	syncCmd.AddCommand(syncJudgesCmd)
	RootCmd.AddCommand(syncCmd)
}

func runSyncJudges(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	reg, err := registry.New(cfg.Registry)
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}

	promReg := prometheus.NewRegistry()
	orchOpts := []judges.OrchestratorOption{
		judges.WithMetrics(metrics.New(promReg)),
	}

	if cfg.Storage.ArchiveEnabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return err
		}
		orchOpts = append(orchOpts, judges.WithArchive(judges.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.ArchivePrefix)))
		l.Info("Archiving raw registry payloads", zap.String("bucket", cfg.Storage.Bucket), zap.String("prefix", cfg.Storage.ArchivePrefix))
	}

	rdb, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		retention := time.Duration(max(cfg.Sync.SkipWindowHours, 24)) * time.Hour
		orchOpts = append(orchOpts, judges.WithFreshness(batch.NewRedisFreshness(rdb, cfg.Redis.KeyPrefix, retention)))
	}

	orch := judges.NewOrchestrator(cfg.Sync, judges.NewStore(db), reg, judges.NewAuditLogger(db, nil), l, orchOpts...)

	opts := judges.Options{
		BatchSize:     syncBatchSize,
		Concurrency:   syncConcurrency,
		Jurisdiction:  strings.TrimSpace(syncJurisdiction),
		ForceRefresh:  syncForceRefresh,
		EntityIDs:     syncIDs,
		DiscoverLimit: syncDiscoverLimit,
		SkipDiscovery: syncSkipDiscovery,
	}
	if cmd.Flags().Changed("retries") {
		opts.Retries = &syncRetries
	}
	if cmd.Flags().Changed("inter-batch-delay-ms") {
		opts.InterBatchDelayMs = &syncInterBatchDelayMs
	}
	if cmd.Flags().Changed("skip-window-hours") {
		opts.SkipWindowHours = &syncSkipWindowHours
	}

	result, err := orch.SyncJudges(ctx, opts)
	writeMetrics(l, promReg)
	if err != nil {
		return err
	}

	printSyncResult(l, result)
	return nil
}

func writeMetrics(l *zap.Logger, g prometheus.Gatherer) {
	if syncMetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(syncMetricsTextfile, g); err != nil {
		l.Warn("Failed to write metrics textfile", zap.String("path", syncMetricsTextfile), zap.Error(err))
	}
}

// printSyncResult logs the result and a sample of item errors.
func printSyncResult(l *zap.Logger, r *judges.Result) {
	l.Info("Sync result",
		zap.String("sync_id", r.SyncID),
		zap.String("kind", r.Kind),
		zap.Bool("success", r.Success),
		zap.Int("processed", r.Processed),
		zap.Int("created", r.Created),
		zap.Int("updated", r.Updated),
		zap.Int("enhanced", r.Enhanced),
		zap.Int("skipped", r.Skipped),
		zap.Int("errors", len(r.Errors)),
		zap.Int64("duration_ms", r.DurationMs),
	)

	maxShow := min(5, len(r.Errors))
	for _, msg := range r.Errors[:maxShow] {
		l.Warn("Item error", zap.String("error", msg))
	}
	if len(r.Errors) > maxShow {
		l.Info("Additional errors not shown", zap.Int("count", len(r.Errors)-maxShow))
	}
	if !r.Success {
		l.Info("Re-run with --ids set to the failed subset to retry them.")
	}
}
