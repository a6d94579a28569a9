package judges

import (
	"context"
	"fmt"
	"strings"
	"time"

	"judge-sync/core/batch"
	"judge-sync/core/logger"
	"judge-sync/core/metrics"
	"judge-sync/core/registry"
	"judge-sync/feature/judges/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the per-run overrides accepted by SyncJudges. Zero values fall
// back to Config; the pointer fields distinguish an explicit zero from unset.
type Options struct {
	BatchSize         int      `json:"batchSize,omitempty"`
	Concurrency       int      `json:"concurrency,omitempty"`
	Jurisdiction      string   `json:"jurisdiction,omitempty"`
	ForceRefresh      bool     `json:"forceRefresh,omitempty"`
	EntityIDs         []string `json:"entityIds,omitempty"`
	DiscoverLimit     int      `json:"discoverLimit,omitempty"`
	Retries           *int     `json:"retries,omitempty"`
	InterBatchDelayMs *int     `json:"interBatchDelayMs,omitempty"`
	SkipWindowHours   *int     `json:"skipWindowHours,omitempty"`
	SkipDiscovery     bool     `json:"skipDiscovery,omitempty"`
}

// Result summarises one run for the caller.
type Result struct {
	SyncID     string   `json:"syncId"`
	Kind       string   `json:"kind"`
	Success    bool     `json:"success"`
	Processed  int      `json:"processed"`
	Updated    int      `json:"updated"`
	Created    int      `json:"created"`
	Enhanced   int      `json:"enhanced"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	DurationMs int64    `json:"durationMs"`
}

// Orchestrator is the entry point of a sync run.
type Orchestrator struct {
	cfg        Config
	store      *Store
	reconciler *Reconciler
	discovery  *Discovery
	audit      *AuditLogger
	freshness  batch.Freshness
	metrics    *metrics.Metrics
	logger     *zap.Logger

	archive    *Archive
	now        func() time.Time
	newID      func() string
	runnerOpts []batch.Option
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithArchive stores every fetched payload in the archive.
func WithArchive(a *Archive) OrchestratorOption {
	return func(o *Orchestrator) { o.archive = a }
}

// WithFreshness replaces the in-process skip-window store, typically with a
// RedisFreshness shared between runs.
func WithFreshness(f batch.Freshness) OrchestratorOption {
	return func(o *Orchestrator) { o.freshness = f }
}

func WithMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRunnerOptions passes options to every batch runner the orchestrator creates.
func WithRunnerOptions(opts ...batch.Option) OrchestratorOption {
	return func(o *Orchestrator) { o.runnerOpts = append(o.runnerOpts, opts...) }
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = newID }
}

// NewOrchestrator wires the reconciler, discovery and audit logger around store.
func NewOrchestrator(cfg Config, store *Store, reg registry.Registry, audit *AuditLogger, log *zap.Logger, opts ...OrchestratorOption) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		cfg:       cfg,
		store:     store,
		audit:     audit,
		freshness: batch.NewMemoryFreshness(),
		logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.reconciler = NewReconciler(reg, store, o.archive, cfg.HomeJurisdiction, log)
	o.discovery = NewDiscovery(reg, store, cfg.KnownIDsPageSize, log)
	return o
}

// SyncJudges runs one sync. With EntityIDs set, exactly those ids are
// reconciled. Otherwise stale local entities are refreshed and, unless
// SkipDiscovery is set, newly discovered ids are reconciled after them.
//
// Per-item failures are reported in Result.Errors and leave the run completed.
// Only faults outside item isolation return an error, after the run has been
// recorded as failed.
func (o *Orchestrator) SyncJudges(ctx context.Context, opts Options) (*Result, error) {
	started := o.now()
	syncID := o.newID()
	ids := normalizeIDs(opts.EntityIDs)
	kind := runKind(ids, opts)
	jurisdiction := opts.Jurisdiction
	if strings.TrimSpace(jurisdiction) == "" {
		jurisdiction = o.cfg.HomeJurisdiction
	}

	log := logger.WithSyncID(o.logger, syncID)
	log.Info("Sync run started",
		zap.String("kind", kind),
		zap.String("jurisdiction", jurisdiction),
		zap.Int("entity_ids", len(ids)))

	run, err := o.audit.Start(ctx, syncID, kind, opts)
	if err != nil {
		o.metrics.ObserveRun(kind, models.StatusFailed, o.now().Sub(started))
		return nil, fmt.Errorf("start sync run: %w", err)
	}

	fail := func(cause error) (*Result, error) {
		if ferr := o.audit.Fail(context.WithoutCancel(ctx), run, cause); ferr != nil {
			log.Error("Failed to record run failure", zap.Error(ferr))
		}
		o.metrics.ObserveRun(kind, models.StatusFailed, o.now().Sub(started))
		log.Error("Sync run failed", zap.Error(cause))
		return nil, cause
	}

	runner := batch.NewRunner(o.runnerConfig(opts), log, o.runnerOpts...)
	var stats batch.Stats

	if len(ids) > 0 {
		stats.Merge(runner.Run(ctx, ids, o.reconciler.Reconcile))
	} else {
		var cutoff time.Time
		if !opts.ForceRefresh {
			cutoff = o.now().Add(-o.staleAfter())
		}
		stale, err := o.store.StaleIDs(ctx, localJurisdiction(jurisdiction), cutoff)
		if err != nil {
			return fail(fmt.Errorf("query stale entities: %w", err))
		}
		log.Info("Refreshing stale entities", zap.Int("count", len(stale)), zap.Bool("force", opts.ForceRefresh))
		stats.Merge(runner.Run(ctx, stale, o.reconciler.Reconcile))

		if !opts.SkipDiscovery && ctx.Err() == nil {
			limit := opts.DiscoverLimit
			if limit <= 0 {
				limit = o.cfg.DiscoverLimit
			}
			fresh, err := o.discovery.DiscoverNewIDs(ctx, DiscoverOptions{Jurisdiction: jurisdiction, Limit: limit})
			if err != nil {
				return fail(fmt.Errorf("discover new entities: %w", err))
			}
			stats.Merge(runner.Run(ctx, fresh, o.reconciler.Reconcile))
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("sync run interrupted: %w", err))
	}

	elapsed := o.now().Sub(started)
	result := &Result{
		SyncID:     syncID,
		Kind:       kind,
		Success:    len(stats.Errors) == 0,
		Processed:  stats.Processed,
		Updated:    stats.Updated,
		Created:    stats.Created,
		Enhanced:   stats.Enhanced,
		Skipped:    stats.Skipped,
		Errors:     stats.Errors,
		DurationMs: elapsed.Milliseconds(),
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	if err := o.audit.Complete(ctx, run, stats); err != nil {
		log.Error("Failed to record run completion", zap.Error(err))
	}
	o.observe(kind, stats, elapsed)

	log.Info("Sync run completed",
		zap.Bool("success", result.Success),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("enhanced", result.Enhanced),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
		zap.Int64("duration_ms", result.DurationMs))

	return result, nil
}

func (o *Orchestrator) runnerConfig(opts Options) batch.Config {
	return batch.Config{
		BatchSize:       firstPositive(opts.BatchSize, o.cfg.BatchSize),
		Concurrency:     firstPositive(opts.Concurrency, o.cfg.Concurrency),
		Retries:         valueOr(opts.Retries, o.cfg.Retries),
		BackoffBase:     o.cfg.BackoffBase(),
		BackoffCap:      o.cfg.BackoffCap(),
		InterBatchDelay: time.Duration(valueOr(opts.InterBatchDelayMs, o.cfg.InterBatchDelayMs)) * time.Millisecond,
		SkipWindow:      time.Duration(valueOr(opts.SkipWindowHours, o.cfg.SkipWindowHours)) * time.Hour,
		Freshness:       o.freshness,
		IsTransient:     IsTransient,
	}
}

func (o *Orchestrator) staleAfter() time.Duration {
	if d := o.cfg.StaleAfter(); d > 0 {
		return d
	}
	return 7 * 24 * time.Hour
}

func (o *Orchestrator) observe(kind string, stats batch.Stats, elapsed time.Duration) {
	o.metrics.ObserveRun(kind, models.StatusCompleted, elapsed)
	o.metrics.ObserveItems(metrics.OutcomeCreated, stats.Created)
	o.metrics.ObserveItems(metrics.OutcomeUpdated, stats.Updated)
	o.metrics.ObserveItems(metrics.OutcomeEnhanced, stats.Enhanced)
	o.metrics.ObserveItems(metrics.OutcomeSkipped, stats.Skipped)
	o.metrics.ObserveItems(metrics.OutcomeError, len(stats.Errors))
}

func runKind(ids []string, opts Options) string {
	switch {
	case len(ids) > 0:
		return models.KindSpecificIDs
	case opts.SkipDiscovery:
		return models.KindStaleRefresh
	default:
		return models.KindDiscovery
	}
}

// normalizeIDs trims ids and drops blanks and duplicates, keeping first-seen order.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func firstPositive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func valueOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
