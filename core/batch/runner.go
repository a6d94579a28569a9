package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls how a worklist is executed.
type Config struct {
	// BatchSize is the number of items per batch. Defaults to 10.
	BatchSize int
	// Concurrency caps in-flight items within a batch. 1 or less is sequential.
	Concurrency int
	// Retries is how many extra attempts a transient failure gets.
	Retries int
	// BackoffBase and BackoffCap bound the retry delay: min(base*2^attempt, cap).
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// InterBatchDelay is slept between consecutive batches, including batches
	// of successive Run calls on the same Runner.
	InterBatchDelay time.Duration
	// SkipWindow skips items synced more recently than this. Zero disables it.
	SkipWindow time.Duration
	// Freshness backs the skip window and is updated after each success.
	Freshness Freshness
	// IsTransient decides which errors are retried. Nil retries nothing.
	IsTransient func(error) bool
	// Label renders an item in error messages. Defaults to the item itself.
	Label func(item string) string
}

// Runner executes worklists in fixed-size batches. Run calls on one Runner
// must not overlap.
type Runner struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	timer  backoff.Timer

	// issued is set once the first batch has started.
	issued bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the time source used by the skip window.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithSleep replaces the inter-batch sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// WithTimer replaces the timer driving retry backoff.
func WithTimer(t backoff.Timer) Option {
	return func(r *Runner) { r.timer = t }
}

// NewRunner creates a Runner, filling unset config with defaults.
func NewRunner(cfg Config, logger *zap.Logger, opts ...Option) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BackoffCap < cfg.BackoffBase {
		cfg.BackoffCap = cfg.BackoffBase
	}
	if cfg.Label == nil {
		cfg.Label = func(item string) string { return item }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes worklist and returns the aggregated stats. Item failures are
// collected in Stats.Errors and never stop the run; only a cancelled context
// ends it early, leaving the remaining items unprocessed.
func (r *Runner) Run(ctx context.Context, worklist []string, fn ItemFunc) Stats {
	var total Stats
	batches := partition(worklist, r.cfg.BatchSize)

	for i, items := range batches {
		if r.issued && r.cfg.InterBatchDelay > 0 {
			if err := r.sleep(ctx, r.cfg.InterBatchDelay); err != nil {
				r.logger.Warn("Run interrupted between batches",
					zap.Int("batch", i+1),
					zap.Int("remaining_items", countRemaining(batches[i:])),
					zap.Error(err))
				break
			}
		}

		r.issued = true
		start := time.Now()
		stats := r.runBatch(ctx, items, fn)
		total.Merge(stats)

		r.logger.Info("Batch finished",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("processed", stats.Processed),
			zap.Int("created", stats.Created),
			zap.Int("updated", stats.Updated),
			zap.Int("skipped", stats.Skipped),
			zap.Int("errors", len(stats.Errors)),
			zap.Duration("duration", time.Since(start)))
	}

	return total
}

type itemResult struct {
	outcome Outcome
	err     error
	skipped bool
}

func (r *Runner) runBatch(ctx context.Context, items []string, fn ItemFunc) Stats {
	results := make([]itemResult, len(items))

	if r.cfg.Concurrency <= 1 {
		for i, item := range items {
			results[i] = r.process(ctx, item, fn)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.cfg.Concurrency)
		for i, item := range items {
			g.Go(func() error {
				// Each goroutine owns results[i]; errors stay per item.
				results[i] = r.process(ctx, item, fn)
				return nil
			})
		}
		_ = g.Wait()
	}

	var stats Stats
	for i, res := range results {
		switch {
		case res.skipped:
			stats.Skipped++
		case res.err != nil:
			stats.Processed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", r.cfg.Label(items[i]), res.err))
		default:
			stats.Processed++
			stats.record(res.outcome)
		}
	}
	return stats
}

func (r *Runner) process(ctx context.Context, item string, fn ItemFunc) itemResult {
	if r.isFresh(ctx, item) {
		return itemResult{skipped: true}
	}

	outcome, err := r.attempt(ctx, item, fn)
	if err != nil {
		return itemResult{err: err}
	}

	if r.cfg.Freshness != nil {
		if err := r.cfg.Freshness.MarkSynced(ctx, item, r.now(), r.cfg.SkipWindow); err != nil {
			r.logger.Warn("Failed to record sync time", zap.String("item", item), zap.Error(err))
		}
	}
	return itemResult{outcome: outcome}
}

func (r *Runner) isFresh(ctx context.Context, item string) bool {
	if r.cfg.SkipWindow <= 0 || r.cfg.Freshness == nil {
		return false
	}
	last, ok, err := r.cfg.Freshness.LastSynced(ctx, item)
	if err != nil {
		r.logger.Warn("Freshness lookup failed, processing item", zap.String("item", item), zap.Error(err))
		return false
	}
	return ok && r.now().Sub(last) < r.cfg.SkipWindow
}

// attempt calls fn, retrying transient failures with exponential backoff.
func (r *Runner) attempt(ctx context.Context, item string, fn ItemFunc) (Outcome, error) {
	if r.cfg.Retries <= 0 || r.cfg.IsTransient == nil {
		return fn(ctx, item)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BackoffBase
	b.MaxInterval = r.cfg.BackoffCap
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	var outcome Outcome
	op := func() error {
		o, err := fn(ctx, item)
		if err == nil {
			outcome = o
			return nil
		}
		if r.cfg.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Debug("Retrying item after transient failure",
			zap.String("item", item),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.Retries)), ctx)
	if err := backoff.RetryNotifyWithTimer(op, policy, notify, r.timer); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func partition(items []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func countRemaining(batches [][]string) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
