package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"judge-sync/core/batch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errTransient = errors.New("temporarily unavailable")

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{c: make(chan time.Time, 1)}
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func (t *recordingTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

func noSleep(sleeps *[]time.Duration) batch.Option {
	return batch.WithSleep(func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	})
}

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestRun_IsolatesItemFailures(t *testing.T) {
	var sleeps []time.Duration
	r := batch.NewRunner(batch.Config{BatchSize: 2}, zap.NewNop(), noSleep(&sleeps))

	stats := r.Run(context.Background(), []string{"A", "B", "C"}, func(_ context.Context, item string) (batch.Outcome, error) {
		switch item {
		case "A":
			return batch.Outcome{Updated: true}, nil
		case "B":
			return batch.Outcome{}, errors.New("not found")
		default:
			return batch.Outcome{Created: true}, nil
		}
	})

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, []string{"B: not found"}, stats.Errors)
}

func TestRun_EmptyWorklist(t *testing.T) {
	called := false
	r := batch.NewRunner(batch.Config{}, nil)

	stats := r.Run(context.Background(), nil, func(context.Context, string) (batch.Outcome, error) {
		called = true
		return batch.Outcome{}, nil
	})

	assert.False(t, called)
	assert.Zero(t, stats.Processed)
	assert.Empty(t, stats.Errors)
}

func TestRun_SleepsOnlyBetweenBatches(t *testing.T) {
	var sleeps []time.Duration
	r := batch.NewRunner(batch.Config{BatchSize: 2, InterBatchDelay: 2 * time.Second}, zap.NewNop(), noSleep(&sleeps))

	items := []string{"1", "2", "3", "4", "5"}
	stats := r.Run(context.Background(), items, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{Updated: true}, nil
	})

	assert.Equal(t, 5, stats.Processed)
	// Three batches, two gaps.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps)
}

func TestRun_SleepsBetweenBatchesOfSuccessiveRuns(t *testing.T) {
	var sleeps []time.Duration
	r := batch.NewRunner(batch.Config{BatchSize: 1, InterBatchDelay: time.Second}, zap.NewNop(), noSleep(&sleeps))
	fn := func(context.Context, string) (batch.Outcome, error) { return batch.Outcome{}, nil }

	r.Run(context.Background(), nil, fn)
	assert.Empty(t, sleeps)

	r.Run(context.Background(), []string{"1"}, fn)
	assert.Empty(t, sleeps)

	stats := r.Run(context.Background(), []string{"2", "3"}, fn)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps)
}

func TestRun_ProcessesItemsInOrderSequentially(t *testing.T) {
	var seen []string
	r := batch.NewRunner(batch.Config{BatchSize: 3}, zap.NewNop())

	r.Run(context.Background(), []string{"c", "a", "b", "d"}, func(_ context.Context, item string) (batch.Outcome, error) {
		seen = append(seen, item)
		return batch.Outcome{}, nil
	})

	assert.Equal(t, []string{"c", "a", "b", "d"}, seen)
}

func TestRun_RetriesTransientWithCappedBackoff(t *testing.T) {
	timer := newRecordingTimer()
	r := batch.NewRunner(batch.Config{
		Retries:     3,
		BackoffBase: 500 * time.Millisecond,
		BackoffCap:  time.Second,
		IsTransient: isTransient,
	}, zap.NewNop(), batch.WithTimer(timer))

	var calls int32
	stats := r.Run(context.Background(), []string{"X"}, func(context.Context, string) (batch.Outcome, error) {
		if atomic.AddInt32(&calls, 1) < 4 {
			return batch.Outcome{}, errTransient
		}
		return batch.Outcome{Updated: true}, nil
	})

	assert.EqualValues(t, 4, calls)
	assert.Equal(t, 1, stats.Updated)
	assert.Empty(t, stats.Errors)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, time.Second}, timer.Waits())
}

func TestRun_GivesUpAfterRetries(t *testing.T) {
	timer := newRecordingTimer()
	r := batch.NewRunner(batch.Config{
		Retries:     2,
		BackoffBase: 10 * time.Millisecond,
		BackoffCap:  time.Second,
		IsTransient: isTransient,
	}, zap.NewNop(), batch.WithTimer(timer))

	var calls int32
	stats := r.Run(context.Background(), []string{"X"}, func(context.Context, string) (batch.Outcome, error) {
		atomic.AddInt32(&calls, 1)
		return batch.Outcome{}, errTransient
	})

	assert.EqualValues(t, 3, calls)
	assert.Equal(t, 1, stats.Processed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "X: temporarily unavailable", stats.Errors[0])
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, timer.Waits())
}

func TestRun_DoesNotRetryPermanentErrors(t *testing.T) {
	timer := newRecordingTimer()
	r := batch.NewRunner(batch.Config{Retries: 5, IsTransient: isTransient}, zap.NewNop(), batch.WithTimer(timer))

	var calls int32
	stats := r.Run(context.Background(), []string{"X"}, func(context.Context, string) (batch.Outcome, error) {
		atomic.AddInt32(&calls, 1)
		return batch.Outcome{}, errors.New("bad request")
	})

	assert.EqualValues(t, 1, calls)
	assert.Equal(t, []string{"X: bad request"}, stats.Errors)
	assert.Empty(t, timer.Waits())
}

func TestRun_UsesLabelInErrors(t *testing.T) {
	r := batch.NewRunner(batch.Config{
		Label: func(item string) string { return "person " + item },
	}, zap.NewNop())

	stats := r.Run(context.Background(), []string{"7"}, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{}, errors.New("boom")
	})

	assert.Equal(t, []string{"person 7: boom"}, stats.Errors)
}

func TestRun_SkipsRecentlySyncedItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := batch.NewMemoryFreshness()
	ctx := context.Background()
	require.NoError(t, fresh.MarkSynced(ctx, "recent", now.Add(-time.Hour), 0))
	require.NoError(t, fresh.MarkSynced(ctx, "old", now.Add(-48*time.Hour), 0))

	r := batch.NewRunner(batch.Config{
		SkipWindow: 24 * time.Hour,
		Freshness:  fresh,
	}, zap.NewNop(), batch.WithClock(func() time.Time { return now }))

	var seen []string
	stats := r.Run(ctx, []string{"recent", "old", "new"}, func(_ context.Context, item string) (batch.Outcome, error) {
		seen = append(seen, item)
		return batch.Outcome{Updated: true}, nil
	})

	assert.Equal(t, []string{"old", "new"}, seen)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Processed)

	last, ok, err := fresh.LastSynced(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, now, last)
}

func TestRun_FailedItemsAreNotMarkedFresh(t *testing.T) {
	fresh := batch.NewMemoryFreshness()
	r := batch.NewRunner(batch.Config{SkipWindow: time.Hour, Freshness: fresh}, zap.NewNop())

	r.Run(context.Background(), []string{"X"}, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{}, errors.New("boom")
	})

	_, ok, err := fresh.LastSynced(context.Background(), "X")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingFreshness struct{}

func (failingFreshness) LastSynced(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("cache down")
}

func (failingFreshness) MarkSynced(context.Context, string, time.Time, time.Duration) error {
	return errors.New("cache down")
}

func TestRun_FreshnessErrorsDoNotBlockItems(t *testing.T) {
	r := batch.NewRunner(batch.Config{SkipWindow: time.Hour, Freshness: failingFreshness{}}, zap.NewNop())

	stats := r.Run(context.Background(), []string{"A", "B"}, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{Created: true}, nil
	})

	assert.Equal(t, 2, stats.Created)
	assert.Zero(t, stats.Skipped)
	assert.Empty(t, stats.Errors)
}

type windowRecorder struct {
	batch.Freshness
	windows []time.Duration
}

func (w *windowRecorder) MarkSynced(ctx context.Context, item string, at time.Time, window time.Duration) error {
	w.windows = append(w.windows, window)
	return w.Freshness.MarkSynced(ctx, item, at, window)
}

func TestRun_MarksWithSkipWindow(t *testing.T) {
	fresh := &windowRecorder{Freshness: batch.NewMemoryFreshness()}
	r := batch.NewRunner(batch.Config{SkipWindow: 72 * time.Hour, Freshness: fresh}, zap.NewNop())

	r.Run(context.Background(), []string{"A"}, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{Updated: true}, nil
	})

	assert.Equal(t, []time.Duration{72 * time.Hour}, fresh.windows)
}

func TestRun_PoolBoundsConcurrency(t *testing.T) {
	r := batch.NewRunner(batch.Config{BatchSize: 20, Concurrency: 3}, zap.NewNop())

	var inFlight, peak int32
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprint(i)
	}

	stats := r.Run(context.Background(), items, func(_ context.Context, item string) (batch.Outcome, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		if item == "13" {
			return batch.Outcome{}, errors.New("boom")
		}
		return batch.Outcome{Updated: true}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, 20, stats.Processed)
	assert.Equal(t, 19, stats.Updated)
	assert.Equal(t, []string{"13: boom"}, stats.Errors)
}

func TestRun_StopsWhenCancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := batch.NewRunner(batch.Config{BatchSize: 1, InterBatchDelay: time.Second}, zap.NewNop(),
		batch.WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}))

	stats := r.Run(ctx, []string{"A", "B", "C"}, func(context.Context, string) (batch.Outcome, error) {
		return batch.Outcome{Updated: true}, nil
	})

	assert.Equal(t, 1, stats.Processed)
}
