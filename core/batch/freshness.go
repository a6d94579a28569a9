package batch

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Freshness remembers when items were last synced successfully.
type Freshness interface {
	// LastSynced returns the last successful sync time of item, if known.
	LastSynced(ctx context.Context, item string) (time.Time, bool, error)
	// MarkSynced records a successful sync of item at the given time. The
	// record must stay readable for at least window.
	MarkSynced(ctx context.Context, item string, at time.Time, window time.Duration) error
}

// MemoryFreshness is a process-local Freshness. It only dedupes work within
// one process; use RedisFreshness to share the window across runs.
type MemoryFreshness struct {
	mu     sync.RWMutex
	synced map[string]time.Time
}

func NewMemoryFreshness() *MemoryFreshness {
	return &MemoryFreshness{synced: make(map[string]time.Time)}
}

func (m *MemoryFreshness) LastSynced(_ context.Context, item string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.synced[item]
	return at, ok, nil
}

func (m *MemoryFreshness) MarkSynced(_ context.Context, item string, at time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced[item] = at
	return nil
}

// RedisFreshness stores sync times in Redis so that separate runs (cron and
// manual) observe the same skip window. Keys expire after retention or the
// caller's window, whichever is longer.
type RedisFreshness struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

func NewRedisFreshness(client redis.UniversalClient, prefix string, retention time.Duration) *RedisFreshness {
	return &RedisFreshness{client: client, prefix: prefix, retention: retention}
}

func (r *RedisFreshness) LastSynced(ctx context.Context, item string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+item).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unreadable entries are treated as absent.
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (r *RedisFreshness) MarkSynced(ctx context.Context, item string, at time.Time, window time.Duration) error {
	ttl := max(r.retention, window)
	return r.client.Set(ctx, r.prefix+item, strconv.FormatInt(at.UnixMilli(), 10), ttl).Err()
}
