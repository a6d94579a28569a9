package judges

import (
	"context"
	"fmt"
	"strings"

	"judge-sync/core/registry"

	"go.uber.org/zap"
)

const defaultKnownIDsPageSize = 1000

// DiscoverOptions bounds one discovery pass.
type DiscoverOptions struct {
	Jurisdiction string
	// Limit caps the number of ids returned. Zero or less means no cap.
	Limit int
}

// Discovery finds registry ids that have no local entity yet.
type Discovery struct {
	registry registry.Registry
	store    *Store
	pageSize int
	logger   *zap.Logger
}

func NewDiscovery(reg registry.Registry, store *Store, knownIDsPageSize int, logger *zap.Logger) *Discovery {
	if knownIDsPageSize <= 0 {
		knownIDsPageSize = defaultKnownIDsPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{
		registry: reg,
		store:    store,
		pageSize: knownIDsPageSize,
		logger:   logger,
	}
}

// DiscoverNewIDs loads every known external id for the jurisdiction, then walks
// the registry listing newest-modified first and collects ids not in that set,
// in listing order and without duplicates. Paging stops at the last page or
// once Limit ids are collected.
//
// The known set is held in memory in full; only its loading is paged.
func (d *Discovery) DiscoverNewIDs(ctx context.Context, opts DiscoverOptions) ([]string, error) {
	filter, err := registry.FilterFor(opts.Jurisdiction)
	if err != nil {
		return nil, err
	}

	known, err := d.knownIDs(ctx, localJurisdiction(opts.Jurisdiction))
	if err != nil {
		return nil, fmt.Errorf("load known ids: %w", err)
	}

	var (
		found   []string
		pageURL string
		pages   int
	)
	for {
		page, err := d.registry.ListPeople(ctx, filter, pageURL)
		if err != nil {
			return nil, fmt.Errorf("list registry page %d: %w", pages+1, err)
		}
		pages++

		for _, row := range page.Results {
			id := string(row.ID)
			if id == "" {
				continue
			}
			if _, seen := known[id]; seen {
				continue
			}
			known[id] = struct{}{}
			found = append(found, id)
			if opts.Limit > 0 && len(found) >= opts.Limit {
				d.logDone(opts, len(known), pages, len(found))
				return found, nil
			}
		}

		pageURL = page.NextURL()
		if pageURL == "" {
			break
		}
	}

	d.logDone(opts, len(known), pages, len(found))
	return found, nil
}

func (d *Discovery) knownIDs(ctx context.Context, jurisdiction string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	var after uint
	for {
		ids, last, err := d.store.KnownIDPage(ctx, jurisdiction, after, d.pageSize)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			known[id] = struct{}{}
		}
		if len(ids) < d.pageSize {
			return known, nil
		}
		after = last
	}
}

func (d *Discovery) logDone(opts DiscoverOptions, known, pages, found int) {
	d.logger.Info("Discovery finished",
		zap.String("jurisdiction", opts.Jurisdiction),
		zap.Int("limit", opts.Limit),
		zap.Int("pages", pages),
		zap.Int("known_ids", known),
		zap.Int("new_ids", found))
}

// localJurisdiction maps a discovery jurisdiction to the code stored on
// entities. Native registry filters have no local code and match everything.
func localJurisdiction(jurisdiction string) string {
	if strings.Contains(jurisdiction, "=") {
		return ""
	}
	return registry.CanonicalJurisdiction(jurisdiction)
}
