package judges

import (
	"context"

	"judge-sync/feature/judges/models"
)

// Matcher resolves a registry entity to its local record. Identity is the
// external id only; names are never used to match.
type Matcher struct {
	store *Store
}

func NewMatcher(store *Store) *Matcher {
	return &Matcher{store: store}
}

// FindLocal returns the local entity for externalID, or nil when there is none.
func (m *Matcher) FindLocal(ctx context.Context, externalID string) (*models.JudicialEntity, error) {
	return m.store.FindByExternalID(ctx, externalID)
}
