package judges

import (
	"context"
	"encoding/json"
	"errors"

	"judge-sync/core/batch"
	"judge-sync/core/registry"
	"judge-sync/feature/judges/models"

	"go.uber.org/zap"
)

// Reconciler brings one local entity in line with the registry.
type Reconciler struct {
	registry registry.Registry
	matcher  *Matcher
	store    *Store
	archive  *Archive
	home     string
	logger   *zap.Logger
}

// NewReconciler creates a Reconciler. archive may be nil.
func NewReconciler(reg registry.Registry, store *Store, archive *Archive, homeJurisdiction string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		registry: reg,
		matcher:  NewMatcher(store),
		store:    store,
		archive:  archive,
		home:     homeJurisdiction,
		logger:   logger,
	}
}

// Reconcile fetches externalID from the registry and creates or replaces the
// local entity, then enriches it. A 404 is ErrEntityNotFound and writes
// nothing.
func (r *Reconciler) Reconcile(ctx context.Context, externalID string) (batch.Outcome, error) {
	var outcome batch.Outcome

	person, err := r.registry.GetPerson(ctx, externalID)
	if errors.Is(err, registry.ErrNotFound) {
		return outcome, ErrEntityNotFound
	}
	if err != nil {
		return outcome, &FetchError{ExternalID: externalID, Err: err}
	}

	payload := []byte(person.Raw)
	if len(payload) == 0 {
		if payload, err = json.Marshal(person); err != nil {
			return outcome, &FetchError{ExternalID: externalID, Err: err}
		}
	}

	entity, err := r.matcher.FindLocal(ctx, externalID)
	if err != nil {
		return outcome, &PersistenceError{ExternalID: externalID, Op: "lookup", Err: err}
	}

	if entity != nil {
		applyDerived(entity, person, payload, r.home)
		if err := r.store.Replace(ctx, entity); err != nil {
			return outcome, &PersistenceError{ExternalID: externalID, Op: "update", Err: err}
		}
		outcome.Updated = true
	} else {
		entity = &models.JudicialEntity{ExternalID: externalID}
		applyDerived(entity, person, payload, r.home)
		if err := r.store.Create(ctx, entity); err != nil {
			return outcome, &PersistenceError{ExternalID: externalID, Op: "insert", Err: err}
		}
		outcome.Created = true
	}

	education := EducationSummary(person.Educations)
	biography := BiographySummary(person.Positions)
	if education != "" || biography != "" {
		entity.EducationSummary = optional(education)
		entity.BiographySummary = optional(biography)
		if err := r.store.SaveEnrichment(ctx, entity); err != nil {
			return outcome, &PersistenceError{ExternalID: externalID, Op: "enrich", Err: err}
		}
		outcome.Enhanced = true
	}

	if r.archive != nil {
		if err := r.archive.Put(ctx, externalID, payload); err != nil {
			return outcome, err
		}
	}

	r.logger.Debug("Reconciled entity",
		zap.String("external_id", externalID),
		zap.Bool("created", outcome.Created),
		zap.Bool("updated", outcome.Updated),
		zap.Bool("enhanced", outcome.Enhanced))

	return outcome, nil
}

// applyDerived overwrites every derived field of entity and clears the
// summaries of the previous snapshot. ExternalID is left untouched.
func applyDerived(entity *models.JudicialEntity, p *registry.Person, payload []byte, home string) {
	pos := CurrentPosition(p.Positions)

	var court *registry.Court
	if pos != nil {
		court = pos.Court
	}

	entity.DisplayName = DisplayName(p)
	entity.CourtName = ""
	if court != nil {
		entity.CourtName = court.FullName
	}
	entity.JurisdictionCode = NormalizeJurisdiction(court, home)
	entity.AppointedDate = AppointedDate(pos)
	entity.RawExternalPayload = string(payload)
	entity.EducationSummary = nil
	entity.BiographySummary = nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IsTransient reports whether a reconciliation error is worth retrying.
// Persistence failures never are.
func IsTransient(err error) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return false
	}
	return registry.IsTransient(err)
}
