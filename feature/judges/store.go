package judges

import (
	"context"
	"errors"
	"time"

	"judge-sync/feature/judges/models"

	"gorm.io/gorm"
)

// replaceColumns are rewritten on every successful reconciliation.
// external_id and created_at are never rewritten.
var replaceColumns = []string{
	"display_name", "court_name", "jurisdiction_code", "appointed_date",
	"education_summary", "biography_summary", "raw_external_payload", "updated_at",
}

var enrichmentColumns = []string{"education_summary", "biography_summary", "updated_at"}

// Store is the gorm-backed persistence of judicial entities.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByExternalID returns the entity or nil when none exists.
func (s *Store) FindByExternalID(ctx context.Context, externalID string) (*models.JudicialEntity, error) {
	var entity models.JudicialEntity
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *Store) Create(ctx context.Context, entity *models.JudicialEntity) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

// Replace overwrites the derived fields, summaries and raw payload of an
// existing entity. Nil summaries are written as NULL.
func (s *Store) Replace(ctx context.Context, entity *models.JudicialEntity) error {
	return s.db.WithContext(ctx).Model(entity).Select(replaceColumns).Updates(entity).Error
}

// SaveEnrichment persists the education and biography summaries.
func (s *Store) SaveEnrichment(ctx context.Context, entity *models.JudicialEntity) error {
	return s.db.WithContext(ctx).Model(entity).Select(enrichmentColumns).Updates(entity).Error
}

// KnownIDPage returns up to limit external ids with a primary key above
// afterID, ordered by primary key, plus the last primary key seen. An empty
// jurisdiction matches every entity.
func (s *Store) KnownIDPage(ctx context.Context, jurisdiction string, afterID uint, limit int) ([]string, uint, error) {
	var rows []models.JudicialEntity
	q := s.db.WithContext(ctx).
		Model(&models.JudicialEntity{}).
		Select("id", "external_id").
		Where("id > ?", afterID)
	if jurisdiction != "" {
		q = q.Where("jurisdiction_code = ?", jurisdiction)
	}
	if err := q.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, afterID, err
	}

	ids := make([]string, 0, len(rows))
	last := afterID
	for _, r := range rows {
		ids = append(ids, r.ExternalID)
		last = r.ID
	}
	return ids, last, nil
}

// StaleIDs returns the external ids of entities last updated before cutoff,
// oldest first. A zero cutoff selects every entity.
func (s *Store) StaleIDs(ctx context.Context, jurisdiction string, cutoff time.Time) ([]string, error) {
	q := s.db.WithContext(ctx).Model(&models.JudicialEntity{})
	if jurisdiction != "" {
		q = q.Where("jurisdiction_code = ?", jurisdiction)
	}
	if !cutoff.IsZero() {
		q = q.Where("updated_at < ?", cutoff)
	}

	var ids []string
	if err := q.Order("updated_at").Order("id").Pluck("external_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
