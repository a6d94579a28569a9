package models

import "time"

// JudicialEntity is the local record of a judge mirrored from the registry.
// ExternalID is the registry's person id and never changes once written.
type JudicialEntity struct {
	ID                 uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExternalID         string     `gorm:"column:external_id;size:64;uniqueIndex;not null" json:"externalId"`
	DisplayName        string     `gorm:"column:display_name;size:255;not null" json:"displayName"`
	CourtName          string     `gorm:"column:court_name;size:255" json:"courtName"`
	JurisdictionCode   string     `gorm:"column:jurisdiction_code;size:16;index" json:"jurisdictionCode"`
	AppointedDate      *time.Time `gorm:"column:appointed_date" json:"appointedDate,omitempty"`
	EducationSummary   *string    `gorm:"column:education_summary;type:text" json:"educationSummary,omitempty"`
	BiographySummary   *string    `gorm:"column:biography_summary;type:text" json:"biographySummary,omitempty"`
	RawExternalPayload string     `gorm:"column:raw_external_payload;type:longtext" json:"-"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;index" json:"updatedAt"`
}

func (JudicialEntity) TableName() string {
	return "judicial_entities"
}

// EntityColumns lists the columns the engine reads and writes.
var EntityColumns = []string{
	"id", "external_id", "display_name", "court_name", "jurisdiction_code",
	"appointed_date", "education_summary", "biography_summary",
	"raw_external_payload", "created_at", "updated_at",
}
