package judges_test

import (
	"encoding/json"
	"testing"
	"time"

	"judge-sync/core/database"
	"judge-sync/core/registry"
	"judge-sync/feature/judges"
	"judge-sync/feature/judges/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.JudicialEntity{}, &models.SyncRun{}))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// federalJudge builds a registry person holding a current federal seat.
func federalJudge(id, first, last string) *registry.Person {
	p := &registry.Person{
		ID:        registry.ID(id),
		NameFirst: first,
		NameLast:  last,
		Positions: []registry.Position{
			{
				Court:        &registry.Court{ID: "nysd", FullName: "District Court, S.D. New York", Jurisdiction: "FD"},
				PositionType: "jud",
				DateStart:    strPtr("2010-06-01"),
			},
		},
		Educations: []registry.Education{
			{School: &registry.School{Name: "Yale University"}, DegreeLevel: "jd", DegreeYear: intPtr(1990)},
		},
	}
	return withRaw(p)
}

// stateJudge builds a registry person on a state court without educations.
func stateJudge(id, first, last, court string) *registry.Person {
	p := &registry.Person{
		ID:        registry.ID(id),
		NameFirst: first,
		NameLast:  last,
		Positions: []registry.Position{
			{Court: &registry.Court{FullName: court, Jurisdiction: "S"}, PositionType: "jus"},
		},
	}
	return withRaw(p)
}

func withRaw(p *registry.Person) *registry.Person {
	raw, _ := json.Marshal(p)
	p.Raw = raw
	return p
}

func seedEntity(t *testing.T, db *gorm.DB, externalID, jurisdiction string, updatedAt time.Time) *models.JudicialEntity {
	t.Helper()
	e := &models.JudicialEntity{
		ExternalID:       externalID,
		DisplayName:      "Judge " + externalID,
		JurisdictionCode: jurisdiction,
	}
	require.NoError(t, db.Create(e).Error)
	require.NoError(t, db.Model(e).UpdateColumn("updated_at", updatedAt).Error)
	e.UpdatedAt = updatedAt
	return e
}

func findEntity(t *testing.T, db *gorm.DB, externalID string) models.JudicialEntity {
	t.Helper()
	var e models.JudicialEntity
	require.NoError(t, db.Where("external_id = ?", externalID).Take(&e).Error)
	return e
}

func testConfig() judges.Config {
	return judges.Config{
		BatchSize:        10,
		Concurrency:      1,
		DiscoverLimit:    300,
		StaleAfterHours:  168,
		HomeJurisdiction: "US",
		BackoffBaseMs:    1,
		BackoffCapMs:     2,
		KnownIDsPageSize: 1000,
	}
}
