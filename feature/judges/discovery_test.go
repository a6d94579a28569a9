package judges_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"judge-sync/core/registry"
	regmocks "judge-sync/core/registry/mocks"
	"judge-sync/feature/judges"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pagedRegistry mocks a listing of pages where page i lists ids
// fmt.Sprint(i*size + j) for j in [0, size).
func pagedRegistry(pages, size int) *regmocks.Registry {
	reg := new(regmocks.Registry)
	for i := 0; i < pages; i++ {
		page := &registry.PeoplePage{Count: pages * size}
		for j := 0; j < size; j++ {
			page.Results = append(page.Results, registry.PersonSummary{ID: registry.ID(fmt.Sprint(i*size + j))})
		}
		if i < pages-1 {
			next := fmt.Sprintf("https://registry.test/people/?cursor=%d", i+1)
			page.Next = &next
		}
		pageURL := ""
		if i > 0 {
			pageURL = fmt.Sprintf("https://registry.test/people/?cursor=%d", i)
		}
		reg.On("ListPeople", mock.Anything, mock.Anything, pageURL).Return(page, nil)
	}
	return reg
}

func TestDiscoverNewIDs_StopsAtLimit(t *testing.T) {
	db := setupDB(t)
	reg := pagedRegistry(3, 100)
	d := judges.NewDiscovery(reg, judges.NewStore(db), 1000, nil)

	ids, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "US", Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, ids)
	reg.AssertNumberOfCalls(t, "ListPeople", 1)
}

func TestDiscoverNewIDs_ExcludesKnownIDs(t *testing.T) {
	db := setupDB(t)
	now := time.Now().UTC()
	for _, id := range []string{"0", "2", "101"} {
		seedEntity(t, db, id, "US", now)
	}
	reg := pagedRegistry(2, 100)
	d := judges.NewDiscovery(reg, judges.NewStore(db), 2, nil)
	ctx := context.Background()

	ids, err := d.DiscoverNewIDs(ctx, judges.DiscoverOptions{Jurisdiction: "federal", Limit: 150})
	require.NoError(t, err)

	assert.Len(t, ids, 150)
	assert.NotContains(t, ids, "0")
	assert.NotContains(t, ids, "2")
	assert.NotContains(t, ids, "101")
	assert.Equal(t, "1", ids[0])
	reg.AssertNumberOfCalls(t, "ListPeople", 2)

	again, err := d.DiscoverNewIDs(ctx, judges.DiscoverOptions{Jurisdiction: "federal", Limit: 150})
	require.NoError(t, err)
	assert.Equal(t, ids, again)
}

func TestDiscoverNewIDs_ExhaustsListing(t *testing.T) {
	db := setupDB(t)
	reg := pagedRegistry(3, 10)
	d := judges.NewDiscovery(reg, judges.NewStore(db), 1000, nil)

	ids, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "US", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, ids, 30)
	reg.AssertNumberOfCalls(t, "ListPeople", 3)
}

func TestDiscoverNewIDs_DedupesWithinTraversal(t *testing.T) {
	db := setupDB(t)
	next := "https://registry.test/people/?cursor=1"
	reg := new(regmocks.Registry)
	reg.On("ListPeople", mock.Anything, mock.Anything, "").Return(&registry.PeoplePage{
		Next:    &next,
		Results: []registry.PersonSummary{{ID: "1"}, {ID: "2"}, {ID: ""}},
	}, nil)
	reg.On("ListPeople", mock.Anything, mock.Anything, next).Return(&registry.PeoplePage{
		// A record modified mid-traversal shows up again on a later page.
		Results: []registry.PersonSummary{{ID: "2"}, {ID: "3"}},
	}, nil)

	d := judges.NewDiscovery(reg, judges.NewStore(db), 1000, nil)
	ids, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "US"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestDiscoverNewIDs_UsesJurisdictionFilter(t *testing.T) {
	db := setupDB(t)
	seedEntity(t, db, "1", "CA", time.Now().UTC())
	seedEntity(t, db, "2", "US", time.Now().UTC())

	want := registry.Filter{
		"positions__court__jurisdiction__startswith": {"S"},
		"positions__court__full_name__icontains":     {"California"},
	}
	reg := new(regmocks.Registry)
	reg.On("ListPeople", mock.Anything, want, "").Return(&registry.PeoplePage{
		Results: []registry.PersonSummary{{ID: "1"}, {ID: "2"}},
	}, nil)

	d := judges.NewDiscovery(reg, judges.NewStore(db), 1000, nil)
	ids, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "ca", Limit: 10})
	require.NoError(t, err)

	// Only Californian entities form the known set.
	assert.Equal(t, []string{"2"}, ids)
	reg.AssertExpectations(t)
}

func TestDiscoverNewIDs_UnsupportedJurisdiction(t *testing.T) {
	reg := new(regmocks.Registry)
	d := judges.NewDiscovery(reg, judges.NewStore(setupDB(t)), 1000, nil)

	_, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "Atlantis"})
	assert.ErrorIs(t, err, registry.ErrUnsupportedJurisdiction)
	reg.AssertNotCalled(t, "ListPeople", mock.Anything, mock.Anything, mock.Anything)
}

func TestDiscoverNewIDs_ListingFailure(t *testing.T) {
	reg := new(regmocks.Registry)
	reg.On("ListPeople", mock.Anything, mock.Anything, "").Return(nil, errors.New("connection reset"))
	d := judges.NewDiscovery(reg, judges.NewStore(setupDB(t)), 1000, nil)

	_, err := d.DiscoverNewIDs(context.Background(), judges.DiscoverOptions{Jurisdiction: "US"})
	assert.ErrorContains(t, err, "list registry page 1: connection reset")
}
