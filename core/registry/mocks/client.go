package mocks

import (
	"context"

	"judge-sync/core/registry"

	"github.com/stretchr/testify/mock"
)

// Registry is a mock implementation of registry.Registry
type Registry struct {
	mock.Mock
}

func (m *Registry) GetPerson(ctx context.Context, id string) (*registry.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*registry.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) ListPeople(ctx context.Context, filter registry.Filter, pageURL string) (*registry.PeoplePage, error) {
	args := m.Called(ctx, filter, pageURL)
	if p, ok := args.Get(0).(*registry.PeoplePage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
