// filepath: internal/services/mocks/repository_mock.go
package mocks

import (
	"context"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockRepositoryService is a mock implementation of services.RepositoryService
type MockRepositoryService struct {
	mock.Mock
}

var _ services.RepositoryService = (*MockRepositoryService)(nil)

func (m *MockRepositoryService) List(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repository), args.Error(1)
}

func (m *MockRepositoryService) Get(ctx context.Context, id int64) (*models.Repository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryService) Create(ctx context.Context, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	args := m.Called(ctx, p, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryService) Update(ctx context.Context, id int64, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error) {
	args := m.Called(ctx, id, p, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepositoryService) UpdateMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error) {
	args := m.Called(ctx, id, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryService) UpdateMigrationStatus(ctx context.Context, id int64, status string, progress *int) (*models.Repository, error) {
	args := m.Called(ctx, id, status, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}
