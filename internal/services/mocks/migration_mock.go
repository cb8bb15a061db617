// filepath: internal/services/mocks/migration_mock.go
package mocks

import (
	"context"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockMigrationService is a mock implementation of services.MigrationService
type MockMigrationService struct {
	mock.Mock
}

var _ services.MigrationService = (*MockMigrationService)(nil)

func (m *MockMigrationService) List(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Migration), args.Error(1)
}

func (m *MockMigrationService) Get(ctx context.Context, id int64) (*models.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Create(ctx context.Context, p models.MigrationPayload) (*models.Migration, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Update(ctx context.Context, id int64, p models.MigrationPayload) (*models.Migration, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMigrationService) Start(ctx context.Context, id int64) (*models.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Pause(ctx context.Context, id int64) (*models.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Complete(ctx context.Context, id int64) (*models.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}

func (m *MockMigrationService) Retry(ctx context.Context, id int64) (*models.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Migration), args.Error(1)
}
