// filepath: internal/services/mocks/backup_mock.go
package mocks

import (
	"context"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockBackupService is a mock implementation of services.BackupService
type MockBackupService struct {
	mock.Mock
}

var _ services.BackupService = (*MockBackupService)(nil)

func (m *MockBackupService) List(ctx context.Context, f models.BackupFilter) ([]models.Backup, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Backup), args.Error(1)
}

func (m *MockBackupService) Get(ctx context.Context, id int64) (*models.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

func (m *MockBackupService) GetByCode(ctx context.Context, code string) (*models.Backup, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

func (m *MockBackupService) LastFull(ctx context.Context) (*models.Backup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

func (m *MockBackupService) Create(ctx context.Context, p models.BackupPayload, repositoryIDs []int64) (*models.Backup, error) {
	args := m.Called(ctx, p, repositoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

func (m *MockBackupService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackupService) Retry(ctx context.Context, id int64) (*models.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

func (m *MockBackupService) Statistics(ctx context.Context) (*models.BackupStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupStatistics), args.Error(1)
}
