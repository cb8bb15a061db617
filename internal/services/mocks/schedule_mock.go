// filepath: internal/services/mocks/schedule_mock.go
package mocks

import (
	"context"
	"time"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockScheduleService is a mock implementation of services.ScheduleService
type MockScheduleService struct {
	mock.Mock
}

var _ services.ScheduleService = (*MockScheduleService)(nil)

func (m *MockScheduleService) List(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) Get(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) GetByCode(ctx context.Context, code string) (*models.BackupSchedule, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) Next(ctx context.Context) (*models.BackupSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) Create(ctx context.Context, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	args := m.Called(ctx, p, repositoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) Update(ctx context.Context, id int64, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error) {
	args := m.Called(ctx, id, p, repositoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduleService) ToggleStatus(ctx context.Context, id int64) (*models.BackupSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) DueSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BackupSchedule), args.Error(1)
}

func (m *MockScheduleService) RunSchedule(ctx context.Context, sc models.BackupSchedule, now time.Time) (*models.Backup, error) {
	args := m.Called(ctx, sc, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}
