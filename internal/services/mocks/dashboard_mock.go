// filepath: internal/services/mocks/dashboard_mock.go
package mocks

import (
	"context"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockDashboardService is a mock implementation of services.DashboardService
type MockDashboardService struct {
	mock.Mock
}

var _ services.DashboardService = (*MockDashboardService)(nil)

func (m *MockDashboardService) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardMetrics), args.Error(1)
}

func (m *MockDashboardService) RecentActivity(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockDashboardService) MigrationProgress(ctx context.Context) (*models.MigrationProgress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MigrationProgress), args.Error(1)
}

func (m *MockDashboardService) BackupSummary(ctx context.Context) (*models.BackupSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupSummary), args.Error(1)
}
