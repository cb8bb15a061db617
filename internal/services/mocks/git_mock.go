// filepath: internal/services/mocks/git_mock.go
package mocks

import (
	"context"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockGitService is a mock implementation of services.GitService
type MockGitService struct {
	mock.Mock
}

var _ services.GitService = (*MockGitService)(nil)

func (m *MockGitService) ListUsers(ctx context.Context) ([]models.GitUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GitUser), args.Error(1)
}

func (m *MockGitService) GetUser(ctx context.Context, id int64) (*models.GitUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitUser), args.Error(1)
}

func (m *MockGitService) CreateUser(ctx context.Context, p models.GitUserPayload) (*models.GitUser, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitUser), args.Error(1)
}

func (m *MockGitService) UpdateUser(ctx context.Context, id int64, p models.GitUserPayload) (*models.GitUser, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitUser), args.Error(1)
}

func (m *MockGitService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGitService) UserCountsByRole(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockGitService) ListRepositories(ctx context.Context, search string) ([]models.GitRepository, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GitRepository), args.Error(1)
}

func (m *MockGitService) GetRepository(ctx context.Context, id int64) (*models.GitRepository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitRepository), args.Error(1)
}

func (m *MockGitService) CreateRepository(ctx context.Context, p models.GitRepositoryPayload) (*models.GitRepository, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitRepository), args.Error(1)
}

func (m *MockGitService) UpdateRepository(ctx context.Context, id int64, p models.GitRepositoryPayload) (*models.GitRepository, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitRepository), args.Error(1)
}

func (m *MockGitService) DeleteRepository(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGitService) RepositoryCountsByDepartment(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockGitService) ListBackups(ctx context.Context, status string) ([]models.GitBackup, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GitBackup), args.Error(1)
}

func (m *MockGitService) GetBackup(ctx context.Context, id int64) (*models.GitBackup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitBackup), args.Error(1)
}

func (m *MockGitService) GetBackupByRepository(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	args := m.Called(ctx, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitBackup), args.Error(1)
}

func (m *MockGitService) BackupCountsByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockGitService) CreateBackup(ctx context.Context, p models.GitBackupPayload) (*models.GitBackup, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitBackup), args.Error(1)
}

func (m *MockGitService) UpdateBackup(ctx context.Context, id int64, p models.GitBackupPayload) (*models.GitBackup, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitBackup), args.Error(1)
}

func (m *MockGitService) RunBackup(ctx context.Context, repoID int64) (*models.GitBackup, error) {
	args := m.Called(ctx, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitBackup), args.Error(1)
}

func (m *MockGitService) Summary(ctx context.Context) (*models.GitDashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GitDashboardSummary), args.Error(1)
}
