// filepath: internal/services/mocks/account_mock.go
package mocks

import (
	"context"

	"scmdash/internal/config"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockAccountService is a mock implementation of services.AccountService
type MockAccountService struct {
	mock.Mock
}

var _ services.AccountService = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetAccounts(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccountPassword(ctx context.Context, username string, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, cArgs repository.AccountCreateArgs) (*models.Account, error) {
	args := m.Called(ctx, cArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, id int64, req models.Account, newPassword *string) (*models.Account, error) {
	args := m.Called(ctx, id, req, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountService) InitializeAdminAccount(ctx context.Context, cfg *config.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
