// filepath: internal/services/mocks/superset_mock.go
package mocks

import (
	"context"

	"scmdash/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockSupersetService struct {
	mock.Mock
}

var _ services.SupersetService = (*MockSupersetService)(nil)

func (m *MockSupersetService) GuestToken(ctx context.Context, dashboardID string) (string, error) {
	args := m.Called(ctx, dashboardID)
	return args.String(0), args.Error(1)
}
