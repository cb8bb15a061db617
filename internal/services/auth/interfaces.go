// filepath: internal/services/auth/interfaces.go
package auth

import (
	"context"

	"scmdash/internal/models"
)

// TokenService defines the contract for JWT operations.
type TokenService interface {
	GenerateTokens(ctx context.Context, account *models.Account) (accessToken string, refreshToken string, err error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*models.Account, error)
	ValidateRefreshToken(ctx context.Context, tokenString string) (*models.Account, error)
	Logout(ctx context.Context, refreshToken string) error
}
