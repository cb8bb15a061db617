// filepath: internal/services/auth/token_service.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"scmdash/internal/config"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/services"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "scmdash"

// accessClaims defines the custom claims for our short-lived access token.
type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// refreshClaims defines the claims for our long-lived, stateful refresh token.
type refreshClaims struct {
	jwt.RegisteredClaims
}

var _ TokenService = (*tokenService)(nil)

type tokenService struct {
	cfg        *config.Config
	accountSvc services.AccountService
	repo       *repository.Repository
}

// NewTokenService creates a new instance of the tokenService.
func NewTokenService(cfg *config.Config, accountSvc services.AccountService, repo *repository.Repository) TokenService {
	return &tokenService{cfg: cfg, accountSvc: accountSvc, repo: repo}
}

// hashToken hashes a token string (SHA-256) for database storage.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (s *tokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(s.cfg.JWTSecret), nil
}

// GenerateTokens creates, signs, and stores a new token pair.
func (s *tokenService) GenerateTokens(ctx context.Context, account *models.Account) (string, string, error) {
	now := time.Now()
	accessExpiry := now.Add(time.Minute * time.Duration(s.cfg.JWT.AccessDurationMin))
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &accessClaims{
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", account.ID),
		},
	})
	signedAccess, err := access.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExpiry := now.Add(time.Hour * time.Duration(s.cfg.JWT.RefreshDurationHours))
	jtiBytes := make([]byte, 16)
	if _, err := rand.Read(jtiBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate token id: %w", err)
	}
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", account.ID),
			ID:        hex.EncodeToString(jtiBytes),
		},
	})
	signedRefresh, err := refresh.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.repo.StoreRefreshToken(ctx, account.ID, hashToken(signedRefresh), refreshExpiry); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return signedAccess, signedRefresh, nil
}

// ValidateAccessToken verifies signature and expiry, then returns the account.
func (s *tokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*models.Account, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}

	account, err := s.accountSvc.GetAccountByUsername(ctx, claims.Username)
	if err != nil {
		return nil, errors.New("account not found for token")
	}
	return account, nil
}

// ValidateRefreshToken verifies the signature and checks the token has not been revoked.
func (s *tokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*models.Account, error) {
	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid refresh token signature or claims")
	}

	accountID, err := s.repo.ValidateRefreshToken(ctx, hashToken(tokenString))
	if err != nil {
		return nil, fmt.Errorf("token not found in database (revoked or expired): %w", err)
	}

	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, errors.New("account not found for valid token")
	}
	return account, nil
}

// Logout invalidates a refresh token by deleting its hash from the database.
func (s *tokenService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteRefreshToken(ctx, hashToken(refreshToken))
}
