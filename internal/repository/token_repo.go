// filepath: internal/repository/token_repo.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StoreRefreshToken saves the hash of a refresh token to the database.
func (s *Repository) StoreRefreshToken(ctx context.Context, accountID int64, tokenHash string, expiry time.Time) error {
	query := "INSERT INTO refresh_tokens (account_id, token_hash, expiry) VALUES (?, ?, ?)"
	_, err := s.DB.ExecContext(ctx, query, accountID, tokenHash, expiry.UTC())
	return err
}

// ValidateRefreshToken checks if a token hash exists and is not expired, returning the account ID.
func (s *Repository) ValidateRefreshToken(ctx context.Context, tokenHash string) (int64, error) {
	query := "SELECT account_id FROM refresh_tokens WHERE token_hash = ? AND expiry > ?"
	var accountID int64
	err := s.DB.QueryRowContext(ctx, query, tokenHash, utcNow()).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("token not found or expired")
		}
		return 0, err
	}
	return accountID, nil
}

// DeleteRefreshToken removes a specific refresh token hash from the database.
func (s *Repository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash = ?", tokenHash)
	return err
}

// DeleteAllRefreshTokensForAccount revokes all sessions for a specific account.
func (s *Repository) DeleteAllRefreshTokensForAccount(ctx context.Context, accountID int64) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE account_id = ?", accountID)
	return err
}

// PurgeExpiredRefreshTokens deletes every expired token hash and returns how many were removed.
func (s *Repository) PurgeExpiredRefreshTokens(ctx context.Context) (int, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expiry <= ?", utcNow())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CountExpiredRefreshTokens reports how many tokens PurgeExpiredRefreshTokens would remove.
func (s *Repository) CountExpiredRefreshTokens(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM refresh_tokens WHERE expiry <= ?", utcNow()).Scan(&n)
	return n, err
}
