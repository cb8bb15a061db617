// filepath: internal/repository/token_repo_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokens(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, &AccountCreateArgs{Username: "ops", Password: "pw", CanView: true})
	require.NoError(t, err)

	require.NoError(t, repo.StoreRefreshToken(ctx, account.ID, "live", time.Now().Add(time.Hour)))
	require.NoError(t, repo.StoreRefreshToken(ctx, account.ID, "old", time.Now().Add(-time.Hour)))

	id, err := repo.ValidateRefreshToken(ctx, "live")
	assert.NoError(t, err)
	assert.Equal(t, account.ID, id)

	_, err = repo.ValidateRefreshToken(ctx, "old")
	assert.Error(t, err, "expired tokens are rejected")

	n, err := repo.CountExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.PurgeExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.DeleteAllRefreshTokensForAccount(ctx, account.ID))
	_, err = repo.ValidateRefreshToken(ctx, "live")
	assert.Error(t, err)
}
