package services

import (
	"context"
	"errors"
	"testing"

	"scmdash/internal/config"
	"scmdash/internal/models"
	"scmdash/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccountService_InitializeAdminAccount(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewAccountService(repo, &recordingAuditor{})
	ctx := context.Background()

	require.NoError(t, svc.InitializeAdminAccount(ctx, &config.Config{AdminPassword: "first"}))
	admin, err := svc.GetAccountByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("first")))

	// Existing admin is left alone without a reset.
	require.NoError(t, svc.InitializeAdminAccount(ctx, &config.Config{AdminPassword: "second"}))
	admin, err = svc.GetAccountByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("first")))

	err = svc.InitializeAdminAccount(ctx, &config.Config{ResetAdminPassword: true})
	assert.Error(t, err, "a reset needs a password")

	require.NoError(t, svc.InitializeAdminAccount(ctx, &config.Config{AdminPassword: "second", ResetAdminPassword: true}))
	admin, err = svc.GetAccountByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("second")))
}

func TestAccountService_LastAdminGuards(t *testing.T) {
	repo := setupTestRepo(t)
	audit := &recordingAuditor{}
	svc := NewAccountService(repo, audit)
	ctx := actorCtx()

	require.NoError(t, svc.InitializeAdminAccount(ctx, &config.Config{AdminPassword: "pw"}))
	admin, err := svc.GetAccountByUsername(ctx, "admin")
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, admin.ID, models.Account{CanView: true}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(svc.DeleteAccount(ctx, admin.ID), ErrForbidden))

	second, err := svc.CreateAccount(ctx, repository.AccountCreateArgs{
		Username: "ops", Password: "pw", CanView: true, CanEdit: true, IsAdmin: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, repository.AccountCreateArgs{Username: "ops", Password: "pw"})
	assert.True(t, errors.Is(err, ErrConflict))
	_, err = svc.CreateAccount(ctx, repository.AccountCreateArgs{Username: "nopass"})
	assert.True(t, errors.Is(err, ErrValidation))

	newPassword := "rotated"
	updated, err := svc.UpdateAccount(ctx, admin.ID, models.Account{CanView: true}, &newPassword)
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("rotated")))

	assert.True(t, errors.Is(svc.DeleteAccount(ctx, second.ID), ErrForbidden))
	require.NoError(t, svc.DeleteAccount(ctx, admin.ID))

	assert.True(t, errors.Is(svc.DeleteAccount(ctx, admin.ID), ErrNotFound))
	assert.Contains(t, audit.actions(), "account.delete")
}

func TestGenerateRandomPassword(t *testing.T) {
	a := generateRandomPassword(10)
	b := generateRandomPassword(10)
	assert.Len(t, a, 10)
	assert.NotEqual(t, a, b)
}
