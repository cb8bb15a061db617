package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scmdash/internal/models"
	"scmdash/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	repo := setupTestRepo(t)
	audit := &recordingAuditor{}
	svc := NewUserService(repo, audit)

	u := mustUser(t, svc, "jdoe", "John Doe")
	assert.Equal(t, "JD", u.Initials)
	assert.Equal(t, shared.ColorFor("jdoe"), u.ColorCode)
	assert.NotNil(t, u.CreatedAt)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Create(actorCtx(), models.UserPayload{
			Username: "jdoe", FullName: "Jane Doe", Email: "jane@example.com",
			Role: models.RoleAdmin, Status: models.UserActive,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, "Username already exists: jdoe", err.Error())
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(actorCtx(), models.UserPayload{
			Username: "jane", FullName: "Jane Doe", Email: "jdoe@example.com",
			Role: models.RoleAdmin, Status: models.UserActive,
		})
		require.Error(t, err)
		assert.Equal(t, "Email already exists: jdoe@example.com", err.Error())
	})

	assert.Equal(t, []string{"user.create"}, audit.actions())
}

func TestUserService_UpdateAndStatus(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewUserService(repo, &recordingAuditor{})
	ctx := actorCtx()

	u := mustUser(t, svc, "tsmith", "Taylor Smith")
	other := mustUser(t, svc, "mlee", "Morgan Lee")

	updated, err := svc.Update(ctx, u.ID, models.UserPayload{
		Username: "tsmith", FullName: "Taylor Smith", Email: "taylor@example.com",
		Role: models.RoleAdmin, Status: models.UserActive, Group: "Management",
	})
	require.NoError(t, err)
	assert.Equal(t, "taylor@example.com", updated.Email)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.NotNil(t, updated.LastActivity)

	// Keeping its own username is fine, taking someone else's is not.
	_, err = svc.Update(ctx, u.ID, models.UserPayload{
		Username: other.Username, FullName: "Taylor Smith", Email: "taylor@example.com",
		Role: models.RoleAdmin, Status: models.UserActive,
	})
	assert.True(t, errors.Is(err, ErrValidation))

	locked, err := svc.UpdateStatus(ctx, u.ID, models.UserLocked)
	require.NoError(t, err)
	assert.Equal(t, models.UserLocked, locked.Status)

	_, err = svc.UpdateStatus(ctx, u.ID, "Suspended")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.UpdateStatus(ctx, 999, models.UserActive)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserService_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewUserService(repo, &recordingAuditor{})
	u := mustUser(t, svc, "cwilson", "Casey Wilson")

	require.NoError(t, svc.Delete(context.Background(), u.ID))
	_, err := svc.Get(context.Background(), u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, fmt.Sprintf("User not found with id: %d", u.ID))

	err = svc.Delete(context.Background(), u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
