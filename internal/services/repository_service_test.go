package services

import (
	"errors"
	"testing"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryService_CreateDefaults(t *testing.T) {
	repo := setupTestRepo(t)
	users := NewUserService(repo, &recordingAuditor{})
	svc := NewRepositoryService(repo, &recordingAuditor{})

	u := mustUser(t, users, "jdoe", "John Doe")
	r := mustRepository(t, svc, "project-alpha", u.ID)

	assert.Equal(t, models.StatusNotStarted, r.MigrationStatus)
	assert.Equal(t, 0, r.MigrationProgress)
	assert.NotNil(t, r.LastCommit)
	require.Len(t, r.Members, 1)
	assert.Equal(t, "John Doe", r.Members[0].DisplayName)

	_, err := svc.Create(actorCtx(), models.RepositoryPayload{Name: "project-alpha"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Repository name already exists: project-alpha", err.Error())

	_, err = svc.Create(actorCtx(), models.RepositoryPayload{Name: "project-beta"}, []int64{42})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRepositoryService_UpdateCouplesProgress(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewRepositoryService(repo, &recordingAuditor{})
	r := mustRepository(t, svc, "project-gamma")

	tests := []struct {
		status   string
		progress *int
		want     int
	}{
		{models.StatusInProgress, intPtr(0), 1},
		{models.StatusInProgress, intPtr(40), 40},
		{models.StatusCompleted, intPtr(40), 100},
		{models.StatusNotStarted, intPtr(40), 0},
		{models.StatusArchived, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			updated, err := svc.Update(actorCtx(), r.ID, models.RepositoryPayload{
				Name:              r.Name,
				MigrationStatus:   tt.status,
				MigrationProgress: tt.progress,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.status, updated.MigrationStatus)
			assert.Equal(t, tt.want, updated.MigrationProgress)
			assert.Equal(t, "admin", updated.LastCommitBy)
		})
	}
}

func TestRepositoryService_Members(t *testing.T) {
	repo := setupTestRepo(t)
	users := NewUserService(repo, &recordingAuditor{})
	svc := NewRepositoryService(repo, &recordingAuditor{})

	a := mustUser(t, users, "jdoe", "John Doe")
	b := mustUser(t, users, "tsmith", "Taylor Smith")
	r := mustRepository(t, svc, "project-delta", a.ID)

	updated, err := svc.UpdateMembers(actorCtx(), r.ID, []int64{b.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, updated.MemberIDs)

	cleared, err := svc.UpdateMembers(actorCtx(), r.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Members)

	_, err = svc.UpdateMembers(actorCtx(), 999, []int64{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepositoryService_UpdateMigrationStatus(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewRepositoryService(repo, &recordingAuditor{})
	migrations := NewMigrationService(repo, &recordingAuditor{})

	free := mustRepository(t, svc, "legacy-project")
	updated, err := svc.UpdateMigrationStatus(actorCtx(), free.ID, models.StatusInProgress, intPtr(30))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.MigrationStatus)
	assert.Equal(t, 30, updated.MigrationProgress)

	_, err = svc.UpdateMigrationStatus(actorCtx(), free.ID, models.StatusFailed, nil)
	assert.True(t, errors.Is(err, ErrValidation), "repositories have no Failed track")

	linked := mustRepository(t, svc, "project-alpha")
	_, err = migrations.Create(actorCtx(), models.MigrationPayload{
		Name: "project-alpha", Status: models.StatusNotStarted, RepositoryID: idPtr(linked.ID),
	})
	require.NoError(t, err)

	_, err = svc.UpdateMigrationStatus(actorCtx(), linked.ID, models.StatusCompleted, nil)
	assert.True(t, errors.Is(err, ErrConflict))
}
