package services

import (
	"errors"
	"testing"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGitUser(t *testing.T, svc GitService, employeeID, username, role string) *models.GitUser {
	t.Helper()
	u, err := svc.CreateUser(actorCtx(), models.GitUserPayload{
		EmployeeID: employeeID, Username: username, GroupName: "Platform", Role: role,
	})
	require.NoError(t, err)
	return u
}

func mustGitRepo(t *testing.T, svc GitService, name, department, creator string, members ...string) *models.GitRepository {
	t.Helper()
	r, err := svc.CreateRepository(actorCtx(), models.GitRepositoryPayload{
		ProjectName: name, Department: department,
		GitURL: "https://git.example.com/" + name + ".git", SSHURL: "git@git.example.com:" + name + ".git",
		CreatedByUsername: creator, Members: members,
	})
	require.NoError(t, err)
	return r
}

func TestGitService_Users(t *testing.T) {
	repo := setupTestRepo(t)
	audit := &recordingAuditor{}
	svc := NewGitService(repo, audit)
	ctx := actorCtx()

	u := mustGitUser(t, svc, "E100", "akim", models.GitRoleDeveloper)
	other := mustGitUser(t, svc, "E200", "bnoor", models.GitRoleTester)

	t.Run("duplicate employee id", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, models.GitUserPayload{EmployeeID: "E100", Username: "new", Role: models.GitRoleAdmin})
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, "Employee ID already exists: E100", err.Error())
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, models.GitUserPayload{EmployeeID: "E300", Username: "akim", Role: models.GitRoleAdmin})
		assert.Equal(t, "Username already exists: akim", err.Error())
	})

	updated, err := svc.UpdateUser(ctx, u.ID, models.GitUserPayload{
		EmployeeID: "E100", Username: "akim", GroupName: "Core", Role: models.GitRoleReviewer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.GitRoleReviewer, updated.Role)
	assert.Equal(t, "Core", updated.GroupName)

	_, err = svc.UpdateUser(ctx, u.ID, models.GitUserPayload{EmployeeID: other.EmployeeID, Username: "akim", Role: models.GitRoleReviewer})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.UpdateUser(ctx, 999, models.GitUserPayload{EmployeeID: "E999", Username: "x", Role: models.GitRoleAdmin})
	assert.True(t, errors.Is(err, ErrNotFound))

	counts, err := svc.UserCountsByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"DEVELOPER": 0, "REVIEWER": 1, "TESTER": 1, "ADMIN": 0}, counts)

	require.NoError(t, svc.DeleteUser(ctx, other.ID))
	assert.True(t, errors.Is(svc.DeleteUser(ctx, other.ID), ErrNotFound))

	assert.Equal(t, []string{"git.user.create", "git.user.create", "git.user.update", "git.user.delete"}, audit.actions())
}

func TestGitService_Repositories(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewGitService(repo, &recordingAuditor{})
	ctx := actorCtx()

	creator := mustGitUser(t, svc, "E100", "akim", models.GitRoleAdmin)
	core := mustGitRepo(t, svc, "core-api", "Engineering", "akim", "E100", "E200", "E100")
	mustGitRepo(t, svc, "Core-UI", "Engineering", "nobody")
	mustGitRepo(t, svc, "ledger", "Finance", "")

	assert.Equal(t, "akim", core.CreatedByUsername)
	assert.Equal(t, []string{"E100", "E200"}, core.Members)

	found, err := svc.ListRepositories(ctx, "CORE")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "core-api", found[0].ProjectName)
	assert.Equal(t, "", found[1].CreatedByUsername)

	all, err := svc.ListRepositories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	depts, err := svc.RepositoryCountsByDepartment(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Engineering": 2, "Finance": 1}, depts)

	updated, err := svc.UpdateRepository(ctx, core.ID, models.GitRepositoryPayload{
		ProjectName: "core-api", Department: "Platform", CreatedByUsername: "akim", Members: []string{"E300"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform", updated.Department)
	assert.Equal(t, []string{"E300"}, updated.Members)

	_, err = svc.UpdateRepository(ctx, 999, models.GitRepositoryPayload{ProjectName: "ghost"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Repository not found with id: 999", err.Error())

	// Deleting the creator leaves the repository without one.
	require.NoError(t, svc.DeleteUser(ctx, creator.ID))
	got, err := svc.GetRepository(ctx, core.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.CreatedByUsername)

	require.NoError(t, svc.DeleteRepository(ctx, core.ID))
	assert.True(t, errors.Is(svc.DeleteRepository(ctx, core.ID), ErrNotFound))
}

func TestGitService_Backups(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewGitService(repo, &recordingAuditor{})
	ctx := actorCtx()

	alpha := mustGitRepo(t, svc, "alpha", "Engineering", "")
	beta := mustGitRepo(t, svc, "beta", "Finance", "")

	counts, err := svc.BackupCountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"COMPLETE": 0, "PENDING": 0}, counts)

	pending, err := svc.CreateBackup(ctx, models.GitBackupPayload{RepositoryID: beta.ID, BackupStatus: "pending"})
	require.NoError(t, err)
	assert.Equal(t, models.GitBackupPending, pending.BackupStatus)
	assert.Equal(t, "beta", pending.RepositoryName)
	assert.Equal(t, "Finance", pending.Department)

	t.Run("one backup per repository", func(t *testing.T) {
		_, err := svc.CreateBackup(ctx, models.GitBackupPayload{RepositoryID: beta.ID, BackupStatus: models.GitBackupComplete})
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("unknown repository", func(t *testing.T) {
		_, err := svc.CreateBackup(ctx, models.GitBackupPayload{RepositoryID: 999, BackupStatus: models.GitBackupComplete})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("run creates then refreshes", func(t *testing.T) {
		first, err := svc.RunBackup(ctx, alpha.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GitBackupComplete, first.BackupStatus)
		require.NotNil(t, first.LastBackupTime)

		again, err := svc.RunBackup(ctx, alpha.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		_, err = svc.RunBackup(ctx, 999)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	byRepo, err := svc.GetBackupByRepository(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, byRepo.RepositoryID)

	complete, err := svc.ListBackups(ctx, "Complete")
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, "alpha", complete[0].RepositoryName)

	_, err = svc.ListBackups(ctx, "FAILED")
	assert.True(t, errors.Is(err, ErrValidation))

	updated, err := svc.UpdateBackup(ctx, pending.ID, models.GitBackupPayload{RepositoryID: beta.ID, BackupStatus: models.GitBackupComplete})
	require.NoError(t, err)
	assert.Equal(t, models.GitBackupComplete, updated.BackupStatus)

	_, err = svc.UpdateBackup(ctx, pending.ID, models.GitBackupPayload{RepositoryID: alpha.ID, BackupStatus: models.GitBackupComplete})
	assert.True(t, errors.Is(err, ErrConflict))

	// Deleting a repository removes its backup.
	require.NoError(t, svc.DeleteRepository(ctx, beta.ID))
	_, err = svc.GetBackup(ctx, pending.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGitService_Summary(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewGitService(repo, &recordingAuditor{})
	ctx := actorCtx()

	empty, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.BackupCompletionRate)
	assert.Equal(t, map[string]int{"DEVELOPER": 0, "REVIEWER": 0, "TESTER": 0, "ADMIN": 0}, empty.UsersByRole)
	assert.Empty(t, empty.ReposByDepartment)

	mustGitUser(t, svc, "E1", "one", models.GitRoleDeveloper)
	mustGitUser(t, svc, "E2", "two", models.GitRoleDeveloper)
	a := mustGitRepo(t, svc, "a", "Engineering", "")
	mustGitRepo(t, svc, "b", "Engineering", "")
	c := mustGitRepo(t, svc, "c", "Finance", "")
	_, err = svc.RunBackup(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.CreateBackup(ctx, models.GitBackupPayload{RepositoryID: c.ID, BackupStatus: models.GitBackupPending})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalUsers)
	assert.Equal(t, 3, sum.TotalRepositories)
	assert.Equal(t, 1, sum.TotalBackupsCompleted)
	assert.Equal(t, 33.33, sum.BackupCompletionRate)
	assert.Equal(t, 2, sum.UsersByRole[models.GitRoleDeveloper])
	assert.Equal(t, 0, sum.UsersByRole[models.GitRoleAdmin])
	assert.Equal(t, map[string]int{"Engineering": 2, "Finance": 1}, sum.ReposByDepartment)
	assert.Equal(t, map[string]int{"COMPLETE": 1, "PENDING": 1}, sum.BackupsByStatus)
}
