// filepath: internal/api/handlers/git_handler_test.go
package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGitSummary(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("Summary", mock.Anything).Return(&models.GitDashboardSummary{
		TotalRepositories:     3,
		TotalBackupsCompleted: 1,
		BackupCompletionRate:  33.33,
		UsersByRole:           map[string]int{"ADMIN": 1, "DEVELOPER": 0, "REVIEWER": 0, "TESTER": 0},
	}, nil)

	rr := serve(env.h.GitSummary, newRequest(http.MethodGet, "/api/git/dashboard/summary", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var sum models.GitDashboardSummary
	decodeData(t, rr, &sum)
	assert.Equal(t, 33.33, sum.BackupCompletionRate)
	assert.Len(t, sum.UsersByRole, 4)
}

func TestCreateGitUser(t *testing.T) {
	const body = `{"employeeId":"E100","username":"akim","groupName":"Core","role":"DEVELOPER"}`

	t.Run("Created", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.On("CreateUser", mock.Anything, models.GitUserPayload{
			EmployeeID: "E100", Username: "akim", GroupName: "Core", Role: models.GitRoleDeveloper,
		}).Return(&models.GitUser{ID: 5, EmployeeID: "E100", Username: "akim"}, nil)

		rr := serve(env.h.CreateGitUser, newRequest(http.MethodPost, "/api/git/users", body, nil))

		require.Equal(t, http.StatusCreated, rr.Code)
		var u models.GitUser
		decodeData(t, rr, &u)
		assert.Equal(t, int64(5), u.ID)
	})

	t.Run("Duplicate employee id", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, &services.ValidationError{Message: "Employee ID already exists: E100"})

		rr := serve(env.h.CreateGitUser, newRequest(http.MethodPost, "/api/git/users", body, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Employee ID already exists: E100", decodeError(t, rr))
	})

	t.Run("Unknown role", func(t *testing.T) {
		env := newTestEnv(t)
		rr := serve(env.h.CreateGitUser, newRequest(http.MethodPost, "/api/git/users",
			`{"employeeId":"E100","username":"akim","role":"OWNER"}`, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "role must be one of")
	})
}

func TestDeleteGitUser(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("DeleteUser", mock.Anything, int64(9)).Return(nil).Once()
	env.git.On("DeleteUser", mock.Anything, int64(8)).Return(&services.NotFoundError{What: "User", ID: int64(8)}).Once()

	rr := serve(env.h.DeleteGitUser, newRequest(http.MethodDelete, "/api/git/users/9", "", id("9")))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = serve(env.h.DeleteGitUser, newRequest(http.MethodDelete, "/api/git/users/8", "", id("8")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found with id: 8", decodeError(t, rr))
}

func TestGitUserRoles(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("UserCountsByRole", mock.Anything).
		Return(map[string]int{"DEVELOPER": 2, "REVIEWER": 0, "TESTER": 1, "ADMIN": 0}, nil)

	rr := serve(env.h.GitUserRoles, newRequest(http.MethodGet, "/api/git/users/roles", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var counts map[string]int
	decodeData(t, rr, &counts)
	assert.Equal(t, 2, counts["DEVELOPER"])
	assert.Contains(t, counts, "ADMIN")
}

func TestSearchGitRepositories(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("ListRepositories", mock.Anything, "core").
		Return([]models.GitRepository{{ID: 1, ProjectName: "core-api", Members: []string{"E100"}}}, nil)

	rr := serve(env.h.SearchGitRepositories, newRequest(http.MethodGet, "/api/git/repositories/search?query=core", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var repos []models.GitRepository
	decodeData(t, rr, &repos)
	require.Len(t, repos, 1)
	assert.Equal(t, []string{"E100"}, repos[0].Members)
}

func TestCreateGitRepository(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("CreateRepository", mock.Anything, mock.MatchedBy(func(p models.GitRepositoryPayload) bool {
		return p.ProjectName == "core-api" && p.CreatedByUsername == "akim" && len(p.Members) == 2
	})).Return(&models.GitRepository{ID: 4, ProjectName: "core-api"}, nil)

	rr := serve(env.h.CreateGitRepository, newRequest(http.MethodPost, "/api/git/repositories",
		`{"projectName":"core-api","department":"Engineering","createdByUsername":"akim","members":["E100","E200"]}`, nil))

	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(env.h.CreateGitRepository, newRequest(http.MethodPost, "/api/git/repositories", `{"department":"Engineering"}`, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "projectName is required")
}

func TestDeleteGitRepository(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("DeleteRepository", mock.Anything, int64(4)).Return(nil)

	rr := serve(env.h.DeleteGitRepository, newRequest(http.MethodDelete, "/api/git/repositories/4", "", id("4")))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestListGitBackupsByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("ListBackups", mock.Anything, "PENDING").Return([]models.GitBackup{{ID: 2, BackupStatus: "PENDING"}}, nil)
	env.git.On("ListBackups", mock.Anything, "LOST").Return(nil, &services.ValidationError{Message: "Invalid backup status: LOST"})

	rr := serve(env.h.ListGitBackupsByStatus, newRequest(http.MethodGet, "/api/git/backups/status/pending", "",
		map[string]string{"status": "pending"}))
	require.Equal(t, http.StatusOK, rr.Code)
	var backups []models.GitBackup
	decodeData(t, rr, &backups)
	assert.Len(t, backups, 1)

	rr = serve(env.h.ListGitBackupsByStatus, newRequest(http.MethodGet, "/api/git/backups/status/lost", "",
		map[string]string{"status": "lost"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateGitBackup_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("CreateBackup", mock.Anything, models.GitBackupPayload{RepositoryID: 3, BackupStatus: "COMPLETE"}).
		Return(nil, fmt.Errorf("%w: repository 3 already has a backup record", services.ErrConflict))

	rr := serve(env.h.CreateGitBackup, newRequest(http.MethodPost, "/api/git/backups",
		`{"repositoryId":3,"backupStatus":"COMPLETE"}`, nil))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRunGitBackup(t *testing.T) {
	env := newTestEnv(t)
	env.git.On("RunBackup", mock.Anything, int64(3)).
		Return(&models.GitBackup{ID: 1, RepositoryID: 3, BackupStatus: models.GitBackupComplete}, nil)
	env.git.On("RunBackup", mock.Anything, int64(99)).
		Return(nil, &services.NotFoundError{What: "Repository", ID: int64(99)})

	rr := serve(env.h.RunGitBackup, newRequest(http.MethodPost, "/api/git/backups/run/3", "", id("3")))
	require.Equal(t, http.StatusOK, rr.Code)
	var b models.GitBackup
	decodeData(t, rr, &b)
	assert.Equal(t, models.GitBackupComplete, b.BackupStatus)

	rr = serve(env.h.RunGitBackup, newRequest(http.MethodPost, "/api/git/backups/run/99", "", id("99")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Repository not found with id: 99", decodeError(t, rr))
}
