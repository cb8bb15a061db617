// filepath: internal/api/handlers/git_handler.go
package handlers

import (
	"net/http"
	"strings"

	"scmdash/internal/models"

	"github.com/gorilla/mux"
)

// @Summary Git dashboard summary
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=models.GitDashboardSummary}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/dashboard/summary [get]
func (h *Handlers) GitSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Git.Summary(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute git summary")
		return
	}
	respondWithData(w, http.StatusOK, sum)
}

// @Summary List Git users
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.GitUser}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/users [get]
func (h *Handlers) ListGitUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Git.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list git users")
		return
	}
	respondWithData(w, http.StatusOK, users)
}

// @Summary Get a Git user
// @Tags Git
// @Produce json
// @Param id path int true "Git user ID"
// @Success 200 {object} DataResponse{data=models.GitUser}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/users/{id} [get]
func (h *Handlers) GetGitUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Git.GetUser(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get git user")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

// @Summary Count Git users per role
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=map[string]int}
// @Security BearerAuth
// @Router /git/users/roles [get]
func (h *Handlers) GitUserRoles(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Git.UserCountsByRole(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to count git users")
		return
	}
	respondWithData(w, http.StatusOK, counts)
}

// @Summary Create a Git user
// @Tags Git
// @Accept json
// @Produce json
// @Param user body models.GitUserPayload true "Git user"
// @Success 201 {object} DataResponse{data=models.GitUser}
// @Failure 400 {object} ErrorResponse "Validation failed or duplicate employee id/username"
// @Security BearerAuth
// @Router /git/users [post]
func (h *Handlers) CreateGitUser(w http.ResponseWriter, r *http.Request) {
	var p models.GitUserPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Git.CreateUser(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create git user")
		return
	}
	respondWithData(w, http.StatusCreated, u)
}

// @Summary Update a Git user
// @Tags Git
// @Accept json
// @Produce json
// @Param id path int true "Git user ID"
// @Param user body models.GitUserPayload true "Git user"
// @Success 200 {object} DataResponse{data=models.GitUser}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/users/{id} [put]
func (h *Handlers) UpdateGitUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.GitUserPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Git.UpdateUser(r.Context(), id, p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update git user")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

// @Summary Delete a Git user
// @Tags Git
// @Param id path int true "Git user ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/users/{id} [delete]
func (h *Handlers) DeleteGitUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Git.DeleteUser(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete git user")
		return
	}
	respondNoContent(w)
}

// @Summary List Git repositories
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.GitRepository}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories [get]
func (h *Handlers) ListGitRepositories(w http.ResponseWriter, r *http.Request) {
	h.listGitRepositories(w, r, "")
}

// @Summary Search Git repositories by project name
// @Tags Git
// @Produce json
// @Param query query string true "Case-insensitive substring of the project name"
// @Success 200 {object} DataResponse{data=[]models.GitRepository}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories/search [get]
func (h *Handlers) SearchGitRepositories(w http.ResponseWriter, r *http.Request) {
	h.listGitRepositories(w, r, r.URL.Query().Get("query"))
}

func (h *Handlers) listGitRepositories(w http.ResponseWriter, r *http.Request, search string) {
	repos, err := h.Git.ListRepositories(r.Context(), search)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list git repositories")
		return
	}
	respondWithData(w, http.StatusOK, repos)
}

// @Summary Count Git repositories per department
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=map[string]int}
// @Security BearerAuth
// @Router /git/repositories/departments [get]
func (h *Handlers) GitRepositoryDepartments(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Git.RepositoryCountsByDepartment(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to count git repositories")
		return
	}
	respondWithData(w, http.StatusOK, counts)
}

// @Summary Get a Git repository
// @Tags Git
// @Produce json
// @Param id path int true "Git repository ID"
// @Success 200 {object} DataResponse{data=models.GitRepository}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories/{id} [get]
func (h *Handlers) GetGitRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Git.GetRepository(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get git repository")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}

// @Summary Create a Git repository
// @Tags Git
// @Accept json
// @Produce json
// @Param repository body models.GitRepositoryPayload true "Git repository"
// @Success 201 {object} DataResponse{data=models.GitRepository}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories [post]
func (h *Handlers) CreateGitRepository(w http.ResponseWriter, r *http.Request) {
	var p models.GitRepositoryPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Git.CreateRepository(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create git repository")
		return
	}
	respondWithData(w, http.StatusCreated, repo)
}

// @Summary Update a Git repository
// @Tags Git
// @Accept json
// @Produce json
// @Param id path int true "Git repository ID"
// @Param repository body models.GitRepositoryPayload true "Git repository"
// @Success 200 {object} DataResponse{data=models.GitRepository}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories/{id} [put]
func (h *Handlers) UpdateGitRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.GitRepositoryPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Git.UpdateRepository(r.Context(), id, p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update git repository")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}

// @Summary Delete a Git repository with its backup
// @Tags Git
// @Param id path int true "Git repository ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/repositories/{id} [delete]
func (h *Handlers) DeleteGitRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Git.DeleteRepository(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete git repository")
		return
	}
	respondNoContent(w)
}

// @Summary List Git backups
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.GitBackup}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups [get]
func (h *Handlers) ListGitBackups(w http.ResponseWriter, r *http.Request) {
	h.listGitBackups(w, r, "")
}

// @Summary List Git backups in one state
// @Tags Git
// @Produce json
// @Param status path string true "COMPLETE or PENDING, any case"
// @Success 200 {object} DataResponse{data=[]models.GitBackup}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups/status/{status} [get]
func (h *Handlers) ListGitBackupsByStatus(w http.ResponseWriter, r *http.Request) {
	h.listGitBackups(w, r, strings.ToUpper(mux.Vars(r)["status"]))
}

func (h *Handlers) listGitBackups(w http.ResponseWriter, r *http.Request, status string) {
	backups, err := h.Git.ListBackups(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list git backups")
		return
	}
	respondWithData(w, http.StatusOK, backups)
}

// @Summary Count Git backups per state
// @Tags Git
// @Produce json
// @Success 200 {object} DataResponse{data=map[string]int}
// @Security BearerAuth
// @Router /git/backups/count [get]
func (h *Handlers) GitBackupCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Git.BackupCountsByStatus(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to count git backups")
		return
	}
	respondWithData(w, http.StatusOK, counts)
}

// @Summary Get a Git backup
// @Tags Git
// @Produce json
// @Param id path int true "Git backup ID"
// @Success 200 {object} DataResponse{data=models.GitBackup}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups/{id} [get]
func (h *Handlers) GetGitBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Git.GetBackup(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get git backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Get the backup of a Git repository
// @Tags Git
// @Produce json
// @Param id path int true "Git repository ID"
// @Success 200 {object} DataResponse{data=models.GitBackup}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups/repository/{id} [get]
func (h *Handlers) GetGitBackupByRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Git.GetBackupByRepository(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get git backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Create the backup record of a Git repository
// @Tags Git
// @Accept json
// @Produce json
// @Param backup body models.GitBackupPayload true "Git backup"
// @Success 201 {object} DataResponse{data=models.GitBackup}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown repository"
// @Failure 409 {object} ErrorResponse "Repository already has a backup"
// @Security BearerAuth
// @Router /git/backups [post]
func (h *Handlers) CreateGitBackup(w http.ResponseWriter, r *http.Request) {
	var p models.GitBackupPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Git.CreateBackup(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create git backup")
		return
	}
	respondWithData(w, http.StatusCreated, b)
}

// @Summary Update a Git backup
// @Tags Git
// @Accept json
// @Produce json
// @Param id path int true "Git backup ID"
// @Param backup body models.GitBackupPayload true "Git backup"
// @Success 200 {object} DataResponse{data=models.GitBackup}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups/{id} [put]
func (h *Handlers) UpdateGitBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.GitBackupPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Git.UpdateBackup(r.Context(), id, p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update git backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Run the backup of a Git repository
// @Tags Git
// @Produce json
// @Param id path int true "Git repository ID"
// @Success 200 {object} DataResponse{data=models.GitBackup}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /git/backups/run/{id} [post]
func (h *Handlers) RunGitBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Git.RunBackup(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to run git backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}
