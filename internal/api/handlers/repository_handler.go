// filepath: internal/api/handlers/repository_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"scmdash/internal/models"
)

// @Summary List repositories
// @Tags Repositories
// @Produce json
// @Param backupStatus query string false "Backup status filter"
// @Param migrationStatus query string false "Migration status filter"
// @Param search query string false "Substring of name or description"
// @Success 200 {object} DataResponse{data=[]models.Repository}
// @Security BearerAuth
// @Router /svn/repositories [get]
func (h *Handlers) ListRepositories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	repos, err := h.Repositories.List(r.Context(), models.RepositoryFilter{
		BackupStatus:    q.Get("backupStatus"),
		MigrationStatus: q.Get("migrationStatus"),
		Search:          q.Get("search"),
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to list repositories")
		return
	}
	respondWithData(w, http.StatusOK, repos)
}

// @Summary Get a repository
// @Tags Repositories
// @Produce json
// @Param id path int true "Repository ID"
// @Success 200 {object} DataResponse{data=models.Repository}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/repositories/{id} [get]
func (h *Handlers) GetRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Repositories.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get repository")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}

// @Summary Create a repository
// @Tags Repositories
// @Accept json
// @Produce json
// @Param repository body models.RepositoryPayload true "Repository"
// @Param memberIds query []int false "Member user IDs" collectionFormat(multi)
// @Success 201 {object} DataResponse{data=models.Repository}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/repositories [post]
func (h *Handlers) CreateRepository(w http.ResponseWriter, r *http.Request) {
	memberIDs, err := queryIDs(r, "memberIds")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.RepositoryPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Repositories.Create(r.Context(), p, memberIDs)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create repository")
		return
	}
	respondWithData(w, http.StatusCreated, repo)
}

// @Summary Update a repository
// @Description Omitting memberIds keeps the current members.
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path int true "Repository ID"
// @Param repository body models.RepositoryPayload true "Repository"
// @Param memberIds query []int false "Member user IDs" collectionFormat(multi)
// @Success 200 {object} DataResponse{data=models.Repository}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/repositories/{id} [put]
func (h *Handlers) UpdateRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	memberIDs, err := queryIDs(r, "memberIds")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.RepositoryPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	repo, err := h.Repositories.Update(r.Context(), id, p, memberIDs)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update repository")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}

// @Summary Delete a repository
// @Tags Repositories
// @Produce json
// @Param id path int true "Repository ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/repositories/{id} [delete]
func (h *Handlers) DeleteRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Repositories.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete repository")
		return
	}
	respondDeleted(w)
}

// @Summary Replace repository members
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path int true "Repository ID"
// @Param members body models.MembersPayload true "Member IDs"
// @Success 200 {object} DataResponse{data=models.Repository}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/repositories/{id}/members [put]
func (h *Handlers) UpdateRepositoryMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.MembersPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.MemberIDs == nil {
		p.MemberIDs = []int64{}
	}
	repo, err := h.Repositories.UpdateMembers(r.Context(), id, p.MemberIDs)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update repository members")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}

// @Summary Set a repository's migration status
// @Description Only for repositories without a linked migration record.
// @Tags Repositories
// @Produce json
// @Param id path int true "Repository ID"
// @Param status query string true "Not Started, In Progress, Completed or Archived"
// @Param progress query int false "Progress 0-100"
// @Success 200 {object} DataResponse{data=models.Repository}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Tracked by a migration"
// @Security BearerAuth
// @Router /svn/repositories/{id}/migration-status [patch]
func (h *Handlers) UpdateRepositoryMigrationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	status := q.Get("status")
	if status == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required query parameter: status")
		return
	}
	var progress *int
	if raw := q.Get("progress"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 || p > 100 {
			respondWithError(w, http.StatusBadRequest, "progress must be an integer between 0 and 100")
			return
		}
		progress = &p
	}
	repo, err := h.Repositories.UpdateMigrationStatus(r.Context(), id, status, progress)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update migration status")
		return
	}
	respondWithData(w, http.StatusOK, repo)
}
