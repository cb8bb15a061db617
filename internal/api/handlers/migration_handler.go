// filepath: internal/api/handlers/migration_handler.go
package handlers

import (
	"context"
	"net/http"

	"scmdash/internal/models"
)

// @Summary List migrations
// @Tags Migrations
// @Produce json
// @Param status query string false "Status filter"
// @Param assignedTo query string false "Assignee filter"
// @Param repositoryId query int false "Linked repository"
// @Success 200 {object} DataResponse{data=[]models.Migration}
// @Security BearerAuth
// @Router /svn/migrations [get]
func (h *Handlers) ListMigrations(w http.ResponseWriter, r *http.Request) {
	repoID, err := queryInt64(r, "repositoryId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := models.MigrationFilter{
		Status:     r.URL.Query().Get("status"),
		AssignedTo: r.URL.Query().Get("assignedTo"),
	}
	if repoID != nil {
		f.RepositoryID = *repoID
	}
	list, err := h.Migrations.List(r.Context(), f)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list migrations")
		return
	}
	respondWithData(w, http.StatusOK, list)
}

// @Summary Get a migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id} [get]
func (h *Handlers) GetMigration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.Migrations.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get migration")
		return
	}
	respondWithData(w, http.StatusOK, m)
}

// @Summary Create a migration
// @Description A repositoryId query parameter takes precedence over the body field.
// @Tags Migrations
// @Accept json
// @Produce json
// @Param migration body models.MigrationPayload true "Migration"
// @Param repositoryId query int false "Repository to link"
// @Success 201 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations [post]
func (h *Handlers) CreateMigration(w http.ResponseWriter, r *http.Request) {
	repoID, err := queryInt64(r, "repositoryId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.MigrationPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if repoID != nil {
		p.RepositoryID = repoID
	}
	m, err := h.Migrations.Create(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create migration")
		return
	}
	respondWithData(w, http.StatusCreated, m)
}

// @Summary Update a migration
// @Tags Migrations
// @Accept json
// @Produce json
// @Param id path int true "Migration ID"
// @Param migration body models.MigrationPayload true "Migration"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id} [put]
func (h *Handlers) UpdateMigration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.MigrationPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.Migrations.Update(r.Context(), id, p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update migration")
		return
	}
	respondWithData(w, http.StatusOK, m)
}

// @Summary Delete a migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id} [delete]
func (h *Handlers) DeleteMigration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Migrations.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete migration")
		return
	}
	respondDeleted(w)
}

type migrationTransition func(ctx context.Context, id int64) (*models.Migration, error)

func (h *Handlers) transitionMigration(w http.ResponseWriter, r *http.Request, verb string, fn migrationTransition) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := fn(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to "+verb+" migration")
		return
	}
	respondWithData(w, http.StatusOK, m)
}

// @Summary Start a migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse "Invalid transition"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id}/start [post]
func (h *Handlers) StartMigration(w http.ResponseWriter, r *http.Request) {
	h.transitionMigration(w, r, "start", h.Migrations.Start)
}

// @Summary Pause a migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse "Invalid transition"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id}/pause [post]
func (h *Handlers) PauseMigration(w http.ResponseWriter, r *http.Request) {
	h.transitionMigration(w, r, "pause", h.Migrations.Pause)
}

// @Summary Complete a migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse "Invalid transition"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id}/complete [post]
func (h *Handlers) CompleteMigration(w http.ResponseWriter, r *http.Request) {
	h.transitionMigration(w, r, "complete", h.Migrations.Complete)
}

// @Summary Retry a failed migration
// @Tags Migrations
// @Produce json
// @Param id path int true "Migration ID"
// @Success 200 {object} DataResponse{data=models.Migration}
// @Failure 400 {object} ErrorResponse "Invalid transition"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/migrations/{id}/retry [post]
func (h *Handlers) RetryMigration(w http.ResponseWriter, r *http.Request) {
	h.transitionMigration(w, r, "retry", h.Migrations.Retry)
}
