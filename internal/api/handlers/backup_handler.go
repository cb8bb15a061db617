// filepath: internal/api/handlers/backup_handler.go
package handlers

import (
	"net/http"

	"scmdash/internal/models"

	"github.com/gorilla/mux"
)

// @Summary List backups
// @Tags Backups
// @Produce json
// @Param type query string false "Full or Delta"
// @Param status query string false "Status filter"
// @Param repositoryId query int false "Backups covering this repository"
// @Success 200 {object} DataResponse{data=[]models.Backup}
// @Security BearerAuth
// @Router /svn/backups [get]
func (h *Handlers) ListBackups(w http.ResponseWriter, r *http.Request) {
	repoID, err := queryInt64(r, "repositoryId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := models.BackupFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	if repoID != nil {
		f.RepositoryID = *repoID
	}
	list, err := h.Backups.List(r.Context(), f)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list backups")
		return
	}
	respondWithData(w, http.StatusOK, list)
}

// @Summary Get a backup
// @Tags Backups
// @Produce json
// @Param id path int true "Backup ID"
// @Success 200 {object} DataResponse{data=models.Backup}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backups/{id} [get]
func (h *Handlers) GetBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Backups.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Get a backup by its display code
// @Tags Backups
// @Produce json
// @Param backupId path string true "Code such as BKP-2043"
// @Success 200 {object} DataResponse{data=models.Backup}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backups/backup-id/{backupId} [get]
func (h *Handlers) GetBackupByCode(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backups.GetByCode(r.Context(), mux.Vars(r)["backupId"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to get backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Start a backup
// @Description Without repositoryIds the backup covers all repositories. Completion is reported asynchronously.
// @Tags Backups
// @Accept json
// @Produce json
// @Param backup body models.BackupPayload true "Backup"
// @Param repositoryIds query []int false "Repositories to back up" collectionFormat(multi)
// @Success 201 {object} DataResponse{data=models.Backup}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backups [post]
func (h *Handlers) CreateBackup(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "repositoryIds")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.BackupPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Backups.Create(r.Context(), p, ids)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create backup")
		return
	}
	respondWithData(w, http.StatusCreated, b)
}

// @Summary Delete a backup
// @Tags Backups
// @Produce json
// @Param id path int true "Backup ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backups/{id} [delete]
func (h *Handlers) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Backups.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete backup")
		return
	}
	respondDeleted(w)
}

// @Summary Retry a failed backup
// @Tags Backups
// @Produce json
// @Param id path int true "Backup ID"
// @Success 200 {object} DataResponse{data=models.Backup}
// @Failure 400 {object} ErrorResponse "Backup is not failed"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backups/{id}/retry [post]
func (h *Handlers) RetryBackup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Backups.Retry(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retry backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}

// @Summary Backup statistics
// @Tags Backups
// @Produce json
// @Success 200 {object} DataResponse{data=models.BackupStatistics}
// @Security BearerAuth
// @Router /svn/backups/statistics [get]
func (h *Handlers) BackupStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Backups.Statistics(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute backup statistics")
		return
	}
	respondWithData(w, http.StatusOK, stats)
}

// @Summary Last completed full backup
// @Tags Backups
// @Produce json
// @Success 200 {object} DataResponse{data=models.Backup}
// @Failure 404 {object} ErrorResponse "No full backup yet"
// @Security BearerAuth
// @Router /svn/backups/last-full [get]
func (h *Handlers) LastFullBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backups.LastFull(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to get last full backup")
		return
	}
	respondWithData(w, http.StatusOK, b)
}
