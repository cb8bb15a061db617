// filepath: internal/api/handlers/schedule_handler.go
package handlers

import (
	"net/http"

	"scmdash/internal/models"

	"github.com/gorilla/mux"
)

// @Summary List backup schedules
// @Tags Schedules
// @Produce json
// @Param type query string false "Full or Delta"
// @Param frequency query string false "Daily, Weekly or Monthly"
// @Param status query string false "Active or Inactive"
// @Success 200 {object} DataResponse{data=[]models.BackupSchedule}
// @Security BearerAuth
// @Router /svn/backup-schedules [get]
func (h *Handlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Schedules.List(r.Context(), models.ScheduleFilter{
		Type:      q.Get("type"),
		Frequency: q.Get("frequency"),
		Status:    q.Get("status"),
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to list schedules")
		return
	}
	respondWithData(w, http.StatusOK, list)
}

// @Summary Get a backup schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} DataResponse{data=models.BackupSchedule}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules/{id} [get]
func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.Schedules.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get schedule")
		return
	}
	respondWithData(w, http.StatusOK, sc)
}

// @Summary Get a backup schedule by its display code
// @Tags Schedules
// @Produce json
// @Param scheduleId path string true "Code such as SCH-001"
// @Success 200 {object} DataResponse{data=models.BackupSchedule}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules/schedule-id/{scheduleId} [get]
func (h *Handlers) GetScheduleByCode(w http.ResponseWriter, r *http.Request) {
	sc, err := h.Schedules.GetByCode(r.Context(), mux.Vars(r)["scheduleId"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to get schedule")
		return
	}
	respondWithData(w, http.StatusOK, sc)
}

// @Summary Next scheduled backup
// @Tags Schedules
// @Produce json
// @Success 200 {object} DataResponse{data=models.BackupSchedule}
// @Failure 404 {object} ErrorResponse "No active schedule"
// @Security BearerAuth
// @Router /svn/backup-schedules/next [get]
func (h *Handlers) NextSchedule(w http.ResponseWriter, r *http.Request) {
	sc, err := h.Schedules.Next(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to get next schedule")
		return
	}
	respondWithData(w, http.StatusOK, sc)
}

// @Summary Create a backup schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param schedule body models.SchedulePayload true "Schedule"
// @Param repositoryIds query []int false "Repositories covered" collectionFormat(multi)
// @Success 201 {object} DataResponse{data=models.BackupSchedule}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules [post]
func (h *Handlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "repositoryIds")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.SchedulePayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.Schedules.Create(r.Context(), p, ids)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create schedule")
		return
	}
	respondWithData(w, http.StatusCreated, sc)
}

// @Summary Update a backup schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Param schedule body models.SchedulePayload true "Schedule"
// @Param repositoryIds query []int false "Repositories covered" collectionFormat(multi)
// @Success 200 {object} DataResponse{data=models.BackupSchedule}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules/{id} [put]
func (h *Handlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids, err := queryIDs(r, "repositoryIds")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.SchedulePayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.Schedules.Update(r.Context(), id, p, ids)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update schedule")
		return
	}
	respondWithData(w, http.StatusOK, sc)
}

// @Summary Delete a backup schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules/{id} [delete]
func (h *Handlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Schedules.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete schedule")
		return
	}
	respondDeleted(w)
}

// @Summary Toggle a schedule between Active and Inactive
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} DataResponse{data=models.BackupSchedule}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/backup-schedules/{id}/toggle-status [post]
func (h *Handlers) ToggleScheduleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.Schedules.ToggleStatus(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to toggle schedule")
		return
	}
	respondWithData(w, http.StatusOK, sc)
}
