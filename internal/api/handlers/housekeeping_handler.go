// filepath: internal/api/handlers/housekeeping_handler.go
package handlers

import (
	"net/http"
	"strconv"
)

// @Summary Trigger housekeeping
// @Description Runs due schedules, fails stale backups and purges expired refresh tokens. With dryRun nothing is changed.
// @Tags Admin
// @Produce json
// @Param dryRun query bool false "Only report what would be done"
// @Success 200 {object} DataResponse{data=models.HousekeepingReport}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Housekeeping failed"
// @Security BearerAuth
// @Router /admin/housekeeping [post]
func (h *Handlers) TriggerHousekeeping(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if raw := r.URL.Query().Get("dryRun"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "dryRun must be a boolean")
			return
		}
		dryRun = v
	}

	report, err := h.Housekeeping.TriggerHousekeeping(r.Context(), dryRun)
	if err != nil {
		respondWithServiceError(w, err, "Housekeeping failed")
		return
	}
	respondWithData(w, http.StatusOK, report)
}
