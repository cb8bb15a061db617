// filepath: internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
)

// @Summary Dashboard headline metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DataResponse{data=models.DashboardMetrics}
// @Security BearerAuth
// @Router /svn/dashboard/metrics [get]
func (h *Handlers) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.Dashboard.Metrics(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute dashboard metrics")
		return
	}
	respondWithData(w, http.StatusOK, m)
}

// @Summary Recent activity feed
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.Activity}
// @Security BearerAuth
// @Router /svn/dashboard/recent-activity [get]
func (h *Handlers) RecentActivity(w http.ResponseWriter, r *http.Request) {
	list, err := h.Dashboard.RecentActivity(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to load recent activity")
		return
	}
	respondWithData(w, http.StatusOK, list)
}

// @Summary Migration progress overview
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DataResponse{data=models.MigrationProgress}
// @Security BearerAuth
// @Router /svn/dashboard/migration-progress [get]
func (h *Handlers) MigrationProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.Dashboard.MigrationProgress(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute migration progress")
		return
	}
	respondWithData(w, http.StatusOK, p)
}

// @Summary Backup summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DataResponse{data=models.BackupSummary}
// @Security BearerAuth
// @Router /svn/dashboard/backup-summary [get]
func (h *Handlers) BackupSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Dashboard.BackupSummary(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute backup summary")
		return
	}
	respondWithData(w, http.StatusOK, s)
}
