// filepath: internal/api/handlers/superset_handler.go
package handlers

import (
	"net/http"
)

// GuestTokenRequest is the body of POST /api/superset/guest-token.
type GuestTokenRequest struct {
	DashboardID string `json:"dashboardId" validate:"required"`
}

// GuestTokenResponse carries the Superset guest token.
type GuestTokenResponse struct {
	Token string `json:"token"`
}

// @Summary Superset guest token
// @Description Logs in to Superset with the configured service account and returns a guest token for one dashboard.
// @Tags Superset
// @Accept json
// @Produce json
// @Param request body GuestTokenRequest true "Dashboard"
// @Success 200 {object} DataResponse{data=GuestTokenResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Superset unavailable"
// @Security BearerAuth
// @Router /superset/guest-token [post]
func (h *Handlers) SupersetGuestToken(w http.ResponseWriter, r *http.Request) {
	var req GuestTokenRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.Superset.GuestToken(r.Context(), req.DashboardID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to obtain Superset guest token")
		return
	}
	respondWithData(w, http.StatusOK, GuestTokenResponse{Token: token})
}
