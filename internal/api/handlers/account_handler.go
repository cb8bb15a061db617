// filepath: internal/api/handlers/account_handler.go
package handlers

import (
	"net/http"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/services/auth"
)

// AccountUpdateRequest is a DTO for updating an account's roles or password.
type AccountUpdateRequest struct {
	CanView  *bool   `json:"canView,omitempty"`
	CanEdit  *bool   `json:"canEdit,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=4"`
}

// AccountCreateRequest is a DTO for creating a new account.
type AccountCreateRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=4"`
	CanView  bool   `json:"canView"`
	CanEdit  bool   `json:"canEdit"`
	IsAdmin  bool   `json:"isAdmin"`
}

func sanitizeAccount(a models.Account) models.Account {
	a.PasswordHash = ""
	return a
}

// @Summary List console accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.Account}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *Handlers) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.GetAccounts(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to get accounts")
		return
	}
	for i := range accounts {
		accounts[i] = sanitizeAccount(accounts[i])
	}
	respondWithData(w, http.StatusOK, accounts)
}

// @Summary Create a console account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account body AccountCreateRequest true "Account"
// @Success 201 {object} DataResponse{data=models.Account}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts [post]
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountCreateRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logging.Log.Debugf("CreateAccount: calling AccountService for '%s'", req.Username)
	created, err := h.Accounts.CreateAccount(r.Context(), repository.AccountCreateArgs{
		Username: req.Username,
		Password: req.Password,
		CanView:  req.CanView,
		CanEdit:  req.CanEdit,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create account")
		return
	}
	respondWithData(w, http.StatusCreated, sanitizeAccount(*created))
}

// @Summary Update a console account's roles or password
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param account body AccountUpdateRequest true "Changes"
// @Success 200 {object} DataResponse{data=models.Account}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Last admin"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req AccountUpdateRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	original, err := h.Accounts.GetAccountByID(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Account not found")
		return
	}

	update := *original
	if req.CanView != nil {
		update.CanView = *req.CanView
	}
	if req.CanEdit != nil {
		update.CanEdit = *req.CanEdit
	}
	if req.IsAdmin != nil {
		update.IsAdmin = *req.IsAdmin
	}

	updated, err := h.Accounts.UpdateAccount(r.Context(), id, update, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update account")
		return
	}
	respondWithData(w, http.StatusOK, sanitizeAccount(*updated))
}

// @Summary Delete a console account
// @Tags Accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 403 {object} ErrorResponse "Last admin"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Accounts.DeleteAccount(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete account")
		return
	}
	respondDeleted(w)
}

// PasswordUpdateRequest is a DTO for changing the caller's own password.
type PasswordUpdateRequest struct {
	Password string `json:"password" validate:"required,min=4"`
}

// @Summary Change own password
// @Description Allows any authenticated account to change its own password.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param password body PasswordUpdateRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/me/password [patch]
func (h *Handlers) UpdateOwnPassword(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req PasswordUpdateRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logging.Log.Debugf("UpdateOwnPassword: '%s' is changing their password", account.Username)
	if err := h.Accounts.UpdateAccountPassword(r.Context(), account.Username, req.Password); err != nil {
		respondWithServiceError(w, err, "Failed to update password")
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully."})
}
