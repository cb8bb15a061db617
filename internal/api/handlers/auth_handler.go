// filepath: internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/services/auth"

	"golang.org/x/crypto/bcrypt"
)

// LoginRequest is the JSON body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest is the JSON body for refresh and logout endpoints.
type TokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse is returned on a successful login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	IsAdmin      bool   `json:"isAdmin"`
}

// @Summary Log in
// @Description Exchange a username and password for an access and refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} DataResponse{data=TokenResponse}
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Authentication failed"
// @Failure 429 {object} ErrorResponse "Too many login attempts"
// @Failure 500 {object} ErrorResponse "Token generation failed"
// @Router /auth/login [post]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.Accounts.GetAccountByUsername(r.Context(), req.Username)
	if err != nil {
		// Same answer for unknown accounts and wrong passwords.
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		logging.Log.Warnf("Login: wrong password for '%s'", req.Username)
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	h.issueTokens(w, r, account)
}

// @Summary Refresh JWT tokens
// @Description Provide a valid refresh token to receive a new token pair. The old refresh token is revoked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body TokenRequest true "Refresh Token"
// @Success 200 {object} DataResponse{data=TokenResponse}
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 500 {object} ErrorResponse "Token generation failed"
// @Router /auth/refresh-token [post]
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.Token.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	if err := h.Token.Logout(r.Context(), req.RefreshToken); err != nil {
		logging.Log.Warnf("Failed to revoke old refresh token for %s: %v", account.Username, err)
	}

	h.issueTokens(w, r, account)
}

func (h *Handlers) issueTokens(w http.ResponseWriter, r *http.Request, account *models.Account) {
	accessToken, refreshToken, err := h.Token.GenerateTokens(r.Context(), account)
	if err != nil {
		logging.Log.Errorf("Token generation failed for %s: %v", account.Username, err)
		respondWithError(w, http.StatusInternalServerError, "Could not generate tokens")
		return
	}

	respondWithData(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Username:     account.Username,
		IsAdmin:      account.IsAdmin,
	})
}

// @Summary Logout
// @Description Invalidates a refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body TokenRequest true "Refresh Token to invalidate"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Could not process token"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Token.Logout(r.Context(), req.RefreshToken); err != nil {
		logging.Log.Errorf("Logout failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully."})
}

// @Summary Validate the current session
// @Description Returns the account the access token belongs to.
// @Tags Auth
// @Produce json
// @Success 200 {object} DataResponse{data=models.Account}
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/validate [get]
func (h *Handlers) ValidateSession(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	sanitized := *account
	sanitized.PasswordHash = ""
	respondWithData(w, http.StatusOK, sanitized)
}
