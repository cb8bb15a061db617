// filepath: internal/api/handlers/user_handler.go
package handlers

import (
	"net/http"

	"scmdash/internal/models"
)

// @Summary List SCM users
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param status query string false "Status filter"
// @Param group query string false "Group filter"
// @Param search query string false "Substring of username, full name or email"
// @Success 200 {object} DataResponse{data=[]models.User}
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/users [get]
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.Users.List(r.Context(), models.UserFilter{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Group:  q.Get("group"),
		Search: q.Get("search"),
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}
	respondWithData(w, http.StatusOK, users)
}

// @Summary Get an SCM user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} DataResponse{data=models.User}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/users/{id} [get]
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get user")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

// @Summary Create an SCM user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body models.UserPayload true "User"
// @Success 201 {object} DataResponse{data=models.User}
// @Failure 400 {object} ErrorResponse "Validation failed or duplicate username/email"
// @Security BearerAuth
// @Router /svn/users [post]
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var p models.UserPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Users.Create(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create user")
		return
	}
	respondWithData(w, http.StatusCreated, u)
}

// @Summary Update an SCM user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body models.UserPayload true "User"
// @Success 200 {object} DataResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/users/{id} [put]
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.UserPayload
	if err := decode(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Users.Update(r.Context(), id, p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update user")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

// @Summary Change an SCM user's status
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Param status query string true "Active, Inactive or Locked"
// @Success 200 {object} DataResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/users/{id}/status [patch]
func (h *Handlers) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required query parameter: status")
		return
	}
	u, err := h.Users.UpdateStatus(r.Context(), id, status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update user status")
		return
	}
	respondWithData(w, http.StatusOK, u)
}

// @Summary Delete an SCM user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} DataResponse{data=DeletedResponse}
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /svn/users/{id} [delete]
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete user")
		return
	}
	respondDeleted(w)
}
