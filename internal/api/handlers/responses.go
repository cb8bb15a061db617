// filepath: internal/api/handlers/responses.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"scmdash/internal/logging"
	"scmdash/internal/services"
)

// ErrorResponse is a standard format for API error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a standard format for simple API messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps every successful payload of the console API.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// DeletedResponse is the payload of a successful DELETE.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithData sends payload wrapped in {"data": ...}.
func respondWithData(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, DataResponse{Data: payload})
}

func respondDeleted(w http.ResponseWriter) {
	respondWithData(w, http.StatusOK, DeletedResponse{Deleted: true})
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps service sentinels onto HTTP status codes.
// Unclassified errors are logged and answered with fallback.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTransition):
		respondWithError(w, http.StatusBadRequest, validationText(err))
	case errors.Is(err, services.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		logging.Log.Warnf("Upstream unavailable: %v", err)
		respondWithError(w, http.StatusBadGateway, fallback)
	default:
		logging.Log.Errorf("%s: %v", fallback, err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// validationText prefers the bare message of a ValidationError.
func validationText(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
