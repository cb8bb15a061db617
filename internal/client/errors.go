// filepath: internal/client/errors.go
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is; the concrete *APIError carries the
// status code and the message shown to the operator.
var (
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrServerError        = errors.New("server error")
	ErrValidation         = errors.New("validation failure")
)

// Fixed operator-facing messages.
const (
	MsgNetworkUnavailable = "Cannot connect to the server. Please ensure it's running and accessible."
	MsgUnauthorized       = "Your session has expired. Please log in again."
	MsgForbidden          = "You do not have permission to access this resource."
	MsgNotFound           = "The requested resource was not found."
	MsgServerError        = "Server error. Please try again later or contact support."
)

// APIError is returned for every failed call.
type APIError struct {
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *APIError) Error() string { return e.Message }

// Is matches the error kind.
func (e *APIError) Is(target error) bool { return target == e.Kind }

// Unwrap exposes the transport cause, if any.
func (e *APIError) Unwrap() error { return e.Cause }

// errorBody is the union of the shapes the backend may answer with.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// classify maps a non-2xx response onto an APIError.
func classify(status int, body errorBody) *APIError {
	switch {
	case status == http.StatusUnauthorized:
		return &APIError{Status: status, Kind: ErrUnauthorized, Message: MsgUnauthorized}
	case status == http.StatusForbidden:
		return &APIError{Status: status, Kind: ErrForbidden, Message: MsgForbidden}
	case status == http.StatusNotFound:
		return &APIError{Status: status, Kind: ErrNotFound, Message: MsgNotFound}
	case status >= 500:
		return &APIError{Status: status, Kind: ErrServerError, Message: MsgServerError}
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}
	return &APIError{Status: status, Kind: ErrValidation, Message: msg}
}

func networkError(cause error) *APIError {
	return &APIError{Kind: ErrNetworkUnavailable, Message: MsgNetworkUnavailable, Cause: cause}
}

// Message returns the operator-facing text of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
