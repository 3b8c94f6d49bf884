// Package utils contains the JSON response helpers shared by the HTTP
// handlers and middleware.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"shg-service/pkg/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is the body of every successful request.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondWithJSON writes payload as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondWithError writes an error body with the given status.
func RespondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{Error: message})
}

// RespondWithErrorDetails writes an error body carrying structured details.
func RespondWithErrorDetails(w http.ResponseWriter, status int, message string, details any) {
	RespondWithJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondWithSuccess writes a success body.
func RespondWithSuccess(w http.ResponseWriter, status int, message string, data any) {
	RespondWithJSON(w, status, SuccessResponse{Message: message, Data: data})
}

// RespondWithAppError maps err to a status through its apperror kind.
// Internal errors are logged and hidden from the caller.
func RespondWithAppError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		if logger != nil {
			logger.Errorf("Internal error: %v", err)
		}
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if logger != nil {
		logger.Warnf("Request failed: %v", err)
	}
	RespondWithErrorDetails(w, appErr.Kind.HTTPStatus(), appErr.Message, appErr.Details)
}
