package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/service"
)

type fieldError struct {
	Msg string `json:"msg"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Token is not valid"},
	{service.ErrNotAdmin, http.StatusForbidden, "Admin privileges required"},
	{service.ErrSuspended, http.StatusForbidden, "Account is suspended"},
	{service.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, "Invalid or expired token"},
	{service.ErrInvalidCode, http.StatusBadRequest, "Invalid verification code"},
	{service.ErrCodeExpired, http.StatusBadRequest, "Verification code expired"},
	{service.ErrPlanExists, http.StatusBadRequest, "Plan already exists"},
}

// fail writes the response for a service error. notFound is the message
// used for service.ErrNotFound.
func fail(w http.ResponseWriter, log *zap.Logger, err error, notFound string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: verr.Message,
			Errors:  []fieldError{{Msg: verr.Message}},
		})
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			writeMessage(w, se.status, se.message)
			return
		}
	}
	if log != nil {
		log.Error("request failed", zap.Error(err))
	}
	writeMessage(w, http.StatusInternalServerError, "Server error")
}
