// Package http provides the HTTP handlers and router of the stub admin
// API.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/middleware"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	AdminResetPassword(ctx context.Context, userID, password string) error
	PendingRegistrations(ctx context.Context) ([]models.PendingRegistration, error)
	VerifyRegistration(ctx context.Context, email, code string) (models.User, error)
}

// AuthHandler handles the /auth endpoints.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// Login exchanges credentials for a token and identity.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, h.Log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		fail(w, h.Log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Me returns the identity resolved by the bearer middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
		return
	}
	writeJSON(w, http.StatusOK, models.MeResponse{User: user})
}

// ForgotPassword starts a password reset. The answer does not reveal
// whether the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		fail(w, h.Log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "If that email is registered, a reset link has been sent"})
}

// ResetPassword consumes a reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		fail(w, h.Log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Password has been reset"})
}

// AdminResetPassword sets another user's password.
func (h *AuthHandler) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.AdminResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.AdminResetPassword(r.Context(), req.UserID, req.NewPassword); err != nil {
		fail(w, h.Log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Password reset successfully"})
}

// PendingRegistrations lists signups awaiting approval.
func (h *AuthHandler) PendingRegistrations(w http.ResponseWriter, r *http.Request) {
	pending, err := h.AuthService.PendingRegistrations(r.Context())
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, models.PendingRegistrationsResponse{PendingUsers: pending})
}

// VerifyRegistration approves a pending signup.
func (h *AuthHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRegistrationRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.AuthService.VerifyRegistration(r.Context(), req.Email, req.VerificationCode)
	if err != nil {
		fail(w, h.Log, err, "Pending registration not found")
		return
	}
	writeJSON(w, http.StatusOK, models.UserActionResponse{Message: "Registration verified", User: &user})
}
