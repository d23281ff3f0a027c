package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token and identity.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity owning the client's token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ForgotPassword asks the API to email reset instructions.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, nil)
}

// ResetPassword consumes a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", models.ResetPasswordRequest{Token: token, Password: password}, nil)
}

// AdminResetUserPassword sets a user's password directly.
func (c *Client) AdminResetUserPassword(ctx context.Context, userID, newPassword string) error {
	req := models.AdminResetPasswordRequest{UserID: userID, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/admin/reset-user-password", req, nil)
}

// PendingRegistrations lists signups awaiting approval.
func (c *Client) PendingRegistrations(ctx context.Context) ([]models.PendingRegistration, error) {
	var out models.PendingRegistrationsResponse
	if err := c.do(ctx, http.MethodGet, "/auth/pending-registrations", nil, &out); err != nil {
		return nil, err
	}
	if out.PendingUsers == nil {
		return []models.PendingRegistration{}, nil
	}
	return out.PendingUsers, nil
}

// VerifyRegistration approves a pending signup.
func (c *Client) VerifyRegistration(ctx context.Context, email, code string) error {
	req := models.VerifyRegistrationRequest{Email: email, VerificationCode: code}
	return c.do(ctx, http.MethodPost, "/auth/verify-registration", req, nil)
}
