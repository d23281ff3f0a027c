package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// User fetches one account.
func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+escape(id), nil, nil)
}

// UpdateUserRole changes an account's role.
func (c *Client) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.UserActionResponse, error) {
	var out models.UserActionResponse
	body := map[string]models.Role{"role": role}
	if err := c.do(ctx, http.MethodPatch, "/users/"+escape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestrictUser moves an account to the restricted role.
func (c *Client) RestrictUser(ctx context.Context, id string) (*models.UserActionResponse, error) {
	return c.userAction(ctx, id, "restrict")
}

// SuspendUser suspends an account.
func (c *Client) SuspendUser(ctx context.Context, id string) (*models.UserActionResponse, error) {
	return c.userAction(ctx, id, "suspend")
}

// ActivateUser lifts a restriction or suspension.
func (c *Client) ActivateUser(ctx context.Context, id string) (*models.UserActionResponse, error) {
	return c.userAction(ctx, id, "activate")
}

func (c *Client) userAction(ctx context.Context, id, action string) (*models.UserActionResponse, error) {
	var out models.UserActionResponse
	if err := c.do(ctx, http.MethodPatch, "/users/"+escape(id)+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
