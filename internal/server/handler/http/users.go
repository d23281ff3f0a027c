package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// UserService defines the account management operations required by
// UserHandler.
type UserService interface {
	Users(ctx context.Context) ([]models.User, error)
	User(ctx context.Context, id string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	SetRole(ctx context.Context, id string, role models.Role) (models.User, error)
	Restrict(ctx context.Context, id string) (models.User, error)
	Suspend(ctx context.Context, id string) (models.User, error)
	Activate(ctx context.Context, id string) (models.User, error)
}

// UserHandler handles the /users endpoints.
type UserHandler struct {
	Users UserService
	Log   *zap.Logger
}

const userNotFound = "User not found"

// List returns every account.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users(r.Context())
	if err != nil {
		fail(w, h.Log, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get returns one account.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.Log, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete removes an account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, h.Log, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted"})
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

// UpdateRole changes an account's role.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.Users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	h.respond(w, user, err, "User role updated")
}

// Restrict moves an account to the restricted role.
func (h *UserHandler) Restrict(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Restrict(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, user, err, "User restricted")
}

// Suspend suspends an account.
func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Suspend(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, user, err, "User suspended")
}

// Activate reactivates an account.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Activate(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, user, err, "User activated")
}

func (h *UserHandler) respond(w http.ResponseWriter, user models.User, err error, msg string) {
	if err != nil {
		fail(w, h.Log, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.UserActionResponse{Message: msg, User: &user})
}
