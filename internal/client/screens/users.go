package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Users manages accounts: status transitions, roles, deletion and
// password resets. Roles are staged before being saved.
type Users struct {
	env   Env
	items *reconcile.Collection[string, models.User, models.Role]
}

// UserRow is a user as displayed; Role is the staged role when one is
// pending.
type UserRow struct {
	models.User
	Status models.UserStatus
	Edited bool // a role is staged
	Busy   bool
	Err    string // last failed action
}

// NewUsers returns an empty users screen.
func NewUsers(env Env) *Users {
	env = env.withDefaults()
	u := &Users{env: env}
	u.items = reconcile.New[string, models.User, models.Role](
		func(usr models.User) string { return usr.ID },
		func(ctx context.Context) ([]models.User, error) { return env.client().Users(ctx) },
		env.options("users", "Failed to fetch users")...,
	)
	return u
}

// Load replaces the list with the server's accounts. Staged roles survive.
func (u *Users) Load(ctx context.Context) error { return u.items.Load(ctx) }

// Get returns a loaded user.
func (u *Users) Get(id string) (models.User, bool) { return u.items.Get(id) }

// Users returns the loaded accounts.
func (u *Users) Users() []models.User { return u.items.Rows() }

// Busy reports whether an action on id is in flight.
func (u *Users) Busy(id string) bool { return u.items.Busy(id) }

// Reset drops every staged role.
func (u *Users) Reset() { u.items.Reset() }

// View returns the accounts with staged roles applied.
func (u *Users) View() []UserRow {
	rows := u.items.View()
	out := make([]UserRow, 0, len(rows))
	for _, r := range rows {
		row := UserRow{User: r.Item, Status: r.Item.Status(), Edited: r.HasStaged, Busy: r.Busy, Err: r.Err}
		if r.HasStaged {
			row.Role = r.Staged
		}
		out = append(out, row)
	}
	return out
}

// Filter returns loaded users whose username or email contains query
// (case-insensitive) and whose status is status. An empty status matches
// all.
func (u *Users) Filter(query string, status models.UserStatus) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.User
	for _, usr := range u.items.Rows() {
		if q != "" && !strings.Contains(strings.ToLower(usr.Username), q) && !strings.Contains(strings.ToLower(usr.Email), q) {
			continue
		}
		if status != "" && usr.Status() != status {
			continue
		}
		out = append(out, usr)
	}
	return out
}

type userAction struct {
	name    string
	success string
	call    func(c *api.Client, ctx context.Context, id string) (*models.UserActionResponse, error)
	apply   func(models.User) models.User
}

var (
	restrictAction = userAction{
		name:    "restrict",
		success: "User restricted successfully",
		call:    (*api.Client).RestrictUser,
		apply: func(usr models.User) models.User {
			usr.Role = models.RoleRestricted
			return usr
		},
	}
	suspendAction = userAction{
		name:    "suspend",
		success: "User suspended successfully",
		call:    (*api.Client).SuspendUser,
		apply: func(usr models.User) models.User {
			usr.IsVerified = false
			return usr
		},
	}
	activateAction = userAction{
		name:    "activate",
		success: "User activated successfully",
		call:    (*api.Client).ActivateUser,
		apply: func(usr models.User) models.User {
			usr.IsVerified = true
			if usr.Role == models.RoleRestricted {
				usr.Role = models.RoleActive
			}
			return usr
		},
	}
)

// Restrict limits an account's sending.
func (u *Users) Restrict(ctx context.Context, id string) error {
	return u.transition(ctx, id, restrictAction)
}

// Suspend marks an account unverified.
func (u *Users) Suspend(ctx context.Context, id string) error {
	return u.transition(ctx, id, suspendAction)
}

// Activate verifies an account and lifts a restriction.
func (u *Users) Activate(ctx context.Context, id string) error {
	return u.transition(ctx, id, activateAction)
}

// transition patches the row with the user returned by the API, or with
// the known effect of the action when the API returns none.
func (u *Users) transition(ctx context.Context, id string, a userAction) error {
	return u.items.Commit(ctx, id, reconcile.Op[models.User, models.Role]{
		Name:    a.name,
		Success: a.success,
		Failure: "Operation failed",
		Do: func(ctx context.Context, _ models.Role, _ bool) (reconcile.Patch[models.User], error) {
			resp, err := a.call(u.env.client(), ctx, id)
			if err != nil {
				return reconcile.Patch[models.User]{}, err
			}
			return reconcile.Upsert(u.patched(id, resp, a.apply)), nil
		},
	})
}

func (u *Users) patched(id string, resp *models.UserActionResponse, apply func(models.User) models.User) models.User {
	if resp != nil && resp.User != nil && resp.User.ID != "" {
		return *resp.User
	}
	current, _ := u.items.Get(id)
	return apply(current)
}

// StageRole records a role change for id without sending it.
func (u *Users) StageRole(id string, role models.Role) { u.items.Stage(id, role) }

// SaveRole sends the staged role for id. Without one it does nothing.
func (u *Users) SaveRole(ctx context.Context, id string) error {
	return u.items.Commit(ctx, id, reconcile.Op[models.User, models.Role]{
		Name:     "set-role",
		Success:  "User role updated successfully",
		Failure:  "Operation failed",
		Consumes: true,
		Do: func(ctx context.Context, role models.Role, has bool) (reconcile.Patch[models.User], error) {
			if !has {
				return reconcile.Keep[models.User](), nil
			}
			resp, err := u.env.client().UpdateUserRole(ctx, id, role)
			if err != nil {
				return reconcile.Patch[models.User]{}, err
			}
			return reconcile.Upsert(u.patched(id, resp, func(usr models.User) models.User {
				usr.Role = role
				return usr
			})), nil
		},
	})
}

// SetRole stages role and saves it.
func (u *Users) SetRole(ctx context.Context, id string, role models.Role) error {
	u.StageRole(id, role)
	return u.SaveRole(ctx, id)
}

// Delete removes an account and splices it out of the list.
func (u *Users) Delete(ctx context.Context, id string) error {
	return u.items.Commit(ctx, id, reconcile.Op[models.User, models.Role]{
		Name:    "delete",
		Success: "User deleted successfully",
		Failure: "Operation failed",
		Do: func(ctx context.Context, _ models.Role, _ bool) (reconcile.Patch[models.User], error) {
			if err := u.env.client().DeleteUser(ctx, id); err != nil {
				return reconcile.Patch[models.User]{}, err
			}
			return reconcile.Remove[models.User](), nil
		},
	})
}

// ResetPassword sets a new password for id directly. The row is not
// changed but stays busy while the request runs.
func (u *Users) ResetPassword(ctx context.Context, id, password string) error {
	if errs := (forms.AdminReset{UserID: id, NewPassword: password}).Validate(); errs != nil {
		return u.env.fail(errs.First())
	}
	name := id
	if usr, ok := u.items.Get(id); ok && usr.Username != "" {
		name = usr.Username
	}
	return u.items.Create(ctx, id, reconcile.Op[models.User, models.Role]{
		Name:     "reset-password",
		Success:  fmt.Sprintf("Password reset successfully for %s!", name),
		Describe: serverMessage("Failed to reset password"),
		Do: func(ctx context.Context, _ models.Role, _ bool) (reconcile.Patch[models.User], error) {
			if err := u.env.client().AdminResetUserPassword(ctx, id, password); err != nil {
				return reconcile.Patch[models.User]{}, err
			}
			return reconcile.Keep[models.User](), nil
		},
	})
}
