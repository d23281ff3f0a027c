package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/MailerAdmin/internal/client/session"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func TestDecide(t *testing.T) {
	anon := session.State{}
	authed := session.State{Authenticated: true, User: &models.User{ID: "1"}}
	loading := session.State{Loading: true}

	tests := []struct {
		name   string
		state  session.State
		target string
		want   Decision
	}{
		{"loading suppresses redirect", loading, "/users", Decision{Action: Wait}},
		{"loading on login", loading, "/login", Decision{Action: Wait}},
		{"anonymous to protected", anon, "/users", Decision{Action: Redirect, To: "/login"}},
		{"anonymous to dashboard", anon, "/", Decision{Action: Redirect, To: "/login"}},
		{"anonymous to detail", anon, "/campaign/42", Decision{Action: Redirect, To: "/login"}},
		{"anonymous to unknown", anon, "/nowhere", Decision{Action: Redirect, To: "/login"}},
		{"anonymous to login", anon, "/login", Decision{Action: Allow}},
		{"anonymous to reset", anon, "/reset-password?token=abc", Decision{Action: Allow}},
		{"authenticated to login", authed, "/login", Decision{Action: Redirect, To: "/"}},
		{"authenticated to login trailing slash", authed, "/login/", Decision{Action: Redirect, To: "/"}},
		{"authenticated to register", authed, "/register", Decision{Action: Allow}},
		{"authenticated to protected", authed, "/billing", Decision{Action: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.target))
		})
	}
}

func TestMatch(t *testing.T) {
	r, params, ok := Match("/user/abc123")
	assert.True(t, ok)
	assert.Equal(t, UserPath, r.Pattern)
	assert.Equal(t, map[string]string{"id": "abc123"}, params)

	r, params, ok = Match("/")
	assert.True(t, ok)
	assert.Equal(t, DashboardPath, r.Pattern)
	assert.Empty(t, params)

	_, _, ok = Match("/user/")
	assert.False(t, ok)

	_, _, ok = Match("/campaign/1/extra")
	assert.False(t, ok)
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("/forgot-password"))
	assert.False(t, IsPublic("/pending-registrations"))
	assert.False(t, IsPublic("/unknown"))
}
