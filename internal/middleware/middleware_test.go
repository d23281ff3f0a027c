package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// dummyHandler records whether it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type authFunc func(ctx context.Context, token string) (models.User, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (models.User, error) {
	return f(ctx, token)
}

var admin = models.User{ID: "a1", Role: models.RoleAdmin, IsVerified: true}

func fakeAuth(t *testing.T) Authenticator {
	return authFunc(func(_ context.Context, token string) (models.User, error) {
		switch token {
		case "admin":
			return admin, nil
		case "member":
			return models.User{ID: "u1", Role: models.RoleActive, IsVerified: true}, nil
		case "suspended":
			return models.User{ID: "u2", Role: models.RoleAdmin}, nil
		}
		return models.User{}, errors.New("bad token")
	})
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
		called bool
	}{
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic admin", http.StatusUnauthorized, false},
		{"empty token", "Bearer ", http.StatusUnauthorized, false},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, false},
		{"valid token", "Bearer admin", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(fakeAuth(t))(dummy)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.called, dummy.called)
			if !tt.called {
				assert.Contains(t, rec.Body.String(), `"message"`)
				return
			}
			user, ok := UserFromContext(dummy.ctx)
			require.True(t, ok)
			assert.Equal(t, "a1", user.ID)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		token string
		want  int
		msg   string
	}{
		{"admin", http.StatusOK, ""},
		{"member", http.StatusForbidden, "Admin privileges required"},
		{"suspended", http.StatusForbidden, "Account is suspended"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(fakeAuth(t))(RequireAdmin(dummy))
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.msg != "" {
				assert.JSONEq(t, `{"message":"`+tt.msg+`"}`, rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	RequireAdmin(&dummyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(&dummyHandler{})
	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.True(t, strings.Contains(rec.Body.String(), "Too many requests"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "other clients are not limited")
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/stats", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["size"])
}
