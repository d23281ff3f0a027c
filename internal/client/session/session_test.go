package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/storage"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// fakeBackend accepts one admin account and the token it hands out.
type fakeBackend struct {
	mu       sync.Mutex
	meCalls  int
	lastAuth string
	status   int // forced status for every request when non-zero
}

const (
	goodEmail    = "admin@example.com"
	goodPassword = "admin123"
	goodToken    = "tok-1"
)

var admin = models.User{ID: "u1", Username: "admin", Email: goodEmail, Role: models.RoleAdmin, IsVerified: true}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"message":"forced"}`))
		return
	}

	switch r.URL.Path {
	case "/auth/login":
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != goodEmail || req.Password != goodPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.AuthResponse{Token: goodToken, User: admin})
	case "/auth/register":
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == goodEmail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"User already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.AuthResponse{
			Token: "tok-new",
			User:  models.User{ID: "u2", Username: req.Username, Email: req.Email, Role: models.RoleUser},
		})
	case "/auth/me":
		f.meCalls++
		f.lastAuth = r.Header.Get("Authorization")
		if f.lastAuth != "Bearer "+goodToken && f.lastAuth != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token is not valid"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.MeResponse{User: admin})
	case "/auth/forgot-password":
		_, _ = w.Write([]byte(`{"message":"sent"}`))
	case "/auth/reset-password":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid or expired token"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newStore(t *testing.T, tokens storage.TokenStore) (*Store, *fakeBackend, *notify.Recorder) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL)
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return New(client, tokens, rec, nil), backend, rec
}

func TestNew_StartsLoading(t *testing.T) {
	s, _, _ := newStore(t, storage.NewMemoryStore(""))
	st := s.State()
	assert.True(t, st.Loading)
	assert.False(t, st.Authenticated)
	assert.False(t, s.Client().Authorized())
}

func TestInit_NoToken(t *testing.T) {
	s, backend, rec := newStore(t, storage.NewMemoryStore(""))
	st := s.Init(context.Background())

	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Zero(t, backend.meCalls)
	assert.Empty(t, rec.All())
}

func TestInit_RestoresValidToken(t *testing.T) {
	s, backend, _ := newStore(t, storage.NewMemoryStore(goodToken))
	st := s.Init(context.Background())

	require.True(t, st.Authenticated)
	assert.Equal(t, "admin", st.User.Username)
	assert.False(t, st.Loading)
	assert.Equal(t, "Bearer "+goodToken, backend.lastAuth)
	assert.Equal(t, goodToken, s.Client().Token())
}

func TestInit_RejectedTokenIsCleared(t *testing.T) {
	tokens := storage.NewMemoryStore("stale")
	s, _, rec := newStore(t, tokens)
	st := s.Init(context.Background())

	assert.False(t, st.Authenticated)
	assert.False(t, st.Loading)
	tok, _ := tokens.Load()
	assert.Empty(t, tok)
	assert.False(t, s.Client().Authorized())
	assert.Empty(t, rec.All(), "restore failures are silent")
}

func TestInit_NetworkFailureIsAnonymous(t *testing.T) {
	tokens := storage.NewMemoryStore(goodToken)
	client, err := api.New("http://127.0.0.1:1")
	require.NoError(t, err)
	s := New(client, tokens, nil, nil)

	st := s.Init(context.Background())
	assert.False(t, st.Authenticated)
	assert.False(t, st.Loading)
	tok, _ := tokens.Load()
	assert.Empty(t, tok)
}

func TestLogin_Success(t *testing.T) {
	tokens := storage.NewMemoryStore("")
	s, _, rec := newStore(t, tokens)
	s.Init(context.Background())

	require.NoError(t, s.Login(context.Background(), goodEmail, goodPassword))

	st := s.State()
	assert.True(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, goodEmail, st.User.Email)
	tok, _ := tokens.Load()
	assert.Equal(t, goodToken, tok)
	assert.Equal(t, goodToken, s.Client().Token())
	assert.Equal(t, []string{"Login successful!"}, rec.Messages(notify.LevelSuccess))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tokens := storage.NewMemoryStore("")
	s, _, rec := newStore(t, tokens)
	s.Init(context.Background())

	err := s.Login(context.Background(), goodEmail, "wrong")
	require.Error(t, err)

	var sessErr *Error
	require.True(t, errors.As(err, &sessErr))
	assert.Equal(t, "Invalid email or password", sessErr.Message)
	assert.False(t, s.State().Authenticated)
	assert.False(t, s.State().Loading)
	tok, _ := tokens.Load()
	assert.Empty(t, tok, "no token persisted")
	assert.Equal(t, []string{"Invalid email or password"}, rec.Messages(notify.LevelError))
}

func TestLogin_ServerError(t *testing.T) {
	s, backend, _ := newStore(t, storage.NewMemoryStore(""))
	backend.status = http.StatusInternalServerError

	err := s.Login(context.Background(), goodEmail, goodPassword)
	require.Error(t, err)
	assert.Equal(t, "Server error. Please try again later.", err.Error())
}

func TestLogin_LoadingDuringRequest(t *testing.T) {
	s, _, _ := newStore(t, storage.NewMemoryStore(""))
	s.Init(context.Background())

	var seen []bool
	cancel := s.OnChange(func(st State) { seen = append(seen, st.Loading) })
	defer cancel()

	require.NoError(t, s.Login(context.Background(), goodEmail, goodPassword))
	require.NotEmpty(t, seen)
	assert.True(t, seen[0])
	assert.False(t, seen[len(seen)-1])
}

func TestRegister(t *testing.T) {
	tokens := storage.NewMemoryStore("")
	s, _, rec := newStore(t, tokens)
	s.Init(context.Background())

	err := s.Register(context.Background(), models.RegisterRequest{Username: "dup", Email: goodEmail, Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "User with this email or username already exists", err.Error())
	assert.False(t, s.State().Authenticated)

	require.NoError(t, s.Register(context.Background(), models.RegisterRequest{Username: "neo", Email: "neo@example.com", Password: "secret1"}))
	st := s.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "neo", st.User.Username)
	tok, _ := tokens.Load()
	assert.Equal(t, "tok-new", tok)
	assert.Contains(t, rec.Messages(notify.LevelSuccess), "Registration successful!")
}

func TestLogout_ThenInitStaysAnonymous(t *testing.T) {
	tokens := storage.NewMemoryStore("")
	s, backend, rec := newStore(t, tokens)
	s.Init(context.Background())
	require.NoError(t, s.Login(context.Background(), goodEmail, goodPassword))

	s.Logout()
	assert.False(t, s.State().Authenticated)
	assert.Nil(t, s.State().User)
	assert.False(t, s.Client().Authorized())

	s.Logout()
	assert.Equal(t, []string{"Login successful!", "Logged out successfully", "Logged out successfully"},
		rec.Messages(notify.LevelSuccess))

	// a fresh store over the same token storage must not re-authenticate
	restarted := New(s.base, tokens, nil, nil)
	st := restarted.Init(context.Background())
	assert.False(t, st.Authenticated)
	assert.Zero(t, backend.meCalls)
}

func TestPasswordFlows(t *testing.T) {
	s, _, rec := newStore(t, storage.NewMemoryStore(""))

	require.NoError(t, s.ForgotPassword(context.Background(), "a@b.co"))
	assert.Contains(t, rec.Messages(notify.LevelSuccess), "Password reset instructions sent to your email!")

	err := s.ResetPassword(context.Background(), "tok", "newpass")
	require.Error(t, err)
	assert.Equal(t, "Reset link has expired or is invalid. Please request a new one.", err.Error())

	err = s.ResetPassword(context.Background(), "", "newpass")
	require.Error(t, err)
	assert.Equal(t, "Invalid reset token", err.Error())
}

func TestDispose(t *testing.T) {
	s, _, _ := newStore(t, storage.NewMemoryStore(""))
	called := 0
	s.OnChange(func(State) { called++ })
	s.Dispose()

	s.Init(context.Background())
	assert.Zero(t, called)
	assert.ErrorIs(t, s.Login(context.Background(), goodEmail, goodPassword), ErrDisposed)
}
