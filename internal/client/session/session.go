// Package session holds the console's single source of truth for who is
// logged in. A Store is created per application run, initialised once
// with Init and released with Dispose.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/storage"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// ErrDisposed is returned by operations on a disposed Store.
var ErrDisposed = errors.New("session: store disposed")

// State is a snapshot of the session.
type State struct {
	User          *models.User
	Authenticated bool
	Loading       bool
}

// Error is the failure result of a session operation. Its message is
// ready to show to the operator.
type Error struct {
	Op      apierr.Op
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Store owns the session state, the persisted token and the API client
// carrying it.
type Store struct {
	mu        sync.RWMutex
	state     State
	base      *api.Client
	client    *api.Client
	tokens    storage.TokenStore
	notifier  notify.Notifier
	log       *zap.Logger
	listeners map[int]func(State)
	nextID    int
	disposed  bool
}

// New returns a Store in the loading state. base must be an unauthorized
// client; authorized copies are derived from it as tokens change.
func New(base *api.Client, tokens storage.TokenStore, notifier notify.Notifier, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	base = base.WithToken("")
	return &Store{
		state:     State{Loading: true},
		base:      base,
		client:    base,
		tokens:    tokens,
		notifier:  notifier,
		log:       log,
		listeners: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Client returns the API client matching the current session: authorized
// when logged in, anonymous otherwise.
func (s *Store) Client() *api.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// OnChange registers fn to be called after every state transition and
// returns a function that unregisters it.
func (s *Store) OnChange(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispose drops all listeners. Login and Register fail with ErrDisposed
// afterwards.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.listeners = make(map[int]func(State))
}

// Init restores a previous session from the stored token. Any failure
// leaves the store anonymous with the token removed. It always clears
// Loading and never returns an error.
func (s *Store) Init(ctx context.Context) State {
	token, err := s.tokens.Load()
	if err != nil {
		s.log.Warn("failed to read stored token", zap.Error(err))
		s.dropToken()
		return s.transition(func(st *State) { *st = State{} }, s.base)
	}
	if token == "" {
		return s.transition(func(st *State) { *st = State{} }, s.base)
	}

	client := s.base.WithToken(token)
	user, err := client.Me(ctx)
	if err != nil {
		s.log.Info("stored session rejected", zap.String("kind", apierr.KindOf(err).String()), zap.Error(err))
		s.dropToken()
		return s.transition(func(st *State) { *st = State{} }, s.base)
	}

	return s.transition(func(st *State) {
		*st = State{User: user, Authenticated: true}
	}, client)
}

// Login authenticates with email and password. On failure the returned
// *Error carries the message that was also sent as an error notification.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if s.isDisposed() {
		return ErrDisposed
	}
	s.setLoading(true)

	resp, err := s.base.Login(ctx, email, password)
	if err != nil {
		return s.fail(apierr.OpLogin, "Login failed", err)
	}
	if err := s.establish(resp); err != nil {
		return s.fail(apierr.OpLogin, "Login failed", err)
	}
	notify.Success(s.notifier, "Login successful!")
	return nil
}

// Register creates an account and treats it as logged in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	if s.isDisposed() {
		return ErrDisposed
	}
	s.setLoading(true)

	resp, err := s.base.Register(ctx, req)
	if err != nil {
		return s.fail(apierr.OpRegister, "Registration failed", err)
	}
	if err := s.establish(resp); err != nil {
		return s.fail(apierr.OpRegister, "Registration failed", err)
	}
	notify.Success(s.notifier, "Registration successful!")
	return nil
}

// Logout forgets the token and identity. Calling it while logged out only
// repeats the notification.
func (s *Store) Logout() {
	s.dropToken()
	s.transition(func(st *State) { *st = State{} }, s.base)
	notify.Success(s.notifier, "Logged out successfully")
}

// ForgotPassword requests reset instructions for email. The session is
// not touched.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	if err := s.base.ForgotPassword(ctx, email); err != nil {
		return s.report(apierr.OpForgotPassword, "Failed to send reset email", err)
	}
	notify.Success(s.notifier, "Password reset instructions sent to your email!")
	return nil
}

// ResetPassword consumes a reset token. The session is not touched.
func (s *Store) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return s.report(apierr.OpResetPassword, "", apierr.Invalid("Invalid reset token"))
	}
	if err := s.base.ResetPassword(ctx, token, password); err != nil {
		return s.report(apierr.OpResetPassword, "Failed to reset password", err)
	}
	notify.Success(s.notifier, "Password reset successful! You can now login.")
	return nil
}

func (s *Store) establish(resp *models.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("session: response carried no token")
	}
	if err := s.tokens.Save(resp.Token); err != nil {
		s.log.Error("failed to persist token", zap.Error(err))
		return apierr.Invalid("Could not store the session token")
	}
	user := resp.User
	s.transition(func(st *State) {
		*st = State{User: &user, Authenticated: true}
	}, s.base.WithToken(resp.Token))
	return nil
}

// fail ends a login or register attempt: Loading is cleared and the
// authentication state is left as it was.
func (s *Store) fail(op apierr.Op, fallback string, err error) error {
	s.setLoading(false)
	return s.report(op, fallback, err)
}

func (s *Store) report(op apierr.Op, fallback string, err error) error {
	msg := apierr.Message(err, op, fallback)
	s.log.Info("session operation failed",
		zap.String("kind", apierr.KindOf(err).String()),
		zap.String("message", msg),
		zap.Error(err),
	)
	notify.Error(s.notifier, msg)
	return &Error{Op: op, Message: msg, Err: err}
}

func (s *Store) dropToken() {
	if err := s.tokens.Delete(); err != nil {
		s.log.Warn("failed to delete stored token", zap.Error(err))
	}
}

func (s *Store) setLoading(loading bool) {
	s.transition(func(st *State) { st.Loading = loading }, nil)
}

func (s *Store) isDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// transition applies mutate and, when client is non-nil, swaps the client
// under the lock, then notifies listeners outside it.
func (s *Store) transition(mutate func(*State), client *api.Client) State {
	s.mu.Lock()
	mutate(&s.state)
	if client != nil {
		s.client = client
	}
	st := s.state
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
	return st
}
