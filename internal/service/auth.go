// Package service holds the business logic of the stub admin API,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/MailerAdmin/internal/models"
	"github.com/atinyakov/MailerAdmin/internal/repository"
)

const (
	minPasswordLen = 6
	resetTokenTTL  = time.Hour
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// CreateUser stores a new account, failing with repository.ErrConflict
	// when the email or username is taken.
	CreateUser(ctx context.Context, rec repository.UserRecord) error
	// UserByEmail looks an account up by email.
	UserByEmail(ctx context.Context, email string) (repository.UserRecord, error)
	// UserByID looks an account up by id.
	UserByID(ctx context.Context, id string) (repository.UserRecord, error)
	// UpdateUser applies mutate to a stored account.
	UpdateUser(ctx context.Context, id string, mutate func(*repository.UserRecord)) (models.User, error)
	// ListPending returns signups awaiting approval.
	ListPending(ctx context.Context) ([]models.PendingRegistration, error)
	// PendingByEmail returns the pending signup for email.
	PendingByEmail(ctx context.Context, email string) (repository.PendingRecord, error)
	// TakePending removes the pending signup matching email and code.
	TakePending(ctx context.Context, email, code string) (repository.PendingRecord, error)
	// SaveResetToken records a password reset token.
	SaveResetToken(ctx context.Context, token, userID string, expires time.Time) error
	// TakeResetToken consumes a reset token and returns its user id.
	TakeResetToken(ctx context.Context, token string) (string, error)
}

// AuthService implements login, signup and password flows.
type AuthService struct {
	repo   AuthRepository
	tokens *TokenMaker
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService. A nil logger disables logging.
func NewAuthService(repo AuthRepository, tokens *TokenMaker, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, tokens: tokens, log: log, now: time.Now}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Login checks credentials and issues a token. Only verified admins may
// sign in to the console.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.AuthResponse{}, invalid("Email and password are required")
	}
	rec, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.AuthResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) != nil {
		return models.AuthResponse{}, ErrInvalidCredentials
	}
	if !rec.IsVerified {
		return models.AuthResponse{}, ErrSuspended
	}
	if rec.Role != models.RoleAdmin {
		return models.AuthResponse{}, ErrNotAdmin
	}
	return s.issue(rec.User)
}

// Register creates a verified account with the default role and signs it
// in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return models.AuthResponse{}, invalid("Username is required")
	case strings.TrimSpace(req.Email) == "":
		return models.AuthResponse{}, invalid("Email is required")
	case len(req.Password) < minPasswordLen:
		return models.AuthResponse{}, invalid("Password must be at least 6 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("register: %w", err)
	}
	u := models.User{
		ID:         uuid.NewString(),
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.TrimSpace(req.Email),
		Role:       models.RoleUser,
		IsVerified: true,
		CreatedAt:  s.now(),
	}
	err = s.repo.CreateUser(ctx, repository.UserRecord{User: u, PasswordHash: hash})
	if errors.Is(err, repository.ErrConflict) {
		return models.AuthResponse{}, ErrUserExists
	}
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("register: %w", err)
	}
	s.log.Info("user registered", zap.String("id", u.ID), zap.String("email", u.Email))
	return s.issue(u)
}

func (s *AuthService) issue(u models.User) (models.AuthResponse, error) {
	token, err := s.tokens.Generate(u)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return models.AuthResponse{Token: token, User: u}, nil
}

// Authenticate resolves a bearer token to the account it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}
	rec, err := s.repo.UserByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return rec.User, nil
}

// ForgotPassword issues a reset token for email and returns it. Unknown
// addresses succeed with an empty token so callers cannot probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", invalid("Email is required")
	}
	rec, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}
	token := uuid.NewString()
	if err := s.repo.SaveResetToken(ctx, token, rec.ID, s.now().Add(resetTokenTTL)); err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}
	s.log.Info("password reset requested", zap.String("email", rec.Email), zap.String("token", token))
	return token, nil
}

// ResetPassword consumes token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return invalid("Invalid or missing reset token")
	}
	if len(password) < minPasswordLen {
		return invalid("Password must be at least 6 characters")
	}
	userID, err := s.repo.TakeResetToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return s.setPassword(ctx, userID, password)
}

// AdminResetPassword sets a user's password directly.
func (s *AuthService) AdminResetPassword(ctx context.Context, userID, password string) error {
	if userID == "" {
		return invalid("User ID is required")
	}
	if len(password) < minPasswordLen {
		return invalid("Password must be at least 6 characters")
	}
	return s.setPassword(ctx, userID, password)
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.repo.UpdateUser(ctx, userID, func(rec *repository.UserRecord) {
		rec.PasswordHash = hash
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// PendingRegistrations lists signups awaiting approval.
func (s *AuthService) PendingRegistrations(ctx context.Context) ([]models.PendingRegistration, error) {
	return s.repo.ListPending(ctx)
}

// VerifyRegistration approves a pending signup, turning it into a
// verified account.
func (s *AuthService) VerifyRegistration(ctx context.Context, email, code string) (models.User, error) {
	if email == "" || code == "" {
		return models.User{}, invalid("Email and verification code are required")
	}
	p, err := s.repo.PendingByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("verify registration: %w", err)
	}
	if p.VerificationCode != code {
		return models.User{}, ErrInvalidCode
	}
	if p.Expired(s.now()) {
		return models.User{}, ErrCodeExpired
	}
	if _, err := s.repo.TakePending(ctx, email, code); err != nil {
		return models.User{}, fmt.Errorf("verify registration: %w", err)
	}

	u := models.User{
		ID:         uuid.NewString(),
		Username:   p.Username,
		Email:      p.Email,
		Role:       models.RoleUser,
		IsVerified: true,
		CreatedAt:  s.now(),
	}
	err = s.repo.CreateUser(ctx, repository.UserRecord{User: u, PasswordHash: p.PasswordHash})
	if errors.Is(err, repository.ErrConflict) {
		return models.User{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, fmt.Errorf("verify registration: %w", err)
	}
	return u, nil
}
