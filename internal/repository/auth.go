package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// CreateUser stores a new account. Email and username must be unique
// (case-insensitive).
func (r *MemoryRepository) CreateUser(_ context.Context, rec UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, rec.Email) || strings.EqualFold(u.Username, rec.Username) {
			return fmt.Errorf("create user %s: %w", rec.Email, ErrConflict)
		}
	}
	r.users = append(r.users, rec)
	return nil
}

// UserByEmail looks an account up by email.
func (r *MemoryRepository) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return UserRecord{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

// UserByID looks an account up by id.
func (r *MemoryRepository) UserByID(_ context.Context, id string) (UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.userIndexLocked(id); i >= 0 {
		return r.users[i], nil
	}
	return UserRecord{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// ListUsers returns every account in creation order.
func (r *MemoryRepository) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.User)
	}
	return out, nil
}

// UpdateUser applies mutate to the stored account and returns the result.
func (r *MemoryRepository) UpdateUser(_ context.Context, id string, mutate func(*UserRecord)) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.userIndexLocked(id)
	if i < 0 {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	mutate(&r.users[i])
	return r.users[i].User, nil
}

// DeleteUser removes an account.
func (r *MemoryRepository) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.userIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	r.users = append(r.users[:i:i], r.users[i+1:]...)
	return nil
}

// AddPending stores a signup awaiting approval.
func (r *MemoryRepository) AddPending(_ context.Context, p PendingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.pending {
		if strings.EqualFold(x.Email, p.Email) {
			return fmt.Errorf("pending %s: %w", p.Email, ErrConflict)
		}
	}
	r.pending = append(r.pending, p)
	return nil
}

// ListPending returns every signup awaiting approval.
func (r *MemoryRepository) ListPending(_ context.Context) ([]models.PendingRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.PendingRegistration, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.PendingRegistration)
	}
	return out, nil
}

// PendingByEmail returns the pending signup for email.
func (r *MemoryRepository) PendingByEmail(_ context.Context, email string) (PendingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.pending {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return PendingRecord{}, fmt.Errorf("pending %s: %w", email, ErrNotFound)
}

// TakePending removes and returns the pending signup matching email and
// code.
func (r *MemoryRepository) TakePending(_ context.Context, email, code string) (PendingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pending {
		if strings.EqualFold(p.Email, email) && p.VerificationCode == code {
			r.pending = append(r.pending[:i:i], r.pending[i+1:]...)
			return p, nil
		}
	}
	return PendingRecord{}, fmt.Errorf("pending %s: %w", email, ErrNotFound)
}

// DeleteExpiredPending drops signups whose code expired before cutoff and
// returns how many were removed.
func (r *MemoryRepository) DeleteExpiredPending(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.pending[:0:0]
	for _, p := range r.pending {
		if p.CodeExpires.Before(cutoff) {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(r.pending) - len(kept)
	r.pending = kept
	return removed, nil
}

// SaveResetToken records a password reset token for userID.
func (r *MemoryRepository) SaveResetToken(_ context.Context, token, userID string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[token] = resetToken{userID: userID, expires: expires}
	return nil
}

// TakeResetToken consumes token and returns its user id. Expired tokens
// are consumed but reported as not found.
func (r *MemoryRepository) TakeResetToken(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.resets[token]
	delete(r.resets, token)
	if !ok || r.now().After(rt.expires) {
		return "", fmt.Errorf("reset token: %w", ErrNotFound)
	}
	return rt.userID, nil
}
