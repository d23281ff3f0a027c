// Package repository provides the in-memory persistence used by the stub
// admin API. All methods are safe for concurrent use.
package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a record with the same key exists.
	ErrConflict = errors.New("repository: already exists")
)

// UserRecord is a stored account.
type UserRecord struct {
	models.User
	PasswordHash []byte
}

// PendingRecord is a stored signup awaiting approval.
type PendingRecord struct {
	models.PendingRegistration
	PasswordHash []byte
}

type resetToken struct {
	userID  string
	expires time.Time
}

// MemoryRepository keeps every stub API record in process memory.
type MemoryRepository struct {
	mu sync.RWMutex

	users     []UserRecord // ordered by creation
	pending   []PendingRecord
	resets    map[string]resetToken
	plans     []models.Plan
	campaigns []models.Campaign
	stats     map[string]models.CampaignStats
	weekly    []models.EngagementPoint

	now func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		resets: make(map[string]resetToken),
		stats:  make(map[string]models.CampaignStats),
		now:    time.Now,
	}
}

func (r *MemoryRepository) userIndexLocked(id string) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
