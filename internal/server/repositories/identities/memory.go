package identities

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps identities in process memory. Used when no database
// is configured and in tests. Inserts are visible to the next lookup.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.Identity
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.Identity),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, email, username, passwordHash string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, &common.ConflictError{Field: common.FieldEmail}
	}
	if _, ok := r.byUsername[username]; ok {
		return nil, &common.ConflictError{Field: common.FieldUsername}
	}

	identity := &models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}

	r.byID[identity.ID] = identity
	r.byEmail[email] = identity.ID
	r.byUsername[username] = identity.ID

	return clone(identity), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail[email])
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byUsername[username])
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

// Len returns the number of stored identities.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// lookup must be called with mu held.
func (r *MemoryRepository) lookup(id string) (*models.Identity, error) {
	identity, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(identity), nil
}

func clone(identity *models.Identity) *models.Identity {
	c := *identity
	return &c
}
