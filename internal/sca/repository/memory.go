package repository

import (
	"context"
	"sync"
	"time"

	"payment-rail-gateway/internal/sca/domain"
)

// retention is how long an expired challenge is kept so verification can still
// report EXPIRED (not "unknown challenge") before the entry is pruned.
const retention = time.Hour

// MemoryRepository is an in-memory Repository for development and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	m    map[string]domain.Challenge
	nowF func() time.Time
}

// NewMemoryRepository returns an empty in-memory challenge repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		m:    make(map[string]domain.Challenge),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of the challenge and lazily prunes long-expired entries.
func (r *MemoryRepository) Create(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.nowF().Add(-retention)
	for id, e := range r.m {
		if e.ExpiresAt.Before(cutoff) {
			delete(r.m, id)
		}
	}
	r.m[c.ID] = *c
	return nil
}

// GetByID returns a copy of the challenge, or nil if not present.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	out := c
	return &out, nil
}

// Update overwrites the stored challenge. Unknown ids are stored as-is, which
// keeps Update idempotent for retried writes.
func (r *MemoryRepository) Update(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.ID] = *c
	return nil
}

// Delete removes the challenge by id.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}
