package repository

import (
	"context"
	"sort"
	"sync"

	"payment-rail-gateway/internal/audit/domain"
)

// MemoryRepository is an in-memory audit log store for tests and single-node
// development runs.
type MemoryRepository struct {
	mu   sync.RWMutex
	logs map[string]domain.AuditLog
}

// NewMemoryRepository returns an empty in-memory audit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{logs: make(map[string]domain.AuditLog)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	cp := a
	return &cp, nil
}

func (r *MemoryRepository) ListByRequest(ctx context.Context, requestID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.AuditLog
	for _, a := range r.logs {
		if a.RequestID == requestID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if int(limit) < len(all) {
		all = all[:limit]
	}
	out := make([]*domain.AuditLog, len(all))
	for i := range all {
		cp := all[i]
		out[i] = &cp
	}
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[a.ID] = *a
	return nil
}
