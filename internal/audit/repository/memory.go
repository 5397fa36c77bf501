package repository

import (
	"context"
	"sort"
	"sync"

	"gemini-observatory/backend/internal/audit/domain"
)

// MemoryRepository keeps audit logs in process memory. Used when no database is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.entries {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter, limit, offset int) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.AuditLog
	for _, a := range r.entries {
		if (f.UserID != "" && a.UserID != f.UserID) || (f.Action != "" && a.Action != f.Action) ||
			(f.Resource != "" && a.Resource != f.Resource) {
			continue
		}
		cp := a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}
