package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"gemini-observatory/backend/internal/plan/domain"
)

// MemoryRepository keeps plans in process memory. Used when no database is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	plans   map[string]domain.SciencePlan
	results map[string][]domain.ValidationResult
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		plans:   make(map[string]domain.SciencePlan),
		results: make(map[string][]domain.ValidationResult),
	}
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.SciencePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.plans[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]*domain.SciencePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SciencePlan, 0, len(r.plans))
	for _, p := range r.plans {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.SciencePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.SciencePlan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.plans[p.ID]
	if !ok || !existing.Editable() {
		return false, nil
	}
	next := *p
	next.OwnerID = existing.OwnerID
	next.CreatedAt = existing.CreatedAt
	r.plans[p.ID] = next
	return true, nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, id string, from []domain.Status, to domain.Status, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setStatusLocked(id, from, to, at), nil
}

func (r *MemoryRepository) setStatusLocked(id string, from []domain.Status, to domain.Status, at time.Time) bool {
	p, ok := r.plans[id]
	if !ok || !slices.Contains(from, p.Status) {
		return false
	}
	p.Status = to
	p.UpdatedAt = at
	r.plans[id] = p
	return true
}

// Locked runs fn while holding the write lock, with a status setter bound to the held lock.
// It lets another in-memory repository change plan status atomically with its own write.
func (r *MemoryRepository) Locked(fn func(setStatus func(id string, from []domain.Status, to domain.Status, at time.Time) bool) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.setStatusLocked)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok || !p.Editable() {
		return false, nil
	}
	delete(r.plans, id)
	delete(r.results, id)
	return true, nil
}

func (r *MemoryRepository) AddResult(_ context.Context, v *domain.ValidationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	cp.Messages = slices.Clone(v.Messages)
	r.results[v.PlanID] = append(r.results[v.PlanID], cp)
	return nil
}

func (r *MemoryRepository) ListResults(_ context.Context, planID string) ([]*domain.ValidationResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.results[planID]
	out := make([]*domain.ValidationResult, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := stored[i]
		out = append(out, &cp)
	}
	return out, nil
}
