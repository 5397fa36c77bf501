package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	plandomain "gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/program/domain"
)

// PlanLocker lets Submit change plan status under the plan store's own lock.
// Implemented by the in-memory plan repository.
type PlanLocker interface {
	Locked(fn func(setStatus func(id string, from []plandomain.Status, to plandomain.Status, at time.Time) bool) error) error
}

// MemoryRepository keeps programs in process memory. Used when no database is configured and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	plans    PlanLocker
	programs map[string]domain.ObservingProgram
}

func NewMemoryRepository(plans PlanLocker) *MemoryRepository {
	return &MemoryRepository{plans: plans, programs: make(map[string]domain.ObservingProgram)}
}

func (r *MemoryRepository) Submit(_ context.Context, p *domain.ObservingProgram) error {
	return r.plans.Locked(func(setStatus func(string, []plandomain.Status, plandomain.Status, time.Time) bool) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, existing := range r.programs {
			if existing.PlanID == p.PlanID {
				return ErrDuplicateProgram
			}
		}
		if !setStatus(p.PlanID, []plandomain.Status{plandomain.StatusValid}, plandomain.StatusSubmitted, p.SubmittedAt) {
			return ErrPlanNotValid
		}
		r.programs[p.ID] = *p
		return nil
	})
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.ObservingProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.programs[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetByPlan(_ context.Context, planID string) (*domain.ObservingProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.programs {
		if p.PlanID == planID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]*domain.ObservingProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ObservingProgram, 0, len(r.programs))
	for _, p := range r.programs {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SubmittedBy != "" && p.SubmittedBy != f.SubmittedBy {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.ObservingProgram, from domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.programs[p.ID]
	if !ok || existing.Status != from {
		return false, nil
	}
	next := *p
	next.PlanID, next.SubmittedBy, next.SubmittedAt = existing.PlanID, existing.SubmittedBy, existing.SubmittedAt
	next.FramesPlanned = existing.FramesPlanned
	r.programs[p.ID] = next
	return true, nil
}
