package repository

import (
	"context"
	"sort"
	"sync"

	"gemini-observatory/backend/internal/observation/domain"
)

// MemoryRepository keeps observation metadata in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.Observation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]domain.Observation)}
}

func (r *MemoryRepository) Create(_ context.Context, o *domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.ProgramID == o.ProgramID && existing.Sequence == o.Sequence {
			return ErrDuplicateFrame
		}
	}
	r.byID[o.ID] = *o
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o, ok := r.byID[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetBySequence(_ context.Context, programID string, sequence int) (*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.byID {
		if o.ProgramID == programID && o.Sequence == sequence {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListByProgram(_ context.Context, programID string) ([]*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Observation
	for _, o := range r.byID {
		if o.ProgramID == programID {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}
