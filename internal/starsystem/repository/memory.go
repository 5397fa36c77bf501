package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gemini-observatory/backend/internal/starsystem/domain"
)

// MemoryRepository keeps the catalogue in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int]domain.StarSystem
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int]domain.StarSystem), nextID: 1}
}

func (r *MemoryRepository) List(_ context.Context) ([]*domain.StarSystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.StarSystem, 0, len(r.byID))
	for _, s := range r.byID {
		cp := s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int) (*domain.StarSystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byID[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetByName(_ context.Context, name string) (*domain.StarSystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byID {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *MemoryRepository) InsertMany(_ context.Context, systems []domain.StarSystem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range systems {
		dup := false
		for _, existing := range r.byID {
			if existing.Name == s.Name {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		s.ID = r.nextID
		r.nextID++
		r.byID[s.ID] = s
	}
	return nil
}
