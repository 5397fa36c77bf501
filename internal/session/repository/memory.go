package repository

import (
	"context"
	"sync"
	"time"

	"gemini-observatory/backend/internal/session/domain"
)

// MemoryRepository keeps sessions in process memory. Used when REDIS_ADDR is empty.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]domain.Session), now: time.Now}
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.Expired(r.now()) {
		delete(r.sessions, id)
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	now := r.now()
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			continue
		}
		if s.UserID == userID {
			cp := s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemoryRepository) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemoryRepository) RevokeAllSessionsByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *MemoryRepository) UpdateLastSeen(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastSeenAt = &at
		r.sessions[id] = s
	}
	return nil
}

func (r *MemoryRepository) UpdateRefreshToken(_ context.Context, sessionID, jti, refreshTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.RefreshJti = jti
		s.RefreshTokenHash = refreshTokenHash
		r.sessions[sessionID] = s
	}
	return nil
}
