package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"gemini-observatory/backend/internal/session/domain"
)

// RedisRepository stores each session as JSON under session:<id> with a TTL matching its expiry,
// and indexes session ids per user in the set user_sessions:<userID>.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func sessionKey(id string) string          { return fmt.Sprintf("session:%s", id) }
func userSessionsKey(userID string) string { return fmt.Sprintf("user_sessions:%s", userID) }

// GetByID returns the session, or nil if it does not exist, was revoked, or expired.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			// expired by TTL; prune the index lazily
			r.client.SRem(ctx, userSessionsKey(userID), id)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.write(ctx, s, true)
}

func (r *RedisRepository) write(ctx context.Context, s *domain.Session, index bool) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), data, ttl)
	if index {
		pipe.SAdd(ctx, userSessionsKey(s.UserID), s.ID)
		pipe.ExpireGT(ctx, userSessionsKey(s.UserID), ttl)
		pipe.ExpireNX(ctx, userSessionsKey(s.UserID), ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRepository) Revoke(ctx context.Context, id string) error {
	s, err := r.GetByID(ctx, id)
	if err != nil || s == nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userSessionsKey(s.UserID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRepository) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(s *domain.Session) { s.LastSeenAt = &at })
}

func (r *RedisRepository) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	return r.update(ctx, sessionID, func(s *domain.Session) {
		s.RefreshJti = jti
		s.RefreshTokenHash = refreshTokenHash
	})
}

func (r *RedisRepository) update(ctx context.Context, id string, mutate func(*domain.Session)) error {
	s, err := r.GetByID(ctx, id)
	if err != nil || s == nil {
		return err
	}
	mutate(s)
	return r.write(ctx, s, false)
}
