package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bozoruz/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository stores sessions as JSON strings under prefix:key.
// A zero ttl keeps entries until they are overwritten.
func NewRedisSessionRepository(client *redis.Client, prefix string, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisSessionRepository) Load(ctx context.Context, key string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}
	return decodeSession(data)
}

func (r *redisSessionRepository) Save(ctx context.Context, key string, session *domain.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.redisKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) redisKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}
