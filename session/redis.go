// session/redis.go
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a TTL matching their expiry, so
// several instances of the service can share them.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore wraps an existing client. An empty prefix means "fhurl:session:".
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "fhurl:session:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := s.client.Get(ctx, s.key(id)).Scan(&rec); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, rec.ID)
	}
	return s.client.Set(ctx, s.key(rec.ID), rec, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client.
func (s *RedisStore) Client() redis.UniversalClient {
	return s.client
}

// Ping reports whether Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
