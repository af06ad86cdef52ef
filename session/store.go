// session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dalemusser/fhurl/config"
)

// Store is a session storage backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Load returns ErrNotFound for unknown or expired IDs.
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Record is what a Store persists for one session.
type Record struct {
	ID        string         `json:"id"`
	Values    map[string]any `json:"values"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Record) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Record) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}

func (r *Record) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

func (r *Record) clone() *Record {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	out := *r
	out.Values = values
	return &out
}

var (
	ErrNotFound = errors.New("session: not found")
	ErrNoStore  = errors.New("session: no store configured")
)

// Open builds the Store selected by session_backend.
func Open(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(0), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("session: redis ping %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client, ""), nil
	}
	return nil, fmt.Errorf("session: unknown backend %q", cfg.Backend)
}
