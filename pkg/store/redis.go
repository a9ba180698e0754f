package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nodescape/nodescape/pkg/observability"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the optional server password.
	Password string

	// DB selects the logical database.
	DB int

	// Prefix namespaces keys, for multi-tenant deployments sharing one
	// server. Defaults to "nodescape:snapshot:".
	Prefix string
}

// RedisStore persists snapshots in Redis, for multi-instance deployments.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "nodescape:snapshot:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get retrieves a snapshot by name.
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	data, err := s.client.Get(ctx, s.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.Store().OnMiss("snapshot")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	observability.Store().OnHit("snapshot")
	return data, nil
}

// Set stores a snapshot under the given name. Snapshots do not expire.
func (s *RedisStore) Set(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return ErrInvalidName
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0).Err(); err != nil {
		return err
	}
	observability.Store().OnSet("snapshot", len(data))
	return nil
}

// Delete removes a snapshot.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	return s.client.Del(ctx, s.prefix+name).Err()
}

// List returns the stored snapshot names by scanning the key namespace.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
