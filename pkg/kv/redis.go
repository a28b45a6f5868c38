package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisBackend is the subset of pkg/redis.Client used by RedisStore.
type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	WriteBatch(ctx context.Context, sets map[string]string, dels []string, ttl time.Duration) error
	LocalKey(key string) string
}

// RedisStore persists values under the namespaced "local" prefix. Every write
// refreshes the TTL so idle device state eventually expires.
type RedisStore struct {
	client redisBackend
	ttl    time.Duration
}

func NewRedisStore(client redisBackend, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("kv: redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	raw, err := r.client.Get(ctx, r.client.LocalKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return true, decode(key, []byte(raw), dest)
}

func (r *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := encode(key, value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.client.LocalKey(key), string(raw), r.ttl); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.client.Del(ctx, r.client.LocalKey(key)); err != nil {
		return fmt.Errorf("kv: remove %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Apply(ctx context.Context, ops ...Op) error {
	sets, dels, err := encodeOps(ops)
	if err != nil {
		return err
	}
	namespacedSets := make(map[string]string, len(sets))
	for key, raw := range sets {
		namespacedSets[r.client.LocalKey(key)] = string(raw)
	}
	namespacedDels := make([]string, 0, len(dels))
	for _, key := range dels {
		namespacedDels = append(namespacedDels, r.client.LocalKey(key))
	}
	if err := r.client.WriteBatch(ctx, namespacedSets, namespacedDels, r.ttl); err != nil {
		return fmt.Errorf("kv: apply batch: %w", err)
	}
	return nil
}
