package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultRedisPrefix namespaces gophauth keys in a shared redis.
const DefaultRedisPrefix = "gophauth:"

// RedisStore implements Store on a redis server.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. Every key is stored as prefix+key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("STORE_READ_FAILED").With("key", key).Wrap(err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return oops.Code("STORE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// SetMany issues a single MSET inside MULTI/EXEC.
func (s *RedisStore) SetMany(ctx context.Context, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}
	args := make([]any, 0, len(pairs)*2)
	for k, v := range pairs {
		args = append(args, s.prefix+k, v)
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.MSet(ctx, args...)
		return nil
	})
	if err != nil {
		return oops.Code("STORE_WRITE_FAILED").Wrap(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return oops.Code("STORE_DELETE_FAILED").With("keys", keys).Wrap(err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
