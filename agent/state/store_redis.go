package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each history as one JSON value in Redis.
type RedisStore struct {
	rdb  redis.Cmdable
	opts storeOptions
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.Cmdable, opts ...StoreOption) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	o, err := applyStoreOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RedisStore{rdb: rdb, opts: o}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (History, error) {
	key, err := sessionKey(s.opts.keyPrefix, userID)
	if err != nil {
		return nil, err
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeHistory(raw)
}

func (s *RedisStore) Set(ctx context.Context, userID string, h History) error {
	key, err := sessionKey(s.opts.keyPrefix, userID)
	if err != nil {
		return err
	}
	payload, err := encodeHistory(h)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, payload, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	key, err := sessionKey(s.opts.keyPrefix, userID)
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
