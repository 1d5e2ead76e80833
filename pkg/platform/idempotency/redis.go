package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "aurum:idempotency:"

// RedisStore shares idempotency records between server replicas.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedis creates a store on top of an established client.
func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &resp, nil
}

func (s *RedisStore) Claim(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(CachedResponse{RequestHash: requestHash, ExpiresAt: s.now().Add(ttl)})
	if err != nil {
		return false, fmt.Errorf("encode idempotency claim: %w", err)
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+key, raw, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	cp := *response
	cp.ExpiresAt = s.now().Add(ttl)
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save idempotency record: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
