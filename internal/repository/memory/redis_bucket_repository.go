package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/convo"
)

// RedisBucketRepository stores thread buckets as JSON values with a native
// key TTL, for deployments running more than one copilot instance.
type RedisBucketRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBucketRepository(rdb *redis.Client, ttl time.Duration) *RedisBucketRepository {
	if ttl <= 0 {
		ttl = convo.DefaultTTL
	}
	return &RedisBucketRepository{rdb: rdb, ttl: ttl}
}

var _ convo.BucketRepository = (*RedisBucketRepository)(nil)

func key(threadID string) string {
	return "copilot:thread:" + threadID
}

func (r *RedisBucketRepository) Get(ctx context.Context, threadID string) (*convo.Bucket, bool, error) {
	raw, err := r.rdb.Get(ctx, key(threadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var b convo.Bucket
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false, fmt.Errorf("decode bucket: %w", err)
	}
	return &b, true, nil
}

func (r *RedisBucketRepository) Save(ctx context.Context, threadID string, b *convo.Bucket) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bucket: %w", err)
	}
	if err := r.rdb.Set(ctx, key(threadID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisBucketRepository) Delete(ctx context.Context, threadID string) error {
	if err := r.rdb.Del(ctx, key(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
