package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/convo"
)

// BucketRepository keeps thread buckets in process memory. go-cache checks
// expiry on Get (lazy eviction) and its janitor sweeps leftovers.
type BucketRepository struct {
	cache *cache.Cache
}

func NewBucketRepository(ttl time.Duration) *BucketRepository {
	if ttl <= 0 {
		ttl = convo.DefaultTTL
	}
	return &BucketRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

var _ convo.BucketRepository = (*BucketRepository)(nil)

func (r *BucketRepository) Get(_ context.Context, threadID string) (*convo.Bucket, bool, error) {
	if x, found := r.cache.Get(threadID); found {
		return x.(*convo.Bucket), true, nil
	}
	return nil, false, nil
}

func (r *BucketRepository) Save(_ context.Context, threadID string, b *convo.Bucket) error {
	r.cache.Set(threadID, b, cache.DefaultExpiration)
	return nil
}

func (r *BucketRepository) Delete(_ context.Context, threadID string) error {
	r.cache.Delete(threadID)
	return nil
}
