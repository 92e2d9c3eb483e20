package convo

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the session memory horizon.
const DefaultTTL = 12 * time.Hour

// BucketRepository is the storage backend for thread buckets. The in-memory
// and Redis implementations live under internal/repository.
type BucketRepository interface {
	Get(ctx context.Context, threadID string) (*Bucket, bool, error)
	Save(ctx context.Context, threadID string, b *Bucket) error
	Delete(ctx context.Context, threadID string) error
}

// MemoryStore owns all thread buckets. Reads lazily evict stale buckets (a
// read-time side effect, no background sweep beyond what the backend does on
// its own); writes go through Update so the read-modify-write is serialized
// and UpdatedAt is always refreshed.
type MemoryStore struct {
	repo BucketRepository
	ttl  time.Duration

	mu  sync.Mutex
	now func() time.Time // overridable in tests
}

func NewMemoryStore(repo BucketRepository, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{repo: repo, ttl: ttl, now: time.Now}
}

// Get returns the bucket for a thread, or nil when absent or expired. An
// expired bucket is deleted on the spot and never returned stale.
func (s *MemoryStore) Get(ctx context.Context, threadID string) (*Bucket, error) {
	b, found, err := s.repo.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if s.now().Sub(b.UpdatedAt) > s.ttl {
		_ = s.repo.Delete(ctx, threadID)
		return nil, nil
	}
	return b, nil
}

// Update applies fn to the thread's bucket under the store lock, creating a
// fresh bucket on first touch, and saves it with a refreshed UpdatedAt. The
// lock covers only the read-modify-write; callers must not do I/O inside fn.
func (s *MemoryStore) Update(ctx context.Context, threadID string, fn func(*Bucket)) (*Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = &Bucket{}
	}
	fn(b)
	b.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, threadID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Clear drops all memory for a thread.
func (s *MemoryStore) Clear(ctx context.Context, threadID string) error {
	return s.repo.Delete(ctx, threadID)
}

// TTL exposes the configured horizon, mostly for backends that map it to a
// native key expiry.
func (s *MemoryStore) TTL() time.Duration {
	return s.ttl
}
