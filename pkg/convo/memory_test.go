package convo

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mapRepository is a plain in-process BucketRepository for store tests.
type mapRepository struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
}

func newMapRepository() *mapRepository {
	return &mapRepository{buckets: make(map[string]*Bucket)}
}

func (r *mapRepository) Get(ctx context.Context, threadID string) (*Bucket, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[threadID]
	return b, ok, nil
}

func (r *mapRepository) Save(ctx context.Context, threadID string, b *Bucket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets[threadID] = b
	return nil
}

func (r *mapRepository) Delete(ctx context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, threadID)
	return nil
}

func TestMemoryStoreUpdateAndGet(t *testing.T) {
	store := NewMemoryStore(newMapRepository(), time.Hour)
	ctx := context.Background()

	b, err := store.Get(ctx, "t1")
	if err != nil || b != nil {
		t.Fatalf("fresh thread: (%v, %v), want (nil, nil)", b, err)
	}

	_, err = store.Update(ctx, "t1", func(b *Bucket) {
		b.LastSelection = &Selection{ID: "f-1", Collection: "fields", Label: "0515-Johnson Home"}
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	b, err = store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b == nil || b.LastSelection == nil || b.LastSelection.ID != "f-1" {
		t.Fatalf("selection not persisted: %+v", b)
	}
	if b.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped by Update")
	}
}

func TestMemoryStoreTTLEviction(t *testing.T) {
	repo := newMapRepository()
	store := NewMemoryStore(repo, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	if _, err := store.Update(ctx, "t1", func(b *Bucket) {
		b.Pending = &Pending{Kind: "entity_pick"}
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Just inside the horizon: still there.
	store.now = func() time.Time { return base.Add(59 * time.Minute) }
	if b, _ := store.Get(ctx, "t1"); b == nil {
		t.Fatal("bucket evicted before the TTL elapsed")
	}

	// Past the horizon: gone from the store and from the backend.
	store.now = func() time.Time { return base.Add(61 * time.Minute) }
	if b, _ := store.Get(ctx, "t1"); b != nil {
		t.Fatal("stale bucket returned past the TTL")
	}
	if _, found, _ := repo.Get(ctx, "t1"); found {
		t.Error("stale bucket not deleted from the backend")
	}
}

func TestMemoryStoreUpdateRefreshesTTL(t *testing.T) {
	store := NewMemoryStore(newMapRepository(), time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	if _, err := store.Update(ctx, "t1", func(b *Bucket) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A touch at 50 minutes restarts the clock; 50 more minutes later the
	// bucket is still live even though 100 minutes passed in total.
	store.now = func() time.Time { return base.Add(50 * time.Minute) }
	if _, err := store.Update(ctx, "t1", func(b *Bucket) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	store.now = func() time.Time { return base.Add(100 * time.Minute) }
	if b, _ := store.Get(ctx, "t1"); b == nil {
		t.Fatal("refreshed bucket evicted early")
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(newMapRepository(), time.Hour)
	ctx := context.Background()

	if _, err := store.Update(ctx, "t1", func(b *Bucket) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Clear(ctx, "t1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if b, _ := store.Get(ctx, "t1"); b != nil {
		t.Error("bucket survived Clear")
	}
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	store := NewMemoryStore(newMapRepository(), 0)
	if store.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want default %v", store.TTL(), DefaultTTL)
	}
}
