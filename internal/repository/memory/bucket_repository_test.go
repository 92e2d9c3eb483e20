package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/convo"
)

func TestBucketRepositoryRoundTrip(t *testing.T) {
	repo := NewBucketRepository(time.Hour)
	ctx := context.Background()

	b, found, err := repo.Get(ctx, "t1")
	if err != nil || found || b != nil {
		t.Fatalf("fresh thread: (%v, %v, %v)", b, found, err)
	}

	saved := &convo.Bucket{
		LastSelection: &convo.Selection{ID: "f-1", Collection: "fields", Label: "0515-Johnson Home"},
		UpdatedAt:     time.Now(),
	}
	if err := repo.Save(ctx, "t1", saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, found, err = repo.Get(ctx, "t1")
	if err != nil || !found {
		t.Fatalf("Get: (%v, %v)", found, err)
	}
	if b.LastSelection == nil || b.LastSelection.ID != "f-1" {
		t.Errorf("bucket mangled: %+v", b)
	}
}

func TestBucketRepositoryDelete(t *testing.T) {
	repo := NewBucketRepository(time.Hour)
	ctx := context.Background()

	if err := repo.Save(ctx, "t1", &convo.Bucket{UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := repo.Get(ctx, "t1"); found {
		t.Error("bucket survived Delete")
	}
}

func TestBucketRepositoryNativeExpiry(t *testing.T) {
	repo := NewBucketRepository(20 * time.Millisecond)
	ctx := context.Background()

	if err := repo.Save(ctx, "t1", &convo.Bucket{UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, found, _ := repo.Get(ctx, "t1"); found {
		t.Error("bucket outlived the backend TTL")
	}
}
