package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/kv"
)

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(StoreParams{KV: kv.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := s.Add(ctx, "s1", "p1", map[string]any{"image": "khimar.jpg"})
	if err != nil || !first.Added || first.Message != MsgAdded {
		t.Fatalf("unexpected first add %+v %v", first, err)
	}
	second, err := s.Add(ctx, "s1", "p1", nil)
	if err != nil || second.Added || second.Message != MsgAlreadyPresent {
		t.Fatalf("unexpected second add %+v %v", second, err)
	}
	items, _ := s.Items(ctx, "s1")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Extra["image"] != "khimar.jpg" {
		t.Fatalf("first add's extras must be kept, got %+v", items[0])
	}
}

func TestRemoveAndContains(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStore(StoreParams{KV: kv.NewMemoryStore()})
	_, _ = s.Add(ctx, "s1", "p1", nil)
	_, _ = s.Add(ctx, "s1", "p2", nil)

	if ok, _ := s.Contains(ctx, "s1", "p2"); !ok {
		t.Fatal("expected p2 saved")
	}
	if _, err := s.Remove(ctx, "s1", "p2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.Contains(ctx, "s1", "p2"); ok {
		t.Fatal("expected p2 removed")
	}
	if _, err := s.Remove(ctx, "s1", "never-saved"); err != nil {
		t.Fatalf("removing an absent item should succeed, got %v", err)
	}
	if ok, _ := s.Contains(ctx, "s2", "p1"); ok {
		t.Fatal("wishlists must be scoped per shopper")
	}
}

func TestValidationAndStorageErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStore(StoreParams{KV: kv.NewMemoryStore()})
	if _, err := s.Add(ctx, "s1", "", nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.Items(ctx, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	broken, _ := NewStore(StoreParams{KV: brokenKV{kv.NewMemoryStore()}})
	if _, err := broken.Add(ctx, "s1", "p1", nil); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := NewStore(StoreParams{}); err == nil {
		t.Fatal("expected missing kv to fail")
	}
}

type brokenKV struct{ kv.Store }

func (brokenKV) Set(context.Context, string, any) error {
	return errors.New("redis: i/o timeout")
}

func TestShoppersDoNotBlockEachOther(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(StoreParams{KV: kv.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	unlock := s.locks.Lock("s1")
	defer unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.Add(ctx, "s2", "p1", nil)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("add for another shopper: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("a busy shopper must not stall other shoppers")
	}
}

func TestConcurrentAddsForOneShopperAllLand(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(StoreParams{KV: kv.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Add(ctx, "s1", fmt.Sprintf("p%d", i), nil); err != nil {
				t.Errorf("add p%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	items, _ := s.Items(ctx, "s1")
	if len(items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(items))
	}
}
