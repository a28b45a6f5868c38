package wishlist

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/kv"
	"github.com/hijabina/hijabina-backend/pkg/lock"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
)

// StoreParams groups dependencies for the wishlist store.
type StoreParams struct {
	KV      kv.Store
	Metrics *metrics.StorefrontMetrics
	Clock   func() time.Time
}

// Store keeps each shopper's saved products with set semantics on product id.
type Store struct {
	locks   *lock.KeyedMutex
	kv      kv.Store
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

func NewStore(params StoreParams) (*Store, error) {
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{locks: lock.NewKeyedMutex(), kv: params.KV, metrics: params.Metrics, now: clock}, nil
}

// Key is the persistence key of a shopper's wishlist.
func Key(shopperID string) string {
	return "wishlist:" + shopperID
}

// Add saves productID. A duplicate is a no-op reported with Added=false.
func (s *Store) Add(ctx context.Context, shopperID, productID string, extra map[string]any) (Result, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "ID produk wajib diisi")
	}
	return s.mutate(ctx, shopperID, "add", func(items []Item) ([]Item, bool, string) {
		for _, item := range items {
			if item.ProductID == productID {
				return items, false, MsgAlreadyPresent
			}
		}
		return append(items, Item{ProductID: productID, AddedAt: s.now().UTC(), Extra: extra}), true, MsgAdded
	})
}

// Remove drops productID whether or not it was saved.
func (s *Store) Remove(ctx context.Context, shopperID, productID string) (Result, error) {
	return s.mutate(ctx, shopperID, "remove", func(items []Item) ([]Item, bool, string) {
		out := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out, false, MsgRemoved
	})
}

func (s *Store) Contains(ctx context.Context, shopperID, productID string) (bool, error) {
	items, err := s.Items(ctx, shopperID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Items(ctx context.Context, shopperID string) ([]Item, error) {
	if strings.TrimSpace(shopperID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ID pembeli wajib diisi")
	}
	return s.load(ctx, shopperID)
}

func (s *Store) mutate(ctx context.Context, shopperID, op string, fn func([]Item) ([]Item, bool, string)) (Result, error) {
	if strings.TrimSpace(shopperID) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "ID pembeli wajib diisi")
	}
	unlock := s.locks.Lock(shopperID)
	defer unlock()

	items, err := s.load(ctx, shopperID)
	if err != nil {
		s.metrics.CartOp(metrics.StoreWishlist, op, err)
		return Result{}, err
	}
	next, added, msg := fn(items)
	if err := s.kv.Set(ctx, Key(shopperID), next); err != nil {
		s.metrics.CartOp(metrics.StoreWishlist, op, err)
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist")
	}
	s.metrics.CartOp(metrics.StoreWishlist, op, nil)
	return Result{Items: next, Added: added, Message: msg}, nil
}

func (s *Store) load(ctx context.Context, shopperID string) ([]Item, error) {
	items := []Item{}
	if _, err := s.kv.Get(ctx, Key(shopperID), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
