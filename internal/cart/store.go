package cart

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/kv"
	"github.com/hijabina/hijabina-backend/pkg/lock"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
)

// BadgeNotifier is told the new item count after every mutation.
type BadgeNotifier interface {
	CartChanged(ctx context.Context, shopperID string, count int) error
}

// StoreParams groups dependencies for the local cart store.
type StoreParams struct {
	KV       kv.Store
	Policy   Policy
	Notifier BadgeNotifier
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
	Clock    func() time.Time
}

// Store owns the device-scoped cart of each shopper. It is the only writer of
// the "cart:<shopper>" key. Writes for one shopper are serialized in-process;
// two processes writing the same key are last-write-wins.
type Store struct {
	kv       kv.Store
	policy   Policy
	notifier BadgeNotifier
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
	locks    *lock.KeyedMutex
}

// DrainFunc receives a snapshot of the cart and returns the writes that must
// land together with clearing it.
type DrainFunc func(items []Item, totals Totals) ([]kv.Op, error)

func NewStore(params StoreParams) (*Store, error) {
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	policy := params.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		kv:       params.KV,
		policy:   policy,
		notifier: params.Notifier,
		logg:     logg,
		metrics:  params.Metrics,
		now:      clock,
		locks:    lock.NewKeyedMutex(),
	}, nil
}

// Key is the persistence key of a shopper's cart.
func Key(shopperID string) string {
	return "cart:" + shopperID
}

// KV returns the backing store. Writes batched through Drain must target it.
func (s *Store) KV() kv.Store {
	return s.kv
}

// Policy returns the shipping policy the store computes totals with.
func (s *Store) Policy() Policy {
	return s.policy
}

// Add increments an existing line or appends a new one.
func (s *Store) Add(ctx context.Context, shopperID string, in AddInput) (Result, error) {
	in, err := NormalizeAdd(in)
	if err != nil {
		s.metrics.CartOp(metrics.StoreLocal, "add", err)
		return Result{}, err
	}
	return s.mutate(ctx, shopperID, "add", func(items []Item) ([]Item, string, error) {
		return Merge(items, in, s.now().UTC()), MsgAdded, nil
	})
}

// Remove drops the line if present. Absent products are not an error.
func (s *Store) Remove(ctx context.Context, shopperID, productID string) (Result, error) {
	return s.mutate(ctx, shopperID, "remove", func(items []Item) ([]Item, string, error) {
		return removeLine(items, productID), MsgRemoved, nil
	})
}

// UpdateQuantity sets the quantity of an existing line. qty <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, shopperID, productID string, qty int) (Result, error) {
	if qty <= 0 {
		return s.Remove(ctx, shopperID, productID)
	}
	return s.mutate(ctx, shopperID, "update_quantity", func(items []Item) ([]Item, string, error) {
		for idx := range items {
			if items[idx].ProductID == productID {
				items[idx].Quantity = qty
				return items, MsgQuantityUpdated, nil
			}
		}
		return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, MsgNotFound).
			WithDetails(map[string]any{"product_id": productID})
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, shopperID string) (Result, error) {
	if err := requireShopper(shopperID); err != nil {
		return Result{}, err
	}
	unlock := s.locks.Lock(shopperID)
	defer unlock()

	err := s.kv.Remove(ctx, Key(shopperID))
	s.metrics.CartOp(metrics.StoreLocal, "clear", err)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.notify(ctx, shopperID, 0)
	return Result{Items: []Item{}, Totals: Compute(nil, s.policy), Message: MsgCleared}, nil
}

// Total computes the shopper's cart totals.
func (s *Store) Total(ctx context.Context, shopperID string) (Totals, error) {
	items, err := s.Items(ctx, shopperID)
	if err != nil {
		return Totals{}, err
	}
	return Compute(items, s.policy), nil
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items(ctx context.Context, shopperID string) ([]Item, error) {
	if err := requireShopper(shopperID); err != nil {
		return nil, err
	}
	return s.load(ctx, shopperID)
}

// Count is the sum of quantities, as shown on the cart badge.
func (s *Store) Count(ctx context.Context, shopperID string) (int, error) {
	totals, err := s.Total(ctx, shopperID)
	if err != nil {
		return 0, err
	}
	return totals.ItemCount, nil
}

func (s *Store) Contains(ctx context.Context, shopperID, productID string) (bool, error) {
	_, ok, err := s.Item(ctx, shopperID, productID)
	return ok, err
}

func (s *Store) Item(ctx context.Context, shopperID, productID string) (Item, bool, error) {
	items, err := s.Items(ctx, shopperID)
	if err != nil {
		return Item{}, false, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

// Drain hands the current cart to fn and applies fn's writes together with
// clearing the cart in one atomic batch. If fn or the batch fails nothing is
// written and the cart is left intact.
func (s *Store) Drain(ctx context.Context, shopperID string, fn DrainFunc) error {
	if err := requireShopper(shopperID); err != nil {
		return err
	}
	unlock := s.locks.Lock(shopperID)
	defer unlock()

	items, err := s.load(ctx, shopperID)
	if err != nil {
		return err
	}
	ops, err := fn(CloneItems(items), Compute(items, s.policy))
	if err != nil {
		return err
	}
	ops = append(ops, kv.Delete(Key(shopperID)))
	if err := s.kv.Apply(ctx, ops...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order and clear cart")
	}
	s.notify(ctx, shopperID, 0)
	return nil
}

type mutation func(items []Item) ([]Item, string, error)

func (s *Store) mutate(ctx context.Context, shopperID, op string, fn mutation) (Result, error) {
	if err := requireShopper(shopperID); err != nil {
		return Result{}, err
	}
	unlock := s.locks.Lock(shopperID)
	defer unlock()

	res, err := s.apply(ctx, shopperID, fn)
	s.metrics.CartOp(metrics.StoreLocal, op, err)
	if err != nil {
		return Result{}, err
	}
	s.notify(ctx, shopperID, res.Totals.ItemCount)
	return res, nil
}

func (s *Store) apply(ctx context.Context, shopperID string, fn mutation) (Result, error) {
	items, err := s.load(ctx, shopperID)
	if err != nil {
		return Result{}, err
	}
	next, msg, err := fn(items)
	if err != nil {
		return Result{}, err
	}
	if next == nil {
		next = []Item{}
	}
	if err := s.kv.Set(ctx, Key(shopperID), next); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return Result{Items: CloneItems(next), Totals: Compute(next, s.policy), Message: msg}, nil
}

func (s *Store) load(ctx context.Context, shopperID string) ([]Item, error) {
	var items []Item
	if _, err := s.kv.Get(ctx, Key(shopperID), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Store) notify(ctx context.Context, shopperID string, count int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CartChanged(ctx, shopperID, count); err != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithShopperID(ctx, shopperID), "error", err.Error()), "cart.badge_notify_failed")
	}
}

func removeLine(items []Item, productID string) []Item {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

func requireShopper(shopperID string) error {
	if strings.TrimSpace(shopperID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "ID pembeli wajib diisi")
	}
	return nil
}
