package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hijabina/hijabina-backend/internal/cart"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/kv"
	"github.com/hijabina/hijabina-backend/pkg/lock"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
)

// historyLimit caps the device-cached order history.
const historyLimit = 50

const checkoutScope = "checkout"

// BuilderParams groups dependencies for the local order builder.
type BuilderParams struct {
	Cart    *cart.Store
	IDs     *IDGenerator
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	// Locker serialises checkouts of one shopper across replicas. Without it
	// only the cart store's in-process lock applies.
	Locker *lock.Locker
	// LockKey namespaces the checkout lock; defaults to "lock:<scope>:<id>".
	LockKey func(scope, id string) string
}

// Builder turns a shopper's local cart into an order recorded in the device
// order history. History lives in the cart's own kv store so both writes can
// share one batch.
type Builder struct {
	cart    *cart.Store
	kv      kv.Store
	ids     *IDGenerator
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	locker  *lock.Locker
	lockKey func(scope, id string) string
}

func NewBuilder(params BuilderParams) (*Builder, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	ids := params.IDs
	if ids == nil {
		ids = NewIDGenerator(nil, NewNode())
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	lockKey := params.LockKey
	if lockKey == nil {
		lockKey = func(scope, id string) string { return "lock:" + scope + ":" + id }
	}
	return &Builder{
		cart:    params.Cart,
		kv:      params.Cart.KV(),
		ids:     ids,
		logg:    logg,
		metrics: params.Metrics,
		locker:  params.Locker,
		lockKey: lockKey,
	}, nil
}

// HistoryKey is the persistence key of a shopper's order history.
func HistoryKey(shopperID string) string {
	return "orders:" + shopperID
}

// CreateOrder records an order for the shopper's cart and clears the cart.
// Both writes land in one batch: if recording fails the cart is untouched.
func (b *Builder) CreateOrder(ctx context.Context, shopperID string, extras Extras) (order *Order, err error) {
	started := time.Now()
	defer func() { b.metrics.Checkout(metrics.StoreLocal, started, err) }()
	if strings.TrimSpace(shopperID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ID pembeli wajib diisi")
	}

	release, err := b.acquire(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	defer release()

	var built Order
	err = b.cart.Drain(ctx, shopperID, func(items []cart.Item, totals cart.Totals) ([]kv.Op, error) {
		if len(items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, cart.MsgEmpty)
		}
		id, now := b.ids.Next()
		o, err := Build(items, totals, Draft{ID: id, Now: now, Extras: extras})
		if err != nil {
			return nil, err
		}
		history, err := b.history(ctx, shopperID)
		if err != nil {
			return nil, err
		}
		next := append([]Order{o}, history...)
		if len(next) > historyLimit {
			next = next[:historyLimit]
		}
		built = o
		return []kv.Op{kv.Put(HistoryKey(shopperID), next)}, nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := b.logg.WithOrderID(b.logg.WithShopperID(ctx, shopperID), built.ID)
	b.logg.Info(logCtx, "order.created")
	return &built, nil
}

// acquire takes the shopper's checkout lease when a locker is configured.
func (b *Builder) acquire(ctx context.Context, shopperID string) (func(), error) {
	if b.locker == nil {
		return func() {}, nil
	}
	lease, err := b.locker.Acquire(ctx, b.lockKey(checkoutScope, shopperID))
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Checkout sedang diproses")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	return func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			b.logg.Warn(b.logg.WithField(b.logg.WithShopperID(ctx, shopperID), "error", err.Error()), "order.checkout_lock_release_failed")
		}
	}, nil
}

// History returns the shopper's orders, newest first.
func (b *Builder) History(ctx context.Context, shopperID string) ([]Order, error) {
	if shopperID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ID pembeli wajib diisi")
	}
	return b.history(ctx, shopperID)
}

func (b *Builder) history(ctx context.Context, shopperID string) ([]Order, error) {
	orders := []Order{}
	if _, err := b.kv.Get(ctx, HistoryKey(shopperID), &orders); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}
