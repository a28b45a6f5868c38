package remotecart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/orders"
	"github.com/hijabina/hijabina-backend/pkg/db"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/lock"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
	"github.com/hijabina/hijabina-backend/pkg/outbox"
	"github.com/hijabina/hijabina-backend/pkg/outbox/payloads"
)

const (
	defaultTimeout = 5 * time.Second
	checkoutScope  = "checkout"
	changePayload  = "changed"

	maxNumberAttempts = 3
)

var (
	errFeedClosed  = errors.New("cart change feed closed")
	errNumberTaken = errors.New("order number already used")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the remote cart service.
type ServiceParams struct {
	Collection *Collection
	Orders     *orders.Repository
	Tx         txRunner
	Outbox     outbox.Emitter
	Feed       Feed
	Locker     *lock.Locker
	// LockKey namespaces the per-user checkout lock; defaults to "lock:<scope>:<id>".
	LockKey func(scope, id string) string
	IDs     *orders.IDGenerator
	Policy  cart.Policy
	// Timeout bounds each collaborator call.
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	Clock   func() time.Time
}

// Service keeps an authenticated user's cart in the database and streams
// full snapshots on every change.
type Service struct {
	collection *Collection
	orders     *orders.Repository
	tx         txRunner
	outbox     outbox.Emitter
	feed       Feed
	locker     *lock.Locker
	lockKey    func(scope, id string) string
	ids        *orders.IDGenerator
	policy     cart.Policy
	timeout    time.Duration
	logg       *logger.Logger
	metrics    *metrics.StorefrontMetrics
	now        func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Collection == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart collection is required")
	case params.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	case params.Outbox == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox emitter is required")
	case params.Feed == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change feed is required")
	case params.Locker == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout locker is required")
	}
	s := &Service{
		collection: params.Collection,
		orders:     params.Orders,
		tx:         params.Tx,
		outbox:     params.Outbox,
		feed:       params.Feed,
		locker:     params.Locker,
		lockKey:    params.LockKey,
		ids:        params.IDs,
		policy:     params.Policy,
		timeout:    params.Timeout,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        params.Clock,
	}
	if s.lockKey == nil {
		s.lockKey = func(scope, id string) string { return "lock:" + scope + ":" + id }
	}
	if s.policy == (cart.Policy{}) {
		s.policy = cart.DefaultPolicy()
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ids == nil {
		s.ids = orders.NewIDGenerator(s.now, orders.NewNode())
	}
	return s, nil
}

// Add inserts the product or increments its quantity.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, in cart.AddInput) (res cart.Result, err error) {
	defer func() { s.metrics.CartOp(metrics.StoreRemote, "add", err) }()
	if err := requireUser(userID); err != nil {
		return cart.Result{}, err
	}
	in, err = cart.NormalizeAdd(in)
	if err != nil {
		return cart.Result{}, err
	}

	callCtx, cancel := s.bounded(ctx)
	defer cancel()
	row := &models.CartItem{
		UserID:    userID,
		ProductID: in.ProductID,
		Name:      in.Name,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Extra:     in.Extra,
		AddedAt:   s.now().UTC(),
	}
	if err := s.collection.Upsert(callCtx, row); err != nil {
		return cart.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.afterWrite(ctx, userID, cart.MsgAdded)
}

// Remove deletes the product line. Removing an absent product succeeds.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, productID string) (res cart.Result, err error) {
	defer func() { s.metrics.CartOp(metrics.StoreRemote, "remove", err) }()
	return s.remove(ctx, userID, productID)
}

func (s *Service) remove(ctx context.Context, userID uuid.UUID, productID string) (cart.Result, error) {
	if err := requireUser(userID); err != nil {
		return cart.Result{}, err
	}
	callCtx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.collection.Delete(callCtx, userID, productID); err != nil {
		return cart.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return s.afterWrite(ctx, userID, cart.MsgRemoved)
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, qty int) (res cart.Result, err error) {
	defer func() { s.metrics.CartOp(metrics.StoreRemote, "update_quantity", err) }()
	if qty <= 0 {
		return s.remove(ctx, userID, productID)
	}
	if err := requireUser(userID); err != nil {
		return cart.Result{}, err
	}
	callCtx, cancel := s.bounded(ctx)
	defer cancel()
	ok, err := s.collection.SetQuantity(callCtx, userID, productID, qty)
	if err != nil {
		return cart.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if !ok {
		return cart.Result{}, pkgerrors.New(pkgerrors.CodeNotFound, cart.MsgNotFound).
			WithDetails(map[string]any{"product_id": productID})
	}
	return s.afterWrite(ctx, userID, cart.MsgQuantityUpdated)
}

// Cart reads the current cart.
func (s *Service) Cart(ctx context.Context, userID uuid.UUID) (cart.Result, error) {
	if err := requireUser(userID); err != nil {
		return cart.Result{}, err
	}
	items, err := s.read(ctx, userID)
	if err != nil {
		return cart.Result{}, err
	}
	return cart.Result{Items: items, Totals: cart.Compute(items, s.policy)}, nil
}

// Snapshot reads the current cart; a read failure is carried in Err.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) Snapshot {
	items, err := s.read(ctx, userID)
	if err != nil {
		return Snapshot{UserID: userID, Items: []cart.Item{}, Err: err}
	}
	return Snapshot{UserID: userID, Items: items, Totals: cart.Compute(items, s.policy)}
}

// Subscribe yields the current cart and then a fresh snapshot per change
// notification until ctx is done. The channel is closed at the end and
// cannot be restarted; subscribe again instead.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	// listen before the first read so no change between the two is lost
	sub, err := s.feed.Listen(ctx, TopicCart, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to cart changes")
	}
	s.metrics.SubscriptionOpened()

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer func() {
			s.metrics.SubscriptionClosed()
			if err := sub.Close(); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "remotecart.unsubscribe_failed")
			}
		}()

		if !send(ctx, out, s.Snapshot(ctx, userID)) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Messages():
				if !ok {
					send(ctx, out, Snapshot{UserID: userID, Items: []cart.Item{}, Err: errFeedClosed})
					return
				}
				if !send(ctx, out, s.Snapshot(ctx, userID)) {
					return
				}
			}
		}
	}()
	return out, nil
}

// Watch follows an identity stream: every identity change swaps the
// underlying subscription, and an anonymous identity yields one empty
// anonymous snapshot.
func (s *Service) Watch(ctx context.Context, identities <-chan Identity) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		var inner <-chan Snapshot
		stop := func() {}
		defer func() { stop() }()

		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-identities:
				if !ok {
					identities = nil
					if inner == nil {
						return
					}
					continue
				}
				stop()
				inner = nil
				if id.Anonymous() {
					if !send(ctx, out, Snapshot{Anonymous: true, Items: []cart.Item{}}) {
						return
					}
					continue
				}
				innerCtx, cancel := context.WithCancel(ctx)
				stop = cancel
				ch, err := s.Subscribe(innerCtx, id.UserID)
				if err != nil {
					if !send(ctx, out, Snapshot{UserID: id.UserID, Items: []cart.Item{}, Err: err}) {
						return
					}
					continue
				}
				inner = ch
			case snap, ok := <-inner:
				if !ok {
					inner = nil
					if identities == nil {
						return
					}
					continue
				}
				if !send(ctx, out, snap) {
					return
				}
			}
		}
	}()
	return out
}

// Checkout turns the user's current remote cart into an order. The cart is
// re-read inside the transaction, and the cart rows are deleted in that same
// transaction so they only disappear if the order was written.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, extras orders.Extras) (result *orders.Order, err error) {
	started := time.Now()
	defer func() { s.metrics.Checkout(metrics.StoreRemote, started, err) }()
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	lease, err := s.locker.Acquire(ctx, s.lockKey(checkoutScope, userID.String()))
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Checkout sedang diproses")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}

	var built orders.Order
	for attempt := 1; ; attempt++ {
		built, err = s.placeOrder(ctx, userID, extras)
		if !errors.Is(err, errNumberTaken) || attempt == maxNumberAttempts {
			break
		}
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "attempt", attempt), "remotecart.order_number_taken")
	}
	if errors.Is(err, errNumberTaken) {
		err = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Nomor pesanan bentrok, silakan coba lagi")
	}

	var teardown error
	if err == nil {
		teardown = multierr.Append(teardown, s.notify(ctx, userID))
	}
	teardown = multierr.Append(teardown, lease.Release(context.WithoutCancel(ctx)))
	if teardown != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "error", teardown.Error()), "remotecart.checkout_teardown_failed")
	}
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(s.logg.WithUserID(ctx, userID.String()), built.ID)
	s.logg.Info(logCtx, "order.created")
	return &built, nil
}

// placeOrder writes the order, its outbox event and the emptied cart in one
// transaction. errNumberTaken means another process used the same number.
func (s *Service) placeOrder(ctx context.Context, userID uuid.UUID, extras orders.Extras) (orders.Order, error) {
	var built orders.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.collection.WithTx(tx).List(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		items := toItems(rows)
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, cart.MsgEmpty)
		}
		id, now := s.ids.Next()
		order, err := orders.Build(items, cart.Compute(items, s.policy), orders.Draft{ID: id, Now: now, Extras: extras})
		if err != nil {
			return err
		}

		row := orders.ToModel(order, userID)
		if err := s.orders.WithTx(tx).Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "orders_number_key") {
				return errNumberTaken
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)},
			Data: payloads.OrderCreatedEvent{
				OrderID:   row.ID,
				Number:    row.Number,
				UserID:    row.UserID,
				Subtotal:  row.Subtotal,
				Shipping:  row.Shipping,
				Discount:  row.Discount,
				Total:     row.Total,
				ItemCount: order.ItemCount(),
				PromoCode: row.PromoCode,
				CreatedAt: row.CreatedAt,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created event")
		}
		if _, err := s.collection.WithTx(tx).DeleteAll(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		recordID := row.ID
		order.RecordID = &recordID
		order.UserID = &userID
		built = order
		return nil
	})
	return built, err
}

func (s *Service) afterWrite(ctx context.Context, userID uuid.UUID, msg string) (cart.Result, error) {
	if err := s.notify(ctx, userID); err != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "error", err.Error()), "remotecart.notify_failed")
	}
	items, err := s.read(ctx, userID)
	if err != nil {
		return cart.Result{}, err
	}
	return cart.Result{Items: items, Totals: cart.Compute(items, s.policy), Message: msg}, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID) error {
	callCtx, cancel := s.bounded(ctx)
	defer cancel()
	return s.feed.Notify(callCtx, TopicCart, userID, changePayload)
}

func (s *Service) read(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	callCtx, cancel := s.bounded(ctx)
	defer cancel()
	rows, err := s.collection.List(callCtx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return toItems(rows), nil
}

func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func toItems(rows []models.CartItem) []cart.Item {
	items := make([]cart.Item, 0, len(rows))
	for _, row := range rows {
		item := cart.Item{
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			Quantity:  row.Quantity,
			AddedAt:   row.AddedAt,
		}
		if len(row.Extra) > 0 {
			item.Extra = row.Extra.Clone()
		}
		items = append(items, item)
	}
	return items
}

func send(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Silakan login terlebih dahulu")
	}
	return nil
}
