package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/outbox"
	"github.com/hijabina/hijabina-backend/pkg/outbox/payloads"
	"github.com/hijabina/hijabina-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies the staff member changing an order.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes admin order management and the shopper's own order list.
type Service interface {
	List(ctx context.Context, params pagination.Params, status *enums.OrderStatus) (*OrderPage, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo   *Repository
	Tx     txRunner
	Outbox outbox.Emitter
	Logger *logger.Logger
}

type service struct {
	repo   *Repository
	tx     txRunner
	outbox outbox.Emitter
	logg   *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox emitter is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, tx: params.Tx, outbox: params.Outbox, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, status *enums.OrderStatus) (*OrderPage, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Status pesanan tidak valid")
	}
	return s.list(ctx, params, ListFilters{Status: status})
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Silakan login terlebih dahulu")
	}
	return s.list(ctx, params, ListFilters{UserID: &userID})
}

func (s *service) list(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderPage, error) {
	res, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Cursor tidak valid")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := &OrderPage{Orders: make([]OrderDTO, 0, len(res.Orders)), NextCursor: res.NextCursor}
	for _, row := range res.Orders {
		page.Orders = append(page.Orders, ToDTO(FromModel(row)))
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	dto := ToDTO(FromModel(*row))
	return &dto, nil
}

// UpdateStatus applies one lifecycle transition and queues order_status_changed
// in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Status pesanan tidak valid").
			WithDetails(map[string]any{"status": status})
	}

	var updated OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		from := row.Status
		if !from.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Perubahan status tidak diizinkan").
				WithDetails(map[string]any{"from": from, "to": status})
		}
		ok, err := repo.UpdateStatus(ctx, id, from, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Status pesanan sudah berubah").
				WithDetails(map[string]any{"from": from, "to": status})
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.OrderStatusChangedEvent{
				OrderID: row.ID,
				Number:  row.Number,
				From:    from,
				To:      status,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order status event")
		}
		row.Status = status
		updated = ToDTO(FromModel(*row))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, updated.ID), map[string]any{
		"status":   status,
		"actor_id": actor.UserID.String(),
	})
	s.logg.Info(logCtx, "order.status_changed")
	return &updated, nil
}

// Complete is the admin shortcut to the completed status.
func (s *service) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error) {
	return s.UpdateStatus(ctx, actor, id, enums.OrderStatusCompleted)
}

func mapLookupError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Pesanan tidak ditemukan")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
