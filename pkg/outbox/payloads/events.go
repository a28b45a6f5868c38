package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// OrderCreatedEvent is emitted when an order is placed from a remote cart.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID  `json:"order_id"`
	Number    string     `json:"number"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Subtotal  int64      `json:"subtotal"`
	Shipping  int64      `json:"shipping"`
	Discount  int64      `json:"discount"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"item_count"`
	PromoCode *string    `json:"promo_code,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// OrderStatusChangedEvent is emitted on every admin status transition.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	Number  string            `json:"number"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}
