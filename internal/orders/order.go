package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/internal/promo"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

// Order is an immutable snapshot of a cart plus totals and status.
type Order struct {
	ID              string            `json:"id"`
	RecordID        *uuid.UUID        `json:"record_id,omitempty"`
	UserID          *uuid.UUID        `json:"user_id,omitempty"`
	Items           []cart.Item       `json:"items"`
	Subtotal        int64             `json:"subtotal"`
	Shipping        int64             `json:"shipping"`
	Discount        int64             `json:"discount"`
	Total           int64             `json:"total"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	CustomerName    string            `json:"customer_name,omitempty"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	PromoCode       string            `json:"promo_code,omitempty"`
	Meta            map[string]any    `json:"meta,omitempty"`
}

// ItemCount is the sum of line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Extras are caller-supplied order fields. They never override the computed
// money fields; a promo code is re-validated against the subtotal.
type Extras struct {
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	Notes           string
	PromoCode       string
	Meta            map[string]any
}

var reservedMetaKeys = map[string]struct{}{
	"id": {}, "items": {}, "subtotal": {}, "shipping": {}, "discount": {},
	"total": {}, "status": {}, "created_at": {}, "createdAt": {},
}

// Draft is everything needed to build an order besides the cart contents.
type Draft struct {
	ID     string
	Now    time.Time
	Extras Extras
}

// Build turns a cart snapshot into a pending order. An empty cart fails with
// a validation error; an unusable promo code fails with the evaluator message.
func Build(items []cart.Item, totals cart.Totals, draft Draft) (Order, error) {
	if len(items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, cart.MsgEmpty)
	}

	order := Order{
		ID:              draft.ID,
		Items:           cart.CloneItems(items),
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Status:          enums.OrderStatusPending,
		CreatedAt:       draft.Now.UTC(),
		CustomerName:    strings.TrimSpace(draft.Extras.CustomerName),
		CustomerPhone:   strings.TrimSpace(draft.Extras.CustomerPhone),
		ShippingAddress: strings.TrimSpace(draft.Extras.ShippingAddress),
		Notes:           strings.TrimSpace(draft.Extras.Notes),
		Meta:            sanitizeMeta(draft.Extras.Meta),
	}

	if code := strings.TrimSpace(draft.Extras.PromoCode); code != "" {
		res := promo.Validate(code, totals.Subtotal)
		if !res.Valid {
			return Order{}, pkgerrors.New(pkgerrors.CodeValidation, res.Message).
				WithDetails(map[string]any{"field": "promo_code"})
		}
		order.PromoCode = res.Code
		order.Discount = res.Discount
	}

	gross := order.Subtotal + order.Shipping
	if order.Discount > gross {
		order.Discount = gross
	}
	order.Total = gross - order.Discount
	return order, nil
}

func sanitizeMeta(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if _, reserved := reservedMetaKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
