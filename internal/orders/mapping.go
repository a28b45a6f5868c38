package orders

import (
	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	dbtypes "github.com/hijabina/hijabina-backend/pkg/db/types"
	"github.com/hijabina/hijabina-backend/pkg/format"
)

// ToModel maps a built order onto its table rows for userID.
func ToModel(order Order, userID uuid.UUID) *models.Order {
	row := &models.Order{
		Number:          order.ID,
		UserID:          &userID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   optional(order.CustomerPhone),
		ShippingAddress: optional(order.ShippingAddress),
		Notes:           optional(order.Notes),
		PromoCode:       optional(order.PromoCode),
		Meta:            dbtypes.JSONMap(order.Meta).Clone(),
		Subtotal:        order.Subtotal,
		Shipping:        order.Shipping,
		Discount:        order.Discount,
		Total:           order.Total,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		row.Items = append(row.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Extra:     dbtypes.JSONMap(item.Extra).Clone(),
			AddedAt:   item.AddedAt,
		})
	}
	return row
}

// FromModel maps a stored order back to the domain shape.
func FromModel(row models.Order) Order {
	id := row.ID
	order := Order{
		ID:              row.Number,
		RecordID:        &id,
		UserID:          row.UserID,
		Subtotal:        row.Subtotal,
		Shipping:        row.Shipping,
		Discount:        row.Discount,
		Total:           row.Total,
		Status:          row.Status,
		CreatedAt:       row.CreatedAt,
		CustomerName:    row.CustomerName,
		CustomerPhone:   deref(row.CustomerPhone),
		ShippingAddress: deref(row.ShippingAddress),
		Notes:           deref(row.Notes),
		PromoCode:       deref(row.PromoCode),
		Items:           make([]cart.Item, 0, len(row.Items)),
	}
	if len(row.Meta) > 0 {
		order.Meta = row.Meta.Clone()
	}
	for _, item := range row.Items {
		order.Items = append(order.Items, cart.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
			Extra:     item.Extra.Clone(),
		})
	}
	return order
}

// OrderDTO is the display-ready order returned by the API.
type OrderDTO struct {
	Order
	StatusLabel   string `json:"status_label"`
	SubtotalLabel string `json:"subtotal_label"`
	ShippingLabel string `json:"shipping_label"`
	DiscountLabel string `json:"discount_label"`
	TotalLabel    string `json:"total_label"`
	DateLabel     string `json:"date_label"`
	ItemCount     int    `json:"item_count"`
}

// ToDTO decorates an order with formatted labels.
func ToDTO(order Order) OrderDTO {
	return OrderDTO{
		Order:         order,
		StatusLabel:   format.StatusLabel(order.Status),
		SubtotalLabel: format.Currency(order.Subtotal),
		ShippingLabel: format.Currency(order.Shipping),
		DiscountLabel: format.Currency(order.Discount),
		TotalLabel:    format.Currency(order.Total),
		DateLabel:     format.Date(order.CreatedAt),
		ItemCount:     order.ItemCount(),
	}
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

