package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/hijabina/hijabina-backend/pkg/db/types"
	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// Order is an immutable snapshot of a remote cart plus totals and status.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string            `gorm:"column:number;not null;uniqueIndex:orders_number_key"`
	UserID          *uuid.UUID        `gorm:"column:user_id;type:uuid;index:orders_user_id_idx"`
	CustomerName    string            `gorm:"column:customer_name;not null;default:''"`
	CustomerPhone   *string           `gorm:"column:customer_phone"`
	ShippingAddress *string           `gorm:"column:shipping_address"`
	Notes           *string           `gorm:"column:notes"`
	PromoCode       *string           `gorm:"column:promo_code"`
	Meta            dbtypes.JSONMap   `gorm:"column:meta;type:jsonb;not null;default:'{}'"`
	Subtotal        int64             `gorm:"column:subtotal;not null"`
	Shipping        int64             `gorm:"column:shipping;not null"`
	Discount        int64             `gorm:"column:discount;not null;default:0"`
	Total           int64             `gorm:"column:total;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:pending"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;index:orders_created_at_idx"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a copied cart line; it never references live cart state.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID string          `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     int64           `gorm:"column:price;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Extra     dbtypes.JSONMap `gorm:"column:extra;type:jsonb;not null;default:'{}'"`
	AddedAt   time.Time       `gorm:"column:added_at;not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
