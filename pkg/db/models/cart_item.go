package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/hijabina/hijabina-backend/pkg/db/types"
)

// CartItem is one line of an authenticated user's remote cart.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_items_user_product_key"`
	ProductID string          `gorm:"column:product_id;not null;uniqueIndex:cart_items_user_product_key"`
	Name      string          `gorm:"column:name;not null"`
	Price     int64           `gorm:"column:price;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Extra     dbtypes.JSONMap `gorm:"column:extra;type:jsonb;not null;default:'{}'"`
	AddedAt   time.Time       `gorm:"column:added_at;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
