package remotecart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
)

// Collection persists a user's remote cart, one row per (user, product).
type Collection struct {
	db *gorm.DB
}

// NewCollection builds a cart_items repository bound to the provided DB.
func NewCollection(db *gorm.DB) *Collection {
	return &Collection{db: db}
}

func (c *Collection) WithTx(tx *gorm.DB) *Collection {
	if tx == nil {
		return c
	}
	return &Collection{db: tx}
}

// List returns the user's lines in the order they were first added.
func (c *Collection) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (c *Collection) Find(ctx context.Context, userID uuid.UUID, productID string) (*models.CartItem, error) {
	var row models.CartItem
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert inserts the line or, when the product is already in the cart, adds
// its quantity to the stored one. Name and price of an existing line are kept.
func (c *Collection) Upsert(ctx context.Context, item *models.CartItem) error {
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(item).Error
}

// SetQuantity reports false when the line does not exist.
func (c *Collection) SetQuantity(ctx context.Context, userID uuid.UUID, productID string, qty int) (bool, error) {
	res := c.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (c *Collection) Delete(ctx context.Context, userID uuid.UUID, productID string) error {
	return c.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// DeleteAll removes every line of the user's cart in one statement.
func (c *Collection) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
