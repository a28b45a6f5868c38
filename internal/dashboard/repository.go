package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// Repository runs the read-only aggregate queries behind the admin dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a repository to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Counts holds the headline numbers of the dashboard.
type Counts struct {
	Revenue   int64
	Orders    int64
	Products  int64
	Customers int64
}

type customerOrderCount struct {
	UserID uuid.UUID `gorm:"column:user_id"`
	Count  int64     `gorm:"column:order_count"`
}

func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var out Counts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).
		Where("status = ?", enums.OrderStatusCompleted).
		Select("COALESCE(SUM(total), 0)").
		Scan(&out.Revenue).Error; err != nil {
		return Counts{}, err
	}
	if err := db.Model(&models.Order{}).Count(&out.Orders).Error; err != nil {
		return Counts{}, err
	}
	if err := db.Model(&models.Product{}).Count(&out.Products).Error; err != nil {
		return Counts{}, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", enums.UserRoleCustomer).Count(&out.Customers).Error; err != nil {
		return Counts{}, err
	}
	return out, nil
}

// RecentOrders returns the newest orders without their items.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Customers returns customer accounts newest first.
func (r *Repository) Customers(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleCustomer).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// OrderCounts returns the number of orders per user for the given users.
func (r *Repository) OrderCounts(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []customerOrderCount
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("user_id, COUNT(*) AS order_count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}

// OrdersSince returns orders created at or after since, newest first, with items.
func (r *Repository) OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ?", since.UTC()).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
