package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// Stats is the dashboard landing view.
type Stats struct {
	Revenue        int64      `json:"revenue"`
	RevenueLabel   string     `json:"revenue_label"`
	TotalOrders    int64      `json:"total_orders"`
	TotalProducts  int64      `json:"total_products"`
	TotalCustomers int64      `json:"total_customers"`
	RecentOrders   []OrderRow `json:"recent_orders"`
}

// OrderRow is one order line in the dashboard tables.
type OrderRow struct {
	ID           uuid.UUID         `json:"id"`
	ShortID      string            `json:"short_id"`
	Number       string            `json:"number"`
	CustomerName string            `json:"customer_name"`
	Total        int64             `json:"total"`
	TotalLabel   string            `json:"total_label"`
	Status       enums.OrderStatus `json:"status"`
	StatusLabel  string            `json:"status_label"`
	Date         string            `json:"date"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Customer is a customer account with its order count.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	OrderCount int64     `json:"order_count"`
	JoinedAt   string    `json:"joined_at"`
}

// ReportRow adds the item count to an order row.
type ReportRow struct {
	OrderRow
	ItemCount int `json:"item_count"`
}

// ReportSummary aggregates the rows of a report. Revenue counts completed orders only.
type ReportSummary struct {
	Orders       int64  `json:"orders"`
	Items        int64  `json:"items"`
	Revenue      int64  `json:"revenue"`
	RevenueLabel string `json:"revenue_label"`
}

// Report is the sales report for one period.
type Report struct {
	Period  enums.ReportPeriod `json:"period"`
	Since   time.Time          `json:"since"`
	Rows    []ReportRow        `json:"rows"`
	Summary ReportSummary      `json:"summary"`
}
