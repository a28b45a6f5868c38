package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/format"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

const (
	recentOrderLimit = 5
	shortIDLength    = 8
	missingName      = "N/A"
)

// Service exposes the admin dashboard views.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	Customers(ctx context.Context) ([]Customer, error)
	Report(ctx context.Context, period enums.ReportPeriod) (*Report, error)
}

type service struct {
	repo  *Repository
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds the dashboard service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dashboard repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, clock: time.Now}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard counts")
	}
	recent, err := s.repo.RecentOrders(ctx, recentOrderLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}
	stats := &Stats{
		Revenue:        counts.Revenue,
		RevenueLabel:   format.Currency(counts.Revenue),
		TotalOrders:    counts.Orders,
		TotalProducts:  counts.Products,
		TotalCustomers: counts.Customers,
		RecentOrders:   make([]OrderRow, 0, len(recent)),
	}
	for _, order := range recent {
		stats.RecentOrders = append(stats.RecentOrders, newOrderRow(order))
	}
	return stats, nil
}

func (s *service) Customers(ctx context.Context) ([]Customer, error) {
	users, err := s.repo.Customers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	counts, err := s.repo.OrderCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer orders")
	}
	out := make([]Customer, 0, len(users))
	for _, u := range users {
		out = append(out, Customer{
			ID:         u.ID,
			Name:       orNA(u.Name),
			Email:      orNA(u.Email),
			Phone:      orNA(deref(u.Phone)),
			OrderCount: counts[u.ID],
			JoinedAt:   format.Date(u.CreatedAt),
		})
	}
	return out, nil
}

func (s *service) Report(ctx context.Context, period enums.ReportPeriod) (*Report, error) {
	if period == "" {
		period = enums.ReportPeriodMonth
	}
	if !period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Periode laporan tidak valid").
			WithDetails(map[string]any{"period": period})
	}
	start := PeriodStart(period, s.clock())
	orders, err := s.repo.OrdersSince(ctx, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report orders")
	}

	report := &Report{Period: period, Since: start, Rows: make([]ReportRow, 0, len(orders))}
	for _, order := range orders {
		row := ReportRow{
			OrderRow:  newOrderRow(order),
			ItemCount: itemCount(order.Items),
		}
		row.Total = reportTotal(order)
		row.TotalLabel = format.Currency(row.Total)
		report.Rows = append(report.Rows, row)

		report.Summary.Orders++
		report.Summary.Items += int64(row.ItemCount)
		if order.Status == enums.OrderStatusCompleted {
			report.Summary.Revenue += row.Total
		}
	}
	report.Summary.RevenueLabel = format.Currency(report.Summary.Revenue)
	s.logg.Debug(s.logg.WithField(ctx, "period", period.String()), "sales report built")
	return report, nil
}

// PeriodStart returns the first instant of the period containing now, in WIB.
// Weeks start on Sunday.
func PeriodStart(period enums.ReportPeriod, now time.Time) time.Time {
	local := now.In(format.Location())
	y, m, d := local.Date()
	switch period {
	case enums.ReportPeriodToday:
		return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
	case enums.ReportPeriodWeek:
		return time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, local.Location())
	case enums.ReportPeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, local.Location())
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, local.Location())
	}
}

// reportTotal falls back to the item sum for orders stored without a total.
func reportTotal(order models.Order) int64 {
	if order.Total != 0 {
		return order.Total
	}
	var sum int64
	for _, item := range order.Items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}

func itemCount(items []models.OrderItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func newOrderRow(order models.Order) OrderRow {
	return OrderRow{
		ID:           order.ID,
		ShortID:      ShortID(order.ID),
		Number:       order.Number,
		CustomerName: orNA(order.CustomerName),
		Total:        order.Total,
		TotalLabel:   format.Currency(order.Total),
		Status:       order.Status,
		StatusLabel:  format.StatusLabel(order.Status),
		Date:         format.Date(order.CreatedAt),
		CreatedAt:    order.CreatedAt,
	}
}

// ShortID is the first eight characters of the order record id.
func ShortID(id uuid.UUID) string {
	return id.String()[:shortIDLength]
}

func orNA(value string) string {
	if value == "" {
		return missingName
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
