package remotecart

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/pkg/format"
)

const (
	MsgNotLoggedIn   = "Silakan masuk untuk melihat keranjang belanja Anda."
	MsgCartEmpty     = "Keranjang Anda masih kosong."
	MsgLoadFailed    = "Gagal memuat data keranjang."
	fallbackItemName = "Nama Produk Tidak Tersedia"
)

// Snapshot is the full state of one remote cart at a point in time. Each
// snapshot replaces the previous one; consumers never patch.
type Snapshot struct {
	UserID    uuid.UUID
	Anonymous bool
	Items     []cart.Item
	Totals    cart.Totals
	// Err is set when the cart could not be read; Items is empty then.
	Err error
}

// View is the display-ready rendering of a snapshot.
type View struct {
	Anonymous     bool       `json:"anonymous"`
	Empty         bool       `json:"empty"`
	Message       string     `json:"message,omitempty"`
	Error         string     `json:"error,omitempty"`
	Lines         []LineView `json:"lines"`
	Count         int        `json:"count"`
	Subtotal      int64      `json:"subtotal"`
	Shipping      int64      `json:"shipping"`
	Total         int64      `json:"total"`
	SubtotalLabel string     `json:"subtotal_label,omitempty"`
	ShippingLabel string     `json:"shipping_label,omitempty"`
	TotalLabel    string     `json:"total_label,omitempty"`
}

type LineView struct {
	ProductID      string         `json:"id"`
	Name           string         `json:"name"`
	Quantity       int            `json:"quantity"`
	Price          int64          `json:"price"`
	PriceLabel     string         `json:"price_label"`
	LineTotal      int64          `json:"line_total"`
	LineTotalLabel string         `json:"line_total_label"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Render is a pure function of the snapshot, so replaying a snapshot renders
// the same view.
func Render(s Snapshot) View {
	v := View{Anonymous: s.Anonymous, Lines: []LineView{}}
	switch {
	case s.Anonymous:
		v.Empty = true
		v.Message = MsgNotLoggedIn
		return v
	case s.Err != nil:
		v.Empty = true
		v.Error = MsgLoadFailed
		return v
	case len(s.Items) == 0:
		v.Empty = true
		v.Message = MsgCartEmpty
		return v
	}

	for _, item := range s.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = fallbackItemName
		}
		v.Lines = append(v.Lines, LineView{
			ProductID:      item.ProductID,
			Name:           name,
			Quantity:       item.Quantity,
			Price:          item.Price,
			PriceLabel:     format.Currency(item.Price),
			LineTotal:      item.LineTotal(),
			LineTotalLabel: format.Currency(item.LineTotal()),
			Extra:          item.Extra,
		})
	}
	v.Count = s.Totals.ItemCount
	v.Subtotal = s.Totals.Subtotal
	v.Shipping = s.Totals.Shipping
	v.Total = s.Totals.Total
	v.SubtotalLabel = format.Currency(s.Totals.Subtotal)
	v.ShippingLabel = format.Currency(s.Totals.Shipping)
	v.TotalLabel = format.Currency(s.Totals.Total)
	return v
}
