package cart

import (
	"time"
)

// Item is one product line in a cart. Extra carries display fields (image,
// category) through unchanged.
type Item struct {
	ProductID string         `json:"id"`
	Name      string         `json:"name"`
	Price     int64          `json:"price"`
	Quantity  int            `json:"quantity"`
	AddedAt   time.Time      `json:"added_at"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// AddInput is the payload for adding a product to a cart.
type AddInput struct {
	ProductID string
	Name      string
	Price     int64
	Quantity  int
	Extra     map[string]any
}

// Totals is the computed money breakdown of a cart. Discount is always zero
// here: promo discounts are applied by the order builder.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	ItemCount int   `json:"item_count"`
	Shipping  int64 `json:"shipping"`
	Discount  int64 `json:"discount"`
	Total     int64 `json:"total"`
}

// Result is returned by every cart mutation.
type Result struct {
	Items   []Item `json:"items"`
	Totals  Totals `json:"totals"`
	Message string `json:"message"`
}

// Messages shown to shoppers.
const (
	MsgAdded           = "Produk ditambahkan ke keranjang"
	MsgRemoved         = "Produk dihapus dari keranjang"
	MsgQuantityUpdated = "Jumlah diperbarui"
	MsgCleared         = "Keranjang dikosongkan"
	MsgNotFound        = "Produk tidak ditemukan"
	MsgEmpty           = "Keranjang kosong"
)
