package cart

import (
	"strings"
	"time"

	"github.com/hijabina/hijabina-backend/pkg/config"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

// Policy holds the shipping rule applied to every cart.
type Policy struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// DefaultPolicy is free shipping from Rp 200.000, otherwise Rp 15.000.
func DefaultPolicy() Policy {
	return Policy{FreeShippingThreshold: 200000, FlatShippingFee: 15000}
}

// PolicyFromConfig maps storefront config onto a Policy.
func PolicyFromConfig(cfg config.StorefrontConfig) Policy {
	return Policy{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}
}

// Shipping returns the fee for subtotal. The threshold itself ships free.
func (p Policy) Shipping(subtotal int64) int64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

// Compute totals items under p. Both the local and remote carts use it.
func Compute(items []Item, p Policy) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += item.LineTotal()
		t.ItemCount += item.Quantity
	}
	t.Shipping = p.Shipping(t.Subtotal)
	t.Total = t.Subtotal + t.Shipping - t.Discount
	return t
}

// NormalizeAdd validates an add payload. A zero quantity means one.
func NormalizeAdd(in AddInput) (AddInput, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "ID produk wajib diisi")
	}
	if in.Price < 0 {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "Harga tidak boleh negatif").
			WithDetails(map[string]any{"field": "price"})
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "Jumlah minimal 1").
			WithDetails(map[string]any{"field": "quantity"})
	}
	return in, nil
}

// Merge applies an add to items: an existing line gains quantity and keeps
// its name and price, a new line is appended.
func Merge(items []Item, in AddInput, now time.Time) []Item {
	for idx := range items {
		if items[idx].ProductID == in.ProductID {
			items[idx].Quantity += in.Quantity
			return items
		}
	}
	return append(items, Item{
		ProductID: in.ProductID,
		Name:      in.Name,
		Price:     in.Price,
		Quantity:  in.Quantity,
		AddedAt:   now,
		Extra:     in.Extra,
	})
}

// CloneItems deep-copies items so snapshots never alias live state.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item
		if item.Extra != nil {
			extra := make(map[string]any, len(item.Extra))
			for k, v := range item.Extra {
				extra[k] = v
			}
			out[i].Extra = extra
		}
	}
	return out
}
