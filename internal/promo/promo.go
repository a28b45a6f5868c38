// Package promo evaluates promo codes against a fixed table.
package promo

import (
	"strings"

	"github.com/hijabina/hijabina-backend/pkg/enums"
	"github.com/hijabina/hijabina-backend/pkg/format"
	"github.com/shopspring/decimal"
)

// Code is one entry of the promo table.
type Code struct {
	Code        string          `json:"code"`
	Type        enums.PromoType `json:"type"`
	Discount    int64           `json:"discount"`
	MinPurchase int64           `json:"min_purchase"`
}

// Result is the outcome of validating a code against a subtotal.
type Result struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code,omitempty"`
	Type     enums.PromoType `json:"type,omitempty"`
	Discount int64           `json:"discount"`
	Message  string          `json:"message"`
}

const msgInvalidCode = "Kode promo tidak valid"

var table = map[string]Code{
	"HIJAB10":    {Code: "HIJAB10", Type: enums.PromoTypeFixed, Discount: 10000, MinPurchase: 100000},
	"DISCOUNT15": {Code: "DISCOUNT15", Type: enums.PromoTypeFixed, Discount: 15000, MinPurchase: 150000},
	"PROMO20":    {Code: "PROMO20", Type: enums.PromoTypeFixed, Discount: 20000, MinPurchase: 200000},
	"NEWUSER":    {Code: "NEWUSER", Type: enums.PromoTypeFixed, Discount: 25000, MinPurchase: 0},
	"PERCENT10":  {Code: "PERCENT10", Type: enums.PromoTypePercentage, Discount: 10, MinPurchase: 100000},
}

var hundred = decimal.NewFromInt(100)

// Lookup returns the table entry for code, ignoring case and surrounding space.
func Lookup(code string) (Code, bool) {
	entry, ok := table[strings.ToUpper(strings.TrimSpace(code))]
	return entry, ok
}

// Validate checks code against subtotal. Unknown codes fail closed.
func Validate(code string, subtotal int64) Result {
	entry, ok := Lookup(code)
	if !ok {
		return Result{Message: msgInvalidCode}
	}
	if subtotal < entry.MinPurchase {
		return Result{
			Code:    entry.Code,
			Type:    entry.Type,
			Message: "Minimal pembelian " + format.Currency(entry.MinPurchase),
		}
	}
	discount := entry.discountFor(subtotal)
	return Result{
		Valid:    true,
		Code:     entry.Code,
		Type:     entry.Type,
		Discount: discount,
		Message:  "Diskon " + format.Currency(discount) + " diterapkan",
	}
}

func (c Code) discountFor(subtotal int64) int64 {
	switch c.Type {
	case enums.PromoTypePercentage:
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(c.Discount)).
			Div(hundred).
			Floor().
			IntPart()
	default:
		return c.Discount
	}
}
