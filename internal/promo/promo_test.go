package promo

import (
	"testing"

	"github.com/hijabina/hijabina-backend/pkg/enums"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		subtotal int64
		valid    bool
		discount int64
		message  string
	}{
		{"fixed lower case", "hijab10", 150000, true, 10000, "Diskon Rp 10.000 diterapkan"},
		{"whitespace trimmed", "  Discount15 ", 150000, true, 15000, "Diskon Rp 15.000 diterapkan"},
		{"percentage at minimum", "PERCENT10", 100000, true, 10000, "Diskon Rp 10.000 diterapkan"},
		{"percentage floors", "PERCENT10", 123459, true, 12345, "Diskon Rp 12.345 diterapkan"},
		{"below minimum", "PERCENT10", 99999, false, 0, "Minimal pembelian Rp 100.000"},
		{"no minimum", "NEWUSER", 0, true, 25000, "Diskon Rp 25.000 diterapkan"},
		{"unknown", "FREESHIP", 500000, false, 0, "Kode promo tidak valid"},
		{"empty", "", 500000, false, 0, "Kode promo tidak valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.code, tt.subtotal)
			if got.Valid != tt.valid || got.Discount != tt.discount || got.Message != tt.message {
				t.Fatalf("unexpected result %+v", got)
			}
		})
	}
}

func TestLookupNormalizesCode(t *testing.T) {
	entry, ok := Lookup("promo20")
	if !ok || entry.Code != "PROMO20" || entry.Type != enums.PromoTypeFixed {
		t.Fatalf("unexpected lookup %+v %v", entry, ok)
	}
}
