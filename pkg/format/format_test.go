package format

import (
	"math"
	"testing"
	"time"

	"github.com/hijabina/hijabina-backend/pkg/enums"
)

func TestCurrency(t *testing.T) {
	tests := map[int64]string{
		0:       "Rp 0",
		500:     "Rp 500",
		15000:   "Rp 15.000",
		150000:  "Rp 150.000",
		1250000: "Rp 1.250.000",
		-10000:  "-Rp 10.000",
	}
	for amount, want := range tests {
		if got := Currency(amount); got != want {
			t.Fatalf("Currency(%d) = %q, want %q", amount, got, want)
		}
	}
	if got := Currency(math.MinInt64); got[:4] != "-Rp " {
		t.Fatalf("unexpected min int rendering %q", got)
	}
}

func TestDateUsesJakartaTime(t *testing.T) {
	// 18:30 UTC on 31 Jan is already 1 Feb in WIB
	ts := time.Date(2024, time.January, 31, 18, 30, 0, 0, time.UTC)
	if got := Date(ts); got != "1/2/2024" {
		t.Fatalf("unexpected date %q", got)
	}
	if got := Date(time.Time{}); got != "-" {
		t.Fatalf("zero time should render '-', got %q", got)
	}
	if got := DatePtr(nil); got != "-" {
		t.Fatalf("nil time should render '-', got %q", got)
	}
	if got := DatePtr(&ts); got != "1/2/2024" {
		t.Fatalf("unexpected pointer date %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(enums.OrderStatusProcessing); got != "Diproses" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := StatusLabel(enums.OrderStatusCancelled); got != "Dibatalkan" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := StatusLabel("shipped"); got != "shipped" {
		t.Fatalf("unknown status should pass through, got %q", got)
	}
}
