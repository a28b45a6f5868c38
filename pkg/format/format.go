// Package format renders amounts, dates and order statuses the way the
// storefront displays them (id-ID, Rupiah, WIB).
package format

import (
	"time"

	"github.com/hijabina/hijabina-backend/pkg/enums"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	currencySymbol = "Rp"
	dateLayout     = "2/1/2006"
	missingDate    = "-"
)

var (
	printer  = message.NewPrinter(language.Indonesian)
	location = loadJakarta()
)

func loadJakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// WIB has no DST
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// Location returns the storefront timezone.
func Location() *time.Location {
	return location
}

// Currency formats a whole-Rupiah amount, e.g. "Rp 150.000" or "-Rp 10.000".
func Currency(amount int64) string {
	if amount < 0 {
		// -amount overflows for MinInt64; format the magnitude via uint64
		return "-" + currencySymbol + " " + printer.Sprintf("%d", uint64(-(amount+1))+1)
	}
	return currencySymbol + " " + printer.Sprintf("%d", amount)
}

// Date formats t as d/m/yyyy in WIB. The zero time renders as "-".
func Date(t time.Time) string {
	if t.IsZero() {
		return missingDate
	}
	return t.In(location).Format(dateLayout)
}

func DatePtr(t *time.Time) string {
	if t == nil {
		return missingDate
	}
	return Date(*t)
}

var statusLabels = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Menunggu",
	enums.OrderStatusProcessing: "Diproses",
	enums.OrderStatusCompleted:  "Selesai",
	enums.OrderStatusCancelled:  "Dibatalkan",
}

// StatusLabel returns the Indonesian label, or the raw value for unknown statuses.
func StatusLabel(status enums.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
