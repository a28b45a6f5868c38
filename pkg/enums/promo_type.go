package enums

// PromoType is how a promo code's discount value is interpreted.
type PromoType string

const (
	PromoTypeFixed      PromoType = "fixed"
	PromoTypePercentage PromoType = "percentage"
)

// IsValid reports whether the value is a known PromoType.
func (p PromoType) IsValid() bool {
	return p == PromoTypeFixed || p == PromoTypePercentage
}
