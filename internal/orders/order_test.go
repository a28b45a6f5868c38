package orders

import (
	"testing"
	"time"

	"github.com/hijabina/hijabina-backend/internal/cart"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

func twoItems() []cart.Item {
	return []cart.Item{
		{ProductID: "p1", Name: "Pashmina Sage", Price: 60000, Quantity: 1},
		{ProductID: "p2", Name: "Bergo Navy", Price: 45000, Quantity: 2},
	}
}

func TestBuildComputesTotals(t *testing.T) {
	items := twoItems()
	totals := cart.Compute(items, cart.DefaultPolicy())
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	order, err := Build(items, totals, Draft{ID: "ORD-1", Now: now, Extras: Extras{
		CustomerName: " Aisyah ",
		PromoCode:    "hijab10",
		Meta:         map[string]any{"total": 1, "gift_wrap": true},
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if order.Subtotal != 150000 || order.Shipping != 15000 || order.Discount != 10000 || order.Total != 155000 {
		t.Fatalf("unexpected totals %+v", order)
	}
	if order.Total != order.Subtotal+order.Shipping-order.Discount {
		t.Fatal("total must equal subtotal + shipping - discount")
	}
	if order.Status != enums.OrderStatusPending || !order.CreatedAt.Equal(now) {
		t.Fatalf("unexpected status/createdAt %s %v", order.Status, order.CreatedAt)
	}
	if order.CustomerName != "Aisyah" || order.PromoCode != "HIJAB10" {
		t.Fatalf("unexpected extras %+v", order)
	}
	if _, ok := order.Meta["total"]; ok {
		t.Fatal("meta must not carry reserved money fields")
	}
	if order.Meta["gift_wrap"] != true {
		t.Fatalf("expected free-form meta to survive, got %v", order.Meta)
	}

	items[0].Quantity = 99
	if order.Items[0].Quantity != 1 {
		t.Fatal("order must snapshot items, not alias them")
	}
}

func TestBuildRejectsEmptyCartAndBadPromo(t *testing.T) {
	_, err := Build(nil, cart.Totals{}, Draft{ID: "ORD-1", Now: time.Now()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != cart.MsgEmpty {
		t.Fatalf("expected empty cart validation error, got %v", err)
	}

	items := []cart.Item{{ProductID: "p1", Price: 50000, Quantity: 1}}
	_, err = Build(items, cart.Compute(items, cart.DefaultPolicy()), Draft{ID: "ORD-2", Now: time.Now(), Extras: Extras{PromoCode: "PROMO20"}})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Message() != "Minimal pembelian Rp 200.000" {
		t.Fatalf("expected min purchase error, got %v", err)
	}
}

func TestBuildCapsDiscountAtGross(t *testing.T) {
	items := []cart.Item{{ProductID: "p1", Price: 5000, Quantity: 1}}
	totals := cart.Compute(items, cart.Policy{FreeShippingThreshold: 0, FlatShippingFee: 0})
	order, err := Build(items, totals, Draft{ID: "ORD-3", Now: time.Now(), Extras: Extras{PromoCode: "NEWUSER"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if order.Discount != 5000 || order.Total != 0 {
		t.Fatalf("discount should be capped, got %+v", order)
	}
}

func TestIDGeneratorIsMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	gen := NewIDGenerator(func() time.Time { return fixed }, "")
	a, _ := gen.Next()
	b, _ := gen.Next()
	c, _ := gen.Next()
	if a != "ORD-1700000000000" || b != "ORD-1700000000001" || c != "ORD-1700000000002" {
		t.Fatalf("unexpected ids %s %s %s", a, b, c)
	}
}

func TestIDGeneratorsOnOneClockDoNotCollide(t *testing.T) {
	fixed := time.UnixMilli(1717236000000)
	clock := func() time.Time { return fixed }
	a := NewIDGenerator(clock, "a1b2c3")
	b := NewIDGenerator(clock, "d4e5f6")

	idA, _ := a.Next()
	idB, _ := b.Next()
	if idA == idB {
		t.Fatalf("replicas produced the same id %s", idA)
	}
	if idA != "ORD-1717236000000-a1b2c3" {
		t.Fatalf("unexpected tagged id %s", idA)
	}
}

func TestNewNodeIsShortAndRandom(t *testing.T) {
	first, second := NewNode(), NewNode()
	if len(first) != 6 || len(second) != 6 {
		t.Fatalf("expected 6 char nodes, got %q %q", first, second)
	}
	if first == second {
		t.Fatalf("expected distinct nodes, got %q twice", first)
	}
}
