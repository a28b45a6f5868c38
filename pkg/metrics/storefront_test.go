package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.CartOp(StoreLocal, "add", nil)
	m.CartOp(StoreLocal, "add", nil)
	m.CartOp(StoreRemote, "update_quantity", errors.New("boom"))
	m.Checkout(StoreRemote, time.Now().Add(-200*time.Millisecond), nil)
	m.SubscriptionOpened()
	m.SubscriptionOpened()
	m.SubscriptionClosed()
	m.OutboxPublished("order_created", nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", "store", StoreLocal); err != nil {
		t.Fatalf("fetch cart ops: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 local adds, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "cart_operations_total", "result", ResultError); err != nil {
		t.Fatalf("fetch cart errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 failed op, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "checkout_total", "source", StoreRemote); err != nil {
		t.Fatalf("fetch checkout: %v", err)
	} else if got != 1 {
		t.Fatalf("expected checkout=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "source", StoreRemote); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
	gauge := findMetricFamily(mfs, "cart_subscriptions_active")
	if gauge == nil || gauge.GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("expected one active subscription")
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *StorefrontMetrics
	m.CartOp(StoreLocal, "add", nil)
	m.Checkout("", time.Now(), nil)
	m.SubscriptionOpened()
	m.OutboxPublished("", errors.New("x"))

	unregistered := NewStorefrontMetrics(nil)
	unregistered.CartOp(StoreLocal, "add", nil)
	unregistered.ObserveOutboxBatch(time.Second)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewStorefrontMetrics(reg).CartOp(StoreWishlist, "add", nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `cart_operations_total{op="add",result="ok",store="wishlist"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", rec.Body.String())
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
