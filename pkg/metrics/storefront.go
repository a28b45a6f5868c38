package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store labels for cart operations.
const (
	StoreLocal    = "local"
	StoreRemote   = "remote"
	StoreWishlist = "wishlist"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// StorefrontMetrics records cart, checkout and outbox activity. A nil value is a no-op.
type StorefrontMetrics struct {
	cartOps        *prometheus.CounterVec
	checkouts      *prometheus.CounterVec
	checkoutTime   *prometheus.HistogramVec
	subscriptions  prometheus.Gauge
	outboxPublish  *prometheus.CounterVec
	outboxDuration prometheus.Histogram
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart and wishlist mutations by store, operation and result.",
		}, []string{"store", "op", "result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkout attempts by cart source and result.",
		}, []string{"source", "result"}),
		checkoutTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout attempts in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_subscriptions_active",
			Help: "Open remote cart snapshot subscriptions.",
		}),
		outboxPublish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_publish_total",
			Help: "Outbox events handed to Pub/Sub by result.",
		}, []string{"event", "result"}),
		outboxDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_batch_duration_seconds",
			Help:    "Duration of one outbox publish batch in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.cartOps, m.checkouts, m.checkoutTime, m.subscriptions, m.outboxPublish, m.outboxDuration)
	return m
}

// CartOp counts one cart mutation.
func (m *StorefrontMetrics) CartOp(store, op string, err error) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(store), normalizeLabel(op), resultLabel(err)).Inc()
}

// Checkout records one checkout attempt and its duration.
func (m *StorefrontMetrics) Checkout(source string, started time.Time, err error) {
	if m == nil || m.checkouts == nil {
		return
	}
	source = normalizeLabel(source)
	m.checkouts.WithLabelValues(source, resultLabel(err)).Inc()
	m.checkoutTime.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// SubscriptionOpened increments the active subscription gauge.
func (m *StorefrontMetrics) SubscriptionOpened() {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.Inc()
}

// SubscriptionClosed decrements the active subscription gauge.
func (m *StorefrontMetrics) SubscriptionClosed() {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.Dec()
}

// OutboxPublished counts one publish attempt for an outbox event.
func (m *StorefrontMetrics) OutboxPublished(event string, err error) {
	if m == nil || m.outboxPublish == nil {
		return
	}
	m.outboxPublish.WithLabelValues(normalizeLabel(event), resultLabel(err)).Inc()
}

// ObserveOutboxBatch records the duration of one publisher batch.
func (m *StorefrontMetrics) ObserveOutboxBatch(duration time.Duration) {
	if m == nil || m.outboxDuration == nil {
		return
	}
	m.outboxDuration.Observe(duration.Seconds())
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
