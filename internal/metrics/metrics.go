package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Collector struct {
	AttemptsTotal       *prometheus.CounterVec
	OrderAPIDuration    *prometheus.HistogramVec
	OverlaysTotal       *prometheus.CounterVec
	BackendProbeFailing prometheus.Gauge
}

// NewCollector registers the storefront metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never clash.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		AttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by terminal status.",
		}, []string{"status"}),

		OrderAPIDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "order_api",
			Name:      "request_duration_seconds",
			Help:      "Order service call latency by endpoint and result.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint", "result"}),

		OverlaysTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "overlays_total",
			Help:      "Notification overlays presented by kind.",
		}, []string{"kind"}),

		BackendProbeFailing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "backend_probe_failing",
			Help:      "1 while the last order service health probe failed.",
		}),
	}
}

// The helpers below are nil-safe so components can run without metrics.

func (c *Collector) Attempt(status string) {
	if c == nil {
		return
	}
	c.AttemptsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) OrderAPICall(endpoint string, start time.Time, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.OrderAPIDuration.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
}

func (c *Collector) Overlay(kind string) {
	if c == nil {
		return
	}
	c.OverlaysTotal.WithLabelValues(kind).Inc()
}

func (c *Collector) Probe(ok bool) {
	if c == nil {
		return
	}
	if ok {
		c.BackendProbeFailing.Set(0)
		return
	}
	c.BackendProbeFailing.Set(1)
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
