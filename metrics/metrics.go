// Package metrics records validator exchanges and their outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespaceWfledger = "wfledger"
	subsystemClient   = "client"
	subsystemDevnet   = "devnet"
)

// Collector observes client exchanges with the validator.
type Collector interface {
	// ExchangeCompleted records one request/response round trip. kind is the
	// request message type name; failed is true when no reply was obtained.
	ExchangeCompleted(kind string, duration time.Duration, failed bool)
	// ResultInterpreted records the outcome of interpreting a reply.
	ResultInterpreted(outcome string)
	// BatchApplied records a batch handled by the development validator.
	BatchApplied(status string)
}

type PrometheusCollector struct {
	exchangeDuration *prometheus.HistogramVec
	exchangeFailures *prometheus.CounterVec
	results          *prometheus.CounterVec
	batches          *prometheus.CounterVec
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers the collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &PrometheusCollector{
		exchangeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceWfledger,
			Subsystem: subsystemClient,
			Name:      "exchange_duration_seconds",
			Help:      "the duration of request/response exchanges with the validator",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5, 10},
		}, []string{"kind"}),
		exchangeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceWfledger,
			Subsystem: subsystemClient,
			Name:      "exchange_failures_total",
			Help:      "the number of exchanges that produced no usable reply",
		}, []string{"kind"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceWfledger,
			Subsystem: subsystemClient,
			Name:      "results_total",
			Help:      "the number of interpreted replies by outcome",
		}, []string{"outcome"}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceWfledger,
			Subsystem: subsystemDevnet,
			Name:      "batches_total",
			Help:      "the number of batches handled by the development validator by status",
		}, []string{"status"}),
	}
}

func (c *PrometheusCollector) ExchangeCompleted(kind string, duration time.Duration, failed bool) {
	c.exchangeDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if failed {
		c.exchangeFailures.WithLabelValues(kind).Inc()
	}
}

func (c *PrometheusCollector) ResultInterpreted(outcome string) {
	c.results.WithLabelValues(outcome).Inc()
}

func (c *PrometheusCollector) BatchApplied(status string) {
	c.batches.WithLabelValues(status).Inc()
}
