// Package health collects request metrics for a single CLI run.
package health

import (
	"io"
	"strconv"
	"time"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the Prometheus metrics for binance-trader requests.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "binance_trader",
				Name:      "requests_total",
				Help:      "Total number of requests by backend, method and status",
			},
			[]string{"backend", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "binance_trader",
				Name:      "request_duration_seconds",
				Help:      "Request latency histogram",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"backend", "method"},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "binance_trader",
				Name:      "request_errors_total",
				Help:      "Failed requests by backend and error kind",
			},
			[]string{"backend", "kind"},
		),
	}
}

// ObserveRequest records a completed request. A zero status means no
// response was received.
func (m *Metrics) ObserveRequest(backend, method string, status int, d time.Duration, err error) {
	code := "none"
	if status != 0 {
		code = strconv.Itoa(status)
	}

	m.RequestsTotal.WithLabelValues(backend, method, code).Inc()
	m.RequestDuration.WithLabelValues(backend, method).Observe(d.Seconds())

	if kind := protocol.ErrorKind(err); kind != "" {
		m.RequestErrors.WithLabelValues(backend, kind).Inc()
	}
}

// WriteText writes every gathered metric family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
