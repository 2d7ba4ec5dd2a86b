package health

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ protocol.Observer = (*Metrics)(nil)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("http", http.MethodGet, 200, 15*time.Millisecond, nil)
	m.ObserveRequest("http", http.MethodGet, 200, 25*time.Millisecond, nil)
	m.ObserveRequest("resty", http.MethodGet, 404, time.Millisecond,
		&protocol.HTTPStatusError{StatusCode: 404, Body: "Not Found"})
	m.ObserveRequest("resty", http.MethodGet, 0, time.Second,
		&protocol.TransportError{Method: http.MethodGet, URL: "http://x", Err: errors.New("refused")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("http", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("resty", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("resty", "GET", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestErrors.WithLabelValues("resty", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestErrors.WithLabelValues("resty", "transport")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestWriteText(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("http", http.MethodGet, 200, 10*time.Millisecond, nil)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE binance_trader_requests_total counter")
	assert.Contains(t, out, `binance_trader_requests_total{backend="http",method="GET",status="200"} 1`)
	assert.Contains(t, out, "binance_trader_request_duration_seconds_count")
}

func TestMetricsAreIsolated(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveRequest("http", http.MethodGet, 200, time.Millisecond, nil)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestsTotal.WithLabelValues("http", "GET", "200")))
}

func TestDurationHistogram(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("http", http.MethodGet, 200, 3*time.Millisecond, nil)
	m.ObserveRequest("http", http.MethodGet, 200, 5*time.Millisecond, nil)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "binance_trader_request_duration_seconds" {
			require.Len(t, mf.GetMetric(), 1)
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 0.008, hist.GetSampleSum(), 1e-9)
}
