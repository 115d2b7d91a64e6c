package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.ExchangeCompleted("CLIENT_BATCH_SUBMIT_REQUEST", 20*time.Millisecond, false)
	c.ExchangeCompleted("CLIENT_BATCH_SUBMIT_REQUEST", time.Second, true)
	c.ResultInterpreted("submitted")
	c.ResultInterpreted("submitted")
	c.BatchApplied("OK")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.exchangeFailures.WithLabelValues("CLIENT_BATCH_SUBMIT_REQUEST")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.results.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batches.WithLabelValues("OK")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.exchangeDuration))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusCollector(reg)
	assert.Panics(t, func() { NewPrometheusCollector(reg) })
}

func TestNoopCollector(t *testing.T) {
	var c Collector = NewNoopCollector()
	c.ExchangeCompleted("x", time.Second, true)
	c.ResultInterpreted("x")
	c.BatchApplied("x")
}
