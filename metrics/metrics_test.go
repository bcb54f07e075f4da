package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/metrics"
)

func TestNilCollectorMethodsAreNoOps(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.ObserveBorrowWait(0.1)
		c.SetPoolGauges("127.0.0.1:23000", 1, 2)
		c.IncOperation("upload", "ok")
		c.IncRetry("upload")
		c.IncTrackerFailover()
	})
}

func TestCollectorRecordsOperationOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.IncOperation("download", "ok")
	c.IncOperation("download", "ok")
	c.IncOperation("download", "error")

	m := &dto.Metric{}
	require.NoError(t, c.OperationTotal.WithLabelValues("download", "ok").Write(m))
	assert.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestCollectorPoolGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.SetPoolGauges("10.0.0.1:23000", 3, 5)

	m := &dto.Metric{}
	require.NoError(t, c.PoolIdleConnections.WithLabelValues("10.0.0.1:23000").Write(m))
	assert.Equal(t, float64(3), m.GetGauge().GetValue())
}
