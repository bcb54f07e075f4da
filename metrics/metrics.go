/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics instruments the pool and orchestrator with Prometheus
// collectors. A nil *Collector is valid everywhere and behaves as a no-op,
// so callers that do not want metrics never need a conditional at the call
// site (§3.4).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles every metric this module exposes.
type Collector struct {
	PoolIdleConnections   *prometheus.GaugeVec
	PoolInUseConnections  *prometheus.GaugeVec
	PoolBorrowWaitSeconds prometheus.Histogram
	OperationTotal        *prometheus.CounterVec
	OperationRetryTotal   *prometheus.CounterVec
	TrackerFailoverTotal  prometheus.Counter
}

// NewCollector builds a Collector and registers it with reg. Passing nil for
// reg skips registration, which is handy in tests that only want the metric
// objects themselves.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		PoolIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fdfs_pool_idle_connections",
			Help: "Idle transports currently held per endpoint.",
		}, []string{"endpoint"}),
		PoolInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fdfs_pool_inuse_connections",
			Help: "Transports currently borrowed per endpoint.",
		}, []string{"endpoint"}),
		PoolBorrowWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fdfs_pool_borrow_wait_seconds",
			Help:    "Time spent waiting for a pool slot to become available.",
			Buckets: prometheus.DefBuckets,
		}),
		OperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fdfs_operation_total",
			Help: "Orchestrator operations by kind and outcome.",
		}, []string{"op", "result"}),
		OperationRetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fdfs_operation_retry_total",
			Help: "Retries issued per operation kind.",
		}, []string{"op"}),
		TrackerFailoverTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fdfs_tracker_failover_total",
			Help: "Times the orchestrator re-queried a tracker to failover to a different replica.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.PoolIdleConnections,
			c.PoolInUseConnections,
			c.PoolBorrowWaitSeconds,
			c.OperationTotal,
			c.OperationRetryTotal,
			c.TrackerFailoverTotal,
		)
	}

	return c
}

// ObserveBorrowWait is a nil-safe helper so call sites never branch on
// whether a Collector was configured.
func (c *Collector) ObserveBorrowWait(seconds float64) {
	if c == nil {
		return
	}
	c.PoolBorrowWaitSeconds.Observe(seconds)
}

// SetPoolGauges is a nil-safe helper updating both pool gauges for endpoint.
func (c *Collector) SetPoolGauges(endpoint string, idle, inUse int) {
	if c == nil {
		return
	}
	c.PoolIdleConnections.WithLabelValues(endpoint).Set(float64(idle))
	c.PoolInUseConnections.WithLabelValues(endpoint).Set(float64(inUse))
}

// IncOperation is a nil-safe helper recording one operation outcome.
func (c *Collector) IncOperation(op, result string) {
	if c == nil {
		return
	}
	c.OperationTotal.WithLabelValues(op, result).Inc()
}

// IncRetry is a nil-safe helper recording one retry attempt for op.
func (c *Collector) IncRetry(op string) {
	if c == nil {
		return
	}
	c.OperationRetryTotal.WithLabelValues(op).Inc()
}

// IncTrackerFailover is a nil-safe helper recording one fetch-class failover.
func (c *Collector) IncTrackerFailover() {
	if c == nil {
		return
	}
	c.TrackerFailoverTotal.Inc()
}
