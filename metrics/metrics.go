// Package metrics exposes Prometheus instrumentation for the execution
// graph's scheduler and dispatch paths, adapted from the teacher's
// PrometheusMetrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric the execution graph reports. The zero value
// is not usable; construct with New.
type Collector struct {
	inflightSteps prometheus.Gauge
	queueDepth    prometheus.Gauge

	stepLatency *prometheus.HistogramVec

	retries        *prometheus.CounterVec
	namingConflict *prometheus.CounterVec
	dispatches     *prometheus.CounterVec
}

// New registers every metric against registry (prometheus.DefaultRegisterer
// if nil) and returns a Collector.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Collector{
		inflightSteps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cellgraph",
			Name:      "inflight_steps",
			Help:      "Current number of LongRunning operation bodies executing concurrently",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cellgraph",
			Name:      "exec_queue_depth",
			Help:      "Number of operation ids currently pending in a state's exec queue",
		}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cellgraph",
			Name:      "step_latency_ms",
			Help:      "Step execution duration in milliseconds, from pop to Evaluation",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"status"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellgraph",
			Name:      "retries_total",
			Help:      "Cumulative count of LongRunning operation retry attempts",
		}, []string{"operation"}),
		namingConflict: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellgraph",
			Name:      "naming_collisions_total",
			Help:      "Naming collisions detected while rewiring the dependency graph",
		}, []string{"name"}),
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellgraph",
			Name:      "dispatches_total",
			Help:      "Function dispatch invocations, by outcome",
		}, []string{"outcome"}), // outcome: ok, skipped, unknown_function, error
	}
}

// SetInflightSteps reports the current number of executing LongRunning
// bodies.
func (c *Collector) SetInflightSteps(n int) {
	if c == nil {
		return
	}
	c.inflightSteps.Set(float64(n))
}

// SetQueueDepth reports the current exec queue length.
func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(n))
}

// ObserveStepLatency records how long a Step call took and its outcome
// ("complete", "executing", "error").
func (c *Collector) ObserveStepLatency(d time.Duration, status string) {
	if c == nil {
		return
	}
	c.stepLatency.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}

// IncRetry records one retry attempt of the named operation.
func (c *Collector) IncRetry(operation string) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(operation).Inc()
}

// IncNamingCollision records one naming-collision rejection during a
// dependency-graph rewire.
func (c *Collector) IncNamingCollision(name string) {
	if c == nil {
		return
	}
	c.namingConflict.WithLabelValues(name).Inc()
}

// IncDispatch records one function dispatch, by outcome.
func (c *Collector) IncDispatch(outcome string) {
	if c == nil {
		return
	}
	c.dispatches.WithLabelValues(outcome).Inc()
}
