// Package metrics exposes editor telemetry as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the editor metrics on a private Prometheus registry, so
// several editors (or tests) never collide on the global one.
// It implements engine.Recorder.
type Registry struct {
	registry *prometheus.Registry

	TicksTotal             prometheus.Counter
	ModeTransitionsTotal   *prometheus.CounterVec
	ConnectionsTotal       *prometheus.CounterVec
	OutputInvocationsTotal *prometheus.CounterVec
	NodesGauge             prometheus.Gauge
	SweepDuration          prometheus.Histogram
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.TicksTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "logicflow_ticks_total",
		Help: "Total number of interaction ticks processed",
	})
	r.ModeTransitionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicflow_mode_transitions_total",
			Help: "Interaction mode transitions",
		},
		[]string{"from", "to"},
	)
	r.ConnectionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicflow_connections_total",
			Help: "Connection edits by result",
		},
		[]string{"result"},
	)
	r.OutputInvocationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicflow_output_invocations_total",
			Help: "Output side-effect invocations by cache policy",
		},
		[]string{"policy"},
	)
	r.NodesGauge = f.NewGauge(prometheus.GaugeOpts{
		Name: "logicflow_nodes",
		Help: "Number of live nodes in the graph",
	})
	r.SweepDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "logicflow_sweep_duration_seconds",
		Help:    "Time spent evaluating all outputs in one sweep",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
	})
	return r
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Tick counts one interaction tick.
func (r *Registry) Tick() {
	r.TicksTotal.Inc()
}

// ModeTransition counts a mode change.
func (r *Registry) ModeTransition(from, to string) {
	r.ModeTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Connection counts a connection edit.
func (r *Registry) Connection(result string) {
	r.ConnectionsTotal.WithLabelValues(result).Inc()
}

// OutputInvocations adds n output invocations under policy.
func (r *Registry) OutputInvocations(policy string, n uint64) {
	r.OutputInvocationsTotal.WithLabelValues(policy).Add(float64(n))
}

// Nodes sets the live node gauge.
func (r *Registry) Nodes(n int) {
	r.NodesGauge.Set(float64(n))
}

// Sweep observes one sweep duration.
func (r *Registry) Sweep(d time.Duration) {
	r.SweepDuration.Observe(d.Seconds())
}
