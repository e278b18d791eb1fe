// Package metrics exposes prometheus collectors for the economy engine. A nil
// *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wizard"

// Recorder owns a private registry and the engine's collectors.
type Recorder struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	actions      *prometheus.CounterVec
	produced     *prometheus.CounterVec
	conversions  *prometheus.CounterVec
	saves        *prometheus.CounterVec
	offline      prometheus.Histogram
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks processed",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent advancing one tick",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Player actions by name and outcome",
		}, []string{"action", "ok"}),
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "produced_units_total",
			Help:      "Whole units gathered by slotted managers",
		}, []string{"resource", "source"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automatic_conversions_total",
			Help:      "Conversions run by conversion slots",
		}, []string{"building"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Snapshot writes by status",
		}, []string{"status"}),
		offline: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offline_elapsed_seconds",
			Help:      "Credited offline time at session open",
			Buckets:   prometheus.ExponentialBuckets(60, 4, 6),
		}),
	}
	r.registry.MustRegister(r.ticks, r.tickDuration, r.actions, r.produced, r.conversions, r.saves, r.offline)
	return r
}

// Registry returns the underlying registry, or nil.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Tick records one processed tick.
func (r *Recorder) Tick(d time.Duration) {
	if r == nil {
		return
	}
	r.ticks.Inc()
	r.tickDuration.Observe(d.Seconds())
}

// Action records the outcome of a player action.
func (r *Recorder) Action(name string, ok bool) {
	if r == nil {
		return
	}
	label := "false"
	if ok {
		label = "true"
	}
	r.actions.WithLabelValues(name, label).Inc()
}

// Produced records gathered units. source is "tick" or "offline".
func (r *Recorder) Produced(resource, source string, units float64) {
	if r == nil || units <= 0 {
		return
	}
	r.produced.WithLabelValues(resource, source).Add(units)
}

// Converted records automatic conversions at a building.
func (r *Recorder) Converted(building string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.conversions.WithLabelValues(building).Add(float64(n))
}

// Save records a snapshot write.
func (r *Recorder) Save(err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.saves.WithLabelValues(status).Inc()
}

// Offline records credited offline time.
func (r *Recorder) Offline(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.offline.Observe(elapsed.Seconds())
}
