package inertia

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Response kinds, used as the "kind" label of inertia_renders_total.
const (
	kindHTML    = "html"
	kindJSON    = "json"
	kindPartial = "partial"
)

// MetricsConfig configures the Prometheus collectors registered by WithMetrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "inertia").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "inertia",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the collectors. A nil *metrics records nothing.
type metrics struct {
	rendersTotal     *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	versionConflicts prometheus.Counter
	deferredProps    prometheus.Counter
}

func newMetrics(config MetricsConfig) *metrics {
	if config.Registry == nil {
		return nil
	}
	factory := promauto.With(config.Registry)

	return &metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "renders_total",
			Help:        "Total number of pages rendered by component and response kind",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "kind"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "render_duration_seconds",
			Help:        "Page render duration in seconds, prop resolution included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		versionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "version_conflicts_total",
			Help:        "Total number of requests answered with 409 for a stale asset version",
			ConstLabels: config.ConstLabels,
		}),

		deferredProps: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "deferred_props_total",
			Help:        "Total number of deferred prop groups advertised on first loads",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *metrics) observeRender(component, kind string, deferredGroups int, d time.Duration) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(component, kind).Inc()
	m.renderDuration.WithLabelValues(component).Observe(d.Seconds())
	if deferredGroups > 0 {
		m.deferredProps.Add(float64(deferredGroups))
	}
}

func (m *metrics) versionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}
