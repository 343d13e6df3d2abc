// Package metrics records reconciliation activity as Prometheus metrics.
//
// Metrics collected:
//   - vldom_renders_total: Counter of reconciliations by outcome
//   - vldom_render_duration_seconds: Histogram of reconciliation duration by outcome
//   - vldom_steps_total: Counter of per-layer decisions by component and action
//   - vldom_loads_total: Counter of load hooks by component and status
//   - vldom_load_duration_seconds: Histogram of load hook duration by component
//
// Example:
//
//	rec := metrics.New(metrics.WithRegistry(reg))
//	r := router.New(tree, loc, router.WithRecorder(rec))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vldom/pkg/reconcile"
)

// Config configures the recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "vldom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vldom",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder implements reconcile.Recorder.
type Recorder struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	steps          *prometheus.CounterVec
	loads          *prometheus.CounterVec
	loadDuration   *prometheus.HistogramVec
}

var _ reconcile.Recorder = (*Recorder)(nil)

// New registers the metrics and returns a recorder. Registering twice
// against the same registry panics.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of reconciliations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Reconciliation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "steps_total",
			Help:        "Total number of layer decisions by component and action",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "action"}),

		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loads_total",
			Help:        "Total number of load hooks by component and status",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_duration_seconds",
			Help:        "Load hook duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),
	}
}

// Render records the end of a reconciliation.
func (r *Recorder) Render(outcome reconcile.Outcome, d time.Duration) {
	r.renders.WithLabelValues(string(outcome)).Inc()
	r.renderDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

// Step records one layer decision.
func (r *Recorder) Step(class string, action reconcile.Action) {
	r.steps.WithLabelValues(class, action.String()).Inc()
}

// Load records a finished load hook.
func (r *Recorder) Load(class string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.loads.WithLabelValues(class, status).Inc()
	r.loadDuration.WithLabelValues(class).Observe(d.Seconds())
}
