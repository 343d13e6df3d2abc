package vldom

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vldom/internal/config"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/reconcile"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config configures the preview App.
type Config struct {
	// Title is the document title of every served page.
	Title string

	// NotFound is mounted for paths no route matches. The response status
	// is still 404. If nil, a plain 404 is returned.
	NotFound *component.Class

	// ParamChange selects how parameter-only changes are reconciled in
	// live sessions.
	ParamChange reconcile.ParamChange

	// RenderTimeout bounds how long a page may take to settle.
	// Default: 10 seconds.
	RenderTimeout time.Duration

	// Live enables the websocket navigation channel at /_vldom/live and
	// injects its client script into served pages.
	Live bool

	// Registry enables reconciliation metrics and serves them at /metrics.
	Registry *prometheus.Registry

	// Namespace is the metrics namespace. Default: "vldom".
	Namespace string

	// Tracer receives reconciliation spans. If nil, the global provider
	// is used.
	Tracer trace.Tracer

	// Static configures static file serving.
	Static StaticConfig

	// DevMode allows websocket connections from any origin and disables
	// static caching.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory to serve. Empty disables static serving.
	Dir string

	// Prefix is the URL prefix. Default: "/static/".
	Prefix string

	// CacheControl selects the caching strategy.
	CacheControl CacheControlStrategy

	// Headers are added to every static response.
	Headers map[string]string
}

// CacheControlStrategy selects static cache headers.
type CacheControlStrategy int

const (
	// CacheControlNone sends no-store headers.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction caches fingerprinted files for a year and
	// everything else for an hour.
	CacheControlProduction
)

// DefaultRenderTimeout is the default RenderTimeout.
const DefaultRenderTimeout = 10 * time.Second

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		RenderTimeout: DefaultRenderTimeout,
		Namespace:     config.DefaultNamespace,
		Static: StaticConfig{
			Prefix:       "/static/",
			CacheControl: CacheControlProduction,
		},
	}
}

// ConfigFrom converts a project configuration into an App Config.
func ConfigFrom(p *config.Config, logger *slog.Logger) Config {
	cfg := DefaultConfig()
	cfg.Title = p.Name
	cfg.Live = p.Dev.Live
	cfg.Logger = logger
	cfg.Static.Dir = p.StaticDir()
	if policy, ok := reconcile.ParseParamChange(p.ParamChange); ok {
		cfg.ParamChange = policy
	}
	if p.Metrics.Enabled {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Namespace = p.Metrics.Namespace
	}
	return cfg
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.RenderTimeout == 0 {
		c.RenderTimeout = d.RenderTimeout
	}
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = d.Static.Prefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DevMode {
		c.Static.CacheControl = CacheControlNone
	}
}
