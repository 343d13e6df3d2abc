package router

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/reconcile"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/vdom"
)

var (
	// ErrInvalidRoute is wrapped by the error reported when no route
	// matches the current path.
	ErrInvalidRoute = stderrors.New("invalid route")

	// ErrNotHosted is returned when the router is not running.
	ErrNotHosted = stderrors.New("router is not hosted")

	// ErrAlreadyHosted is returned by a second call to Host.
	ErrAlreadyHosted = stderrors.New("router is already hosted")
)

// Location stores the current path.
type Location interface {
	Path() string
	SetPath(path string) error
}

// Notifier is implemented by locations that can change outside the
// router, such as a history with back and forward.
type Notifier interface {
	Watch(fn func())
}

// ErrorHandler receives load, render and routing failures. c is the
// failing component, or nil for routing errors.
type ErrorHandler func(err error, c component.Component)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithErrorHandler replaces the default handler, which logs the error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		r.onError = h
	}
}

// WithRecorder sets the reconciliation metrics recorder.
func WithRecorder(rec reconcile.Recorder) Option {
	return func(r *Router) {
		r.recorder = rec
	}
}

// WithTracer sets the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) {
		r.tracer = t
	}
}

// WithNotFound mounts class for paths no route matches, instead of
// reporting an invalid route.
func WithNotFound(class *component.Class) Option {
	return func(r *Router) {
		r.notFound = class
	}
}

// DefaultShutdownWait bounds how long Host waits, after ctx is done, for
// an in-flight OnLoad to return before it stops.
const DefaultShutdownWait = 5 * time.Second

// WithShutdownWait sets how long Host waits for an in-flight OnLoad when
// it stops. An instance whose load outlives the wait is unloaded when the
// load finally returns.
func WithShutdownWait(d time.Duration) Option {
	return func(r *Router) {
		r.wait = d
	}
}

// WithParamChange selects how parameter-only changes are handled.
func WithParamChange(p reconcile.ParamChange) Option {
	return func(r *Router) {
		r.policy = p
	}
}

// Router drives reconciliation from location changes.
type Router struct {
	tree     *route.Tree
	location Location
	logger   *slog.Logger
	onError  ErrorHandler
	recorder reconcile.Recorder
	tracer   trace.Tracer
	notFound *component.Class
	policy   reconcile.ParamChange
	wait     time.Duration

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	hosted bool
	closed bool

	// Owned by the router goroutine.
	ctx       context.Context
	mount     *vdom.Mount
	render    *reconcile.Render
	committed []*reconcile.Layer
	lastPath  string
	target    string
	ran       bool

	snapMu   sync.RWMutex
	snapshot []*reconcile.Layer
	snapPath string
}

// New creates a router for tree reading and writing loc.
func New(tree *route.Tree, loc Location, opts ...Option) *Router {
	r := &Router{
		tree:     tree,
		location: loc,
		logger:   slog.Default(),
		wait:     DefaultShutdownWait,
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = r.logError
	}
	return r
}

func (r *Router) logError(err error, c component.Component) {
	attrs := []any{"error", err}
	if c != nil {
		attrs = append(attrs, "component", component.BaseOf(c).Class().Name())
	}
	r.logger.Error("route error", attrs...)
}

// Tree returns the route tree.
func (r *Router) Tree() *route.Tree {
	return r.tree
}

// Location returns the router's location.
func (r *Router) Location() Location {
	return r.location
}

// Committed returns the layers committed by the latest reconciliation,
// including the committed prefix of one still in flight.
func (r *Router) Committed() []*reconcile.Layer {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.snapshot
}

// Path returns the target path of the latest reconciliation, which may
// still be in flight. A path no route matches does not change it.
func (r *Router) Path() string {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.snapPath
}

func (r *Router) publish() {
	layers := r.committed
	if r.render != nil {
		layers = r.render.Committed()
	}
	r.snapMu.Lock()
	r.snapshot = layers
	r.snapPath = r.target
	r.snapMu.Unlock()
}
