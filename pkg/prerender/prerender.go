// Package prerender renders one path of a route tree to completion and
// serializes the result, for the preview server and static export.
package prerender

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/location"
	"github.com/vango-dev/vldom/pkg/reconcile"
	"github.com/vango-dev/vldom/pkg/render"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/router"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// DefaultTimeout bounds how long a page may take to settle.
const DefaultTimeout = 10 * time.Second

// Page is a settled render.
type Page struct {
	// Path is the canonical path that was rendered.
	Path string

	// Body is the mount root as HTML.
	Body string

	// Document is Body wrapped in a complete HTML document.
	Document string

	// Components are the committed class names, root first.
	Components []string

	// Errors are the load and render failures reported while settling.
	Errors []error
}

type options struct {
	logger     *slog.Logger
	recorder   reconcile.Recorder
	tracer     trace.Tracer
	notFound   *component.Class
	policy     reconcile.ParamChange
	timeout    time.Duration
	title      string
	liveScript string
	renderer   *render.Renderer
}

// Option configures Render.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r reconcile.Recorder) Option { return func(o *options) { o.recorder = r } }

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option { return func(o *options) { o.tracer = t } }

// WithNotFound renders class for paths no route matches.
func WithNotFound(c *component.Class) Option { return func(o *options) { o.notFound = c } }

// WithParamChange sets the parameter change policy.
func WithParamChange(p reconcile.ParamChange) Option { return func(o *options) { o.policy = p } }

// WithTimeout bounds how long the page may take to settle.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithTitle sets the document title.
func WithTitle(title string) Option { return func(o *options) { o.title = title } }

// WithLiveScript appends script to the document body.
func WithLiveScript(script string) Option { return func(o *options) { o.liveScript = script } }

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r *render.Renderer) Option { return func(o *options) { o.renderer = r } }

// Render mounts path, waits for every load hook to finish and returns
// the resulting HTML. A path no route matches fails with an error
// wrapping router.ErrInvalidRoute unless WithNotFound is set.
func Render(ctx context.Context, tree *route.Tree, path string, opts ...Option) (*Page, error) {
	o := options{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		o.renderer = render.NewRenderer(render.RendererConfig{OmitMarkers: true})
	}

	var (
		mu      sync.Mutex
		reports []error
	)
	ropts := []router.Option{
		router.WithLogger(o.logger),
		router.WithParamChange(o.policy),
		router.WithErrorHandler(func(err error, c component.Component) {
			mu.Lock()
			reports = append(reports, err)
			mu.Unlock()
		}),
	}
	if o.recorder != nil {
		ropts = append(ropts, router.WithRecorder(o.recorder))
	}
	if o.tracer != nil {
		ropts = append(ropts, router.WithTracer(o.tracer))
	}
	if o.notFound != nil {
		ropts = append(ropts, router.WithNotFound(o.notFound))
	}
	r := router.New(tree, location.NewMemory(path), ropts...)

	target, err := r.Resolve(path, nil)
	if err != nil {
		return nil, err
	}
	if o.notFound == nil {
		if _, _, err := tree.Resolve(target); err != nil {
			return nil, errors.New("E200").
				WithDetailf("no route matches %q", target).
				Wrap(router.ErrInvalidRoute)
		}
	}
	if err := r.Location().SetPath(target); err != nil {
		return nil, err
	}

	hostCtx, stop := context.WithCancel(ctx)
	defer stop()
	mount := vdom.NewMount()
	hosted := make(chan error, 1)
	go func() { hosted <- r.Host(hostCtx, mount) }()
	defer func() {
		stop()
		<-hosted
	}()

	settleCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if err := r.Settle(settleCtx); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("E151").
				WithDetailf("%s did not settle within %s", target, o.timeout).
				Wrap(err)
		}
		return nil, err
	}

	page := &Page{Path: target}
	for _, l := range r.Committed() {
		page.Components = append(page.Components, l.Class.Name())
	}
	mu.Lock()
	page.Errors = append(page.Errors, reports...)
	mu.Unlock()

	var renderErr error
	mount.Read(func(root *vdom.VNode) {
		if page.Body, renderErr = o.renderer.RenderToString(root); renderErr != nil {
			return
		}
		var buf bytes.Buffer
		renderErr = o.renderer.RenderPage(&buf, render.PageData{
			Body:       root,
			Title:      o.title,
			Path:       target,
			LiveScript: o.liveScript,
		})
		page.Document = buf.String()
	})
	if renderErr != nil {
		return nil, renderErr
	}

	o.logger.Debug("prerendered",
		"path", target,
		"components", len(page.Components),
		"errors", len(page.Errors))
	return page, nil
}
