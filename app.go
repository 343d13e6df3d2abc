package vldom

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/metrics"
	"github.com/vango-dev/vldom/pkg/prerender"
	"github.com/vango-dev/vldom/pkg/reconcile"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/routepath"
	"github.com/vango-dev/vldom/pkg/router"
)

// LivePath is the websocket endpoint of live sessions.
const LivePath = "/_vldom/live"

// =============================================================================
// App Type
// =============================================================================

// App serves a route tree over HTTP: every GET renders the requested path
// to completion, and live sessions keep a router per websocket.
//
//	app := vldom.New(tree, vldom.Config{Live: true})
//	http.ListenAndServe(":3000", app)
type App struct {
	tree     *route.Tree
	config   Config
	recorder reconcile.Recorder
	mux      chi.Router
	live     *liveHub
	staticFS http.FileSystem
}

// New creates an App for tree.
func New(tree *route.Tree, cfg Config) *App {
	cfg.applyDefaults()

	a := &App{
		tree:   tree,
		config: cfg,
	}
	if cfg.Registry != nil {
		a.recorder = metrics.New(
			metrics.WithRegistry(cfg.Registry),
			metrics.WithNamespace(cfg.Namespace),
		)
	}
	if cfg.Static.Dir != "" {
		a.staticFS = http.Dir(cfg.Static.Dir)
	}
	if cfg.Live {
		a.live = newLiveHub(a)
	}
	a.mux = a.routes()
	return a
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)
	r.Use(a.traceRequests)

	if a.config.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.config.Registry, promhttp.HandlerOpts{}))
	}
	if a.live != nil {
		r.Get(LivePath, a.live.ServeHTTP)
	}
	if a.staticFS != nil {
		r.Get(a.config.Static.Prefix+"*", a.serveStatic)
		r.Head(a.config.Static.Prefix+"*", a.serveStatic)
	}
	r.Get("/*", a.servePage)
	r.Head("/*", a.servePage)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Tree returns the route tree.
func (a *App) Tree() *route.Tree {
	return a.tree
}

// Config returns the applied configuration.
func (a *App) Config() Config {
	return a.config
}

// LiveSessions returns the number of open live sessions.
func (a *App) LiveSessions() int {
	if a.live == nil {
		return 0
	}
	return a.live.count()
}

// Close ends every live session.
func (a *App) Close() {
	if a.live != nil {
		a.live.close()
	}
}

func (a *App) renderOptions() []prerender.Option {
	opts := []prerender.Option{
		prerender.WithLogger(a.config.Logger),
		prerender.WithParamChange(a.config.ParamChange),
		prerender.WithTimeout(a.config.RenderTimeout),
		prerender.WithTitle(a.config.Title),
	}
	if a.recorder != nil {
		opts = append(opts, prerender.WithRecorder(a.recorder))
	}
	if a.config.Tracer != nil {
		opts = append(opts, prerender.WithTracer(a.config.Tracer))
	}
	if a.config.NotFound != nil {
		opts = append(opts, prerender.WithNotFound(a.config.NotFound))
	}
	if a.live != nil {
		opts = append(opts, prerender.WithLiveScript(liveScript))
	}
	return opts
}

// =============================================================================
// Page Rendering
// =============================================================================

func (a *App) servePage(w http.ResponseWriter, r *http.Request) {
	res, err := routepath.CanonicalizePath(r.URL.Path)
	if err != nil {
		a.writeError(w, r, errors.New("E205").WithDetailf("%q", r.URL.Path).Wrap(err))
		return
	}
	if res.Changed {
		target := res.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	status := http.StatusOK
	if _, _, err := a.tree.Resolve(res.Path); err != nil {
		if a.config.NotFound == nil {
			a.writeError(w, r, errors.New("E200").
				WithDetailf("no route matches %q", res.Path).
				Wrap(router.ErrInvalidRoute))
			return
		}
		status = http.StatusNotFound
	}

	page, err := prerender.Render(r.Context(), a.tree, res.Path, a.renderOptions()...)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if len(page.Errors) > 0 {
		w.Header().Set("X-Vldom-Errors", strconv.Itoa(len(page.Errors)))
	}
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write([]byte(page.Document))
	}
}

// writeError maps coded errors onto HTTP statuses.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.HasCode(err, "E200"):
		status = http.StatusNotFound
	case errors.HasCode(err, "E205"):
		status = http.StatusBadRequest
	case errors.HasCode(err, "E151"), stderrors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		a.config.Logger.Error("page failed", "path", r.URL.Path, "error", err)
	}
	msg := http.StatusText(status)
	var ve *errors.Error
	if stderrors.As(err, &ve) {
		msg = ve.FormatCompact()
	}
	http.Error(w, msg, status)
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.config.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
