package reconcile

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// Env is everything a Render needs besides the two stacks.
type Env struct {
	Mount     *vdom.Mount
	Navigator component.Navigator
	Logger    *slog.Logger
	Recorder  Recorder
	Tracer    trace.Tracer

	// OnError receives each load or render failure exactly once.
	OnError func(err error, c component.Component)

	ParamChange ParamChange

	// Schedule runs fn on the goroutine that owns the Render. Every step
	// after a load runs through it. When nil, steps run on the goroutine
	// the load finished on, so the Render must not be touched until Done.
	Schedule func(fn func())
}

func (e *Env) applyDefaults() {
	if e.Mount == nil {
		e.Mount = vdom.NewMount()
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Recorder == nil {
		e.Recorder = NopRecorder{}
	}
	if e.Tracer == nil {
		e.Tracer = defaultTracer()
	}
	if e.Schedule == nil {
		e.Schedule = func(fn func()) { fn() }
	}
}

// Render is one reconciliation from a committed stack to a target stack.
// Apart from Done and Err, its methods must be called on the goroutine
// that owns it.
type Render struct {
	env  Env
	prev []*Layer
	next []*Layer

	cursor    int
	detached  bool
	rendering bool
	started   bool

	ctx    context.Context
	cancel context.CancelFunc
	span   trace.Span
	begin  time.Time

	// loadDone is closed when the latest OnLoad returns.
	loadDone chan struct{}

	done chan struct{}
	err  error
}

// New prepares a Render from prev, the committed stack, to next.
func New(prev, next []*Layer, env Env) *Render {
	env.applyDefaults()
	return &Render{
		env:  env,
		prev: prev,
		next: next,
		done: make(chan struct{}),
	}
}

// Start walks the target stack until the first load suspends the Render
// or the walk ends.
func (r *Render) Start(ctx context.Context) {
	if r.started {
		return
	}
	r.started = true
	r.rendering = true
	r.begin = time.Now()

	attrs := []attribute.KeyValue{attribute.Int("vldom.depth", len(r.next))}
	if n := len(r.next); n > 0 {
		attrs = append(attrs, attribute.String("vldom.path", r.next[n-1].Route.FullPath()))
	}
	ctx, r.span = r.env.Tracer.Start(ctx, "vldom.render", trace.WithAttributes(attrs...))
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.advance()
}

// Abort stops the Render and returns the layers it fully committed, all
// of them above the layer whose load is in flight. Old layers that are no
// longer mounted are unloaded. The in-flight instance is unloaded when
// its load returns.
func (r *Render) Abort() []*Layer {
	if !r.started {
		r.started = true
		close(r.done)
		return r.prev
	}
	if !r.rendering {
		return r.Committed()
	}

	r.rendering = false
	r.cancel()
	r.unloadStale()
	r.end(OutcomeAborted)
	return r.Committed()
}

// Committed returns the layers committed so far. A failed layer is
// committed with its error content.
func (r *Render) Committed() []*Layer {
	return r.next[:r.cursor:r.cursor]
}

// Target returns the stack the Render is walking towards.
func (r *Render) Target() []*Layer {
	return r.next
}

// Pending returns the instance whose load is in flight, if any.
func (r *Render) Pending() component.Component {
	if !r.rendering || r.cursor >= len(r.next) {
		return nil
	}
	return r.next[r.cursor].Instance
}

// LoadDone returns a channel closed when the in-flight load returns, or
// nil when no load is in flight.
func (r *Render) LoadDone() <-chan struct{} {
	if r.Pending() == nil {
		return nil
	}
	return r.loadDone
}

// Rendering reports whether the Render is still in progress.
func (r *Render) Rendering() bool { return r.rendering }

// Detached reports whether some depth has been rebuilt or updated.
func (r *Render) Detached() bool { return r.detached }

// Cursor returns the depth being processed.
func (r *Render) Cursor() int { return r.cursor }

// Done is closed when the Render commits, fails or is aborted.
func (r *Render) Done() <-chan struct{} { return r.done }

// Err returns the coded error of a failed Render after Done is closed.
func (r *Render) Err() error { return r.err }

func (r *Render) finish(err error) {
	r.unloadStale()
	r.rendering = false
	r.err = err
	r.cancel()
	if err != nil {
		r.end(OutcomeFailed)
	} else {
		r.end(OutcomeCommitted)
	}
}

func (r *Render) end(outcome Outcome) {
	r.env.Recorder.Render(outcome, time.Since(r.begin))

	r.span.SetAttributes(
		attribute.String("vldom.outcome", string(outcome)),
		attribute.Int("vldom.committed", r.cursor),
	)
	if r.err != nil {
		r.span.RecordError(r.err)
		r.span.SetStatus(codes.Error, r.err.Error())
	}
	r.span.End()

	r.env.Logger.Debug("render finished",
		"outcome", outcome,
		"committed", r.cursor,
		"depth", len(r.next))
	close(r.done)
}

// unloadStale unloads every previous instance that the committed prefix
// did not carry forward, deepest first.
func (r *Render) unloadStale() {
	kept := make(map[component.Component]bool, r.cursor)
	for _, l := range r.next[:r.cursor] {
		if l.Instance != nil {
			kept[l.Instance] = true
		}
	}
	for i := len(r.prev) - 1; i >= 0; i-- {
		if inst := r.prev[i].Instance; inst != nil && !kept[inst] {
			component.Unload(inst)
		}
	}
}
