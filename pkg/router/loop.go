package router

import (
	"context"
	"time"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/reconcile"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// post queues fn for the router goroutine. It reports false once the
// router has shut down.
func (r *Router) post(fn func()) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.queue = append(r.queue, fn)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return true
}

func (r *Router) take() []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := r.queue
	r.queue = nil
	return tasks
}

// Host mounts the route matching the current location on mount and runs
// the router until ctx is done. Every instance still mounted is unloaded
// before Host returns.
func (r *Router) Host(ctx context.Context, mount *vdom.Mount) error {
	r.mu.Lock()
	if r.hosted {
		r.mu.Unlock()
		return ErrAlreadyHosted
	}
	r.hosted = true
	r.mu.Unlock()

	r.mount = mount
	r.ctx = ctx
	if n, ok := r.location.(Notifier); ok {
		n.Watch(r.Update)
	}

	r.logger.Debug("router hosted", "path", r.location.Path(), "routes", r.tree.Len())
	r.update()
	r.sync()

	for {
		for _, task := range r.take() {
			task()
			r.sync()
		}
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case <-r.wake:
		}
	}
}

// sync folds a finished render into the committed stack.
func (r *Router) sync() {
	if r.render != nil && !r.render.Rendering() {
		r.committed = r.render.Committed()
		r.render = nil
	}
	r.publish()
}

func (r *Router) shutdown() {
	r.mu.Lock()
	r.closed = true
	r.queue = nil
	r.mu.Unlock()

	layers := r.committed
	if r.render != nil {
		pending, loading := r.render.Pending(), r.render.LoadDone()
		layers = r.render.Abort()
		if pending != nil {
			r.unloadAfterLoad(pending, loading)
		}
		r.render = nil
	}
	for i := len(layers) - 1; i >= 0; i-- {
		if inst := layers[i].Instance; inst != nil {
			component.Unload(inst)
		}
	}
	r.committed = nil
	r.publish()
	r.logger.Debug("router stopped")
}

// unloadAfterLoad unloads c once its OnLoad has returned. Abort cancelled
// the load's context; a load that ignores it past the shutdown wait is
// unloaded in the background when it returns.
func (r *Router) unloadAfterLoad(c component.Component, loading <-chan struct{}) {
	if loading == nil {
		component.Unload(c)
		return
	}
	timer := time.NewTimer(r.wait)
	defer timer.Stop()
	select {
	case <-loading:
		component.Unload(c)
	case <-timer.C:
		r.logger.Warn("load still running at shutdown",
			"component", component.BaseOf(c).Class().Name(),
			"wait", r.wait)
		go func() {
			<-loading
			component.Unload(c)
		}()
	}
}

// Settle blocks until no reconciliation is in flight and every queued
// navigation has been processed.
func (r *Router) Settle(ctx context.Context) error {
	for {
		current := make(chan *reconcile.Render, 1)
		if !r.post(func() { current <- r.render }) {
			return ErrNotHosted
		}

		var render *reconcile.Render
		select {
		case render = <-current:
		case <-ctx.Done():
			return ctx.Err()
		}
		if render == nil {
			return nil
		}

		select {
		case <-render.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Router) env() reconcile.Env {
	return reconcile.Env{
		Mount:       r.mount,
		Navigator:   r,
		Logger:      r.logger,
		Recorder:    r.recorder,
		Tracer:      r.tracer,
		OnError:     r.onError,
		ParamChange: r.policy,
		Schedule:    func(fn func()) { r.post(fn) },
	}
}
