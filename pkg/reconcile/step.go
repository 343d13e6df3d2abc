package reconcile

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/vdom"
)

func (r *Render) advance() {
	for r.rendering && r.cursor < len(r.next) {
		i := r.cursor
		target := r.next[i]

		var existing *Layer
		if i < len(r.prev) {
			existing = r.prev[i]
		}

		action := Decide(existing, target, r.detached, r.env.ParamChange)
		r.env.Recorder.Step(target.Class.Name(), action)
		r.env.Logger.Debug("reconcile step",
			"depth", i,
			"component", target.Class.Name(),
			"path", target.Path(),
			"action", action)

		if action == Rebuild {
			r.rebuild(i, existing, target)
			return
		}
		if err := r.keep(i, existing, target, action == Update); err != nil {
			r.fail(i, err, "E202")
			return
		}
	}
	if r.rendering {
		r.finish(nil)
	}
}

func (r *Render) parentOf(i int) component.Component {
	if i == 0 {
		return nil
	}
	return r.next[i-1].Instance
}

func (r *Render) attach(i int, l *Layer) {
	parent := r.parentOf(i)
	component.Attach(l.Instance, component.Attachment{
		Params:    l.Params,
		Route:     l.Route,
		Parent:    parent,
		Navigator: r.env.Navigator,
	})
	if parent != nil {
		component.SetChild(parent, l.Instance)
	}
}

// keep carries the existing instance into the target layer.
func (r *Render) keep(i int, existing, target *Layer, update bool) error {
	inst := existing.Instance
	target.Instance = inst
	target.Placeholder = existing.Placeholder
	target.Content = existing.Content
	target.slot = existing.slot
	r.attach(i, target)
	r.cursor++

	if update {
		inst.OnChange(target.Params)
		if parent := r.parentOf(i); parent != nil {
			parent.OnChildChange(target.Params, target.Route, inst)
		}
		// Descendants loaded under the old parameters.
		r.detached = true
	}

	// The chain now ends here but the instance still shows a child.
	if i == len(r.next)-1 && target.slot != nil {
		component.SetChild(inst, nil)
		r.unloadStale()
		return rerender(r.env.Mount, r.next, i, nil)
	}
	return nil
}

func (r *Render) rebuild(i int, existing, target *Layer) {
	inst := target.Instance
	if inst == nil {
		inst = target.Class.New()
		target.Instance = inst
		r.attach(i, target)
	}

	if existing != nil && existing.Instance != nil && existing.Instance != inst {
		component.Unload(existing.Instance)
	}

	if target.Placeholder == nil {
		target.Placeholder = safeLoader(inst)
		if i == 0 {
			r.env.Mount.SetRoot(target.Placeholder)
		} else if err := rerender(r.env.Mount, r.next, i-1, target.Placeholder); err != nil {
			discard(target)
			r.fail(i-1, err, "E202")
			return
		}
	}
	target.Content = target.Placeholder
	component.SetNode(inst, target.Placeholder)

	r.load(i, inst)
}

func (r *Render) load(i int, inst component.Component) {
	class := r.next[i].Class.Name()
	ctx, span := r.env.Tracer.Start(r.ctx, "vldom.load", trace.WithAttributes(
		attribute.String("vldom.component", class),
		attribute.Int("vldom.depth", i),
	))
	begin := time.Now()
	done := make(chan struct{})
	r.loadDone = done

	go func() {
		err := safeLoad(ctx, inst)
		close(done)
		d := time.Since(begin)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		r.env.Schedule(func() {
			r.env.Recorder.Load(class, d, err)
			r.loaded(i, inst, err)
		})
	}()
}

func (r *Render) loaded(i int, inst component.Component, err error) {
	if !r.rendering || r.cursor != i || r.next[i].Instance != inst {
		component.Unload(inst)
		return
	}
	if err != nil {
		r.fail(i, err, "E201")
		return
	}

	target := r.next[i]
	var slot *vdom.VNode
	if i+1 < len(r.next) {
		child := r.next[i+1]
		child.Instance = child.Class.New()
		r.attach(i+1, child)
		child.Placeholder = safeLoader(child.Instance)
		slot = child.Placeholder
	}

	node, rerr := safeRender(inst, slot)
	if rerr != nil {
		if slot != nil {
			discard(r.next[i+1])
			component.SetChild(inst, nil)
		}
		r.fail(i, rerr, "E202")
		return
	}

	r.env.Mount.Replace(target.Content, node)
	target.Content = node
	target.slot = slot
	component.SetNode(inst, node)

	if parent := r.parentOf(i); parent != nil {
		parent.OnChildChange(target.Params, target.Route, inst)
	}

	r.detached = true
	r.cursor++
	r.advance()
}

// fail shows the error content of layer i and ends the Render there.
func (r *Render) fail(i int, cause error, code string) {
	l := r.next[i]
	inst := l.Instance
	err := errors.New(code).
		WithDetailf("%s at %s", l.Class.Name(), l.Route.FullPath()).
		Wrap(cause)

	if p, ok := cause.(*PanicError); ok {
		r.env.Logger.Error("component panic",
			"component", l.Class.Name(),
			"panic", p.Value,
			"stack", string(p.Stack))
	}

	inst.OnError(cause)
	if r.env.OnError != nil {
		r.env.OnError(err, inst)
	}

	node := safeRenderError(inst, cause)
	r.env.Mount.Replace(l.Content, node)
	l.Content = node
	l.slot = nil
	l.failed = true
	component.SetChild(inst, nil)
	component.SetNode(inst, node)

	r.cursor = i + 1
	r.finish(err)
}

// discard drops an instance that was created but never loaded.
func discard(l *Layer) {
	if l.Instance != nil {
		component.BaseOf(l.Instance).ClearTimers()
	}
	l.Instance = nil
	l.Placeholder = nil
}
