package router

import (
	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/reconcile"
	"github.com/vango-dev/vldom/pkg/routepath"
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool
}

// NavigateOption is a functional option for NavigateWith.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// Replacer is implemented by locations that keep a history.
type Replacer interface {
	ReplacePath(path string) error
}

// Navigate moves to path. Relative paths resolve against relativeTo's
// route, or against the current path when relativeTo is nil.
func (r *Router) Navigate(path string, relativeTo component.Component) error {
	return r.NavigateWith(path, relativeTo)
}

// NavigateWith is Navigate with options.
func (r *Router) NavigateWith(path string, relativeTo component.Component, opts ...NavigateOption) error {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	target, err := r.Resolve(path, relativeTo)
	if err != nil {
		return err
	}

	if rp, ok := r.location.(Replacer); ok && o.Replace {
		err = rp.ReplacePath(target)
	} else {
		err = r.location.SetPath(target)
	}
	if err != nil {
		return err
	}

	r.logger.Debug("navigate", "path", target, "replace", o.Replace)
	r.Update()
	return nil
}

// Resolve returns the canonical absolute path Navigate would move to.
func (r *Router) Resolve(path string, relativeTo component.Component) (string, error) {
	target, _ := routepath.SplitPathAndQuery(path)
	if !routepath.IsAbsolute(target) {
		base := r.location.Path()
		if relativeTo != nil {
			if rt := component.BaseOf(relativeTo).Route(); rt != nil {
				base = rt.FullPath()
			}
		}
		target = routepath.Resolve(base, target)
	}

	res, err := routepath.CanonicalizePath(target)
	if err != nil {
		return "", errors.New("E205").WithDetailf("%q", path).Wrap(err)
	}
	return res.Path, nil
}

// Update reconciles the mount with the current location.
func (r *Router) Update() {
	r.post(r.update)
}

// Refresh re-renders c in place, keeping its child layer.
func (r *Router) Refresh(c component.Component) {
	r.post(func() {
		layers := r.committed
		if r.render != nil {
			layers = r.render.Committed()
		}
		if err := reconcile.Refresh(r.mount, layers, c); err != nil {
			r.onError(err, c)
		}
	})
}

func (r *Router) update() {
	path := r.location.Path()
	if res, err := routepath.CanonicalizePath(path); err == nil {
		path = res.Path
	}
	if r.ran && path == r.lastPath {
		return
	}
	r.ran = true
	r.lastPath = path

	next, err := r.stack(path)
	if err != nil {
		r.onError(err, nil)
		return
	}

	prev := r.committed
	if r.render != nil {
		if r.render.Rendering() {
			prev = r.render.Abort()
			r.logger.Debug("render superseded", "path", path, "kept", len(prev))
		} else {
			prev = r.render.Committed()
		}
	}

	r.target = path
	r.render = reconcile.New(prev, next, r.env())
	r.render.Start(r.ctx)
}

// stack resolves path into a target layer stack.
func (r *Router) stack(path string) ([]*reconcile.Layer, error) {
	node, params, err := r.tree.Resolve(path)
	if err != nil {
		if r.notFound != nil {
			return r.notFoundStack(path)
		}
		return nil, errors.New("E200").
			WithDetailf("no route matches %q", path).
			Wrap(ErrInvalidRoute)
	}
	return reconcile.NewStack(node, params)
}

func (r *Router) notFoundStack(path string) ([]*reconcile.Layer, error) {
	params := component.Params{"path": path}
	rt, err := component.NewRoute("/*", r.notFound, params, nil)
	if err != nil {
		return nil, err
	}
	rt.Path = path
	return []*reconcile.Layer{{
		Class:  r.notFound,
		Params: params,
		Route:  rt,
	}}, nil
}
