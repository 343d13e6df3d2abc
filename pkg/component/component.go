package component

import (
	"context"
	"maps"

	"github.com/vango-dev/vldom/pkg/vdom"
)

// Params holds the parameter values extracted for one route segment.
type Params map[string]string

// Clone returns a copy of p. The copy of a nil Params is an empty Params.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Equal reports whether p and other hold the same values.
func (p Params) Equal(other Params) bool {
	return maps.Equal(p, other)
}

// Component is a route-bound unit of UI. Implementations embed Base, which
// supplies every method, and override the hooks they need.
type Component interface {
	// OnLoad prepares the component before its first render. It may block;
	// ctx is cancelled when a newer navigation supersedes the render.
	OnLoad(ctx context.Context) error

	// OnUnload tears the component down when it leaves the mounted chain.
	OnUnload()

	// OnError is told about a load or render failure of this component.
	OnError(err error)

	// OnChange is called when the component is kept but its route
	// parameters changed.
	OnChange(params Params)

	// OnChildChange is called when the layer below this one was built or
	// updated.
	OnChildChange(params Params, route *Route, child Component)

	// Render returns the component's content. child is the placeholder the
	// next layer will be rendered into, or nil for the deepest layer.
	Render(child *vdom.VNode) *vdom.VNode

	// RenderLoader returns the content shown while OnLoad runs.
	RenderLoader() *vdom.VNode

	// RenderError returns the content shown in place of the component
	// after a failure.
	RenderError(err error) *vdom.VNode

	base() *Base
}

// Navigator is the navigation surface handed to components when they are
// attached to a layer.
type Navigator interface {
	// Navigate moves to path. Relative paths resolve against relativeTo's
	// route, or the current path when relativeTo is nil.
	Navigate(path string, relativeTo Component) error

	// Refresh re-renders c in place, keeping its child layer.
	Refresh(c Component)
}

// Class is a named component constructor. Route tables bind paths to
// classes and the reconciler compares classes by pointer.
type Class struct {
	name    string
	factory func() Component
}

// Define creates a component class. factory must return a new instance on
// every call.
func Define(name string, factory func() Component) *Class {
	if factory == nil {
		panic("component: Define called with nil factory for " + name)
	}
	return &Class{name: name, factory: factory}
}

// Name returns the class name.
func (c *Class) Name() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}

// New creates an instance of the class.
func (c *Class) New() Component {
	inst := c.factory()
	if inst == nil {
		panic("component: factory for " + c.name + " returned nil")
	}
	b := inst.base()
	b.mu.Lock()
	b.class = c
	b.self = inst
	b.mu.Unlock()
	return inst
}

func (c *Class) String() string {
	return c.Name()
}
