package component

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// Base carries the state the reconciler assigns to every instance and the
// default implementation of each lifecycle hook. Embed it by value.
type Base struct {
	mu       sync.RWMutex
	class    *Class
	self     Component
	params   Params
	route    *Route
	parent   Component
	child    Component
	node     *vdom.VNode
	nav      Navigator
	timers   timerSet
	unloaded atomic.Bool
}

func (b *Base) base() *Base { return b }

// BaseOf returns the Base embedded in c.
func BaseOf(c Component) *Base {
	if c == nil {
		return nil
	}
	return c.base()
}

// OnLoad does nothing.
func (b *Base) OnLoad(ctx context.Context) error { return nil }

// OnUnload does nothing.
func (b *Base) OnUnload() {}

// OnError does nothing.
func (b *Base) OnError(err error) {}

// OnChange does nothing.
func (b *Base) OnChange(params Params) {}

// OnChildChange does nothing.
func (b *Base) OnChildChange(params Params, route *Route, child Component) {}

// Render shows the class name followed by the child placeholder.
func (b *Base) Render(child *vdom.VNode) *vdom.VNode {
	return vdom.Fragment(vdom.Text(b.Class().Name()), child)
}

// RenderLoader returns an empty marker.
func (b *Base) RenderLoader() *vdom.VNode {
	return vdom.Marker(b.Class().Name())
}

// RenderError shows the error message.
func (b *Base) RenderError(err error) *vdom.VNode {
	return vdom.Div(vdom.Class("vldom-error"), vdom.Role("alert"), vdom.Text(err.Error()))
}

// Class returns the class the instance was created from.
func (b *Base) Class() *Class {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.class
}

// Params returns the parameters of the instance's route segment.
func (b *Base) Params() Params {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.params
}

// Route returns the instance's route handle.
func (b *Base) Route() *Route {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.route
}

// Parent returns the component of the layer above, or nil at the root.
func (b *Base) Parent() Component {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.parent
}

// Child returns the component of the layer below, if one is attached.
func (b *Base) Child() Component {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.child
}

// Node returns the node the instance currently has mounted.
func (b *Base) Node() *vdom.VNode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.node
}

// Unloaded reports whether the instance has been unloaded.
func (b *Base) Unloaded() bool {
	return b.unloaded.Load()
}

// Navigate moves to path, resolving relative paths against this
// component's route.
func (b *Base) Navigate(path string) error {
	b.mu.RLock()
	nav, self := b.nav, b.self
	b.mu.RUnlock()

	if nav == nil {
		return errors.New("E206").WithDetailf("%s cannot navigate to %q", b.Class().Name(), path)
	}
	return nav.Navigate(path, self)
}

// SetParameter navigates to the current location with this component's
// parameter name set to value. Layers below keep their segments. It
// returns the path navigated to.
func (b *Base) SetParameter(name, value string) (string, error) {
	b.mu.RLock()
	nav, route := b.nav, b.route
	b.mu.RUnlock()

	if nav == nil || route == nil {
		return "", errors.New("E206").WithDetailf("%s cannot set parameter %q", b.Class().Name(), name)
	}
	path, err := route.With(name, value)
	if err != nil {
		return "", err
	}
	if err := nav.Navigate(path, nil); err != nil {
		return "", err
	}
	return path, nil
}

// Refresh re-renders the instance in place.
func (b *Base) Refresh() {
	b.mu.RLock()
	nav, self := b.nav, b.self
	b.mu.RUnlock()

	if nav != nil && !b.unloaded.Load() {
		nav.Refresh(self)
	}
}

// Attachment is the state the reconciler assigns when it places an
// instance in a layer.
type Attachment struct {
	Params    Params
	Route     *Route
	Parent    Component
	Navigator Navigator
}

// Attach assigns a layer's state to c.
func Attach(c Component, a Attachment) {
	b := c.base()
	b.mu.Lock()
	b.params = a.Params
	b.route = a.Route
	b.parent = a.Parent
	b.nav = a.Navigator
	if b.self == nil {
		b.self = c
	}
	b.mu.Unlock()
}

// SetChild records the component of the layer below c.
func SetChild(c, child Component) {
	b := c.base()
	b.mu.Lock()
	b.child = child
	b.mu.Unlock()
}

// SetNode records the node c currently has mounted.
func SetNode(c Component, node *vdom.VNode) {
	b := c.base()
	b.mu.Lock()
	b.node = node
	b.mu.Unlock()
}

// Unload calls c.OnUnload and stops the instance's timers. Only the first
// call has any effect. Panics from OnUnload propagate after the timers
// are stopped.
func Unload(c Component) {
	b := c.base()
	if !b.unloaded.CompareAndSwap(false, true) {
		return
	}
	defer b.closeTimers()
	c.OnUnload()
}
