package reconcile

import (
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// Layer is one depth of a matched route chain.
type Layer struct {
	Class  *component.Class
	Node   *route.Node
	Params component.Params

	// Route is a fresh handle for every resolved chain.
	Route *component.Route

	// Placeholder is the node this layer occupied while loading. It is
	// also the child slot the parent layer rendered.
	Placeholder *vdom.VNode

	// Content is the node currently mounted for this layer.
	Content *vdom.VNode

	Instance component.Component

	// slot is the child placeholder Content was rendered with.
	slot   *vdom.VNode
	failed bool
}

// Path returns the layer's substituted segment path.
func (l *Layer) Path() string {
	if l.Route == nil {
		return ""
	}
	return l.Route.Path
}

// Failed reports whether the layer's load or render failed. A failed
// layer is never reused.
func (l *Layer) Failed() bool {
	return l.failed
}

// NewStack builds the target chain for node from the parameters returned
// by route.Tree.Parameters.
func NewStack(node *route.Node, params []component.Params) ([]*Layer, error) {
	layers := make([]*Layer, len(node.Parents))
	var parent *component.Route
	for i, n := range node.Parents {
		var p component.Params
		if i < len(params) {
			p = params[i]
		}
		if p == nil {
			p = component.Params{}
		}
		r, err := component.NewRoute(n.Path(), n.Class, p, parent)
		if err != nil {
			return nil, err
		}
		layers[i] = &Layer{
			Class:  n.Class,
			Node:   n,
			Params: p,
			Route:  r,
		}
		parent = r
	}
	return layers, nil
}

// Instances returns the live instances of layers, root first.
func Instances(layers []*Layer) []component.Component {
	out := make([]component.Component, 0, len(layers))
	for _, l := range layers {
		if l.Instance != nil {
			out = append(out, l.Instance)
		}
	}
	return out
}

// IndexOf returns the depth holding c, or -1.
func IndexOf(layers []*Layer, c component.Component) int {
	if c == nil {
		return -1
	}
	for i, l := range layers {
		if l.Instance == c {
			return i
		}
	}
	return -1
}
