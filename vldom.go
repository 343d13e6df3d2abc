// Package vldom is a route-driven incremental reconciler: a route table maps
// paths to chains of nested components, and every navigation rebuilds only
// the layers that differ from the mounted chain.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/vldom"
//
// Usage:
//
//	tree := vldom.MustBuild([]vldom.Entry{
//	    vldom.Group("/users", Users,
//	        vldom.Leaf("/:id", User),
//	    ),
//	})
//	r := vldom.NewRouter(tree, location.NewMemory("/users/1"))
//	go r.Host(ctx, vldom.NewMount())
package vldom

import (
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/router"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// Version is the release version.
const Version = "0.3.0"

// =============================================================================
// Components
// =============================================================================

// Component is implemented by every routed component. Embed Base to get
// default hooks.
type Component = component.Component

// Base is embedded by components.
type Base = component.Base

// Class identifies a component type.
type Class = component.Class

// Params maps route parameter names to values.
type Params = component.Params

// Route is the handle a component receives for its own segment.
type Route = component.Route

// Define registers a component class.
func Define(name string, factory func() Component) *Class {
	return component.Define(name, factory)
}

// =============================================================================
// Routes
// =============================================================================

// Entry is one row of a route table.
type Entry = route.Entry

// Tree is a compiled route table.
type Tree = route.Tree

// Leaf is a route without children.
func Leaf(path string, class *Class) Entry { return route.Leaf(path, class) }

// Group is a route whose component renders one of children.
func Group(path string, class *Class, children ...Entry) Entry {
	return route.Group(path, class, children...)
}

// Build compiles a route table.
func Build(table []Entry) (*Tree, error) { return route.Build(table) }

// MustBuild is like Build but panics on error.
func MustBuild(table []Entry) *Tree { return route.MustBuild(table) }

// =============================================================================
// Router
// =============================================================================

// Router drives reconciliation from location changes.
type Router = router.Router

// RouterOption configures a Router.
type RouterOption = router.Option

// Location stores the current path.
type Location = router.Location

// NewRouter creates a router for tree.
func NewRouter(tree *Tree, loc Location, opts ...RouterOption) *Router {
	return router.New(tree, loc, opts...)
}

// Mount is the node tree components render into.
type Mount = vdom.Mount

// VNode is a node of the mounted tree.
type VNode = vdom.VNode

// NewMount creates an empty mount.
func NewMount() *Mount { return vdom.NewMount() }
