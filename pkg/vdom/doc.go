// Package vdom provides the node model rendered by vldom components.
//
// VNode is the fundamental building block representing elements, text,
// fragments, placeholder markers and raw HTML. Props holds attributes.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Mount
//
// Mount is the host the reconciler renders into. It owns the root node and
// splices nodes in place by pointer identity, the way a browser replaces a
// DOM node with replaceChild. Node identity matters: a placeholder returned
// by a component is later replaced by exactly that pointer.
package vdom
