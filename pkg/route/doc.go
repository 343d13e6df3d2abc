// Package route compiles a nested route table into a flat, ordered tree of
// matchable nodes.
//
// A table is built from two kinds of entries:
//
//	table := []route.Entry{
//	    route.Group("/a", aClass,
//	        route.Leaf("/b/:c", bClass),
//	    ),
//	    route.Leaf("/about", aboutClass),
//	}
//
// Templates are split on "/"; a segment of the form ":name" matches any
// non-empty run of characters other than "/", everything else matches
// literally. Every node is reachable by its full template ("/a/b/:c"),
// and nodes are tried in registration order, parents before their
// children, so the first registered match wins.
package route
