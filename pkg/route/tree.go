package route

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/routepath"
)

// ErrNoMatch is returned when no node matches a path.
var ErrNoMatch = stderrors.New("no route matches path")

// Node is one compiled route in the tree. Nodes are immutable once Build
// returns.
type Node struct {
	Pattern *Pattern
	Class   *component.Class

	// Parent is nil for top-level routes.
	Parent *Node

	// Parents is the chain from the top-level route down to this node,
	// ending with the node itself.
	Parents []*Node

	Children []*Node

	// Index is the node's position in registration order.
	Index int
}

// Path returns the node's own segment template.
func (n *Node) Path() string { return n.Pattern.Template }

// FullPath returns the template accumulated from the root.
func (n *Node) FullPath() string { return n.Pattern.FullTemplate }

// Depth returns the number of ancestors of the node.
func (n *Node) Depth() int { return len(n.Parents) - 1 }

func (n *Node) String() string {
	return fmt.Sprintf("%s -> %s", n.FullPath(), n.Class.Name())
}

// Tree is a compiled route table.
type Tree struct {
	nodes []*Node
	roots []*Node
}

// Build compiles table into a tree.
func Build(table []Entry) (*Tree, error) {
	t := &Tree{}
	for _, entry := range table {
		root, err := t.add(entry, nil, nil)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, root)
	}

	for _, n := range t.nodes {
		for cur := n; cur != nil; cur = cur.Parent {
			n.Parents = append(n.Parents, cur)
		}
		slices.Reverse(n.Parents)
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(table []Entry) *Tree {
	t, err := Build(table)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) add(entry Entry, parent *Node, seen []string) (*Node, error) {
	prefix := ""
	if parent != nil {
		prefix = parent.FullPath()
	}
	if err := validateEntry(entry, prefix, seen); err != nil {
		return nil, err
	}

	pattern, err := Compile(prefix, entry.Path)
	if err != nil {
		return nil, invalidTable(prefix, entry.Path, err.Error())
	}

	n := &Node{
		Pattern: pattern,
		Class:   entry.Class,
		Parent:  parent,
		Index:   len(t.nodes),
	}
	t.nodes = append(t.nodes, n)

	seen = append(slices.Clip(seen), pattern.Params...)
	for _, child := range entry.Children {
		c, err := t.add(child, n, seen)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func validateEntry(entry Entry, prefix string, seen []string) error {
	path := entry.Path
	switch {
	case entry.Class == nil:
		return invalidTable(prefix, path, "no component class")
	case !strings.HasPrefix(path, "/"):
		return invalidTable(prefix, path, "template must begin with /")
	case path != "/" && strings.HasSuffix(path, "/"):
		return invalidTable(prefix, path, "template must not end with /")
	case strings.Contains(path, "//"):
		return invalidTable(prefix, path, "template contains an empty segment")
	case !entry.IsGroup() && len(entry.Children) > 0:
		return invalidTable(prefix, path, "leaf entry has children")
	}

	names := routepath.Params(path)
	for i, name := range names {
		if slices.Contains(seen, name) || slices.Contains(names[:i], name) {
			return invalidTable(prefix, path, fmt.Sprintf("parameter %q declared twice", name))
		}
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") && !routepath.IsParamSegment(seg) {
			return invalidTable(prefix, path, fmt.Sprintf("malformed parameter %q", seg))
		}
	}
	return nil
}

func invalidTable(prefix, path, reason string) error {
	return errors.New("E204").WithDetailf("%s: %s", routepath.Join(prefix, path), reason)
}

// Nodes returns every node in registration order.
func (t *Tree) Nodes() []*Node {
	return slices.Clone(t.nodes)
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []*Node {
	return slices.Clone(t.roots)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Walk calls fn for every node in registration order, stopping at the
// first error.
func (t *Tree) Walk(fn func(n *Node) error) error {
	for _, n := range t.nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// Match returns the first node, in registration order, whose full
// template matches path.
func (t *Tree) Match(path string) (*Node, bool) {
	for _, n := range t.nodes {
		if n.Pattern.Matches(path) {
			return n, true
		}
	}
	return nil, false
}

// Parameters extracts the parameters of every segment of node's chain
// from path. The result is root-first and aligned with node.Parents.
func (t *Tree) Parameters(node *Node, path string) ([]component.Params, error) {
	out := make([]component.Params, 0, len(node.Parents))
	remaining := path
	for cur := node; cur != nil; cur = cur.Parent {
		params, rest, ok := cur.Pattern.extract(remaining)
		if !ok {
			if len(cur.Pattern.Params) > 0 {
				return nil, fmt.Errorf("%w: %q does not end with %q", ErrNoMatch, remaining, cur.Path())
			}
			params = map[string]string{}
		}
		remaining = rest
		out = append(out, params)
	}
	slices.Reverse(out)
	return out, nil
}

// Resolve matches path and extracts its parameters.
func (t *Tree) Resolve(path string) (*Node, []component.Params, error) {
	node, ok := t.Match(path)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoMatch, path)
	}
	params, err := t.Parameters(node, path)
	if err != nil {
		return nil, nil, err
	}
	return node, params, nil
}
