package route

import "github.com/vango-dev/vldom/pkg/component"

// Entry is one route table entry: a leaf or a group with children.
type Entry struct {
	Path     string
	Class    *component.Class
	Children []Entry

	group bool
}

// Leaf binds path to class with no nested routes.
func Leaf(path string, class *component.Class) Entry {
	return Entry{Path: path, Class: class}
}

// Group binds path to class and nests children below it. Child templates
// are relative to path.
func Group(path string, class *component.Class, children ...Entry) Entry {
	return Entry{Path: path, Class: class, Children: children, group: true}
}

// IsGroup reports whether the entry was declared with Group.
func (e Entry) IsGroup() bool {
	return e.group
}
