package component

import (
	"slices"
	"strings"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/routepath"
)

// Route is the handle a component receives for its own route segment. The
// reconciler builds a fresh chain of handles on every navigation.
type Route struct {
	// Template is the segment's own template, e.g. "/b/:c".
	Template string

	// Path is Template with parameters substituted, e.g. "/b/1".
	Path string

	Params Params
	Class  *Class
	Parent *Route
	Child  *Route
}

// NewRoute builds the handle for one segment and links it below parent.
func NewRoute(template string, class *Class, params Params, parent *Route) (*Route, error) {
	path, err := routepath.Substitute(template, params)
	if err != nil {
		return nil, err
	}
	r := &Route{
		Template: template,
		Path:     path,
		Params:   params,
		Class:    class,
		Parent:   parent,
	}
	if parent != nil {
		parent.Child = r
	}
	return r, nil
}

// Chain returns the handles from the root down to r.
func (r *Route) Chain() []*Route {
	var chain []*Route
	for cur := r; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

// FullPath returns the concrete path from the root down to r.
func (r *Route) FullPath() string {
	full := ""
	for _, seg := range r.Chain() {
		full = routepath.Join(full, seg.Path)
	}
	return routepath.Join(full, "")
}

// FullTemplate returns the template from the root down to r.
func (r *Route) FullTemplate() string {
	full := ""
	for _, seg := range r.Chain() {
		full = routepath.Join(full, seg.Template)
	}
	return routepath.Join(full, "")
}

// Declares reports whether the segment template declares name.
func (r *Route) Declares(name string) bool {
	return slices.Contains(routepath.Params(r.Template), name)
}

// With returns the full concrete path with this segment's parameter name
// set to value. Segments below r are kept.
func (r *Route) With(name, value string) (string, error) {
	if !r.Declares(name) {
		return "", errors.New("E203").
			WithDetailf("%q is not declared by %q", name, r.Template)
	}
	if value == "" || strings.Contains(value, "/") {
		return "", errors.New("E205").
			WithDetailf("%q is not a valid value for parameter %q", value, name)
	}

	params := r.Params.Clone()
	params[name] = value
	seg, err := routepath.Substitute(r.Template, params)
	if err != nil {
		return "", err
	}

	full := ""
	if r.Parent != nil {
		full = r.Parent.FullPath()
	}
	full = routepath.Join(full, seg)
	for c := r.Child; c != nil; c = c.Child {
		full = routepath.Join(full, c.Path)
	}
	return routepath.Join(full, ""), nil
}

func (r *Route) String() string {
	return r.FullPath()
}
