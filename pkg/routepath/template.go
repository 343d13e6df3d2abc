package routepath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingParam is returned by Substitute when a template parameter has
// no value.
var ErrMissingParam = errors.New("missing route parameter")

// IsParamSegment reports whether seg is a ":name" parameter segment.
func IsParamSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != ':' {
		return false
	}
	for i := 1; i < len(seg); i++ {
		if !isNameByte(seg[i]) {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Params returns the parameter names declared in template, in order.
//
//	Params("/item/:id")          → ["id"]
//	Params("/a/:x/b/:y")         → ["x", "y"]
func Params(template string) []string {
	var names []string
	for _, seg := range strings.Split(template, "/") {
		if IsParamSegment(seg) {
			names = append(names, seg[1:])
		}
	}
	return names
}

// Substitute replaces every ":name" segment of template with params[name].
// It is the inverse of matching a concrete path against the template.
func Substitute(template string, params map[string]string) (string, error) {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if !IsParamSegment(seg) {
			continue
		}
		value, ok := params[seg[1:]]
		if !ok {
			return "", fmt.Errorf("%w %q in %q", ErrMissingParam, seg[1:], template)
		}
		segments[i] = value
	}
	return strings.Join(segments, "/"), nil
}

// Join appends a child template (or concrete path) to its accumulated
// parent prefix. A child of "/" is the parent itself.
//
//	Join("", "/a")      → "/a"
//	Join("/a", "/b/:c") → "/a/b/:c"
//	Join("/", "/a")     → "/a"
//	Join("/a", "/")     → "/a"
func Join(prefix, path string) string {
	if prefix == "" {
		if path == "" {
			return "/"
		}
		return path
	}
	if path == "" || path == "/" {
		return prefix
	}
	joined := strings.TrimSuffix(prefix, "/") + path
	if joined == "" {
		return "/"
	}
	return joined
}
