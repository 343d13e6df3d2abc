package route

import (
	"regexp"
	"strings"

	"github.com/vango-dev/vldom/pkg/routepath"
)

// Pattern is the compiled matcher for one route segment.
type Pattern struct {
	// Template is the segment's own template.
	Template string

	// FullTemplate is the template accumulated from the root.
	FullTemplate string

	// Full matches a complete concrete path.
	Full *regexp.Regexp

	// Suffix matches this segment at the end of a path.
	Suffix *regexp.Regexp

	// Params lists the segment's parameter names in declaration order.
	Params []string
}

// Compile compiles template as a child of the accumulated prefix.
func Compile(prefix, template string) (*Pattern, error) {
	full := routepath.Join(prefix, template)

	fullRe, err := regexp.Compile("^" + templateExpr(full) + "$")
	if err != nil {
		return nil, err
	}
	suffixRe, err := regexp.Compile(templateExpr(template) + "$")
	if err != nil {
		return nil, err
	}

	return &Pattern{
		Template:     template,
		FullTemplate: full,
		Full:         fullRe,
		Suffix:       suffixRe,
		Params:       routepath.Params(template),
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(prefix, template string) *Pattern {
	p, err := Compile(prefix, template)
	if err != nil {
		panic(err)
	}
	return p
}

func templateExpr(template string) string {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if routepath.IsParamSegment(seg) {
			segments[i] = "([^/]+)"
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return strings.Join(segments, "/")
}

// Matches reports whether path matches the full template.
func (p *Pattern) Matches(path string) bool {
	return p.Full.MatchString(path)
}

// extract matches the segment against the end of path. It returns the
// segment's parameters and the unmatched leading part of path.
func (p *Pattern) extract(path string) (map[string]string, string, bool) {
	loc := p.Suffix.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, path, false
	}
	params := make(map[string]string, len(p.Params))
	for i, name := range p.Params {
		start, end := loc[2*(i+1)], loc[2*(i+1)+1]
		params[name] = path[start:end]
	}
	return params, path[:loc[0]], true
}
