package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindMarker                // Empty placeholder, renders as a comment
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindMarker:
		return "Marker"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Key      string   // Identity hint for tooling
	Text     string   // For KindText, KindMarker and KindRaw
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Contains reports whether target is v itself or any of its descendants.
func (v *VNode) Contains(target *VNode) bool {
	if v == nil || target == nil {
		return false
	}
	if v == target {
		return true
	}
	for _, child := range v.Children {
		if child.Contains(target) {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of all text descendants.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindText:
		return v.Text
	case KindMarker, KindRaw:
		return ""
	}
	var out string
	for _, child := range v.Children {
		out += child.TextContent()
	}
	return out
}
