package render

import "strings"

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	return escape(s, false)
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it also escapes
// whitespace characters that could break attribute parsing.
func escapeAttr(s string) string {
	return escape(s, true)
}

// escapeComment keeps marker labels from closing the comment early.
func escapeComment(s string) string {
	return strings.ReplaceAll(escapeHTML(s), "--", "&#45;&#45;")
}

func escape(s string, attr bool) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString(pick(attr, "&#10;", "\n"))
		case '\r':
			buf.WriteString(pick(attr, "&#13;", "\r"))
		case '\t':
			buf.WriteString(pick(attr, "&#9;", "\t"))
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
