// Package render serializes a mounted vdom tree to HTML.
//
// It is used by the preview server, the live websocket channel and the
// static exporter, all of which need a byte-for-byte stable rendering of
// whatever the reconciler has committed so far:
//
//   - HTML5 compliant element rendering
//   - Proper text and attribute escaping (XSS prevention)
//   - Void element handling (input, br, img, etc.)
//   - Boolean attribute handling (disabled, checked, etc.)
//   - Placeholder markers rendered as HTML comments
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To render a complete HTML document:
//
//	err := renderer.RenderPage(w, render.PageData{Title: "Docs", Body: root})
package render
