package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/vldom/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the mounted root node.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Path is the route path the body was rendered for.
	Path string

	// LiveScript is inline JavaScript appended to the body, used by the
	// preview server to attach the live navigation channel.
	LiveScript string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string
}

// RenderPage renders a complete HTML document around page.Body.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\"><head><meta charset=\"utf-8\">", escapeAttr(lang)); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "</head><body data-path=\"%s\"><div id=\"vldom-root\">", escapeAttr(page.Path)); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</div>"); err != nil {
		return err
	}
	if page.LiveScript != "" {
		if _, err := fmt.Fprintf(w, "<script>%s</script>", page.LiveScript); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body></html>")
	return err
}
