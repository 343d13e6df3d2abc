package prerender

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/router"
	"github.com/vango-dev/vldom/pkg/vdom"
)

type page struct {
	component.Base
	name string
	load func(ctx context.Context) error
}

func (p *page) OnLoad(ctx context.Context) error {
	if p.load != nil {
		return p.load(ctx)
	}
	return nil
}

func (p *page) Render(child *vdom.VNode) *vdom.VNode {
	return vdom.Div(vdom.Text(p.name+p.Params()["c"]), child)
}

func define(name string, load func(ctx context.Context) error) *component.Class {
	return component.Define(name, func() component.Component {
		return &page{name: name, load: load}
	})
}

func testTree() *route.Tree {
	return route.MustBuild([]route.Entry{
		route.Group("/a", define("A", nil),
			route.Leaf("/b/:c", define("B", nil)),
			route.Leaf("/fail", define("F", func(context.Context) error {
				return stderrors.New("backend down")
			})),
			route.Leaf("/slow", define("S", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})),
		),
	})
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRender(t *testing.T) {
	p, err := Render(context.Background(), testTree(), "/a/b/1/", quiet(), WithTitle("Demo"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Path != "/a/b/1" {
		t.Errorf("Path = %q", p.Path)
	}
	if p.Body != "<div>A<div>B1</div></div>" {
		t.Errorf("Body = %q", p.Body)
	}
	if diff := cmp.Diff([]string{"A", "B"}, p.Components); diff != "" {
		t.Errorf("Components (-want +got):\n%s", diff)
	}
	for _, want := range []string{"<title>Demo</title>", `data-path="/a/b/1"`, p.Body} {
		if !strings.Contains(p.Document, want) {
			t.Errorf("Document missing %q", want)
		}
	}
	if len(p.Errors) != 0 {
		t.Errorf("Errors = %v", p.Errors)
	}
}

func TestRenderInvalidRoute(t *testing.T) {
	_, err := Render(context.Background(), testTree(), "/nope", quiet())
	if !errors.HasCode(err, "E200") || !stderrors.Is(err, router.ErrInvalidRoute) {
		t.Errorf("err = %v, want E200 wrapping ErrInvalidRoute", err)
	}

	_, err = Render(context.Background(), testTree(), "/../etc", quiet())
	if !errors.HasCode(err, "E205") {
		t.Errorf("err = %v, want E205", err)
	}
}

func TestRenderNotFound(t *testing.T) {
	nf := component.Define("Missing", func() component.Component { return &component.Base{} })
	p, err := Render(context.Background(), testTree(), "/nope", quiet(), WithNotFound(nf))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Missing"}, p.Components); diff != "" {
		t.Errorf("Components (-want +got):\n%s", diff)
	}
	if p.Body != "Missing" {
		t.Errorf("Body = %q", p.Body)
	}
}

func TestRenderLoadFailure(t *testing.T) {
	p, err := Render(context.Background(), testTree(), "/a/fail", quiet())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Errors) != 1 || !errors.HasCode(p.Errors[0], "E201") {
		t.Fatalf("Errors = %v, want one E201", p.Errors)
	}
	if !strings.Contains(p.Body, `class="vldom-error"`) || !strings.Contains(p.Body, "backend down") {
		t.Errorf("Body = %q", p.Body)
	}
}

func TestRenderTimeout(t *testing.T) {
	_, err := Render(context.Background(), testTree(), "/a/slow", quiet(), WithTimeout(50*time.Millisecond))
	if !errors.HasCode(err, "E151") {
		t.Errorf("err = %v, want E151", err)
	}
}
