package component

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/vdom"
)

type widget struct {
	Base
	unloads int
}

func (w *widget) OnUnload() { w.unloads++ }

var widgetClass = Define("Widget", func() Component { return &widget{} })

type fakeNavigator struct {
	paths     []string
	relative  []Component
	refreshed []Component
	err       error
}

func (f *fakeNavigator) Navigate(path string, relativeTo Component) error {
	f.paths = append(f.paths, path)
	f.relative = append(f.relative, relativeTo)
	return f.err
}

func (f *fakeNavigator) Refresh(c Component) {
	f.refreshed = append(f.refreshed, c)
}

func TestClassNew(t *testing.T) {
	a := widgetClass.New()
	b := widgetClass.New()

	if a == b {
		t.Fatal("New should return a distinct instance per call")
	}
	if BaseOf(a).Class() != widgetClass {
		t.Errorf("Class() = %v, want %v", BaseOf(a).Class(), widgetClass)
	}
	if widgetClass.Name() != "Widget" || widgetClass.String() != "Widget" {
		t.Errorf("Name() = %q", widgetClass.Name())
	}

	var nilClass *Class
	if nilClass.Name() != "<nil>" {
		t.Errorf("nil Name() = %q", nilClass.Name())
	}
}

func TestDefineNilFactoryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Define(nil) should panic")
		}
	}()
	Define("Broken", nil)
}

func TestParams(t *testing.T) {
	p := Params{"c": "1"}
	clone := p.Clone()
	clone["c"] = "2"

	if p["c"] != "1" {
		t.Error("Clone should not alias the original")
	}
	if p.Equal(clone) {
		t.Error("Equal should report differing values")
	}
	if !Params(nil).Equal(Params{}) {
		t.Error("nil and empty Params should be equal")
	}
	if Params(nil).Clone() == nil {
		t.Error("Clone of nil should be non-nil")
	}
}

func TestDefaults(t *testing.T) {
	c := widgetClass.New()

	if err := c.OnLoad(context.Background()); err != nil {
		t.Errorf("OnLoad() = %v", err)
	}

	child := vdom.Marker("child")
	out := c.Render(child)
	if out.Kind != vdom.KindFragment || out.TextContent() != "Widget" || !out.Contains(child) {
		t.Errorf("Render() = %+v", out)
	}

	loader := c.RenderLoader()
	if loader.Kind != vdom.KindMarker {
		t.Errorf("RenderLoader().Kind = %v, want marker", loader.Kind)
	}
	if c.RenderLoader() == loader {
		t.Error("RenderLoader should return a fresh node per call")
	}

	errNode := c.RenderError(stderrors.New("boom"))
	if errNode.TextContent() != "boom" || errNode.Props["class"] != "vldom-error" {
		t.Errorf("RenderError() = %+v", errNode)
	}
}

func TestAttach(t *testing.T) {
	parent := widgetClass.New()
	c := widgetClass.New()
	nav := &fakeNavigator{}
	route, _ := NewRoute("/b/:c", widgetClass, Params{"c": "1"}, nil)

	Attach(c, Attachment{Params: route.Params, Route: route, Parent: parent, Navigator: nav})
	SetChild(parent, c)
	node := vdom.Div()
	SetNode(c, node)

	b := BaseOf(c)
	if b.Params()["c"] != "1" || b.Route() != route || b.Parent() != parent || b.Node() != node {
		t.Errorf("attachment not applied: %+v", b)
	}
	if BaseOf(parent).Child() != c {
		t.Error("SetChild not applied")
	}
	if BaseOf(nil) != nil {
		t.Error("BaseOf(nil) should be nil")
	}
}

func TestNavigate(t *testing.T) {
	c := widgetClass.New()

	err := BaseOf(c).Navigate("../x")
	if !errors.HasCode(err, "E206") {
		t.Fatalf("Navigate without navigator = %v, want E206", err)
	}

	nav := &fakeNavigator{}
	Attach(c, Attachment{Navigator: nav})
	if err := BaseOf(c).Navigate("../x"); err != nil {
		t.Fatal(err)
	}
	if nav.paths[0] != "../x" || nav.relative[0] != c {
		t.Errorf("Navigate forwarded (%q, %v)", nav.paths[0], nav.relative[0])
	}

	BaseOf(c).Refresh()
	if len(nav.refreshed) != 1 || nav.refreshed[0] != c {
		t.Errorf("Refresh forwarded %v", nav.refreshed)
	}
}

func TestSetParameter(t *testing.T) {
	a, _ := NewRoute("/a", widgetClass, Params{}, nil)
	b, _ := NewRoute("/b/:c", widgetClass, Params{"c": "1"}, a)
	_, _ = NewRoute("/d/:e", widgetClass, Params{"e": "9"}, b)

	c := widgetClass.New()
	nav := &fakeNavigator{}
	Attach(c, Attachment{Params: b.Params, Route: b, Navigator: nav})

	path, err := BaseOf(c).SetParameter("c", "2")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/a/b/2/d/9" {
		t.Errorf("SetParameter path = %q, want /a/b/2/d/9", path)
	}
	if nav.paths[0] != "/a/b/2/d/9" || nav.relative[0] != nil {
		t.Errorf("navigated (%q, %v)", nav.paths[0], nav.relative[0])
	}
	if b.Params["c"] != "1" {
		t.Error("SetParameter must not mutate the route's params")
	}

	if _, err := BaseOf(c).SetParameter("zzz", "1"); !errors.HasCode(err, "E203") {
		t.Errorf("unknown parameter = %v, want E203", err)
	}
	if _, err := BaseOf(c).SetParameter("c", "x/y"); !errors.HasCode(err, "E205") {
		t.Errorf("slash in value = %v, want E205", err)
	}

	nav.err = stderrors.New("refused")
	if _, err := BaseOf(c).SetParameter("c", "3"); err != nav.err {
		t.Errorf("navigator error = %v", err)
	}

	if _, err := BaseOf(widgetClass.New()).SetParameter("c", "1"); !errors.HasCode(err, "E206") {
		t.Errorf("detached SetParameter = %v, want E206", err)
	}
}

func TestRoute(t *testing.T) {
	root, _ := NewRoute("/", widgetClass, Params{}, nil)
	a, _ := NewRoute("/a", widgetClass, Params{}, root)
	b, err := NewRoute("/b/:c", widgetClass, Params{"c": "7"}, a)
	if err != nil {
		t.Fatal(err)
	}

	if root.Child != a || a.Child != b {
		t.Error("NewRoute should link the parent's child")
	}
	if got := b.FullPath(); got != "/a/b/7" {
		t.Errorf("FullPath() = %q, want /a/b/7", got)
	}
	if got := b.FullTemplate(); got != "/a/b/:c" {
		t.Errorf("FullTemplate() = %q, want /a/b/:c", got)
	}
	if got := root.FullPath(); got != "/" {
		t.Errorf("root FullPath() = %q, want /", got)
	}
	if len(b.Chain()) != 3 || b.Chain()[0] != root {
		t.Errorf("Chain() = %v", b.Chain())
	}
	if !b.Declares("c") || b.Declares("d") {
		t.Error("Declares mismatch")
	}

	if _, err := NewRoute("/b/:c", widgetClass, Params{}, nil); err == nil {
		t.Error("NewRoute with a missing parameter should fail")
	}
}

func TestUnload(t *testing.T) {
	c := widgetClass.New()
	b := BaseOf(c)
	b.SetTimeout(time.Hour, func() {})
	b.SetInterval(time.Hour, func() {}, false)

	Unload(c)
	Unload(c)

	if got := c.(*widget).unloads; got != 1 {
		t.Errorf("OnUnload called %d times, want 1", got)
	}
	if !b.Unloaded() {
		t.Error("Unloaded() should be true")
	}
	if b.Timers() != 0 {
		t.Errorf("Timers() = %d after unload, want 0", b.Timers())
	}
	if id := b.SetTimeout(time.Millisecond, func() {}); id != 0 || b.Timers() != 0 {
		t.Error("timers must not start after unload")
	}
}

func TestSetTimeout(t *testing.T) {
	b := BaseOf(widgetClass.New())
	fired := make(chan struct{})

	b.SetTimeout(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout did not fire")
	}

	deadline := time.Now().Add(time.Second)
	for b.Timers() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if b.Timers() != 0 {
		t.Errorf("Timers() = %d after firing, want 0", b.Timers())
	}
}

func TestClearTimer(t *testing.T) {
	b := BaseOf(widgetClass.New())
	var fired atomic.Bool

	id := b.SetTimeout(20*time.Millisecond, func() { fired.Store(true) })
	b.ClearTimer(id)
	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("cleared timeout fired")
	}
}

func TestSetInterval(t *testing.T) {
	b := BaseOf(widgetClass.New())
	var count atomic.Int32
	ticks := make(chan struct{}, 16)

	b.SetInterval(time.Millisecond, func() {
		count.Add(1)
		select {
		case ticks <- struct{}{}:
		default:
		}
	}, true)

	if count.Load() < 1 {
		t.Fatal("runOnStart should call fn synchronously")
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("interval did not tick")
		}
	}

	b.ClearTimers()
	time.Sleep(10 * time.Millisecond)
	after := count.Load()
	time.Sleep(20 * time.Millisecond)
	if count.Load() != after {
		t.Error("interval kept ticking after ClearTimers")
	}
}

func TestTimerSetClosed(t *testing.T) {
	var s timerSet
	id, ok := s.add(nil)
	if !ok {
		t.Fatal("add failed on an open set")
	}

	s.drain(true)

	if _, ok := s.add(nil); ok {
		t.Error("add succeeded after close")
	}
	if s.set(id, func() {}) {
		t.Error("set succeeded for a drained timer")
	}
	if s.len() != 0 {
		t.Errorf("len() = %d after close, want 0", s.len())
	}
}

func TestClearTimersKeepsAccepting(t *testing.T) {
	b := BaseOf(widgetClass.New())
	b.SetTimeout(time.Hour, func() {})
	b.ClearTimers()

	if id := b.SetTimeout(time.Hour, func() {}); id == 0 {
		t.Fatal("SetTimeout refused after ClearTimers")
	}
	if b.Timers() != 1 {
		t.Errorf("Timers() = %d, want 1", b.Timers())
	}
	b.ClearTimers()
}

func TestUnloadRacesTimers(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := widgetClass.New()
		b := BaseOf(c)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 100; j++ {
				b.SetTimeout(time.Hour, func() {})
				b.SetInterval(time.Hour, func() {}, false)
			}
		}()

		Unload(c)
		<-done

		if b.Timers() != 0 {
			t.Fatalf("Timers() = %d after unload, want 0", b.Timers())
		}
	}
}
