package reconcile

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
)

func TestDecide(t *testing.T) {
	a := component.Define("A", func() component.Component { return &component.Base{} })
	b := component.Define("B", func() component.Component { return &component.Base{} })
	tree := route.MustBuild([]route.Entry{
		route.Leaf("/:c", a),
		route.Leaf("/x/:c", a),
	})
	nodeA, nodeX := tree.Nodes()[0], tree.Nodes()[1]

	layer := func(class *component.Class, node *route.Node, c string) *Layer {
		r, _ := component.NewRoute(node.Path(), class, component.Params{"c": c}, nil)
		return &Layer{Class: class, Node: node, Route: r, Params: r.Params, Instance: class.New()}
	}
	failed := layer(a, nodeA, "1")
	failed.failed = true
	empty := layer(a, nodeA, "1")
	empty.Instance = nil

	tests := []struct {
		name     string
		existing *Layer
		target   *Layer
		detached bool
		policy   ParamChange
		want     Action
	}{
		{"same class and path", layer(a, nodeA, "1"), layer(a, nodeA, "1"), false, ParamUpdate, Reuse},
		{"detached", layer(a, nodeA, "1"), layer(a, nodeA, "1"), true, ParamUpdate, Rebuild},
		{"no existing", nil, layer(a, nodeA, "1"), false, ParamUpdate, Rebuild},
		{"no instance", empty, layer(a, nodeA, "1"), false, ParamUpdate, Rebuild},
		{"failed", failed, layer(a, nodeA, "1"), false, ParamUpdate, Rebuild},
		{"different class", layer(a, nodeA, "1"), layer(b, nodeA, "1"), false, ParamUpdate, Rebuild},
		{"param change", layer(a, nodeA, "1"), layer(a, nodeA, "2"), false, ParamUpdate, Update},
		{"param change remount", layer(a, nodeA, "1"), layer(a, nodeA, "2"), false, ParamRemount, Rebuild},
		{"different node", layer(a, nodeA, "1"), layer(a, nodeX, "2"), false, ParamUpdate, Rebuild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.existing, tt.target, tt.detached, tt.policy); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseParamChange(t *testing.T) {
	for in, want := range map[string]ParamChange{"": ParamUpdate, "update": ParamUpdate, "remount": ParamRemount} {
		if got, ok := ParseParamChange(in); !ok || got != want {
			t.Errorf("ParseParamChange(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseParamChange("sometimes"); ok {
		t.Error("unknown policy should not parse")
	}
}

func scenarioHarness(t *testing.T, bOpts trackedOptions) *harness {
	h := newHarness(t)
	h.tree = route.MustBuild([]route.Entry{
		route.Group("/a", h.class("A", trackedOptions{}),
			route.Group("/b/:c", h.class("B", bOpts),
				route.Leaf("/d/:e", h.class("D", trackedOptions{})),
			),
		),
		route.Leaf("/other", h.class("O", trackedOptions{})),
	})
	return h
}

func TestRender_Scenario(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})

	h.navigate("/a")
	if got := h.text(); got != "A" {
		t.Fatalf("mounted %q after /a, want A", got)
	}
	h.checkChain()
	a := h.committed[0].Instance
	h.recorder.takeSteps()

	h.navigate("/a/b/1")
	if h.committed[0].Instance != a {
		t.Error("A must be reused on /a/b/1")
	}
	if bs := h.instances("B"); len(bs) != 1 || bs[0].Params()["c"] != "1" {
		t.Fatalf("B instances = %v", bs)
	}
	if got := h.text(); got != "AB1" {
		t.Errorf("mounted %q after /a/b/1, want AB1", got)
	}
	if diff := cmp.Diff([]string{"A:reuse", "B:rebuild"}, h.recorder.takeSteps()); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	h.checkChain()
	b := h.committed[1].Instance

	h.log.reset()
	h.navigate("/a/b/2")
	if h.committed[0].Instance != a || h.committed[1].Instance != b {
		t.Error("A and B must both be reused on /a/b/2")
	}
	if n := len(h.instances("A")) + len(h.instances("B")); n != 2 {
		t.Errorf("%d instances created, want 2", n)
	}
	want := []string{"change B2", "childchange A <- B2"}
	if diff := cmp.Diff(want, h.log.list()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if got := component.BaseOf(b).Params()["c"]; got != "2" {
		t.Errorf("B params c = %q, want 2", got)
	}
	if got := component.BaseOf(b).Route().FullPath(); got != "/a/b/2" {
		t.Errorf("B route = %q, want /a/b/2", got)
	}
	if diff := cmp.Diff([]string{"A:reuse", "B:update"}, h.recorder.takeSteps()); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	h.checkChain()

	h.log.reset()
	h.navigate("/a")
	if diff := cmp.Diff([]string{"unload B2", "render A"}, h.log.list()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if got := h.text(); got != "A" {
		t.Errorf("mounted %q after returning to /a, want A", got)
	}
	if component.BaseOf(a).Child() != nil {
		t.Error("A should have no child after returning to /a")
	}
	h.checkChain()

	if len(h.errs) != 0 {
		t.Errorf("unexpected errors: %v", h.errs)
	}
}

func TestRender_InitialOrder(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a/b/1/d/2")

	want := []string{
		"load A",
		"render A",
		"load B1",
		"render B1",
		"childchange A <- B1",
		"load D2",
		"render D2",
		"childchange B1 <- D2",
	}
	if diff := cmp.Diff(want, h.log.list()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if got := h.text(); got != "AB1D2" {
		t.Errorf("mounted %q, want AB1D2", got)
	}
	if len(h.committed) != 3 {
		t.Fatalf("committed %d layers, want 3", len(h.committed))
	}
	h.checkChain()
}

func TestRender_RebuildPoisonsDescendants(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.policy = ParamRemount

	h.navigate("/a/b/1/d/2")
	oldB, oldD := h.committed[1].Instance, h.committed[2].Instance

	h.log.reset()
	h.recorder.takeSteps()
	h.navigate("/a/b/9/d/2")

	if h.committed[1].Instance == oldB {
		t.Error("B must be rebuilt when its path changes under remount")
	}
	if h.committed[2].Instance == oldD {
		t.Error("D must be rebuilt once an ancestor rebuilt, even with an unchanged path")
	}
	if diff := cmp.Diff([]string{"A:reuse", "B:rebuild", "D:rebuild"}, h.recorder.takeSteps()); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}

	// The old instance at a depth is unloaded before the new one loads.
	events := h.log.list()
	if idx(events, "unload B1") > idx(events, "load B9") || idx(events, "unload D2") < 0 {
		t.Errorf("unload ordering wrong: %v", events)
	}
	if got := h.text(); got != "AB9D2" {
		t.Errorf("mounted %q, want AB9D2", got)
	}
	h.checkChain()
}

func TestRender_UpdateRebuildsDescendants(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})

	h.navigate("/a/b/1/d/2")
	b, d := h.committed[1].Instance, h.committed[2].Instance
	h.recorder.takeSteps()

	h.log.reset()
	h.navigate("/a/b/3/d/2")
	if h.committed[1].Instance != b {
		t.Error("update should keep B")
	}
	if h.committed[2].Instance == d {
		t.Error("D loaded under the old parameters of B and must be rebuilt")
	}
	if !component.BaseOf(d).Unloaded() {
		t.Error("old D not unloaded")
	}
	if diff := cmp.Diff([]string{"A:reuse", "B:update", "D:rebuild"}, h.recorder.takeSteps()); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}

	events := h.log.list()
	if idx(events, "change B3") < 0 || idx(events, "change B3") > idx(events, "load D2") {
		t.Errorf("B must change before D reloads: %v", events)
	}
	if idx(events, "unload D2") < 0 || idx(events, "unload D2") > idx(events, "load D2") {
		t.Errorf("old D must unload before the new D loads: %v", events)
	}
	if got := component.BaseOf(h.committed[2].Instance).Route().FullPath(); got != "/a/b/3/d/2" {
		t.Errorf("D route = %q, want /a/b/3/d/2", got)
	}
	if got := h.text(); got != "AB3D2" {
		t.Errorf("mounted %q, want AB3D2", got)
	}
	h.checkChain()
}

func TestRender_ShorterChainUnloadsDeepestFirst(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a/b/1/d/2")

	h.log.reset()
	h.navigate("/a")

	want := []string{"unload D2", "unload B1", "render A"}
	if diff := cmp.Diff(want, h.log.list()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	for _, p := range append(h.instances("B"), h.instances("D")...) {
		if !p.Unloaded() {
			t.Errorf("%s not unloaded", p.label())
		}
	}
}

func TestRender_SwitchBranch(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a/b/1")

	h.log.reset()
	h.navigate("/other")

	if got := h.text(); got != "O" {
		t.Errorf("mounted %q, want O", got)
	}
	events := h.log.list()
	if idx(events, "unload A") < 0 || idx(events, "unload B1") < 0 {
		t.Errorf("old chain not unloaded: %v", events)
	}
	if idx(events, "unload A") > idx(events, "load O") {
		t.Errorf("old root unloaded after the new root loaded: %v", events)
	}
	h.checkChain()
}

func TestRender_LoadFailure(t *testing.T) {
	loadErr := stderrors.New("backend down")
	h := scenarioHarness(t, trackedOptions{loadErr: loadErr})

	r := h.navigate("/a/b/1/d/2")

	if len(h.errs) != 1 {
		t.Fatalf("error sink called %d times, want 1", len(h.errs))
	}
	if !stderrors.Is(h.errs[0], loadErr) || !errors.HasCode(h.errs[0], "E201") {
		t.Errorf("sink error = %v", h.errs[0])
	}
	if h.errFrom[0] != h.instances("B")[0] {
		t.Error("sink should receive the failing instance")
	}
	if r.Err() == nil || !errors.HasCode(r.Err(), "E201") {
		t.Errorf("Err() = %v", r.Err())
	}
	if n := len(h.instances("D")); n != 0 {
		t.Errorf("%d D instances created below a failed layer", n)
	}
	if h.log.count("error B1") != 1 {
		t.Error("B's own OnError should run once")
	}
	if got := h.text(); got != "A"+loadErr.Error() {
		t.Errorf("mounted %q, want A followed by the error content", got)
	}
	if len(h.committed) != 2 || !h.committed[1].Failed() || h.committed[0].Failed() {
		t.Fatalf("committed = %d layers, failed flags wrong", len(h.committed))
	}
	h.checkChain()

	// A failed layer is rebuilt rather than reused.
	h.log.reset()
	h.navigate("/a/b/1")
	if n := len(h.instances("B")); n != 2 {
		t.Errorf("B instances = %d, want a fresh one", n)
	}
	if h.log.count("unload B1") != 1 {
		t.Error("the failed instance should be unloaded once")
	}
}

func TestRender_RenderPanic(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{panicRender: true})

	h.navigate("/a/b/1/d/2")

	if len(h.errs) != 1 || !errors.HasCode(h.errs[0], "E202") {
		t.Fatalf("sink errors = %v", h.errs)
	}
	var pe *PanicError
	if !stderrors.As(h.errs[0], &pe) || pe.Value != "render exploded" {
		t.Errorf("sink error should wrap the panic, got %v", h.errs[0])
	}
	if n := len(h.instances("D")); n != 1 {
		t.Fatalf("D instances = %d, want the discarded pre-built one", n)
	}
	if h.log.count("load D2") != 0 {
		t.Error("D must not load after its parent failed to render")
	}
	if !strings.Contains(h.text(), "render exploded") {
		t.Errorf("mounted %q, want the panic in the error content", h.text())
	}
	if component.BaseOf(h.committed[1].Instance).Child() != nil {
		t.Error("failed layer should have no child")
	}
}

func TestRender_Abort(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{gated: true})

	h.navigate("/a")
	a := h.committed[0].Instance

	first := h.start("/a/b/1")
	// A is reused synchronously; B is now waiting in its load.
	oldB := first.Pending().(*tracked)
	if first.Cursor() != 1 || !first.Rendering() {
		t.Fatalf("cursor = %d, rendering = %v", first.Cursor(), first.Rendering())
	}

	prefix := first.Abort()
	if len(prefix) > first.Cursor() || len(prefix) != 1 || prefix[0].Instance != a {
		t.Fatalf("Abort() prefix = %d layers", len(prefix))
	}
	select {
	case <-first.Done():
	default:
		t.Fatal("Done should be closed after Abort")
	}
	if oldB.Unloaded() {
		t.Error("in-flight instance must stay loaded until its load returns")
	}

	h.committed = prefix
	h.log.reset()
	second := h.start("/a/b/2")
	newB := second.Pending().(*tracked)

	// The superseded load finishes now; its instance is discarded.
	oldB.gate <- nil
	h.step()
	if !oldB.Unloaded() {
		t.Error("superseded instance should be unloaded once its load returns")
	}

	newB.gate <- nil
	h.settle(second)

	if h.log.count("load A") != 0 {
		t.Error("committed prefix must not load again")
	}
	if h.committed[0].Instance != a || h.committed[1].Instance != newB {
		t.Error("second render should commit A and the new B")
	}
	if got := h.text(); got != "AB2" {
		t.Errorf("mounted %q, want AB2", got)
	}
	if diff := cmp.Diff([]Outcome{OutcomeCommitted, OutcomeAborted, OutcomeCommitted}, h.recorder.outcomes); diff != "" {
		t.Errorf("outcomes (-want +got):\n%s", diff)
	}
	h.checkChain()
}

func TestRender_AbortUnloadsStaleLayers(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a/b/1/d/2")

	gate := make(chan error)
	h.tree = route.MustBuild([]route.Entry{
		route.Leaf("/slow", component.Define("Slow", func() component.Component {
			return &tracked{name: "Slow", log: h.log, gate: gate}
		})),
	})

	h.log.reset()
	r := h.start("/slow")
	if got := r.Abort(); len(got) != 0 {
		t.Fatalf("Abort() = %d layers, want 0", len(got))
	}

	events := h.log.list()
	for _, want := range []string{"unload A", "unload B1", "unload D2"} {
		if idx(events, want) < 0 {
			t.Errorf("missing %q in %v", want, events)
		}
	}
	if idx(events, "unload D2") > idx(events, "unload B1") {
		t.Errorf("stale layers should unload deepest first: %v", events)
	}
}

func TestAbortBeforeStart(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a")

	r := New(h.committed, h.stack("/a/b/1"), Env{Mount: h.mount})
	if got := r.Abort(); len(got) != 1 || got[0] != h.committed[0] {
		t.Errorf("Abort() before Start should return the previous stack")
	}
	<-r.Done()
}

func TestRender_InlineSchedule(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})

	r := New(nil, h.stack("/a/b/5"), Env{Mount: h.mount})
	r.Start(context.Background())
	<-r.Done()

	if r.Err() != nil || len(r.Committed()) != 2 {
		t.Fatalf("Err() = %v, committed = %d", r.Err(), len(r.Committed()))
	}
	if got := h.text(); got != "AB5" {
		t.Errorf("mounted %q, want AB5", got)
	}
}

func TestRefresh(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	h.navigate("/a/b/1/d/2")

	a := h.committed[0].Instance.(*tracked)
	a.text = "!"
	if err := Refresh(h.mount, h.committed, a); err != nil {
		t.Fatal(err)
	}
	if got := h.text(); got != "A!B1D2" {
		t.Errorf("mounted %q after refresh, want A!B1D2", got)
	}
	h.checkChain()

	if err := Refresh(h.mount, h.committed, &tracked{}); err != nil {
		t.Errorf("refreshing an unknown instance should be a no-op, got %v", err)
	}

	d := h.committed[2].Instance.(*tracked)
	d.opts.panicRender = true
	err := Refresh(h.mount, h.committed, d)
	if !errors.HasCode(err, "E202") {
		t.Fatalf("Refresh() = %v, want E202", err)
	}
	if !h.committed[2].Failed() || !strings.Contains(h.text(), "render exploded") {
		t.Errorf("failed refresh should show error content, got %q", h.text())
	}
}

func TestNewStack(t *testing.T) {
	h := scenarioHarness(t, trackedOptions{})
	layers := h.stack("/a/b/7/d/8")

	if len(layers) != 3 {
		t.Fatalf("len = %d, want 3", len(layers))
	}
	if layers[2].Route.Parent != layers[1].Route || layers[1].Route.Child != layers[2].Route {
		t.Error("route handles should be linked")
	}
	got := []string{layers[0].Path(), layers[1].Path(), layers[2].Path()}
	if diff := cmp.Diff([]string{"/a", "/b/7", "/d/8"}, got); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	if IndexOf(layers, nil) != -1 || len(Instances(layers)) != 0 {
		t.Error("fresh stack should hold no instances")
	}
}

func idx(events []string, event string) int {
	for i, e := range events {
		if e == event {
			return i
		}
	}
	return -1
}
