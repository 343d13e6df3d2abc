package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/vdom"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) count(event string) int {
	n := 0
	for _, e := range l.list() {
		if e == event {
			n++
		}
	}
	return n
}

func (l *eventLog) reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

type trackedOptions struct {
	gated       bool
	loadErr     error
	panicRender bool
}

type tracked struct {
	component.Base
	name string
	log  *eventLog
	opts trackedOptions
	gate chan error
	text string
}

func (p *tracked) label() string {
	return p.name + p.Params()["c"] + p.Params()["e"]
}

func (p *tracked) OnLoad(ctx context.Context) error {
	p.log.add("load %s", p.label())
	if p.gate != nil {
		select {
		case err := <-p.gate:
			return err
		case <-ctx.Done():
			<-p.gate
			return ctx.Err()
		}
	}
	return p.opts.loadErr
}

func (p *tracked) OnUnload() { p.log.add("unload %s", p.label()) }

func (p *tracked) OnError(err error) { p.log.add("error %s", p.label()) }

func (p *tracked) OnChange(params component.Params) {
	p.log.add("change %s", p.label())
}

func (p *tracked) OnChildChange(params component.Params, r *component.Route, child component.Component) {
	p.log.add("childchange %s <- %s", p.label(), child.(*tracked).label())
}

func (p *tracked) Render(child *vdom.VNode) *vdom.VNode {
	if p.opts.panicRender {
		panic("render exploded")
	}
	p.log.add("render %s", p.label())
	return vdom.Div(vdom.Text(p.label()+p.text), child)
}

type harness struct {
	t         *testing.T
	tree      *route.Tree
	mount     *vdom.Mount
	log       *eventLog
	queue     chan func()
	errs      []error
	errFrom   []component.Component
	committed []*Layer
	policy    ParamChange
	recorder  *stepRecorder
	built     map[string][]*tracked
	mu        sync.Mutex
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:        t,
		mount:    vdom.NewMount(),
		log:      &eventLog{},
		queue:    make(chan func(), 64),
		recorder: &stepRecorder{},
		built:    make(map[string][]*tracked),
	}
}

func (h *harness) class(name string, opts trackedOptions) *component.Class {
	return component.Define(name, func() component.Component {
		p := &tracked{name: name, log: h.log, opts: opts}
		if opts.gated {
			p.gate = make(chan error, 1)
		}
		h.mu.Lock()
		h.built[name] = append(h.built[name], p)
		h.mu.Unlock()
		return p
	})
}

func (h *harness) instances(name string) []*tracked {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*tracked(nil), h.built[name]...)
}

func (h *harness) stack(path string) []*Layer {
	h.t.Helper()
	node, params, err := h.tree.Resolve(path)
	if err != nil {
		h.t.Fatalf("Resolve(%q): %v", path, err)
	}
	layers, err := NewStack(node, params)
	if err != nil {
		h.t.Fatal(err)
	}
	return layers
}

func (h *harness) start(path string) *Render {
	h.t.Helper()
	r := New(h.committed, h.stack(path), Env{
		Mount:       h.mount,
		Recorder:    h.recorder,
		ParamChange: h.policy,
		Schedule:    func(fn func()) { h.queue <- fn },
		OnError: func(err error, c component.Component) {
			h.errs = append(h.errs, err)
			h.errFrom = append(h.errFrom, c)
		},
	})
	r.Start(context.Background())
	return r
}

// step runs one queued continuation.
func (h *harness) step() {
	h.t.Helper()
	select {
	case fn := <-h.queue:
		fn()
	case <-time.After(5 * time.Second):
		h.t.Fatal("no continuation arrived")
	}
}

func (h *harness) settle(r *Render) {
	h.t.Helper()
	for {
		select {
		case <-r.Done():
			h.committed = r.Committed()
			return
		default:
		}
		h.step()
	}
}

func (h *harness) navigate(path string) *Render {
	h.t.Helper()
	r := h.start(path)
	h.settle(r)
	return r
}

func (h *harness) text() string {
	return h.mount.Root().TextContent()
}

// checkChain asserts the committed stack is contiguous and linked.
func (h *harness) checkChain() {
	h.t.Helper()
	for i, l := range h.committed {
		if l.Instance == nil {
			h.t.Fatalf("depth %d has no instance", i)
		}
		parent := component.BaseOf(l.Instance).Parent()
		if i == 0 && parent != nil {
			h.t.Errorf("root layer has parent %v", parent)
		}
		if i > 0 && parent != h.committed[i-1].Instance {
			h.t.Errorf("depth %d parent is not depth %d", i, i-1)
		}
		if !h.mount.Contains(l.Content) {
			h.t.Errorf("depth %d content is not mounted", i)
		}
	}
}

type stepRecorder struct {
	mu       sync.Mutex
	steps    []string
	outcomes []Outcome
	loads    int
}

func (s *stepRecorder) Render(o Outcome, d time.Duration) {
	s.mu.Lock()
	s.outcomes = append(s.outcomes, o)
	s.mu.Unlock()
}

func (s *stepRecorder) Step(class string, a Action) {
	s.mu.Lock()
	s.steps = append(s.steps, class+":"+a.String())
	s.mu.Unlock()
}

func (s *stepRecorder) Load(class string, d time.Duration, err error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
}

func (s *stepRecorder) takeSteps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.steps
	s.steps = nil
	return out
}
