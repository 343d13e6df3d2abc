package reconcile

import (
	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// rerender renders layer i again with slot as its child placeholder and
// splices the result over its current content. When slot is the child
// layer's placeholder and the child has rendered since, the child's
// content is put back in the new tree.
func rerender(m *vdom.Mount, layers []*Layer, i int, slot *vdom.VNode) error {
	l := layers[i]
	node, err := safeRender(l.Instance, slot)
	if err != nil {
		return err
	}

	m.Replace(l.Content, node)
	l.Content = node
	l.slot = slot
	component.SetNode(l.Instance, node)

	if slot != nil && i+1 < len(layers) {
		child := layers[i+1]
		if child.Placeholder == slot && child.Content != nil && child.Content != slot {
			m.Replace(slot, child.Content)
		}
	}
	return nil
}

// Refresh renders c again in place. c must be the instance of one of
// layers, which must be mounted on m. A render failure replaces the
// layer's content with its error content and is returned as a coded
// error.
func Refresh(m *vdom.Mount, layers []*Layer, c component.Component) error {
	i := IndexOf(layers, c)
	if i < 0 || layers[i].failed || component.BaseOf(c).Unloaded() {
		return nil
	}

	l := layers[i]
	if err := rerender(m, layers, i, l.slot); err != nil {
		c.OnError(err)
		node := safeRenderError(c, err)
		m.Replace(l.Content, node)
		l.Content = node
		l.slot = nil
		l.failed = true
		component.SetNode(c, node)
		return errors.New("E202").
			WithDetailf("%s at %s", l.Class.Name(), l.Route.FullPath()).
			Wrap(err)
	}
	return nil
}
