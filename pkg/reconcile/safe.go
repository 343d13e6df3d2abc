package reconcile

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// PanicError is a panic recovered from a component hook.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func recovered(p any) error {
	if err, ok := p.(error); ok {
		return &PanicError{Value: err, Stack: debug.Stack()}
	}
	return &PanicError{Value: p, Stack: debug.Stack()}
}

func safeLoad(ctx context.Context, c component.Component) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = recovered(p)
		}
	}()
	return c.OnLoad(ctx)
}

func safeRender(c component.Component, child *vdom.VNode) (node *vdom.VNode, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = recovered(p)
		}
	}()
	node = c.Render(child)
	if node == nil {
		node = vdom.Fragment()
	}
	return node, nil
}

func safeLoader(c component.Component) (node *vdom.VNode) {
	defer func() {
		if p := recover(); p != nil {
			node = vdom.Marker(component.BaseOf(c).Class().Name())
		}
	}()
	node = c.RenderLoader()
	if node == nil {
		node = vdom.Marker(component.BaseOf(c).Class().Name())
	}
	return node
}

func safeRenderError(c component.Component, cause error) (node *vdom.VNode) {
	defer func() {
		if p := recover(); p != nil {
			node = fallbackError(cause)
		}
	}()
	node = c.RenderError(cause)
	if node == nil {
		node = fallbackError(cause)
	}
	return node
}

func fallbackError(cause error) *vdom.VNode {
	return vdom.Div(vdom.Class("vldom-error"), vdom.Role("alert"), vdom.Text(cause.Error()))
}
