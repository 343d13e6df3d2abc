// Package component defines the contract between route-bound components and
// the reconciler that mounts them.
//
// A component is any type that embeds Base and overrides the lifecycle
// methods it cares about:
//
//	type Article struct {
//	    component.Base
//	    body string
//	}
//
//	func (a *Article) OnLoad(ctx context.Context) error {
//	    body, err := fetch(ctx, a.Params()["slug"])
//	    a.body = body
//	    return err
//	}
//
//	func (a *Article) Render(child *vdom.VNode) *vdom.VNode {
//	    return vdom.Article(vdom.Text(a.body), child)
//	}
//
//	var ArticleClass = component.Define("Article", func() component.Component {
//	    return &Article{}
//	})
//
// The Class value is what route tables bind to; two layers hold the same
// component kind exactly when they hold the same *Class.
//
// # Lifecycle
//
// For every layer it builds, the reconciler calls RenderLoader, then OnLoad,
// then Render with the child layer's placeholder. OnLoad is the only hook
// that may block and it runs on its own goroutine; every other hook runs on
// the router goroutine. OnUnload is called once when the instance leaves the
// mounted chain, after which all timers created through SetTimeout and
// SetInterval are stopped.
package component
