// Package demo is the route table served by "vldom serve" and used by the
// end-to-end tests: a shell layout with a user directory and a clock.
package demo

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// User is a directory entry.
type User struct {
	ID   string
	Name string
	Role string
}

// Directory is the data the user pages load from.
type Directory interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
}

// MemoryDirectory is a fixed Directory.
type MemoryDirectory map[string]User

// List returns the users ordered by id.
func (d MemoryDirectory) List(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(d))
	for _, u := range d {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Get returns the user with id.
func (d MemoryDirectory) Get(ctx context.Context, id string) (User, error) {
	u, ok := d[id]
	if !ok {
		return User{}, fmt.Errorf("no user %q", id)
	}
	return u, nil
}

// DefaultDirectory is the directory Routes uses when given nil.
var DefaultDirectory = MemoryDirectory{
	"1": {ID: "1", Name: "Ada", Role: "admin"},
	"2": {ID: "2", Name: "Grace", Role: "editor"},
	"3": {ID: "3", Name: "Linus", Role: "viewer"},
}

// Routes returns the demo route table.
func Routes(dir Directory) []route.Entry {
	if dir == nil {
		dir = DefaultDirectory
	}
	return []route.Entry{
		route.Group("/", shellClass,
			route.Leaf("/about", aboutClass),
			route.Group("/users", usersClass(dir),
				route.Leaf("/:id", userClass(dir)),
			),
			route.Leaf("/clock", clockClass),
		),
	}
}

// NotFound is the class mounted for unmatched paths.
var NotFound = component.Define("NotFound", func() component.Component { return &notFound{} })

type notFound struct{ component.Base }

func (n *notFound) Render(child *vdom.VNode) *vdom.VNode {
	return vdom.Main(vdom.H1("Not found"), vdom.P(vdom.Code(n.Params()["path"])))
}

var shellClass = component.Define("Shell", func() component.Component { return &shell{} })

type shell struct{ component.Base }

func (s *shell) Render(child *vdom.VNode) *vdom.VNode {
	if child == nil {
		child = vdom.P("Pick a page.")
	}
	return vdom.Div(vdom.Class("shell"),
		vdom.Nav(vdom.AriaLabel("Main"),
			vdom.A(vdom.Href("/about"), "About"),
			vdom.A(vdom.Href("/users"), "Users"),
			vdom.A(vdom.Href("/clock"), "Clock"),
		),
		vdom.Main(child),
	)
}

var aboutClass = component.Define("About", func() component.Component { return &about{} })

type about struct{ component.Base }

func (a *about) Render(child *vdom.VNode) *vdom.VNode {
	return vdom.Section(vdom.H1("About"), vdom.P("Pages are nested components chosen by the route table."))
}

func usersClass(dir Directory) *component.Class {
	return component.Define("Users", func() component.Component { return &users{dir: dir} })
}

type users struct {
	component.Base
	dir  Directory
	list []User
}

func (u *users) OnLoad(ctx context.Context) error {
	list, err := u.dir.List(ctx)
	if err != nil {
		return err
	}
	u.list = list
	return nil
}

func (u *users) Render(child *vdom.VNode) *vdom.VNode {
	items := vdom.Range(u.list, func(user User, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(user.ID), vdom.A(vdom.Href("/users/"+user.ID), user.Name))
	})
	return vdom.Section(vdom.H1("Users"), vdom.Ul(items), child)
}

func userClass(dir Directory) *component.Class {
	return component.Define("User", func() component.Component { return &user{dir: dir} })
}

type user struct {
	component.Base
	dir  Directory
	user atomic.Pointer[User]
	err  atomic.Pointer[error]
}

func (u *user) OnLoad(ctx context.Context) error {
	found, err := u.dir.Get(ctx, u.Params()["id"])
	if err != nil {
		return err
	}
	u.user.Store(&found)
	return nil
}

// OnChange runs when only the id changed; the lookup is repeated in the
// background and the page refreshed when it completes.
func (u *user) OnChange(params component.Params) {
	id := params["id"]
	go func() {
		found, err := u.dir.Get(context.Background(), id)
		if err != nil {
			u.err.Store(&err)
		} else {
			u.err.Store(nil)
			u.user.Store(&found)
		}
		u.Refresh()
	}()
}

func (u *user) Render(child *vdom.VNode) *vdom.VNode {
	if errp := u.err.Load(); errp != nil {
		return u.RenderError(*errp)
	}
	found := u.user.Load()
	if found == nil {
		return vdom.Article(vdom.AriaBusy(true), vdom.Text("Loading"))
	}
	return vdom.Article(vdom.Data("user", found.ID),
		vdom.H2(found.Name),
		vdom.P(found.Role),
	)
}

var clockClass = component.Define("Clock", func() component.Component { return &clock{} })

type clock struct {
	component.Base
	ticks atomic.Int64
}

func (c *clock) OnLoad(ctx context.Context) error {
	c.SetInterval(time.Second, func() {
		c.ticks.Add(1)
		c.Refresh()
	}, false)
	return nil
}

func (c *clock) Render(child *vdom.VNode) *vdom.VNode {
	return vdom.Section(vdom.H1("Clock"), vdom.P(vdom.Textf("%d ticks", c.ticks.Load())))
}
