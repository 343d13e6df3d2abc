package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vldom/internal/config"
	"github.com/vango-dev/vldom/internal/demo"
	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/location"
	"github.com/vango-dev/vldom/pkg/render"
	"github.com/vango-dev/vldom/pkg/router"
	"github.com/vango-dev/vldom/pkg/vdom"
)

const settleTimeout = 10 * time.Second

func navCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Navigate a persistent history",
		Long: `Drive a router from the command line. With location "bolt" the
history is stored in state.path and survives between invocations, so
"nav back" and "nav forward" move through earlier navigations.`,
	}
	cmd.AddCommand(
		navGoCmd(c),
		navMoveCmd(c, "back", "Go to the previous entry", (*location.Bolt).Back),
		navMoveCmd(c, "forward", "Go to the next entry", (*location.Bolt).Forward),
		navHistoryCmd(c),
		navClearCmd(c),
	)
	return cmd
}

func navGoCmd(c *cli) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "go <path>",
		Short: "Navigate to a path and print the result",
		Long: `Navigate to path and print the committed layers and the rendered
HTML. Relative paths resolve against the stored current path.

Examples:
  vldom nav go /users/2
  vldom nav go ../3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, closeLoc, err := openLocation(c.cfg)
			if err != nil {
				return err
			}
			defer closeLoc()

			var opts []router.NavigateOption
			if replace {
				opts = append(opts, router.WithReplace())
			}
			return c.visit(cmd.Context(), cmd.OutOrStdout(), loc, func(r *router.Router) error {
				return r.NavigateWith(args[0], nil, opts...)
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the current entry instead of pushing")
	return cmd
}

func navMoveCmd(c *cli, use, short string, move func(*location.Bolt) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := location.OpenBolt(c.cfg.StatePath())
			if err != nil {
				return err
			}
			defer b.Close()

			return c.visit(cmd.Context(), cmd.OutOrStdout(), b, func(r *router.Router) error {
				moved, err := move(b)
				if err != nil {
					return err
				}
				if !moved {
					fmt.Fprintf(cmd.OutOrStdout(), "no %s entry\n", use)
				}
				return nil
			})
		},
	}
}

func navHistoryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := location.OpenBolt(c.cfg.StatePath())
			if err != nil {
				return err
			}
			defer b.Close()

			entries, err := b.Entries()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				mark := " "
				if e.Current {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %4d %s\n", mark, e.Seq, e.Path)
			}
			return nil
		},
	}
}

func navClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := location.OpenBolt(c.cfg.StatePath())
			if err != nil {
				return err
			}
			defer b.Close()
			return b.Clear()
		},
	}
}

// openLocation returns the location selected by cfg.Location.
func openLocation(cfg *config.Config) (router.Location, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Location {
	case config.LocationHash:
		return location.NewHash(&url.URL{Scheme: "http", Host: cfg.DevAddress(), Path: "/"}), noop, nil
	case config.LocationBolt:
		b, err := location.OpenBolt(cfg.StatePath())
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		return location.NewMemory("/"), noop, nil
	}
}

// visit hosts a router over loc, runs act on it, waits for the
// reconciliation to settle and prints the committed layers and HTML.
func (c *cli) visit(ctx context.Context, out io.Writer, loc router.Location, act func(r *router.Router) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		mu      sync.Mutex
		reports []error
	)
	r := router.New(c.tree, loc,
		router.WithLogger(c.logger),
		router.WithNotFound(demo.NotFound),
		router.WithErrorHandler(func(err error, _ component.Component) {
			mu.Lock()
			reports = append(reports, err)
			mu.Unlock()
		}),
	)

	hostCtx, stop := context.WithCancel(ctx)
	mount := vdom.NewMount()
	hosted := make(chan error, 1)
	go func() { hosted <- r.Host(hostCtx, mount) }()
	defer func() {
		stop()
		<-hosted
	}()

	if err := act(r); err != nil {
		return err
	}

	settleCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := r.Settle(settleCtx); err != nil {
		return errors.New("E151").WithDetailf("%s did not settle", loc.Path()).Wrap(err)
	}

	fmt.Fprintf(out, "path: %s\n", r.Path())
	for i, l := range r.Committed() {
		fmt.Fprintf(out, "  %d %s %s%s\n", i, l.Path(), l.Class.Name(), formatParams(l.Params))
	}
	mu.Lock()
	for _, err := range reports {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	mu.Unlock()

	html, err := render.NewRenderer(render.RendererConfig{Pretty: true, OmitMarkers: true}).RenderMount(mount)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, html)
	return nil
}
