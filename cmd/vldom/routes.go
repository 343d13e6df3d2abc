package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/route"
	"github.com/vango-dev/vldom/pkg/routepath"
)

func routesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.tree.Walk(func(n *route.Node) error {
				indent := strings.Repeat("  ", n.Depth())
				fmt.Fprintf(out, "%s%-*s %s\n", indent, 24-len(indent), n.Path(), n.Class.Name())
				return nil
			})
		},
	}
}

func resolveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the component chain for a path",
		Long: `Resolve a path against the route tree and print one line per layer,
root first, with the parameters each layer receives.

Example:
  vldom resolve /users/2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canon, err := routepath.CanonicalizePath(args[0])
			if err != nil {
				return errors.New("E205").WithDetailf("%q", args[0]).Wrap(err)
			}
			node, params, err := c.tree.Resolve(canon.Path)
			if err != nil {
				return errors.New("E200").WithDetailf("no route matches %q", canon.Path).Wrap(err)
			}

			out := cmd.OutOrStdout()
			for i, n := range node.Parents {
				fmt.Fprintf(out, "%s%s %s%s\n", strings.Repeat("  ", i), n.Path(), n.Class.Name(), formatParams(params[i]))
			}
			return nil
		},
	}
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return " {" + strings.Join(parts, ", ") + "}"
}
