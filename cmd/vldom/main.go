package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vldom/internal/config"
	"github.com/vango-dev/vldom/internal/demo"
	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/route"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli holds what every command needs once flags are parsed.
type cli struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	tree   *route.Tree
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "vldom",
		Short: "Route-driven component reconciler",
		Long: `vldom maps paths to chains of nested components and, on every
navigation, rebuilds only the layers that changed.

The CLI serves, inspects and exports the bundled demo route table:

  • serve    preview server with live websocket navigation
  • routes   print the route tree
  • resolve  show the component chain for a path
  • nav      navigate a persistent history
  • export   prerender pages to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: vldom.json or vldom.yaml in the project root)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(c),
		routesCmd(c),
		resolveCmd(c),
		navCmd(c),
		exportCmd(c),
		versionCmd(),
	)
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor || !isTerminal(cmd.OutOrStdout()) {
		errors.DisableColors()
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		c.cfg.Log.Level = c.logLevel
	}

	c.logger, err = newLogger(cmd.ErrOrStderr(), c.cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(c.logger)

	c.tree, err = route.Build(demo.Routes(nil))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.New("E121").WithDetailf("log.level %q", cfg.Level).Wrap(err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func printError(w io.Writer, err error) {
	var ve *errors.Error
	if stderrors.As(err, &ve) {
		fmt.Fprintln(w, ve.Format())
		return
	}
	errors.PrintError(w, err)
}
