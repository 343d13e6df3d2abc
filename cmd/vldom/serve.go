package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vldom"
	"github.com/vango-dev/vldom/internal/demo"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(c *cli) *cobra.Command {
	var (
		port int
		host string
		live bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Serve the demo route table over HTTP.

Every GET renders the requested path to HTML. With --live, pages open a
websocket and navigation reconciles on the server.

Examples:
  vldom serve
  vldom serve --port 8080 --live`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Dev.Port = port
			}
			if cmd.Flags().Changed("host") {
				c.cfg.Dev.Host = host
			}
			if cmd.Flags().Changed("live") {
				c.cfg.Dev.Live = live
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, cmd)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port")
	cmd.Flags().StringVar(&host, "host", "", "Server host")
	cmd.Flags().BoolVar(&live, "live", false, "Enable live websocket navigation")

	return cmd
}

func (c *cli) serve(ctx context.Context, cmd *cobra.Command) error {
	appCfg := vldom.ConfigFrom(c.cfg, c.logger)
	appCfg.NotFound = demo.NotFound
	app := vldom.New(c.tree, appCfg)
	defer app.Close()

	srv := &http.Server{
		Addr:              c.cfg.DevAddress(),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "  ➜ Local: %s\n", c.cfg.DevURL())
	c.logger.Info("serving", "addr", srv.Addr, "routes", c.tree.Len(), "live", appCfg.Live)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	c.logger.Info("server stopped")
	return nil
}
