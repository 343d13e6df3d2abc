package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vldom/internal/demo"
	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/export"
	"github.com/vango-dev/vldom/pkg/prerender"
	"github.com/vango-dev/vldom/pkg/reconcile"
)

func exportCmd(c *cli) *cobra.Command {
	var (
		bucket string
		prefix string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "export [paths...]",
		Short: "Prerender pages and upload them to S3",
		Long: `Render each path to a complete HTML document and upload it as
<prefix><path>/index.html. Without arguments the paths come from
export.paths in the config, or every route without parameters.

Credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.

Examples:
  vldom export --bucket site
  vldom export --dry-run /about /users/1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ec := c.cfg.Export
			if cmd.Flags().Changed("bucket") {
				ec.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				ec.Prefix = prefix
			}
			if ec.Bucket == "" && !dryRun {
				return errors.New("E145").WithDetail("export needs --bucket or export.bucket")
			}

			paths := args
			if len(paths) == 0 {
				paths = ec.Paths
			}

			policy, _ := reconcile.ParseParamChange(c.cfg.ParamChange)
			opts := []export.Option{
				export.WithPrefix(ec.Prefix),
				export.WithLogger(c.logger),
				export.WithRenderOptions(
					prerender.WithLogger(c.logger),
					prerender.WithTitle(c.cfg.Name),
					prerender.WithNotFound(demo.NotFound),
					prerender.WithParamChange(policy),
				),
			}
			var putter export.Putter
			if dryRun {
				opts = append(opts, export.WithDryRun())
			} else {
				putter = export.NewClient(export.ClientOptions{
					Region:    ec.Region,
					Endpoint:  ec.Endpoint,
					PathStyle: ec.PathStyle,
				})
			}

			objects, err := export.New(c.tree, putter, ec.Bucket, opts...).Export(cmd.Context(), paths)
			out := cmd.OutOrStdout()
			for _, obj := range objects {
				fmt.Fprintf(out, "%-24s %-32s %6d bytes", obj.Path, obj.Key, obj.Bytes)
				if obj.Errors > 0 {
					fmt.Fprintf(out, "  (%d errors)", obj.Errors)
				}
				fmt.Fprintln(out)
			}
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(out, "%d pages rendered (dry run)\n", len(objects))
			} else {
				fmt.Fprintf(out, "%d pages uploaded to s3://%s\n", len(objects), ec.Bucket)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render without uploading")
	return cmd
}
