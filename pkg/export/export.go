// Package export prerenders route paths and uploads the documents to an
// S3 bucket as a static site.
package export

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vldom/internal/errors"
	"github.com/vango-dev/vldom/pkg/prerender"
	"github.com/vango-dev/vldom/pkg/route"
)

// Putter is the part of *s3.Client the exporter uses.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Region string

	// Endpoint overrides the S3 endpoint, for MinIO or LocalStack.
	Endpoint string

	// PathStyle addresses buckets as a path segment instead of a host.
	PathStyle bool
}

// NewClient builds an S3 client. Credentials come from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
func NewClient(opts ClientOptions) *s3.Client {
	return s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  aws.NewCredentialsCache(envCredentials{}),
		UsePathStyle: opts.PathStyle,
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
}

type envCredentials struct{}

func (envCredentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("E150").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// Object is one uploaded document.
type Object struct {
	Path   string
	Key    string
	Bytes  int
	Errors int
}

// Exporter uploads prerendered pages.
type Exporter struct {
	tree   *route.Tree
	putter Putter
	bucket string
	prefix string
	logger *slog.Logger
	render []prerender.Option
	dryRun bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		e.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithRenderOptions passes options to every prerender.
func WithRenderOptions(opts ...prerender.Option) Option {
	return func(e *Exporter) {
		e.render = append(e.render, opts...)
	}
}

// WithDryRun renders every page without uploading.
func WithDryRun() Option {
	return func(e *Exporter) {
		e.dryRun = true
	}
}

// New creates an exporter writing to bucket through putter.
func New(tree *route.Tree, putter Putter, bucket string, opts ...Option) *Exporter {
	e := &Exporter{
		tree:   tree,
		putter: putter,
		bucket: bucket,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prefix != "" && !strings.HasSuffix(e.prefix, "/") {
		e.prefix += "/"
	}
	return e
}

// StaticPaths returns the full path of every route without parameters.
func StaticPaths(tree *route.Tree) []string {
	var paths []string
	for _, n := range tree.Nodes() {
		if !strings.Contains(n.FullPath(), ":") {
			paths = append(paths, n.FullPath())
		}
	}
	return paths
}

// Key returns the object key for path: "/" maps to "index.html" and
// "/a/b" to "a/b/index.html", below the prefix.
func (e *Exporter) Key(path string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return e.prefix + "index.html"
	}
	return e.prefix + p + "/index.html"
}

// Export renders and uploads paths, or every static path when paths is
// empty. It stops at the first path that fails to render or upload.
func (e *Exporter) Export(ctx context.Context, paths []string) ([]Object, error) {
	if len(paths) == 0 {
		paths = StaticPaths(e.tree)
	}

	objects := make([]Object, 0, len(paths))
	for _, path := range paths {
		page, err := prerender.Render(ctx, e.tree, path, e.render...)
		if err != nil {
			return objects, errors.New("E150").WithDetailf("rendering %s", path).Wrap(err)
		}
		for _, perr := range page.Errors {
			e.logger.Warn("page rendered with errors", "path", page.Path, "error", perr)
		}

		obj := Object{
			Path:   page.Path,
			Key:    e.Key(page.Path),
			Bytes:  len(page.Document),
			Errors: len(page.Errors),
		}
		if !e.dryRun {
			_, err = e.putter.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(e.bucket),
				Key:         aws.String(obj.Key),
				Body:        bytes.NewReader([]byte(page.Document)),
				ContentType: aws.String("text/html; charset=utf-8"),
				Metadata: map[string]string{
					"vldom-path":       page.Path,
					"vldom-components": strings.Join(page.Components, ","),
				},
			})
			if err != nil {
				return objects, errors.New("E150").
					WithDetailf("uploading %s to s3://%s/%s", page.Path, e.bucket, obj.Key).
					Wrap(err)
			}
		}

		e.logger.Info("exported", "path", obj.Path, "key", obj.Key, "bytes", obj.Bytes, "dry_run", e.dryRun)
		objects = append(objects, obj)
	}
	return objects, nil
}
