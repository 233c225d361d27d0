// Package publish uploads a Vite build to S3-compatible object storage so the
// server can point vite.Config.StaticURL at a bucket or CDN in front of it.
//
// Only files the manifest references are uploaded; the manifest itself stays
// with the server.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/inertia/lib/vite"
)

// DefaultCacheControl marks hashed build output as cacheable forever.
const DefaultCacheControl = "public, max-age=31536000, immutable"

// Sentinel errors returned by New.
var (
	ErrNoBucket = errors.New("publish: bucket is required")
	ErrNoClient = errors.New("publish: no object store client")
)

// ObjectPutter is the subset of *s3.Client used by Publisher.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config configures a Publisher.
type Config struct {
	Bucket       string
	Prefix       string // key prefix, e.g. "build/"; joined with "/"
	CacheControl string // defaults to DefaultCacheControl
}

// Object is one uploaded (or, in a dry run, planned) file.
type Object struct {
	File        string // path relative to the dist directory
	Key         string
	ContentType string
	Size        int64
}

// Publisher uploads manifest-referenced files.
type Publisher struct {
	client      ObjectPutter
	cfg         Config
	logger      *slog.Logger
	concurrency int
	dryRun      bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithConcurrency sets how many uploads run at once (default 4).
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// DryRun plans uploads without calling the client.
func DryRun() Option {
	return func(p *Publisher) {
		p.dryRun = true
	}
}

// New creates a Publisher. client may be nil in a dry run.
func New(client ObjectPutter, cfg Config, opts ...Option) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = DefaultCacheControl
	}
	p := &Publisher{
		client:      client,
		cfg:         cfg,
		logger:      slog.Default(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil && !p.dryRun {
		return nil, ErrNoClient
	}
	return p, nil
}

// Key returns the object key for a dist-relative file.
func (p *Publisher) Key(file string) string {
	if p.cfg.Prefix == "" {
		return file
	}
	return path.Join(p.cfg.Prefix, file)
}

// Publish uploads every file m references from distPath. Each file is
// uploaded once even when several chunks share it. The returned objects are
// sorted by file.
func (p *Publisher) Publish(ctx context.Context, distPath string, m vite.Manifest) ([]Object, error) {
	files := m.Files()
	objects := make([]Object, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, file := range files {
		if file == "" {
			continue
		}
		g.Go(func() error {
			obj, err := p.upload(ctx, distPath, file)
			if err != nil {
				return fmt.Errorf("publish %s: %w", file, err)
			}
			mu.Lock()
			objects = append(objects, obj)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(objects, func(a, b Object) int {
		return strings.Compare(a.File, b.File)
	})
	return objects, nil
}

func (p *Publisher) upload(ctx context.Context, distPath, file string) (Object, error) {
	f, err := os.Open(filepath.Join(distPath, filepath.FromSlash(file)))
	if err != nil {
		return Object{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Object{}, err
	}

	obj := Object{
		File:        file,
		Key:         p.Key(file),
		ContentType: ContentType(file),
		Size:        info.Size(),
	}

	if p.dryRun {
		p.logger.InfoContext(ctx, "would upload", "file", file, "key", obj.Key, "size", obj.Size)
		return obj, nil
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.Bucket),
		Key:           aws.String(obj.Key),
		Body:          f,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(obj.ContentType),
		CacheControl:  aws.String(p.cfg.CacheControl),
	})
	if err != nil {
		return Object{}, err
	}
	p.logger.InfoContext(ctx, "uploaded", "file", file, "key", obj.Key, "size", obj.Size)
	return obj, nil
}

// ContentType guesses a file's MIME type from its extension.
func ContentType(file string) string {
	switch path.Ext(file) {
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".map":
		return "application/json"
	}
	if t := mime.TypeByExtension(path.Ext(file)); t != "" {
		return t
	}
	return "application/octet-stream"
}
