package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pthm/inertia/lib/vite"
)

type putCall struct {
	bucket       string
	key          string
	contentType  string
	cacheControl string
	body         string
}

type fakePutter struct {
	mu    sync.Mutex
	calls map[string]putCall
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]putCall)
	}
	key := aws.ToString(in.Key)
	if _, dup := f.calls[key]; dup {
		return nil, errors.New("duplicate upload of " + key)
	}
	f.calls[key] = putCall{
		bucket:       aws.ToString(in.Bucket),
		key:          key,
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
		body:         string(body),
	}
	return &s3.PutObjectOutput{}, nil
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const manifestJSON = `{
  "_shared.js": {"file": "assets/shared.js", "css": ["assets/shared.css"]},
  "main.js": {
    "file": "assets/main.js",
    "isEntry": true,
    "imports": ["_shared.js"],
    "css": ["assets/main.css", "assets/shared.css"],
    "assets": ["assets/logo.svg"]
  },
  "admin.js": {"file": "assets/admin.js", "isEntry": true, "imports": ["_shared.js"]}
}`

func writeDist(t *testing.T) (string, vite.Manifest) {
	t.Helper()
	m, err := vite.ParseManifest([]byte(manifestJSON))
	if err != nil {
		t.Fatal(err)
	}

	dist := t.TempDir()
	for _, file := range m.Files() {
		path := filepath.Join(dist, filepath.FromSlash(file))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content of "+file), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dist, m
}

func TestNew(t *testing.T) {
	if _, err := New(&fakePutter{}, Config{}); !errors.Is(err, ErrNoBucket) {
		t.Errorf("New() without bucket = %v, want ErrNoBucket", err)
	}
	if _, err := New(nil, Config{Bucket: "b"}); !errors.Is(err, ErrNoClient) {
		t.Errorf("New() without client = %v, want ErrNoClient", err)
	}
	if _, err := New(nil, Config{Bucket: "b"}, DryRun()); err != nil {
		t.Errorf("New() dry run without client = %v, want nil", err)
	}
}

func TestPublish(t *testing.T) {
	dist, m := writeDist(t)
	fake := &fakePutter{}

	p, err := New(fake, Config{Bucket: "assets-bucket", Prefix: "build"}, WithLogger(quietLogger), WithConcurrency(2))
	if err != nil {
		t.Fatal(err)
	}

	objects, err := p.Publish(context.Background(), dist, m)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	wantFiles := []string{
		"assets/admin.js",
		"assets/logo.svg",
		"assets/main.css",
		"assets/main.js",
		"assets/shared.css",
		"assets/shared.js",
	}
	if len(objects) != len(wantFiles) {
		t.Fatalf("Publish() returned %d objects, want %d", len(objects), len(wantFiles))
	}
	for i, file := range wantFiles {
		obj := objects[i]
		if obj.File != file || obj.Key != "build/"+file {
			t.Errorf("objects[%d] = %+v, want file %s", i, obj, file)
		}

		call, ok := fake.calls["build/"+file]
		if !ok {
			t.Errorf("%s not uploaded", file)
			continue
		}
		if call.bucket != "assets-bucket" {
			t.Errorf("bucket = %q", call.bucket)
		}
		if call.cacheControl != DefaultCacheControl {
			t.Errorf("cache control = %q", call.cacheControl)
		}
		if call.body != "content of "+file {
			t.Errorf("body of %s = %q", file, call.body)
		}
		if call.contentType != ContentType(file) {
			t.Errorf("content type of %s = %q", file, call.contentType)
		}
	}
}

func TestPublishDryRun(t *testing.T) {
	dist, m := writeDist(t)

	p, err := New(nil, Config{Bucket: "b"}, DryRun(), WithLogger(quietLogger))
	if err != nil {
		t.Fatal(err)
	}
	objects, err := p.Publish(context.Background(), dist, m)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(objects) != 6 {
		t.Errorf("planned %d objects, want 6", len(objects))
	}
	if objects[0].Key != "assets/admin.js" || objects[0].Size != int64(len("content of assets/admin.js")) {
		t.Errorf("objects[0] = %+v", objects[0])
	}
}

func TestPublishErrors(t *testing.T) {
	dist, m := writeDist(t)

	t.Run("upload fails", func(t *testing.T) {
		boom := errors.New("access denied")
		p, _ := New(&fakePutter{err: boom}, Config{Bucket: "b"}, WithLogger(quietLogger))
		if _, err := p.Publish(context.Background(), dist, m); !errors.Is(err, boom) {
			t.Errorf("Publish() = %v, want %v", err, boom)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := os.Remove(filepath.Join(dist, "assets", "logo.svg")); err != nil {
			t.Fatal(err)
		}
		p, _ := New(&fakePutter{}, Config{Bucket: "b"}, WithLogger(quietLogger))
		if _, err := p.Publish(context.Background(), dist, m); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Publish() = %v, want os.ErrNotExist", err)
		}
	})
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix   string
		expected string
	}{
		{"", "assets/main.js"},
		{"build", "build/assets/main.js"},
		{"build/", "build/assets/main.js"},
		{"/cdn/v1/", "/cdn/v1/assets/main.js"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			p, _ := New(nil, Config{Bucket: "b", Prefix: tt.prefix}, DryRun())
			if got := p.Key("assets/main.js"); got != tt.expected {
				t.Errorf("Key() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"assets/main.js", "text/javascript; charset=utf-8"},
		{"assets/main.css", "text/css; charset=utf-8"},
		{"assets/main.js.map", "application/json"},
		{"assets/logo.svg", "image/svg+xml"},
		{"assets/font.unknownext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := ContentType(tt.file); got != tt.expected {
				t.Errorf("ContentType(%q) = %q, want %q", tt.file, got, tt.expected)
			}
		})
	}
}

func TestEnvCredentials(t *testing.T) {
	env := map[string]string{}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	provider := envCredentials(lookup)

	if _, err := provider.Retrieve(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Retrieve() without env = %v, want ErrNoCredentials", err)
	}

	env["AWS_ACCESS_KEY_ID"] = "AKID"
	env["AWS_SECRET_ACCESS_KEY"] = "secret"
	env["AWS_SESSION_TOKEN"] = "token"
	creds, err := provider.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "secret" || creds.SessionToken != "token" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(ClientConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	opts := client.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q", opts.Region)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" || !opts.UsePathStyle {
		t.Errorf("endpoint = %q, path style = %v", aws.ToString(opts.BaseEndpoint), opts.UsePathStyle)
	}

	var _ ObjectPutter = client
}
