package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm/inertia/lib/publish"
	"github.com/pthm/inertia/lib/vite"
)

const testManifest = `{
  "src/main.ts": {
    "file": "assets/main-abc.js",
    "isEntry": true,
    "css": ["assets/main-abc.css"]
  }
}`

// project writes a minimal app and returns the path of its config file.
func project(t *testing.T, extra string) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"templates/app.html":       `{{ vite_asset "src/main.ts" }}{{ inertia .Page }}`,
		"dist/.vite/manifest.json": testManifest,
		"dist/assets/main-abc.js":  "console.log(1)",
		"dist/assets/main-abc.css": "body{}",
		"pages/Home.vue":           "<template />",
		"pages/Contacts/Index.vue": "<template />",
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	conf := `templates_dir = "` + filepath.ToSlash(filepath.Join(root, "templates")) + `"

[vite]
manifest_path   = "` + filepath.ToSlash(filepath.Join(root, "dist", ".vite", "manifest.json")) + `"
dist_path       = "` + filepath.ToSlash(filepath.Join(root, "dist")) + `"
dist_uri_prefix = "/build"
` + extra

	path := filepath.Join(root, "inertia.toml")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTags(t *testing.T) {
	conf := project(t, "")

	out, err := run(t, "tags", "--config", conf, "/src/main.ts")
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	want := `<link rel="stylesheet" href="/build/assets/main-abc.css" />` + "\n" +
		`<script src="/build/assets/main-abc.js" type="module"></script>` + "\n"
	if out != want {
		t.Errorf("tags output =\n%s\nwant\n%s", out, want)
	}
}

func TestTagsDevMode(t *testing.T) {
	conf := project(t, "")
	t.Setenv("FV_VITE_DEV_MODE", "true")

	out, err := run(t, "tags", "--config", conf, "--react", "src/main.tsx")
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	if last != `<script src="http://localhost:5173/src/main.tsx" type="module"></script>` {
		t.Errorf("entry tag = %q", last)
	}
	if !strings.Contains(out, "@react-refresh") || !strings.Contains(out, "@vite/client") {
		t.Errorf("dev output missing preamble or HMR client:\n%s", out)
	}
	if strings.Index(out, "@react-refresh") > strings.Index(out, "@vite/client") {
		t.Error("React refresh preamble must come before the HMR client")
	}
}

func TestTagsMissingEntry(t *testing.T) {
	conf := project(t, "")
	if _, err := run(t, "tags", "--config", conf, "src/nope.ts"); !errors.Is(err, vite.ErrAssetNotFound) {
		t.Errorf("tags error = %v, want ErrAssetNotFound", err)
	}
}

func TestVersion(t *testing.T) {
	conf := project(t, "")

	out, err := run(t, "version", "--config", conf)
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if v := strings.TrimSpace(out); len(v) != 64 {
		t.Errorf("version = %q, want SHA-256 hex", v)
	}

	t.Setenv("FV_INERTIA_ASSETS_VERSION", "release-9")
	out, err = run(t, "version", "--config", conf)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "release-9" {
		t.Errorf("version = %q, want configured version", out)
	}
}

func TestCheck(t *testing.T) {
	conf := project(t, "")

	out, err := run(t, "check", "--config", conf, "src/main.ts")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	for _, want := range []string{"config ok", "manifest ok (1 entries, 2 files", "entry src/main.ts ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "check", "--config", conf, "src/admin.ts"); !errors.Is(err, vite.ErrAssetNotFound) {
		t.Errorf("check error = %v, want ErrAssetNotFound", err)
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	if _, err := run(t, "check", "--config", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("check with a missing explicit config succeeded")
	}
}

func TestGenerateAndClean(t *testing.T) {
	conf := project(t, "")
	root := filepath.Dir(conf)
	outFile := filepath.Join(root, "internal", "pages", "inertia_pages.go")

	if _, err := run(t, "generate", "--out", outFile, filepath.Join(root, "pages")); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `PageContactsIndex = "Contacts/Index"`) {
		t.Errorf("generated file:\n%s", data)
	}

	if _, err := run(t, "clean", filepath.Dir(outFile)); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if _, err := os.Stat(outFile); !os.IsNotExist(err) {
		t.Error("clean left the generated file")
	}
}

func TestPublishDryRun(t *testing.T) {
	conf := project(t, "\n[publish]\nbucket = \"assets\"\nprefix = \"v1\"\n")

	out, err := run(t, "publish", "--config", conf, "--dry-run")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	for _, want := range []string{
		"assets/main-abc.css -> s3://assets/v1/assets/main-abc.css (text/css; charset=utf-8)",
		"assets/main-abc.js -> s3://assets/v1/assets/main-abc.js",
		"would upload 2 files, 20 bytes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("publish output missing %q:\n%s", want, out)
		}
	}
}

func TestPublishWithoutBucket(t *testing.T) {
	conf := project(t, "")
	if _, err := run(t, "publish", "--config", conf, "--dry-run"); !errors.Is(err, publish.ErrNoBucket) {
		t.Errorf("publish error = %v, want ErrNoBucket", err)
	}
}
