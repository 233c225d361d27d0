package generator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("export default {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestIdent(t *testing.T) {
	tests := []struct {
		component string
		expected  string
	}{
		{"Home", "PageHome"},
		{"Users/Index", "PageUsersIndex"},
		{"auth/reset-password", "PageAuthResetPassword"},
		{"settings/two_factor", "PageSettingsTwoFactor"},
		{"errors/404", "PageErrors404"},
		{"Café/Menu", "PageCaféMenu"},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			if got := Ident(tt.component); got != tt.expected {
				t.Errorf("Ident(%q) = %q, want %q", tt.component, got, tt.expected)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"Home.vue",
		"Users/Index.tsx",
		"Users/Show.jsx",
		"auth/login.svelte",
		"Users/Index.test.tsx",
		"Users/Show.spec.js",
		"types.d.ts",
		"styles.css",
		".hidden/Secret.vue",
		"node_modules/pkg/index.js",
	)

	pages, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	expected := []PageInfo{
		{Source: "Home.vue", Name: "Home", Ident: "PageHome"},
		{Source: "Users/Index.tsx", Name: "Users/Index", Ident: "PageUsersIndex"},
		{Source: "Users/Show.jsx", Name: "Users/Show", Ident: "PageUsersShow"},
		{Source: "auth/login.svelte", Name: "auth/login", Ident: "PageAuthLogin"},
	}
	if len(pages) != len(expected) {
		t.Fatalf("Discover() = %+v, want %d pages", pages, len(expected))
	}
	for i := range expected {
		if pages[i] != expected[i] {
			t.Errorf("pages[%d] = %+v, want %+v", i, pages[i], expected[i])
		}
	}
}

func TestDiscoverDuplicateIdent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "users/index.vue", "Users/Index.tsx")

	_, err := Discover(dir)
	if !errors.Is(err, ErrDuplicateIdent) {
		t.Errorf("Discover() = %v, want ErrDuplicateIdent", err)
	}
}

func TestGenerate(t *testing.T) {
	pagesDir := t.TempDir()
	writeFiles(t, pagesDir, "Home.vue", "Users/Index.vue")
	out := filepath.Join(t.TempDir(), "gen", "app_pages.go")

	var log bytes.Buffer
	g := New(Options{Out: out, Package: "views", Log: &log})
	if err := g.Generate(pagesDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	code := string(data)

	for _, want := range []string{
		header,
		"package views",
		`PageHome       = "Home"        // Home.vue`,
		`PageUsersIndex = "Users/Index" // Users/Index.vue`,
		"var Pages = []string{\n\tPageHome,\n\tPageUsersIndex,\n}",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q:\n%s", want, code)
		}
	}
	if !strings.Contains(log.String(), "generating "+out) {
		t.Errorf("log = %q", log.String())
	}
}

func TestGenerateDryRun(t *testing.T) {
	pagesDir := t.TempDir()
	writeFiles(t, pagesDir, "Home.vue")
	out := filepath.Join(t.TempDir(), "inertia_pages.go")

	var log bytes.Buffer
	g := New(Options{Out: out, DryRun: true, Log: &log})
	if err := g.Generate(pagesDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("dry run wrote %s", out)
	}
	if !strings.Contains(log.String(), "package pages") {
		t.Errorf("dry run output = %q, want generated source", log.String())
	}
}

func TestGenerateMissingDir(t *testing.T) {
	g := New(Options{Log: &bytes.Buffer{}})
	if err := g.Generate(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Generate() error = nil for a missing directory")
	}
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "inertia_pages.go")
	handWritten := filepath.Join(dir, "legacy_pages.go")
	other := filepath.Join(dir, "main.go")

	files := map[string]string{
		generated:   header + "\n\npackage pages\n",
		handWritten: "package pages\n",
		other:       header + "\n\npackage pages\n",
	}
	for path, body := range files {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	g := New(Options{Log: &bytes.Buffer{}})
	if err := g.Clean(dir); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if _, err := os.Stat(generated); !os.IsNotExist(err) {
		t.Error("generated file not removed")
	}
	for _, keep := range []string{handWritten, other} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s removed", filepath.Base(keep))
		}
	}

	if err := g.Clean(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("Clean(missing) = %v, want nil", err)
	}
}
