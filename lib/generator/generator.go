// Package generator writes Go constants for the page components of a
// frontend, so handlers can call Render(w, r, pages.PageUsersIndex, ...)
// instead of repeating "Users/Index" by hand.
package generator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// GeneratedSuffix is the file name suffix of generated files. Clean only
// removes files carrying it.
const GeneratedSuffix = "_pages.go"

// header marks generated files. Clean refuses to remove files without it.
const header = "// Code generated by inertia generate. DO NOT EDIT."

// Extensions are the file extensions treated as page components.
var Extensions = []string{".vue", ".jsx", ".tsx", ".svelte", ".js", ".ts"}

// ErrDuplicateIdent is returned when two pages map to the same Go identifier,
// for example "users/index.vue" and "Users/Index.tsx".
var ErrDuplicateIdent = errors.New("generator: duplicate page identifier")

// Options configures the generator.
type Options struct {
	// Out is the output file. Defaults to "inertia_pages.go".
	Out string

	// Package is the package clause of the output. Defaults to "pages".
	Package string

	// DryRun prints the generated source instead of writing it.
	DryRun bool

	// Log receives progress lines and dry-run output. Defaults to os.Stdout.
	Log io.Writer
}

// Generator generates page constants.
type Generator struct {
	opts Options
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Out == "" {
		opts.Out = "inertia" + GeneratedSuffix
	}
	if opts.Package == "" {
		opts.Package = "pages"
	}
	if opts.Log == nil {
		opts.Log = os.Stdout
	}
	return &Generator{opts: opts}
}

// PageInfo describes a discovered page component.
type PageInfo struct {
	Source string // path relative to the pages directory, e.g. "Users/Index.vue"
	Name   string // component name, e.g. "Users/Index"
	Ident  string // Go identifier, e.g. "PageUsersIndex"
}

// Generate discovers the pages under pagesDir and writes the constants file.
func (g *Generator) Generate(pagesDir string) error {
	pages, err := Discover(pagesDir)
	if err != nil {
		return err
	}

	code, err := g.render(pagesDir, pages)
	if err != nil {
		return err
	}

	if g.opts.DryRun {
		fmt.Fprintf(g.opts.Log, "would write %s (%d pages)\n", g.opts.Out, len(pages))
		_, err := g.opts.Log.Write(code)
		return err
	}

	fmt.Fprintf(g.opts.Log, "generating %s (%d pages)\n", g.opts.Out, len(pages))
	if dir := filepath.Dir(g.opts.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(g.opts.Out, code, 0o644)
}

// Clean removes generated files from dir. Files ending in GeneratedSuffix
// that were not written by Generate are left alone.
func (g *Generator) Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), GeneratedSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		generated, err := isGenerated(path)
		if err != nil {
			return err
		}
		if !generated {
			continue
		}
		fmt.Fprintf(g.opts.Log, "removing %s\n", path)
		if !g.opts.DryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}

	return nil
}

func isGenerated(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(string(data), header), nil
}

// Discover walks pagesDir for page components, sorted by name.
//
// Hidden directories, node_modules, and test or declaration files
// (*.test.ts, *.spec.tsx, *.d.ts) are skipped.
func Discover(pagesDir string) ([]PageInfo, error) {
	var pages []PageInfo
	seen := make(map[string]string)

	err := filepath.WalkDir(pagesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != pagesDir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isPage(name) {
			return nil
		}

		rel, err := filepath.Rel(pagesDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		component := strings.TrimSuffix(rel, filepath.Ext(rel))

		ident := Ident(component)
		if prev, ok := seen[ident]; ok {
			return fmt.Errorf("%w: %s for %s and %s", ErrDuplicateIdent, ident, prev, rel)
		}
		seen[ident] = rel

		pages = append(pages, PageInfo{Source: rel, Name: component, Ident: ident})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(pages, func(a, b PageInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pages, nil
}

func isPage(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".d.ts") {
		return false
	}
	ext := filepath.Ext(name)
	if !slices.Contains(Extensions, ext) {
		return false
	}
	stem := strings.TrimSuffix(name, ext)
	return !strings.HasSuffix(stem, ".test") && !strings.HasSuffix(stem, ".spec")
}

// Ident converts a component name to an exported Go identifier:
// "Users/Index" becomes "PageUsersIndex" and "auth/reset-password" becomes
// "PageAuthResetPassword".
func Ident(component string) string {
	var b strings.Builder
	b.WriteString("Page")
	upper := true
	for _, r := range component {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
