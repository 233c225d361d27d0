package inertia

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
)

// RootID is the id of the element the client mounts into.
const RootID = "app"

// TemplRoot adapts a templ layout to RootTemplate.
//
//	templ Layout(data inertia.TemplateData) {
//	    <html>
//	        <head>@vite.AssetTags(assets, "src/main.ts")</head>
//	        <body>@inertia.RootElement(data)</body>
//	    </html>
//	}
//
//	app := inertia.New(inertia.WithRootTemplate(inertia.TemplRoot(Layout)))
type TemplRoot func(data TemplateData) templ.Component

// Render implements RootTemplate.
func (f TemplRoot) Render(ctx context.Context, w io.Writer, data TemplateData) error {
	return f(data).Render(ctx, w)
}

// RootElement renders the element the client mounts into, with the page
// object in its data-page attribute.
func RootElement(data TemplateData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rootElement(data.Page))
		return err
	})
}

func rootElement(page string) string {
	return `<div id="` + RootID + `" data-page="` + html.EscapeString(page) + `"></div>`
}

// DefaultRoot returns a minimal HTML document hosting the app. head
// components, usually vite.HMRTags and vite.AssetTags, are rendered inside
// <head> in order.
func DefaultRoot(head ...templ.Component) TemplRoot {
	return func(data TemplateData) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>\n<head>\n"+
				`<meta charset="utf-8" />`+"\n"+
				`<meta name="viewport" content="width=device-width, initial-scale=1" />`+"\n"); err != nil {
				return err
			}
			for _, c := range head {
				if err := c.Render(ctx, w); err != nil {
					return err
				}
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
				return err
			}
			if err := RootElement(data).Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "\n</body>\n</html>\n")
			return err
		})
	}
}

// HTMLTemplates renders the root document with html/template.
//
// Every *.html file in the directory is parsed into one set, so layouts can
// use {{ template "partial.html" . }}. Templates get these functions:
//
//	{{ inertia .Page }}            root element with the page embedded
//	{{ vite_hmr_client }}          when built with vite.FuncMap
//	{{ vite_asset "src/main.ts" }}
//	{{ vite_react_refresh }}
type HTMLTemplates struct {
	set  *template.Template
	root string
}

// ParseTemplates parses dir/*.html and selects root as the document template.
// ".html" is appended to root when missing. funcs are merged over the
// built-in functions; pass (*vite.Vite).FuncMap() to enable asset tags.
func ParseTemplates(dir, root string, funcs ...template.FuncMap) (*HTMLTemplates, error) {
	if root == "" {
		return nil, ErrNoRootTemplate
	}
	if !strings.HasSuffix(root, ".html") {
		root += ".html"
	}

	fm := template.FuncMap{
		"inertia": func(page string) template.HTML {
			return template.HTML(rootElement(page))
		},
	}
	for _, f := range funcs {
		for name, fn := range f {
			fm[name] = fn
		}
	}

	set, err := template.New("").Funcs(fm).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateNotFound, err)
	}
	if set.Lookup(root) == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrTemplateNotFound, root, dir)
	}
	return &HTMLTemplates{set: set, root: root}, nil
}

// Render implements RootTemplate.
func (t *HTMLTemplates) Render(ctx context.Context, w io.Writer, data TemplateData) error {
	return t.set.ExecuteTemplate(w, t.root, data)
}

// Root returns the name of the document template.
func (t *HTMLTemplates) Root() string {
	return t.root
}
