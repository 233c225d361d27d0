package inertia

import (
	"context"
	"io"
)

// RootTemplate renders the HTML document for first visits and any request
// without X-Inertia. It must embed data.Page so the client can boot:
//
//	<div id="app" data-page="{{ .Page }}"></div>
//
// Implementations ship for a-h/templ (TemplRoot) and html/template
// (HTMLTemplates). Render is called once per request and may run
// concurrently.
type RootTemplate interface {
	Render(ctx context.Context, w io.Writer, data TemplateData) error
}

// TemplateData is passed to the root template.
type TemplateData struct {
	// Page is the page object serialized to JSON. Templates must escape it
	// for the attribute it lands in; html/template and templ both do.
	Page string

	// PageObject is the page before serialization, for templates that want
	// to set the <title> from a prop or similar.
	PageObject *Page

	// Component is the rendered component name.
	Component string
}

// RootTemplateFunc adapts a function to RootTemplate.
type RootTemplateFunc func(ctx context.Context, w io.Writer, data TemplateData) error

// Render implements RootTemplate.
func (f RootTemplateFunc) Render(ctx context.Context, w io.Writer, data TemplateData) error {
	return f(ctx, w, data)
}
