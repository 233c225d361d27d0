package vite

import (
	"html"
	"html/template"
	"strings"
)

// Attr is an HTML attribute. An empty Value renders the name alone, as in
// <script async>.
type Attr struct {
	Name  string
	Value string
}

// ScriptTag renders <script src="src" ...attrs></script>. Attributes keep
// their order.
func ScriptTag(src string, attrs ...Attr) string {
	var b strings.Builder
	b.WriteString(`<script src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteByte('"')
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		if a.Value != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Value))
			b.WriteByte('"')
		}
	}
	b.WriteString(`></script>`)
	return b.String()
}

// LinkTag renders a stylesheet link for href.
func LinkTag(href string) string {
	return `<link rel="stylesheet" href="` + html.EscapeString(href) + `" />`
}

// FuncMap exposes the tag helpers to html/template:
//
//	{{ vite_hmr_client }}
//	{{ vite_react_refresh }}
//	{{ vite_asset "src/main.ts" }}
func (v *Vite) FuncMap() template.FuncMap {
	return template.FuncMap{
		"vite_asset": func(path string) (template.HTML, error) {
			tags, err := v.Asset(path)
			return template.HTML(tags), err
		},
		"vite_hmr_client": func() template.HTML {
			return template.HTML(v.HMRClient())
		},
		"vite_react_refresh": func() template.HTML {
			return template.HTML(v.ReactRefresh())
		},
	}
}
