package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"text/template"
)

// render produces the gofmt-formatted constants file.
func (g *Generator) render(pagesDir string, pages []PageInfo) ([]byte, error) {
	tmpl, err := template.New("pages").Parse(pagesTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		Header  string
		Package string
		Dir     string
		Pages   []PageInfo
	}{
		Header:  header,
		Package: g.opts.Package,
		Dir:     filepath.ToSlash(pagesDir),
		Pages:   pages,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

const pagesTemplate = `{{ .Header }}

package {{ .Package }}

// Page components found under {{ .Dir }}.
const (
{{- range .Pages }}
	{{ .Ident }} = {{ printf "%q" .Name }} // {{ .Source }}
{{- end }}
)

// Pages lists every page component name.
var Pages = []string{
{{- range .Pages }}
	{{ .Ident }},
{{- end }}
}
`
