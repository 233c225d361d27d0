package inertia

import "encoding/json"

// Page is the Inertia page object sent to the client, either as the JSON body
// of an Inertia request or embedded in the root template on a first visit.
//
// Metadata fields are omitted when empty. Version is null when the server has
// no asset version configured.
type Page struct {
	Component      string              `json:"component"`
	Props          Props               `json:"props"`
	URL            string              `json:"url"`
	Version        *string             `json:"version"`
	DeferredProps  map[string][]string `json:"deferredProps,omitempty"`
	MergeProps     []string            `json:"mergeProps,omitempty"`
	PrependProps   []string            `json:"prependProps,omitempty"`
	DeepMergeProps []string            `json:"deepMergeProps,omitempty"`
	MatchPropsOn   map[string]string   `json:"matchPropsOn,omitempty"`
}

// VersionString returns the version or "" when unset.
func (p *Page) VersionString() string {
	if p.Version == nil {
		return ""
	}
	return *p.Version
}

// JSON returns the page serialized as a string, the form embedded in the
// root template's data-page attribute.
func (p *Page) JSON() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParsePage decodes a page object produced by Page.JSON or an Inertia JSON
// response body.
func ParsePage(data []byte) (*Page, error) {
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func versionPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
