package vite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func renderString(t *testing.T, c templ.Component) (string, error) {
	t.Helper()
	var b strings.Builder
	err := c.Render(context.Background(), &b)
	return b.String(), err
}

func TestTemplComponents(t *testing.T) {
	dev := newDev(t)
	prod := newProd(t, Config{DistURIPrefix: "/static"})

	tests := []struct {
		name      string
		component templ.Component
		want      string
	}{
		{
			"asset dev",
			AssetTags(dev, "src/main.ts"),
			`<script src="http://localhost:5173/src/main.ts" type="module"></script>`,
		},
		{
			"asset production",
			AssetTags(prod, "views/bar.js"),
			`<link rel="stylesheet" href="/static/assets/shared-ChJ_j-JJ.css" />` + "\n" +
				`<script src="/static/assets/bar-gkvgaI9m.js" type="module"></script>`,
		},
		{
			"hmr dev",
			HMRTags(dev),
			`<script src="http://localhost:5173/@vite/client" type="module"></script>`,
		},
		{"hmr production", HMRTags(prod), ""},
		{"react refresh dev", ReactRefreshTags(dev), dev.ReactRefresh()},
		{"react refresh production", ReactRefreshTags(prod), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderString(t, tt.component)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}

	if !strings.Contains(dev.ReactRefresh(), "http://localhost:5173/@react-refresh") {
		t.Errorf("ReactRefresh() = %q, want dev server import", dev.ReactRefresh())
	}
}

func TestAssetTagsNotFound(t *testing.T) {
	v := newProd(t, Config{DistURIPrefix: "/static"})

	got, err := renderString(t, AssetTags(v, "src/missing.ts"))
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("Render() error = %v, want ErrAssetNotFound", err)
	}
	if got != "" {
		t.Errorf("Render() wrote %q before failing", got)
	}
}
