package vite

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// AssetTags renders the tags for a manifest entry inside a templ layout:
//
//	<head>
//	    @vite.HMRTags(assets)
//	    @vite.AssetTags(assets, "src/main.ts")
//	</head>
func AssetTags(v *Vite, path string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tags, err := v.Asset(path)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, tags)
		return err
	})
}

// HMRTags renders the HMR client in dev mode and nothing in production.
func HMRTags(v *Vite) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, v.HMRClient())
		return err
	})
}

// ReactRefreshTags renders the React refresh preamble in dev mode. It must
// come before the HMR client.
func ReactRefreshTags(v *Vite) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, v.ReactRefresh())
		return err
	})
}
