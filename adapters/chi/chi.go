// Package inertiachi provides chi router integration for inertia.
//
//	r := chi.NewRouter()
//	inertiachi.Use(r, app)
//	inertiachi.MountAssets(r, assets)
//	r.Method("GET", "/contacts", app.Handler("Contacts/Index", loadContacts))
package inertiachi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pthm/inertia"
	"github.com/pthm/inertia/lib/vite"
)

// Use installs the inertia middleware on r. Call it before registering
// routes; chi rejects middleware added after the first route.
func Use(r chi.Router, app *inertia.Inertia) {
	r.Use(app.Middleware)
}

// Page registers a GET route rendering component with props from fn.
func Page(r chi.Router, pattern string, app *inertia.Inertia, component string, fn func(r *http.Request) (inertia.Props, error)) {
	r.Method(http.MethodGet, pattern, app.Handler(component, fn))
}

// MountAssets serves the Vite dist directory at its mount path. It does
// nothing in dev mode or when assets are served from StaticURL.
func MountAssets(r chi.Router, v *vite.Vite) {
	mount := v.MountPath()
	if mount == "" {
		return
	}
	h := v.Handler()
	r.Method(http.MethodGet, mount+"*", h)
	r.Method(http.MethodHead, mount+"*", h)
}

// Param returns a URL parameter, for use in prop loaders passed to Page.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
