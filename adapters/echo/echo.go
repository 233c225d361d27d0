// Package inertiaecho provides Echo framework integration for inertia.
//
// Install the middleware on the Echo instance or a group, then render pages
// from handlers:
//
//	e := echo.New()
//	e.Use(inertiaecho.Middleware(app))
//	inertiaecho.MountAssets(e, assets)
//
//	e.GET("/contacts", func(c echo.Context) error {
//	    return inertiaecho.Render(c, app, "Contacts/Index", inertia.Props{
//	        "contacts": loadContacts(c.Request().Context()),
//	    })
//	})
package inertiaecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pthm/inertia"
	"github.com/pthm/inertia/lib/vite"
)

// Middleware adapts (*inertia.Inertia).Middleware to Echo. Version conflicts
// are answered before the route handler runs, and 302 redirects from
// Inertia PUT, PATCH and DELETE requests become 303.
func Middleware(app *inertia.Inertia) echo.MiddlewareFunc {
	return echo.WrapMiddleware(app.Middleware)
}

// Render writes the page for component to the Echo response.
//
//	func show(c echo.Context) error {
//	    return inertiaecho.Render(c, app, "Contacts/Show", inertia.Props{"contact": contact})
//	}
func Render(c echo.Context, app *inertia.Inertia, component string, props inertia.Props) error {
	return app.Render(c.Response(), c.Request(), component, props)
}

// Handler returns an Echo handler rendering component with props computed by
// fn. Errors are returned to Echo's HTTPErrorHandler.
func Handler(app *inertia.Inertia, component string, fn func(c echo.Context) (inertia.Props, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var props inertia.Props
		if fn != nil {
			p, err := fn(c)
			if err != nil {
				return err
			}
			props = p
		}
		return Render(c, app, component, props)
	}
}

// Flash stores a one-shot value for the next page of the same session.
func Flash(c echo.Context, app *inertia.Inertia, key string, value any) error {
	return app.Flash(c.Response(), c.Request(), key, value)
}

// Location redirects to a URL outside the Inertia app.
func Location(c echo.Context, app *inertia.Inertia, url string) error {
	app.Location(c.Response(), c.Request(), url)
	return nil
}

// MountAssets serves the Vite dist directory at its mount path. It does
// nothing in dev mode or when assets are served from StaticURL.
func MountAssets(e *echo.Echo, v *vite.Vite) {
	mount := v.MountPath()
	if mount == "" {
		return
	}
	h := echo.WrapHandler(v.Handler())
	e.Match([]string{http.MethodGet, http.MethodHead}, mount+"*", h)
}
