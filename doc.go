// Package inertia is a server-side adapter for the Inertia.js page protocol,
// built for net/http, a-h/templ and Vite.
//
// The server keeps routing and controllers. Each handler names a client-side
// page component and hands over its props; the client renders the component
// and performs every later navigation over XHR, receiving only the page
// object as JSON.
//
// # Rendering
//
// Build one Inertia at startup and call Render from handlers:
//
//	app := inertia.New(
//	    inertia.WithRootTemplate(inertia.TemplRoot(Layout)),
//	    inertia.WithVersionFunc(assets.Version),
//	)
//
//	mux.Handle("/contacts", app.Middleware(http.HandlerFunc(
//	    func(w http.ResponseWriter, r *http.Request) {
//	        app.Render(w, r, "Contacts/Index", inertia.Props{
//	            "contacts": contacts,
//	        })
//	    })))
//
// The first visit receives the root template with the page object embedded
// in the data-page attribute of <div id="app">. Requests carrying
// X-Inertia receive the page object itself with X-Inertia: true.
//
// # Props
//
// Props values may be plain data, nested Props, thunks, or markers:
//
//	inertia.Props{
//	    "user":     user,                                   // always sent
//	    "stats":    func() any { return loadStats() },      // lazily evaluated
//	    "filters":  inertia.Optional(loadFilters),          // partial reloads only
//	    "comments": inertia.Defer(loadComments, "content"), // fetched after load
//	    "feed":     inertia.Merge(nextPage).MatchOn("id"),  // appended by the client
//	}
//
// A partial reload (X-Inertia-Partial-Data with a matching
// X-Inertia-Partial-Component) sends only the requested keys, minus those in
// X-Inertia-Partial-Except. Full loads skip every marker except Always.
// Thunks are called only for props that are actually sent; they are found
// inside nested maps but never inside slices.
//
// Deferred props are listed under deferredProps on the first load and the
// client fetches each group with a partial reload. Merge props add their
// strategy to mergeProps, prependProps, deepMergeProps and matchPropsOn on
// every response.
//
// # Shared Props and Flash
//
// Application-wide props are fixed at construction with WithSharedProps.
// Request-scoped props, such as the current user, are added by middleware
// with Share. Neither uses package state.
//
// Flash values survive exactly one redirect:
//
//	app.Flash(w, r, inertia.FlashSuccess, "Contact saved.")
//	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
//
// They appear under the "flash" prop, which is always present. Flash needs a
// FlashStore; CookieFlashStore keeps values in a signed cookie and
// MemoryFlashStore in process memory.
//
// # Asset Versioning
//
// Middleware answers 409 with X-Inertia-Location when the client's
// X-Inertia-Version differs from the server's, prompting a full reload that
// picks up the new bundle. Use (*vite.Vite).Version to derive the version
// from the build manifest.
//
// # Configuration
//
// FromConfig builds an Inertia and its *vite.Vite from a config.Config
// loaded by lib/config, parsing the root template from a directory with the
// vite_asset, vite_hmr_client and inertia template functions. The
// adapters/chi and adapters/echo packages mount the middleware and the
// built assets on those routers.
//
// # Testing
//
// NewTestRequest builds protocol requests and decodes the resulting page
// from either response form:
//
//	res, _ := inertia.NewTestRequest("GET", "/contacts").Inertia().Execute(h)
//	res.HasProp("contacts")
package inertia
