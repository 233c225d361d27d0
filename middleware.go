package inertia

import "net/http"

// Middleware prepares every request for Inertia rendering:
//
//   - installs the request-scoped shared prop set used by Share
//   - answers 409 with X-Inertia-Location when the client's asset version is
//     stale, without calling next
//   - rewrites 302 redirects to 303 for Inertia PUT, PATCH and DELETE requests
//     so the client follows them with GET
//
// Requests without X-Inertia-Version never conflict.
func (i *Inertia) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(NewContext(r.Context()))

		if client, ok := ClientVersion(r); ok {
			if current := i.version(); client != current {
				i.metrics.versionConflict()
				i.logger.WarnContext(r.Context(), "inertia: asset version conflict",
					"client", client, "server", current, "url", r.URL.String())
				w.Header().Set(HeaderLocation, requestURL(r))
				w.WriteHeader(http.StatusConflict)
				return
			}
		}

		if IsInertia(r) && rewritesRedirect(r.Method) {
			w = &seeOtherWriter{ResponseWriter: w}
		}
		next.ServeHTTP(w, r)
	})
}

func rewritesRedirect(method string) bool {
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// seeOtherWriter turns 302 Found into 303 See Other.
type seeOtherWriter struct {
	http.ResponseWriter
}

func (w *seeOtherWriter) WriteHeader(code int) {
	if code == http.StatusFound {
		code = http.StatusSeeOther
	}
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *seeOtherWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
