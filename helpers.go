package inertia

import (
	"net/http"
	"strings"
)

// Protocol headers exchanged with the Inertia client.
const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialData      = "X-Inertia-Partial-Data"
	HeaderPartialExcept    = "X-Inertia-Partial-Except"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
)

// IsInertia returns true if the request was sent by the Inertia client.
//
// The client sends X-Inertia on every navigation after the first page load.
// Only the presence of the header matters, not its value:
//
//	if inertia.IsInertia(r) {
//	    // JSON page object will be returned
//	}
func IsInertia(r *http.Request) bool {
	_, ok := r.Header[http.CanonicalHeaderKey(HeaderInertia)]
	return ok
}

// ClientVersion returns the asset version the client was built against.
//
// The second return value reports whether the header was sent at all;
// an absent header never triggers a version conflict.
func ClientVersion(r *http.Request) (string, bool) {
	values, ok := r.Header[http.CanonicalHeaderKey(HeaderVersion)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// PartialComponent returns the component named by X-Inertia-Partial-Component.
//
// Returns empty string if not present.
func PartialComponent(r *http.Request) string {
	return r.Header.Get(HeaderPartialComponent)
}

// PartialOnly returns the parsed X-Inertia-Partial-Data list.
//
// An absent or empty header yields []string{""}, never an empty slice.
func PartialOnly(r *http.Request) []string {
	return parseKeyList(r.Header.Get(HeaderPartialData))
}

// PartialExcept returns the parsed X-Inertia-Partial-Except list.
//
// An absent or empty header yields []string{""}, never an empty slice.
func PartialExcept(r *http.Request) []string {
	return parseKeyList(r.Header.Get(HeaderPartialExcept))
}

// IsPartial reports whether r is a partial reload of component.
//
// Both the partial data header and a matching partial component header must
// be present; anything else is a full page load.
func IsPartial(r *http.Request, component string) bool {
	if _, ok := r.Header[http.CanonicalHeaderKey(HeaderPartialData)]; !ok {
		return false
	}
	if _, ok := r.Header[http.CanonicalHeaderKey(HeaderPartialComponent)]; !ok {
		return false
	}
	return PartialComponent(r) == component
}

// parseKeyList splits a comma-separated header value and trims each entry.
// Matching is case-sensitive. "" parses to [""].
func parseKeyList(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// requestURL rebuilds the absolute URL of an incoming server request.
func requestURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Only the first hop counts, and only when it names a web scheme.
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	switch proto := strings.ToLower(strings.TrimSpace(first)); proto {
	case "http", "https":
		scheme = proto
	}

	return scheme + "://" + r.Host + r.URL.RequestURI()
}
