package inertia

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

// TestResult holds the response to a test request.
//
// Page is decoded from the JSON body of Inertia responses and from the
// data-page attribute of HTML responses. It is nil for anything else, such as
// a 409 or a redirect.
type TestResult struct {
	Body       string
	StatusCode int
	Headers    http.Header
	Cookies    []*http.Cookie
	Page       *Page
}

// TestRequestBuilder provides a fluent interface for building test requests.
//
//	result, err := inertia.NewTestRequest("GET", "/contacts").
//	    Inertia().
//	    Partial("Contacts/Index", "contacts").
//	    Execute(handler)
//	if !result.HasProp("contacts") {
//	    t.Fatal("contacts not sent")
//	}
type TestRequestBuilder struct {
	method  string
	url     string
	headers http.Header
	cookies []*http.Cookie
	ctx     context.Context
	body    string
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:  method,
		url:     url,
		headers: make(http.Header),
	}
}

// Inertia marks the request as sent by the Inertia client.
func (b *TestRequestBuilder) Inertia() *TestRequestBuilder {
	b.headers.Set(HeaderInertia, "true")
	return b
}

// WithVersion sets X-Inertia-Version.
func (b *TestRequestBuilder) WithVersion(version string) *TestRequestBuilder {
	b.headers.Set(HeaderVersion, version)
	return b
}

// Partial makes the request a partial reload of component for keys.
func (b *TestRequestBuilder) Partial(component string, keys ...string) *TestRequestBuilder {
	b.headers.Set(HeaderPartialComponent, component)
	b.headers.Set(HeaderPartialData, strings.Join(keys, ","))
	return b
}

// Except sets X-Inertia-Partial-Except.
func (b *TestRequestBuilder) Except(keys ...string) *TestRequestBuilder {
	b.headers.Set(HeaderPartialExcept, strings.Join(keys, ","))
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers.Add(key, value)
	return b
}

// WithCookies adds cookies, typically those of a previous TestResult.
func (b *TestRequestBuilder) WithCookies(cookies ...*http.Cookie) *TestRequestBuilder {
	b.cookies = append(b.cookies, cookies...)
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Request builds the *http.Request.
func (b *TestRequestBuilder) Request() *http.Request {
	var body io.Reader
	if b.body != "" {
		body = strings.NewReader(b.body)
	}
	req := httptest.NewRequest(b.method, b.url, body)
	if b.ctx != nil {
		req = req.WithContext(b.ctx)
	}
	for k, vs := range b.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, c := range b.cookies {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

// WithBody sets the request body and its Content-Type.
func (b *TestRequestBuilder) WithBody(contentType, body string) *TestRequestBuilder {
	b.headers.Set("Content-Type", contentType)
	b.body = body
	return b
}

// Execute serves the request with h and records the result.
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, b.Request())

	result := &TestResult{
		Body:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
		Cookies:    rec.Result().Cookies(),
	}

	var err error
	switch {
	case rec.Header().Get(HeaderInertia) == "true":
		result.Page, err = ParsePage(rec.Body.Bytes())
	case strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"):
		if data, ok := extractDataPage(result.Body); ok {
			result.Page, err = ParsePage([]byte(data))
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// extractDataPage returns the unescaped data-page attribute of the first
// element carrying one.
func extractDataPage(body string) (string, bool) {
	const attr = `data-page="`
	_, rest, ok := strings.Cut(body, attr)
	if !ok {
		return "", false
	}
	raw, _, ok := strings.Cut(rest, `"`)
	if !ok {
		return "", false
	}
	return html.UnescapeString(raw), true
}

// BodyContains checks if the body contains a substring.
func (r *TestResult) BodyContains(substr string) bool {
	return strings.Contains(r.Body, substr)
}

// IsInertia checks if the response is an Inertia JSON page.
func (r *TestResult) IsInertia() bool {
	return r.Headers.Get(HeaderInertia) == "true"
}

// HasProp checks if the page carries key.
func (r *TestResult) HasProp(key string) bool {
	if r.Page == nil {
		return false
	}
	_, ok := r.Page.Props[key]
	return ok
}

// Prop returns a page prop, or nil when absent.
func (r *TestResult) Prop(key string) any {
	if r.Page == nil {
		return nil
	}
	return r.Page.Props[key]
}

// Flash returns the flash prop as a map.
func (r *TestResult) Flash() map[string]any {
	flash, _ := r.Prop(FlashKey).(map[string]any)
	return flash
}

// IsConflict checks for a 409 with X-Inertia-Location.
func (r *TestResult) IsConflict() bool {
	return r.StatusCode == http.StatusConflict && r.Headers.Get(HeaderLocation) != ""
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// GetHeader returns the value of a header.
func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}
