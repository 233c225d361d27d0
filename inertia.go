package inertia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/pthm/inertia/lib/vite"
)

// Inertia renders pages for the Inertia client. Build one at startup with New
// and share it between handlers; it is safe for concurrent use and holds no
// per-request state.
type Inertia struct {
	root        RootTemplate
	version     func() string
	shared      Props
	flash       FlashStore
	logger      *slog.Logger
	metrics     *metrics
	tracer      trace.Tracer
	tracerSetup tracerConfig

	// OnError is called by Handler when rendering fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// Option configures an Inertia instance.
type Option func(*Inertia)

// WithRootTemplate sets the template used for first visits.
// Defaults to DefaultRoot().
func WithRootTemplate(root RootTemplate) Option {
	return func(i *Inertia) {
		i.root = root
	}
}

// WithVersion sets a fixed asset version.
func WithVersion(version string) Option {
	return func(i *Inertia) {
		i.version = func() string { return version }
	}
}

// WithVersionFunc sets a function that reports the current asset version,
// for example (*vite.Vite).Version.
func WithVersionFunc(fn func() string) Option {
	return func(i *Inertia) {
		i.version = fn
	}
}

// WithSharedProps sets props merged into every page. The map is copied; later
// changes by the caller have no effect.
func WithSharedProps(props Props) Option {
	return func(i *Inertia) {
		i.shared = maps.Clone(props)
	}
}

// WithFlashStore enables flash values.
func WithFlashStore(store FlashStore) Option {
	return func(i *Inertia) {
		i.flash = store
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inertia) {
		i.logger = logger
	}
}

// WithMetrics registers Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer, opts ...MetricsOption) Option {
	return func(i *Inertia) {
		cfg := defaultMetricsConfig()
		cfg.Registry = reg
		for _, opt := range opts {
			opt(&cfg)
		}
		i.metrics = newMetrics(cfg)
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(i *Inertia) {
		i.tracerSetup.provider = tp
	}
}

// New creates an Inertia renderer.
func New(opts ...Option) *Inertia {
	i := &Inertia{
		version: func() string { return "" },
		shared:  Props{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.root == nil {
		i.root = DefaultRoot()
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	i.tracer = i.tracerSetup.tracer()

	i.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, vite.ErrAssetNotFound) {
			http.Error(w, "Asset not found", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}

	return i
}

// Version returns the current asset version.
func (i *Inertia) Version() string {
	return i.version()
}

// Render writes the page for component.
//
// Inertia requests (X-Inertia present) receive the page object as JSON.
// Other requests receive the root template with the page embedded.
//
//	func showContact(w http.ResponseWriter, r *http.Request) {
//	    err := app.Render(w, r, "Contacts/Show", inertia.Props{
//	        "contact":  contact,
//	        "activity": inertia.Defer(loadActivity),
//	    })
//	    ...
//	}
func (i *Inertia) Render(w http.ResponseWriter, r *http.Request, component string, props Props) (err error) {
	start := time.Now()
	ctx, span := i.startSpan(NewContext(r.Context()), component)
	defer func() { endSpan(span, err) }()
	r = r.WithContext(ctx)

	page, partial, err := i.buildPage(w, r, component, props)
	if err != nil {
		i.logger.ErrorContext(ctx, "inertia: build page failed",
			"component", component, "error", err)
		return err
	}

	kind := kindHTML
	if IsInertia(r) {
		kind = kindJSON
		if partial {
			kind = kindPartial
		}
	}
	annotateSpan(span, partial, kind)

	if kind == kindHTML {
		err = i.writeHTML(ctx, w, page)
	} else {
		err = writeJSON(w, page)
	}
	if err != nil {
		i.logger.ErrorContext(ctx, "inertia: render failed",
			"component", component, "kind", kind, "error", err)
		return err
	}

	i.metrics.observeRender(component, kind, len(page.DeferredProps), time.Since(start))
	return nil
}

// Handler returns an http.Handler rendering component with props computed by
// fn. Errors from fn or Render are passed to OnError.
func (i *Inertia) Handler(component string, fn func(r *http.Request) (Props, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var props Props
		if fn != nil {
			p, err := fn(r)
			if err != nil {
				i.OnError(w, r, err)
				return
			}
			props = p
		}
		if err := i.Render(w, r, component, props); err != nil {
			i.OnError(w, r, err)
		}
	})
}

// ServeError passes err to OnError.
func (i *Inertia) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	i.OnError(w, r, err)
}

// BuildPage negotiates props for r and returns the page object without
// writing a response. Flash values are not consumed.
func (i *Inertia) BuildPage(r *http.Request, component string, props Props) (*Page, error) {
	page, _, err := i.buildPage(nil, r, component, props)
	return page, err
}

func (i *Inertia) buildPage(w http.ResponseWriter, r *http.Request, component string, props Props) (*Page, bool, error) {
	ctx := r.Context()
	n := negotiation{
		component: component,
		partial:   IsPartial(r, component),
		only:      PartialOnly(r),
		except:    PartialExcept(r),
	}
	if props == nil {
		props = Props{}
	}

	if n.partial {
		i.logger.DebugContext(ctx, "inertia: partial reload",
			"component", component, "only", n.only, "except", n.except)
	}

	deferred := n.deferredGroups(props)
	merge := mergeMetadata(props)

	shared := maps.Clone(i.shared)
	maps.Copy(shared, SharedProps(ctx))
	shared, err := resolveProps(ctx, shared)
	if err != nil {
		return nil, false, err
	}

	resolved, err := resolveProps(ctx, n.filterProps(props))
	if err != nil {
		return nil, false, err
	}

	all := make(Props, len(shared)+len(resolved)+1)
	maps.Copy(all, shared)
	all[FlashKey] = i.pullFlash(w, r)
	maps.Copy(all, resolved)

	page := &Page{
		Component:      component,
		Props:          all,
		URL:            requestURL(r),
		Version:        versionPtr(i.version()),
		DeferredProps:  deferred,
		MergeProps:     merge.merge,
		PrependProps:   merge.prepend,
		DeepMergeProps: merge.deepMerge,
		MatchPropsOn:   merge.matchOn,
	}
	return page, n.partial, nil
}

// pullFlash consumes the session's flash values. Without a store, or without
// a response to clear them on, the flash prop is empty.
func (i *Inertia) pullFlash(w http.ResponseWriter, r *http.Request) Props {
	if i.flash == nil || w == nil {
		return Props{}
	}
	flash, err := i.flash.Pull(w, r)
	if err != nil {
		i.logger.WarnContext(r.Context(), "inertia: discarding unreadable flash", "error", err)
	}
	if flash == nil {
		flash = Props{}
	}
	return flash
}

// Flash stores a one-shot value shown on the next page render of the same
// session, typically right before a redirect:
//
//	if err := app.Flash(w, r, inertia.FlashSuccess, "Contact created."); err != nil {
//	    return err
//	}
//	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
//
// Returns ErrNoSession when no FlashStore is configured.
func (i *Inertia) Flash(w http.ResponseWriter, r *http.Request, key string, value any) error {
	if i.flash == nil {
		return ErrNoSession
	}
	return i.flash.Put(w, r, pendingFlash(r.Context(), key, value))
}

// Location redirects to url outside the Inertia app. Inertia requests get a
// 409 with X-Inertia-Location so the client performs a full visit; other
// requests get a plain redirect.
func (i *Inertia) Location(w http.ResponseWriter, r *http.Request, url string) {
	if IsInertia(r) {
		w.Header().Set(HeaderLocation, url)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (i *Inertia) writeHTML(ctx context.Context, w http.ResponseWriter, page *Page) error {
	data, err := page.JSON()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	// Render to a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := i.root.Render(ctx, &buf, TemplateData{
		Page:       data,
		PageObject: page,
		Component:  page.Component,
	}); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

func writeJSON(w http.ResponseWriter, page *Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	h := w.Header()
	h.Set(HeaderInertia, "true")
	h.Set("Vary", "Accept")
	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}
