// Package vite resolves Vite build output into HTML tags.
//
// In development the tags point at the Vite dev server, which serves modules
// straight from source and pushes updates over its own HMR connection. In
// production the build manifest maps each entry to its fingerprinted file
// and the stylesheets of every chunk it imports:
//
//	v, err := vite.New(vite.Config{
//	    ManifestPath:  "dist/.vite/manifest.json",
//	    DistURIPrefix: "/static",
//	})
//	tags, err := v.Asset("src/main.ts")
//	// <link rel="stylesheet" href="/static/assets/main-4f1c.css" />
//	// <script src="/static/assets/main-9a2b.js" type="module"></script>
package vite

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// Sentinel errors.
var (
	ErrAssetNotFound = errors.New("vite: asset not found in manifest")
	ErrManifest      = errors.New("vite: manifest unreadable")
	ErrInvalidConfig = errors.New("vite: invalid configuration")
)

// Config describes where assets come from.
type Config struct {
	DevMode           bool
	DevServerProtocol string
	DevServerHost     string
	DevServerPort     int
	WSClientPath      string

	// ManifestPath is the manifest written by `vite build` with
	// build.manifest enabled.
	ManifestPath string

	// DistPath is the build output directory served by Handler.
	DistPath string

	// DistURIPrefix is the URL path the dist directory is mounted under.
	DistURIPrefix string

	// StaticURL is an absolute base URL, usually a CDN. Takes precedence
	// over DistURIPrefix.
	StaticURL string
}

// DefaultConfig returns the Vite defaults: dev server on localhost:5173 and
// the manifest where Vite 5 writes it.
func DefaultConfig() Config {
	return Config{
		DevServerProtocol: "http",
		DevServerHost:     "localhost",
		DevServerPort:     5173,
		WSClientPath:      "@vite/client",
		ManifestPath:      "dist/.vite/manifest.json",
		DistPath:          "dist",
	}
}

// Validate reports configuration that cannot produce working tags.
func (c Config) Validate() error {
	if !c.DevMode && c.StaticURL == "" && c.DistURIPrefix == "" {
		return fmt.Errorf("%w: static_url or dist_uri_prefix must be set in production mode", ErrInvalidConfig)
	}
	if c.DevMode {
		if c.DevServerPort < 1 || c.DevServerPort > 65535 {
			return fmt.Errorf("%w: dev server port %d out of range", ErrInvalidConfig, c.DevServerPort)
		}
		if c.DevServerProtocol != "http" && c.DevServerProtocol != "https" {
			return fmt.Errorf("%w: dev server protocol %q", ErrInvalidConfig, c.DevServerProtocol)
		}
	}
	return nil
}

// DevServerURL returns the dev server origin, e.g. http://localhost:5173.
func (c Config) DevServerURL() string {
	return fmt.Sprintf("%s://%s:%d", c.DevServerProtocol, c.DevServerHost, c.DevServerPort)
}

// DevWebsocketURL returns the URL of the HMR client script.
func (c Config) DevWebsocketURL() string {
	return c.DevServerURL() + "/" + c.WSClientPath
}

// Vite renders asset tags. It is safe for concurrent use.
type Vite struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	manifest Manifest
	version  string
	loaded   bool
}

// Option configures a Vite.
type Option func(*Vite)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vite) {
		v.logger = logger
	}
}

// New validates cfg and returns a Vite. Zero fields of cfg take their
// DefaultConfig values. The manifest is not read until first use.
func New(cfg Config, opts ...Option) (*Vite, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Vite{cfg: cfg}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.DevServerProtocol == "" {
		cfg.DevServerProtocol = def.DevServerProtocol
	}
	if cfg.DevServerHost == "" {
		cfg.DevServerHost = def.DevServerHost
	}
	if cfg.DevServerPort == 0 {
		cfg.DevServerPort = def.DevServerPort
	}
	if cfg.WSClientPath == "" {
		cfg.WSClientPath = def.WSClientPath
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = def.ManifestPath
	}
	if cfg.DistPath == "" {
		cfg.DistPath = def.DistPath
	}
	return cfg
}

// Config returns the effective configuration.
func (v *Vite) Config() Config {
	return v.cfg
}

// DevMode reports whether tags point at the dev server.
func (v *Vite) DevMode() bool {
	return v.cfg.DevMode
}

// Asset returns the tags for a manifest entry such as "src/main.ts".
// Leading slashes are ignored.
//
// In production the result holds one stylesheet link per CSS file reachable
// through the entry's imports (imports first, each path once) followed by
// the entry's module script. A path missing from the manifest returns
// ErrAssetNotFound; an import missing from it returns ErrManifest.
func (v *Vite) Asset(path string) (string, error) {
	path = strings.TrimLeft(path, "/")

	if v.cfg.DevMode {
		return ScriptTag(v.cfg.DevServerURL()+"/"+path, Attr{"type", "module"}), nil
	}

	m, err := v.Manifest()
	if err != nil {
		return "", err
	}
	chunk, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}

	styles, err := m.CSS(path)
	if err != nil {
		return "", err
	}
	var tags []string
	for _, css := range styles {
		tags = append(tags, LinkTag(v.productionURL(strings.TrimLeft(css, "/"))))
	}
	tags = append(tags, ScriptTag(v.productionURL(chunk.File), Attr{"type", "module"}))
	return strings.Join(tags, "\n"), nil
}

// HMRClient returns the Vite client script in dev mode and "" otherwise.
func (v *Vite) HMRClient() string {
	if !v.cfg.DevMode {
		return ""
	}
	return ScriptTag(v.cfg.DevWebsocketURL(), Attr{"type", "module"})
}

// ReactRefresh returns the React Fast Refresh preamble required by
// @vitejs/plugin-react when the page is not served by Vite itself. Returns ""
// outside dev mode.
func (v *Vite) ReactRefresh() string {
	if !v.cfg.DevMode {
		return ""
	}
	return fmt.Sprintf(`<script type="module">
import RefreshRuntime from '%s/@react-refresh'
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>`, v.cfg.DevServerURL())
}

// URL returns the production URL of a built file.
func (v *Vite) URL(file string) string {
	return v.productionURL(strings.TrimLeft(file, "/"))
}

// productionURL joins file onto StaticURL or DistURIPrefix using URL
// reference resolution. The prefix is treated as a directory.
func (v *Vite) productionURL(file string) string {
	prefix := v.cfg.StaticURL
	if prefix == "" {
		prefix = v.cfg.DistURIPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	base, err := url.Parse(prefix)
	if err != nil {
		return prefix + file
	}
	ref, err := url.Parse(file)
	if err != nil {
		return prefix + file
	}
	return base.ResolveReference(ref).String()
}
