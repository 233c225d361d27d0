// Package config loads adapter settings from a TOML file and the
// environment.
//
// Environment variables win over the file, which wins over defaults:
//
//	root_template  = "app.html"   # FV_INERTIA_ROOT_TEMPLATE
//	assets_version = ""           # FV_INERTIA_ASSETS_VERSION
//
//	[vite]
//	dev_mode        = true        # FV_VITE_DEV_MODE
//	dist_uri_prefix = "/static"   # FV_VITE_DIST_URI_PREFIX
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pthm/inertia/lib/vite"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Environment variable prefixes.
const (
	EnvPrefixInertia = "FV_INERTIA_"
	EnvPrefixVite    = "FV_VITE_"
	EnvPrefixPublish = "FV_PUBLISH_"
)

// Config is the full adapter configuration.
type Config struct {
	RootTemplate  string `toml:"root_template"`
	AssetsVersion string `toml:"assets_version"`
	TemplatesDir  string `toml:"templates_dir"`

	// FlashSecret seals the flash cookie. Empty disables cookie flash.
	FlashSecret string `toml:"flash_secret"`

	Vite    ViteSettings    `toml:"vite"`
	Publish PublishSettings `toml:"publish"`
}

// ViteSettings mirrors vite.Config with TOML keys.
type ViteSettings struct {
	DevMode           bool   `toml:"dev_mode"`
	DevServerProtocol string `toml:"dev_server_protocol"`
	DevServerHost     string `toml:"dev_server_host"`
	DevServerPort     int    `toml:"dev_server_port"`
	WSClientPath      string `toml:"ws_client_path"`
	ManifestPath      string `toml:"manifest_path"`
	DistPath          string `toml:"dist_path"`
	DistURIPrefix     string `toml:"dist_uri_prefix"`
	StaticURL         string `toml:"static_url"`
}

// PublishSettings locates the bucket built assets are uploaded to.
type PublishSettings struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Prefix       string `toml:"prefix"`
	CacheControl string `toml:"cache_control"`

	// Endpoint points at an S3-compatible store instead of AWS.
	Endpoint string `toml:"endpoint"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	v := vite.DefaultConfig()
	return Config{
		RootTemplate: "app.html",
		TemplatesDir: "templates",
		Vite: ViteSettings{
			DevServerProtocol: v.DevServerProtocol,
			DevServerHost:     v.DevServerHost,
			DevServerPort:     v.DevServerPort,
			WSClientPath:      v.WSClientPath,
			ManifestPath:      v.ManifestPath,
			DistPath:          v.DistPath,
		},
		Publish: PublishSettings{
			CacheControl: "public, max-age=31536000, immutable",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result. Unknown keys in the file are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out *Config) error {
	meta, err := toml.DecodeFile(path, out)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks the configuration for values that would fail later.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RootTemplate) == "" {
		return fmt.Errorf("%w: root_template is required", ErrInvalid)
	}
	if err := c.ViteConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Vite.DevServerPort < 1 || c.Vite.DevServerPort > 65535 {
		return fmt.Errorf("%w: dev_server_port %d out of range", ErrInvalid, c.Vite.DevServerPort)
	}
	return nil
}

// ViteConfig converts the [vite] section.
func (c Config) ViteConfig() vite.Config {
	return vite.Config{
		DevMode:           c.Vite.DevMode,
		DevServerProtocol: c.Vite.DevServerProtocol,
		DevServerHost:     c.Vite.DevServerHost,
		DevServerPort:     c.Vite.DevServerPort,
		WSClientPath:      c.Vite.WSClientPath,
		ManifestPath:      c.Vite.ManifestPath,
		DistPath:          c.Vite.DistPath,
		DistURIPrefix:     c.Vite.DistURIPrefix,
		StaticURL:         c.Vite.StaticURL,
	}
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvPrefixInertia+"ROOT_TEMPLATE", &cfg.RootTemplate)
	str(EnvPrefixInertia+"ASSETS_VERSION", &cfg.AssetsVersion)
	str(EnvPrefixInertia+"TEMPLATES_DIR", &cfg.TemplatesDir)
	str(EnvPrefixInertia+"FLASH_SECRET", &cfg.FlashSecret)

	if v, ok := lookup(EnvPrefixVite + "DEV_MODE"); ok {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sDEV_MODE: %w", ErrInvalid, EnvPrefixVite, err)
		}
		cfg.Vite.DevMode = b
	}
	str(EnvPrefixVite+"DEV_SERVER_PROTOCOL", &cfg.Vite.DevServerProtocol)
	str(EnvPrefixVite+"DEV_SERVER_HOST", &cfg.Vite.DevServerHost)
	if v, ok := lookup(EnvPrefixVite + "DEV_SERVER_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sDEV_SERVER_PORT: %w", ErrInvalid, EnvPrefixVite, err)
		}
		cfg.Vite.DevServerPort = port
	}
	str(EnvPrefixVite+"WS_CLIENT_PATH", &cfg.Vite.WSClientPath)
	str(EnvPrefixVite+"MANIFEST_PATH", &cfg.Vite.ManifestPath)
	str(EnvPrefixVite+"DIST_PATH", &cfg.Vite.DistPath)
	str(EnvPrefixVite+"DIST_URI_PREFIX", &cfg.Vite.DistURIPrefix)
	str(EnvPrefixVite+"STATIC_URL", &cfg.Vite.StaticURL)

	str(EnvPrefixPublish+"BUCKET", &cfg.Publish.Bucket)
	str(EnvPrefixPublish+"REGION", &cfg.Publish.Region)
	str(EnvPrefixPublish+"PREFIX", &cfg.Publish.Prefix)
	str(EnvPrefixPublish+"CACHE_CONTROL", &cfg.Publish.CacheControl)
	str(EnvPrefixPublish+"ENDPOINT", &cfg.Publish.Endpoint)
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}
