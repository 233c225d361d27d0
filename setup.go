package inertia

import (
	"fmt"

	"github.com/pthm/inertia/lib/config"
	"github.com/pthm/inertia/lib/vite"
)

// FromConfig builds an Inertia and its Vite resolver from cfg:
//
//   - the root template is parsed from cfg.TemplatesDir with the Vite
//     template functions installed
//   - the asset version is cfg.AssetsVersion, or the manifest hash
//   - a CookieFlashStore is configured when cfg.FlashSecret is set
//
// opts are applied last and override anything derived from cfg. Any
// configuration problem is returned here rather than on first render.
func FromConfig(cfg config.Config, opts ...Option) (*Inertia, *vite.Vite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	v, err := vite.New(cfg.ViteConfig())
	if err != nil {
		return nil, nil, err
	}

	root, err := ParseTemplates(cfg.TemplatesDir, cfg.RootTemplate, v.FuncMap())
	if err != nil {
		return nil, nil, err
	}
	base := []Option{WithRootTemplate(root)}

	if cfg.AssetsVersion != "" {
		base = append(base, WithVersion(cfg.AssetsVersion))
	} else {
		base = append(base, WithVersionFunc(v.Version))
	}

	if cfg.FlashSecret != "" {
		store, err := NewCookieFlashStore([]byte(cfg.FlashSecret))
		if err != nil {
			return nil, nil, fmt.Errorf("flash store: %w", err)
		}
		base = append(base, WithFlashStore(store))
	}

	return New(append(base, opts...)...), v, nil
}
