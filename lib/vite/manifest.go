package vite

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
)

// Chunk is one manifest entry.
type Chunk struct {
	File           string   `json:"file"`
	Name           string   `json:"name,omitempty"`
	Src            string   `json:"src,omitempty"`
	IsEntry        bool     `json:"isEntry,omitempty"`
	IsDynamicEntry bool     `json:"isDynamicEntry,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	DynamicImports []string `json:"dynamicImports,omitempty"`
	CSS            []string `json:"css,omitempty"`
	Assets         []string `json:"assets,omitempty"`
}

// Manifest maps source paths (and "_"-prefixed shared chunk names) to chunks.
type Manifest map[string]Chunk

// ParseManifest decodes manifest JSON.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return m, nil
}

// LoadManifest reads and decodes the manifest at path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return ParseManifest(data)
}

// CSS returns the stylesheets needed by entry: those of its imports,
// depth first, then its own. Each path appears once. An import that names no
// chunk in the manifest returns ErrManifest.
func (m Manifest) CSS(entry string) ([]string, error) {
	var out []string
	visited := make(map[string]bool)
	seen := make(map[string]bool)
	if err := m.collectCSS(entry, visited, seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m Manifest) collectCSS(key string, visited, seen map[string]bool, out *[]string) error {
	if visited[key] {
		return nil
	}
	visited[key] = true

	chunk := m[key]
	for _, imp := range chunk.Imports {
		if _, ok := m[imp]; !ok {
			return fmt.Errorf("%w: %s imports unknown chunk %s", ErrManifest, key, imp)
		}
		if err := m.collectCSS(imp, visited, seen, out); err != nil {
			return err
		}
	}
	for _, css := range chunk.CSS {
		if seen[css] {
			continue
		}
		seen[css] = true
		*out = append(*out, css)
	}
	return nil
}

// Entries returns the keys of entry chunks, sorted.
func (m Manifest) Entries() []string {
	var keys []string
	for key, chunk := range m {
		if chunk.IsEntry {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Files returns every built file the manifest references, sorted and
// without duplicates.
func (m Manifest) Files() []string {
	var files []string
	for _, chunk := range m {
		files = append(files, chunk.File)
		files = append(files, chunk.CSS...)
		files = append(files, chunk.Assets...)
	}
	sort.Strings(files)
	return slices.Compact(files)
}

// Manifest returns the cached manifest, reading it on first use.
func (v *Vite) Manifest() (Manifest, error) {
	v.mu.RLock()
	if v.loaded {
		m := v.manifest
		v.mu.RUnlock()
		return m, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded {
		return v.manifest, nil
	}

	data, err := os.ReadFile(v.cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	v.manifest = m
	v.version = hex.EncodeToString(sum[:])
	v.loaded = true
	return m, nil
}

// Invalidate drops the cached manifest; the next call reads it again.
func (v *Vite) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.manifest = nil
	v.version = ""
	v.loaded = false
}

// Version returns the SHA-256 of the manifest file, which changes with every
// build that changes any output. Returns "" in dev mode or when the manifest
// cannot be read.
func (v *Vite) Version() string {
	if v.cfg.DevMode {
		return ""
	}
	if _, err := v.Manifest(); err != nil {
		return ""
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}
