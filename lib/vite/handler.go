package vite

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MountPath returns the URL path prefix Handler serves, with leading and
// trailing slashes, e.g. "/static/". Returns "" when the dist directory is
// not served by this process (dev mode or StaticURL set).
func (v *Vite) MountPath() string {
	if v.cfg.DevMode || v.cfg.StaticURL != "" {
		return ""
	}
	prefix := strings.Trim(v.cfg.DistURIPrefix, "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}

// Handler serves the dist directory under MountPath. It expects the full
// request path, prefix included. Only GET and HEAD are allowed; traversal
// attempts and directories get 404.
func (v *Vite) Handler() http.Handler {
	return &distHandler{
		fsys:   os.DirFS(v.cfg.DistPath),
		prefix: v.MountPath(),
	}
}

type distHandler struct {
	fsys   fs.FS
	prefix string
}

func (h *distHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := distRelPath(h.prefix, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := h.fsys.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Vite fingerprints everything under assets/.
	if strings.HasPrefix(rel, "assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	http.ServeContent(w, r, rel, info.ModTime(), rs)
}

// distRelPath strips prefix from urlPath and rejects anything that could
// escape the dist directory.
func distRelPath(prefix, urlPath string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, prefix)
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}
