package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ServeDashboard serves the static dashboard in webDir. Paths that do not
// name a file fall back to index.html so client-side routes resolve.
func ServeDashboard(webDir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(webDir))
	indexPath := filepath.Join(webDir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if clean != "/" {
			target := filepath.Join(webDir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
			if info, err := os.Stat(target); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		if _, err := os.Stat(indexPath); err != nil {
			http.Error(w, "Dashboard not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, indexPath)
	}
}
