// internal/module/registry.go
//
// A super-light registry: feature modules call Register(feature, path,
// handler) in an init() function.  At startup Mount walks the registry and
// attaches only the handlers whose feature is installed in the snapshot.
//
// Handler signature:
//
//	func(snap *config.Snapshot, w http.ResponseWriter, r *http.Request)
//
// Handlers receive the read-only settings snapshot so they never reach for
// globals or the environment.
package module

import (
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/config"
)

// Handler is what modules register.
type Handler func(*config.Snapshot, http.ResponseWriter, *http.Request)

type entry struct {
	feature string
	path    string
	h       Handler
}

var (
	mu       sync.RWMutex
	registry = map[string]entry{} // keyed by path
)

// Register is called from module init() functions.  A later registration
// for the same path replaces the earlier one.
func Register(feature, path string, h Handler) {
	mu.Lock()
	registry[path] = entry{feature: feature, path: path, h: h}
	mu.Unlock()
}

// Mount attaches every registered handler whose feature is installed and
// returns the mounted paths in sorted order.
func Mount(r chi.Router, snap *config.Snapshot, log *zap.SugaredLogger) []string {
	mu.RLock()
	entries := make([]entry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	var mounted []string
	for _, e := range entries {
		if !snap.HasFeature(e.feature) {
			log.Debugw("module not installed", "feature", e.feature, "path", e.path)
			continue
		}
		h := e.h
		r.HandleFunc(e.path, func(w http.ResponseWriter, req *http.Request) {
			h(snap, w, req)
		})
		mounted = append(mounted, e.path)
		log.Infow("module mounted", "feature", e.feature, "path", e.path)
	}
	return mounted
}
