// internal/middleware/static.go
//
// File serving for collected static assets and, when stored locally,
// uploaded media.
//
// Notes
// -----
// • Requests outside both URL prefixes fall through to next untouched.
// • Directory listings are disabled; a request for a directory is a 404.
// • Media is served only when the media backend is local.  Cloud storage
//   owns its own URLs.

package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/yanizio/storefront/internal/config"
)

// Static serves Storage.Static.Root under Storage.Static.URL and, for local
// media, Storage.Media.Root under Storage.Media.URL.
func Static(snap *config.Snapshot) func(http.Handler) http.Handler {
	type mount struct {
		prefix string
		files  http.Handler
	}

	var mounts []mount
	add := func(url, root string) {
		if url == "" || root == "" {
			return
		}
		mounts = append(mounts, mount{
			prefix: url,
			files:  http.StripPrefix(url, http.FileServer(noDirs{http.Dir(root)})),
		})
	}
	add(snap.Storage.Static.URL, snap.Storage.Static.Root)
	if snap.Storage.Media.Backend == config.BackendLocal {
		add(snap.Storage.Media.URL, snap.Storage.Media.Root)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				for _, m := range mounts {
					if strings.HasPrefix(r.URL.Path, m.prefix) {
						m.files.ServeHTTP(w, r)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// noDirs hides directories from http.FileServer.
type noDirs struct{ fs http.FileSystem }

func (n noDirs) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
