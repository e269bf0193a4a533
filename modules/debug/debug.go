// modules/debug/debug.go
//
// Development module that echoes the resolved settings (secrets masked)
// alongside a few request facts.  Installed only by the local profile and
// answers only while debug mode is on; otherwise it is a plain 404.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/module"
	"github.com/yanizio/storefront/internal/requestinfo"
)

// Feature is the installed-feature name that enables this module.
const Feature = "debug"

func init() {
	module.Register(Feature, "/debug", handler)
}

// handler writes a JSON blob with the redacted snapshot.
func handler(snap *config.Snapshot, w http.ResponseWriter, r *http.Request) {
	if !snap.Debug {
		http.NotFound(w, r)
		return
	}

	out := map[string]any{
		"request":  requestinfo.Describe(r),
		"ua":       r.UserAgent(),
		"settings": snap.Redacted(),
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
