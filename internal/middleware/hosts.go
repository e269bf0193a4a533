package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/config"
)

// AllowedHosts rejects requests whose Host header is not in the snapshot's
// allowed-host list with 400 Bad Request.
func AllowedHosts(snap *config.Snapshot, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !snap.HostAllowed(r.Host) {
				log.Warnw("disallowed host", "host", r.Host, "path", r.URL.Path)
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
