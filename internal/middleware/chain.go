// internal/middleware/chain.go
//
// Builds the request pipeline from the snapshot's ordered middleware list.
//
// Context
// -------
// `Snapshot.Middleware` is a list of identifiers.  Chain maps each one to a
// wrapper and composes them so the first identifier sees the request first.
// Identifiers served by collaborators outside this process (sessions, csrf,
// auth, messages) are acknowledged and skipped.  Anything else is logged as
// unknown and skipped.
//
// Notes
// -----
// • Order is preserved exactly as resolved.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/config"
)

// Factory builds one wrapper from the snapshot.
type Factory func(snap *config.Snapshot, log *zap.SugaredLogger) func(http.Handler) http.Handler

var builtin = map[string]Factory{
	"security": func(s *config.Snapshot, _ *zap.SugaredLogger) func(http.Handler) http.Handler {
		return Security(s)
	},
	"static": func(s *config.Snapshot, _ *zap.SugaredLogger) func(http.Handler) http.Handler {
		return Static(s)
	},
	"common": AllowedHosts,
	"clickjacking": func(*config.Snapshot, *zap.SugaredLogger) func(http.Handler) http.Handler {
		return Clickjacking
	},
}

var external = map[string]bool{
	"sessions": true,
	"csrf":     true,
	"auth":     true,
	"messages": true,
}

// Chain returns the composed middleware for snap.Middleware.
func Chain(snap *config.Snapshot, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	var wrappers []func(http.Handler) http.Handler
	for _, id := range snap.Middleware {
		f, ok := builtin[id]
		switch {
		case ok:
			wrappers = append(wrappers, f(snap, log))
		case external[id]:
			log.Debugw("middleware provided externally, skipped", "id", id)
		default:
			log.Warnw("unknown middleware, skipped", "id", id)
		}
	}

	return func(h http.Handler) http.Handler {
		for i := len(wrappers) - 1; i >= 0; i-- {
			h = wrappers[i](h)
		}
		return h
	}
}
