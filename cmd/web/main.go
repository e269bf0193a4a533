// cmd/web/main.go
//
// Storefront – HTTP entry point.
//
// Start-up
// --------
//
//  1. Resolve settings (global.env → .env → process env → vault refs).
//
//  2. Start the logger described by the snapshot.
//
//  3. Open the database pool and ping it.
//
//  4. Build the router: middleware chain in snapshot order, installed
//     feature modules, and the Prometheus /metrics endpoint.
//
//  5. Serve on the resolved listen address until SIGINT or SIGTERM.
//
// Large comment blocks are framed by blank "//" lines; inline comments use
// a single "//".
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/bootstrap"
	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/database"
	"github.com/yanizio/storefront/internal/logger"
	"github.com/yanizio/storefront/internal/middleware"
	"github.com/yanizio/storefront/internal/module"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/server"

	_ "github.com/yanizio/storefront/modules/debug" // dev-only settings echo
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Settings ────────────────────────────────────────────────────
	//
	snap, err := bootstrap.Settings(ctx, bootstrap.Options{})
	if err != nil {
		log.Fatalf("resolve settings: %v", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logs, err := logger.New(snap)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logs.Sync() }()
	logOut := logs.Root()

	if snap.SecretGenerated {
		logOut.Warnw("SECRET_KEY not set; using a generated secret, sessions will not survive a restart")
	}

	//
	// ── 3.  Database ────────────────────────────────────────────────────
	//
	logOut.Infow("connecting to database", "driver", snap.Database.Driver, "host", snap.Database.Host)
	db, err := database.Open(ctx, snap.Database)
	if err != nil {
		logOut.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	logOut.Infow("database online", "max_age", snap.Database.MaxAge, "tls", snap.Database.SSLRequired)

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := newRouter(snap, logs)

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(snap.ListenAddr, r), logOut); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Infow("bye")
}

// newRouter wires middleware, feature modules, and /metrics.
func newRouter(snap *config.Snapshot, logs *logger.Set) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain(snap, logs.Named("middleware")))

	module.Mount(r, snap, logs.Named("module"))
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		zap.S().Debugw("no route", "path", req.URL.Path)
		http.NotFound(w, req)
	})
	return r
}
