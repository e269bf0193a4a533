package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/bootstrap"
	"github.com/yanizio/storefront/internal/logger"
)

func testRouter(t *testing.T, environ ...string) http.Handler {
	t.Helper()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	snap, err := bootstrap.Settings(context.Background(), bootstrap.Options{
		EnvFiles: []string{},
		RootDir:  t.TempDir(),
		Environ:  environ,
		Log:      zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	logs, err := logger.New(snap)
	require.NoError(t, err)
	return newRouter(snap, logs)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouter_LocalDebug(t *testing.T) {
	h := testRouter(t, "DEBUG=True")

	rec := get(h, "http://localhost/debug")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = get(h, "http://localhost/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_settings_info")

	assert.Equal(t, http.StatusBadRequest, get(h, "http://evil.example.com/debug").Code)
}

func TestRouter_HostedHasNoDebugModule(t *testing.T) {
	h := testRouter(t,
		"APP_PROFILE=hosted",
		"DEBUG=True",
		"DATABASE_URL=postgres://u:p@db.internal/shop",
		"RENDER_EXTERNAL_HOSTNAME=shop.onrender.com",
	)

	req := httptest.NewRequest(http.MethodGet, "http://shop.onrender.com/debug", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
