package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/storefront/internal/config"
)

func snapshot(debug bool, loggers ...config.LoggerLevel) *config.Snapshot {
	return &config.Snapshot{
		Debug: debug,
		Logging: config.Logging{
			Handlers: []string{"console"},
			Level:    "info",
			Loggers:  loggers,
		},
	}
}

func TestNamedLoggerLevels(t *testing.T) {
	snap := snapshot(false, config.LoggerLevel{Name: "auth", Level: "debug"})
	floor, err := lowestLevel(snap)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, floor)

	core, logs := observer.New(floor)
	set, err := build(core, snap)
	require.NoError(t, err)

	set.Root().Debug("root debug")
	set.Root().Info("root info")
	set.Named("auth").Debug("auth debug")
	set.Named("store").Debug("store debug")
	set.Named("store").Info("store info")

	var got []string
	for _, e := range logs.All() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"root info", "auth debug", "store info"}, got)
	assert.Equal(t, "auth", logs.FilterMessage("auth debug").All()[0].LoggerName)
}

func TestDebugModeLowersRootLevel(t *testing.T) {
	snap := snapshot(true)
	core, logs := observer.New(zapcore.DebugLevel)
	set, err := build(core, snap)
	require.NoError(t, err)

	set.Root().Debug("visible")
	assert.Equal(t, 1, logs.Len())
}

func TestBuildRejectsBadLevel(t *testing.T) {
	snap := snapshot(false, config.LoggerLevel{Name: "auth", Level: "loud"})
	core, _ := observer.New(zapcore.DebugLevel)
	_, err := build(core, snap)
	assert.Error(t, err)

	_, err = lowestLevel(snap)
	assert.Error(t, err)
}

func TestNew_FileHandler(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	snap := snapshot(false)
	snap.BaseDir = t.TempDir()
	snap.Logging.Handlers = []string{"file"}

	set, err := New(snap)
	require.NoError(t, err)
	set.Root().Infow("hello", "k", "v")
	_ = set.Sync()

	entries, err := os.ReadDir(filepath.Join(snap.BaseDir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNew_UnknownHandler(t *testing.T) {
	snap := snapshot(false)
	snap.Logging.Handlers = []string{"syslog"}
	_, err := New(snap)
	assert.Error(t, err)
}
