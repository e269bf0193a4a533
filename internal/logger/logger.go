// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack) built from the settings snapshot.
//
// Context
// -------
// The snapshot's logging descriptor names the sinks and the minimum level
// per logger.  Two handler kinds exist:
//
//   - console – human-readable lines on stdout,
//   - file    – JSON under `<base>/logs/YYYY-MM-DD.log`, rotated, compressed,
//     and pruned by Lumberjack.
//
// Every sink shares one core that is opened at the lowest level any logger
// asks for.  The root logger and each named logger then raise their own
// floor with zap.IncreaseLevel, so `auth` can log at debug while the rest
// of the process stays at info.
//
// Usage
// -----
//
//	logs, err := logger.New(snap)
//	if err != nil { … }
//	logs.Root().Infow("storefront online", "addr", snap.ListenAddr)
//	logs.Named("auth").Debugw("backend tried", "backend", "model")
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Debug mode lowers the root level to debug.
// • Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/storefront/internal/config"
)

// Set hands out the root logger and per-name loggers with their levels.
type Set struct {
	base   *zap.Logger
	root   *zap.SugaredLogger
	levels map[string]zapcore.Level
}

// New builds the logger set described by snap.Logging and installs the
// root logger as the process-wide default via zap.ReplaceGlobals.
func New(snap *config.Snapshot) (*Set, error) {
	encCfg := encoderConfig()

	var cores []zapcore.Core
	var errOut zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)

	floor, err := lowestLevel(snap)
	if err != nil {
		return nil, err
	}

	for _, h := range snap.Logging.Handlers {
		switch h {
		case "console":
			cores = append(cores, zapcore.NewCore(
				zapcore.NewConsoleEncoder(encCfg),
				zapcore.AddSync(os.Stdout),
				floor,
			))
		case "file":
			sink, err := fileSink(snap.BaseDir)
			if err != nil {
				return nil, err
			}
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encCfg),
				zapcore.AddSync(sink),
				floor,
			))
			errOut = zapcore.AddSync(sink)
		default:
			return nil, fmt.Errorf("logger: unknown handler %q", h)
		}
	}

	s, err := build(zapcore.NewTee(cores...), snap, zap.ErrorOutput(errOut))
	if err != nil {
		return nil, err
	}

	// Make this the global logger so zap.L() works everywhere after startup.
	zap.ReplaceGlobals(s.root.Desugar())

	s.root.Infow("logger online", "handlers", snap.Logging.Handlers, "level", rootLevel(snap))
	return s, nil
}

// build wires a core into a Set.  Split from New so tests can pass an
// observer core.
func build(core zapcore.Core, snap *config.Snapshot, opts ...zap.Option) (*Set, error) {
	root, err := parseLevel(rootLevel(snap))
	if err != nil {
		return nil, err
	}

	levels := make(map[string]zapcore.Level, len(snap.Logging.Loggers))
	for _, l := range snap.Logging.Loggers {
		lvl, err := parseLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("logger %q: %w", l.Name, err)
		}
		levels[l.Name] = lvl
	}

	base := zap.New(core, opts...)
	return &Set{
		base:   base,
		root:   base.WithOptions(zap.IncreaseLevel(root)).Sugar(),
		levels: levels,
	}, nil
}

// Root returns the process logger.
func (s *Set) Root() *zap.SugaredLogger { return s.root }

// Named returns a logger called name.  Names listed in the snapshot use
// their configured level; others inherit the root level.
func (s *Set) Named(name string) *zap.SugaredLogger {
	lvl, ok := s.levels[name]
	if !ok {
		return s.root.Named(name)
	}
	return s.base.WithOptions(zap.IncreaseLevel(lvl)).Named(name).Sugar()
}

// Sync flushes every sink.
func (s *Set) Sync() error { return s.base.Sync() }

/*──────────────────────────── helpers ─────────────────────────────────────*/

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		MessageKey:    "msg",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	}
}

func fileSink(baseDir string) (*lumberjack.Logger, error) {
	logDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,  // keep last seven files
		MaxAge:     14, // days
		Compress:   true,
	}, nil
}

func rootLevel(snap *config.Snapshot) string {
	if snap.Debug {
		return "debug"
	}
	return snap.Logging.Level
}

// lowestLevel is the floor the shared core must accept.
func lowestLevel(snap *config.Snapshot) (zapcore.Level, error) {
	floor, err := parseLevel(rootLevel(snap))
	if err != nil {
		return floor, err
	}
	for _, l := range snap.Logging.Loggers {
		lvl, err := parseLevel(l.Level)
		if err != nil {
			return floor, fmt.Errorf("logger %q: %w", l.Name, err)
		}
		if lvl < floor {
			floor = lvl
		}
	}
	return floor, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("invalid level %q", s)
	}
	return lvl, nil
}
