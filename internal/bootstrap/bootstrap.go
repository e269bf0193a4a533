// internal/bootstrap/bootstrap.go
//
// Shared startup path for every binary: materialise the environment, pick
// the profile, and resolve the settings snapshot.
//
// Flow
// ----
//
//  1. envsource.Load: dotenv files, then process env, then vault: refs.
//     The Vault client is built only when a reference exists, from
//     VAULT_ADDR and VAULT_TOKEN as merged from all of those sources.
//  2. Profile: explicit option, else APP_PROFILE, else local.
//  3. Override file: explicit option, else `<root>/conf/settings.yaml` when
//     it exists.
//  4. config.Resolve, with the outcome recorded in metrics.
//  5. GeoIP database for request diagnostics, when GEOIP_DB names one.
//
// Notes
// -----
// • The returned snapshot is the only settings object the process uses.
// • Oxford commas, two spaces after periods.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/envsource"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/vault"
)

const (
	// GlobalEnvPath is the host-wide env file read before the local .env.
	GlobalEnvPath = "/usr/local/etc/storefront/global.env"

	// ProfileVar selects the deployment profile.
	ProfileVar = "APP_PROFILE"

	secretTTL = 5 * time.Minute
)

// DefaultEnvFiles is the dotenv search list, lowest precedence first.
var DefaultEnvFiles = []string{GlobalEnvPath, ".env"}

// Options controls Settings.  Zero values pick the defaults above.
type Options struct {
	Profile      string
	EnvFiles     []string
	OverrideFile string
	RootDir      string

	// Environ replaces the process environment in tests.
	Environ []string

	// Secrets replaces the Vault client in tests.
	Secrets envsource.SecretFetcher

	// Tokens replaces the secret generator in tests.
	Tokens config.TokenSource

	Log *zap.SugaredLogger
}

// Settings runs the startup flow and returns the resolved snapshot.
func Settings(ctx context.Context, opt Options) (*config.Snapshot, error) {
	log := opt.Log
	if log == nil {
		log = zap.S()
	}

	root := opt.RootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		root = wd
	}

	files := opt.EnvFiles
	if files == nil {
		files = DefaultEnvFiles
	}

	env, err := envsource.Load(ctx, envsource.Options{
		Files:      files,
		Environ:    opt.Environ,
		Secrets:    opt.Secrets,
		NewSecrets: newVault(log),
		SecretTTL:  secretTTL,
		Log:        log,
	})
	if err != nil {
		metrics.ObserveResolveError(err)
		return nil, err
	}

	name := opt.Profile
	if name == "" {
		name = env[ProfileVar]
	}
	profile, err := config.ParseProfile(name)
	if err != nil {
		metrics.ObserveResolveError(err)
		return nil, err
	}

	override, err := overrideFile(root, opt.OverrideFile)
	if err != nil {
		return nil, err
	}

	opts := []config.Option{config.WithBaseDir(root), config.WithOverrideFile(override)}
	if opt.Tokens != nil {
		opts = append(opts, config.WithTokenSource(opt.Tokens))
	}

	snap, err := config.Resolve(env, profile, opts...)
	if err != nil {
		metrics.ObserveResolveError(err)
		return nil, err
	}
	metrics.ObserveSnapshot(snap)

	if snap.GeoIPDB != "" {
		if err := requestinfo.InitGeo(snap.GeoIPDB); err != nil {
			return nil, err
		}
	}

	log.Infow("settings resolved",
		"profile", snap.Profile,
		"debug", snap.Debug,
		"db_driver", snap.Database.Driver,
		"storage", snap.Storage.Backend,
		"override", override,
		"geoip", snap.GeoIPDB != "",
	)
	return snap, nil
}

// newVault builds the Vault client from the merged environment.  No
// VAULT_ADDR anywhere means no client.
func newVault(log *zap.SugaredLogger) func(config.Env) (envsource.SecretFetcher, error) {
	return func(env config.Env) (envsource.SecretFetcher, error) {
		addr := env["VAULT_ADDR"]
		if addr == "" {
			return nil, nil
		}
		return vault.New(addr, env["VAULT_TOKEN"], log)
	}
}

// overrideFile returns explicit when set, else the conventional file when
// present, else "".
func overrideFile(root, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p := filepath.Join(root, "conf", "settings.yaml")
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return p, nil
}
