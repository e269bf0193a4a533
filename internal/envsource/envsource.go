// internal/envsource/envsource.go
//
// Environment materialisation.
//
/*
Context
--------
The settings resolver never touches the process environment.  This package
reads it once, up front, and hands `config.Resolve` a plain map.  Sources,
highest precedence last:

  1. dotenv files, in the order given (missing files are skipped).
  2. The process environment.

Values of the form `vault:<mount>/<path>#<key>` are then replaced by the
secret they point at.  Lookups run concurrently, bounded by MaxInFlight.
The secret client is built only when a reference exists, from the merged
environment, so VAULT_ADDR may come from a dotenv file.

Notes
-----
  • The process environment is read through the koanf env provider with
    "=" as delimiter.  Variable names never contain "=", so keys are never
    split into nested paths.
  • Errors name the variable, never its value.
  • Oxford commas, two spaces after periods.
*/
package envsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/vault"
)

// MaxInFlight bounds concurrent Vault reads.
const MaxInFlight = 4

// SecretFetcher reads one key out of a secret.  *vault.Client satisfies it.
type SecretFetcher interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// Options controls Load.
type Options struct {
	// Files are dotenv files, lowest precedence first.
	Files []string

	// Environ overrides the process environment (os.Environ format).  Nil
	// means read the real one.
	Environ []string

	// Secrets resolves vault: references.
	Secrets SecretFetcher

	// NewSecrets builds Secrets from the merged environment when Secrets is
	// nil and a reference exists.  With both nil any reference is an error.
	NewSecrets func(env config.Env) (SecretFetcher, error)

	// SecretTTL is passed through to Secrets.GetKV.
	SecretTTL time.Duration

	Log *zap.SugaredLogger
}

// Load returns the merged environment with Vault references expanded.
func Load(ctx context.Context, opt Options) (config.Env, error) {
	log := opt.Log
	if log == nil {
		log = zap.S()
	}

	merged := config.Env{}
	for _, path := range opt.Files {
		vals, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugw("dotenv file not found", "file", path)
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range vals {
			merged[k] = v
		}
		log.Debugw("dotenv file loaded", "file", path, "keys", len(vals))
	}

	procEnv, err := processEnv(opt.Environ)
	if err != nil {
		return nil, err
	}
	for k, v := range procEnv {
		merged[k] = v
	}

	if err := expandSecrets(ctx, merged, opt.Secrets, opt.NewSecrets, opt.SecretTTL); err != nil {
		return nil, err
	}
	return merged, nil
}

// processEnv reads the process environment via koanf, or converts the
// injected environ slice.
func processEnv(environ []string) (config.Env, error) {
	if environ != nil {
		return config.FromEnviron(environ), nil
	}

	k := koanf.New("=")
	if err := k.Load(env.Provider("", "=", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("read process environment: %w", err)
	}
	out := make(config.Env, len(k.Keys()))
	for _, key := range k.Keys() {
		out[key] = k.String(key)
	}
	return out, nil
}

// expandSecrets replaces vault: references in place.
func expandSecrets(ctx context.Context, e config.Env, secrets SecretFetcher,
	newSecrets func(config.Env) (SecretFetcher, error), ttl time.Duration) error {
	type ref struct{ name, path, key string }

	var refs []ref
	for name, val := range e {
		path, key, ok, err := vault.ParseRef(val)
		if !ok {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		refs = append(refs, ref{name: name, path: path, key: key})
	}
	if len(refs) == 0 {
		return nil
	}
	if secrets == nil && newSecrets != nil {
		var err error
		if secrets, err = newSecrets(e); err != nil {
			return fmt.Errorf("vault client: %w", err)
		}
	}
	if secrets == nil {
		return fmt.Errorf("%s references vault but no vault client is configured", refs[0].name)
	}

	results := make([]string, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxInFlight)
	for i, r := range refs {
		i, r := i, r
		g.Go(func() error {
			val, err := secrets.GetKV(gctx, r.path, r.key, ttl)
			if err != nil {
				return fmt.Errorf("%s: %w", r.name, err)
			}
			results[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, r := range refs {
		e[r.name] = results[i]
	}
	return nil
}
