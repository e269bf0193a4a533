// internal/vault/vault.go
//
// Vault client wrapper for the storefront.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for the one job settings need:
//     reading string values out of KV-v2 secrets while the environment is
//     materialised at startup.
//   - Adds a per-key TTL cache and singleflight de-duplication, so several
//     variables pointing at the same secret cost one round trip.
//   - Oxford commas, two spaces after periods, no m-dash.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(addr, token, log)           // during boot.
//  2. val, err := cli.GetKV(ctx, path, key, ttl)        // envsource expansion.
//
// Environment references look like `vault:secret/storefront#database_url`,
// see ParseRef.
//
// Build tags: none.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefPrefix marks an environment value that must be read from Vault.
const RefPrefix = "vault:"

//
// SECTION 1.  Public façade
//

// KV is the narrow read API the client needs from the SDK.  Tests swap it.
type KV interface {
	Get(ctx context.Context, mount, path string) (map[string]any, error)
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	kv  KV
	log *zap.SugaredLogger
	now func() time.Time
	sfg singleflight.Group

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client.  The SDK reads VAULT_* from the process
// environment first; non-empty addr and token then win, so values that
// only exist in a dotenv file still apply.
func New(addr, token string, log *zap.SugaredLogger) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	if addr != "" {
		cfg.Address = addr
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	if token != "" {
		apiCli.SetToken(token)
	}

	return NewWithKV(sdkKV{apiCli}, log), nil
}

// NewWithKV builds a client around any KV reader.
func NewWithKV(kv KV, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		kv:    kv,
		log:   log,
		now:   time.Now,
		cache: make(map[string]cached),
	}
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.  Concurrent callers for the same path#key share
// one request.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && c.now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	v, err, shared := c.sfg.Do(canonical, func() (any, error) {
		mount, rel := splitMount(secretPath)
		data, err := c.kv.Get(ctx, mount, rel)
		if err != nil {
			return "", fmt.Errorf("vault get %s: %w", secretPath, err)
		}

		raw, ok := data[key]
		if !ok {
			return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
		}

		sval, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
		}

		if ttl > 0 {
			c.cacheMu.Lock()
			c.cache[canonical] = cached{val: sval, exp: c.now().Add(ttl)}
			c.cacheMu.Unlock()
		}
		return sval, nil
	})
	if err != nil {
		return "", err
	}
	c.log.Debugw("vault secret read", "path", secretPath, "key", key, "shared", shared)
	return v.(string), nil
}

//
// SECTION 2.  References
//

// ParseRef splits "vault:mount/path#key".  ok is false when s is not a
// Vault reference at all; err is set when it is one but malformed.
func ParseRef(s string) (path, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(s, RefPrefix)
	if !found {
		return "", "", false, nil
	}
	path, key, found = strings.Cut(rest, "#")
	if !found || path == "" || key == "" {
		return "", "", true, errors.New("vault reference must look like vault:<mount>/<path>#<key>")
	}
	return path, key, true, nil
}

//
// SECTION 3.  Helpers
//

// sdkKV adapts the SDK's KVv2 helper to KV.
type sdkKV struct{ api *vault.Client }

func (s sdkKV) Get(ctx context.Context, mount, path string) (map[string]any, error) {
	sec, err := s.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, errors.New("secret not found")
	}
	return sec.Data, nil
}

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
