// internal/config/schema.go
//
// Environment key schema.
//
// Context
// -------
// Each variable the resolver reads is declared once here with the document
// path it overlays and whether a profile requires it.  Variables not listed
// are ignored, which keeps unrelated process environment out of the
// snapshot.
//
// Notes
// -----
//   • A variable set to the empty string counts as absent.  The overlay
//     never replaces a default or file value with "".
//   • Shapes are checked after the merge, in loader.go and database.go.
//   • The override file must quote exact keys: `debug: "True"`.  An
//     unquoted scalar is rejected instead of being coerced.

package config

import "strings"

// Env is a materialised environment: name → value.
type Env map[string]string

// FromEnviron converts os.Environ-style "KEY=value" pairs.  Later entries
// win, matching the process environment.
func FromEnviron(environ []string) Env {
	env := make(Env, len(environ))
	for _, kv := range environ {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = val
	}
	return env
}

// Key describes one environment variable.
type Key struct {
	Name     string // environment variable
	Path     string // koanf path inside the settings document
	Usage    string
	required func(traits) bool

	// exact keys are compared as text, so the override file must quote
	// them.  YAML would otherwise read True as a bool.
	exact bool
}

// Required reports whether p refuses to start without the key.
func (k Key) Required(p Profile) bool {
	if k.required == nil {
		return false
	}
	t, err := p.traits()
	if err != nil {
		return false
	}
	return k.required(t)
}

const (
	keySecret        = "SECRET_KEY"
	keyDebug         = "DEBUG"
	keyExternalHost  = "RENDER_EXTERNAL_HOSTNAME"
	keyDatabaseURL   = "DATABASE_URL"
	keyDatabaseTLS   = "DATABASE_SSL_REQUIRE"
	keyCloudinaryURL = "CLOUDINARY_URL"
	keyPort          = "PORT"
	keyGeoIPDB       = "GEOIP_DB"
)

var schema = []Key{
	{Name: keySecret, Path: "secret_key", exact: true,
		Usage: "signing secret; generated per process when unset"},
	{Name: keyDebug, Path: "debug", exact: true,
		Usage: `debug mode; only the exact string "True" enables it`},
	{Name: keyExternalHost, Path: "external_hostname",
		Usage: "public hostname appended to the allowed hosts"},
	{Name: keyDatabaseURL, Path: "database_url",
		Usage:    "database connection string (postgres://, mysql://, sqlite://)",
		required: func(t traits) bool { return !t.sqliteFallback }},
	{Name: keyDatabaseTLS, Path: "database_ssl_require", exact: true,
		Usage: `"True" or "False"; overrides the profile TLS default`},
	{Name: keyCloudinaryURL, Path: "cloudinary_url",
		Usage: "cloud object store endpoint; presence disables local media"},
	{Name: keyPort, Path: "port",
		Usage: "HTTP listen port"},
	{Name: keyGeoIPDB, Path: "geoip_db",
		Usage: "MaxMind GeoLite2-City database; enables geolocation in diagnostics"},
}

// Keys returns the schema in declaration order.
func Keys() []Key {
	out := make([]Key, len(schema))
	copy(out, schema)
	return out
}

// keyForPath maps a document path back to its environment variable, or
// returns the path itself for file-only settings.
func keyForPath(path string) string {
	for _, k := range schema {
		if k.Path == path {
			return k.Name
		}
	}
	return path
}

// overlay returns the non-empty schema values in env keyed by document path.
func (e Env) overlay() map[string]any {
	out := make(map[string]any)
	for _, k := range schema {
		if v, ok := e[k.Name]; ok && v != "" {
			out[k.Path] = v
		}
	}
	return out
}
