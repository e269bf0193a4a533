// internal/config/loader.go
//
// Settings resolver.
//
/*
Context
--------
`Resolve()` builds one `Snapshot` from three layers (highest precedence
last):

  1. Embedded `defaults.yaml`.
  2. Optional operator override file (`WithOverrideFile`), same shape.
  3. The environment mapping, restricted to the keys in schema.go.

The merged tree is unmarshalled into `document`, validated, checked for
profile-mandatory keys, and then folded into a `Snapshot` by one linear pass.
The profile only contributes the traits from profile.go.

Failure semantics
-----------------
  • Missing mandatory key  → *Error{Kind: MissingRequiredValue}.
  • Unparsable value       → *Error{Kind: MalformedValue}, naming the key.
  • Anything else missing  → silent default.
No partial snapshot is ever returned.

Instrumentation
---------------
  • DEBUG spans: layer loads.
  • ERROR spans: parse, unmarshal, and validation failures.
  • Logs use the global *sugared* logger (`zap.S()`) because resolution runs
    before the configured logger exists; it is a no-op until replaced.

Notes
-----
  • The only non-deterministic step is the secret fallback, isolated behind
    `TokenSource`.
  • The cloud-storage check precedes local media defaults.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	_ "time/tzdata" // timezone validation must not depend on the host

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// baselineHosts lead every allow-list.
var baselineHosts = []string{"127.0.0.1", "localhost"}

/*──────────────────────────── document ────────────────────────────────────*/

// document is the merged koanf tree.  Env-sourced fields stay strings so
// their exact text can be checked ("True" is not "true").
type document struct {
	SecretKey          string `koanf:"secret_key"`
	Debug              string `koanf:"debug"`
	ExternalHostname   string `koanf:"external_hostname"`
	DatabaseURL        string `koanf:"database_url"`
	DatabaseSSLRequire string `koanf:"database_ssl_require" validate:"omitempty,oneof=True False"`
	CloudinaryURL      string `koanf:"cloudinary_url"`
	Port               string `koanf:"port"                 validate:"required,numeric"`
	GeoIPDB            string `koanf:"geoip_db"`

	Features           []string     `koanf:"features"            validate:"required,unique,dive,required"`
	Middleware         []string     `koanf:"middleware"          validate:"required,unique,dive,required"`
	Templates          templatesDoc `koanf:"templates"`
	PasswordValidators []string     `koanf:"password_validators" validate:"dive,required"`
	Locale             localeDoc    `koanf:"locale"`
	Static             staticDoc    `koanf:"static"`
	Media              mediaDoc     `koanf:"media"`
	Database           databaseDoc  `koanf:"database"`
	DefaultAutoField   string       `koanf:"default_auto_field"  validate:"required"`
	Auth               authDoc      `koanf:"auth"`
	Logging            loggingDoc   `koanf:"logging"`
}

type templatesDoc struct {
	Dirs              []string `koanf:"dirs"               validate:"dive,required"`
	AppDirs           bool     `koanf:"app_dirs"`
	ContextProcessors []string `koanf:"context_processors" validate:"unique,dive,required"`
}

type localeDoc struct {
	LanguageCode string `koanf:"language_code" validate:"required,bcp47_language_tag"`
	TimeZone     string `koanf:"time_zone"     validate:"required,timezone"`
	UseI18N      bool   `koanf:"use_i18n"`
	UseTZ        bool   `koanf:"use_tz"`
}

type staticDoc struct {
	URL  string   `koanf:"url"  validate:"required,startswith=/,endswith=/"`
	Root string   `koanf:"root" validate:"required"`
	Dirs []string `koanf:"dirs" validate:"dive,required"`
}

type mediaDoc struct {
	URL  string `koanf:"url"  validate:"required,startswith=/,endswith=/"`
	Root string `koanf:"root" validate:"required"`
}

type databaseDoc struct {
	FallbackFile string `koanf:"fallback_file" validate:"required"`
}

type authDoc struct {
	Backends          []string `koanf:"backends"            validate:"required,unique,dive,required"`
	LoginRedirectURL  string   `koanf:"login_redirect_url"  validate:"required"`
	LogoutRedirectURL string   `koanf:"logout_redirect_url" validate:"required"`
}

type loggingDoc struct {
	Handlers []string      `koanf:"handlers" validate:"required,unique,dive,oneof=console file"`
	Level    string        `koanf:"level"    validate:"required,oneof=debug info warn error"`
	Loggers  []LoggerLevel `koanf:"loggers"  validate:"dive"`
}

/*──────────────────────────── options ─────────────────────────────────────*/

type options struct {
	tokens       TokenSource
	baseDir      string
	overrideFile string
}

// Option tunes Resolve.
type Option func(*options)

// WithTokenSource replaces RandomToken, mainly so tests can pin the
// generated secret.
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithBaseDir sets the directory relative default paths hang off.  The
// default is the working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithOverrideFile layers a YAML file between the defaults and the
// environment.  An empty path is ignored; a missing file is an error.
func WithOverrideFile(path string) Option {
	return func(o *options) { o.overrideFile = path }
}

/*─────────────────────────────── resolver ─────────────────────────────────*/

// Resolve builds the settings snapshot for profile from env.
func Resolve(env Env, profile Profile, opts ...Option) (*Snapshot, error) {
	o := options{tokens: RandomToken, baseDir: "."}
	for _, fn := range opts {
		fn(&o)
	}

	t, err := profile.traits()
	if err != nil {
		return nil, malformed("profile", err)
	}

	baseDir, err := filepath.Abs(o.baseDir)
	if err != nil {
		return nil, fmt.Errorf("config: base dir: %w", err)
	}

	doc, err := loadDocument(env, o.overrideFile)
	if err != nil {
		return nil, err
	}

	for _, key := range schema {
		if key.required != nil && key.required(t) && docValue(doc, key.Path) == "" {
			zap.S().Errorw("config required key missing", "key", key.Name, "profile", profile)
			return nil, missing(key.Name)
		}
	}

	snap := &Snapshot{
		Profile:            profile,
		BaseDir:            baseDir,
		Debug:              doc.Debug == "True",
		InstalledFeatures:  appendUnique(clone(doc.Features), t.extraFeatures...),
		Middleware:         clone(doc.Middleware),
		PasswordValidators: clone(doc.PasswordValidators),
		DefaultAutoField:   doc.DefaultAutoField,
		GeoIPDB:            absPath(baseDir, doc.GeoIPDB),
		Templates: Templates{
			Dirs:              absAll(baseDir, doc.Templates.Dirs),
			AppDirs:           doc.Templates.AppDirs,
			ContextProcessors: clone(doc.Templates.ContextProcessors),
		},
		Locale: Locale{
			LanguageCode: doc.Locale.LanguageCode,
			TimeZone:     doc.Locale.TimeZone,
			UseI18N:      doc.Locale.UseI18N,
			UseTZ:        doc.Locale.UseTZ,
		},
		Auth: Auth{
			Backends:          clone(doc.Auth.Backends),
			LoginRedirectURL:  doc.Auth.LoginRedirectURL,
			LogoutRedirectURL: doc.Auth.LogoutRedirectURL,
		},
		Logging: Logging{
			Handlers: clone(doc.Logging.Handlers),
			Level:    doc.Logging.Level,
			Loggers:  append([]LoggerLevel(nil), doc.Logging.Loggers...),
		},
	}

	if snap.SecretKey, snap.SecretGenerated, err = resolveSecret(doc.SecretKey, o.tokens); err != nil {
		return nil, err
	}

	snap.AllowedHosts = append(clone(baselineHosts), doc.ExternalHostname)

	if snap.ListenAddr, err = resolveListenAddr(doc.Port); err != nil {
		return nil, err
	}

	if snap.Database, err = resolveDatabase(doc, t, baseDir); err != nil {
		zap.S().Errorw("config database descriptor rejected", "err", err)
		return nil, err
	}

	snap.Storage = resolveStorage(doc, t, baseDir)

	zap.S().Debugw("config resolved",
		"profile", profile,
		"debug", snap.Debug,
		"db_driver", snap.Database.Driver,
		"storage", snap.Storage.Backend,
		"secret_generated", snap.SecretGenerated,
	)
	return snap, nil
}

// loadDocument merges the three layers and validates the result.
func loadDocument(env Env, overrideFile string) (document, error) {
	var doc document
	k := koanf.New(".")

	defaults, err := yaml.Parser().Unmarshal(defaultsYAML)
	if err != nil {
		return doc, fmt.Errorf("config: embedded defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return doc, fmt.Errorf("config: embedded defaults: %w", err)
	}
	zap.S().Debugw("config defaults loaded")

	if overrideFile != "" {
		if err := k.Load(file.Provider(overrideFile), yaml.Parser()); err != nil {
			zap.S().Errorw("config override file load failed", "file", overrideFile, "err", err)
			return doc, malformed(overrideFile, err)
		}
		if err := checkExactText(k); err != nil {
			zap.S().Errorw("config override file rejected", "file", overrideFile, "err", err)
			return doc, err
		}
		zap.S().Debugw("config override file loaded", "file", overrideFile)
	}

	if err := k.Load(confmap.Provider(env.overlay(), "."), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return doc, fmt.Errorf("config: env overlay: %w", err)
	}

	if err := k.Unmarshal("", &doc); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return doc, malformed("settings", err)
	}
	if err := validateStruct(&doc, ""); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return doc, err
	}
	return doc, nil
}

// checkExactText rejects exact keys the file gave as a non-string scalar.
func checkExactText(k *koanf.Koanf) error {
	for _, key := range schema {
		if !key.exact || !k.Exists(key.Path) {
			continue
		}
		if v := k.Get(key.Path); v != nil {
			if _, ok := v.(string); !ok {
				return malformed(key.Path, fmt.Errorf("must be a quoted string, got %T", v))
			}
		}
	}
	return nil
}

/*──────────────────────────── field resolution ───────────────────────────*/

func resolveSecret(supplied string, tokens TokenSource) (string, bool, error) {
	if supplied != "" {
		return supplied, false, nil
	}
	tok, err := tokens()
	if err != nil {
		return "", false, fmt.Errorf("config: generate %s: %w", keySecret, err)
	}
	if tok == "" {
		return "", false, fmt.Errorf("config: generate %s: empty token", keySecret)
	}
	return tok, true, nil
}

func resolveListenAddr(port string) (string, error) {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", malformed(keyPort, fmt.Errorf("port must be 1-65535, got %q", port))
	}
	return ":" + strconv.Itoa(n), nil
}

func resolveDatabase(doc document, t traits, baseDir string) (Database, error) {
	var db Database
	if doc.DatabaseURL == "" {
		if !t.sqliteFallback {
			return db, missing(keyDatabaseURL)
		}
		db = Database{Driver: DriverSQLite, Name: absPath(baseDir, doc.Database.FallbackFile)}
	} else {
		parsed, err := parseDatabaseURL(doc.DatabaseURL)
		if err != nil {
			return db, malformed(keyDatabaseURL, err)
		}
		db = parsed
	}

	db.MaxAge = ConnMaxAge
	db.SSLRequired = t.requireTLS
	switch doc.DatabaseSSLRequire {
	case "True":
		db.SSLRequired = true
	case "False":
		db.SSLRequired = false
	}

	if err := validateStruct(&db, keyDatabaseURL); err != nil {
		return Database{}, err
	}
	return db, nil
}

func resolveStorage(doc document, t traits, baseDir string) Storage {
	st := Storage{
		Static: Static{
			URL:    doc.Static.URL,
			Root:   absPath(baseDir, doc.Static.Root),
			Dirs:   absAll(baseDir, doc.Static.Dirs),
			Policy: StaticPolicy,
		},
	}

	if doc.CloudinaryURL != "" {
		st.Backend = BackendCloud
		st.CloudURL = doc.CloudinaryURL
		st.Media = Media{Backend: BackendCloud}
		return st
	}

	st.Backend = BackendLocal
	if t.localMedia {
		st.Media = Media{
			Backend: BackendLocal,
			URL:     doc.Media.URL,
			Root:    absPath(baseDir, doc.Media.Root),
		}
	}
	return st
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// docValue reads an env-backed string field by document path.
func docValue(doc document, path string) string {
	switch path {
	case "secret_key":
		return doc.SecretKey
	case "debug":
		return doc.Debug
	case "external_hostname":
		return doc.ExternalHostname
	case "database_url":
		return doc.DatabaseURL
	case "database_ssl_require":
		return doc.DatabaseSSLRequire
	case "cloudinary_url":
		return doc.CloudinaryURL
	case "port":
		return doc.Port
	case "geoip_db":
		return doc.GeoIPDB
	}
	return ""
}

func absPath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func absAll(base string, ps []string) []string {
	if ps == nil {
		return nil
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = absPath(base, p)
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func appendUnique(s []string, extra ...string) []string {
	for _, e := range extra {
		dup := false
		for _, have := range s {
			if have == e {
				dup = true
				break
			}
		}
		if !dup {
			s = append(s, e)
		}
	}
	return s
}

// IsConfigError reports whether err is a settings error and returns it.
func IsConfigError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
