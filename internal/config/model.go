// internal/config/model.go
//
// Typed settings model for the storefront.
//
// Context
// -------
// `Resolve()` in loader.go builds exactly one `Snapshot` per process from
// three overlay layers:
//
//   • embedded `defaults.yaml`               – shared defaults,
//   • optional operator override file        – YAML, same shape,
//   • environment mapping                    – highest precedence.
//
// Profile-specific behaviour (feature list, database fallback, TLS default,
// local media defaults) is applied afterwards from the traits table in
// profile.go, so both deployment modes run through the same code path.
//
// Notes
// -----
//   • The snapshot is read-only once returned.  Nothing in this package
//     keeps a reference to it, and nothing re-reads the environment later.
//   • Relative paths from the defaults are resolved against `BaseDir`.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Database section
//

// Driver names the SQL backend a connection string selected.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// ConnMaxAge is the connection reuse window applied to every profile.
const ConnMaxAge = 600

// Database is the structured form of DATABASE_URL (or the local fallback).
// An empty Host leaves the choice to the driver: a unix socket or the
// loopback address.
type Database struct {
	Driver      Driver            `json:"driver"       yaml:"driver"       validate:"required,oneof=postgres mysql sqlite"`
	Name        string            `json:"name"         yaml:"name"         validate:"required"`
	User        string            `json:"user"         yaml:"user"`
	Password    string            `json:"password"     yaml:"password"`
	Host        string            `json:"host"         yaml:"host"`
	Port        int               `json:"port"         yaml:"port"         validate:"min=0,max=65535"`
	MaxAge      int               `json:"max_age"      yaml:"max_age"`
	SSLRequired bool              `json:"ssl_required" yaml:"ssl_required"`
	Options     map[string]string `json:"options"      yaml:"options,omitempty"`
}

//
// Storage section
//

// Backend is where uploaded or collected files live.
type Backend string

const (
	BackendNone  Backend = ""
	BackendLocal Backend = "local"
	BackendCloud Backend = "cloud"
)

// StaticPolicy is fixed across profiles: compressed, content-hashed files
// listed in a manifest.
const StaticPolicy = "compressed_manifest"

// Static describes collected static assets.
type Static struct {
	URL    string   `json:"url"    yaml:"url"`
	Root   string   `json:"root"   yaml:"root"`
	Dirs   []string `json:"dirs"   yaml:"dirs"`
	Policy string   `json:"policy" yaml:"policy"`
}

// Media describes user uploads.  URL and Root stay empty unless the local
// backend is in use and the profile populates local media defaults.
type Media struct {
	Backend Backend `json:"backend" yaml:"backend"`
	URL     string  `json:"url"     yaml:"url"`
	Root    string  `json:"root"    yaml:"root"`
}

// Storage groups static and media descriptors.  CloudURL carries the raw
// CLOUDINARY_URL for the storage collaborator; it is not inspected here.
type Storage struct {
	Backend  Backend `json:"backend"   yaml:"backend"`
	CloudURL string  `json:"cloud_url" yaml:"cloud_url"`
	Static   Static  `json:"static"    yaml:"static"`
	Media    Media   `json:"media"     yaml:"media"`
}

//
// Locale, auth, templates, logging
//

// Locale holds language and time settings.
type Locale struct {
	LanguageCode string `json:"language_code" yaml:"language_code"`
	TimeZone     string `json:"time_zone"     yaml:"time_zone"`
	UseI18N      bool   `json:"use_i18n"      yaml:"use_i18n"`
	UseTZ        bool   `json:"use_tz"        yaml:"use_tz"`
}

// Auth lists authentication backends in priority order (first match wins).
type Auth struct {
	Backends          []string `json:"backends"            yaml:"backends"`
	LoginRedirectURL  string   `json:"login_redirect_url"  yaml:"login_redirect_url"`
	LogoutRedirectURL string   `json:"logout_redirect_url" yaml:"logout_redirect_url"`
}

// Templates describes where page templates are discovered.
type Templates struct {
	Dirs              []string `json:"dirs"               yaml:"dirs"`
	AppDirs           bool     `json:"app_dirs"           yaml:"app_dirs"`
	ContextProcessors []string `json:"context_processors" yaml:"context_processors"`
}

// LoggerLevel sets the minimum severity for one named logger.
type LoggerLevel struct {
	Name  string `json:"name"  yaml:"name"  koanf:"name"  validate:"required"`
	Level string `json:"level" yaml:"level" koanf:"level" validate:"required,oneof=debug info warn error"`
}

// Logging describes log sinks.  Handlers are "console" and/or "file".
type Logging struct {
	Handlers []string      `json:"handlers" yaml:"handlers"`
	Level    string        `json:"level"    yaml:"level"`
	Loggers  []LoggerLevel `json:"loggers"  yaml:"loggers"`
}

//
// Root aggregate
//

// Snapshot is the fully-resolved settings value.  Build it once with
// Resolve, pass it by pointer, and never mutate it.
type Snapshot struct {
	Profile            Profile   `json:"profile"             yaml:"profile"`
	BaseDir            string    `json:"base_dir"            yaml:"base_dir"`
	ListenAddr         string    `json:"listen_addr"         yaml:"listen_addr"`
	SecretKey          string    `json:"secret_key"          yaml:"secret_key"`
	SecretGenerated    bool      `json:"secret_generated"    yaml:"secret_generated"`
	Debug              bool      `json:"debug"               yaml:"debug"`
	AllowedHosts       []string  `json:"allowed_hosts"       yaml:"allowed_hosts"`
	InstalledFeatures  []string  `json:"installed_features"  yaml:"installed_features"`
	Middleware         []string  `json:"middleware"          yaml:"middleware"`
	Templates          Templates `json:"templates"           yaml:"templates"`
	Database           Database  `json:"database"            yaml:"database"`
	PasswordValidators []string  `json:"password_validators" yaml:"password_validators"`
	Storage            Storage   `json:"storage"             yaml:"storage"`
	Locale             Locale    `json:"locale"              yaml:"locale"`
	Auth               Auth      `json:"auth"                yaml:"auth"`
	DefaultAutoField   string    `json:"default_auto_field"  yaml:"default_auto_field"`
	Logging            Logging   `json:"logging"             yaml:"logging"`
	GeoIPDB            string    `json:"geoip_db"            yaml:"geoip_db"`
}

// HasFeature reports whether name is in InstalledFeatures.
func (s *Snapshot) HasFeature(name string) bool {
	for _, f := range s.InstalledFeatures {
		if f == name {
			return true
		}
	}
	return false
}
