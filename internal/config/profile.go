// internal/config/profile.go
//
// Deployment profiles.
//
// Context
// -------
// A profile changes defaults and fallbacks, never the shape of resolution.
// Every difference between the two modes lives in the traits table below,
// so adding a knob means adding a column, not a second resolver.
//
// Notes
// -----
//   • Local mirrors a developer workstation: sqlite fallback, plain database
//     connections, local media, and the debug feature module.
//   • Hosted mirrors the managed platform: DATABASE_URL is mandatory, TLS
//     to the database is on, and media is never written to local disk.

package config

import (
	"fmt"
	"strings"
)

// Profile is a named deployment mode.
type Profile int

const (
	Local Profile = iota
	Hosted
)

// traits lists everything a profile is allowed to change.
type traits struct {
	extraFeatures  []string // appended after the shared feature list
	sqliteFallback bool     // DATABASE_URL may be absent
	requireTLS     bool     // default for Database.SSLRequired
	localMedia     bool     // populate media URL/root when no cloud store
}

var profileTraits = map[Profile]traits{
	Local: {
		extraFeatures:  []string{"debug"},
		sqliteFallback: true,
		requireTLS:     false,
		localMedia:     true,
	},
	Hosted: {
		sqliteFallback: false,
		requireTLS:     true,
		localMedia:     false,
	},
}

// String returns the lowercase profile name.
func (p Profile) String() string {
	switch p {
	case Local:
		return "local"
	case Hosted:
		return "hosted"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// MarshalText lets yaml and json print the name instead of the ordinal.
func (p Profile) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ParseProfile maps "local" or "hosted" (any case) to a Profile.  An empty
// string selects Local.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return Local, nil
	case "hosted":
		return Hosted, nil
	default:
		return Local, fmt.Errorf("unknown profile %q (want local or hosted)", s)
	}
}

func (p Profile) traits() (traits, error) {
	t, ok := profileTraits[p]
	if !ok {
		return traits{}, fmt.Errorf("unknown profile %s", p)
	}
	return t, nil
}
