package config

import (
	"net"
	"strings"
)

// HostAllowed reports whether a request Host header matches the allow-list.
//
// Patterns match case-insensitively.  A leading dot matches the domain and
// every subdomain, "*" matches anything, and an empty entry (an unset
// RENDER_EXTERNAL_HOSTNAME) matches nothing.
func (s *Snapshot) HostAllowed(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	for _, pattern := range s.AllowedHosts {
		if hostMatches(strings.ToLower(pattern), host) {
			return true
		}
	}
	return false
}

func hostMatches(pattern, host string) bool {
	switch {
	case pattern == "":
		return false
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "."):
		return host == pattern[1:] || strings.HasSuffix(host, pattern)
	default:
		return host == pattern
	}
}

// normalizeHost drops the port and a trailing dot, then lowercases.
func normalizeHost(h string) string {
	if hp, _, err := net.SplitHostPort(h); err == nil {
		h = hp
	}
	h = strings.TrimSuffix(strings.TrimSpace(h), ".")
	return strings.ToLower(strings.Trim(h, "[]"))
}
