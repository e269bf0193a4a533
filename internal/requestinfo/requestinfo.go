// internal/requestinfo/requestinfo.go
//
// Per-request facts for diagnostics: client address, preferred language,
// the classified user agent, and an optional geolocation.  The struct is
// inert and safe to JSON-encode.
//
// Notes
// -----
//   - Behind the hosting proxy the peer address is the proxy, so the
//     left-most parseable X-Forwarded-For entry wins, then X-Real-IP, then
//     r.RemoteAddr.
//   - Geolocation needs a GeoLite2-City file opened with InitGeo.  Without
//     one, or when the address is unknown to it, Geo stays empty.
//   - Oxford commas, two spaces after periods.  No em dash.
package requestinfo

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/oschwald/geoip2-golang"

	"github.com/yanizio/storefront/internal/ua"
)

// Geo holds IP-based geolocation hints.
type Geo struct {
	CountryISO string `json:"country_iso,omitempty"` // "US", "CA", "FR"
	City       string `json:"city,omitempty"`
}

// Info describes one request.
type Info struct {
	IP    string   `json:"ip"`
	Lang  string   `json:"lang,omitempty"`
	Host  string   `json:"host"`
	Path  string   `json:"path"`
	Query string   `json:"query,omitempty"`
	Agent ua.Agent `json:"agent"`
	Geo   Geo      `json:"geo"`
}

// geoReader is the process-wide MaxMind handle; reads are concurrent-safe.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database at path, replacing any reader
// opened earlier.
func InitGeo(path string) error {
	r, err := geoip2.Open(path)
	if err != nil {
		return fmt.Errorf("requestinfo: open geoip db: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the reader opened by InitGeo, if any.
func CloseGeo() {
	if old := geoReader.Swap(nil); old != nil {
		_ = old.Close()
	}
}

// Describe collects Info from r.
func Describe(r *http.Request) Info {
	info := Info{
		Lang:  primaryLang(r.Header.Get("Accept-Language")),
		Host:  r.Host,
		Path:  r.URL.Path,
		Query: r.URL.RawQuery,
		Agent: ua.Parse(r.UserAgent()),
	}
	if ip := clientIP(r); ip != nil {
		info.IP = ip.String()
		info.Geo = lookupGeo(ip)
	}
	return info
}

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}

// primaryLang returns the first tag of an Accept-Language list, without
// its quality value.
func primaryLang(al string) string {
	first, _, _ := strings.Cut(al, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

// lookupGeo is best effort: any failure yields an empty Geo.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{CountryISO: rec.Country.IsoCode, City: rec.City.Names["en"]}
}
