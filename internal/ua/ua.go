// internal/ua/ua.go
//
// User-Agent classification backed by github.com/avct/uasurfer.  The
// library's enums stay inside this file; callers see plain strings.
package ua

import (
	"fmt"
	"strconv"

	surfer "github.com/avct/uasurfer"
)

// Agent is the JSON-friendly summary of a User-Agent header.
//
// Device is one of "Desktop", "Mobile", "Tablet", or "Other".
type Agent struct {
	Browser   string `json:"browser"`
	Version   string `json:"version,omitempty"`
	OS        string `json:"os"`
	OSVersion string `json:"os_version,omitempty"`
	Device    string `json:"device"`
	Platform  string `json:"platform"`
	Bot       bool   `json:"bot"`
}

// Parse classifies raw.  An empty header yields the library's unknown
// values rather than an error.
func Parse(raw string) Agent {
	u := surfer.Parse(raw)

	a := Agent{
		Browser:   u.Browser.Name.StringTrimPrefix(),
		Version:   dotted(u.Browser.Version),
		OS:        u.OS.Name.StringTrimPrefix(),
		OSVersion: dotted(u.OS.Version),
		Platform:  u.OS.Platform.StringTrimPrefix(),
		Bot:       u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		a.Device = "Desktop"
	case surfer.DeviceTablet:
		a.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		a.Device = "Mobile"
	default:
		a.Device = "Other"
	}
	return a
}

// dotted trims trailing zero components: 17.0.0 → "17", 17.3.0 → "17.3".
func dotted(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(int(v.Major))
	}
}
