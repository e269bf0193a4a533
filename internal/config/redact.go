package config

import (
	"maps"
	"slices"
)

const redacted = "********"

// Redacted returns a deep copy safe to print: the secret, the database
// password, and the cloud storage URL are masked.
func (s *Snapshot) Redacted() *Snapshot {
	out := *s
	out.AllowedHosts = slices.Clone(s.AllowedHosts)
	out.InstalledFeatures = slices.Clone(s.InstalledFeatures)
	out.Middleware = slices.Clone(s.Middleware)
	out.PasswordValidators = slices.Clone(s.PasswordValidators)
	out.Templates.Dirs = slices.Clone(s.Templates.Dirs)
	out.Templates.ContextProcessors = slices.Clone(s.Templates.ContextProcessors)
	out.Storage.Static.Dirs = slices.Clone(s.Storage.Static.Dirs)
	out.Auth.Backends = slices.Clone(s.Auth.Backends)
	out.Logging.Handlers = slices.Clone(s.Logging.Handlers)
	out.Logging.Loggers = slices.Clone(s.Logging.Loggers)
	out.Database.Options = maps.Clone(s.Database.Options)

	out.SecretKey = mask(s.SecretKey)
	out.Database.Password = mask(s.Database.Password)
	out.Storage.CloudURL = mask(s.Storage.CloudURL)
	return &out
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return redacted
}
