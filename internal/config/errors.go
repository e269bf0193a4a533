package config

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is.  Every *Error matches exactly one of them.
var (
	ErrMissingRequired = errors.New("missing required value")
	ErrMalformed       = errors.New("malformed value")
)

// Kind classifies a fatal settings error.
type Kind int

const (
	MissingRequiredValue Kind = iota + 1
	MalformedValue
)

func (k Kind) String() string {
	switch k {
	case MissingRequiredValue:
		return "missing required value"
	case MalformedValue:
		return "malformed value"
	default:
		return "unknown"
	}
}

// Error reports the key that stopped resolution.  No snapshot is returned
// alongside it.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s: %s", e.Key, e.Kind)
	}
	return fmt.Sprintf("config: %s: %s: %v", e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMissingRequired:
		return e.Kind == MissingRequiredValue
	case ErrMalformed:
		return e.Kind == MalformedValue
	}
	return false
}

func missing(key string) error {
	return &Error{Kind: MissingRequiredValue, Key: key}
}

func malformed(key string, err error) error {
	return &Error{Kind: MalformedValue, Key: key, Err: err}
}
