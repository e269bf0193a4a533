// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// loader.go calls `validateStruct` on the merged settings document, and on
// the parsed database descriptor.  The first failing field is converted
// into a MalformedValue error naming the key an operator would edit: the
// environment variable when the field comes from one, otherwise the
// document path used in the override file.
//
// Notes
// -----
//   • Field names are taken from `koanf` tags so paths match the YAML.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			name, _, _ = strings.Cut(f.Tag.Get("yaml"), ",")
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

//
// public API
//

// validateStruct returns nil or a MalformedValue *Error for the first
// failing field.  A non-empty key is reported as-is, for structs parsed
// from a single variable such as DATABASE_URL.
func validateStruct(s any, key string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return malformed(key, err)
	}
	fe := fieldErrs[0]
	if key == "" {
		key = keyForPath(fieldPath(fe))
	}
	return malformed(key, fmt.Errorf("%s failed %q validation", fieldPath(fe), fe.Tag()))
}

// fieldPath strips the root type name from the namespace:
// "document.locale.time_zone" → "locale.time_zone".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
