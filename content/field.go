package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrParse is returned by typed coercions when the raw value does not match
// the requested type.
var ErrParse = errors.New("parse error")

// uuid schemes kirby prefixes identifiers with
var idSchemes = []string{"page://", "file://", "site://", "user://"}

// Field a named raw value with lazy typed coercions
type Field struct {
	name  string
	value string
}

// NewField constructor, the name is trimmed and lower cased
func NewField(name, value string) *Field {
	return &Field{
		name:  normalizeName(name),
		value: value,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Value() string {
	return f.value
}

func (f *Field) SetValue(v string) {
	f.value = v
}

func (f *Field) String() string {
	return f.value
}

// IsEmpty is the trimmed value empty
func (f *Field) IsEmpty() bool {
	return strings.TrimSpace(f.value) == ""
}

// ------------------------------------------------------------------------------------------------
// ~ Coercions
// ------------------------------------------------------------------------------------------------

func (f *Field) Int() (int, error) {
	d, err := decimal(f.value)
	if err != nil {
		return 0, f.parseError("int", err)
	}
	v, err := cast.ToIntE(d)
	if err != nil {
		return 0, f.parseError("int", err)
	}
	return v, nil
}

func (f *Field) Float() (float64, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(f.value))
	if err != nil {
		return 0, f.parseError("float", err)
	}
	return v, nil
}

func (f *Field) Bool() (bool, error) {
	v, err := cast.ToBoolE(strings.TrimSpace(f.value))
	if err != nil {
		return false, f.parseError("bool", err)
	}
	return v, nil
}

// decimal strips leading zeros of an optionally signed run of digits so cast
// does not read it as octal. Hex, octal and binary prefixes are rejected.
func decimal(v string) (string, error) {
	v = strings.TrimSpace(v)
	sign, digits := "", v
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return "", fmt.Errorf("%q is not a decimal integer", v)
	}
	if digits = strings.TrimLeft(digits, "0"); digits == "" {
		digits = "0"
	}
	return sign + digits, nil
}

// List splits a comma separated value, items are trimmed and empty items dropped
func (f *Field) List() []string {
	parts := strings.Split(f.value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

// Time interprets the value as epoch seconds. It never fails: a value that is
// not a number yields the current time. Use TimeE to detect bad data.
func (f *Field) Time() time.Time {
	t, err := f.TimeE()
	if err != nil {
		return time.Now()
	}
	return t
}

// TimeE interprets the value as epoch seconds
func (f *Field) TimeE() (time.Time, error) {
	d, err := decimal(f.value)
	if err != nil {
		return time.Time{}, f.parseError("timestamp", err)
	}
	sec, err := cast.ToInt64E(d)
	if err != nil {
		return time.Time{}, f.parseError("timestamp", err)
	}
	return time.Unix(sec, 0), nil
}

// YAML decodes the value into out
func (f *Field) YAML(out any) error {
	if err := yaml.Unmarshal([]byte(f.value), out); err != nil {
		return f.parseError("yaml", err)
	}
	return nil
}

// Structure decodes a kirby structure field, a yaml list of maps
func (f *Field) Structure() ([]map[string]any, error) {
	var items []map[string]any
	if f.IsEmpty() {
		return items, nil
	}
	if err := f.YAML(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// ID the value without a kirby uuid scheme like "page://"
func (f *Field) ID() string {
	return stripIDScheme(strings.TrimSpace(f.value))
}

func (f *Field) parseError(typ string, err error) error {
	return fmt.Errorf("%w: field %q as %s: %w", ErrParse, f.name, typ, err)
}

func stripIDScheme(v string) string {
	for _, scheme := range idSchemes {
		if strings.HasPrefix(v, scheme) {
			return strings.TrimPrefix(v, scheme)
		}
	}
	return v
}
