// Package content contains the data structures that describe content in a flat-file site
package content

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

const (
	// PathSeparator separator for paths in model keys and URIs
	PathSeparator = "/"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Content is a keyed bag of fields, at most one field per name
type Content struct {
	fields map[string]*Field
}

// NewContent constructor
func NewContent(fields ...*Field) *Content {
	c := &Content{
		fields: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		c.Add(f)
	}
	return c
}

// Field returns the field with the given name. The name is normalized the same
// way field names are.
func (c *Content) Field(name string) (*Field, bool) {
	if c == nil || c.fields == nil {
		return nil, false
	}
	f, ok := c.fields[normalizeName(name)]
	return f, ok
}

// Get returns the named field or an empty field so that coercions can be
// chained without nil checks.
func (c *Content) Get(name string) *Field {
	if f, ok := c.Field(name); ok {
		return f
	}
	return NewField(name, "")
}

// Value raw value of the named field, empty if absent
func (c *Content) Value(name string) string {
	if f, ok := c.Field(name); ok {
		return f.Value()
	}
	return ""
}

// Has checks for a field
func (c *Content) Has(name string) bool {
	_, ok := c.Field(name)
	return ok
}

// Set inserts or overwrites a field value
func (c *Content) Set(name, value string) {
	c.Add(NewField(name, value))
}

// Add inserts a copy of f, overwriting the value of an existing field with the
// same name in place.
func (c *Content) Add(f *Field) {
	if f == nil {
		return
	}
	if c.fields == nil {
		c.fields = map[string]*Field{}
	}
	if existing, ok := c.fields[f.name]; ok {
		existing.SetValue(f.value)
		return
	}
	c.fields[f.name] = &Field{name: f.name, value: f.value}
}

// Merge every field of other into c. Incoming values win, fields missing in
// other are kept. Merging the same input twice yields the same field set.
func (c *Content) Merge(other *Content) *Content {
	if other == nil {
		return c
	}
	for _, f := range other.fields {
		c.Add(f)
	}
	return c
}

// Clone deep copy
func (c *Content) Clone() *Content {
	clone := NewContent()
	if c == nil {
		return clone
	}
	for _, f := range c.fields {
		clone.Add(f)
	}
	return clone
}

// Len number of fields
func (c *Content) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Names sorted field names
func (c *Content) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields sorted by name
func (c *Content) Fields() []*Field {
	names := c.Names()
	fields := make([]*Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, c.fields[name])
	}
	return fields
}

// Map name → raw value
func (c *Content) Map() map[string]string {
	m := make(map[string]string, c.Len())
	if c == nil {
		return m
	}
	for name, f := range c.fields {
		m[name] = f.value
	}
	return m
}

func (c *Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
