package spider

import "strings"

// ParentKey is the reserved key that carries a group's parent selector in
// serialized schemas.
const ParentKey = "_parent_object"

// MaxSchemaDepth bounds group nesting. A top-level schema has depth 1 and
// each nested group adds one.
const MaxSchemaDepth = 32

// LeafMode selects how many matches a leaf keeps.
type LeafMode string

// Leaf modes.
const (
	// LeafScalar keeps the first match, or null when nothing matches.
	LeafScalar LeafMode = "scalar"

	// LeafList keeps every match in document order.
	LeafList LeafMode = "list"
)

// ParseLeafMode maps a serialized leaf mode onto a LeafMode. Both the
// "string"/"array" spelling and the "scalar"/"list" spelling are accepted.
func ParseLeafMode(s string) (LeafMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "scalar":
		return LeafScalar, true
	case "array", "list":
		return LeafList, true
	}
	return "", false
}

// Entry is a single schema entry: either a *Leaf or a *Group.
// The set of implementations is closed.
type Entry interface {
	entry()
}

// Leaf extracts string values directly with a selector.
type Leaf struct {
	Selector string
	Mode     LeafMode
}

func (*Leaf) entry() {}

// Group scopes a repeated sub-structure. Parent selects zero or more
// sub-fragments and Schema is resolved once against each of them.
type Group struct {
	Parent string
	Schema *Schema
}

func (*Group) entry() {}

// Field binds a field name to a schema entry.
type Field struct {
	Name  string
	Entry Entry
}

// Schema is an ordered list of fields. Output records follow the order in
// which fields are declared here.
type Schema struct {
	Fields []Field
}

// NewSchema returns a schema with the given fields.
func NewSchema(fields ...Field) *Schema {
	return &Schema{Fields: fields}
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Fields)
}

// Flat reports whether every entry is a list leaf. Only flat schemas can be
// transposed into rows.
func (s *Schema) Flat() bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fields {
		leaf, ok := f.Entry.(*Leaf)
		if !ok || leaf.Mode != LeafList {
			return false
		}
	}
	return true
}

// Depth returns the nesting depth of the schema.
func (s *Schema) Depth() int {
	if s == nil {
		return 0
	}
	depth := 1
	for _, f := range s.Fields {
		if g, ok := f.Entry.(*Group); ok {
			if d := g.Schema.Depth() + 1; d > depth {
				depth = d
			}
		}
	}
	return depth
}

// Validate returns an error if field names are empty or repeated within a
// level, if groups nest deeper than MaxSchemaDepth, or if an entry has an
// invalid shape: EMISSINGPARENT for a group without a parent selector and
// EUNSUPPORTED for nil or unknown entries and leaf modes.
func (s *Schema) Validate() error {
	if s == nil {
		return Errorf(EINVALID, "schema required")
	}
	return s.validate("", 1)
}

func (s *Schema) validate(path string, depth int) error {
	if depth > MaxSchemaDepth {
		return FieldErrorf(EINVALID, path, "schema nesting exceeds %d levels", MaxSchemaDepth)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		name := FieldPath(path, f.Name)
		if f.Name == "" {
			return FieldErrorf(EINVALID, path, "empty field name in schema")
		}
		if f.Name == ParentKey {
			return FieldErrorf(EINVALID, name, "%q is reserved for parent selectors", ParentKey)
		}
		if _, ok := seen[f.Name]; ok {
			return FieldErrorf(EINVALID, name, "duplicate field %q", name)
		}
		seen[f.Name] = struct{}{}

		if err := validateEntry(f.Entry, name, depth); err != nil {
			return err
		}
	}
	return nil
}

// validateEntry checks the shape of one entry. Groups are checked all the
// way down, so a group without a parent selector is reported even when no
// fragment would ever reach it.
func validateEntry(e Entry, name string, depth int) error {
	switch e := e.(type) {
	case *Leaf:
		if e == nil {
			break
		}
		if e.Mode != LeafScalar && e.Mode != LeafList {
			return FieldErrorf(EUNSUPPORTED, name, "unsupported field type %q for field '%s'", e.Mode, name)
		}
		return nil
	case *Group:
		if e == nil {
			break
		}
		if e.Parent == "" {
			return FieldErrorf(EMISSINGPARENT, name, "'%s' field is required for included item '%s'", ParentKey, name)
		}
		if e.Schema == nil {
			return nil
		}
		return e.Schema.validate(name, depth+1)
	}
	return FieldErrorf(EUNSUPPORTED, name, "unsupported schema entry for field '%s'", name)
}

// FieldPath joins a parent path and a field name with a dot.
func FieldPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
