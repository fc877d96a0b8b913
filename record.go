package spider

import (
	"bytes"
	"encoding/json"
)

// Value is the value of one record field: a Scalar, a List or Records.
// The set of implementations is closed.
type Value interface {
	value()
}

// Scalar is a single string or null. Valid is false for null.
type Scalar struct {
	Value string
	Valid bool
}

func (Scalar) value() {}

// NewScalar returns a non-null Scalar.
func NewScalar(s string) Scalar {
	return Scalar{Value: s, Valid: true}
}

// MarshalJSON encodes the scalar as a JSON string, or null when invalid.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return marshal(s.Value)
}

// List is an ordered sequence of strings.
type List []string

func (List) value() {}

// MarshalJSON encodes the list as a JSON array. A nil list encodes as [].
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return marshal([]string(l))
}

// Records is an ordered sequence of nested records produced by a group.
type Records []*Record

func (Records) value() {}

// MarshalJSON encodes the records as a JSON array. A nil slice encodes as [].
func (r Records) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return marshal([]*Record(r))
}

// FieldValue is a named value inside a Record.
type FieldValue struct {
	Name  string
	Value Value
}

// Record maps field names to values, keeping insertion order.
type Record struct {
	fields []FieldValue
	index  map[string]int
}

// NewRecord returns an empty record with room for n fields.
func NewRecord(n int) *Record {
	return &Record{
		fields: make([]FieldValue, 0, n),
		index:  make(map[string]int, n),
	}
}

// Set stores v under name. Setting an existing name replaces its value
// in place without changing field order.
func (r *Record) Set(name string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, FieldValue{Name: name, Value: v})
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Names returns field names in order.
func (r *Record) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the record's fields in order.
func (r *Record) Fields() []FieldValue {
	if r == nil {
		return nil
	}
	out := make([]FieldValue, len(r.fields))
	copy(out, r.fields)
	return out
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if f.Value == nil {
			val = []byte("null")
		} else if val, err = marshal(f.Value); err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal encodes v without escaping HTML characters, since extracted
// values are frequently markup.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
