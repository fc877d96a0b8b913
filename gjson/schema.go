// Package gjson decodes target schemas and request envelopes from JSON
// using tidwall/gjson, which walks objects in document order and so keeps
// the declared field order.
package gjson

import (
	"github.com/fwojciec/spider"
	"github.com/tidwall/gjson"
)

// ParseSchema decodes a JSON target schema.
//
// A bare string is a list leaf, a [selector, mode] array is an explicit
// leaf and an object is a group whose "_parent_object" key holds the
// parent selector. The parent key is split off the group without touching
// the input.
func ParseSchema(data []byte) (*spider.Schema, error) {
	if !gjson.ValidBytes(data) {
		return nil, spider.Errorf(spider.EINVALID, "schema is not valid JSON")
	}
	return parseSchema(gjson.ParseBytes(data))
}

func parseSchema(v gjson.Result) (*spider.Schema, error) {
	if !v.IsObject() {
		return nil, spider.Errorf(spider.EINVALID, "schema must be a JSON object")
	}
	return parseFields(v, "", 1)
}

func parseFields(obj gjson.Result, path string, depth int) (*spider.Schema, error) {
	if depth > spider.MaxSchemaDepth {
		return nil, spider.FieldErrorf(spider.EINVALID, path, "schema nesting exceeds %d levels", spider.MaxSchemaDepth)
	}

	schema := &spider.Schema{}
	seen := make(map[string]struct{})
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if depth > 1 && name == spider.ParentKey {
			return true
		}
		field := spider.FieldPath(path, name)
		if _, ok := seen[name]; ok {
			err = spider.FieldErrorf(spider.EINVALID, field, "duplicate field %q", field)
			return false
		}
		seen[name] = struct{}{}

		var entry spider.Entry
		if entry, err = parseEntry(value, field, depth); err != nil {
			return false
		}
		schema.Fields = append(schema.Fields, spider.Field{Name: name, Entry: entry})
		return true
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}

func parseEntry(v gjson.Result, field string, depth int) (spider.Entry, error) {
	switch {
	case v.Type == gjson.String:
		return &spider.Leaf{Selector: v.Str, Mode: spider.LeafList}, nil
	case v.IsArray():
		return parseLeaf(v, field)
	case v.IsObject():
		return parseGroup(v, field, depth)
	default:
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "unsupported schema entry for field '%s'", field)
	}
}

func parseLeaf(v gjson.Result, field string) (spider.Entry, error) {
	items := v.Array()
	if len(items) != 2 || items[0].Type != gjson.String || items[1].Type != gjson.String {
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "field '%s' must be a [selector, type] pair", field)
	}
	mode, ok := spider.ParseLeafMode(items[1].Str)
	if !ok {
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "unsupported field type %q for field '%s'", items[1].Str, field)
	}
	return &spider.Leaf{Selector: items[0].Str, Mode: mode}, nil
}

func parseGroup(v gjson.Result, field string, depth int) (spider.Entry, error) {
	parent := v.Get(spider.ParentKey)
	switch {
	case !parent.Exists(), parent.Type == gjson.Null:
		return nil, missingParent(field)
	case parent.Type != gjson.String:
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "'%s' of field '%s' must be a string", spider.ParentKey, field)
	case parent.Str == "":
		return nil, missingParent(field)
	}

	schema, err := parseFields(v, field, depth+1)
	if err != nil {
		return nil, err
	}
	return &spider.Group{Parent: parent.Str, Schema: schema}, nil
}

func missingParent(field string) error {
	return spider.FieldErrorf(spider.EMISSINGPARENT, field, "'%s' field is required for included item '%s'", spider.ParentKey, field)
}
