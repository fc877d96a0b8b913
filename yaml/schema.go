// Package yaml decodes target schemas written in YAML. It follows the same
// rules as the JSON codec; mapping order in the document is field order.
package yaml

import (
	"github.com/fwojciec/spider"
	"gopkg.in/yaml.v3"
)

// ParseSchema decodes a YAML target schema.
//
//	quote_item:
//	  _parent_object: //div[@class="quote"]
//	  quote: [.//span/text(), string]
//	  tags: [.//a/text(), array]
//	top_tags: //div[@class="tags-box"]//a/text()
func ParseSchema(data []byte) (*spider.Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, spider.Errorf(spider.EINVALID, "invalid YAML schema: %v", err)
	}
	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, spider.Errorf(spider.EINVALID, "schema is empty")
		}
		root = resolve(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, spider.Errorf(spider.EINVALID, "schema must be a mapping")
	}
	return parseFields(root, "", 1)
}

func parseFields(m *yaml.Node, path string, depth int) (*spider.Schema, error) {
	if depth > spider.MaxSchemaDepth {
		return nil, spider.FieldErrorf(spider.EINVALID, path, "schema nesting exceeds %d levels", spider.MaxSchemaDepth)
	}

	schema := &spider.Schema{}
	seen := make(map[string]struct{}, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		name := m.Content[i].Value
		if depth > 1 && name == spider.ParentKey {
			continue
		}
		field := spider.FieldPath(path, name)
		if _, ok := seen[name]; ok {
			return nil, spider.FieldErrorf(spider.EINVALID, field, "duplicate field %q", field)
		}
		seen[name] = struct{}{}

		entry, err := parseEntry(resolve(m.Content[i+1]), field, depth)
		if err != nil {
			return nil, err
		}
		schema.Fields = append(schema.Fields, spider.Field{Name: name, Entry: entry})
	}
	return schema, nil
}

func parseEntry(n *yaml.Node, field string, depth int) (spider.Entry, error) {
	switch {
	case isString(n):
		return &spider.Leaf{Selector: n.Value, Mode: spider.LeafList}, nil
	case n.Kind == yaml.SequenceNode:
		if len(n.Content) != 2 || !isString(resolve(n.Content[0])) || !isString(resolve(n.Content[1])) {
			return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "field '%s' must be a [selector, type] pair", field)
		}
		mode, ok := spider.ParseLeafMode(resolve(n.Content[1]).Value)
		if !ok {
			return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "unsupported field type %q for field '%s'", n.Content[1].Value, field)
		}
		return &spider.Leaf{Selector: resolve(n.Content[0]).Value, Mode: mode}, nil
	case n.Kind == yaml.MappingNode:
		return parseGroup(n, field, depth)
	default:
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "unsupported schema entry for field '%s'", field)
	}
}

func parseGroup(n *yaml.Node, field string, depth int) (spider.Entry, error) {
	var parent *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == spider.ParentKey {
			parent = resolve(n.Content[i+1])
			break
		}
	}
	switch {
	case parent == nil, parent.Kind == yaml.ScalarNode && parent.Tag == "!!null":
		return nil, missingParent(field)
	case !isString(parent):
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, field, "'%s' of field '%s' must be a string", spider.ParentKey, field)
	case parent.Value == "":
		return nil, missingParent(field)
	}

	schema, err := parseFields(n, field, depth+1)
	if err != nil {
		return nil, err
	}
	return &spider.Group{Parent: parent.Value, Schema: schema}, nil
}

func missingParent(field string) error {
	return spider.FieldErrorf(spider.EMISSINGPARENT, field, "'%s' field is required for included item '%s'", spider.ParentKey, field)
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// resolve follows aliases to the node they point at.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
