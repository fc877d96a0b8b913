// Package extract implements the extraction engine: it resolves a target
// schema against a parsed document and shapes the result.
package extract

import (
	"fmt"

	"github.com/fwojciec/spider"
)

// Resolver walks a schema against a fragment using one evaluator.
// It keeps no state between calls and never mutates the schema.
type Resolver struct {
	Evaluator spider.Evaluator

	// Converter, if set, renders element matches as Markdown.
	Converter spider.Converter
}

// Resolve produces one record for scope, with fields in schema order.
func (r *Resolver) Resolve(scope spider.Fragment, schema *spider.Schema) (*spider.Record, error) {
	return r.resolve(scope, schema, "", 1)
}

func (r *Resolver) resolve(scope spider.Fragment, schema *spider.Schema, path string, depth int) (*spider.Record, error) {
	if depth > spider.MaxSchemaDepth {
		return nil, spider.FieldErrorf(spider.EINVALID, path, "schema nesting exceeds %d levels", spider.MaxSchemaDepth)
	}

	rec := spider.NewRecord(schema.Len())
	if schema == nil {
		return rec, nil
	}

	for _, f := range schema.Fields {
		name := spider.FieldPath(path, f.Name)

		var (
			v   spider.Value
			err error
		)
		switch e := f.Entry.(type) {
		case *spider.Leaf:
			if e == nil {
				return nil, unsupported(name)
			}
			v, err = r.leaf(scope, e, name)
		case *spider.Group:
			if e == nil {
				return nil, unsupported(name)
			}
			v, err = r.group(scope, e, name, depth)
		default:
			return nil, unsupported(name)
		}
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, v)
	}
	return rec, nil
}

func (r *Resolver) leaf(scope spider.Fragment, leaf *spider.Leaf, name string) (spider.Value, error) {
	if leaf.Selector == "" {
		return nil, spider.FieldErrorf(spider.ESELECTOR, name, "empty selector for field '%s'", name)
	}

	matches, err := r.Evaluator.Values(scope, leaf.Selector)
	if err != nil {
		return nil, selectorError(err, name)
	}

	switch leaf.Mode {
	case spider.LeafScalar:
		if len(matches) == 0 {
			return spider.Scalar{}, nil
		}
		s, err := r.render(matches[0], name)
		if err != nil {
			return nil, err
		}
		return spider.NewScalar(s), nil
	case spider.LeafList:
		list := make(spider.List, 0, len(matches))
		for _, m := range matches {
			s, err := r.render(m, name)
			if err != nil {
				return nil, err
			}
			list = append(list, s)
		}
		return list, nil
	default:
		return nil, spider.FieldErrorf(spider.EUNSUPPORTED, name, "unsupported field type %q for field '%s'", leaf.Mode, name)
	}
}

func (r *Resolver) group(scope spider.Fragment, g *spider.Group, name string, depth int) (spider.Value, error) {
	if g.Parent == "" {
		return nil, spider.FieldErrorf(spider.EMISSINGPARENT, name, "'%s' field is required for included item '%s'", spider.ParentKey, name)
	}

	frags, err := r.Evaluator.Fragments(scope, g.Parent)
	if err != nil {
		return nil, selectorError(err, name)
	}

	records := make(spider.Records, 0, len(frags))
	for _, frag := range frags {
		rec, err := r.resolve(frag, g.Schema, name, depth+1)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Resolver) render(m spider.Match, name string) (string, error) {
	if !m.Element || r.Converter == nil {
		return m.Value, nil
	}
	md, err := r.Converter.Convert(m.Value)
	if err != nil {
		return "", fmt.Errorf("convert field %q: %w", name, err)
	}
	return md, nil
}

func unsupported(name string) error {
	return spider.FieldErrorf(spider.EUNSUPPORTED, name, "unsupported schema entry for field '%s'", name)
}

// selectorError attaches the field name to evaluator failures.
func selectorError(err error, name string) error {
	if spider.ErrorCode(err) != spider.ESELECTOR {
		return err
	}
	return spider.FieldErrorf(spider.ESELECTOR, name, "field '%s': %s", name, spider.ErrorMessage(err))
}
