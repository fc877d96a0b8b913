package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fwojciec/spider"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Envelope schemas checked before a body is decoded into a request.
// Target contents are left to the schema codec, which reports field paths.
const (
	pageEnvelope = `{
  "type": "object",
  "required": ["url", "target"],
  "properties": {
    "url": {"type": "string", "minLength": 1},
    "target": {"type": "object"},
    "selectors_type": {"type": ["string", "null"]},
    "format": {"type": ["string", "null"]},
    "mode": {"type": ["string", "null"]}
  }
}`

	batchEnvelope = `{
  "type": "object",
  "required": ["target"],
  "anyOf": [
    {"required": ["urls"]},
    {"required": ["sitemap"]}
  ],
  "properties": {
    "urls": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "sitemap": {"type": "string", "minLength": 1},
    "filter": {"type": "array", "items": {"type": "string"}},
    "target": {"type": "object"},
    "selectors_type": {"type": ["string", "null"]},
    "format": {"type": ["string", "null"]},
    "mode": {"type": ["string", "null"]}
  }
}`
)

var envelopes = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	out := make(map[string]*jsonschema.Schema, 2)
	for name, src := range map[string]string{
		"page.json":  pageEnvelope,
		"batch.json": batchEnvelope,
	} {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("load envelope schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile envelope schema %s: %w", name, err)
		}
		out[name] = schema
	}
	return out, nil
})

// validateEnvelope checks body against the named envelope schema.
// Returns EINVALID describing the first violation.
func validateEnvelope(name string, body []byte) error {
	schemas, err := envelopes()
	if err != nil {
		return err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return spider.Errorf(spider.EINVALID, "request body is not valid JSON: %v", err)
	}
	if err := schemas[name].Validate(doc); err != nil {
		return spider.Errorf(spider.EINVALID, "invalid request: %s", violation(err))
	}
	return nil
}

// violation flattens a validation error into its most specific message.
func violation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}
