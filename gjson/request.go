package gjson

import (
	"strings"

	"github.com/fwojciec/spider"
	"github.com/tidwall/gjson"
)

// Request is a decoded extraction envelope.
type Request struct {
	// URL is the page to extract. Batch envelopes use URLs or Sitemap.
	URL     string
	URLs    []string
	Sitemap string

	// Filter holds include patterns for sitemap discovery.
	Filter []string

	Schema  *spider.Schema
	Dialect spider.Dialect

	// Mode is empty when the envelope does not name one.
	Mode   spider.Mode
	Format spider.Format
}

// ParseRequest decodes an envelope of the form
//
//	{"url": ..., "target": {...}, "selectors_type": "xpath", "format": "html"}
//
// The dialect defaults to spider.DefaultDialect. Target field order is kept.
func ParseRequest(data []byte) (*Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, spider.Errorf(spider.EINVALID, "request body is not valid JSON")
	}
	body := gjson.ParseBytes(data)
	if !body.IsObject() {
		return nil, spider.Errorf(spider.EINVALID, "request body must be a JSON object")
	}

	req := &Request{
		URL:     body.Get("url").String(),
		Sitemap: body.Get("sitemap").String(),
		Dialect: spider.DefaultDialect,
	}
	for _, u := range body.Get("urls").Array() {
		req.URLs = append(req.URLs, u.String())
	}
	for _, f := range body.Get("filter").Array() {
		req.Filter = append(req.Filter, f.String())
	}

	if v := body.Get("selectors_type"); v.Exists() && v.Type != gjson.Null {
		d, err := spider.ParseDialect(v.String())
		if err != nil {
			return nil, err
		}
		req.Dialect = d
	}

	if v := body.Get("mode"); v.Exists() && v.Type != gjson.Null {
		switch m := spider.Mode(strings.ToLower(v.String())); m {
		case spider.ModeFlat, spider.ModeNested:
			req.Mode = m
		default:
			return nil, spider.Errorf(spider.EINVALID, "unsupported mode %q", v.String())
		}
	}

	if v := body.Get("format"); v.Exists() && v.Type != gjson.Null {
		switch f := spider.Format(strings.ToLower(v.String())); f {
		case spider.FormatHTML, spider.FormatMarkdown:
			req.Format = f
		default:
			return nil, spider.Errorf(spider.EINVALID, "unsupported format %q", v.String())
		}
	}

	target := body.Get("target")
	if !target.Exists() {
		return nil, spider.FieldErrorf(spider.EINVALID, "target", "target required")
	}
	schema, err := parseSchema(target)
	if err != nil {
		return nil, err
	}
	req.Schema = schema
	return req, nil
}
