package extract

import (
	"github.com/fwojciec/spider"
)

// Ensure Extractor implements spider.Extractor at compile time.
var _ spider.Extractor = (*Extractor)(nil)

// Extractor runs one extraction call end to end: it picks the evaluator for
// the request's dialect, parses the markup, resolves the schema and, in flat
// mode, transposes the aggregate record into rows.
//
// Extractor is safe for concurrent use.
type Extractor struct {
	evaluators spider.EvaluatorRegistry
	converter  spider.Converter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConverter sets the converter used for spider.FormatMarkdown requests.
func WithConverter(c spider.Converter) Option {
	return func(e *Extractor) {
		e.converter = c
	}
}

// NewExtractor creates an Extractor over the given evaluators.
func NewExtractor(evaluators spider.EvaluatorRegistry, opts ...Option) *Extractor {
	e := &Extractor{evaluators: evaluators}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves req. All failures abort the call; no partial result is
// returned.
func (e *Extractor) Extract(req *spider.ExtractRequest) (*spider.Result, error) {
	if req == nil {
		return nil, spider.Errorf(spider.EINVALID, "extract request required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ev, err := e.evaluators.Get(req.Dialect)
	if err != nil {
		return nil, err
	}

	if req.Mode == spider.ModeFlat {
		if err := checkFlat(req.Schema); err != nil {
			return nil, err
		}
	}

	resolver := &Resolver{Evaluator: ev}
	if req.Format == spider.FormatMarkdown {
		if e.converter == nil {
			return nil, spider.Errorf(spider.EINVALID, "markdown format is not available")
		}
		resolver.Converter = e.converter
	}

	doc, err := ev.Parse(req.Markup)
	if err != nil {
		return nil, err
	}

	rec, err := resolver.Resolve(doc, req.Schema)
	if err != nil {
		return nil, err
	}

	if req.Mode == spider.ModeNested {
		return &spider.Result{Mode: req.Mode, Record: rec}, nil
	}

	rows, unpacked, err := Transpose(rec)
	if err != nil {
		return nil, err
	}
	if !unpacked {
		return &spider.Result{Mode: req.Mode, Record: rec}, nil
	}
	return &spider.Result{Mode: req.Mode, Records: rows, Unpacked: true}, nil
}

// checkFlat rejects schemas that flat mode cannot transpose.
func checkFlat(schema *spider.Schema) error {
	for _, f := range schema.Fields {
		leaf, ok := f.Entry.(*spider.Leaf)
		if !ok || leaf == nil || leaf.Mode != spider.LeafList {
			return spider.FieldErrorf(spider.EUNSUPPORTED, f.Name, "flat mode accepts only selector strings, field '%s' is not one", f.Name)
		}
	}
	return nil
}
