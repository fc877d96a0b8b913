package spider

// Fragment is an immutable, scoped view of a parsed document. Fragments are
// only meaningful to the Evaluator that produced them.
type Fragment interface {
	// Markup renders the fragment back to HTML.
	Markup() (string, error)
}

// Match is a single value produced by a selector.
type Match struct {
	Value string

	// Element is true when Value is the serialized HTML of an element
	// match, as opposed to text, attribute or computed values.
	Element bool
}

// Evaluator evaluates selector expressions of one dialect.
// Implementations must be safe for concurrent use.
type Evaluator interface {
	// Dialect returns the grammar this evaluator understands.
	Dialect() Dialect

	// Parse builds the root fragment from raw markup.
	Parse(markup string) (Fragment, error)

	// Values returns the values matched by expr within scope in document
	// order. No match yields an empty slice, not an error.
	// Returns ESELECTOR if expr is malformed.
	Values(scope Fragment, expr string) ([]Match, error)

	// Fragments returns the sub-fragments matched by expr within scope
	// in document order.
	// Returns ESELECTOR if expr is malformed.
	Fragments(scope Fragment, expr string) ([]Fragment, error)
}

// EvaluatorRegistry maps dialects onto evaluators.
type EvaluatorRegistry interface {
	// Get returns the evaluator for a dialect.
	// Returns EDIALECT if no evaluator is registered for it.
	Get(dialect Dialect) (Evaluator, error)

	// Register adds an evaluator under its own dialect.
	Register(ev Evaluator)

	// List returns all registered dialects.
	List() []Dialect
}

// ExtractRequest is one extraction call: raw markup, the target schema and
// how to evaluate and shape it.
type ExtractRequest struct {
	Markup  string
	Schema  *Schema
	Dialect Dialect
	Mode    Mode
	Format  Format
}

// Validate returns an error if the request cannot be resolved. It runs
// before any markup is parsed.
func (r *ExtractRequest) Validate() error {
	if _, err := ParseDialect(string(r.Dialect)); err != nil {
		return err
	}
	switch r.Mode {
	case ModeFlat, ModeNested:
	default:
		return Errorf(EINVALID, "unsupported mode %q", r.Mode)
	}
	switch r.Format {
	case "", FormatHTML, FormatMarkdown:
	default:
		return Errorf(EINVALID, "unsupported format %q", r.Format)
	}
	return r.Schema.Validate()
}

// Result is the outcome of one extraction call.
type Result struct {
	Mode Mode

	// Record is the aggregate record. It is nil when a flat result was
	// unpacked into Records.
	Record *Record

	// Records holds one record per matched index for unpacked flat results.
	Records []*Record

	// Unpacked reports whether a flat result was transposed into Records.
	Unpacked bool
}

// Data returns the records when the result was unpacked and the aggregate
// record otherwise.
func (r *Result) Data() any {
	if r.Unpacked {
		return Records(r.Records)
	}
	return r.Record
}

// Extractor runs the extraction engine over raw markup.
// Implementations are synchronous and keep no state between calls.
type Extractor interface {
	Extract(req *ExtractRequest) (*Result, error)
}
