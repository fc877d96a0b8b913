package spider

import "strings"

// Dialect identifies a selector grammar.
type Dialect string

// Supported dialects.
const (
	// DialectXPath evaluates tree-path queries (XPath 1.0).
	DialectXPath Dialect = "xpath"

	// DialectCSS evaluates structural-pattern queries (CSS selectors).
	DialectCSS Dialect = "css"
)

// DefaultDialect is used when a request does not name a dialect.
const DefaultDialect = DialectXPath

// ParseDialect returns the dialect named by s.
// Returns EDIALECT if s names neither supported grammar.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectXPath, DialectCSS:
		return d, nil
	}
	return "", Errorf(EDIALECT, "unsupported selectors type %q: expected %q or %q", s, DialectXPath, DialectCSS)
}

// Mode selects how the top-level result is shaped.
type Mode string

// Extraction modes.
const (
	// ModeFlat resolves a schema of list leaves into one aggregate record
	// and then tries to transpose it into one record per matched index.
	ModeFlat Mode = "flat"

	// ModeNested resolves leaves and groups recursively and returns the
	// resulting record as is.
	ModeNested Mode = "nested"
)

// Format selects how element matches are rendered into values.
type Format string

// Value formats.
const (
	// FormatHTML renders element matches as their outer HTML.
	FormatHTML Format = "html"

	// FormatMarkdown converts element matches to Markdown.
	FormatMarkdown Format = "markdown"
)
