// Package goquery implements spider.Evaluator for CSS selectors using
// PuerkitoBio/goquery and andybalholm/cascadia.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/spider"
	"golang.org/x/net/html"
)

// Ensure Evaluator implements spider.Evaluator at compile time.
var _ spider.Evaluator = (*Evaluator)(nil)

// pseudoRE splits a trailing ::text or ::attr(name) pseudo-element off a
// selector.
var pseudoRE = regexp.MustCompile(`^(.*?)::(text|attr\(\s*([^)\s]+)\s*\))\s*$`)

// Fragment wraps a single-node selection.
type Fragment struct {
	sel *goquery.Selection
}

// Selection returns the underlying selection.
func (f *Fragment) Selection() *goquery.Selection {
	return f.sel
}

// Markup renders the fragment as HTML.
func (f *Fragment) Markup() (string, error) {
	return goquery.OuterHtml(f.sel)
}

// Evaluator evaluates CSS selectors. A selector matches the scope element
// itself as well as its descendants.
//
// A selector may end with one pseudo-element:
//
//	span.text::text    direct child text nodes, one value each
//	a::attr(href)      the attribute value of each match that has it
//	::text             text nodes directly under the scope itself
//
// Without a pseudo-element every match renders as outer HTML.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Dialect returns spider.DialectCSS.
func (e *Evaluator) Dialect() spider.Dialect {
	return spider.DialectCSS
}

// Parse parses markup into a document fragment.
func (e *Evaluator) Parse(markup string) (spider.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, spider.Errorf(spider.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Fragment{sel: doc.Selection}, nil
}

// Values returns the values selected by expr within scope.
func (e *Evaluator) Values(scope spider.Fragment, expr string) ([]spider.Match, error) {
	q, err := compile(expr)
	if err != nil {
		return nil, err
	}
	sel, err := q.find(scope)
	if err != nil {
		return nil, err
	}

	matches := []spider.Match{}
	sel.Each(func(_ int, s *goquery.Selection) {
		switch {
		case q.text:
			for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					matches = append(matches, spider.Match{Value: c.Data})
				}
			}
		case q.attr != "":
			if v, ok := s.Attr(q.attr); ok {
				matches = append(matches, spider.Match{Value: v})
			}
		default:
			if out, err := goquery.OuterHtml(s); err == nil {
				matches = append(matches, spider.Match{Value: out, Element: true})
			}
		}
	})
	return matches, nil
}

// Fragments returns one fragment per element selected by expr within scope.
func (e *Evaluator) Fragments(scope spider.Fragment, expr string) ([]spider.Fragment, error) {
	q, err := compile(expr)
	if err != nil {
		return nil, err
	}
	if q.text || q.attr != "" {
		return nil, spider.Errorf(spider.ESELECTOR, "selector %q selects values, not elements", expr)
	}
	sel, err := q.find(scope)
	if err != nil {
		return nil, err
	}

	frags := []spider.Fragment{}
	sel.Each(func(_ int, s *goquery.Selection) {
		frags = append(frags, &Fragment{sel: s})
	})
	return frags, nil
}

// query is a compiled selector with its optional pseudo-element.
type query struct {
	matcher cascadia.Selector
	text    bool
	attr    string
}

func compile(expr string) (*query, error) {
	q := &query{}
	base := expr
	if m := pseudoRE.FindStringSubmatch(expr); m != nil {
		base = m[1]
		if m[2] == "text" {
			q.text = true
		} else {
			q.attr = m[3]
		}
	}

	// A bare pseudo-element applies to the scope itself.
	if strings.TrimSpace(base) == "" {
		if !q.text && q.attr == "" {
			return nil, spider.Errorf(spider.ESELECTOR, "empty selector")
		}
		return q, nil
	}

	matcher, err := cascadia.Compile(base)
	if err != nil {
		return nil, spider.Errorf(spider.ESELECTOR, "invalid css selector %q: %v", expr, err)
	}
	q.matcher = matcher
	return q, nil
}

func (q *query) find(scope spider.Fragment) (*goquery.Selection, error) {
	frag, ok := scope.(*Fragment)
	if !ok || frag == nil {
		return nil, spider.Errorf(spider.EINVALID, "fragment %T was not produced by the css evaluator", scope)
	}
	if q.matcher == nil {
		return frag.sel, nil
	}
	return frag.sel.FilterMatcher(q.matcher).AddSelection(frag.sel.FindMatcher(q.matcher)), nil
}
