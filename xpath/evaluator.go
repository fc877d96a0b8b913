// Package xpath implements spider.Evaluator for XPath 1.0 expressions over
// HTML parsed with golang.org/x/net/html.
package xpath

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/fwojciec/spider"
	"golang.org/x/net/html"
)

// Ensure Evaluator implements spider.Evaluator at compile time.
var _ spider.Evaluator = (*Evaluator)(nil)

// Fragment is a parsed node used as the context node for XPath queries.
// It keeps its position in the enclosing document, so absolute paths such
// as //div search the whole document while relative paths (./div, .//div,
// ..) start at the fragment.
type Fragment struct {
	nav *htmlquery.NodeNavigator
}

// Node returns the underlying node.
func (f *Fragment) Node() *html.Node {
	return f.nav.Current()
}

// Markup renders the fragment as HTML.
func (f *Fragment) Markup() (string, error) {
	return htmlquery.OutputHTML(f.nav.Current(), true), nil
}

// Evaluator evaluates XPath expressions. It holds no state and is safe
// for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Dialect returns spider.DialectXPath.
func (e *Evaluator) Dialect() spider.Dialect {
	return spider.DialectXPath
}

// Parse parses markup into a document fragment.
func (e *Evaluator) Parse(markup string) (spider.Fragment, error) {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, spider.Errorf(spider.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Fragment{nav: htmlquery.CreateXPathNavigator(doc)}, nil
}

// Values evaluates expr and renders every result as a string.
//
// Element nodes render as outer HTML, text and attribute nodes as their
// text, and non node-set results (count(), string(), boolean()) as a
// single formatted value.
func (e *Evaluator) Values(scope spider.Fragment, expr string) ([]spider.Match, error) {
	result, err := e.evaluate(scope, expr)
	if err != nil {
		return nil, err
	}

	switch v := result.(type) {
	case *xpath.NodeIterator:
		matches := []spider.Match{}
		for v.MoveNext() {
			matches = append(matches, nodeMatch(v.Current()))
		}
		return matches, nil
	case string:
		return []spider.Match{{Value: v}}, nil
	case float64:
		return []spider.Match{{Value: strconv.FormatFloat(v, 'f', -1, 64)}}, nil
	case bool:
		return []spider.Match{{Value: strconv.FormatBool(v)}}, nil
	default:
		return nil, spider.Errorf(spider.ESELECTOR, "xpath %q returned unsupported result %T", expr, result)
	}
}

// Fragments evaluates expr and returns the selected nodes as fragments.
// Attribute matches become detached element fragments holding the
// attribute value as text; they are their own document root.
func (e *Evaluator) Fragments(scope spider.Fragment, expr string) ([]spider.Fragment, error) {
	result, err := e.evaluate(scope, expr)
	if err != nil {
		return nil, err
	}

	iter, ok := result.(*xpath.NodeIterator)
	if !ok {
		return nil, spider.Errorf(spider.ESELECTOR, "xpath %q does not select nodes", expr)
	}

	frags := []spider.Fragment{}
	for iter.MoveNext() {
		nav, ok := iter.Current().(*htmlquery.NodeNavigator)
		if !ok {
			continue
		}
		frags = append(frags, newFragment(nav))
	}
	return frags, nil
}

func (e *Evaluator) evaluate(scope spider.Fragment, expr string) (result any, err error) {
	frag, ok := scope.(*Fragment)
	if !ok || frag == nil || frag.nav == nil {
		return nil, spider.Errorf(spider.EINVALID, "fragment %T was not produced by the xpath evaluator", scope)
	}

	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, spider.Errorf(spider.ESELECTOR, "invalid xpath %q: %v", expr, err)
	}

	// xpath panics on some argument type errors that only surface while
	// evaluating, e.g. passing a number where a node-set is expected.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = spider.Errorf(spider.ESELECTOR, "invalid xpath %q: %v", expr, r)
		}
	}()

	return compiled.Evaluate(frag.nav.Copy()), nil
}

func nodeMatch(n xpath.NodeNavigator) spider.Match {
	nav, ok := n.(*htmlquery.NodeNavigator)
	if !ok {
		return spider.Match{Value: n.Value()}
	}
	switch nav.NodeType() {
	case xpath.ElementNode, xpath.RootNode:
		return spider.Match{Value: htmlquery.OutputHTML(nav.Current(), true), Element: true}
	case xpath.CommentNode:
		return spider.Match{Value: htmlquery.OutputHTML(nav.Current(), true)}
	default:
		return spider.Match{Value: nav.Value()}
	}
}

func newFragment(nav *htmlquery.NodeNavigator) *Fragment {
	if nav.NodeType() != xpath.AttributeNode {
		return &Fragment{nav: nav.Copy().(*htmlquery.NodeNavigator)}
	}
	text := &html.Node{Type: html.TextNode, Data: nav.Value()}
	elem := &html.Node{
		Type:       html.ElementNode,
		Data:       nav.LocalName(),
		FirstChild: text,
		LastChild:  text,
	}
	text.Parent = elem
	return &Fragment{nav: htmlquery.CreateXPathNavigator(elem)}
}
