package mock

import "github.com/fwojciec/spider"

var (
	_ spider.Extractor         = (*Extractor)(nil)
	_ spider.Evaluator         = (*Evaluator)(nil)
	_ spider.EvaluatorRegistry = (*EvaluatorRegistry)(nil)
)

// Extractor is a mock implementation of spider.Extractor.
type Extractor struct {
	ExtractFn func(req *spider.ExtractRequest) (*spider.Result, error)
}

func (e *Extractor) Extract(req *spider.ExtractRequest) (*spider.Result, error) {
	return e.ExtractFn(req)
}

// Evaluator is a mock implementation of spider.Evaluator.
type Evaluator struct {
	DialectFn   func() spider.Dialect
	ParseFn     func(markup string) (spider.Fragment, error)
	ValuesFn    func(scope spider.Fragment, expr string) ([]spider.Match, error)
	FragmentsFn func(scope spider.Fragment, expr string) ([]spider.Fragment, error)
}

func (e *Evaluator) Dialect() spider.Dialect {
	return e.DialectFn()
}

func (e *Evaluator) Parse(markup string) (spider.Fragment, error) {
	return e.ParseFn(markup)
}

func (e *Evaluator) Values(scope spider.Fragment, expr string) ([]spider.Match, error) {
	return e.ValuesFn(scope, expr)
}

func (e *Evaluator) Fragments(scope spider.Fragment, expr string) ([]spider.Fragment, error) {
	return e.FragmentsFn(scope, expr)
}

// EvaluatorRegistry is a mock implementation of spider.EvaluatorRegistry.
type EvaluatorRegistry struct {
	GetFn      func(dialect spider.Dialect) (spider.Evaluator, error)
	RegisterFn func(ev spider.Evaluator)
	ListFn     func() []spider.Dialect
}

func (r *EvaluatorRegistry) Get(dialect spider.Dialect) (spider.Evaluator, error) {
	return r.GetFn(dialect)
}

func (r *EvaluatorRegistry) Register(ev spider.Evaluator) {
	r.RegisterFn(ev)
}

func (r *EvaluatorRegistry) List() []spider.Dialect {
	return r.ListFn()
}

// Fragment is a spider.Fragment carrying a name, for use with Evaluator.
type Fragment struct {
	Name string
}

func (f *Fragment) Markup() (string, error) {
	return f.Name, nil
}
