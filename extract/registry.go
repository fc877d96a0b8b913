package extract

import (
	"sort"

	"github.com/fwojciec/spider"
)

var _ spider.EvaluatorRegistry = (*Registry)(nil)

// Registry maps dialects onto evaluators. The dialect is chosen once per
// extraction call, so the resolver never branches on it.
type Registry struct {
	evaluators map[spider.Dialect]spider.Evaluator
}

// NewRegistry creates a Registry holding the given evaluators.
func NewRegistry(evaluators ...spider.Evaluator) *Registry {
	r := &Registry{
		evaluators: make(map[spider.Dialect]spider.Evaluator, len(evaluators)),
	}
	for _, ev := range evaluators {
		r.Register(ev)
	}
	return r
}

// Get returns the evaluator for a dialect.
// Returns EDIALECT if no evaluator is registered for it.
func (r *Registry) Get(dialect spider.Dialect) (spider.Evaluator, error) {
	if ev, ok := r.evaluators[dialect]; ok {
		return ev, nil
	}
	return nil, spider.Errorf(spider.EDIALECT, "unsupported selectors type %q", dialect)
}

// Register adds an evaluator under its own dialect.
// An evaluator already registered for that dialect is replaced.
func (r *Registry) Register(ev spider.Evaluator) {
	r.evaluators[ev.Dialect()] = ev
}

// List returns all registered dialects in sorted order.
func (r *Registry) List() []spider.Dialect {
	dialects := make([]spider.Dialect, 0, len(r.evaluators))
	for d := range r.evaluators {
		dialects = append(dialects, d)
	}
	sort.Slice(dialects, func(i, j int) bool { return dialects[i] < dialects[j] })
	return dialects
}
