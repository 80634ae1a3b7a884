package sqlfilter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/art1415926535/graphql-sqlfilter/query"
)

// Resolver builds a predicate for a custom field or a default filter.
// It is either Pure or Scoped; the evaluator dispatches on the concrete
// type and threads the scope only through Scoped resolvers.
type Resolver interface {
	isResolver()
}

// Pure builds a predicate without touching the query.
type Pure func(ctx context.Context, value any) (query.Predicate, error)

// Scoped builds a predicate and may mutate the query through the scope,
// typically to ensure a join exists.
type Scoped func(ctx context.Context, s *Scope, value any) (query.Predicate, error)

func (Pure) isResolver()   {}
func (Scoped) isResolver() {}

// Resolve evaluates the submitted filter tree against the scope and
// returns one composed predicate. The filter set's default filter, if any,
// is applied first and AND-combined with the user tree; with neither, the
// identity predicate is returned. filters may be nil when the request
// carries no filter argument.
func (fs *FilterSet) Resolve(ctx context.Context, s *Scope, filters map[string]any) (query.Predicate, error) {
	start := time.Now()
	p, err := fs.resolve(ctx, s, filters)

	if m := fs.cfg.Metrics; m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.EvaluationsTotal.WithLabelValues(fs.name, status).Inc()
		m.EvaluationDuration.WithLabelValues(fs.name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		fs.cfg.Logger.Debug("filter evaluation failed", "set", fs.name, "error", err)
		return nil, err
	}
	return p, nil
}

func (fs *FilterSet) resolve(ctx context.Context, s *Scope, filters map[string]any) (query.Predicate, error) {
	var parts []query.Predicate

	if fs.defaultFilter != nil {
		p, err := runResolver(ctx, s, fs.defaultFilter, nil)
		if err != nil {
			return nil, fmt.Errorf("sqlfilter: %s: default filter: %w", fs.name, err)
		}
		if p != nil {
			parts = append(parts, p)
		}
	}

	if len(filters) > 0 {
		p, err := fs.evaluate(ctx, s, filters)
		if err != nil {
			return nil, err
		}
		if p != nil {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return s.Builder.True(), nil
	case 1:
		return parts[0], nil
	default:
		return s.Builder.And(parts...), nil
	}
}

// evaluate walks one filter object. Sibling fields combine under an
// implicit AND and are evaluated in a stable (sorted) order, threading the
// scope sequentially so a join added by one sibling is visible to the
// next. Returns nil for an empty object.
func (fs *FilterSet) evaluate(ctx context.Context, s *Scope, filters map[string]any) (query.Predicate, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []query.Predicate
	for _, name := range names {
		p, err := fs.evaluateField(ctx, s, name, filters[name])
		if err != nil {
			return nil, err
		}
		if p != nil {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return s.Builder.And(parts...), nil
}

func (fs *FilterSet) evaluateField(ctx context.Context, s *Scope, name string, value any) (query.Predicate, error) {
	switch name {
	case fs.combinators.And:
		return fs.evaluateList(ctx, s, name, value, s.Builder.And)
	case fs.combinators.Or:
		return fs.evaluateList(ctx, s, name, value, s.Builder.Or)
	case fs.combinators.Not:
		child, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sqlfilter: %s: %s expects a filter object, got %T",
				fs.name, name, value)
		}
		p, err := fs.evaluate(ctx, s, child)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		return s.Builder.Not(p), nil
	}

	b, ok := fs.bindings[name]
	if !ok {
		return nil, &UnknownFieldError{Set: fs.name, Field: name}
	}

	switch b.kind {
	case bindLeaf:
		col := s.Builder.Column(s.Query.Base(), b.column.Name, b.column.Type)
		p, err := b.op.Build(col, value)
		if err != nil {
			return nil, fmt.Errorf("sqlfilter: %s: field %q: %w", fs.name, name, err)
		}
		return p, nil

	case bindCustom:
		p, err := runResolver(ctx, s, b.resolver, value)
		if err != nil {
			return nil, fmt.Errorf("sqlfilter: %s: field %q: %w", fs.name, name, err)
		}
		return p, nil

	case bindRelation:
		return fs.evaluateRelation(ctx, s, b, name, value)

	default:
		return nil, fmt.Errorf("sqlfilter: %s: field %q has unknown binding kind", fs.name, name)
	}
}

// evaluateList evaluates the ordered children of an and/or combinator,
// threading the scope through each child in declared order.
func (fs *FilterSet) evaluateList(ctx context.Context, s *Scope, name string, value any,
	combine func(...query.Predicate) query.Predicate) (query.Predicate, error) {

	children, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("sqlfilter: %s: %s expects a list of filter objects, got %T",
			fs.name, name, value)
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("%w (%s.%s)", ErrEmptyCombinator, fs.name, name)
	}

	var parts []query.Predicate
	for i, child := range children {
		obj, ok := child.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sqlfilter: %s: %s[%d] expects a filter object, got %T",
				fs.name, name, i, child)
		}
		p, err := fs.evaluate(ctx, s, obj)
		if err != nil {
			return nil, err
		}
		if p != nil {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return combine(parts...), nil
}

// evaluateRelation compiles a nested filter into an existence condition
// over the related model. The nested tree is evaluated in a fresh child
// scope over the subquery, so its joins and aliases stay inside the
// subquery and the parent result set is never multiplied.
func (fs *FilterSet) evaluateRelation(ctx context.Context, s *Scope, b binding, name string, value any) (query.Predicate, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sqlfilter: %s: relation %q expects a filter object, got %T",
			fs.name, name, value)
	}

	sub := s.Query.Sub(b.rel.Target.Table, b.rel.Name)
	child := NewScope(sub, s.Builder)

	inner, err := b.nested.evaluate(ctx, child, obj)
	if err != nil {
		return nil, err
	}

	correlation := s.Builder.ColumnsEqual(
		sub.Base(), b.rel.RemoteColumn,
		s.Query.Base(), b.rel.LocalColumn,
	)
	where := correlation
	if inner != nil {
		where = s.Builder.And(correlation, inner)
	}
	return s.Builder.Exists(sub, where), nil
}

func runResolver(ctx context.Context, s *Scope, r Resolver, value any) (query.Predicate, error) {
	switch fn := r.(type) {
	case Pure:
		return fn(ctx, value)
	case Scoped:
		return fn(ctx, s, value)
	default:
		return nil, fmt.Errorf("sqlfilter: unsupported resolver type %T", r)
	}
}
