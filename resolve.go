package sqlfilter

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

// Registry holds the compiled filter sets of one GraphQL schema and the
// shared configuration they were compiled with. Populate it during schema
// construction; afterwards it is safe for concurrent use.
type Registry struct {
	cfg    Config
	sets   map[*model.Model]*FilterSet
	byName map[string]*FilterSet
}

// NewRegistry creates a registry with the given configuration.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:    cfg.withDefaults(),
		sets:   make(map[*model.Model]*FilterSet),
		byName: make(map[string]*FilterSet),
	}
}

// Add compiles a filter set definition and registers it. Type names must
// be unique within the registry; only one filter set may be registered per
// model.
func (r *Registry) Add(def FilterSetDef) (*FilterSet, error) {
	if _, ok := r.byName[def.Name]; ok {
		return nil, fmt.Errorf("sqlfilter: filter set %q already registered", def.Name)
	}
	fs, err := Compile(def, r.cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := r.sets[fs.model]; ok {
		return nil, fmt.Errorf("sqlfilter: model %s already has a filter set", fs.model.Name)
	}
	r.sets[fs.model] = fs
	r.byName[fs.name] = fs
	return fs, nil
}

// Set returns the filter set registered for the model.
func (r *Registry) Set(m *model.Model) (*FilterSet, bool) {
	fs, ok := r.sets[m]
	return fs, ok
}

// ArgumentName returns the GraphQL argument name filter trees are read
// from.
func (r *Registry) ArgumentName() string { return r.cfg.ArgumentName }

// FieldArgs returns the argument map to attach to a GraphQL field so it
// accepts the filter set's input type.
func (r *Registry) FieldArgs(fs *FilterSet) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		r.cfg.ArgumentName: &graphql.ArgumentConfig{
			Type:        fs.Input(),
			Description: fmt.Sprintf("Filter %s rows.", fs.Model().Name),
		},
	}
}

// ResolveFilters extracts the filter argument from a GraphQL resolver's
// arguments and evaluates it against a fresh scope over q. A missing or
// null argument still applies the filter set's default filter and
// otherwise yields the identity predicate.
func (r *Registry) ResolveFilters(ctx context.Context, fs *FilterSet, q query.Query, b query.Builder, args map[string]any) (query.Predicate, error) {
	var filters map[string]any
	if raw, ok := args[r.cfg.ArgumentName]; ok && raw != nil {
		filters, ok = raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sqlfilter: argument %q is not a filter object (got %T)",
				r.cfg.ArgumentName, raw)
		}
	}
	return fs.Resolve(ctx, NewScope(q, b), filters)
}
