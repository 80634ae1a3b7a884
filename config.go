package sqlfilter

import (
	"log/slog"

	"github.com/art1415926535/graphql-sqlfilter/metrics"
	"github.com/art1415926535/graphql-sqlfilter/operator"
)

// DefaultArgumentName is the GraphQL argument under which a filter tree is
// expected unless Config overrides it.
const DefaultArgumentName = "filters"

// CombinatorNames holds the external names of the boolean combinator
// fields added to every filter input type.
type CombinatorNames struct {
	And string
	Or  string
	Not string
}

// Config configures a filter set registry.
type Config struct {
	// ArgumentName is the GraphQL argument carrying the filter tree.
	// OPTIONAL: defaults to "filters".
	ArgumentName string

	// Operators supplies the operator registry used for compilation.
	// OPTIONAL: defaults to operator.Default().
	Operators *operator.Registry

	// ExpressionNames overrides operators' external name suffixes.
	// Renames change only generated field names, never evaluation results.
	// OPTIONAL.
	ExpressionNames map[operator.ID]string

	// Combinators overrides the and/or/not field names.
	// OPTIONAL: defaults to "and", "or", "not".
	Combinators *CombinatorNames

	// Logger for internal logging.
	// OPTIONAL: uses slog.Default() if nil.
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation.
	// OPTIONAL: if nil, no metrics are recorded.
	Metrics *metrics.Metrics
}

func (c Config) withDefaults() Config {
	if c.ArgumentName == "" {
		c.ArgumentName = DefaultArgumentName
	}
	if c.Operators == nil {
		c.Operators = operator.Default()
	}
	if c.Combinators == nil {
		c.Combinators = &CombinatorNames{And: "and", Or: "or", Not: "not"}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// suffixFor returns the external name suffix for an operator, honoring
// rename overrides.
func (c Config) suffixFor(d *operator.Descriptor) string {
	if name, ok := c.ExpressionNames[d.ID]; ok {
		return name
	}
	return d.GraphQLName
}
