// Package query defines the narrow interfaces through which the filter
// evaluator talks to a data-access layer. The sqlbuild package provides the
// SQL implementation; tests provide synthetic boolean-evaluable ones.
package query

import "github.com/art1415926535/graphql-sqlfilter/model"

// JoinKind selects how a join is added to a query.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinOuter
)

func (k JoinKind) String() string {
	if k == JoinOuter {
		return "outer"
	}
	return "inner"
}

// Predicate is an opaque boolean condition produced by a Builder or a
// Column. The evaluator only composes predicates through Builder methods
// and never inspects them; the concrete representation is up to the
// data-access implementation.
type Predicate any

// Alias is a stable handle for a named reference to a table within one
// query. Two handles are interchangeable only if they are the same value;
// deduplication by (model, name) is the evaluation scope's job.
type Alias interface {
	// Table returns the referenced table name.
	Table() string

	// Name returns the alias name used in SQL.
	Name() string
}

// Query is the mutable query a filter evaluation adds joins to.
type Query interface {
	// Base returns the alias of the query's base table.
	Base() Alias

	// NewAlias creates a fresh alias handle for the given table. It never
	// deduplicates; callers cache handles per evaluation scope.
	NewAlias(table, name string) Alias

	// AddJoin appends a join for the alias. Callers guarantee at most one
	// join per alias handle.
	AddJoin(a Alias, on Predicate, kind JoinKind) error

	// Sub creates an independent subquery over the given table, used for
	// existence conditions against to-many relations.
	Sub(table, name string) Query
}

// Column builds predicates over one named column. Each method corresponds
// to one operator; implementations validate the value's type and return an
// input-validation error for values outside the column's domain.
type Column interface {
	Eq(v any) (Predicate, error)
	Ne(v any) (Predicate, error)
	Like(v any) (Predicate, error)
	ILike(v any) (Predicate, error)
	// IsNull takes a boolean: true selects NULL rows, false non-NULL rows.
	IsNull(v any) (Predicate, error)
	In(v any) (Predicate, error)
	NotIn(v any) (Predicate, error)
	Lt(v any) (Predicate, error)
	Lte(v any) (Predicate, error)
	Gt(v any) (Predicate, error)
	Gte(v any) (Predicate, error)
	Between(begin, end any) (Predicate, error)
	Contains(v any) (Predicate, error)
	ContainedBy(v any) (Predicate, error)
	Overlaps(v any) (Predicate, error)
}

// Builder constructs and composes predicates for one dialect. All
// predicates passed to composition methods must originate from the same
// Builder (or its Columns); mixing dialects is a programming error.
type Builder interface {
	// Column returns a predicate source for a column of the aliased table.
	Column(a Alias, name string, t model.TypeTag) Column

	// ColumnsEqual builds an equality predicate between two columns,
	// typically the correlation condition of an existence subquery.
	ColumnsEqual(a Alias, aColumn string, b Alias, bColumn string) Predicate

	And(ps ...Predicate) Predicate
	Or(ps ...Predicate) Predicate
	Not(p Predicate) Predicate

	// Exists wraps a correlated subquery as an existence condition, so a
	// filter over a to-many relation never multiplies parent rows the way
	// a flat join would.
	Exists(sub Query, where Predicate) Predicate

	// True returns the identity predicate (no restriction).
	True() Predicate
}
