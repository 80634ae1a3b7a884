package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/art1415926535/graphql-sqlfilter/query"
)

// aliasHandle is the sqlbuild alias implementation. Handle identity (the
// pointer) is what join deduplication keys on.
type aliasHandle struct {
	table string
	name  string
}

func (a *aliasHandle) Table() string { return a.table }
func (a *aliasHandle) Name() string  { return a.name }

func (a *aliasHandle) ref() string {
	return quoteIdentifier(a.table) + " AS " + quoteIdentifier(a.name)
}

type join struct {
	alias *aliasHandle
	on    *Expr
	kind  query.JoinKind
}

// Query is a SQL SELECT under construction: a base table, accumulated
// joins and an optional WHERE predicate. It implements query.Query.
type Query struct {
	base  *aliasHandle
	joins []join
	where *Expr
}

// NewQuery creates a query over the given table with the given base alias.
func NewQuery(table, alias string) *Query {
	return &Query{base: &aliasHandle{table: table, name: alias}}
}

// Base returns the base table alias.
func (q *Query) Base() query.Alias { return q.base }

// NewAlias creates a fresh alias handle. Handles are never deduplicated
// here; the evaluation scope caches them by (model, name).
func (q *Query) NewAlias(table, name string) query.Alias {
	return &aliasHandle{table: table, name: name}
}

// AddJoin appends a join for the alias.
func (q *Query) AddJoin(a query.Alias, on query.Predicate, kind query.JoinKind) error {
	h, ok := a.(*aliasHandle)
	if !ok {
		return fmt.Errorf("sqlbuild: alias from another dialect: %T", a)
	}
	e := asExpr(on)
	if e == nil {
		return fmt.Errorf("sqlbuild: join %s requires an ON condition", a.Name())
	}
	q.joins = append(q.joins, join{alias: h, on: e, kind: kind})
	return nil
}

// Sub creates an independent subquery over the given table.
func (q *Query) Sub(table, name string) query.Query {
	return NewQuery(table, name)
}

// Where sets the query's WHERE predicate, replacing any previous one.
func (q *Query) Where(p query.Predicate) {
	q.where = asExpr(p)
}

// fromClause renders the FROM body (base table plus joins) and returns the
// accumulated join arguments.
func (q *Query) fromClause() (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString(q.base.ref())
	for _, j := range q.joins {
		if j.kind == query.JoinOuter {
			sb.WriteString(" LEFT OUTER JOIN ")
		} else {
			sb.WriteString(" INNER JOIN ")
		}
		sb.WriteString(j.alias.ref())
		sb.WriteString(" ON ")
		sb.WriteString(j.on.SQL)
		args = append(args, j.on.Args...)
	}
	return sb.String(), args
}

// SQL renders the query as a SELECT over the given columns (or `*` when
// none are given), with `?` placeholders. Use Positional for drivers that
// need numbered placeholders.
func (q *Query) SQL(columns ...string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(columns) == 0 {
		sb.WriteString(quoteIdentifier(q.base.name) + ".*")
	} else {
		for i, c := range columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteIdentifier(q.base.name) + "." + quoteIdentifier(c))
		}
	}
	sb.WriteString(" FROM ")
	from, args := q.fromClause()
	sb.WriteString(from)
	if q.where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.where.SQL)
		args = append(args, q.where.Args...)
	}
	return sb.String(), args
}
