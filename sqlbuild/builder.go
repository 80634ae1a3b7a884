package sqlbuild

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

// Options configures predicate construction.
type Options struct {
	// ColumnMapping maps model column names to storage names.
	// Columns not in the map use their original names.
	ColumnMapping map[string]string

	// ColumnExpressions maps column names to SQL expressions.
	// Takes precedence over ColumnMapping. Use for computed columns.
	// The expression must be valid unqualified SQL.
	ColumnExpressions map[string]string
}

// Builder constructs SQL predicates. It implements query.Builder.
type Builder struct {
	opts *Options
}

// NewBuilder creates a SQL predicate builder.
// If opts is nil, default options are used.
func NewBuilder(opts *Options) *Builder {
	if opts == nil {
		opts = &Options{}
	}
	return &Builder{opts: opts}
}

// Column returns a predicate source for one column.
func (b *Builder) Column(a query.Alias, name string, t model.TypeTag) query.Column {
	return &column{b: b, alias: a.Name(), name: name, typ: t}
}

// ColumnsEqual builds an equality predicate between two columns.
func (b *Builder) ColumnsEqual(a query.Alias, aColumn string, c query.Alias, cColumn string) query.Predicate {
	return &Expr{SQL: b.columnRef(a.Name(), aColumn) + " = " + b.columnRef(c.Name(), cColumn)}
}

// And combines predicates with AND. Nil predicates are skipped; an empty
// combination yields the identity predicate.
func (b *Builder) And(ps ...query.Predicate) query.Predicate {
	e := joinExprs(" AND ", asExprs(ps))
	if e == nil {
		return b.True()
	}
	return e
}

// Or combines predicates with OR.
func (b *Builder) Or(ps ...query.Predicate) query.Predicate {
	e := joinExprs(" OR ", asExprs(ps))
	if e == nil {
		return b.True()
	}
	return e
}

// Not negates a predicate.
func (b *Builder) Not(p query.Predicate) query.Predicate {
	e := asExpr(p)
	if e == nil {
		return &Expr{SQL: "FALSE"}
	}
	return &Expr{SQL: "NOT (" + e.SQL + ")", Args: e.Args}
}

// True returns the identity predicate.
func (b *Builder) True() query.Predicate {
	return &Expr{SQL: "TRUE"}
}

// Exists wraps a correlated subquery as an existence condition.
// sub must have been created by Query.Sub of a sqlbuild query.
func (b *Builder) Exists(sub query.Query, where query.Predicate) query.Predicate {
	sq, ok := sub.(*Query)
	if !ok {
		panic(fmt.Sprintf("sqlbuild: subquery from another dialect: %T", sub))
	}
	from, args := sq.fromClause()
	e := asExpr(where)
	sql := "EXISTS (SELECT 1 FROM " + from
	if e != nil {
		sql += " WHERE " + e.SQL
		args = append(args, e.Args...)
	}
	sql += ")"
	return &Expr{SQL: sql, Args: args}
}

func (b *Builder) columnRef(alias, name string) string {
	if expr, ok := b.opts.ColumnExpressions[name]; ok {
		return expr
	}
	if mapped, ok := b.opts.ColumnMapping[name]; ok {
		name = mapped
	}
	return quoteIdentifier(alias) + "." + quoteIdentifier(name)
}

// asExpr converts a predicate back to its concrete representation.
// Predicates from another dialect are a programming error.
func asExpr(p query.Predicate) *Expr {
	if p == nil {
		return nil
	}
	e, ok := p.(*Expr)
	if !ok {
		panic(fmt.Sprintf("sqlbuild: predicate from another dialect: %T", p))
	}
	return e
}

func asExprs(ps []query.Predicate) []*Expr {
	out := make([]*Expr, 0, len(ps))
	for _, p := range ps {
		out = append(out, asExpr(p))
	}
	return out
}

// column implements query.Column for one aliased column.
type column struct {
	b     *Builder
	alias string
	name  string
	typ   model.TypeTag
}

func (c *column) ref() string { return c.b.columnRef(c.alias, c.name) }

func (c *column) scalar(v any) (any, error) {
	if err := validateScalar(c.typ, v); err != nil {
		return nil, fmt.Errorf("column %s: %w", c.name, err)
	}
	return v, nil
}

func (c *column) compare(op string, v any) (query.Predicate, error) {
	v, err := c.scalar(v)
	if err != nil {
		return nil, err
	}
	return &Expr{SQL: c.ref() + " " + op + " ?", Args: []any{v}}, nil
}

func (c *column) Eq(v any) (query.Predicate, error)  { return c.compare("=", v) }
func (c *column) Ne(v any) (query.Predicate, error)  { return c.compare("<>", v) }
func (c *column) Lt(v any) (query.Predicate, error)  { return c.compare("<", v) }
func (c *column) Lte(v any) (query.Predicate, error) { return c.compare("<=", v) }
func (c *column) Gt(v any) (query.Predicate, error)  { return c.compare(">", v) }
func (c *column) Gte(v any) (query.Predicate, error) { return c.compare(">=", v) }

func (c *column) Like(v any) (query.Predicate, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &ValueError{Column: c.name, Want: "string", Got: v}
	}
	return &Expr{SQL: c.ref() + " LIKE ?", Args: []any{s}}, nil
}

func (c *column) ILike(v any) (query.Predicate, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &ValueError{Column: c.name, Want: "string", Got: v}
	}
	return &Expr{SQL: c.ref() + " ILIKE ?", Args: []any{s}}, nil
}

func (c *column) IsNull(v any) (query.Predicate, error) {
	isNull, ok := v.(bool)
	if !ok {
		return nil, &ValueError{Column: c.name, Want: "boolean", Got: v}
	}
	if isNull {
		return &Expr{SQL: c.ref() + " IS NULL"}, nil
	}
	return &Expr{SQL: c.ref() + " IS NOT NULL"}, nil
}

func (c *column) In(v any) (query.Predicate, error)    { return c.in(v, false) }
func (c *column) NotIn(v any) (query.Predicate, error) { return c.in(v, true) }

func (c *column) in(v any, negate bool) (query.Predicate, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &ValueError{Column: c.name, Want: "list", Got: v}
	}
	if len(items) == 0 {
		// IN over the empty set matches no rows.
		if negate {
			return &Expr{SQL: "TRUE"}, nil
		}
		return &Expr{SQL: "FALSE"}, nil
	}
	args := make([]any, 0, len(items))
	placeholders := make([]byte, 0, 3*len(items))
	for i, item := range items {
		item, err := c.scalar(item)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			placeholders = append(placeholders, ',', ' ')
		}
		placeholders = append(placeholders, '?')
		args = append(args, item)
	}
	op := " IN ("
	if negate {
		op = " NOT IN ("
	}
	return &Expr{SQL: c.ref() + op + string(placeholders) + ")", Args: args}, nil
}

func (c *column) Between(begin, end any) (query.Predicate, error) {
	begin, err := c.scalar(begin)
	if err != nil {
		return nil, err
	}
	end, err = c.scalar(end)
	if err != nil {
		return nil, err
	}
	return &Expr{SQL: c.ref() + " BETWEEN ? AND ?", Args: []any{begin, end}}, nil
}

func (c *column) Contains(v any) (query.Predicate, error) {
	return c.arrayOp("@>", v)
}

func (c *column) ContainedBy(v any) (query.Predicate, error) {
	return c.arrayOp("<@", v)
}

func (c *column) Overlaps(v any) (query.Predicate, error) {
	return c.arrayOp("&&", v)
}

func (c *column) arrayOp(op string, v any) (query.Predicate, error) {
	if c.typ != model.TypeArray {
		return nil, &ValueError{Column: c.name, Want: "array column", Got: v}
	}
	if _, ok := v.([]any); !ok {
		return nil, &ValueError{Column: c.name, Want: "list", Got: v}
	}
	return &Expr{SQL: c.ref() + " " + op + " ?", Args: []any{v}}, nil
}

// ValueError reports a submitted value outside a column's domain.
// It is an input-validation error, surfaced to the request's caller.
type ValueError struct {
	Column string
	Want   string
	Got    any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for column %s: want %s, got %T", e.Column, e.Want, e.Got)
}

// validateScalar rejects values that can never belong to the column's
// type domain. It stays permissive for driver-specific types; the database
// has the final word.
func validateScalar(t model.TypeTag, v any) error {
	if v == nil {
		return &ValueError{Want: string(t), Got: v}
	}
	switch t {
	case model.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return &ValueError{Want: "boolean", Got: v}
		}
	case model.TypeString:
		if _, ok := v.(string); !ok {
			return &ValueError{Want: "string", Got: v}
		}
	case model.TypeInteger:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return &ValueError{Want: "integer", Got: v}
		}
	case model.TypeFloat:
		switch v.(type) {
		case float32, float64, int, int32, int64:
		default:
			return &ValueError{Want: "float", Got: v}
		}
	case model.TypeDate, model.TypeTime, model.TypeDateTime:
		switch v.(type) {
		case time.Time, string:
		default:
			return &ValueError{Want: "time", Got: v}
		}
	case model.TypeUUID:
		switch u := v.(type) {
		case uuid.UUID:
		case string:
			if _, err := uuid.Parse(u); err != nil {
				return &ValueError{Want: "uuid", Got: v}
			}
		default:
			return &ValueError{Want: "uuid", Got: v}
		}
	}
	return nil
}
