// Package sqlfilter generates GraphQL filter input types from declarative
// model descriptors and evaluates submitted filter trees into SQL
// predicates.
//
// A filter set is declared once, at initialization time, and compiled into
// an immutable GraphQL input object plus a resolver table:
//
//	user := &model.Model{
//	    Name:  "User",
//	    Table: "users",
//	    Columns: []model.Column{
//	        {Name: "id", Type: model.TypeInteger},
//	        {Name: "username", Type: model.TypeString},
//	        {Name: "is_admin", GraphQLName: "isAdmin", Type: model.TypeBoolean},
//	    },
//	    PrimaryKey: []string{"id"},
//	}
//
//	registry := sqlfilter.NewRegistry(sqlfilter.Config{})
//	userFilter, err := registry.Add(sqlfilter.FilterSetDef{
//	    Name:  "UserFilter",
//	    Model: user,
//	    Fields: []sqlfilter.FieldSpec{
//	        {Name: "username", Operators: []operator.ID{operator.Eq, operator.In}},
//	        {Name: "is_admin", All: true},
//	    },
//	})
//
// Each (field, operator) pair becomes one input field (username, usernameIn,
// isAdmin, ...), and every filter input type carries the and/or/not
// combinator fields accepting the same type, so arbitrarily nested boolean
// structure is expressible. The compiled input object plugs directly into a
// graphql-go field:
//
//	"users": &graphql.Field{
//	    Type: graphql.NewList(userType),
//	    Args: registry.FieldArgs(userFilter),
//	    Resolve: func(p graphql.ResolveParams) (interface{}, error) {
//	        q := sqlbuild.NewQuery("users", "u")
//	        pred, err := registry.ResolveFilters(p.Context, userFilter, q, builder, p.Args)
//	        if err != nil {
//	            return nil, err
//	        }
//	        q.Where(pred)
//	        sql, args := q.SQL()
//	        return executor.Query(p.Context, sql, args...)
//	    },
//	}
//
// # Evaluation
//
// Request-time evaluation owns a private Scope holding the query under
// construction and an alias registry. Sibling filters are evaluated in
// order so a join added by one is visible to the next, and joins are
// deduplicated by (model, alias name) within the scope. Filters over
// to-many relations compile to EXISTS subqueries, never flat joins, so
// they cannot multiply parent rows.
//
// # Custom filters and operators
//
// Fields outside the model's columns register a custom input type and a
// resolver; a resolver is either Pure (no query mutation) or Scoped (may
// add joins through the scope). New operators register on an
// operator.Registry with an explicit column-type list before compilation.
//
// # Defaults
//
// A filter set may declare a default filter. It is applied once per
// resolution, before the user tree, and combined with AND - also when the
// request carries no filter argument at all.
//
// # Nested relations
//
// Resolving a filtered connection for many parents at once goes through
// batch.Loader: parents register (key, filter tree) pairs, Flush issues one
// coalesced fetch per distinct tree.
package sqlfilter
