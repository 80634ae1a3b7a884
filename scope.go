package sqlfilter

import (
	"reflect"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

// Scope is the mutable state of one filter evaluation: the query being
// built and the alias/join registry. A scope belongs to exactly one
// top-level resolution and must never be shared across concurrent
// evaluations. Aliases are deduplicated per query handle; an existence
// subquery gets a fresh child scope over its own query.
type Scope struct {
	Query   query.Query
	Builder query.Builder

	aliases map[aliasKey]query.Alias
	joins   map[query.Alias]query.Predicate
}

type aliasKey struct {
	model *model.Model
	name  string
}

// NewScope creates a fresh evaluation scope over the given query.
func NewScope(q query.Query, b query.Builder) *Scope {
	return &Scope{
		Query:   q,
		Builder: b,
		aliases: make(map[aliasKey]query.Alias),
		joins:   make(map[query.Alias]query.Predicate),
	}
}

// AliasFor returns the alias handle for (model, name), creating it on
// first request. Repeated requests within the scope return the same
// handle. Two distinct names for the same model yield two independent
// aliases; callers use the same name when the same join role is intended.
func (s *Scope) AliasFor(m *model.Model, name string) query.Alias {
	key := aliasKey{model: m, name: name}
	if a, ok := s.aliases[key]; ok {
		return a
	}
	a := s.Query.NewAlias(m.Table, name)
	s.aliases[key] = a
	return a
}

// EnsureJoin adds a join for the alias unless one was already added in
// this scope. Requesting the same alias with a different join condition is
// a programming misuse and returns ConflictingJoinError instead of
// silently producing an incorrect query.
func (s *Scope) EnsureJoin(a query.Alias, on query.Predicate, kind query.JoinKind) error {
	if prev, ok := s.joins[a]; ok {
		if !reflect.DeepEqual(prev, on) {
			return &ConflictingJoinError{Alias: a.Name()}
		}
		return nil
	}
	if err := s.Query.AddJoin(a, on, kind); err != nil {
		return err
	}
	s.joins[a] = on
	return nil
}
