// Package operator provides the registry of filter operators: which column
// types each operator applies to, its external GraphQL name, how it builds
// a predicate and what input type it accepts. The default registry mirrors
// the usual comparison set (eq, ne, like, in, range, array operators, ...);
// new operators are registered with an explicit type list before any filter
// set is compiled.
package operator

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

// ID identifies an operator within a registry.
type ID string

const (
	Eq          ID = "eq"
	Ne          ID = "ne"
	Like        ID = "like"
	ILike       ID = "ilike"
	IsNull      ID = "isNull"
	In          ID = "in"
	NotIn       ID = "notIn"
	Lt          ID = "lt"
	Lte         ID = "lte"
	Gt          ID = "gt"
	Gte         ID = "gte"
	Range       ID = "range"
	Contains    ID = "contains"
	ContainedBy ID = "containedBy"
	Overlap     ID = "overlap"
)

// Range input object field names.
const (
	RangeBegin = "begin"
	RangeEnd   = "end"
)

// BuildFunc constructs a predicate for one column and one submitted value.
type BuildFunc func(c query.Column, v any) (query.Predicate, error)

// InputFunc derives the GraphQL input type for an operator from the
// column's scalar type. scalar is the column's GraphQL scalar, nullable
// whether the column accepts NULL.
type InputFunc func(scalar graphql.Input, nullable bool, description string) graphql.Input

// Descriptor describes one operator. Descriptors are immutable after
// registration.
type Descriptor struct {
	// ID is the operator identifier.
	// REQUIRED: MUST be non-empty and unique within a registry.
	ID ID

	// GraphQLName is the field-name suffix for the operator. The identity
	// operator (equality) uses the empty string and contributes no suffix.
	GraphQLName string

	// Description documents the operator in the generated schema.
	Description string

	// Types lists the column types the operator applies to.
	// Ignored when AnyType is set.
	Types []model.TypeTag

	// AnyType marks the operator applicable to every column type
	// (e.g. isNull).
	AnyType bool

	// Build constructs the predicate.
	// REQUIRED: MUST NOT be nil.
	Build BuildFunc

	// Input derives the operator's input type.
	// OPTIONAL: if nil, the column's scalar type is used directly.
	Input InputFunc
}

// Registry maps operator IDs to descriptors and column types to the
// operators allowed for them. A Registry is mutable only before schema
// compilation; compiled filter sets keep references to its descriptors.
type Registry struct {
	ops     map[ID]*Descriptor
	allowed map[model.TypeTag][]ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:     make(map[ID]*Descriptor),
		allowed: make(map[model.TypeTag][]ID),
	}
}

// Register adds a descriptor and records it as allowed for its declared
// types. Registering an existing ID is a definition-time error.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("operator: id cannot be empty")
	}
	if d.Build == nil {
		return fmt.Errorf("operator %s: build function cannot be nil", d.ID)
	}
	if _, ok := r.ops[d.ID]; ok {
		return fmt.Errorf("operator %s: already registered", d.ID)
	}
	if !d.AnyType && len(d.Types) == 0 {
		return fmt.Errorf("operator %s: explicit type list required", d.ID)
	}
	desc := d
	r.ops[d.ID] = &desc
	for _, t := range d.Types {
		r.allowed[t] = append(r.allowed[t], d.ID)
	}
	return nil
}

// Lookup returns the descriptor for an operator ID.
func (r *Registry) Lookup(id ID) (*Descriptor, bool) {
	d, ok := r.ops[id]
	return d, ok
}

// Allowed returns the operators registered for a column type, in
// registration order. The result must not be modified.
func (r *Registry) Allowed(t model.TypeTag) []ID {
	return r.allowed[t]
}

// Applicable reports whether an operator may be used with a column type.
func (r *Registry) Applicable(id ID, t model.TypeTag) bool {
	d, ok := r.ops[id]
	if !ok {
		return false
	}
	if d.AnyType {
		return true
	}
	for _, dt := range d.Types {
		if dt == t {
			return true
		}
	}
	return false
}

// IDs returns all registered operator IDs, sorted.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var (
	comparableTypes = []model.TypeTag{
		model.TypeInteger, model.TypeFloat,
		model.TypeDate, model.TypeTime, model.TypeDateTime,
	}
	equatableTypes = []model.TypeTag{
		model.TypeBoolean, model.TypeString,
		model.TypeInteger, model.TypeFloat,
		model.TypeDate, model.TypeTime, model.TypeDateTime,
		model.TypeUUID, model.TypeJSON, model.TypeArray,
	}
	listableTypes = []model.TypeTag{
		model.TypeString,
		model.TypeInteger, model.TypeFloat,
		model.TypeDate, model.TypeTime, model.TypeDateTime,
		model.TypeUUID, model.TypeJSON, model.TypeArray,
	}
	orderableTypes = append(append([]model.TypeTag{}, comparableTypes...), model.TypeArray)
	arrayOnly      = []model.TypeTag{model.TypeArray}
	stringOnly     = []model.TypeTag{model.TypeString}
)

// Default returns a registry populated with the standard operators.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range defaultDescriptors() {
		if err := r.Register(d); err != nil {
			// Static table; a failure here is a bug in this package.
			panic(err)
		}
	}
	return r
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			ID: Eq, GraphQLName: "", Description: "Exact match.",
			Types: equatableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Eq(v) },
		},
		{
			ID: Ne, GraphQLName: "Ne", Description: "Not match.",
			Types: equatableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Ne(v) },
		},
		{
			ID: Like, GraphQLName: "Like", Description: "Case-sensitive containment test.",
			Types: stringOnly,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Like(v) },
		},
		{
			ID: ILike, GraphQLName: "Ilike", Description: "Case-insensitive containment test.",
			Types: stringOnly,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.ILike(v) },
		},
		{
			ID: IsNull, GraphQLName: "IsNull", Description: "Takes either `true` or `false`.",
			AnyType: true,
			Build:   func(c query.Column, v any) (query.Predicate, error) { return c.IsNull(v) },
			Input: func(_ graphql.Input, _ bool, _ string) graphql.Input {
				return graphql.Boolean
			},
		},
		{
			ID: In, GraphQLName: "In", Description: "In a given list.",
			Types: listableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.In(v) },
			Input: listInput,
		},
		{
			ID: NotIn, GraphQLName: "NotIn", Description: "Not in a given list.",
			Types: listableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.NotIn(v) },
			Input: listInput,
		},
		{
			ID: Lt, GraphQLName: "Lt", Description: "Less than.",
			Types: orderableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Lt(v) },
		},
		{
			ID: Lte, GraphQLName: "Lte", Description: "Less than or equal to.",
			Types: orderableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Lte(v) },
		},
		{
			ID: Gt, GraphQLName: "Gt", Description: "Greater than.",
			Types: orderableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Gt(v) },
		},
		{
			ID: Gte, GraphQLName: "Gte", Description: "Greater than or equal to.",
			Types: orderableTypes,
			Build: func(c query.Column, v any) (query.Predicate, error) { return c.Gte(v) },
		},
		{
			ID: Range, GraphQLName: "Range", Description: "Selects values within a given range.",
			Types: comparableTypes,
			Build: buildRange,
			Input: rangeInput,
		},
		{
			ID: Contains, GraphQLName: "Contains",
			Description: "Elements are a superset of the elements of the argument array expression.",
			Types:       arrayOnly,
			Build:       func(c query.Column, v any) (query.Predicate, error) { return c.Contains(v) },
		},
		{
			ID: ContainedBy, GraphQLName: "ContainedBy",
			Description: "Elements are a proper subset of the elements of the argument array expression.",
			Types:       arrayOnly,
			Build:       func(c query.Column, v any) (query.Predicate, error) { return c.ContainedBy(v) },
		},
		{
			ID: Overlap, GraphQLName: "Overlap",
			Description: "Array has elements in common with an argument array expression.",
			Types:       arrayOnly,
			Build:       func(c query.Column, v any) (query.Predicate, error) { return c.Overlaps(v) },
		},
	}
}

// buildRange unpacks the {begin, end} input object.
func buildRange(c query.Column, v any) (query.Predicate, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("operator range: expected object with %q and %q, got %T",
			RangeBegin, RangeEnd, v)
	}
	begin, ok := m[RangeBegin]
	if !ok {
		return nil, fmt.Errorf("operator range: missing %q", RangeBegin)
	}
	end, ok := m[RangeEnd]
	if !ok {
		return nil, fmt.Errorf("operator range: missing %q", RangeEnd)
	}
	return c.Between(begin, end)
}

func listInput(scalar graphql.Input, nullable bool, _ string) graphql.Input {
	if nullable {
		return graphql.NewList(scalar)
	}
	return graphql.NewList(graphql.NewNonNull(scalar))
}

// rangeInputTypes caches one Range input object per scalar, since GraphQL
// type names must be unique process-wide. Populated only during schema
// compilation, which is single-threaded.
var rangeInputTypes = map[graphql.Input]*graphql.InputObject{}

func rangeInput(scalar graphql.Input, _ bool, description string) graphql.Input {
	if obj, ok := rangeInputTypes[scalar]; ok {
		return obj
	}
	element := graphql.NewNonNull(scalar)
	obj := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        scalar.Name() + "Range",
		Description: description,
		Fields: graphql.InputObjectConfigFieldMap{
			RangeBegin: &graphql.InputObjectFieldConfig{Type: element},
			RangeEnd:   &graphql.InputObjectFieldConfig{Type: element},
		},
	})
	rangeInputTypes[scalar] = obj
	return obj
}
