package sqlfilter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphql-go/graphql"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/operator"
)

// FieldSpec declares one filterable field. Exactly one of the three forms
// applies: a column field (Operators or All), a custom field (Custom), or
// a relation field (Relation).
type FieldSpec struct {
	// Name is the model column name, relation name, or - for custom
	// fields - the external field name.
	// REQUIRED: MUST be non-empty.
	Name string

	// Operators lists the operators generated for the column.
	Operators []operator.ID

	// All requests every operator applicable to the column's type
	// (plus isNull for nullable columns) instead of an explicit list.
	All bool

	// Custom declares a field resolved by user code instead of a column.
	Custom *CustomSpec

	// Relation declares a nested filter over a related model.
	Relation *RelationSpec
}

// CustomSpec declares a custom filter field.
type CustomSpec struct {
	// Input is the field's GraphQL input type.
	// REQUIRED: MUST NOT be nil.
	Input graphql.Input

	// Resolve builds the predicate: Pure or Scoped.
	// REQUIRED: MUST NOT be nil.
	Resolve Resolver

	// Description documents the field in the generated schema.
	Description string
}

// RelationSpec declares a nested filter over a related model. The nested
// tree compiles to an existence condition, never a flat join.
type RelationSpec struct {
	// Fields are the field specs of the nested filter, declared against
	// the relation's target model.
	// REQUIRED: MUST be non-empty.
	Fields []FieldSpec
}

// FilterSetDef declares one filter set.
type FilterSetDef struct {
	// Name is the GraphQL input type name (e.g. "UserFilter").
	// REQUIRED: MUST be non-empty and unique process-wide.
	Name string

	// Model is the filtered model.
	// REQUIRED: MUST NOT be nil.
	Model *model.Model

	// Fields declares the filterable fields.
	Fields []FieldSpec

	// Default is an unconditional predicate applied on every resolution,
	// before and AND-combined with any user-submitted tree.
	// OPTIONAL.
	Default Resolver
}

type bindingKind int

const (
	bindLeaf bindingKind = iota
	bindCustom
	bindRelation
)

// binding is the compiled resolver entry for one input field. The table is
// built once at compile time; no name splitting happens at request time.
type binding struct {
	kind     bindingKind
	column   *model.Column
	op       *operator.Descriptor
	rel      *model.Relation
	nested   *FilterSet
	resolver Resolver
}

// inputField is one generated input field, in declaration order.
type inputField struct {
	name        string
	typ         graphql.Input
	description string
}

// FilterSet is a compiled filter set: an immutable GraphQL input object
// plus the binding table the evaluator dispatches on. Safe for concurrent
// use once compiled.
type FilterSet struct {
	name          string
	model         *model.Model
	input         *graphql.InputObject
	fields        []inputField
	bindings      map[string]binding
	combinators   CombinatorNames
	defaultFilter Resolver
	cfg           Config
}

// Name returns the filter set's GraphQL type name.
func (fs *FilterSet) Name() string { return fs.name }

// Model returns the filtered model.
func (fs *FilterSet) Model() *model.Model { return fs.model }

// Input returns the compiled GraphQL input object.
func (fs *FilterSet) Input() *graphql.InputObject { return fs.input }

// Compile builds a filter set from its declaration. All configuration
// errors (unknown columns, operators not applicable to a column's type,
// duplicate field names) are reported here, never deferred to request
// time.
func Compile(def FilterSetDef, cfg Config) (*FilterSet, error) {
	cfg = cfg.withDefaults()
	fs, err := compile(def, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics != nil {
		cfg.Metrics.CompilationsTotal.Inc()
	}
	cfg.Logger.Debug("compiled filter set",
		"name", fs.name, "model", fs.model.Name, "fields", len(fs.fields))
	return fs, nil
}

func compile(def FilterSetDef, cfg Config) (*FilterSet, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("sqlfilter: filter set name cannot be empty")
	}
	if def.Model == nil {
		return nil, fmt.Errorf("sqlfilter: filter set %s has nil model", def.Name)
	}
	if err := def.Model.Validate(); err != nil {
		return nil, fmt.Errorf("sqlfilter: filter set %s: %w", def.Name, err)
	}

	fs := &FilterSet{
		name:          def.Name,
		model:         def.Model,
		bindings:      make(map[string]binding),
		combinators:   *cfg.Combinators,
		defaultFilter: def.Default,
		cfg:           cfg,
	}

	for _, spec := range def.Fields {
		if spec.Name == "" {
			return nil, fmt.Errorf("sqlfilter: %s: field name cannot be empty", def.Name)
		}
		var err error
		switch {
		case spec.Custom != nil:
			err = fs.compileCustom(spec)
		case spec.Relation != nil:
			err = fs.compileRelation(spec)
		default:
			err = fs.compileColumn(spec)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, name := range []string{fs.combinators.And, fs.combinators.Or, fs.combinators.Not} {
		if _, ok := fs.bindings[name]; ok {
			return nil, fmt.Errorf("sqlfilter: %s: field %q collides with a combinator", def.Name, name)
		}
	}

	fs.input = fs.buildInputObject()
	return fs, nil
}

func (fs *FilterSet) addField(name string, typ graphql.Input, description string, b binding) error {
	if _, ok := fs.bindings[name]; ok {
		return fmt.Errorf("sqlfilter: %s: duplicate input field %q", fs.name, name)
	}
	fs.bindings[name] = b
	fs.fields = append(fs.fields, inputField{name: name, typ: typ, description: description})
	return nil
}

func (fs *FilterSet) compileColumn(spec FieldSpec) error {
	reg := fs.cfg.Operators
	col, ok := fs.model.Column(spec.Name)
	if !ok {
		return fmt.Errorf("sqlfilter: %s: unknown column %q on model %s",
			fs.name, spec.Name, fs.model.Name)
	}

	ops := spec.Operators
	if spec.All {
		if len(spec.Operators) > 0 {
			return fmt.Errorf("sqlfilter: %s: field %q mixes All with an explicit operator list",
				fs.name, spec.Name)
		}
		allowed := reg.Allowed(col.Type)
		if len(allowed) == 0 {
			return fmt.Errorf("sqlfilter: %s: no operators registered for column type %s (field %q)",
				fs.name, col.Type, spec.Name)
		}
		ops = append([]operator.ID{}, allowed...)
		if col.Nullable {
			if _, ok := reg.Lookup(operator.IsNull); ok {
				ops = append(ops, operator.IsNull)
			}
		}
	}
	if len(ops) == 0 {
		return fmt.Errorf("sqlfilter: %s: field %q declares no operators", fs.name, spec.Name)
	}

	scalar := columnScalar(col)
	for _, id := range ops {
		desc, ok := reg.Lookup(id)
		if !ok {
			return fmt.Errorf("sqlfilter: %s: unknown operator %q for field %q", fs.name, id, spec.Name)
		}
		if !reg.Applicable(id, col.Type) {
			return fmt.Errorf("sqlfilter: %s: operator %q is not applicable to %s column %q",
				fs.name, id, col.Type, spec.Name)
		}

		name := col.ExternalName() + fs.cfg.suffixFor(desc)
		typ := scalar
		if desc.Input != nil {
			typ = desc.Input(scalar, col.Nullable, desc.Description)
		}
		err := fs.addField(name, typ, desc.Description, binding{kind: bindLeaf, column: col, op: desc})
		if err != nil {
			return err
		}
	}
	return nil
}

func (fs *FilterSet) compileCustom(spec FieldSpec) error {
	if spec.Custom.Input == nil {
		return fmt.Errorf("sqlfilter: %s: custom field %q has nil input type", fs.name, spec.Name)
	}
	if spec.Custom.Resolve == nil {
		return fmt.Errorf("sqlfilter: %s: custom field %q has nil resolver", fs.name, spec.Name)
	}
	return fs.addField(spec.Name, spec.Custom.Input, spec.Custom.Description,
		binding{kind: bindCustom, resolver: spec.Custom.Resolve})
}

func (fs *FilterSet) compileRelation(spec FieldSpec) error {
	rel, ok := fs.model.Relation(spec.Name)
	if !ok {
		return fmt.Errorf("sqlfilter: %s: unknown relation %q on model %s",
			fs.name, spec.Name, fs.model.Name)
	}
	if len(spec.Relation.Fields) == 0 {
		return fmt.Errorf("sqlfilter: %s: relation %q declares no nested fields", fs.name, spec.Name)
	}

	nested, err := compile(FilterSetDef{
		Name:   fs.name + upperFirst(rel.Name),
		Model:  rel.Target,
		Fields: spec.Relation.Fields,
	}, fs.cfg)
	if err != nil {
		return err
	}

	return fs.addField(rel.Name, nested.input,
		fmt.Sprintf("Filter over the %s relation.", rel.Name),
		binding{kind: bindRelation, rel: rel, nested: nested})
}

// buildInputObject assembles the GraphQL input object. The combinator
// fields reference the object itself, so fields are supplied as a thunk.
func (fs *FilterSet) buildInputObject() *graphql.InputObject {
	var obj *graphql.InputObject
	thunk := func() graphql.InputObjectConfigFieldMap {
		fields := make(graphql.InputObjectConfigFieldMap, len(fs.fields)+3)
		for _, f := range fs.fields {
			fields[f.name] = &graphql.InputObjectFieldConfig{
				Type:        f.typ,
				Description: f.description,
			}
		}
		listOfSelf := graphql.NewList(graphql.NewNonNull(obj))
		fields[fs.combinators.And] = &graphql.InputObjectFieldConfig{
			Type:        listOfSelf,
			Description: "Conjunction of filters joined by `AND`.",
		}
		fields[fs.combinators.Or] = &graphql.InputObjectFieldConfig{
			Type:        listOfSelf,
			Description: "Conjunction of filters joined by `OR`.",
		}
		fields[fs.combinators.Not] = &graphql.InputObjectFieldConfig{
			Type:        obj,
			Description: "Negation of filters.",
		}
		return fields
	}
	obj = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   fs.name,
		Fields: (graphql.InputObjectConfigFieldMapThunk)(thunk),
	})
	return obj
}

// columnScalar maps a column type to its GraphQL scalar.
func columnScalar(c *model.Column) graphql.Input {
	if c.Type == model.TypeArray {
		elem := scalarFor(c.Elem)
		return graphql.NewList(graphql.NewNonNull(elem))
	}
	return scalarFor(c.Type)
}

func scalarFor(t model.TypeTag) graphql.Input {
	switch t {
	case model.TypeBoolean:
		return graphql.Boolean
	case model.TypeInteger:
		return graphql.Int
	case model.TypeFloat:
		return graphql.Float
	case model.TypeDate, model.TypeTime, model.TypeDateTime:
		return graphql.DateTime
	default:
		// Strings, UUIDs and JSON travel as strings.
		return graphql.String
	}
}

// upperFirst converts a relation name to an UpperCamelCase type-name part
// (e.g. "team_members" -> "TeamMembers").
func upperFirst(s string) string {
	parts := strings.Split(s, "_")
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	return sb.String()
}
