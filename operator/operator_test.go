package operator

import (
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

func TestRegisterValidation(t *testing.T) {
	noop := func(c query.Column, v any) (query.Predicate, error) { return nil, nil }

	tests := []struct {
		name    string
		desc    Descriptor
		wantErr bool
	}{
		{
			name: "valid",
			desc: Descriptor{ID: "custom", Types: []model.TypeTag{model.TypeString}, Build: noop},
		},
		{
			name:    "empty id",
			desc:    Descriptor{Types: []model.TypeTag{model.TypeString}, Build: noop},
			wantErr: true,
		},
		{
			name:    "nil build",
			desc:    Descriptor{ID: "custom", Types: []model.TypeTag{model.TypeString}},
			wantErr: true,
		},
		{
			name:    "no types without AnyType",
			desc:    Descriptor{ID: "custom", Build: noop},
			wantErr: true,
		},
		{
			name: "any type without explicit list",
			desc: Descriptor{ID: "custom", AnyType: true, Build: noop},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.desc)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	d := Descriptor{
		ID:    "custom",
		Types: []model.TypeTag{model.TypeString},
		Build: func(c query.Column, v any) (query.Predicate, error) { return nil, nil },
	}
	if err := r.Register(d); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(d); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestDefaultAllowed(t *testing.T) {
	r := Default()

	tests := []struct {
		typ      model.TypeTag
		contains []ID
		excludes []ID
	}{
		{
			typ:      model.TypeString,
			contains: []ID{Eq, Ne, Like, ILike, In, NotIn},
			excludes: []ID{Lt, Range, Contains, IsNull},
		},
		{
			typ:      model.TypeInteger,
			contains: []ID{Eq, Ne, In, NotIn, Lt, Lte, Gt, Gte, Range},
			excludes: []ID{Like, ILike, Contains},
		},
		{
			typ:      model.TypeBoolean,
			contains: []ID{Eq, Ne},
			excludes: []ID{In, Lt, Like, Range},
		},
		{
			typ:      model.TypeDateTime,
			contains: []ID{Eq, Ne, In, NotIn, Lt, Lte, Gt, Gte, Range},
			excludes: []ID{Like},
		},
		{
			typ:      model.TypeArray,
			contains: []ID{Eq, Ne, In, NotIn, Lt, Lte, Gt, Gte, Contains, ContainedBy, Overlap},
			excludes: []ID{Like, Range},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			allowed := make(map[ID]bool)
			for _, id := range r.Allowed(tt.typ) {
				allowed[id] = true
			}
			for _, id := range tt.contains {
				if !allowed[id] {
					t.Errorf("%s should allow %s", tt.typ, id)
				}
			}
			for _, id := range tt.excludes {
				if allowed[id] {
					t.Errorf("%s should not allow %s", tt.typ, id)
				}
			}
		})
	}
}

func TestIsNullAppliesToEverything(t *testing.T) {
	r := Default()
	for _, typ := range []model.TypeTag{
		model.TypeBoolean, model.TypeString, model.TypeInteger, model.TypeFloat,
		model.TypeDate, model.TypeTime, model.TypeDateTime,
		model.TypeUUID, model.TypeJSON, model.TypeArray,
	} {
		if !r.Applicable(IsNull, typ) {
			t.Errorf("isNull should apply to %s", typ)
		}
	}
	// But it is never part of the per-type allowed set; the compiler adds
	// it separately for nullable columns.
	for _, id := range r.Allowed(model.TypeString) {
		if id == IsNull {
			t.Error("isNull must not appear in Allowed")
		}
	}
}

func TestApplicableUnknownOperator(t *testing.T) {
	r := Default()
	if r.Applicable("nope", model.TypeString) {
		t.Error("unknown operator should not be applicable")
	}
}

func TestBuildRange(t *testing.T) {
	desc, ok := Default().Lookup(Range)
	if !ok {
		t.Fatal("range operator not registered")
	}

	c := &recordingColumn{}
	if _, err := desc.Build(c, map[string]any{RangeBegin: 1, RangeEnd: 9}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if c.begin != 1 || c.end != 9 {
		t.Errorf("expected Between(1, 9), got Between(%v, %v)", c.begin, c.end)
	}

	errTests := []struct {
		name  string
		value any
	}{
		{"not an object", "1..9"},
		{"missing begin", map[string]any{RangeEnd: 9}},
		{"missing end", map[string]any{RangeBegin: 1}},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := desc.Build(c, tt.value); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestListInput(t *testing.T) {
	nonNullable := listInput(graphql.String, false, "")
	if nonNullable.String() != "[String!]" {
		t.Errorf("expected [String!], got %s", nonNullable)
	}
	nullable := listInput(graphql.String, true, "")
	if nullable.String() != "[String]" {
		t.Errorf("expected [String], got %s", nullable)
	}
}

func TestRangeInputCached(t *testing.T) {
	a := rangeInput(graphql.Int, false, "")
	b := rangeInput(graphql.Int, true, "")
	if a != b {
		t.Error("range input types must be cached per scalar")
	}
	if a.Name() != "IntRange" {
		t.Errorf("expected IntRange, got %s", a.Name())
	}
	c := rangeInput(graphql.Float, false, "")
	if a == c {
		t.Error("distinct scalars must get distinct range types")
	}
}

// recordingColumn records Between arguments; other methods are unused here.
type recordingColumn struct {
	begin, end any
}

func (r *recordingColumn) Eq(v any) (query.Predicate, error)          { return nil, nil }
func (r *recordingColumn) Ne(v any) (query.Predicate, error)         { return nil, nil }
func (r *recordingColumn) Like(v any) (query.Predicate, error)       { return nil, nil }
func (r *recordingColumn) ILike(v any) (query.Predicate, error)      { return nil, nil }
func (r *recordingColumn) IsNull(v any) (query.Predicate, error)     { return nil, nil }
func (r *recordingColumn) In(v any) (query.Predicate, error)         { return nil, nil }
func (r *recordingColumn) NotIn(v any) (query.Predicate, error)      { return nil, nil }
func (r *recordingColumn) Lt(v any) (query.Predicate, error)         { return nil, nil }
func (r *recordingColumn) Lte(v any) (query.Predicate, error)        { return nil, nil }
func (r *recordingColumn) Gt(v any) (query.Predicate, error)         { return nil, nil }
func (r *recordingColumn) Gte(v any) (query.Predicate, error)        { return nil, nil }
func (r *recordingColumn) Contains(v any) (query.Predicate, error)   { return nil, nil }
func (r *recordingColumn) ContainedBy(v any) (query.Predicate, error) { return nil, nil }
func (r *recordingColumn) Overlaps(v any) (query.Predicate, error)   { return nil, nil }

func (r *recordingColumn) Between(begin, end any) (query.Predicate, error) {
	r.begin, r.end = begin, end
	return nil, nil
}
