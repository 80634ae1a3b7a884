package model

import "testing"

func validModel() *Model {
	group := &Model{
		Name:  "Group",
		Table: "groups",
		Columns: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "name", Type: TypeString},
		},
		PrimaryKey: []string{"id"},
	}
	return &Model{
		Name:  "User",
		Table: "users",
		Columns: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "username", GraphQLName: "login", Type: TypeString},
		},
		PrimaryKey: []string{"id"},
		Relations: []Relation{
			{Name: "groups", Target: group, LocalColumn: "id", RemoteColumn: "id", ToMany: true},
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validModel().Validate(); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(m *Model)
	}{
		{"empty name", func(m *Model) { m.Name = "" }},
		{"empty table", func(m *Model) { m.Table = "" }},
		{"empty column name", func(m *Model) { m.Columns[0].Name = "" }},
		{"duplicate column", func(m *Model) { m.Columns[1].Name = "id" }},
		{"unknown primary key", func(m *Model) { m.PrimaryKey = []string{"nope"} }},
		{"empty relation name", func(m *Model) { m.Relations[0].Name = "" }},
		{"nil relation target", func(m *Model) { m.Relations[0].Target = nil }},
		{"unknown local column", func(m *Model) { m.Relations[0].LocalColumn = "nope" }},
		{"unknown remote column", func(m *Model) { m.Relations[0].RemoteColumn = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestColumnLookup(t *testing.T) {
	m := validModel()
	c, ok := m.Column("username")
	if !ok {
		t.Fatal("column not found")
	}
	if c.ExternalName() != "login" {
		t.Errorf("expected external name login, got %s", c.ExternalName())
	}
	id, _ := m.Column("id")
	if id.ExternalName() != "id" {
		t.Errorf("external name should default to the column name, got %s", id.ExternalName())
	}
	if _, ok := m.Column("nope"); ok {
		t.Error("unexpected column")
	}
}

func TestRelationLookup(t *testing.T) {
	m := validModel()
	r, ok := m.Relation("groups")
	if !ok {
		t.Fatal("relation not found")
	}
	if r.Target.Name != "Group" || !r.ToMany {
		t.Errorf("unexpected relation: %+v", r)
	}
	if _, ok := m.Relation("nope"); ok {
		t.Error("unexpected relation")
	}
}
