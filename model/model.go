// Package model describes the relational models a filter set is declared
// against: tables, typed columns and relations between models. Descriptors
// are plain data, built once at initialization time and never mutated.
package model

import "fmt"

// TypeTag classifies a column type for operator applicability checks.
type TypeTag string

const (
	TypeBoolean  TypeTag = "BOOLEAN"
	TypeString   TypeTag = "STRING"
	TypeInteger  TypeTag = "INTEGER"
	TypeFloat    TypeTag = "FLOAT"
	TypeDate     TypeTag = "DATE"
	TypeTime     TypeTag = "TIME"
	TypeDateTime TypeTag = "DATETIME"
	TypeUUID     TypeTag = "UUID"
	TypeJSON     TypeTag = "JSON"
	TypeArray    TypeTag = "ARRAY"
)

// Column describes a single model column.
type Column struct {
	// Name is the column name as it appears in SQL.
	// REQUIRED: MUST be non-empty and unique within the model.
	Name string

	// GraphQLName is the external field name. Defaults to Name.
	GraphQLName string

	// Type classifies the column for operator applicability.
	// REQUIRED for columns used with the operator shortcut.
	Type TypeTag

	// Elem is the element type of an array column.
	// REQUIRED when Type is TypeArray, ignored otherwise.
	Elem TypeTag

	// Nullable reports whether the column accepts NULL.
	Nullable bool
}

// ExternalName returns the GraphQL-facing name of the column.
func (c *Column) ExternalName() string {
	if c.GraphQLName != "" {
		return c.GraphQLName
	}
	return c.Name
}

// Relation describes a link from one model to another.
type Relation struct {
	// Name identifies the relation on the owning model (e.g. "memberships").
	Name string

	// Target is the related model.
	Target *Model

	// LocalColumn is the column on the owning model side of the link.
	LocalColumn string

	// RemoteColumn is the column on the target model side of the link.
	RemoteColumn string

	// ToMany reports whether one owning row links to many target rows.
	ToMany bool
}

// Model describes one filterable entity.
type Model struct {
	// Name is the logical model name (e.g. "User").
	// REQUIRED: MUST be non-empty.
	Name string

	// Table is the SQL table name.
	// REQUIRED: MUST be non-empty.
	Table string

	// Columns lists the model's filterable columns.
	Columns []Column

	// PrimaryKey names the primary key columns, in order.
	PrimaryKey []string

	// Relations lists links to other models.
	Relations []Relation
}

// Column returns the column with the given name.
func (m *Model) Column(name string) (*Column, bool) {
	for i := range m.Columns {
		if m.Columns[i].Name == name {
			return &m.Columns[i], true
		}
	}
	return nil, false
}

// Relation returns the relation with the given name.
func (m *Model) Relation(name string) (*Relation, bool) {
	for i := range m.Relations {
		if m.Relations[i].Name == name {
			return &m.Relations[i], true
		}
	}
	return nil, false
}

// Validate checks the descriptor for structural problems. It is called by
// the schema compiler before any fields are generated.
func (m *Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if m.Table == "" {
		return fmt.Errorf("model %s: table name cannot be empty", m.Name)
	}
	seen := make(map[string]bool, len(m.Columns))
	for i := range m.Columns {
		c := &m.Columns[i]
		if c.Name == "" {
			return fmt.Errorf("model %s: column name cannot be empty", m.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("model %s: duplicate column %s", m.Name, c.Name)
		}
		seen[c.Name] = true
	}
	for _, pk := range m.PrimaryKey {
		if _, ok := m.Column(pk); !ok {
			return fmt.Errorf("model %s: primary key column %s not declared", m.Name, pk)
		}
	}
	for i := range m.Relations {
		r := &m.Relations[i]
		if r.Name == "" {
			return fmt.Errorf("model %s: relation name cannot be empty", m.Name)
		}
		if r.Target == nil {
			return fmt.Errorf("model %s: relation %s has nil target", m.Name, r.Name)
		}
		if _, ok := m.Column(r.LocalColumn); !ok {
			return fmt.Errorf("model %s: relation %s references unknown local column %s",
				m.Name, r.Name, r.LocalColumn)
		}
		if _, ok := r.Target.Column(r.RemoteColumn); !ok {
			return fmt.Errorf("model %s: relation %s references unknown column %s on %s",
				m.Name, r.Name, r.RemoteColumn, r.Target.Name)
		}
	}
	return nil
}
