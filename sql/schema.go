package sql

import (
	"fmt"
	"strings"
)

// Column is the definition of a field of a row type.
type Column struct {
	// Name is the name of the column.
	Name string
	// Type is the data type of the column.
	Type Type
	// Nullable is true if the column can contain NULL values.
	Nullable bool
	// Source is the name of the relation the column comes from, if any.
	Source string
}

// Check ensures the column has a name and a type.
func (c *Column) Check() error {
	if c.Name == "" {
		return ErrInvalidType.New("column without name")
	}

	if c.Type == nil {
		return ErrInvalidType.New(fmt.Sprintf("column %s has no type", c.Name))
	}
	return nil
}

// Equals checks whether two columns have the same name and type.
func (c *Column) Equals(c2 *Column) bool {
	return strings.EqualFold(c.Name, c2.Name) && c.Type.Equals(c2.Type)
}

// Schema is the ordered list of (name, type) pairs of a row type.
type Schema []*Column

// IndexOf returns the index of the column with the given name and source,
// ignoring case. An empty source matches any. It returns -1 if not found.
func (s Schema) IndexOf(column, source string) int {
	for i, col := range s {
		if strings.EqualFold(col.Name, column) && (source == "" || strings.EqualFold(col.Source, source)) {
			return i
		}
	}
	return -1
}

// Equals checks whether the given schema has the same columns, in order.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}

	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}
	return true
}

// WithSource returns a copy of the schema with all columns attributed to the
// given source.
func (s Schema) WithSource(source string) Schema {
	res := make(Schema, len(s))
	for i, c := range s {
		nc := *c
		nc.Source = source
		res[i] = &nc
	}
	return res
}

// String returns the row type in "(name TYPE, ...)" form.
func (s Schema) String() string {
	cols := make([]string, len(s))
	for i, c := range s {
		cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return "(" + strings.Join(cols, ", ") + ")"
}
