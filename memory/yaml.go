package memory

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// DefaultDatabase is the database of definitions that do not name one.
const DefaultDatabase = "default"

// ColumnDefinition is the YAML form of a column.
type ColumnDefinition struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	NotNull bool   `yaml:"not_null,omitempty"`
}

// TableDefinition is the YAML form of a table or, when it has a query, a
// view.
type TableDefinition struct {
	Database   string             `yaml:"database,omitempty"`
	Name       string             `yaml:"name"`
	Columns    []ColumnDefinition `yaml:"columns"`
	Query      string             `yaml:"query,omitempty"`
	Properties map[string]string  `yaml:"properties,omitempty"`
}

// FunctionDefinition is the YAML form of a user function. A missing
// max_args means the function takes exactly min_args arguments, a negative
// one that it takes any number above min_args.
type FunctionDefinition struct {
	Database string `yaml:"database,omitempty"`
	Name     string `yaml:"name"`
	Class    string `yaml:"class"`
	Returns  string `yaml:"returns,omitempty"`
	MinArgs  int    `yaml:"min_args"`
	MaxArgs  *int   `yaml:"max_args,omitempty"`
}

// Definitions is a YAML catalog document.
type Definitions struct {
	Tables    []TableDefinition    `yaml:"tables,omitempty"`
	Views     []TableDefinition    `yaml:"views,omitempty"`
	Functions []FunctionDefinition `yaml:"functions,omitempty"`
}

func database(db string) string {
	if db == "" {
		return DefaultDatabase
	}
	return db
}

// Entry converts the definition to a catalog entry.
func (d TableDefinition) Entry() (*sql.CatalogEntry, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("table without name in database %s", database(d.Database))
	}

	var err error
	schema := make(sql.Schema, len(d.Columns))
	for i, c := range d.Columns {
		typ, terr := sql.ParseType(c.Type)
		if terr != nil {
			err = multierr.Append(err, fmt.Errorf("%s.%s: column %q: %s", database(d.Database), d.Name, c.Name, terr))
			continue
		}

		schema[i] = &sql.Column{
			Name:     c.Name,
			Type:     typ,
			Nullable: !c.NotNull,
			Source:   d.Name,
		}

		if cerr := schema[i].Check(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s.%s: %s", database(d.Database), d.Name, cerr))
		}
	}

	if err != nil {
		return nil, err
	}

	return &sql.CatalogEntry{
		Database:   database(d.Database),
		Name:       d.Name,
		Schema:     schema,
		ViewText:   d.Query,
		Properties: d.Properties,
	}, nil
}

// NewTableDefinition returns the YAML form of a catalog entry.
func NewTableDefinition(e *sql.CatalogEntry) TableDefinition {
	cols := make([]ColumnDefinition, len(e.Schema))
	for i, c := range e.Schema {
		cols[i] = ColumnDefinition{
			Name:    c.Name,
			Type:    c.Type.String(),
			NotNull: !c.Nullable,
		}
	}

	return TableDefinition{
		Database:   e.Database,
		Name:       e.Name,
		Columns:    cols,
		Query:      e.ViewText,
		Properties: e.Properties,
	}
}

// Entry converts the definition to a function entry.
func (d FunctionDefinition) Entry() (*sql.FunctionEntry, error) {
	if d.Name == "" || d.Class == "" {
		return nil, fmt.Errorf("function %q in database %s needs a name and a class", d.Name, database(d.Database))
	}

	var ret sql.Type
	if d.Returns != "" {
		t, err := sql.ParseType(d.Returns)
		if err != nil {
			return nil, fmt.Errorf("function %s: %s", d.Name, err)
		}
		ret = t
	}

	maxArgs := d.MinArgs
	if d.MaxArgs != nil {
		maxArgs = *d.MaxArgs
	}

	return &sql.FunctionEntry{
		Database:   database(d.Database),
		Name:       d.Name,
		Class:      d.Class,
		ReturnType: ret,
		MinArgs:    d.MinArgs,
		MaxArgs:    maxArgs,
	}, nil
}

// NewFunctionDefinition returns the YAML form of a function entry.
func NewFunctionDefinition(f *sql.FunctionEntry) FunctionDefinition {
	maxArgs := f.MaxArgs
	d := FunctionDefinition{
		Database: f.Database,
		Name:     f.Name,
		Class:    f.Class,
		MinArgs:  f.MinArgs,
		MaxArgs:  &maxArgs,
	}

	if f.ReturnType != nil {
		d.Returns = f.ReturnType.String()
	}
	return d
}

// ParseDefinitions reads a YAML catalog document. Unknown keys are errors.
func ParseDefinitions(r io.Reader) (*Definitions, error) {
	var defs Definitions
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&defs); err != nil && err != io.EOF {
		return nil, err
	}
	return &defs, nil
}

// Load adds all the given definitions to the catalog. Every definition is
// tried and all the problems found are returned together.
func (c *Catalog) Load(defs *Definitions) error {
	var err error
	for _, d := range defs.Tables {
		e, derr := d.Entry()
		if derr == nil {
			derr = c.AddEntry(e)
		}
		err = multierr.Append(err, derr)
	}

	for _, d := range defs.Views {
		e, derr := d.Entry()
		if derr == nil {
			derr = c.AddView(e.Database, e.Name, e.Schema, e.ViewText)
		}
		err = multierr.Append(err, derr)
	}

	for _, d := range defs.Functions {
		f, derr := d.Entry()
		if derr == nil {
			derr = c.AddFunction(f)
		}
		err = multierr.Append(err, derr)
	}
	return err
}

// LoadYAML creates a catalog from a YAML document.
func LoadYAML(r io.Reader) (*Catalog, error) {
	defs, err := ParseDefinitions(r)
	if err != nil {
		return nil, err
	}

	c := NewCatalog()
	if err := c.Load(defs); err != nil {
		return nil, err
	}
	return c, nil
}
