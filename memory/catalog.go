package memory

import (
	"context"
	"strings"
	"sync"

	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-hive2rel.v0/internal/similartext"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// ErrExistingObject is returned when adding an object whose name is already
// taken in its database.
var ErrExistingObject = errors.NewKind("%s %s.%s already exists in the catalog")

type objectKey struct {
	db, name string
}

func newKey(db, name string) objectKey {
	return objectKey{strings.ToLower(db), strings.ToLower(name)}
}

// Catalog is an in-memory catalog of tables, views and functions.
type Catalog struct {
	mu        sync.RWMutex
	tables    map[objectKey]*sql.CatalogEntry
	views     map[objectKey]*sql.CatalogEntry
	functions map[objectKey]*sql.FunctionEntry
}

var _ sql.Catalog = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tables:    make(map[objectKey]*sql.CatalogEntry),
		views:     make(map[objectKey]*sql.CatalogEntry),
		functions: make(map[objectKey]*sql.FunctionEntry),
	}
}

// AddTable adds a table with the given schema.
func (c *Catalog) AddTable(db, name string, schema sql.Schema) error {
	return c.AddEntry(&sql.CatalogEntry{
		Database: db,
		Name:     name,
		Schema:   schema,
	})
}

// AddView adds a view with the given declared schema and stored query.
func (c *Catalog) AddView(db, name string, schema sql.Schema, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := newKey(db, name)
	if c.exists(key) {
		return ErrExistingObject.New("view", db, name)
	}

	c.views[key] = &sql.CatalogEntry{
		Database: db,
		Name:     name,
		Schema:   schema.WithSource(name),
		ViewText: query,
	}
	return nil
}

// AddEntry adds a table or a view, depending on whether the entry has a
// stored query.
func (c *Catalog) AddEntry(e *sql.CatalogEntry) error {
	if e.IsView() {
		return c.AddView(e.Database, e.Name, e.Schema, e.ViewText)
	}

	for _, col := range e.Schema {
		if err := col.Check(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := newKey(e.Database, e.Name)
	if c.exists(key) {
		return ErrExistingObject.New("table", e.Database, e.Name)
	}

	entry := *e
	entry.Schema = e.Schema.WithSource(e.Name)
	c.tables[key] = &entry
	return nil
}

// AddFunction registers a user function.
func (c *Catalog) AddFunction(f *sql.FunctionEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := newKey(f.Database, f.Name)
	if _, ok := c.functions[key]; ok {
		return ErrExistingObject.New("function", f.Database, f.Name)
	}

	c.functions[key] = f
	return nil
}

func (c *Catalog) exists(key objectKey) bool {
	_, isTable := c.tables[key]
	_, isView := c.views[key]
	return isTable || isView
}

// LookupTable implements the sql.Catalog interface.
func (c *Catalog) LookupTable(_ context.Context, db, name string) (*sql.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.tables[newKey(db, name)]; ok {
		return e, nil
	}

	var names []string
	for k := range c.tables {
		if k.db == strings.ToLower(db) {
			names = append(names, k.name)
		}
	}

	return nil, sql.ErrObjectNotFound.New(db, name+similartext.Find(names, name))
}

// LookupView implements the sql.Catalog interface.
func (c *Catalog) LookupView(_ context.Context, db, name string) (*sql.CatalogEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.views[newKey(db, name)]
	return e, ok, nil
}

// LookupFunction implements the sql.Catalog interface.
func (c *Catalog) LookupFunction(_ context.Context, db, name string) (*sql.FunctionEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.functions[newKey(db, name)]
	return f, ok, nil
}

// Tables returns the names of the tables of a database.
func (c *Catalog) Tables(db string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for k, e := range c.tables {
		if k.db == strings.ToLower(db) {
			names = append(names, e.Name)
		}
	}
	return names
}
