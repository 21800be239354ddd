package sql

import (
	"context"
	"fmt"
)

// Catalog is the read-only metastore the converter consumes. It is owned by
// the caller and shared between conversions, so implementations must be
// safe for concurrent use.
type Catalog interface {
	// LookupTable returns the entry of a table or fails with
	// ErrObjectNotFound.
	LookupTable(ctx context.Context, db, name string) (*CatalogEntry, error)
	// LookupView returns the entry of a view and whether it exists.
	LookupView(ctx context.Context, db, name string) (*CatalogEntry, bool, error)
	// LookupFunction returns the user function registered with the given
	// name in the database, and whether it exists.
	LookupFunction(ctx context.Context, db, name string) (*FunctionEntry, bool, error)
}

// CatalogEntry describes a table or a view.
type CatalogEntry struct {
	Database string
	Name     string
	Schema   Schema
	// ViewText is the stored query of a view, empty for tables.
	ViewText string
	// Properties are the table parameters stored with the entry.
	Properties map[string]string
}

// QualifiedName returns the name of the entry qualified by its database.
func (e *CatalogEntry) QualifiedName() string {
	return fmt.Sprintf("%s.%s", e.Database, e.Name)
}

// IsView returns whether the entry is a view.
func (e *CatalogEntry) IsView() bool {
	return e.ViewText != ""
}

// FunctionEntry describes a user function registered in the catalog.
type FunctionEntry struct {
	Database string
	Name     string
	// Class is the fully qualified identifier of the implementation.
	Class      string
	ReturnType Type
	MinArgs    int
	// MaxArgs is the maximum number of arguments, negative if unbounded.
	MaxArgs int
}

// AcceptsArity returns whether the function can be called with n arguments.
func (f *FunctionEntry) AcceptsArity(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

// QualifiedName returns the name of the function qualified by its database.
func (f *FunctionEntry) QualifiedName() string {
	return fmt.Sprintf("%s.%s", f.Database, f.Name)
}
