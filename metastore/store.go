// Package metastore implements a catalog persisted in a bolt database.
package metastore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/boltdb/bolt"
	"go.uber.org/multierr"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-hive2rel.v0/internal/similartext"
	"gopkg.in/src-d/go-hive2rel.v0/memory"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// ErrStoreClosed is returned when using a store after closing it.
var ErrStoreClosed = errors.NewKind("metastore %s is closed")

// buckets:
// - tables: db.name -> memory.TableDefinition (yaml)
// - views: db.name -> memory.TableDefinition (yaml)
// - functions: db.name -> memory.FunctionDefinition (yaml)
var (
	tablesBucket    = []byte("tables")
	viewsBucket     = []byte("views")
	functionsBucket = []byte("functions")
)

// Store is a catalog of tables, views and user functions kept in a bolt
// file. Lookups run in read-only transactions, so a Store can be shared by
// concurrent conversions.
type Store struct {
	path string

	mut sync.RWMutex
	db  *bolt.DB
}

var _ sql.Catalog = (*Store)(nil)

// Open opens the store at path, creating it if it does not exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0640, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{tablesBucket, viewsBucket, functionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	return &Store{path: path, db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.db == nil {
		return ErrStoreClosed.New(s.path)
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.db == nil {
		return ErrStoreClosed.New(s.path)
	}
	return s.db.Update(fn)
}

func key(db, name string) []byte {
	return []byte(strings.ToLower(db) + "." + strings.ToLower(name))
}

// PutTable stores a table, replacing any table or view with the same name.
func (s *Store) PutTable(e *sql.CatalogEntry) error {
	return s.put(tablesBucket, viewsBucket, e)
}

// PutView stores a view, replacing any table or view with the same name.
func (s *Store) PutView(e *sql.CatalogEntry) error {
	return s.put(viewsBucket, tablesBucket, e)
}

func (s *Store) put(bucket, other []byte, e *sql.CatalogEntry) error {
	value, err := yaml.Marshal(memory.NewTableDefinition(e))
	if err != nil {
		return err
	}

	k := key(e.Database, e.Name)
	return s.update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(other).Delete(k); err != nil {
			return err
		}
		return tx.Bucket(bucket).Put(k, value)
	})
}

// PutFunction stores a user function.
func (s *Store) PutFunction(f *sql.FunctionEntry) error {
	value, err := yaml.Marshal(memory.NewFunctionDefinition(f))
	if err != nil {
		return err
	}

	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(functionsBucket).Put(key(f.Database, f.Name), value)
	})
}

// Delete removes the table or view with the given name. It returns whether
// anything was removed.
func (s *Store) Delete(db, name string) (bool, error) {
	var found bool
	k := key(db, name)
	err := s.update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{tablesBucket, viewsBucket} {
			b := tx.Bucket(bucket)
			if b.Get(k) != nil {
				found = true
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return found, err
}

// Import stores all the given definitions. Invalid definitions do not stop
// the import; all the problems found are returned together.
func (s *Store) Import(defs *memory.Definitions) error {
	var err error
	for _, d := range defs.Tables {
		e, derr := d.Entry()
		if derr == nil {
			derr = s.PutTable(e)
		}
		err = multierr.Append(err, derr)
	}

	for _, d := range defs.Views {
		e, derr := d.Entry()
		if derr == nil {
			derr = s.PutView(e)
		}
		err = multierr.Append(err, derr)
	}

	for _, d := range defs.Functions {
		f, derr := d.Entry()
		if derr == nil {
			derr = s.PutFunction(f)
		}
		err = multierr.Append(err, derr)
	}
	return err
}

// Export returns the definitions of all the stored objects.
func (s *Store) Export() (*memory.Definitions, error) {
	var defs memory.Definitions
	err := s.view(func(tx *bolt.Tx) error {
		err := tx.Bucket(tablesBucket).ForEach(func(_, v []byte) error {
			var d memory.TableDefinition
			if err := yaml.Unmarshal(v, &d); err != nil {
				return err
			}
			defs.Tables = append(defs.Tables, d)
			return nil
		})
		if err != nil {
			return err
		}

		err = tx.Bucket(viewsBucket).ForEach(func(_, v []byte) error {
			var d memory.TableDefinition
			if err := yaml.Unmarshal(v, &d); err != nil {
				return err
			}
			defs.Views = append(defs.Views, d)
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(functionsBucket).ForEach(func(_, v []byte) error {
			var d memory.FunctionDefinition
			if err := yaml.Unmarshal(v, &d); err != nil {
				return err
			}
			defs.Functions = append(defs.Functions, d)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &defs, nil
}

func (s *Store) getEntry(bucket []byte, db, name string) (*sql.CatalogEntry, error) {
	var e *sql.CatalogEntry
	err := s.view(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key(db, name))
		if v == nil {
			return nil
		}

		var d memory.TableDefinition
		if err := yaml.Unmarshal(v, &d); err != nil {
			return fmt.Errorf("corrupted entry %s.%s: %s", db, name, err)
		}

		var err error
		e, err = d.Entry()
		return err
	})
	return e, err
}

// names returns the names of the objects of a database in a bucket.
func (s *Store) names(bucket []byte, db string) ([]string, error) {
	var names []string
	prefix := []byte(strings.ToLower(db) + ".")
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			names = append(names, string(k[len(prefix):]))
		}
		return nil
	})
	return names, err
}

// Tables returns the lowercased names of the tables of a database, sorted.
func (s *Store) Tables(db string) ([]string, error) {
	return s.names(tablesBucket, db)
}

// LookupTable implements the sql.Catalog interface.
func (s *Store) LookupTable(_ context.Context, db, name string) (*sql.CatalogEntry, error) {
	e, err := s.getEntry(tablesBucket, db, name)
	if err != nil || e != nil {
		return e, err
	}

	names, err := s.Tables(db)
	if err != nil {
		return nil, err
	}
	return nil, sql.ErrObjectNotFound.New(db, name+similartext.Find(names, name))
}

// LookupView implements the sql.Catalog interface.
func (s *Store) LookupView(_ context.Context, db, name string) (*sql.CatalogEntry, bool, error) {
	e, err := s.getEntry(viewsBucket, db, name)
	return e, e != nil, err
}

// LookupFunction implements the sql.Catalog interface.
func (s *Store) LookupFunction(_ context.Context, db, name string) (*sql.FunctionEntry, bool, error) {
	var f *sql.FunctionEntry
	err := s.view(func(tx *bolt.Tx) error {
		v := tx.Bucket(functionsBucket).Get(key(db, name))
		if v == nil {
			return nil
		}

		var d memory.FunctionDefinition
		if err := yaml.Unmarshal(v, &d); err != nil {
			return fmt.Errorf("corrupted function %s.%s: %s", db, name, err)
		}

		var err error
		f, err = d.Entry()
		return err
	})
	return f, f != nil, err
}
