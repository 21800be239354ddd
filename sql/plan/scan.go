package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Scan reads all the rows of a catalog table.
type Scan struct {
	Database string
	Table    string
	schema   sql.Schema
}

var _ sql.Node = (*Scan)(nil)

// NewScan creates a scan of the given table with its catalog schema.
func NewScan(db, table string, schema sql.Schema) (*Scan, error) {
	if table == "" {
		return nil, sql.ErrInvalidNode.New("Scan", "missing table name")
	}

	for _, c := range schema {
		if err := c.Check(); err != nil {
			return nil, sql.ErrInvalidNode.New("Scan", err.Error())
		}
	}

	return &Scan{
		Database: db,
		Table:    table,
		schema:   schema.WithSource(table),
	}, nil
}

// QualifiedName returns the name of the table qualified by its database.
func (s *Scan) QualifiedName() string {
	return fmt.Sprintf("%s.%s", s.Database, s.Table)
}

// Schema implements the Node interface.
func (s *Scan) Schema() sql.Schema {
	return s.schema
}

// Children implements the Node interface.
func (*Scan) Children() []sql.Node {
	return nil
}

func (s *Scan) String() string {
	return printNode(s, fmt.Sprintf("Scan(table=[%s])", s.QualifiedName()), false)
}

// DebugString implements the Node interface.
func (s *Scan) DebugString() string {
	return printNode(s, fmt.Sprintf("Scan(table=[%s])", s.QualifiedName()), true)
}
