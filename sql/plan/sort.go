package plan

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// SortOrder represents the order of the sort (ascending or descending).
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// NullOrdering represents how to order based on null values.
type NullOrdering byte

const (
	// NullsFirst puts the null values before any other values.
	NullsFirst NullOrdering = iota
	// NullsLast puts the null values after all other values.
	NullsLast NullOrdering = 2
)

// SortField is a field by which the rows are sorted.
type SortField struct {
	// Index of the field in the input.
	Index int
	// Order of the sort.
	Order SortOrder
	// NullOrdering defining how nulls will be ordered.
	NullOrdering NullOrdering
}

// Sort orders the rows of its child. Rows are returned unchanged.
type Sort struct {
	UnaryNode
	Fields []SortField
}

var _ sql.Node = (*Sort)(nil)

// NewSort creates a new Sort node.
func NewSort(fields []SortField, child sql.Node) (*Sort, error) {
	schema := child.Schema()
	for _, f := range fields {
		if f.Index < 0 || f.Index >= len(schema) {
			return nil, sql.ErrInvalidNode.New("Sort", fmt.Sprintf("field $%d out of range of %s", f.Index, schema))
		}
	}

	return &Sort{
		UnaryNode: UnaryNode{child},
		Fields:    fields,
	}, nil
}

func (s *Sort) header() string {
	var parts []string
	for i, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("sort%d=[$%d]", i, f.Index))
	}

	for i, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("dir%d=[%s]", i, f.Order))
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(parts, ", "))
}

func (s *Sort) String() string {
	return printNode(s, s.header(), false)
}

// DebugString implements the Node interface.
func (s *Sort) DebugString() string {
	return printNode(s, s.header(), true)
}
