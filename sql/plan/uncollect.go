package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Uncollect flattens the single collection column of its child into one row
// per element. Arrays produce one column with the elements, maps two
// columns with the keys and the values.
type Uncollect struct {
	UnaryNode
}

var _ sql.Node = (*Uncollect)(nil)

// NewUncollect creates an uncollect node.
func NewUncollect(child sql.Node) (*Uncollect, error) {
	schema := child.Schema()
	if len(schema) != 1 {
		return nil, sql.ErrInvalidNode.New("Uncollect", fmt.Sprintf("expecting a single column, got %s", schema))
	}

	switch schema[0].Type.(type) {
	case sql.ArrayType, sql.MapType:
	default:
		return nil, sql.ErrInvalidNode.New("Uncollect", fmt.Sprintf("column %s is %s, not a collection", schema[0].Name, schema[0].Type))
	}

	return &Uncollect{UnaryNode{child}}, nil
}

// Schema implements the Node interface.
func (u *Uncollect) Schema() sql.Schema {
	col := u.Child.Schema()[0]
	switch t := col.Type.(type) {
	case sql.MapType:
		return sql.Schema{
			{Name: "key", Type: t.Key, Nullable: true},
			{Name: "value", Type: t.Value, Nullable: true},
		}
	default:
		return sql.Schema{
			{Name: col.Name, Type: t.(sql.ArrayType).Elem, Nullable: true},
		}
	}
}

func (u *Uncollect) String() string {
	return printNode(u, "Uncollect", false)
}

// DebugString implements the Node interface.
func (u *Uncollect) DebugString() string {
	return printNode(u, "Uncollect", true)
}
