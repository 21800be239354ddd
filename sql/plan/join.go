package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// JoinKind is the kind of a join.
type JoinKind byte

const (
	// InnerJoin only keeps matching rows.
	InnerJoin JoinKind = iota
	// LeftJoin keeps all rows of the left side.
	LeftJoin
	// RightJoin keeps all rows of the right side.
	RightJoin
	// FullJoin keeps all rows of both sides.
	FullJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullJoin:
		return "full"
	default:
		return fmt.Sprintf("JoinKind(%d)", byte(k))
	}
}

// Join combines the rows of both children that satisfy a condition over
// the concatenation of their fields.
type Join struct {
	BinaryNode
	Condition sql.Expression
	Kind      JoinKind
}

var _ sql.Node = (*Join)(nil)

// NewJoin creates a join node.
func NewJoin(left, right sql.Node, condition sql.Expression, kind JoinKind) (*Join, error) {
	j := &Join{
		BinaryNode: BinaryNode{left, right},
		Condition:  condition,
		Kind:       kind,
	}

	if kind > FullJoin {
		return nil, sql.ErrInvalidNode.New("Join", fmt.Sprintf("unknown join type %s", kind))
	}

	if err := checkCondition("Join", j.Schema(), condition); err != nil {
		return nil, err
	}
	return j, nil
}

// Schema implements the Node interface.
func (j *Join) Schema() sql.Schema {
	return concatSchemas(
		j.left.Schema(),
		j.right.Schema(),
		j.Kind == RightJoin || j.Kind == FullJoin,
		j.Kind == LeftJoin || j.Kind == FullJoin,
	)
}

func (j *Join) header() string {
	return fmt.Sprintf("Join(condition=[%s], joinType=[%s])", j.Condition, j.Kind)
}

func (j *Join) String() string {
	return printNode(j, j.header(), false)
}

// DebugString implements the Node interface.
func (j *Join) DebugString() string {
	return printNode(j, j.header(), true)
}
