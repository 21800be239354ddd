package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Filter skips rows that don't match a certain expression.
type Filter struct {
	UnaryNode
	Condition sql.Expression
}

var _ sql.Node = (*Filter)(nil)

// NewFilter creates a new filter node. The condition has to be a boolean
// expression over the fields of the child.
func NewFilter(condition sql.Expression, child sql.Node) (*Filter, error) {
	if err := checkCondition("Filter", child.Schema(), condition); err != nil {
		return nil, err
	}

	return &Filter{
		UnaryNode: UnaryNode{Child: child},
		Condition: condition,
	}, nil
}

func (p *Filter) String() string {
	return printNode(p, fmt.Sprintf("Filter(condition=[%s])", p.Condition), false)
}

// DebugString implements the Node interface.
func (p *Filter) DebugString() string {
	return printNode(p, fmt.Sprintf("Filter(condition=[%s])", p.Condition), true)
}
