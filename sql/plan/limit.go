package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Limit is a node that only allows up to N rows to be retrieved.
type Limit struct {
	UnaryNode
	Fetch int64
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a new Limit node instance.
func NewLimit(fetch int64, child sql.Node) (*Limit, error) {
	if fetch < 0 {
		return nil, sql.ErrInvalidNode.New("Limit", fmt.Sprintf("negative fetch %d", fetch))
	}

	return &Limit{
		UnaryNode: UnaryNode{Child: child},
		Fetch:     fetch,
	}, nil
}

func (l *Limit) String() string {
	return printNode(l, fmt.Sprintf("Limit(fetch=[%d])", l.Fetch), false)
}

// DebugString implements the Node interface.
func (l *Limit) DebugString() string {
	return printNode(l, fmt.Sprintf("Limit(fetch=[%d])", l.Fetch), true)
}
