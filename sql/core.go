package sql

import "fmt"

// Expression is a typed scalar expression of the algebra tree. Expressions
// are immutable once built and may be shared by several parents.
type Expression interface {
	fmt.Stringer
	// Type returns the resolved type of the expression.
	Type() Type
	// IsNullable returns whether the expression can be null.
	IsNullable() bool
	// Children returns the children expressions of this expression.
	Children() []Expression
}

// Node is a relational operator of the algebra tree.
type Node interface {
	fmt.Stringer
	// Schema of the node, its row type.
	Schema() Schema
	// Children nodes.
	Children() []Node
	// DebugString is like String but annotates every node with its row type.
	DebugString() string
}

// CorrelationID identifies the left row of a Correlate node inside its right
// sub-tree. It is a plain identifier, never a reference to the node.
type CorrelationID int

func (c CorrelationID) String() string {
	return fmt.Sprintf("$cor%d", int(c))
}
