package plan

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Project is a projection of certain expression from the children node.
type Project struct {
	UnaryNode
	// Expressions projected.
	Expressions []sql.Expression
	// Names of the projected columns, one per expression.
	Names []string
}

var _ sql.Node = (*Project)(nil)

// NewProject creates a new projection. Every expression has to reference
// existing fields of the child.
func NewProject(names []string, expressions []sql.Expression, child sql.Node) (*Project, error) {
	if len(names) != len(expressions) {
		return nil, sql.ErrInvalidNode.New("Project", fmt.Sprintf("%d names for %d expressions", len(names), len(expressions)))
	}

	for i, n := range names {
		if n == "" {
			return nil, sql.ErrInvalidNode.New("Project", fmt.Sprintf("expression %s has no name", expressions[i]))
		}
	}

	if err := checkFields("Project", child.Schema(), expressions...); err != nil {
		return nil, err
	}

	return &Project{
		UnaryNode:   UnaryNode{child},
		Expressions: expressions,
		Names:       names,
	}, nil
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	s := make(sql.Schema, len(p.Expressions))
	for i, e := range p.Expressions {
		s[i] = &sql.Column{
			Name:     p.Names[i],
			Type:     e.Type(),
			Nullable: e.IsNullable(),
		}
	}
	return s
}

func (p *Project) String() string {
	return printNode(p, fmt.Sprintf("Project(%s)", namedExpressions(p.Names, p.Expressions)), false)
}

// DebugString implements the Node interface.
func (p *Project) DebugString() string {
	return printNode(p, fmt.Sprintf("Project(%s)", namedExpressions(p.Names, p.Expressions)), true)
}
