package plan

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// AggregateCall is the application of an aggregate function to fields of
// the input of an Aggregate.
type AggregateCall struct {
	Func     *sql.Function
	Args     []int
	Distinct bool
	// Name of the output column.
	Name     string
	Type     sql.Type
	Nullable bool
}

func (c *AggregateCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprintf("$%d", a)
	}

	var distinct string
	if c.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", c.Func, distinct, strings.Join(args, ", "))
}

// Aggregate groups the rows of its child by some of its fields and computes
// aggregate calls for each group. The output has the group fields first,
// followed by one column per call.
type Aggregate struct {
	UnaryNode
	Group []int
	Calls []*AggregateCall
}

var _ sql.Node = (*Aggregate)(nil)

// NewAggregate creates an aggregation node.
func NewAggregate(group []int, calls []*AggregateCall, child sql.Node) (*Aggregate, error) {
	schema := child.Schema()
	inRange := func(i int) bool { return i >= 0 && i < len(schema) }

	seen := make(map[int]bool, len(group))
	for _, g := range group {
		if !inRange(g) {
			return nil, sql.ErrInvalidNode.New("Aggregate", fmt.Sprintf("group field $%d out of range of %s", g, schema))
		}

		if seen[g] {
			return nil, sql.ErrInvalidNode.New("Aggregate", fmt.Sprintf("field $%d grouped twice", g))
		}
		seen[g] = true
	}

	for _, c := range calls {
		if c.Func == nil || c.Func.Kind != sql.AggregateFunction {
			return nil, sql.ErrInvalidNode.New("Aggregate", fmt.Sprintf("%s is not an aggregate function", c.Func))
		}

		if c.Name == "" || c.Type == nil {
			return nil, sql.ErrInvalidNode.New("Aggregate", fmt.Sprintf("call %s has no name or type", c))
		}

		for _, a := range c.Args {
			if !inRange(a) {
				return nil, sql.ErrInvalidNode.New("Aggregate", fmt.Sprintf("argument $%d of %s out of range of %s", a, c, schema))
			}
		}
	}

	return &Aggregate{
		UnaryNode: UnaryNode{child},
		Group:     group,
		Calls:     calls,
	}, nil
}

// Schema implements the Node interface.
func (a *Aggregate) Schema() sql.Schema {
	child := a.Child.Schema()
	s := make(sql.Schema, 0, len(a.Group)+len(a.Calls))
	for _, g := range a.Group {
		c := *child[g]
		s = append(s, &c)
	}

	for _, c := range a.Calls {
		s = append(s, &sql.Column{
			Name:     c.Name,
			Type:     c.Type,
			Nullable: c.Nullable,
		})
	}
	return s
}

func (a *Aggregate) header() string {
	parts := []string{fmt.Sprintf("group=[%s]", indexSet(a.Group))}
	for _, c := range a.Calls {
		parts = append(parts, fmt.Sprintf("%s=[%s]", c.Name, c))
	}
	return fmt.Sprintf("Aggregate(%s)", strings.Join(parts, ", "))
}

func (a *Aggregate) String() string {
	return printNode(a, a.header(), false)
}

// DebugString implements the Node interface.
func (a *Aggregate) DebugString() string {
	return printNode(a, a.header(), true)
}
