package plan

import (
	"fmt"
	"sort"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// Correlate joins every row of its left child with the rows its right
// child produces for it. The right child sees the left row through
// correlated fields carrying the Correlation id.
type Correlate struct {
	BinaryNode
	Correlation sql.CorrelationID
	// Required are the fields of the left row used by the right child.
	Required []int
	Kind     JoinKind
}

var _ sql.Node = (*Correlate)(nil)

// NewCorrelate creates a correlate node. Every field of the correlation
// referenced in the right child must exist in the left child with the same
// type and be part of the required columns.
func NewCorrelate(
	left, right sql.Node,
	correlation sql.CorrelationID,
	required []int,
	kind JoinKind,
) (*Correlate, error) {
	if kind != InnerJoin && kind != LeftJoin {
		return nil, sql.ErrInvalidNode.New("Correlate", fmt.Sprintf("unsupported join type %s", kind))
	}

	schema := left.Schema()
	req := make(map[int]bool, len(required))
	for _, r := range required {
		if r < 0 || r >= len(schema) {
			return nil, sql.ErrInvalidNode.New("Correlate", fmt.Sprintf("required column %d out of range of %s", r, schema))
		}
		req[r] = true
	}

	var err error
	InspectExpressions(right, func(e sql.Expression) bool {
		cf, ok := e.(*expression.CorrelatedField)
		if !ok || cf.Correlation() != correlation {
			return err == nil
		}

		idx := cf.Index()
		switch {
		case idx < 0 || idx >= len(schema):
			err = sql.ErrInvalidNode.New("Correlate", fmt.Sprintf("%s out of range of %s", cf, schema))
		case !cf.Type().Equals(schema[idx].Type):
			err = sql.ErrInvalidNode.New("Correlate", fmt.Sprintf("%s has type %s but column is %s", cf, cf.Type(), schema[idx].Type))
		case !req[idx]:
			err = sql.ErrInvalidNode.New("Correlate", fmt.Sprintf("%s is not a required column", cf))
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	sorted := append([]int(nil), required...)
	sort.Ints(sorted)

	return &Correlate{
		BinaryNode:  BinaryNode{left, right},
		Correlation: correlation,
		Required:    sorted,
		Kind:        kind,
	}, nil
}

// Schema implements the Node interface.
func (c *Correlate) Schema() sql.Schema {
	return concatSchemas(c.left.Schema(), c.right.Schema(), false, c.Kind == LeftJoin)
}

func (c *Correlate) header() string {
	return fmt.Sprintf(
		"Correlate(correlation=[%s], joinType=[%s], requiredColumns=[%s])",
		c.Correlation, c.Kind, indexSet(c.Required),
	)
}

func (c *Correlate) String() string {
	return printNode(c, c.header(), false)
}

// DebugString implements the Node interface.
func (c *Correlate) DebugString() string {
	return printNode(c, c.header(), true)
}
