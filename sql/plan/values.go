package plan

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// Values is a relation of constant rows.
type Values struct {
	schema sql.Schema
	Tuples [][]sql.Expression
}

var _ sql.Node = (*Values)(nil)

// NewValues creates a Values node. Tuples must have one literal per column,
// each of them of the column type or NULL.
func NewValues(schema sql.Schema, tuples [][]sql.Expression) (*Values, error) {
	for _, t := range tuples {
		if len(t) != len(schema) {
			return nil, sql.ErrInvalidNode.New("Values", fmt.Sprintf("tuple of %d values for %d columns", len(t), len(schema)))
		}

		for i, e := range t {
			if _, ok := e.(*expression.Literal); !ok {
				return nil, sql.ErrInvalidNode.New("Values", fmt.Sprintf("%s is not a literal", e))
			}

			if !sql.IsNull(e.Type()) && !e.Type().Equals(schema[i].Type) {
				return nil, sql.ErrInvalidNode.New("Values", fmt.Sprintf("%s is not of type %s", e, schema[i].Type))
			}
		}
	}

	return &Values{schema: schema, Tuples: tuples}, nil
}

// NewSingleRow returns a Values node with one row and no columns, the input
// of queries without FROM and of correlated sub-trees.
func NewSingleRow() *Values {
	return &Values{schema: sql.Schema{}, Tuples: [][]sql.Expression{{}}}
}

// Schema implements the Node interface.
func (v *Values) Schema() sql.Schema {
	return v.schema
}

// Children implements the Node interface.
func (*Values) Children() []sql.Node {
	return nil
}

func (v *Values) header() string {
	tuples := make([]string, len(v.Tuples))
	for i, t := range v.Tuples {
		values := make([]string, len(t))
		for j, e := range t {
			values[j] = e.String()
		}
		if len(values) == 0 {
			tuples[i] = "{ }"
			continue
		}
		tuples[i] = fmt.Sprintf("{ %s }", strings.Join(values, ", "))
	}
	return fmt.Sprintf("Values(tuples=[[%s]])", strings.Join(tuples, ", "))
}

func (v *Values) String() string {
	return printNode(v, v.header(), false)
}

// DebugString implements the Node interface.
func (v *Values) DebugString() string {
	return printNode(v, v.header(), true)
}
