package plan

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// IsUnary returns whether the node is unary or not.
func IsUnary(node sql.Node) bool {
	return len(node.Children()) == 1
}

// IsBinary returns whether the node is binary or not.
func IsBinary(node sql.Node) bool {
	return len(node.Children()) == 2
}

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	Child sql.Node
}

// Schema implements the Node interface.
func (n *UnaryNode) Schema() sql.Schema {
	return n.Child.Schema()
}

// Children implements the Node interface.
func (n UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	left  sql.Node
	right sql.Node
}

// Left returns the left child of the node.
func (n BinaryNode) Left() sql.Node {
	return n.left
}

// Right returns the right child of the node.
func (n BinaryNode) Right() sql.Node {
	return n.right
}

// Children implements the Node interface.
func (n BinaryNode) Children() []sql.Node {
	return []sql.Node{n.left, n.right}
}

// printNode renders a node and its children with a tree printer. In debug
// mode every node is followed by its row type.
func printNode(node sql.Node, header string, debug bool) string {
	p := sql.NewTreePrinter()
	if debug {
		header = fmt.Sprintf("%s %s", header, node.Schema())
	}
	_ = p.WriteNode("%s", header)

	children := node.Children()
	if len(children) > 0 {
		res := make([]string, len(children))
		for i, c := range children {
			if debug {
				res[i] = c.DebugString()
			} else {
				res[i] = c.String()
			}
		}
		_ = p.WriteChildren(res...)
	}
	return p.String()
}

// namedExpressions formats name=[expr] pairs.
func namedExpressions(names []string, exprs []sql.Expression) string {
	res := make([]string, len(exprs))
	for i, e := range exprs {
		res[i] = fmt.Sprintf("%s=[%s]", names[i], e)
	}
	return strings.Join(res, ", ")
}

// indexSet formats a set of field indexes as {0, 1}.
func indexSet(idx []int) string {
	res := make([]string, len(idx))
	for i, n := range idx {
		res[i] = fmt.Sprint(n)
	}
	return "{" + strings.Join(res, ", ") + "}"
}

// checkFields makes sure every field referenced by the expressions exists in
// the schema with the same type.
func checkFields(node string, schema sql.Schema, exprs ...sql.Expression) error {
	var err error
	for _, e := range exprs {
		expression.Inspect(e, func(e sql.Expression) bool {
			gf, ok := e.(*expression.GetField)
			if !ok || err != nil {
				return err == nil
			}

			idx := gf.Index()
			if idx < 0 || idx >= len(schema) {
				err = sql.ErrInvalidNode.New(node, fmt.Sprintf("field %s out of range of %s", gf, schema))
				return false
			}

			if !gf.Type().Equals(schema[idx].Type) {
				err = sql.ErrInvalidNode.New(node, fmt.Sprintf(
					"field %s has type %s but input column %s is %s",
					gf, gf.Type(), schema[idx].Name, schema[idx].Type,
				))
				return false
			}
			return true
		})

		if err != nil {
			return err
		}
	}
	return nil
}

// checkCondition makes sure the expression is a valid predicate over the
// schema.
func checkCondition(node string, schema sql.Schema, cond sql.Expression) error {
	if cond == nil {
		return sql.ErrInvalidNode.New(node, "missing condition")
	}

	if t := cond.Type(); !sql.IsBoolean(t) && !sql.IsNull(t) {
		return sql.ErrInvalidNode.New(node, fmt.Sprintf("condition %s is %s, not BOOLEAN", cond, t))
	}
	return checkFields(node, schema, cond)
}

func concatSchemas(left, right sql.Schema, leftNullable, rightNullable bool) sql.Schema {
	res := make(sql.Schema, 0, len(left)+len(right))
	for _, c := range left {
		nc := *c
		nc.Nullable = nc.Nullable || leftNullable
		res = append(res, &nc)
	}

	for _, c := range right {
		nc := *c
		nc.Nullable = nc.Nullable || rightNullable
		res = append(res, &nc)
	}
	return res
}
