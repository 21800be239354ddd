package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectString(t *testing.T) {
	limit := int64(5)
	s := &Select{
		Items: []*SelectItem{
			{Expr: &Ident{Parts: []string{"a"}}},
			{Expr: &FuncCall{Name: "sum", Args: []Expr{&Ident{Parts: []string{"t", "c"}}}}, Alias: "s"},
		},
		From: &LateralView{
			Source:  &Table{Database: "default", Name: "complex", Alias: "t"},
			Outer:   true,
			Func:    &FuncCall{Name: "explode", Args: []Expr{&Ident{Parts: []string{"t", "c"}}}},
			Alias:   "x",
			Columns: []string{"ccol"},
		},
		Where:   &BinaryExpr{Op: ">", Left: &Ident{Parts: []string{"a"}}, Right: &Literal{Kind: IntLiteral, Value: "10"}},
		GroupBy: []Expr{&Ident{Parts: []string{"a"}}},
		OrderBy: []*OrderItem{{Expr: &Ident{Parts: []string{"s"}}, Descending: true}},
		Limit:   &limit,
	}

	require.Equal(t,
		"SELECT a, sum(t.c) AS s FROM default.complex t LATERAL VIEW OUTER explode(t.c) x AS ccol "+
			"WHERE (a > 10) GROUP BY a ORDER BY s DESC LIMIT 5",
		s.String(),
	)
}

func TestInspect(t *testing.T) {
	e := &Case{
		Whens: []*When{{
			Cond:   &IsNull{Expr: &Ident{Parts: []string{"a"}}},
			Result: &Literal{Kind: StringLiteral, Value: "it's"},
		}},
		Else: &FuncCall{Name: "upper", Args: []Expr{&Ident{Parts: []string{"b"}}}},
	}

	var idents []string
	Inspect(e, func(e Expr) bool {
		if id, ok := e.(*Ident); ok {
			idents = append(idents, id.String())
		}
		return true
	})
	require.Equal(t, []string{"a", "b"}, idents)

	var calls int
	Inspect(e, func(e Expr) bool {
		if _, ok := e.(*FuncCall); ok {
			calls++
			return false
		}
		return true
	})
	require.Equal(t, 1, calls)
	require.Equal(t, "CASE WHEN a IS NULL THEN 'it\\'s' ELSE upper(b) END", e.String())
}
