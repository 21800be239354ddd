package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
)

func id(parts ...string) *ast.Ident {
	return &ast.Ident{Parts: parts}
}

func intLit(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.IntLiteral, Value: v}
}

func strLit(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.StringLiteral, Value: v}
}

func call(name string, args ...ast.Expr) *ast.FuncCall {
	return &ast.FuncCall{Name: name, Args: args}
}

func items(exprs ...ast.Expr) []*ast.SelectItem {
	res := make([]*ast.SelectItem, len(exprs))
	for i, e := range exprs {
		res[i] = &ast.SelectItem{Expr: e}
	}
	return res
}

var fixtures = map[string]ast.Statement{
	`SELECT * from foo`: &ast.Select{
		Items: items(new(ast.Star)),
		From:  &ast.Table{Name: "foo"},
	},
	`SELECT if( a > 10, null, 15) FROM foo;`: &ast.Select{
		Items: items(call("if",
			&ast.BinaryExpr{Op: ">", Left: id("a"), Right: intLit("10")},
			&ast.Literal{Kind: ast.NullLiteral, Value: "NULL"},
			intLit("15"),
		)),
		From: &ast.Table{Name: "foo"},
	},
	`select regexp_extract(b, 'a(.*)$', 1) FROM foo`: &ast.Select{
		Items: items(call("regexp_extract", id("b"), strLit("a(.*)$"), intLit("1"))),
		From:  &ast.Table{Name: "foo"},
	},
	`SELECT b AS bcol, sum(c) AS sum_c FROM foo GROUP BY b`: &ast.Select{
		Items: []*ast.SelectItem{
			{Expr: id("b"), Alias: "bcol"},
			{Expr: call("sum", id("c")), Alias: "sum_c"},
		},
		From:    &ast.Table{Name: "foo"},
		GroupBy: []ast.Expr{id("b")},
	},
	`SELECT a, ccol from complex lateral view explode(complex.c) t as ccol`: &ast.Select{
		Items: items(id("a"), id("ccol")),
		From: &ast.LateralView{
			Source:  &ast.Table{Name: "complex"},
			Func:    call("explode", id("complex", "c")),
			Alias:   "t",
			Columns: []string{"ccol"},
		},
	},
	`SELECT a, ccol, r.anotherCCol from complex
		lateral view outer explode(complex.c) t as ccol
		lateral view explode(complex.c) r as anotherCCol`: &ast.Select{
		Items: items(id("a"), id("ccol"), id("r", "anotherCCol")),
		From: &ast.LateralView{
			Source: &ast.LateralView{
				Source:  &ast.Table{Name: "complex"},
				Outer:   true,
				Func:    call("explode", id("complex", "c")),
				Alias:   "t",
				Columns: []string{"ccol"},
			},
			Func:    call("explode", id("complex", "c")),
			Alias:   "r",
			Columns: []string{"anotherCCol"},
		},
	},
	`SELECT named_struct('abc', cast(NULL as int), 'def', 150)`: &ast.Select{
		Items: items(call("named_struct",
			strLit("abc"),
			&ast.Cast{Expr: &ast.Literal{Kind: ast.NullLiteral, Value: "NULL"}, Type: "int"},
			strLit("def"),
			intLit("150"),
		)),
	},
	`SELECT struct(10, 15, 20.23), 10L, 1.5BD, -3`: &ast.Select{
		Items: items(
			call("struct", intLit("10"), intLit("15"), &ast.Literal{Kind: ast.FloatLiteral, Value: "20.23"}),
			intLit("10L"),
			&ast.Literal{Kind: ast.DecimalLiteral, Value: "1.5BD"},
			intLit("-3"),
		),
	},
	`SELECT cast(c AS array<struct<a:int, b:decimal(10,2)>>) FROM t`: &ast.Select{
		Items: items(&ast.Cast{Expr: id("c"), Type: "array<struct<a:int,b:decimal(10,2)>>"}),
		From:  &ast.Table{Name: "t"},
	},
	"SELECT t.`select`, d.name, c[0], e['k'].x FROM default.complex t": &ast.Select{
		Items: items(
			id("t", "select"),
			id("d", "name"),
			&ast.Subscript{Expr: id("c"), Index: intLit("0")},
			&ast.FieldAccess{Expr: &ast.Subscript{Expr: id("e"), Index: strLit("k")}, Field: "x"},
		),
		From: &ast.Table{Database: "default", Name: "complex", Alias: "t"},
	},
	`SELECT DISTINCT a FROM foo f JOIN bar ON f.a = bar.x LEFT OUTER JOIN baz b ON a <> b.z, qux`: &ast.Select{
		Distinct: true,
		Items:    items(id("a")),
		From: &ast.Join{
			Left: &ast.Join{
				Left: &ast.Join{
					Left:  &ast.Table{Name: "foo", Alias: "f"},
					Right: &ast.Table{Name: "bar"},
					Kind:  ast.InnerJoin,
					On:    &ast.BinaryExpr{Op: "=", Left: id("f", "a"), Right: id("bar", "x")},
				},
				Right: &ast.Table{Name: "baz", Alias: "b"},
				Kind:  ast.LeftJoin,
				On:    &ast.BinaryExpr{Op: "<>", Left: id("a"), Right: id("b", "z")},
			},
			Right: &ast.Table{Name: "qux"},
			Kind:  ast.CrossJoin,
		},
	},
	`SELECT x FROM (SELECT a AS x FROM foo) sub WHERE x NOT IN (1, 2) AND x BETWEEN 0 AND 10 OR x IS NOT NULL`: &ast.Select{
		Items: items(id("x")),
		From: &ast.Subquery{
			Select: &ast.Select{
				Items: []*ast.SelectItem{{Expr: id("a"), Alias: "x"}},
				From:  &ast.Table{Name: "foo"},
			},
			Alias: "sub",
		},
		Where: &ast.BinaryExpr{
			Op: "or",
			Left: &ast.BinaryExpr{
				Op:    "and",
				Left:  &ast.In{Expr: id("x"), List: []ast.Expr{intLit("1"), intLit("2")}, Not: true},
				Right: &ast.Between{Expr: id("x"), Low: intLit("0"), High: intLit("10")},
			},
			Right: &ast.IsNull{Expr: id("x"), Not: true},
		},
	},
	`SELECT a + b * 2 - 1, count(*), count(DISTINCT a) FROM foo WHERE b NOT LIKE 'x%' -- trailing
		GROUP BY a HAVING count(*) > 1 ORDER BY a DESC NULLS LAST, 2 LIMIT 10`: &ast.Select{
		Items: items(
			&ast.BinaryExpr{
				Op: "-",
				Left: &ast.BinaryExpr{
					Op:    "+",
					Left:  id("a"),
					Right: &ast.BinaryExpr{Op: "*", Left: id("b"), Right: intLit("2")},
				},
				Right: intLit("1"),
			},
			call("count", new(ast.Star)),
			&ast.FuncCall{Name: "count", Args: []ast.Expr{id("a")}, Distinct: true},
		),
		From: &ast.Table{Name: "foo"},
		Where: &ast.UnaryExpr{
			Op:   "not",
			Expr: &ast.BinaryExpr{Op: "like", Left: id("b"), Right: strLit("x%")},
		},
		GroupBy: []ast.Expr{id("a")},
		Having:  &ast.BinaryExpr{Op: ">", Left: call("count", new(ast.Star)), Right: intLit("1")},
		OrderBy: []*ast.OrderItem{
			{Expr: id("a"), Descending: true, NullsFirst: new(bool)},
			{Expr: intLit("2")},
		},
		Limit: int64Ptr(10),
	},
	`SELECT CASE a WHEN 1 THEN 'one' ELSE /* other */ "many" END, date '2018-01-01', t.* FROM foo t`: &ast.Select{
		Items: items(
			&ast.Case{
				Operand: id("a"),
				Whens:   []*ast.When{{Cond: intLit("1"), Result: strLit("one")}},
				Else:    strLit("many"),
			},
			&ast.Cast{Expr: strLit("2018-01-01"), Type: "date"},
			&ast.Star{Qualifier: "t"},
		),
		From: &ast.Table{Name: "foo", Alias: "t"},
	},
}

func int64Ptr(n int64) *int64 {
	return &n
}

func TestParse(t *testing.T) {
	for query, expected := range fixtures {
		t.Run(query, func(t *testing.T) {
			require := require.New(t)
			stmt, err := Parse(context.Background(), query)
			require.NoError(err)
			require.Equal(expected, stmt)
		})
	}
}

func TestParseErrors(t *testing.T) {
	queries := []string{
		``,
		`;`,
		`SELECT`,
		`SELECT a FROM`,
		`SELECT a FROM foo WHERE`,
		`SELECT 'abc FROM foo`,
		`SELECT a FROM foo LEFT JOIN bar`,
		`SELECT a FROM foo LEFT SEMI JOIN bar ON a = x`,
		`SELECT a FROM (SELECT a FROM foo)`,
		`SELECT a FROM foo LATERAL VIEW explode t AS c`,
		`SELECT (SELECT 1) FROM foo`,
		`SELECT a <=> b FROM foo`,
		`SELECT a FROM foo UNION SELECT b FROM bar`,
		`SELECT cast(a AS ) FROM foo`,
		`SELECT a FROM foo LIMIT x`,
		`SELECT a # b FROM foo`,
		`SELECT a FROM foo /* unterminated`,
		`INSERT INTO foo VALUES (1)`,
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := Parse(context.Background(), q)
			require.Error(t, err)
			require.True(t, ErrParse.Is(err), "unexpected error: %s", err)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(context.Background(), "SELECT a FROM foo WHERE a >")
	require.Error(t, err)
	require.Equal(t, `syntax error at position 27 near "end of query": unexpected end of query`, err.Error())
}

func TestLexNumbers(t *testing.T) {
	require := require.New(t)
	tokens, err := lex("1 2.5 .5 1e3 10L 3Y 4S 1.0BD t.c 1.x")
	require.NoError(err)

	var texts []string
	for _, tk := range tokens {
		if tk.kind != eofToken {
			texts = append(texts, tk.text)
		}
	}
	require.Equal(
		[]string{"1", "2.5", ".5", "1e3", "10L", "3Y", "4S", "1.0BD", "t", ".", "c", "1.", "x"},
		texts,
	)
}
