// Package ast defines the syntax tree of the Hive SELECT statements the
// converter understands. Nodes carry no type information; names are kept
// exactly as written and resolved later against the catalog.
package ast

import (
	"fmt"
	"strings"
)

// Statement is a parsed top level statement.
type Statement interface {
	fmt.Stringer
	statement()
}

// Expr is a scalar expression.
type Expr interface {
	fmt.Stringer
	expr()
}

// TableExpr is a relation in a FROM clause.
type TableExpr interface {
	fmt.Stringer
	tableExpr()
}

// Select is a SELECT query.
type Select struct {
	Distinct bool
	Items    []*SelectItem
	// From is nil for queries without FROM clause.
	From    TableExpr
	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []*OrderItem
	// Limit is nil when there is no LIMIT clause.
	Limit *int64
}

func (*Select) statement() {}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}

	items := make([]string, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.String()
	}
	b.WriteString(strings.Join(items, ", "))

	if s.From != nil {
		fmt.Fprintf(&b, " FROM %s", s.From)
	}

	if s.Where != nil {
		fmt.Fprintf(&b, " WHERE %s", s.Where)
	}

	if len(s.GroupBy) > 0 {
		fmt.Fprintf(&b, " GROUP BY %s", exprList(s.GroupBy))
	}

	if s.Having != nil {
		fmt.Fprintf(&b, " HAVING %s", s.Having)
	}

	if len(s.OrderBy) > 0 {
		order := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			order[i] = o.String()
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(order, ", "))
	}

	if s.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *s.Limit)
	}
	return b.String()
}

// SelectItem is an element of the select list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

func (s *SelectItem) String() string {
	if s.Alias != "" {
		return fmt.Sprintf("%s AS %s", s.Expr, s.Alias)
	}
	return s.Expr.String()
}

// OrderItem is an element of an ORDER BY clause.
type OrderItem struct {
	Expr       Expr
	Descending bool
	// NullsFirst is nil when the null ordering is not given.
	NullsFirst *bool
}

func (o *OrderItem) String() string {
	var b strings.Builder
	b.WriteString(o.Expr.String())
	if o.Descending {
		b.WriteString(" DESC")
	}

	if o.NullsFirst != nil {
		if *o.NullsFirst {
			b.WriteString(" NULLS FIRST")
		} else {
			b.WriteString(" NULLS LAST")
		}
	}
	return b.String()
}

// Table is a reference to a table or a view of the catalog.
type Table struct {
	// Database is empty when the name is not qualified.
	Database string
	Name     string
	Alias    string
}

func (*Table) tableExpr() {}

// RefName returns the name the table is referenced by in the query.
func (t *Table) RefName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

func (t *Table) String() string {
	name := t.Name
	if t.Database != "" {
		name = t.Database + "." + name
	}

	if t.Alias != "" {
		return name + " " + t.Alias
	}
	return name
}

// Subquery is a derived table.
type Subquery struct {
	Select *Select
	Alias  string
}

func (*Subquery) tableExpr() {}

func (s *Subquery) String() string {
	return fmt.Sprintf("(%s) %s", s.Select, s.Alias)
}

// JoinKind is the kind of a join.
type JoinKind byte

const (
	// InnerJoin keeps the pairs of rows matching the condition.
	InnerJoin JoinKind = iota
	// LeftJoin also keeps left rows without match.
	LeftJoin
	// RightJoin also keeps right rows without match.
	RightJoin
	// FullJoin also keeps rows without match of both sides.
	FullJoin
	// CrossJoin keeps all the pairs of rows.
	CrossJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return fmt.Sprintf("JoinKind(%d)", byte(k))
	}
}

// Join joins two relations. Comma separated relations are cross joins.
type Join struct {
	Left  TableExpr
	Right TableExpr
	Kind  JoinKind
	// On is nil for cross joins.
	On Expr
}

func (*Join) tableExpr() {}

func (j *Join) String() string {
	if j.On == nil {
		return fmt.Sprintf("%s %s %s", j.Left, j.Kind, j.Right)
	}
	return fmt.Sprintf("%s %s %s ON %s", j.Left, j.Kind, j.Right, j.On)
}

// LateralView applies a table generating function to every row of Source:
// LATERAL VIEW [OUTER] func(args) alias AS col, ...
type LateralView struct {
	Source TableExpr
	Outer  bool
	Func   *FuncCall
	// Alias is the name of the generated relation.
	Alias   string
	Columns []string
}

func (*LateralView) tableExpr() {}

func (l *LateralView) String() string {
	var outer string
	if l.Outer {
		outer = "OUTER "
	}
	return fmt.Sprintf(
		"%s LATERAL VIEW %s%s %s AS %s",
		l.Source, outer, l.Func, l.Alias, strings.Join(l.Columns, ", "),
	)
}

// LiteralKind is the kind of a literal value.
type LiteralKind byte

const (
	// NullLiteral is NULL.
	NullLiteral LiteralKind = iota
	// BoolLiteral is TRUE or FALSE.
	BoolLiteral
	// IntLiteral is an integral number, with an optional Y, S or L suffix.
	IntLiteral
	// FloatLiteral is a number with a decimal point or an exponent.
	FloatLiteral
	// DecimalLiteral is a number with the BD suffix.
	DecimalLiteral
	// StringLiteral is a quoted string.
	StringLiteral
)

// Literal is a constant value, kept in its source form. String literals
// hold the unquoted value.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (*Literal) expr() {}

func (l *Literal) String() string {
	if l.Kind == StringLiteral {
		return "'" + strings.ReplaceAll(l.Value, "'", "\\'") + "'"
	}
	return l.Value
}

// Ident is a possibly qualified name: a column, a table qualified column
// or a struct field path starting at a column.
type Ident struct {
	Parts []string
}

func (*Ident) expr() {}

func (i *Ident) String() string {
	return strings.Join(i.Parts, ".")
}

// Star is * or qualifier.* in a select list or count(*).
type Star struct {
	Qualifier string
}

func (*Star) expr() {}

func (s *Star) String() string {
	if s.Qualifier != "" {
		return s.Qualifier + ".*"
	}
	return "*"
}

// FuncCall is a call to a function by name.
type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
}

func (*FuncCall) expr() {}

func (f *FuncCall) String() string {
	var distinct string
	if f.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", f.Name, distinct, exprList(f.Args))
}

// Cast is CAST(expr AS type). Type is the Hive type string.
type Cast struct {
	Expr Expr
	Type string
}

func (*Cast) expr() {}

func (c *Cast) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", c.Expr, c.Type)
}

// When is a branch of a CASE expression.
type When struct {
	Cond   Expr
	Result Expr
}

// Case is a CASE expression. Operand is nil for searched CASE.
type Case struct {
	Operand Expr
	Whens   []*When
	Else    Expr
}

func (*Case) expr() {}

func (c *Case) String() string {
	var b strings.Builder
	b.WriteString("CASE")
	if c.Operand != nil {
		fmt.Fprintf(&b, " %s", c.Operand)
	}

	for _, w := range c.Whens {
		fmt.Fprintf(&b, " WHEN %s THEN %s", w.Cond, w.Result)
	}

	if c.Else != nil {
		fmt.Fprintf(&b, " ELSE %s", c.Else)
	}
	b.WriteString(" END")
	return b.String()
}

// Subscript is expr[index], on arrays and maps.
type Subscript struct {
	Expr  Expr
	Index Expr
}

func (*Subscript) expr() {}

func (s *Subscript) String() string {
	return fmt.Sprintf("%s[%s]", s.Expr, s.Index)
}

// FieldAccess is expr.field on an expression that is not a plain name.
type FieldAccess struct {
	Expr  Expr
	Field string
}

func (*FieldAccess) expr() {}

func (f *FieldAccess) String() string {
	return fmt.Sprintf("(%s).%s", f.Expr, f.Field)
}

// UnaryExpr is a prefix operator: -, + or NOT.
type UnaryExpr struct {
	Op   string
	Expr Expr
}

func (*UnaryExpr) expr() {}

func (u *UnaryExpr) String() string {
	if u.Op == "not" {
		return fmt.Sprintf("NOT %s", u.Expr)
	}
	return u.Op + u.Expr.String()
}

// BinaryExpr is an infix operator. Op is lower case: +, =, and, like...
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) expr() {}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, strings.ToUpper(b.Op), b.Right)
}

// In is expr [NOT] IN (list).
type In struct {
	Expr Expr
	List []Expr
	Not  bool
}

func (*In) expr() {}

func (i *In) String() string {
	var not string
	if i.Not {
		not = "NOT "
	}
	return fmt.Sprintf("%s %sIN (%s)", i.Expr, not, exprList(i.List))
}

// Between is expr [NOT] BETWEEN low AND high.
type Between struct {
	Expr Expr
	Low  Expr
	High Expr
	Not  bool
}

func (*Between) expr() {}

func (b *Between) String() string {
	var not string
	if b.Not {
		not = "NOT "
	}
	return fmt.Sprintf("%s %sBETWEEN %s AND %s", b.Expr, not, b.Low, b.High)
}

// IsNull is expr IS [NOT] NULL.
type IsNull struct {
	Expr Expr
	Not  bool
}

func (*IsNull) expr() {}

func (i *IsNull) String() string {
	if i.Not {
		return fmt.Sprintf("%s IS NOT NULL", i.Expr)
	}
	return fmt.Sprintf("%s IS NULL", i.Expr)
}

func exprList(exprs []Expr) string {
	res := make([]string, len(exprs))
	for i, e := range exprs {
		res[i] = e.String()
	}
	return strings.Join(res, ", ")
}
