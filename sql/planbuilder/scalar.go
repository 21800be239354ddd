package planbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// tableFunctions are the table generating functions, only valid in a
// LATERAL VIEW.
var tableFunctions = map[string]bool{
	"explode":    true,
	"posexplode": true,
	"inline":     true,
	"json_tuple": true,
	"stack":      true,
}

// buildScalar converts an expression over the columns of the scope.
// Children are converted first, then the function of the node is resolved
// with their types.
func (b *Builder) buildScalar(s *scope, e ast.Expr) sql.Expression {
	if s.groupBy != nil {
		return b.buildGroupedScalar(s, e)
	}

	switch e := e.(type) {
	case *ast.Literal:
		return b.buildLiteral(e)
	case *ast.Ident:
		idx, path := s.resolveIdent(e.Parts)
		var res sql.Expression = s.field(idx)
		for _, f := range path {
			res = b.getField(res, f)
		}
		return res
	case *ast.FuncCall:
		if b.isAggregate(e.Name) {
			b.handleErr(sql.ErrInvalidAggregation.New(fmt.Sprintf("aggregate function %s is not allowed here", e)))
		}
		return b.buildCall(s, e)
	default:
		return b.buildOperator(s, e)
	}
}

// buildOperator converts the expressions whose conversion is the same
// inside and outside of aggregations.
func (b *Builder) buildOperator(s *scope, e ast.Expr) sql.Expression {
	switch e := e.(type) {
	case *ast.Literal:
		return b.buildLiteral(e)
	case *ast.FuncCall:
		return b.buildCall(s, e)
	case *ast.Star:
		b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("%s is only allowed in the select list or count(*)", e)))
	case *ast.Cast:
		typ, err := sql.ParseType(e.Type)
		if err != nil {
			b.handleErr(err)
		}
		return b.cast(b.buildScalar(s, e.Expr), typ)
	case *ast.Case:
		return b.buildCase(s, e)
	case *ast.Subscript:
		return b.resolve("item", b.buildScalar(s, e.Expr), b.buildScalar(s, e.Index))
	case *ast.FieldAccess:
		return b.getField(b.buildScalar(s, e.Expr), e.Field)
	case *ast.UnaryExpr:
		return b.resolve(e.Op, b.buildScalar(s, e.Expr))
	case *ast.BinaryExpr:
		return b.resolve(e.Op, b.buildScalar(s, e.Left), b.buildScalar(s, e.Right))
	case *ast.In:
		args := []sql.Expression{b.buildScalar(s, e.Expr)}
		for _, v := range e.List {
			args = append(args, b.buildScalar(s, v))
		}
		return b.negate(b.resolve("in", args...), e.Not)
	case *ast.Between:
		return b.negate(b.resolve("between",
			b.buildScalar(s, e.Expr),
			b.buildScalar(s, e.Low),
			b.buildScalar(s, e.High),
		), e.Not)
	case *ast.IsNull:
		if e.Not {
			return b.resolve("is not null", b.buildScalar(s, e.Expr))
		}
		return b.resolve("is null", b.buildScalar(s, e.Expr))
	}

	b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("expression %s", e)))
	return nil
}

func (b *Builder) negate(e sql.Expression, not bool) sql.Expression {
	if !not {
		return e
	}
	return b.resolve("not", e)
}

func (b *Builder) buildCall(s *scope, e *ast.FuncCall) sql.Expression {
	name := strings.ToLower(e.Name)
	if tableFunctions[name] {
		b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("%s outside of LATERAL VIEW", e)))
	}

	if e.Distinct {
		b.handleErr(sql.ErrInvalidAggregation.New(fmt.Sprintf("DISTINCT is only allowed in aggregate functions: %s", e)))
	}

	args := make([]sql.Expression, len(e.Args))
	for i, a := range e.Args {
		args[i] = b.buildScalar(s, a)
	}
	return b.resolve(e.Name, args...)
}

// buildCase converts both forms of CASE into a searched case whose
// arguments are cond, value, ..., [else]. The simple form compares the
// operand with every WHEN value.
func (b *Builder) buildCase(s *scope, e *ast.Case) sql.Expression {
	var operand sql.Expression
	if e.Operand != nil {
		operand = b.buildScalar(s, e.Operand)
	}

	var args []sql.Expression
	for _, w := range e.Whens {
		cond := b.buildScalar(s, w.Cond)
		if operand != nil {
			cond = b.resolve("=", operand, cond)
		}
		args = append(args, cond, b.buildScalar(s, w.Result))
	}

	if e.Else != nil {
		args = append(args, b.buildScalar(s, e.Else))
	}
	return b.resolve("case", args...)
}

// resolve resolves the function with the given arguments in the current
// database and builds the call.
func (b *Builder) resolve(name string, args ...sql.Expression) sql.Expression {
	res, err := b.registry.Resolve(b.ctx, b.database, name, args)
	if err != nil {
		b.handleErr(err)
	}

	call := res.Call(args...)
	if res.Placeholder {
		b.log.WithField("expression", call.String()).
			Warnf("no type can be inferred for %s, using %s", name, res.Type)
	}
	return call
}

func (b *Builder) cast(e sql.Expression, to sql.Type) sql.Expression {
	res, err := b.registry.Cast(e, to)
	if err != nil {
		b.handleErr(err)
	}
	return res
}

func (b *Builder) getField(e sql.Expression, field string) sql.Expression {
	res, err := b.registry.GetField(e, field)
	if err != nil {
		b.handleErr(err)
	}
	return res
}

func (b *Builder) isAggregate(name string) bool {
	fn, ok := b.registry.Builtin(name)
	return ok && fn.Kind == sql.AggregateFunction
}

// buildLiteral types a literal the way Hive does: integers are INTEGER
// unless they do not fit or have a suffix, numbers with a decimal point
// are DOUBLE and the BD suffix makes them DECIMAL.
func (b *Builder) buildLiteral(l *ast.Literal) sql.Expression {
	switch l.Kind {
	case ast.NullLiteral:
		return expression.NewNull()
	case ast.BoolLiteral:
		return expression.NewLiteral(strings.EqualFold(l.Value, "true"), sql.Boolean)
	case ast.StringLiteral:
		return expression.NewLiteral(l.Value, sql.Varchar)
	case ast.FloatLiteral:
		f, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			b.handleErr(sql.ErrInvalidType.New(fmt.Sprintf("invalid number %s", l.Value)))
		}
		return expression.NewLiteral(f, sql.Double)
	case ast.DecimalLiteral:
		return b.decimalLiteral(l.Value[:len(l.Value)-2])
	case ast.IntLiteral:
		return b.intLiteral(l.Value)
	}

	b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("literal %s", l)))
	return nil
}

var intSuffixes = map[byte]sql.Type{
	'Y': sql.TinyInt,
	'S': sql.SmallInt,
	'L': sql.BigInt,
}

func (b *Builder) intLiteral(text string) sql.Expression {
	if typ, ok := intSuffixes[strings.ToUpper(text[len(text)-1:])[0]]; ok {
		v, err := typ.Convert(text[:len(text)-1])
		if err != nil {
			b.handleErr(err)
		}
		return expression.NewLiteral(v, typ)
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return b.decimalLiteral(text)
	}

	if int64(int32(n)) == n {
		return expression.NewLiteral(int32(n), sql.Integer)
	}
	return expression.NewLiteral(n, sql.BigInt)
}

func (b *Builder) decimalLiteral(text string) sql.Expression {
	digits := strings.TrimLeft(text, "-+")
	var scale int
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		scale = len(digits) - i - 1
		digits = digits[:i] + digits[i+1:]
	}

	typ := sql.DecimalType{Precision: max(len(strings.TrimLeft(digits, "0")), scale, 1), Scale: scale}
	if typ.Precision > 38 {
		b.handleErr(sql.ErrInvalidType.New(fmt.Sprintf("decimal literal %s is too large", text)))
	}

	v, err := typ.Convert(text)
	if err != nil {
		b.handleErr(err)
	}
	return expression.NewLiteral(v, typ)
}

// typedNull is a NULL literal of the given type.
func typedNull(t sql.Type) sql.Expression {
	return expression.NewLiteral(nil, t)
}
