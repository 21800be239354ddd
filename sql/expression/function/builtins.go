package function

import (
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

func sig(ret sql.ReturnTypeRule, nulls sql.NullPolicy, ps ...sql.ParamType) sql.Signature {
	return sql.Signature{Params: ps, Return: ret, Nulls: nulls}
}

// variadic builds a signature whose last parameter can be repeated. The
// call needs at least len(ps)-1 arguments.
func variadic(ret sql.ReturnTypeRule, nulls sql.NullPolicy, ps ...sql.ParamType) sql.Signature {
	return sql.Signature{Params: ps, Variadic: true, Return: ret, Nulls: nulls}
}

func builtin(name, display string, sigs ...sql.Signature) *sql.Function {
	return &sql.Function{
		Name:       name,
		Display:    display,
		Kind:       sql.BuiltinFunction,
		Signatures: sigs,
	}
}

func aggregate(name string, sigs ...sql.Signature) *sql.Function {
	fn := builtin(name, "", sigs...)
	fn.Kind = sql.AggregateFunction
	fn.Display = strings.ToUpper(name)
	return fn
}

var (
	boolean = Fixed(sql.Boolean)
	varchar = Fixed(sql.Varchar)
	integer = Fixed(sql.Integer)
)

// Cast is the function used by CAST expressions. It is not looked up by
// name; use Registry.Cast instead.
var Cast = &sql.Function{
	Name:    "cast",
	Display: "CAST",
	Kind:    sql.BuiltinFunction,
	Syntax:  sql.CastSyntax,
}

// Field is the struct field access operator, printed as expr.field.
var Field = &sql.Function{
	Name:   "field",
	Kind:   sql.BuiltinFunction,
	Syntax: sql.FieldSyntax,
	Signatures: []sql.Signature{
		sig(fieldRule, sql.AlwaysNullable, AnyStruct, Text),
	},
}

// Item is the subscript operator over arrays and maps, x[i].
var Item = builtin("item", "ITEM",
	sig(itemRule, sql.AlwaysNullable, Collection, Any),
)

// Defaults is the list of built-in functions known to every registry.
var Defaults = []*sql.Function{
	// arithmetic
	builtin("+", "+", sig(numericCommon, sql.NullableIfAnyArg, Numeric, Numeric)),
	builtin("-", "-",
		sig(numericCommon, sql.NullableIfAnyArg, Numeric, Numeric),
		sig(numericCommon, sql.NullableIfAnyArg, Numeric),
	),
	builtin("*", "*", sig(numericCommon, sql.NullableIfAnyArg, Numeric, Numeric)),
	builtin("/", "/", sig(divideRule, sql.AlwaysNullable, Numeric, Numeric)),
	builtin("%", "%", sig(numericCommon, sql.AlwaysNullable, Numeric, Numeric)),
	builtin("div", "DIV", sig(Fixed(sql.BigInt), sql.AlwaysNullable, Integral, Integral)),

	// comparison
	builtin("=", "=", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin("<>", "<>", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin("<", "<", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin("<=", "<=", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin(">", ">", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin(">=", ">=", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive)),
	builtin("in", "IN", variadic(comparable, sql.NullableIfAnyArg, Primitive, Primitive, Primitive)),
	builtin("between", "BETWEEN", sig(comparable, sql.NullableIfAnyArg, Primitive, Primitive, Primitive)),

	// logic
	builtin("and", "AND", variadic(boolean, sql.NullableIfAnyArg, Bool, Bool, Bool)),
	builtin("or", "OR", variadic(boolean, sql.NullableIfAnyArg, Bool, Bool, Bool)),
	builtin("not", "NOT", sig(boolean, sql.NullableIfAnyArg, Bool)),
	builtin("is null", "IS NULL", sig(boolean, sql.NeverNull, Any)),
	builtin("is not null", "IS NOT NULL", sig(boolean, sql.NeverNull, Any)),
	builtin("like", "LIKE", sig(boolean, sql.NullableIfAnyArg, Text, Text)),
	builtin("rlike", "RLIKE", sig(boolean, sql.NullableIfAnyArg, Text, Text)),

	// strings
	builtin("concat", "concat", variadic(varchar, sql.NullableIfAnyArg, Text, Text)),
	builtin("lower", "lower", sig(varchar, sql.NullableIfAnyArg, Text)),
	builtin("upper", "upper", sig(varchar, sql.NullableIfAnyArg, Text)),
	builtin("trim", "trim", sig(varchar, sql.NullableIfAnyArg, Text)),
	builtin("ltrim", "ltrim", sig(varchar, sql.NullableIfAnyArg, Text)),
	builtin("rtrim", "rtrim", sig(varchar, sql.NullableIfAnyArg, Text)),
	builtin("length", "length", sig(integer, sql.NullableIfAnyArg, Text)),
	builtin("substr", "substr",
		sig(varchar, sql.NullableIfAnyArg, Text, Integral),
		sig(varchar, sql.NullableIfAnyArg, Text, Integral, Integral),
	),
	builtin("regexp_extract", "regexp_extract",
		sig(varchar, sql.AlwaysNullable, Primitive, Text),
		sig(varchar, sql.AlwaysNullable, Primitive, Text, Integral),
	),
	builtin("regexp_replace", "regexp_replace", sig(varchar, sql.NullableIfAnyArg, Text, Text, Text)),
	builtin("split", "split", sig(Fixed(sql.ArrayOf(sql.Varchar)), sql.NullableIfAnyArg, Text, Text)),

	// collections
	builtin("size", "size", sig(integer, sql.NeverNull, Collection)),
	builtin("cardinality", "CARDINALITY", sig(integer, sql.NullableIfAnyArg, Collection)),
	builtin("array", "ARRAY", variadic(arrayRule, sql.NeverNull, Any)),
	builtin("map", "MAP", variadic(mapRule, sql.NeverNull, Any)),
	builtin("struct", "ROW", variadic(structRule, sql.NeverNull, Any)),
	builtin("named_struct", "named_struct", variadic(namedStructRule, sql.NeverNull, Any)),
	builtin("array_contains", "array_contains", sig(boolean, sql.NullableIfAnyArg, AnyArray, Any)),
	Item,

	// conditionals
	builtin("if", "if", sig(ifRule, sql.NullableIfAnyArg, Bool, Any, Any)),
	builtin("case", "CASE", variadic(caseRule, sql.AlwaysNullable, Any, Any, Any)),
	builtin("coalesce", "coalesce", variadic(coalesceRule, sql.NullableIfAnyArg, Any, Any)),
	builtin("nvl", "nvl", sig(coalesceRule, sql.NullableIfAnyArg, Any, Any)),

	// aggregates
	aggregate("count",
		sig(Fixed(sql.BigInt), sql.NeverNull),
		variadic(Fixed(sql.BigInt), sql.NeverNull, Any, Any),
	),
	aggregate("sum", sig(sumRule, sql.AlwaysNullable, Numeric)),
	aggregate("avg", sig(avgRule, sql.AlwaysNullable, Numeric)),
	aggregate("min", sig(SameAsArg(0), sql.AlwaysNullable, Primitive)),
	aggregate("max", sig(SameAsArg(0), sql.AlwaysNullable, Primitive)),
}

// aliases maps alternative Hive names to the name of the built-in they
// resolve to.
var aliases = map[string]string{
	"substring": "substr",
	"regexp":    "rlike",
	"lcase":     "lower",
	"ucase":     "upper",
	"mod":       "%",
	"==":        "=",
	"!=":        "<>",
}
