package function

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// PlaceholderType is the type given to conditionals whose value branches are
// all NULL, as there is nothing to infer a type from.
var PlaceholderType = sql.Integer

// Fixed returns a rule that always yields the given type.
func Fixed(t sql.Type) sql.ReturnTypeRule {
	return sql.ReturnTypeFunc(func([]sql.Expression) (sql.Type, error) {
		return t, nil
	})
}

// SameAsArg returns a rule yielding the type of the i-th argument.
func SameAsArg(i int) sql.ReturnTypeRule {
	return sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
		return args[i].Type(), nil
	})
}

// CommonTypeOf returns a rule yielding the common type of the arguments at
// the given positions, or of all the arguments if none is given.
func CommonTypeOf(indexes ...int) sql.ReturnTypeRule {
	return sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
		return commonTypeAt(args, indexes)
	})
}

func commonTypeAt(args []sql.Expression, indexes []int) (sql.Type, error) {
	if len(indexes) == 0 {
		return sql.ArrayElementType(argTypes(args))
	}

	types := make([]sql.Type, len(indexes))
	for i, idx := range indexes {
		types[i] = args[idx].Type()
	}
	return sql.ArrayElementType(types)
}

// conditional is the rule of if, case and coalesce: the common type of the
// value branches, NULL unifying with anything. When every branch is NULL
// the result is the placeholder type.
type conditional struct {
	values func(n int) []int
	conds  func(n int) []int
}

func (c conditional) ReturnType(args []sql.Expression) (sql.Type, error) {
	if c.conds != nil {
		for _, i := range c.conds(len(args)) {
			t := args[i].Type()
			if !sql.IsBoolean(t) && !sql.IsNull(t) {
				return nil, sql.ErrTypeMismatch.New(t, sql.Boolean)
			}
		}
	}

	t, err := commonTypeAt(args, c.values(len(args)))
	if err != nil {
		return nil, err
	}

	if sql.IsNull(t) {
		return PlaceholderType, nil
	}
	return t, nil
}

// IsPlaceholder reports whether the rule fell back to the placeholder type
// for the given arguments.
func (c conditional) IsPlaceholder(args []sql.Expression) bool {
	for _, i := range c.values(len(args)) {
		if !sql.IsNull(args[i].Type()) {
			return false
		}
	}
	return true
}

func allArgs(n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = i
	}
	return res
}

// caseValues returns the positions of the THEN values and the ELSE value in
// a searched case with arguments laid out as cond, value, ..., [else].
func caseValues(n int) []int {
	var res []int
	for i := 1; i < n; i += 2 {
		res = append(res, i)
	}

	if n%2 == 1 {
		res = append(res, n-1)
	}
	return res
}

func caseConds(n int) []int {
	var res []int
	for i := 0; i+1 < n; i += 2 {
		res = append(res, i)
	}
	return res
}

var (
	ifRule       = conditional{values: func(int) []int { return []int{1, 2} }}
	caseRule     = conditional{values: caseValues, conds: caseConds}
	coalesceRule = conditional{values: allArgs}
)

// comparable checks that all arguments can be compared with each other and
// yields BOOLEAN. Strings are comparable with numbers and dates.
var comparable = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	for i := 1; i < len(args); i++ {
		a, b := args[0].Type(), args[i].Type()
		if sql.IsText(a) && isPrimitive(b) || sql.IsText(b) && isPrimitive(a) {
			continue
		}

		if _, err := sql.CommonType(a, b); err != nil {
			return nil, err
		}
	}
	return sql.Boolean, nil
})

var arrayRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	if len(args) == 0 {
		return sql.ArrayOf(sql.Varchar), nil
	}

	elem, err := sql.ArrayElementType(argTypes(args))
	if err != nil {
		return nil, err
	}
	return sql.ArrayOf(elem), nil
})

var mapRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	if len(args)%2 != 0 {
		return nil, sql.ErrArity.New("map", fmt.Sprintf("expected an even number, got %d", len(args)))
	}

	pairs := make([][2]sql.Type, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, [2]sql.Type{args[i].Type(), args[i+1].Type()})
	}

	key, value, err := sql.MapEntryTypes(pairs)
	if err != nil {
		return nil, err
	}
	return sql.MapOf(key, value), nil
})

// structRule names the fields of positional structs col1, col2, ...
var structRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	types := sql.StructFieldTypes(argTypes(args))
	fields := make([]sql.StructField, len(args))
	for i, a := range args {
		fields[i] = sql.StructField{
			Name:     fmt.Sprintf("col%d", i+1),
			Type:     types[i],
			Nullable: a.IsNullable(),
		}
	}
	return sql.StructOf(fields...), nil
})

var namedStructRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, sql.ErrArity.New("named_struct", fmt.Sprintf("expected an even number, got %d", len(args)))
	}

	fields := make([]sql.StructField, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		name, ok := expression.StringValue(args[i])
		if !ok {
			return nil, sql.ErrTypeMismatch.New(args[i], "a string literal field name")
		}

		v := args[i+1]
		fields = append(fields, sql.StructField{
			Name:     name,
			Type:     v.Type(),
			Nullable: v.IsNullable(),
		})
	}
	return sql.StructOf(fields...), nil
})

// itemRule is the rule of the subscript operator: array elements by
// integer position and map values by key.
var itemRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	idx := args[1].Type()
	switch t := args[0].Type().(type) {
	case sql.ArrayType:
		if !sql.IsInteger(idx) && !sql.IsNull(idx) {
			return nil, sql.ErrTypeMismatch.New(idx, sql.Integer)
		}
		return t.Elem, nil
	case sql.MapType:
		if !sql.CanWiden(idx, t.Key) {
			return nil, sql.ErrTypeMismatch.New(idx, t.Key)
		}
		return t.Value, nil
	default:
		return nil, sql.ErrTypeMismatch.New(t, "ARRAY or MAP")
	}
})

var fieldRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	st, ok := args[0].Type().(sql.StructType)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(args[0].Type(), "STRUCT")
	}

	name, ok := expression.StringValue(args[1])
	if !ok {
		return nil, sql.ErrTypeMismatch.New(args[1], "a string literal field name")
	}

	idx := st.FieldIndex(name)
	if idx < 0 {
		return nil, sql.ErrColumnNotFound.New(fmt.Sprintf("%s.%s", args[0], name))
	}
	return st.Fields[idx].Type, nil
})

var sumRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	switch t := args[0].Type().(type) {
	case sql.DecimalType:
		return sql.DecimalType{Precision: 38, Scale: t.Scale}, nil
	default:
		if sql.IsInteger(t) || sql.IsNull(t) {
			return sql.BigInt, nil
		}
		return sql.Double, nil
	}
})

var avgRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	if d, ok := args[0].Type().(sql.DecimalType); ok {
		return sql.DecimalType{
			Precision: min(d.Precision+4, 38),
			Scale:     min(d.Scale+4, 38),
		}, nil
	}
	return sql.Double, nil
})

var divideRule = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	t, err := commonTypeAt(args, nil)
	if err != nil {
		return nil, err
	}

	if t.Kind() == sql.DecimalKind {
		return t, nil
	}
	return sql.Double, nil
})

// numericCommon is the rule of arithmetic: the common numeric type of both
// operands, INTEGER when both are NULL.
var numericCommon = sql.ReturnTypeFunc(func(args []sql.Expression) (sql.Type, error) {
	t, err := commonTypeAt(args, nil)
	if err != nil {
		return nil, err
	}

	if sql.IsNull(t) {
		return sql.Integer, nil
	}
	return t, nil
})
