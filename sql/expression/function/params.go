package function

import (
	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// kindParam accepts any type for which the predicate holds. Coercion only
// adds NULL, unless a widening predicate is given.
type kindParam struct {
	name   string
	accept func(sql.Type) bool
	widen  func(sql.Type) bool
}

func (p kindParam) String() string { return p.name }

func (p kindParam) Accepts(t sql.Type, coerce bool) bool {
	if p.accept(t) {
		return true
	}

	if !coerce {
		return false
	}

	if sql.IsNull(t) {
		return true
	}
	return p.widen != nil && p.widen(t)
}

func isPrimitive(t sql.Type) bool {
	return !sql.IsComplex(t) && !sql.IsNull(t)
}

var (
	// Any accepts a value of any type.
	Any sql.ParamType = kindParam{
		name:   "ANY",
		accept: func(sql.Type) bool { return true },
	}

	// Primitive accepts any non complex type.
	Primitive sql.ParamType = kindParam{
		name:   "PRIMITIVE",
		accept: isPrimitive,
	}

	// Numeric accepts numbers.
	Numeric sql.ParamType = kindParam{
		name:   "NUMERIC",
		accept: sql.IsNumber,
	}

	// Integral accepts integer numbers.
	Integral sql.ParamType = kindParam{
		name:   "INTEGER",
		accept: sql.IsInteger,
	}

	// Text accepts strings. Other primitives are implicitly converted to
	// strings when coercing.
	Text sql.ParamType = kindParam{
		name:   "STRING",
		accept: sql.IsText,
		widen: func(t sql.Type) bool {
			return sql.IsNumber(t) || sql.IsTemporal(t) || sql.IsBoolean(t)
		},
	}

	// Bool accepts booleans.
	Bool sql.ParamType = kindParam{
		name:   "BOOLEAN",
		accept: sql.IsBoolean,
	}

	// AnyArray accepts arrays of any element type.
	AnyArray sql.ParamType = kindParam{
		name:   "ARRAY",
		accept: func(t sql.Type) bool { return t.Kind() == sql.ArrayKind },
	}

	// AnyMap accepts maps of any key and value types.
	AnyMap sql.ParamType = kindParam{
		name:   "MAP",
		accept: func(t sql.Type) bool { return t.Kind() == sql.MapKind },
	}

	// AnyStruct accepts structs of any shape.
	AnyStruct sql.ParamType = kindParam{
		name:   "STRUCT",
		accept: func(t sql.Type) bool { return t.Kind() == sql.StructKind },
	}

	// Collection accepts arrays and maps.
	Collection sql.ParamType = kindParam{
		name: "ARRAY|MAP",
		accept: func(t sql.Type) bool {
			return t.Kind() == sql.ArrayKind || t.Kind() == sql.MapKind
		},
	}
)

// exactParam accepts exactly one type, or anything that widens to it when
// coercing.
type exactParam struct {
	typ sql.Type
}

// Exactly returns a parameter pattern that only accepts the given type.
func Exactly(t sql.Type) sql.ParamType {
	return exactParam{t}
}

func (p exactParam) String() string { return p.typ.String() }

func (p exactParam) Accepts(t sql.Type, coerce bool) bool {
	if t.Equals(p.typ) {
		return true
	}
	return coerce && sql.CanWiden(t, p.typ)
}

func argTypes(args []sql.Expression) []sql.Type {
	types := make([]sql.Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	return types
}

func params(n int, p sql.ParamType) []sql.ParamType {
	res := make([]sql.ParamType, n)
	for i := range res {
		res[i] = p
	}
	return res
}
