package sql

import (
	"fmt"
	"strings"
)

// FunctionKind tells how a resolved function is implemented.
type FunctionKind byte

const (
	// BuiltinFunction is a scalar operator known to the converter.
	BuiltinFunction FunctionKind = iota
	// AggregateFunction is a built-in aggregate.
	AggregateFunction
	// CatalogFunction is a user function registered in the catalog and
	// implemented by an external class.
	CatalogFunction
)

func (k FunctionKind) String() string {
	switch k {
	case BuiltinFunction:
		return "builtin"
	case AggregateFunction:
		return "aggregate"
	case CatalogFunction:
		return "catalog"
	default:
		return fmt.Sprintf("FunctionKind(%d)", byte(k))
	}
}

// Syntax is the way a call to a function is printed.
type Syntax byte

const (
	// PrefixSyntax prints NAME(arg, ...).
	PrefixSyntax Syntax = iota
	// CastSyntax prints CAST(arg):TYPE.
	CastSyntax
	// FieldSyntax prints arg.field for struct field access.
	FieldSyntax
)

// NullPolicy decides whether a call can return NULL.
type NullPolicy byte

const (
	// NullableIfAnyArg calls are nullable when any argument is.
	NullableIfAnyArg NullPolicy = iota
	// NeverNull calls never return NULL.
	NeverNull
	// AlwaysNullable calls may return NULL regardless of their arguments.
	AlwaysNullable
)

// ParamType is a pattern a single argument type must match.
type ParamType interface {
	fmt.Stringer
	// Accepts returns whether the type matches the pattern. When coerce is
	// true, implicit widening and NULL to any type are allowed.
	Accepts(t Type, coerce bool) bool
}

// ReturnTypeRule computes the result type of a call from its resolved
// arguments.
type ReturnTypeRule interface {
	ReturnType(args []Expression) (Type, error)
}

// ReturnTypeFunc is an adapter to use functions as ReturnTypeRule.
type ReturnTypeFunc func(args []Expression) (Type, error)

// ReturnType implements the ReturnTypeRule interface.
func (f ReturnTypeFunc) ReturnType(args []Expression) (Type, error) {
	return f(args)
}

// Signature is one overload of a function: ordered parameter patterns, an
// optional variadic marker repeating the last pattern and the rule giving
// the return type.
type Signature struct {
	Params   []ParamType
	Variadic bool
	Return   ReturnTypeRule
	Nulls    NullPolicy
}

// Match returns whether the given argument types match the signature.
func (s Signature) Match(types []Type, coerce bool) bool {
	if s.Variadic {
		if len(types) < len(s.Params)-1 {
			return false
		}
	} else if len(types) != len(s.Params) {
		return false
	}

	for i, t := range types {
		p := s.param(i)
		if !p.Accepts(t, coerce) {
			return false
		}
	}
	return true
}

func (s Signature) param(i int) ParamType {
	if i >= len(s.Params) {
		return s.Params[len(s.Params)-1]
	}
	return s.Params[i]
}

func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}

	if s.Variadic && len(params) > 0 {
		params[len(params)-1] += "..."
	}
	return "(" + strings.Join(params, ", ") + ")"
}

// Function is a resolved operator. Built-in functions carry their overloads,
// catalog functions carry the qualified name of their implementation.
type Function struct {
	// Name is the lower case name the function is looked up by.
	Name string
	// Display is the name used when printing calls.
	Display string
	Kind    FunctionKind
	Syntax  Syntax
	// Class is the implementation identifier of a catalog function.
	Class      string
	Signatures []Signature
}

// String returns the printed name of the function.
func (f *Function) String() string {
	if f.Kind == CatalogFunction && f.Class != "" {
		return f.Class
	}

	if f.Display != "" {
		return f.Display
	}
	return f.Name
}

// TypesString formats a list of types for error messages.
func TypesString(types []Type) string {
	res := make([]string, len(types))
	for i, t := range types {
		res[i] = t.String()
	}
	return strings.Join(res, ", ")
}
