package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	require := require.New(t)

	s := Schema{
		{Name: "a", Type: Integer, Source: "foo"},
		{Name: "b", Type: Varchar, Source: "foo"},
		{Name: "a", Type: Double, Source: "bar"},
	}

	require.Equal(0, s.IndexOf("A", ""))
	require.Equal(2, s.IndexOf("a", "BAR"))
	require.Equal(-1, s.IndexOf("c", ""))
	require.Equal("(a INTEGER, b VARCHAR, a DOUBLE)", s.String())

	renamed := s.WithSource("v")
	require.Equal("v", renamed[2].Source)
	require.Equal("bar", s[2].Source)
	require.True(s.Equals(renamed))
	require.False(s.Equals(s[:2]))
	require.False(s[:1].Equals(Schema{{Name: "a", Type: BigInt}}))

	require.NoError(s[0].Check())
	require.True(ErrInvalidType.Is((&Column{Name: "x"}).Check()))
	require.True(ErrInvalidType.Is((&Column{Type: Integer}).Check()))
}

type kindParam Kind

func (p kindParam) String() string { return Kind(p).String() }

func (p kindParam) Accepts(t Type, coerce bool) bool {
	return t.Kind() == Kind(p) || (coerce && IsNull(t))
}

func TestSignatureMatch(t *testing.T) {
	require := require.New(t)

	sig := Signature{Params: []ParamType{kindParam(VarcharKind), kindParam(IntegerKind)}}
	require.True(sig.Match([]Type{Varchar, Integer}, false))
	require.False(sig.Match([]Type{Varchar, Null}, false))
	require.True(sig.Match([]Type{Varchar, Null}, true))
	require.False(sig.Match([]Type{Varchar}, true))
	require.Equal("(VARCHAR, INTEGER)", sig.String())

	variadic := Signature{Params: []ParamType{kindParam(VarcharKind), kindParam(IntegerKind)}, Variadic: true}
	require.True(variadic.Match([]Type{Varchar}, false))
	require.True(variadic.Match([]Type{Varchar, Integer, Integer, Integer}, false))
	require.False(variadic.Match([]Type{Varchar, Integer, Varchar}, false))
	require.Equal("(VARCHAR, INTEGER...)", variadic.String())
}

func TestFunctionString(t *testing.T) {
	require := require.New(t)

	require.Equal("upper", (&Function{Name: "upper"}).String())
	require.Equal("CARDINALITY", (&Function{Name: "size", Display: "CARDINALITY"}).String())
	require.Equal("com.example.F", (&Function{Name: "f", Kind: CatalogFunction, Class: "com.example.F"}).String())
	require.Equal("aggregate", AggregateFunction.String())
	require.Equal("x.y", (&FunctionEntry{Database: "x", Name: "y"}).QualifiedName())
	require.Equal("FunctionKind(9)", FunctionKind(9).String())
	require.Equal("INTEGER, VARCHAR", TypesString([]Type{Integer, Varchar}))
	require.Equal("$cor3", CorrelationID(3).String())
}
