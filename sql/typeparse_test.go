package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		input    string
		expected Type
	}{
		{"int", Integer},
		{"INTEGER", Integer},
		{"void", Null},
		{"boolean", Boolean},
		{"tinyint", TinyInt},
		{"smallint", SmallInt},
		{"bigint", BigInt},
		{"float", Float},
		{"double", Double},
		{"double precision", Double},
		{"string", Varchar},
		{"varchar(10)", Varchar},
		{"char(2)", Char},
		{"date", Date},
		{"timestamp", Timestamp},
		{"binary", Binary},
		{"decimal", DefaultDecimal},
		{"decimal(5)", DecimalType{Precision: 5}},
		{"decimal(10, 2)", DecimalType{Precision: 10, Scale: 2}},
		{"array<double>", ArrayOf(Double)},
		{"map<string,bigint>", MapOf(Varchar, BigInt)},
		{
			"array<struct<a:int,b:string>>",
			ArrayOf(StructOf(
				StructField{Name: "a", Type: Integer, Nullable: true},
				StructField{Name: "b", Type: Varchar, Nullable: true},
			)),
		},
		{
			"struct<`my field`: map<string, array<int>>>",
			StructOf(StructField{Name: "my field", Type: MapOf(Varchar, ArrayOf(Integer)), Nullable: true}),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)
			typ, err := ParseType(tt.input)
			require.NoError(err)
			require.True(tt.expected.Equals(typ), "expected %s, got %s", tt.expected, typ)
		})
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, typ := range []Type{
		Integer,
		DecimalType{Precision: 2, Scale: 1},
		MapOf(Varchar, ArrayOf(Double)),
		StructOf(
			StructField{Name: "name", Type: Varchar, Nullable: true},
			StructField{Name: "age", Type: Integer, Nullable: true},
		),
	} {
		t.Run(typ.String(), func(t *testing.T) {
			parsed, err := ParseType(typ.String())
			require.NoError(t, err)
			require.Equal(t, typ, parsed)
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"nope",
		"int x",
		"array<int",
		"array int",
		"map<int>",
		"struct<a int>",
		"struct<`a:int>",
		"decimal(40, 2)",
		"decimal(5, 6)",
		"decimal(a)",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseType(input)
			require.Error(t, err)
			require.True(t, ErrInvalidType.Is(err), "unexpected error: %s", err)
		})
	}
}

func TestMustParseType(t *testing.T) {
	require.Equal(t, Varchar, MustParseType("string"))
	require.Panics(t, func() { MustParseType("nope") })
}
