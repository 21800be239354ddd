package sql

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind is the family a Type belongs to.
type Kind byte

const (
	NullKind Kind = iota
	BooleanKind
	TinyIntKind
	SmallIntKind
	IntegerKind
	BigIntKind
	DecimalKind
	FloatKind
	DoubleKind
	CharKind
	VarcharKind
	DateKind
	TimestampKind
	BinaryKind
	ArrayKind
	MapKind
	StructKind
)

var kindNames = map[Kind]string{
	NullKind:      "NULL",
	BooleanKind:   "BOOLEAN",
	TinyIntKind:   "TINYINT",
	SmallIntKind:  "SMALLINT",
	IntegerKind:   "INTEGER",
	BigIntKind:    "BIGINT",
	DecimalKind:   "DECIMAL",
	FloatKind:     "FLOAT",
	DoubleKind:    "DOUBLE",
	CharKind:      "CHAR",
	VarcharKind:   "VARCHAR",
	DateKind:      "DATE",
	TimestampKind: "TIMESTAMP",
	BinaryKind:    "BINARY",
	ArrayKind:     "ARRAY",
	MapKind:       "MAP",
	StructKind:    "STRUCT",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Type represents a SQL type. Types are compared structurally with Equals,
// never by identity.
type Type interface {
	fmt.Stringer
	// Kind returns the family of the type.
	Kind() Kind
	// Equals reports whether both types have the same shape.
	Equals(Type) bool
	// Convert converts the given Go value into the representation used for
	// this type.
	Convert(interface{}) (interface{}, error)
}

var (
	// Null is the type of the NULL literal. It unifies with any other type.
	Null Type = primitiveType{NullKind}
	// Boolean is a boolean type.
	Boolean Type = primitiveType{BooleanKind}
	// TinyInt is an 8-bit integer.
	TinyInt Type = primitiveType{TinyIntKind}
	// SmallInt is a 16-bit integer.
	SmallInt Type = primitiveType{SmallIntKind}
	// Integer is a 32-bit integer.
	Integer Type = primitiveType{IntegerKind}
	// BigInt is a 64-bit integer.
	BigInt Type = primitiveType{BigIntKind}
	// Float is a 32-bit floating point number.
	Float Type = primitiveType{FloatKind}
	// Double is a 64-bit floating point number.
	Double Type = primitiveType{DoubleKind}
	// Char is a fixed length string.
	Char Type = primitiveType{CharKind}
	// Varchar is a variable length string, Hive's STRING.
	Varchar Type = primitiveType{VarcharKind}
	// Date is a calendar date.
	Date Type = primitiveType{DateKind}
	// Timestamp is a date with time.
	Timestamp Type = primitiveType{TimestampKind}
	// Binary is a byte string.
	Binary Type = primitiveType{BinaryKind}
)

type primitiveType struct {
	kind Kind
}

func (t primitiveType) Kind() Kind     { return t.kind }
func (t primitiveType) String() string { return t.kind.String() }

func (t primitiveType) Equals(o Type) bool {
	other, ok := o.(primitiveType)
	return ok && other.kind == t.kind
}

func (t primitiveType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	var (
		res interface{}
		err error
	)
	switch t.kind {
	case NullKind:
		return nil, ErrInvalidType.New(fmt.Sprintf("value %v is not NULL", v))
	case BooleanKind:
		res, err = cast.ToBoolE(v)
	case TinyIntKind:
		res, err = cast.ToInt8E(v)
	case SmallIntKind:
		res, err = cast.ToInt16E(v)
	case IntegerKind:
		res, err = cast.ToInt32E(v)
	case BigIntKind:
		res, err = cast.ToInt64E(v)
	case FloatKind:
		res, err = cast.ToFloat32E(v)
	case DoubleKind:
		res, err = cast.ToFloat64E(v)
	case CharKind, VarcharKind:
		res, err = cast.ToStringE(v)
	case DateKind, TimestampKind:
		res, err = cast.ToTimeE(v)
	case BinaryKind:
		switch b := v.(type) {
		case []byte:
			res = b
		case string:
			res = []byte(b)
		default:
			err = fmt.Errorf("unable to cast %#v of type %T to []byte", v, v)
		}
	}

	if err != nil {
		return nil, ErrInvalidType.Wrap(err, fmt.Sprintf("%v as %s", v, t))
	}
	return res, nil
}

// DecimalType is a fixed precision number.
type DecimalType struct {
	Precision int
	Scale     int
}

// DefaultDecimal is the decimal used when no precision is given.
var DefaultDecimal = DecimalType{Precision: 10, Scale: 0}

func (t DecimalType) Kind() Kind { return DecimalKind }

func (t DecimalType) String() string {
	return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
}

func (t DecimalType) Equals(o Type) bool {
	other, ok := o.(DecimalType)
	return ok && other == t
}

func (t DecimalType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	var (
		d   decimal.Decimal
		err error
	)
	switch v := v.(type) {
	case decimal.Decimal:
		d = v
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(v))
	case float32:
		d = decimal.NewFromFloat32(v)
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		var n int64
		n, err = cast.ToInt64E(v)
		d = decimal.NewFromInt(n)
	}
	if err != nil {
		return nil, ErrInvalidType.Wrap(err, fmt.Sprintf("%v as %s", v, t))
	}

	// Values are rounded to the scale and must then fit in the integer
	// digits left by it.
	d = d.Round(int32(t.Scale))
	if d.Abs().GreaterThanOrEqual(decimal.New(1, int32(t.Precision-t.Scale))) {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v does not fit in %s", v, t))
	}
	return d, nil
}

// ArrayType is an ordered collection of elements of the same type.
type ArrayType struct {
	Elem Type
}

// ArrayOf returns the array type of the given element type.
func ArrayOf(elem Type) ArrayType {
	return ArrayType{Elem: elem}
}

func (t ArrayType) Kind() Kind { return ArrayKind }

func (t ArrayType) String() string {
	return fmt.Sprintf("ARRAY<%s>", t.Elem)
}

func (t ArrayType) Equals(o Type) bool {
	other, ok := o.(ArrayType)
	return ok && other.Elem.Equals(t.Elem)
}

func (t ArrayType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	values, ok := v.([]interface{})
	if !ok {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v as %s", v, t))
	}

	res := make([]interface{}, len(values))
	for i, e := range values {
		c, err := t.Elem.Convert(e)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}

// MapType is an association of keys to values.
type MapType struct {
	Key   Type
	Value Type
}

// MapOf returns the map type with the given key and value types.
func MapOf(key, value Type) MapType {
	return MapType{Key: key, Value: value}
}

func (t MapType) Kind() Kind { return MapKind }

func (t MapType) String() string {
	return fmt.Sprintf("MAP<%s, %s>", t.Key, t.Value)
}

func (t MapType) Equals(o Type) bool {
	other, ok := o.(MapType)
	return ok && other.Key.Equals(t.Key) && other.Value.Equals(t.Value)
}

func (t MapType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	values, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v as %s", v, t))
	}

	res := make(map[interface{}]interface{}, len(values))
	for k, e := range values {
		ck, err := t.Key.Convert(k)
		if err != nil {
			return nil, err
		}

		ce, err := t.Value.Convert(e)
		if err != nil {
			return nil, err
		}
		res[ck] = ce
	}
	return res, nil
}

// StructField is a named field of a struct type.
type StructField struct {
	Name     string
	Type     Type
	Nullable bool
}

// StructType is a record of ordered, named fields.
type StructType struct {
	Fields []StructField
}

// StructOf returns a struct type with the given fields.
func StructOf(fields ...StructField) StructType {
	return StructType{Fields: fields}
}

func (t StructType) Kind() Kind { return StructKind }

func (t StructType) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return fmt.Sprintf("STRUCT<%s>", strings.Join(fields, ", "))
}

// Equals reports whether both structs have the same field names and types
// in the same order. Field nullability is not part of the shape.
func (t StructType) Equals(o Type) bool {
	other, ok := o.(StructType)
	if !ok || len(other.Fields) != len(t.Fields) {
		return false
	}

	for i, f := range t.Fields {
		of := other.Fields[i]
		if !strings.EqualFold(f.Name, of.Name) || !f.Type.Equals(of.Type) {
			return false
		}
	}
	return true
}

func (t StructType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	values, ok := v.([]interface{})
	if !ok || len(values) != len(t.Fields) {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v as %s", v, t))
	}

	res := make([]interface{}, len(values))
	for i, e := range values {
		c, err := t.Fields[i].Type.Convert(e)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}

// FieldIndex returns the position of the field with the given name, or -1.
func (t StructType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// IsNull returns whether the type is the type of the NULL literal.
func IsNull(t Type) bool {
	return t.Kind() == NullKind
}

// IsNumber returns whether the type is numeric.
func IsNumber(t Type) bool {
	switch t.Kind() {
	case TinyIntKind, SmallIntKind, IntegerKind, BigIntKind, DecimalKind, FloatKind, DoubleKind:
		return true
	}
	return false
}

// IsInteger returns whether the type is an integral number.
func IsInteger(t Type) bool {
	switch t.Kind() {
	case TinyIntKind, SmallIntKind, IntegerKind, BigIntKind:
		return true
	}
	return false
}

// IsText returns whether the type is a string type.
func IsText(t Type) bool {
	return t.Kind() == CharKind || t.Kind() == VarcharKind
}

// IsTemporal returns whether the type is a date or timestamp.
func IsTemporal(t Type) bool {
	return t.Kind() == DateKind || t.Kind() == TimestampKind
}

// IsBoolean returns whether the type is boolean.
func IsBoolean(t Type) bool {
	return t.Kind() == BooleanKind
}

// IsComplex returns whether the type is an array, map or struct.
func IsComplex(t Type) bool {
	switch t.Kind() {
	case ArrayKind, MapKind, StructKind:
		return true
	}
	return false
}
