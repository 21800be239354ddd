package sql

import "strings"

const maxDecimalPrecision = 38

// numericRank orders numeric kinds by how wide they are. Widening is only
// allowed from a lower to a higher rank.
var numericRank = map[Kind]int{
	TinyIntKind:  1,
	SmallIntKind: 2,
	IntegerKind:  3,
	BigIntKind:   4,
	DecimalKind:  5,
	FloatKind:    6,
	DoubleKind:   7,
}

// integerDigits is the number of decimal digits needed to hold any value of
// an integral kind.
var integerDigits = map[Kind]int{
	TinyIntKind:  3,
	SmallIntKind: 5,
	IntegerKind:  10,
	BigIntKind:   19,
}

// CommonType returns the narrowest type both given types can be coerced to.
// NULL unifies with anything, numbers widen, CHAR widens to VARCHAR and DATE
// to TIMESTAMP. Complex types unify component-wise. Anything else is a
// type mismatch.
func CommonType(a, b Type) (Type, error) {
	if a.Equals(b) {
		return a, nil
	}

	if IsNull(a) {
		return b, nil
	}

	if IsNull(b) {
		return a, nil
	}

	switch {
	case IsNumber(a) && IsNumber(b):
		return widerNumber(a, b), nil
	case IsText(a) && IsText(b):
		return Varchar, nil
	case IsTemporal(a) && IsTemporal(b):
		return Timestamp, nil
	}

	switch ta := a.(type) {
	case ArrayType:
		tb, ok := b.(ArrayType)
		if !ok {
			break
		}

		elem, err := CommonType(ta.Elem, tb.Elem)
		if err != nil {
			return nil, ErrTypeMismatch.New(a, b)
		}
		return ArrayOf(elem), nil
	case MapType:
		tb, ok := b.(MapType)
		if !ok {
			break
		}

		key, err := CommonType(ta.Key, tb.Key)
		if err != nil {
			return nil, ErrTypeMismatch.New(a, b)
		}

		value, err := CommonType(ta.Value, tb.Value)
		if err != nil {
			return nil, ErrTypeMismatch.New(a, b)
		}
		return MapOf(key, value), nil
	case StructType:
		tb, ok := b.(StructType)
		if !ok || len(ta.Fields) != len(tb.Fields) {
			break
		}

		fields := make([]StructField, len(ta.Fields))
		for i, f := range ta.Fields {
			of := tb.Fields[i]
			if !strings.EqualFold(f.Name, of.Name) {
				return nil, ErrTypeMismatch.New(a, b)
			}

			typ, err := CommonType(f.Type, of.Type)
			if err != nil {
				return nil, ErrTypeMismatch.New(a, b)
			}

			fields[i] = StructField{
				Name:     f.Name,
				Type:     typ,
				Nullable: f.Nullable || of.Nullable,
			}
		}
		return StructOf(fields...), nil
	}

	return nil, ErrTypeMismatch.New(a, b)
}

func widerNumber(a, b Type) Type {
	da, aDec := a.(DecimalType)
	db, bDec := b.(DecimalType)
	switch {
	case aDec && bDec:
		scale := max(da.Scale, db.Scale)
		digits := max(da.Precision-da.Scale, db.Precision-db.Scale)
		return DecimalType{Precision: min(digits+scale, maxDecimalPrecision), Scale: scale}
	case aDec && IsInteger(b):
		return widenDecimal(da, b)
	case bDec && IsInteger(a):
		return widenDecimal(db, a)
	}

	if numericRank[a.Kind()] >= numericRank[b.Kind()] {
		return a
	}
	return b
}

func widenDecimal(d DecimalType, integral Type) Type {
	digits := max(d.Precision-d.Scale, integerDigits[integral.Kind()])
	return DecimalType{Precision: min(digits+d.Scale, maxDecimalPrecision), Scale: d.Scale}
}

// ArrayElementType returns the common type of all the given element types.
// An empty list yields NULL.
func ArrayElementType(elems []Type) (Type, error) {
	var result = Null
	for _, e := range elems {
		t, err := CommonType(result, e)
		if err != nil {
			return nil, err
		}
		result = t
	}
	return result, nil
}

// MapEntryTypes returns the common key type and the common value type of the
// given key/value pairs. Keys and values are unified independently.
func MapEntryTypes(pairs [][2]Type) (key Type, value Type, err error) {
	key, value = Null, Null
	for _, p := range pairs {
		if key, err = CommonType(key, p[0]); err != nil {
			return nil, nil, err
		}

		if value, err = CommonType(value, p[1]); err != nil {
			return nil, nil, err
		}
	}
	return key, value, nil
}

// StructFieldTypes returns the types of struct fields built from positional
// values. Unlike arrays and maps, struct fields keep their own types.
func StructFieldTypes(types []Type) []Type {
	res := make([]Type, len(types))
	copy(res, types)
	return res
}

// CanWiden reports whether a value of type from can be used where type to is
// expected without an explicit cast.
func CanWiden(from, to Type) bool {
	if from.Equals(to) || IsNull(from) {
		return true
	}

	switch {
	case IsNumber(from) && IsNumber(to):
		if from.Kind() == DecimalKind && to.Kind() == DecimalKind {
			return true
		}
		return numericRank[from.Kind()] <= numericRank[to.Kind()]
	case IsText(from) && to.Kind() == VarcharKind:
		return true
	case from.Kind() == DateKind && to.Kind() == TimestampKind:
		return true
	}

	switch tf := from.(type) {
	case ArrayType:
		tt, ok := to.(ArrayType)
		return ok && CanWiden(tf.Elem, tt.Elem)
	case MapType:
		tt, ok := to.(MapType)
		return ok && CanWiden(tf.Key, tt.Key) && CanWiden(tf.Value, tt.Value)
	case StructType:
		tt, ok := to.(StructType)
		if !ok || len(tf.Fields) != len(tt.Fields) {
			return false
		}

		for i, f := range tf.Fields {
			if !strings.EqualFold(f.Name, tt.Fields[i].Name) || !CanWiden(f.Type, tt.Fields[i].Type) {
				return false
			}
		}
		return true
	}

	return false
}

// CanCast reports whether an explicit CAST from one type to the other is
// allowed.
func CanCast(from, to Type) bool {
	if IsNull(from) || from.Equals(to) {
		return true
	}

	if !IsComplex(from) && !IsComplex(to) {
		switch {
		case from.Kind() == BinaryKind:
			return IsText(to)
		case to.Kind() == BinaryKind:
			return IsText(from)
		case IsBoolean(from) && IsTemporal(to), IsTemporal(from) && IsBoolean(to):
			return false
		}
		return true
	}

	switch tf := from.(type) {
	case ArrayType:
		tt, ok := to.(ArrayType)
		return ok && CanCast(tf.Elem, tt.Elem)
	case MapType:
		tt, ok := to.(MapType)
		return ok && CanCast(tf.Key, tt.Key) && CanCast(tf.Value, tt.Value)
	case StructType:
		tt, ok := to.(StructType)
		if !ok || len(tf.Fields) != len(tt.Fields) {
			return false
		}

		for i, f := range tf.Fields {
			if !CanCast(f.Type, tt.Fields[i].Type) {
				return false
			}
		}
		return true
	}

	return false
}
