package sql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseType parses a Hive type string such as "int", "varchar(10)",
// "array<struct<a:int,b:string>>" or "map<string,bigint>".
func ParseType(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error. Meant for tests and
// static declarations.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return ErrInvalidType.New(fmt.Sprintf("%q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...)))
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expecting %q", c)
	}
	p.pos++
	return nil
}

func (p *typeParser) ident() (string, error) {
	p.skipSpaces()
	if p.pos < len(p.src) && p.src[p.pos] == '`' {
		end := strings.IndexByte(p.src[p.pos+1:], '`')
		if end < 0 {
			return "", p.errorf("unterminated quoted identifier")
		}

		name := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return name, nil
	}

	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			break
		}
		p.pos++
	}

	if start == p.pos {
		return "", p.errorf("expecting identifier")
	}
	return p.src[start:p.pos], nil
}

func (p *typeParser) number() (int, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}

	if start == p.pos {
		return 0, p.errorf("expecting number")
	}
	return strconv.Atoi(p.src[start:p.pos])
}

// params reads an optional "(n[, m])" suffix.
func (p *typeParser) params() ([]int, error) {
	if p.peek() != '(' {
		return nil, nil
	}
	p.pos++

	var res []int
	for {
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		res = append(res, n)

		if p.peek() == ',' {
			p.pos++
			continue
		}
		return res, p.expect(')')
	}
}

func (p *typeParser) parse() (Type, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(name) {
	case "void", "null":
		return Null, nil
	case "boolean":
		return Boolean, nil
	case "tinyint":
		return TinyInt, nil
	case "smallint":
		return SmallInt, nil
	case "int", "integer":
		return Integer, nil
	case "bigint":
		return BigInt, nil
	case "float":
		return Float, nil
	case "double":
		save := p.pos
		if next, err := p.ident(); err != nil || !strings.EqualFold(next, "precision") {
			p.pos = save
		}
		return Double, nil
	case "string":
		return Varchar, nil
	case "varchar":
		_, err := p.params()
		return Varchar, err
	case "char":
		_, err := p.params()
		return Char, err
	case "date":
		return Date, nil
	case "timestamp":
		return Timestamp, nil
	case "binary":
		return Binary, nil
	case "decimal", "numeric":
		ps, err := p.params()
		if err != nil {
			return nil, err
		}

		d := DefaultDecimal
		if len(ps) > 0 {
			d.Precision = ps[0]
		}
		if len(ps) > 1 {
			d.Scale = ps[1]
		}

		if d.Precision < 1 || d.Precision > maxDecimalPrecision || d.Scale > d.Precision {
			return nil, p.errorf("invalid decimal precision (%d, %d)", d.Precision, d.Scale)
		}
		return d, nil
	case "array":
		if err := p.expect('<'); err != nil {
			return nil, err
		}

		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), p.expect('>')
	case "map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}

		key, err := p.parse()
		if err != nil {
			return nil, err
		}

		if err := p.expect(','); err != nil {
			return nil, err
		}

		value, err := p.parse()
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), p.expect('>')
	case "struct":
		return p.parseStruct()
	}

	return nil, p.errorf("unknown type %s", name)
}

func (p *typeParser) parseStruct() (Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}

	var fields []StructField
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}

		if err := p.expect(':'); err != nil {
			return nil, err
		}

		typ, err := p.parse()
		if err != nil {
			return nil, err
		}

		fields = append(fields, StructField{Name: name, Type: typ, Nullable: true})

		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}

	return StructOf(fields...), p.expect('>')
}
