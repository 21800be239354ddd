package expression

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Literal represents a literal expression (string, number, bool, ...).
type Literal struct {
	value     interface{}
	fieldType sql.Type
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}, fieldType sql.Type) *Literal {
	return &Literal{
		value:     value,
		fieldType: fieldType,
	}
}

// NewNull returns a NULL literal of NULL type.
func NewNull() *Literal {
	return NewLiteral(nil, sql.Null)
}

// Value returns the literal value.
func (p *Literal) Value() interface{} {
	return p.value
}

// Type implements the Expression interface.
func (p *Literal) Type() sql.Type {
	return p.fieldType
}

// IsNullable implements the Expression interface.
func (p *Literal) IsNullable() bool {
	return p.value == nil
}

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression {
	return nil
}

func (p *Literal) String() string {
	switch v := p.value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case decimal.Decimal:
		if t, ok := p.fieldType.(sql.DecimalType); ok {
			return v.StringFixed(int32(t.Scale))
		}
		return v.String()
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(v)) + "'"
	case time.Time:
		if p.fieldType.Kind() == sql.DateKind {
			return fmt.Sprintf("%s '%s'", p.fieldType, v.Format("2006-01-02"))
		}
		return fmt.Sprintf("%s '%s'", p.fieldType, v.Format("2006-01-02 15:04:05"))
	default:
		return fmt.Sprint(v)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// StringValue returns the value of the expression if it is a non-null
// string literal.
func StringValue(e sql.Expression) (string, bool) {
	l, ok := e.(*Literal)
	if !ok {
		return "", false
	}

	s, ok := l.value.(string)
	return s, ok
}

// IsNullLiteral returns whether the expression is the NULL literal.
func IsNullLiteral(e sql.Expression) bool {
	l, ok := e.(*Literal)
	return ok && l.value == nil
}
