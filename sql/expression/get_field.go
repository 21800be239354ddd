package expression

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// GetField references a field of the input row by position.
type GetField struct {
	fieldIndex int
	name       string
	fieldType  sql.Type
	nullable   bool
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType sql.Type, fieldName string, nullable bool) *GetField {
	return &GetField{
		fieldIndex: index,
		name:       fieldName,
		fieldType:  fieldType,
		nullable:   nullable,
	}
}

// Index returns the position of the referenced field in the input row.
func (p *GetField) Index() int { return p.fieldIndex }

// Name returns the name of the referenced field.
func (p *GetField) Name() string { return p.name }

// Children implements the Expression interface.
func (*GetField) Children() []sql.Expression {
	return nil
}

// IsNullable implements the Expression interface.
func (p *GetField) IsNullable() bool {
	return p.nullable
}

// Type implements the Expression interface.
func (p *GetField) Type() sql.Type {
	return p.fieldType
}

func (p *GetField) String() string {
	return fmt.Sprintf("$%d", p.fieldIndex)
}

// CorrelatedField references a field of the left row bound by a Correlate
// node. It can only appear inside the right sub-tree of that Correlate.
type CorrelatedField struct {
	correlation sql.CorrelationID
	fieldIndex  int
	name        string
	fieldType   sql.Type
	nullable    bool
}

var _ sql.Expression = (*CorrelatedField)(nil)

// NewCorrelatedField creates a CorrelatedField expression.
func NewCorrelatedField(
	correlation sql.CorrelationID,
	index int,
	fieldType sql.Type,
	fieldName string,
	nullable bool,
) *CorrelatedField {
	return &CorrelatedField{
		correlation: correlation,
		fieldIndex:  index,
		name:        fieldName,
		fieldType:   fieldType,
		nullable:    nullable,
	}
}

// Correlation returns the id of the correlation the field belongs to.
func (p *CorrelatedField) Correlation() sql.CorrelationID { return p.correlation }

// Index returns the position of the field in the correlated row.
func (p *CorrelatedField) Index() int { return p.fieldIndex }

// Name returns the name of the referenced field.
func (p *CorrelatedField) Name() string { return p.name }

// Children implements the Expression interface.
func (*CorrelatedField) Children() []sql.Expression {
	return nil
}

// IsNullable implements the Expression interface.
func (p *CorrelatedField) IsNullable() bool {
	return p.nullable
}

// Type implements the Expression interface.
func (p *CorrelatedField) Type() sql.Type {
	return p.fieldType
}

func (p *CorrelatedField) String() string {
	return fmt.Sprintf("%s.%s", p.correlation, p.name)
}
