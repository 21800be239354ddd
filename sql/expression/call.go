package expression

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// Call is the application of a resolved function to its arguments.
type Call struct {
	fn       *sql.Function
	args     []sql.Expression
	typ      sql.Type
	nullable bool
}

var _ sql.Expression = (*Call)(nil)

// NewCall creates a call to the given function. The result type has to be
// already inferred.
func NewCall(fn *sql.Function, typ sql.Type, nullable bool, args ...sql.Expression) *Call {
	return &Call{
		fn:       fn,
		args:     args,
		typ:      typ,
		nullable: nullable,
	}
}

// Function returns the resolved function.
func (c *Call) Function() *sql.Function { return c.fn }

// Children implements the Expression interface.
func (c *Call) Children() []sql.Expression {
	return c.args
}

// Type implements the Expression interface.
func (c *Call) Type() sql.Type {
	return c.typ
}

// IsNullable implements the Expression interface.
func (c *Call) IsNullable() bool {
	return c.nullable
}

func (c *Call) String() string {
	switch c.fn.Syntax {
	case sql.CastSyntax:
		return fmt.Sprintf("CAST(%s):%s", c.args[0], c.typ)
	case sql.FieldSyntax:
		name, _ := StringValue(c.args[1])
		return fmt.Sprintf("%s.%s", c.args[0], name)
	}

	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.fn, strings.Join(args, ", "))
}
