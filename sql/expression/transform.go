package expression

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

// TransformFunc is a function that rewrites an expression.
type TransformFunc func(sql.Expression) (sql.Expression, error)

// WithChildren returns a copy of the expression with its children replaced.
func WithChildren(e sql.Expression, children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(e.Children()) {
		return nil, fmt.Errorf("%s: expecting %d children, got %d", e, len(e.Children()), len(children))
	}

	switch e := e.(type) {
	case *Call:
		return NewCall(e.fn, e.typ, e.nullable, children...), nil
	default:
		return e, nil
	}
}

// TransformUp applies f to every node of the expression, children first.
// Parents are rebuilt only when one of their children changed, so the
// untouched parts of the tree stay shared.
func TransformUp(e sql.Expression, f TransformFunc) (sql.Expression, error) {
	children := e.Children()
	if len(children) > 0 {
		var changed bool
		newChildren := make([]sql.Expression, len(children))
		for i, c := range children {
			nc, err := TransformUp(c, f)
			if err != nil {
				return nil, err
			}

			newChildren[i] = nc
			changed = changed || nc != c
		}

		if changed {
			var err error
			if e, err = WithChildren(e, newChildren...); err != nil {
				return nil, err
			}
		}
	}
	return f(e)
}
