package ast

// Children returns the sub-expressions of an expression.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *FuncCall:
		return e.Args
	case *Cast:
		return []Expr{e.Expr}
	case *Case:
		var res []Expr
		if e.Operand != nil {
			res = append(res, e.Operand)
		}
		for _, w := range e.Whens {
			res = append(res, w.Cond, w.Result)
		}
		if e.Else != nil {
			res = append(res, e.Else)
		}
		return res
	case *Subscript:
		return []Expr{e.Expr, e.Index}
	case *FieldAccess:
		return []Expr{e.Expr}
	case *UnaryExpr:
		return []Expr{e.Expr}
	case *BinaryExpr:
		return []Expr{e.Left, e.Right}
	case *In:
		return append([]Expr{e.Expr}, e.List...)
	case *Between:
		return []Expr{e.Expr, e.Low, e.High}
	case *IsNull:
		return []Expr{e.Expr}
	}
	return nil
}

// Inspect traverses the expression in depth-first order, calling f for
// every node. Children of a node are visited only if f returns true.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}

	for _, c := range Children(e) {
		Inspect(c, f)
	}
}
