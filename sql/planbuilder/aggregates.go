package planbuilder

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// groupBy maps the expressions computed by an aggregation to the columns of
// its output. Keys are the string form of the expressions built over the
// input scope.
type groupBy struct {
	input *scope
	keys  map[string]int
	aggs  map[string]int
}

// isAggregation returns whether the select needs an Aggregate node.
func (b *Builder) isAggregation(sel *ast.Select) bool {
	if len(sel.GroupBy) > 0 || sel.Having != nil {
		return true
	}

	return len(b.aggregateCalls(selectExprs(sel)...)) > 0
}

// aggregateCalls returns the outermost aggregate calls in the expressions.
func (b *Builder) aggregateCalls(exprs ...ast.Expr) []*ast.FuncCall {
	var calls []*ast.FuncCall
	for _, e := range exprs {
		if e == nil {
			continue
		}

		ast.Inspect(e, func(e ast.Expr) bool {
			if fc, ok := e.(*ast.FuncCall); ok && b.isAggregate(fc.Name) {
				calls = append(calls, fc)
				return false
			}
			return true
		})
	}
	return calls
}

// buildAggregation builds the aggregation of the select over the input
// scope: a Project computing group keys and aggregate arguments, the
// Aggregate itself and the HAVING Filter. The returned scope resolves
// expressions in terms of the aggregation output.
func (b *Builder) buildAggregation(in *scope, sel *ast.Select) *scope {
	var (
		exprs []sql.Expression
		names []string
		index = make(map[string]int)
	)

	add := func(e sql.Expression, name string) int {
		key := e.String()
		if i, ok := index[key]; ok {
			return i
		}

		if name == "" {
			if gf, ok := e.(*expression.GetField); ok {
				name = gf.Name()
			} else {
				name = fmt.Sprintf("$f%d", len(exprs))
			}
		}

		index[key] = len(exprs)
		exprs = append(exprs, e)
		names = append(names, name)
		return len(exprs) - 1
	}

	gb := &groupBy{
		input: in,
		keys:  make(map[string]int),
		aggs:  make(map[string]int),
	}

	var group []int
	for _, g := range sel.GroupBy {
		e := b.buildScalar(in, g)
		if _, ok := gb.keys[e.String()]; ok {
			continue
		}

		idx := add(e, b.groupKeyName(in, sel, e))
		gb.keys[e.String()] = len(group)
		group = append(group, idx)
	}

	type pending struct {
		call *ast.FuncCall
		args []sql.Expression
	}

	var calls []pending
	for _, fc := range b.aggregateCalls(selectExprs(sel)...) {
		if _, ok := gb.aggs[fc.String()]; ok {
			continue
		}
		gb.aggs[fc.String()] = len(group) + len(calls)

		var args []sql.Expression
		for _, a := range fc.Args {
			if _, ok := a.(*ast.Star); ok && strings.EqualFold(fc.Name, "count") && len(fc.Args) == 1 {
				continue
			}
			args = append(args, b.buildScalar(in, a))
		}
		calls = append(calls, pending{fc, args})
	}

	var aggCalls []*plan.AggregateCall
	for i, c := range calls {
		res, err := b.registry.Resolve(b.ctx, b.database, c.call.Name, c.args)
		if err != nil {
			b.handleErr(err)
		}

		idx := make([]int, len(c.args))
		for j, a := range c.args {
			idx[j] = add(a, "")
		}

		aggCalls = append(aggCalls, &plan.AggregateCall{
			Func:     res.Function,
			Args:     idx,
			Distinct: c.call.Distinct,
			Name:     b.aggregateName(sel, c.call, len(group)+i),
			Type:     res.Type,
			Nullable: res.Nullable,
		})
	}

	names = uniqueNames(names)
	pre, err := plan.NewProject(names, exprs, in.node)
	if err != nil {
		b.handleErr(err)
	}

	callNames := make([]string, 0, len(group)+len(aggCalls))
	for _, g := range group {
		callNames = append(callNames, names[g])
	}
	for _, c := range aggCalls {
		callNames = append(callNames, c.Name)
	}
	for i, n := range uniqueNames(callNames)[len(group):] {
		aggCalls[i].Name = n
	}

	var input sql.Node = pre
	if isIdentity(pre) {
		input = in.node
	}

	agg, err := plan.NewAggregate(group, aggCalls, input)
	if err != nil {
		b.handleErr(err)
	}

	out := b.newScope(agg, "", "")
	for i, g := range group {
		if gf, ok := exprs[g].(*expression.GetField); ok {
			out.cols[i] = in.cols[gf.Index()]
		}
	}
	out.groupBy = gb

	if sel.Having != nil {
		cond := b.buildScalar(out, sel.Having)
		filter, err := plan.NewFilter(cond, agg)
		if err != nil {
			b.handleErr(err)
		}
		out = out.withNode(filter)
	}

	b.log.Debugf("built aggregation with %d keys and %d calls", len(group), len(aggCalls))
	return out
}

// groupKeyName returns the alias of the select item that is exactly the
// group key, if any.
func (b *Builder) groupKeyName(in *scope, sel *ast.Select, key sql.Expression) string {
	for _, it := range sel.Items {
		if it.Alias == "" {
			continue
		}

		if _, ok := it.Expr.(*ast.Star); ok || len(b.aggregateCalls(it.Expr)) > 0 {
			continue
		}

		if b.buildScalar(in, it.Expr).String() == key.String() {
			return it.Alias
		}
	}
	return ""
}

// aggregateName names an aggregate call after the select item it is, or
// $f<pos> when it is part of a larger expression.
func (b *Builder) aggregateName(sel *ast.Select, call *ast.FuncCall, pos int) string {
	for i, it := range sel.Items {
		if it.Expr.String() != call.String() {
			continue
		}

		if it.Alias != "" {
			return it.Alias
		}
		return fmt.Sprintf("EXPR$%d", i)
	}
	return fmt.Sprintf("$f%d", pos)
}

// buildGroupedScalar converts an expression over the output of an
// aggregation. Aggregate calls and group keys become references to the
// aggregate output; any other column reference is an error.
func (b *Builder) buildGroupedScalar(s *scope, e ast.Expr) sql.Expression {
	gb := s.groupBy

	if fc, ok := e.(*ast.FuncCall); ok && b.isAggregate(fc.Name) {
		idx, ok := gb.aggs[fc.String()]
		if !ok {
			b.handleErr(sql.ErrInvalidAggregation.New(fmt.Sprintf("aggregate function %s is not allowed here", fc)))
		}
		return s.field(idx)
	}

	if len(b.aggregateCalls(e)) == 0 {
		built := b.buildScalar(gb.input, e)
		if idx, ok := gb.keys[built.String()]; ok {
			return s.field(idx)
		}

		if len(expression.FieldIndexes(built)) == 0 {
			return built
		}
	}

	if _, ok := e.(*ast.Ident); ok {
		b.handleErr(sql.ErrInvalidAggregation.New(fmt.Sprintf("expression %s is not being grouped", e)))
	}
	return b.buildOperator(s, e)
}

// buildDistinct removes duplicate rows grouping by every column.
func (b *Builder) buildDistinct(node sql.Node) sql.Node {
	group := make([]int, len(node.Schema()))
	for i := range group {
		group[i] = i
	}

	agg, err := plan.NewAggregate(group, nil, node)
	if err != nil {
		b.handleErr(err)
	}
	return agg
}

// isIdentity returns whether the projection outputs exactly the columns of
// its child, in order and with the same names.
func isIdentity(p *plan.Project) bool {
	schema := p.Child.Schema()
	if len(schema) != len(p.Expressions) {
		return false
	}

	for i, e := range p.Expressions {
		gf, ok := e.(*expression.GetField)
		if !ok || gf.Index() != i || p.Names[i] != schema[i].Name {
			return false
		}
	}
	return true
}

func selectExprs(sel *ast.Select) []ast.Expr {
	var exprs []ast.Expr
	for _, it := range sel.Items {
		exprs = append(exprs, it.Expr)
	}
	if sel.Having != nil {
		exprs = append(exprs, sel.Having)
	}
	for _, o := range sel.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	return exprs
}
