package planbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// buildSelect converts a select in clause order: FROM with its joins and
// lateral views, WHERE, the aggregation, the select list, DISTINCT,
// ORDER BY and LIMIT. The returned scope has one unqualified column per
// select item.
func (b *Builder) buildSelect(sel *ast.Select) *scope {
	s := b.buildFrom(sel.From)

	if sel.Where != nil {
		if len(b.aggregateCalls(sel.Where)) > 0 {
			b.handleErr(sql.ErrInvalidAggregation.New(fmt.Sprintf("aggregate functions are not allowed in WHERE: %s", sel.Where)))
		}

		filter, err := plan.NewFilter(b.buildScalar(s, sel.Where), s.node)
		if err != nil {
			b.handleErr(err)
		}
		s = s.withNode(filter)
	}

	aggregation := b.isAggregation(sel)
	if aggregation {
		s = b.buildAggregation(s, sel)
	}

	p := b.buildProjection(s, sel.Items)
	sorting := b.buildOrderBy(s, p, sel.OrderBy)

	if sel.Distinct && p.visible < len(p.exprs) {
		b.handleErr(sql.ErrInvalidAggregation.New("ORDER BY expressions must appear in the select list with DISTINCT"))
	}

	node := b.projectNode(s, p, aggregation)
	if sel.Distinct {
		node = b.buildDistinct(node)
	}

	if len(sorting) > 0 {
		sort, err := plan.NewSort(sorting, node)
		if err != nil {
			b.handleErr(err)
		}
		node = sort
	}

	if sel.Limit != nil {
		limit, err := plan.NewLimit(*sel.Limit, node)
		if err != nil {
			b.handleErr(err)
		}
		node = limit
	}

	node = b.trim(node, p)
	return b.newScope(node, "", "")
}

// buildOrderBy resolves the sort keys against the output of the select.
// A key is a 1-based position, the name of an output column, an expression
// of the select list or any other expression of the select scope, which is
// appended to the projection as a hidden column.
func (b *Builder) buildOrderBy(s *scope, p *projection, items []*ast.OrderItem) []plan.SortField {
	var fields []plan.SortField
	for _, o := range items {
		idx := b.sortIndex(s, p, o.Expr)

		f := plan.SortField{Index: idx, Order: plan.Ascending, NullOrdering: plan.NullsFirst}
		if o.Descending {
			f.Order = plan.Descending
			f.NullOrdering = plan.NullsLast
		}

		if o.NullsFirst != nil {
			if *o.NullsFirst {
				f.NullOrdering = plan.NullsFirst
			} else {
				f.NullOrdering = plan.NullsLast
			}
		}
		fields = append(fields, f)
	}
	return fields
}

func (b *Builder) sortIndex(s *scope, p *projection, e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Literal:
		if e.Kind != ast.IntLiteral {
			break
		}

		pos, err := strconv.Atoi(e.Value)
		if err != nil || pos < 1 || pos > p.visible {
			b.handleErr(sql.ErrColumnNotFound.New(fmt.Sprintf("ORDER BY position %s", e.Value)))
		}
		return pos - 1
	case *ast.Ident:
		if len(e.Parts) != 1 {
			break
		}

		for i, n := range p.names[:p.visible] {
			if strings.EqualFold(n, e.Parts[0]) {
				return i
			}
		}
	}

	built := b.buildScalar(s, e)
	if i := p.indexOf(built); i >= 0 {
		return i
	}

	p.add(built, fmt.Sprintf("$f%d", len(p.exprs)))
	p.names = uniqueNames(p.names)
	return len(p.exprs) - 1
}
