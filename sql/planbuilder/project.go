package planbuilder

import (
	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// projection is the list of output expressions of a select, built over the
// scope they are evaluated in.
type projection struct {
	names []string
	exprs []sql.Expression
	// visible is the number of columns in the select list. Columns after
	// it are only needed for sorting.
	visible int
}

// buildProjection builds the select list, expanding stars.
func (b *Builder) buildProjection(s *scope, items []*ast.SelectItem) *projection {
	p := new(projection)
	for _, it := range items {
		if star, ok := it.Expr.(*ast.Star); ok {
			b.expandStar(s, star, p)
			continue
		}

		name := it.Alias
		if name == "" {
			name = exprName(it.Expr, len(p.exprs))
		}
		p.add(b.buildScalar(s, it.Expr), name)
	}

	p.names = uniqueNames(p.names)
	p.visible = len(p.exprs)
	return p
}

// expandStar adds the columns matched by the star. After an aggregation
// the star matches the columns of the aggregation input, which must all be
// grouped.
func (b *Builder) expandStar(s *scope, star *ast.Star, p *projection) {
	if s.groupBy == nil {
		for _, i := range s.starColumns(star.Qualifier) {
			p.add(s.field(i), s.cols[i].name)
		}
		return
	}

	in := s.groupBy.input
	for _, i := range in.starColumns(star.Qualifier) {
		p.add(b.buildScalar(s, in.columnIdent(i)), in.cols[i].name)
	}
}

func (p *projection) add(e sql.Expression, name string) {
	p.exprs = append(p.exprs, e)
	p.names = append(p.names, name)
}

// indexOf returns the position of the output column computing the same
// expression, or -1.
func (p *projection) indexOf(e sql.Expression) int {
	for i, pe := range p.exprs[:p.visible] {
		if pe.String() == e.String() {
			return i
		}
	}
	return -1
}

// projectNode builds the Project of the projection over the scope. When
// omitIdentity is set and the projection outputs the scope unchanged, the
// scope node is returned instead.
func (b *Builder) projectNode(s *scope, p *projection, omitIdentity bool) sql.Node {
	project, err := plan.NewProject(p.names, p.exprs, s.node)
	if err != nil {
		b.handleErr(err)
	}

	if omitIdentity && isIdentity(project) {
		return s.node
	}
	return project
}

// trim projects away the columns only needed for sorting.
func (b *Builder) trim(node sql.Node, p *projection) sql.Node {
	if p.visible == len(p.exprs) {
		return node
	}

	schema := node.Schema()
	exprs := make([]sql.Expression, p.visible)
	for i := range exprs {
		exprs[i] = newField(i, schema[i])
	}

	project, err := plan.NewProject(p.names[:p.visible], exprs, node)
	if err != nil {
		b.handleErr(err)
	}
	return project
}
