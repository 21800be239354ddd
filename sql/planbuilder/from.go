package planbuilder

import (
	"fmt"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// buildFrom converts the FROM clause. A select without FROM reads from a
// single empty row.
func (b *Builder) buildFrom(t ast.TableExpr) *scope {
	switch t := t.(type) {
	case nil:
		return b.newScope(plan.NewSingleRow(), "", "")
	case *ast.Table:
		return b.buildTable(t)
	case *ast.Subquery:
		sub := b.buildSelect(t.Select)
		return b.newScope(sub.node, "", t.Alias)
	case *ast.Join:
		return b.buildJoin(t)
	case *ast.LateralView:
		return b.buildLateralView(t)
	}

	b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("table expression %s", t)))
	return nil
}

// buildTable resolves a table reference. Views are expanded in place,
// anything else must be a table of the catalog.
func (b *Builder) buildTable(t *ast.Table) *scope {
	db := t.Database
	if db == "" {
		db = b.database
	}

	qualifier := t.Alias
	if qualifier == "" {
		qualifier = t.Name
	}

	if entry, ok := b.lookupView(db, t.Name); ok {
		return b.newScope(b.expandView(entry), db, qualifier)
	}

	entry := b.lookupTable(db, t.Name)
	scan, err := plan.NewScan(entry.Database, entry.Name, entry.Schema)
	if err != nil {
		b.handleErr(err)
	}
	return b.newScope(scan, db, qualifier)
}

var joinKinds = map[ast.JoinKind]plan.JoinKind{
	ast.InnerJoin: plan.InnerJoin,
	ast.CrossJoin: plan.InnerJoin,
	ast.LeftJoin:  plan.LeftJoin,
	ast.RightJoin: plan.RightJoin,
	ast.FullJoin:  plan.FullJoin,
}

// buildJoin converts a join. Cross joins are inner joins on TRUE. The
// condition sees the columns of both sides with the nullability of the
// join output.
func (b *Builder) buildJoin(j *ast.Join) *scope {
	left := b.buildFrom(j.Left)
	right := b.buildFrom(j.Right)

	kind, ok := joinKinds[j.Kind]
	if !ok {
		b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("join type %s", j.Kind)))
	}

	var cond sql.Expression = expression.NewLiteral(true, sql.Boolean)
	join, err := plan.NewJoin(left.node, right.node, cond, kind)
	if err != nil {
		b.handleErr(err)
	}

	s := left.join(right, join)
	if j.On == nil {
		return s
	}

	cond = b.buildScalar(s, j.On)
	join, err = plan.NewJoin(left.node, right.node, cond, kind)
	if err != nil {
		b.handleErr(err)
	}
	return s.withNode(join)
}
