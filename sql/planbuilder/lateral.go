package planbuilder

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// buildLateralView desugars a LATERAL VIEW explode into a Correlate of its
// source with an Uncollect of the exploded collection:
//
//	Correlate(correlation=[$corN], joinType=[inner], requiredColumns=[...])
//	 ├─ <source>
//	 └─ Project(<alias columns>)
//	     └─ Uncollect
//	         └─ Project(<collection over $corN>)
//	             └─ Values(tuples=[[{ }]])
//
// With OUTER the collection is replaced by a one null element collection
// when it is null or empty, so every source row produces output.
func (b *Builder) buildLateralView(lv *ast.LateralView) *scope {
	left := b.buildFrom(lv.Source)

	if name := strings.ToLower(lv.Func.Name); name != "explode" {
		b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("table function %s in LATERAL VIEW", lv.Func.Name)))
	}

	if len(lv.Func.Args) != 1 {
		b.handleErr(sql.ErrArity.New("explode", fmt.Sprintf("expecting 1 argument, got %d", len(lv.Func.Args))))
	}

	coll := b.buildScalar(left, lv.Func.Args[0])
	columns := b.explodedColumns(coll, lv.Columns)

	cor := b.newCorrelation()
	required := uniqueSorted(expression.FieldIndexes(coll))

	name := "EXPR$0"
	if gf, ok := coll.(*expression.GetField); ok && !lv.Outer {
		name = gf.Name()
	}

	if lv.Outer {
		coll = b.outerGuard(coll)
	}

	correlated, err := expression.TransformUp(coll, func(e sql.Expression) (sql.Expression, error) {
		gf, ok := e.(*expression.GetField)
		if !ok {
			return e, nil
		}
		return expression.NewCorrelatedField(cor, gf.Index(), gf.Type(), gf.Name(), gf.IsNullable()), nil
	})
	if err != nil {
		b.handleErr(err)
	}

	inner, err := plan.NewProject([]string{name}, []sql.Expression{correlated}, plan.NewSingleRow())
	if err != nil {
		b.handleErr(err)
	}

	uncollect, err := plan.NewUncollect(inner)
	if err != nil {
		b.handleErr(err)
	}

	schema := uncollect.Schema()
	fields := make([]sql.Expression, len(schema))
	for i, c := range schema {
		fields[i] = newField(i, c)
	}

	right, err := plan.NewProject(columns, fields, uncollect)
	if err != nil {
		b.handleErr(err)
	}

	correlate, err := plan.NewCorrelate(left.node, right, cor, required, plan.InnerJoin)
	if err != nil {
		b.handleErr(err)
	}

	b.log.WithField("correlation", cor.String()).
		Debugf("lateral view %s exploding %s", lv.Alias, coll)
	return left.join(b.newScope(right, "", lv.Alias), correlate)
}

// explodedColumns returns the names of the columns produced by exploding
// the collection: col for arrays, key and value for maps, unless aliases
// are given.
func (b *Builder) explodedColumns(coll sql.Expression, aliases []string) []string {
	var columns []string
	switch coll.Type().(type) {
	case sql.ArrayType:
		columns = []string{"col"}
	case sql.MapType:
		columns = []string{"key", "value"}
	default:
		b.handleErr(sql.ErrTypeMismatch.New(coll.Type(), "ARRAY or MAP"))
	}

	if len(aliases) == 0 {
		return columns
	}

	if len(aliases) != len(columns) {
		b.handleErr(sql.ErrArity.New("explode", fmt.Sprintf(
			"%s produces %d columns but %d aliases were given",
			coll.Type(), len(columns), len(aliases),
		)))
	}
	return aliases
}

// outerGuard returns
//
//	if(coll IS NOT NULL AND cardinality(coll) > 0, coll, <collection of one null>)
func (b *Builder) outerGuard(coll sql.Expression) sql.Expression {
	cond := b.resolve("and",
		b.resolve("is not null", coll),
		b.resolve(">", b.resolve("cardinality", coll), expression.NewLiteral(int32(0), sql.Integer)),
	)

	var empty sql.Expression
	switch t := coll.Type().(type) {
	case sql.ArrayType:
		empty = b.resolve("array", typedNull(t.Elem))
	case sql.MapType:
		empty = b.resolve("map", typedNull(t.Key), typedNull(t.Value))
	}
	return b.resolve("if", cond, coll, empty)
}

func uniqueSorted(idx []int) []int {
	seen := make(map[int]bool, len(idx))
	var res []int
	for _, i := range idx {
		if !seen[i] {
			seen[i] = true
			res = append(res, i)
		}
	}
	sort.Ints(res)
	return res
}
