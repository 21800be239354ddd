package planbuilder

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-hive2rel.v0/memory"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/parse"
)

func newCatalog(t *testing.T) *memory.Catalog {
	t.Helper()
	f, err := os.Open("../../testdata/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	c, err := memory.LoadYAML(f)
	require.NoError(t, err)
	return c
}

func newBuilder(t *testing.T, c sql.Catalog) *Builder {
	t.Helper()
	b, err := New(context.Background(), c, Config{})
	require.NoError(t, err)
	return b
}

func build(t *testing.T, c sql.Catalog, query string) (sql.Node, error) {
	t.Helper()
	stmt, err := parse.Parse(context.Background(), query)
	require.NoError(t, err)
	return newBuilder(t, c).Build(stmt)
}

var plans = []struct {
	name     string
	query    string
	expected string
}{
	{
		"select star",
		`SELECT * from foo`,
		`Project(a=[$0], b=[$1], c=[$2])
 └─ Scan(table=[default.foo])
`,
	},
	{
		"lateral view",
		`SELECT a, ccol from complex lateral view explode(complex.c) t as ccol`,
		`Project(a=[$0], ccol=[$5])
 └─ Correlate(correlation=[$cor0], joinType=[inner], requiredColumns=[{2}])
     ├─ Scan(table=[default.complex])
     └─ Project(ccol=[$0])
         └─ Uncollect
             └─ Project(c=[$cor0.c])
                 └─ Values(tuples=[[{ }]])
`,
	},
	{
		"outer and chained lateral views",
		`SELECT a, ccol, r.anotherCCol from complex
			lateral view outer explode(complex.c) t as ccol
			lateral view explode(complex.c) r as anotherCCol`,
		`Project(a=[$0], ccol=[$5], anotherCCol=[$6])
 └─ Correlate(correlation=[$cor1], joinType=[inner], requiredColumns=[{2}])
     ├─ Correlate(correlation=[$cor0], joinType=[inner], requiredColumns=[{2}])
     │   ├─ Scan(table=[default.complex])
     │   └─ Project(ccol=[$0])
     │       └─ Uncollect
     │           └─ Project(EXPR$0=[if(AND(IS NOT NULL($cor0.c), >(CARDINALITY($cor0.c), 0)), $cor0.c, ARRAY(null))])
     │               └─ Values(tuples=[[{ }]])
     └─ Project(anotherCCol=[$0])
         └─ Uncollect
             └─ Project(c=[$cor1.c])
                 └─ Values(tuples=[[{ }]])
`,
	},
	{
		"lateral view over a previous alias",
		`SELECT a, y FROM complex
			LATERAL VIEW explode(c) t AS x
			LATERAL VIEW explode(array(x, a)) r AS y`,
		`Project(a=[$0], y=[$6])
 └─ Correlate(correlation=[$cor1], joinType=[inner], requiredColumns=[{0, 5}])
     ├─ Correlate(correlation=[$cor0], joinType=[inner], requiredColumns=[{2}])
     │   ├─ Scan(table=[default.complex])
     │   └─ Project(x=[$0])
     │       └─ Uncollect
     │           └─ Project(c=[$cor0.c])
     │               └─ Values(tuples=[[{ }]])
     └─ Project(y=[$0])
         └─ Uncollect
             └─ Project(EXPR$0=[ARRAY($cor1.x, $cor1.a)])
                 └─ Values(tuples=[[{ }]])
`,
	},
	{
		"view expansion",
		`SELECT avg(sum_c) from foo_view`,
		`Aggregate(group=[{}], EXPR$0=[AVG($0)])
 └─ Project(sum_c=[$1])
     └─ Project(bcol=[$0], sum_c=[CAST($1):DOUBLE])
         └─ Aggregate(group=[{0}], sum_c=[SUM($1)])
             └─ Project(bcol=[$1], c=[$2])
                 └─ Scan(table=[default.foo])
`,
	},
	{
		"complex literals",
		`SELECT array(1, 2, 3), map('abc', 123, 'def', 567), struct(10, 15, 20.23)`,
		`Project(EXPR$0=[ARRAY(1, 2, 3)], EXPR$1=[MAP('abc', 123, 'def', 567)], EXPR$2=[ROW(10, 15, 20.23)])
 └─ Values(tuples=[[{ }]])
`,
	},
	{
		"join",
		`SELECT f.a, x FROM foo f JOIN bar ON f.a = bar.x`,
		`Project(a=[$0], x=[$3])
 └─ Join(condition=[=($0, $3)], joinType=[inner])
     ├─ Scan(table=[default.foo])
     └─ Scan(table=[default.bar])
`,
	},
	{
		"comma join",
		`SELECT foo.a, y FROM foo, bar`,
		`Project(a=[$0], y=[$4])
 └─ Join(condition=[true], joinType=[inner])
     ├─ Scan(table=[default.foo])
     └─ Scan(table=[default.bar])
`,
	},
	{
		"filter sort and limit",
		`SELECT a, b FROM foo WHERE a > 1 ORDER BY b DESC LIMIT 10`,
		`Limit(fetch=[10])
 └─ Sort(sort0=[$1], dir0=[DESC])
     └─ Project(a=[$0], b=[$1])
         └─ Filter(condition=[>($0, 1)])
             └─ Scan(table=[default.foo])
`,
	},
	{
		"sort by a column not selected",
		`SELECT b FROM foo ORDER BY c`,
		`Project(b=[$0])
 └─ Sort(sort0=[$1], dir0=[ASC])
     └─ Project(b=[$1], $f1=[$2])
         └─ Scan(table=[default.foo])
`,
	},
	{
		"having",
		`SELECT b, max(a) FROM foo GROUP BY b HAVING count(*) > 1`,
		`Project(b=[$0], EXPR$1=[$1])
 └─ Filter(condition=[>($2, 1)])
     └─ Aggregate(group=[{0}], EXPR$1=[MAX($1)], $f2=[COUNT()])
         └─ Project(b=[$1], a=[$0])
             └─ Scan(table=[default.foo])
`,
	},
	{
		"distinct",
		`SELECT DISTINCT b FROM foo`,
		`Aggregate(group=[{0}])
 └─ Project(b=[$1])
     └─ Scan(table=[default.foo])
`,
	},
	{
		"grouped expression",
		`SELECT upper(b) AS u, count(DISTINCT a) + 1 FROM foo GROUP BY upper(b)`,
		`Project(u=[$0], EXPR$1=[+($1, 1)])
 └─ Aggregate(group=[{0}], $f1=[COUNT(DISTINCT $1)])
     └─ Project(u=[upper($1)], a=[$0])
         └─ Scan(table=[default.foo])
`,
	},
	{
		"derived table",
		`SELECT s.x FROM (SELECT a AS x FROM foo) s WHERE s.x IS NOT NULL`,
		`Project(x=[$0])
 └─ Filter(condition=[IS NOT NULL($0)])
     └─ Project(x=[$0])
         └─ Scan(table=[default.foo])
`,
	},
	{
		"struct field and map item",
		`SELECT d.name, e['k'], c[0] FROM complex`,
		`Project(name=[$3.name], EXPR$1=[ITEM($4, 'k')], EXPR$2=[ITEM($2, 0)])
 └─ Scan(table=[default.complex])
`,
	},
	{
		"map explode",
		`SELECT k, v FROM complex LATERAL VIEW explode(e) m AS k, v`,
		`Project(k=[$5], v=[$6])
 └─ Correlate(correlation=[$cor0], joinType=[inner], requiredColumns=[{4}])
     ├─ Scan(table=[default.complex])
     └─ Project(k=[$0], v=[$1])
         └─ Uncollect
             └─ Project(e=[$cor0.e])
                 └─ Values(tuples=[[{ }]])
`,
	},
}

func TestBuild(t *testing.T) {
	c := newCatalog(t)
	for _, tt := range plans {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			node, err := build(t, c, tt.query)
			require.NoError(err)
			require.Equal(tt.expected, node.String())
		})
	}
}

func TestBuildRowType(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	node, err := build(t, c, `SELECT if(a > 10, null, 15), if(a > 10, b, null), if(a > 10, null, null),
		regexp_extract(a, 'a(.*)$', 1), 1.5, 2.5BD, 10L, 3Y, 4S, 3000000000, a / 2 FROM foo`)
	require.NoError(err)

	schema := node.Schema()
	require.Len(schema, 11)

	var types []string
	for _, c := range schema {
		types = append(types, c.Type.String())
	}
	require.Equal([]string{
		"INTEGER", "VARCHAR", "INTEGER", "VARCHAR", "DOUBLE", "DECIMAL(2, 1)",
		"BIGINT", "TINYINT", "SMALLINT", "BIGINT", "DOUBLE",
	}, types)
}

func TestBuildDecimalLiterals(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	node, err := build(t, c, `SELECT 12345678901234567890123, 1234567890123456.789BD, 0.50BD`)
	require.NoError(err)
	require.Equal(`Project(EXPR$0=[12345678901234567890123], EXPR$1=[1234567890123456.789], EXPR$2=[0.50])
 └─ Values(tuples=[[{ }]])
`, node.String())

	var types []string
	for _, c := range node.Schema() {
		types = append(types, c.Type.String())
	}
	require.Equal([]string{"DECIMAL(23, 0)", "DECIMAL(19, 3)", "DECIMAL(2, 2)"}, types)
}

func TestNamedStruct(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	node, err := build(t, c, `SELECT named_struct('abc', cast(NULL as int), 'def', 150), struct(10, 15, 20.23)`)
	require.NoError(err)

	named, ok := node.Schema()[0].Type.(sql.StructType)
	require.True(ok)
	require.Len(named.Fields, 2)
	require.Equal("abc", named.Fields[0].Name)
	require.Equal(sql.Integer, named.Fields[0].Type)
	require.True(named.Fields[0].Nullable)
	require.Equal("def", named.Fields[1].Name)
	require.Equal(sql.Integer, named.Fields[1].Type)
	require.False(named.Fields[1].Nullable)

	require.Equal("STRUCT<col1: INTEGER, col2: INTEGER, col3: DOUBLE>", node.Schema()[1].Type.String())
}

func TestBuildView(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	node, err := newBuilder(t, c).BuildView("test", "tableOneView")
	require.NoError(err)
	require.Equal(`Project(EXPR$0=[com.linkedin.coral.hive.hive2rel.CoralTestUDF($0)])
 └─ Scan(table=[test.tableOne])
`, node.String())

	node, err = newBuilder(t, c).BuildView("default", "foo_view_view")
	require.NoError(err)
	require.Len(node.Schema(), 1)
	require.Equal("bcol", node.Schema()[0].Name)
	require.Equal(sql.Varchar, node.Schema()[0].Type)
}

func TestBuildErrors(t *testing.T) {
	c := newCatalog(t)
	testCases := []struct {
		query string
		kind  *errors.Kind
	}{
		{`SELECT default_foo_IsTestMemberId(a) FROM foo`, sql.ErrUnknownFunction},
		{`SELECT map('abc', 123, 'def') FROM foo`, sql.ErrArity},
		{`SELECT named_struct('abc', 1, 'def') FROM foo`, sql.ErrArity},
		{`SELECT array(1, 'a', array(1)) FROM foo`, sql.ErrTypeMismatch},
		{`SELECT a FROM self_view`, sql.ErrRecursionLimitExceeded},
		{`SELECT a FROM empty_view`, sql.ErrUnresolvedObject},
		{`SELECT a FROM mismatched_view`, sql.ErrSchemaMismatch},
		{`SELECT a FROM nope`, sql.ErrObjectNotFound},
		{`SELECT z FROM foo`, sql.ErrColumnNotFound},
		{`SELECT a FROM foo JOIN foo f ON foo.a = f.a`, sql.ErrAmbiguousColumnName},
		{`SELECT explode(c) FROM complex`, sql.ErrUnsupportedFeature},
		{`SELECT a FROM complex LATERAL VIEW posexplode(c) t AS p, x`, sql.ErrUnsupportedFeature},
		{`SELECT a FROM complex LATERAL VIEW explode(a) t AS x`, sql.ErrTypeMismatch},
		{`SELECT a FROM complex LATERAL VIEW explode(e) t AS x`, sql.ErrArity},
		{`SELECT a FROM foo WHERE sum(c) > 1`, sql.ErrInvalidAggregation},
		{`SELECT a, sum(c) FROM foo GROUP BY b`, sql.ErrInvalidAggregation},
		{`SELECT sum(count(a)) FROM foo`, sql.ErrInvalidAggregation},
		{`SELECT DISTINCT a FROM foo ORDER BY b`, sql.ErrInvalidAggregation},
		{`SELECT a FROM foo ORDER BY 3`, sql.ErrColumnNotFound},
		{`SELECT cast(c AS int) FROM complex`, sql.ErrTypeMismatch},
		{`SELECT * FROM foo WHERE b`, sql.ErrInvalidNode},
	}

	for _, tt := range testCases {
		t.Run(tt.query, func(t *testing.T) {
			require := require.New(t)
			node, err := build(t, c, tt.query)
			require.Error(err)
			require.Nil(node)
			require.True(tt.kind.Is(err), "unexpected error: %s", err)
		})
	}
}

func TestBuildViewErrors(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	_, err := newBuilder(t, c).BuildView("default", "nope")
	require.True(sql.ErrUnresolvedObject.Is(err))

	_, err = newBuilder(t, c).BuildView("default", "foo")
	require.True(sql.ErrUnresolvedObject.Is(err))

	b, err := New(context.Background(), c, Config{MaxViewDepth: 3})
	require.NoError(err)
	_, err = b.BuildView("default", "self_view")
	require.True(sql.ErrRecursionLimitExceeded.Is(err))
	require.Contains(err.Error(), "(3)")
}

type failingParser struct{}

func (failingParser) Parse(context.Context, string) (ast.Statement, error) {
	return nil, parse.ErrParse.New(0, "x", "broken")
}

func TestViewParseErrorSurfaced(t *testing.T) {
	require := require.New(t)
	c := newCatalog(t)

	b, err := New(context.Background(), c, Config{Parser: failingParser{}})
	require.NoError(err)

	_, err = b.BuildView("default", "foo_view")
	require.True(parse.ErrParse.Is(err))
}

func TestCorrelationIDsAreSequential(t *testing.T) {
	require := require.New(t)
	b := newBuilder(t, newCatalog(t))
	require.Equal(sql.CorrelationID(0), b.newCorrelation())
	require.Equal(sql.CorrelationID(1), b.newCorrelation())
}

func TestUniqueNames(t *testing.T) {
	require.Equal(t,
		[]string{"a", "A0", "b", "a1", "EXPR$4"},
		uniqueNames([]string{"a", "A", "b", "a", "EXPR$4"}),
	)
}
