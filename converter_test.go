package hive2rel_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"gopkg.in/src-d/go-hive2rel.v0"
	"gopkg.in/src-d/go-hive2rel.v0/memory"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression/function"
	"gopkg.in/src-d/go-hive2rel.v0/sql/parse"
	"gopkg.in/src-d/go-hive2rel.v0/sql/planbuilder"
)

func newCatalog(t *testing.T) *memory.Catalog {
	t.Helper()
	f, err := os.Open("testdata/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	c, err := memory.LoadYAML(f)
	require.NoError(t, err)
	return c
}

func newConverter(t *testing.T) *hive2rel.Converter {
	t.Helper()
	c, err := hive2rel.New(newCatalog(t))
	require.NoError(t, err)
	return c
}

var queries = []struct {
	query    string
	expected string
}{
	{
		`SELECT a FROM foo`,
		`Project(a=[$0])
 └─ Scan(table=[default.foo])
`,
	},
	{
		`SELECT * FROM test.tableOne WHERE b = 'x'`,
		`Project(a=[$0], b=[$1])
 └─ Filter(condition=[=($1, 'x')])
     └─ Scan(table=[test.tableOne])
`,
	},
	{
		`SELECT bcol FROM foo_view_view`,
		`Project(bcol=[$0])
 └─ Project(bcol=[$0])
     └─ Filter(condition=[>($1, 10)])
         └─ Project(bcol=[$0], sum_c=[CAST($1):DOUBLE])
             └─ Aggregate(group=[{0}], sum_c=[SUM($1)])
                 └─ Project(bcol=[$1], c=[$2])
                     └─ Scan(table=[default.foo])
`,
	},
}

func TestConvertSQL(t *testing.T) {
	c := newConverter(t)
	for _, tt := range queries {
		t.Run(tt.query, func(t *testing.T) {
			require := require.New(t)
			node, err := c.ConvertSQL(context.Background(), tt.query)
			require.NoError(err)
			require.Equal(tt.expected, node.String())
		})
	}
}

func TestConvertStatement(t *testing.T) {
	require := require.New(t)
	c := newConverter(t)

	stmt, err := parse.Parse(context.Background(), `SELECT a FROM foo`)
	require.NoError(err)

	node, err := c.ConvertStatement(context.Background(), stmt)
	require.NoError(err)
	require.Equal(queries[0].expected, node.String())
}

func TestConvertView(t *testing.T) {
	require := require.New(t)
	c := newConverter(t)

	node, err := c.ConvertView(context.Background(), "test", "tableOneView")
	require.NoError(err)
	require.Equal(`Project(EXPR$0=[com.linkedin.coral.hive.hive2rel.CoralTestUDF($0)])
 └─ Scan(table=[test.tableOne])
`, node.String())

	schema := node.Schema()
	require.Len(schema, 1)
	require.Equal("EXPR$0", schema[0].Name)
	require.Equal(sql.Boolean, schema[0].Type)

	_, err = c.ConvertView(context.Background(), "default", "nope")
	require.True(sql.ErrUnresolvedObject.Is(err))
}

func TestConvertSQLErrors(t *testing.T) {
	require := require.New(t)
	c := newConverter(t)

	_, err := c.ConvertSQL(context.Background(), `SELECT FROM WHERE`)
	require.True(parse.ErrParse.Is(err), "unexpected error: %s", err)

	_, err = c.ConvertSQL(context.Background(), `SELECT default_foo_IsTestMemberId(a) FROM foo`)
	require.True(sql.ErrUnknownFunction.Is(err), "unexpected error: %s", err)
}

func TestBuilderDefaults(t *testing.T) {
	require := require.New(t)
	c := newConverter(t)

	require.Equal("default", c.Database)
	require.Equal(planbuilder.DefaultMaxViewDepth, c.MaxViewDepth)
	require.NotNil(c.Registry)
	require.Equal(parse.Parser{}, c.Parser)
}

func TestBuilderOptions(t *testing.T) {
	require := require.New(t)
	catalog := newCatalog(t)

	registry, err := function.NewRegistry(catalog)
	require.NoError(err)

	c, err := hive2rel.NewBuilder(catalog).
		WithDefaultDatabase("test").
		WithMaxViewDepth(3).
		WithRegistry(registry).
		WithDebug().
		Build()
	require.NoError(err)

	require.Equal("test", c.Database)
	require.Equal(3, c.MaxViewDepth)
	require.True(c.Debug)
	require.Same(registry, c.Registry)

	node, err := c.ConvertSQL(context.Background(), `SELECT b FROM tableOne`)
	require.NoError(err)
	require.Equal(`Project(b=[$1])
 └─ Scan(table=[test.tableOne])
`, node.String())

	_, err = c.ConvertSQL(context.Background(), `SELECT a FROM foo`)
	require.True(sql.ErrObjectNotFound.Is(err), "unexpected error: %s", err)

	_, err = c.ConvertView(context.Background(), "default", "self_view")
	require.True(sql.ErrRecursionLimitExceeded.Is(err))
	require.Contains(err.Error(), "(3)")
}

type constParser struct{ stmt ast.Statement }

func (p constParser) Parse(context.Context, string) (ast.Statement, error) {
	return p.stmt, nil
}

func TestBuilderWithParser(t *testing.T) {
	require := require.New(t)
	catalog := newCatalog(t)

	stmt, err := parse.Parse(context.Background(), `SELECT a FROM foo`)
	require.NoError(err)

	c, err := hive2rel.NewBuilder(catalog).WithParser(constParser{stmt}).Build()
	require.NoError(err)

	node, err := c.ConvertSQL(context.Background(), `not even sql`)
	require.NoError(err)
	require.Equal(queries[0].expected, node.String())
}

func TestDebugFromEnv(t *testing.T) {
	require := require.New(t)
	t.Setenv("DEBUG_HIVE2REL", "true")

	c, err := hive2rel.New(newCatalog(t))
	require.NoError(err)
	require.True(c.Debug)

	node, err := c.ConvertSQL(context.Background(), queries[2].query)
	require.NoError(err)
	require.Equal(queries[2].expected, node.String())
}

func TestConcurrentConversions(t *testing.T) {
	require := require.New(t)
	c := newConverter(t)

	results := make([]string, 32)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			query := fmt.Sprintf(`SELECT a, ccol FROM complex LATERAL VIEW explode(c) t AS ccol WHERE a > %d`, i)
			node, err := c.ConvertSQL(context.Background(), query)
			if err != nil {
				return err
			}
			results[i] = node.String()
			return nil
		})
	}
	require.NoError(g.Wait())

	for i, r := range results {
		// correlation ids start from zero in every conversion
		require.Contains(r, "$cor0.c")
		require.Contains(r, fmt.Sprintf(">($0, %d)", i))
	}
}

type countingCatalog struct {
	sql.Catalog
	mu      sync.Mutex
	lookups int
}

func (c *countingCatalog) LookupTable(ctx context.Context, db, name string) (*sql.CatalogEntry, error) {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
	return c.Catalog.LookupTable(ctx, db, name)
}

func TestCatalogCache(t *testing.T) {
	require := require.New(t)
	catalog := &countingCatalog{Catalog: newCatalog(t)}

	c, err := hive2rel.NewBuilder(catalog).WithCatalogCache(16).Build()
	require.NoError(err)

	for i := 0; i < 3; i++ {
		node, err := c.ConvertSQL(context.Background(), `SELECT a FROM foo`)
		require.NoError(err)
		require.Equal(queries[0].expected, node.String())
	}
	require.Equal(1, catalog.lookups)
}
