package metastore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-hive2rel.v0"
	"gopkg.in/src-d/go-hive2rel.v0/memory"
	"gopkg.in/src-d/go-hive2rel.v0/metastore"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

func newStore(t *testing.T) *metastore.Store {
	t.Helper()
	s, err := metastore.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func importFixtures(t *testing.T, s *metastore.Store) {
	t.Helper()
	f, err := os.Open("../testdata/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	defs, err := memory.ParseDefinitions(f)
	require.NoError(t, err)
	require.NoError(t, s.Import(defs))
}

func TestStoreLookups(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStore(t)
	importFixtures(t, s)

	complex, err := s.LookupTable(ctx, "DEFAULT", "Complex")
	require.NoError(err)
	require.Equal("default", complex.Database)
	require.Len(complex.Schema, 5)
	require.Equal("MAP<VARCHAR, INTEGER>", complex.Schema[4].Type.String())
	require.True(complex.Schema[4].Nullable)

	_, err = s.LookupTable(ctx, "default", "fo")
	require.True(sql.ErrObjectNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean")

	v, ok, err := s.LookupView(ctx, "default", "foo_view")
	require.NoError(err)
	require.True(ok)
	require.Equal("SELECT b AS bcol, sum(c) AS sum_c FROM foo GROUP BY b", v.ViewText)

	empty, ok, err := s.LookupView(ctx, "default", "empty_view")
	require.NoError(err)
	require.True(ok)
	require.Empty(empty.ViewText)

	_, ok, err = s.LookupView(ctx, "default", "foo")
	require.NoError(err)
	require.False(ok)

	fn, ok, err := s.LookupFunction(ctx, "test", "TEST_TABLEONEVIEW_LESSTHANHUNDRED")
	require.NoError(err)
	require.True(ok)
	require.Equal("com.linkedin.coral.hive.hive2rel.CoralTestUDF", fn.Class)
	require.Equal(sql.Boolean, fn.ReturnType)
	require.Equal(1, fn.MaxArgs)

	tables, err := s.Tables("default")
	require.NoError(err)
	require.Equal([]string{"bar", "complex", "foo"}, tables)
}

func TestStoreReplaceAndDelete(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStore(t)

	schema := sql.Schema{{Name: "a", Type: sql.Integer, Nullable: true, Source: "t"}}
	require.NoError(s.PutTable(&sql.CatalogEntry{Database: "default", Name: "t", Schema: schema}))
	require.NoError(s.PutView(&sql.CatalogEntry{Database: "default", Name: "t", Schema: schema, ViewText: "SELECT 1 AS a"}))

	_, err := s.LookupTable(ctx, "default", "t")
	require.True(sql.ErrObjectNotFound.Is(err))

	_, ok, err := s.LookupView(ctx, "default", "t")
	require.NoError(err)
	require.True(ok)

	deleted, err := s.Delete("default", "T")
	require.NoError(err)
	require.True(deleted)

	deleted, err = s.Delete("default", "t")
	require.NoError(err)
	require.False(deleted)
}

func TestStoreImportErrors(t *testing.T) {
	require := require.New(t)
	s := newStore(t)

	err := s.Import(&memory.Definitions{
		Tables: []memory.TableDefinition{
			{Name: "ok", Columns: []memory.ColumnDefinition{{Name: "a", Type: "int"}}},
			{Name: "bad", Columns: []memory.ColumnDefinition{{Name: "a", Type: "nope"}}},
		},
		Functions: []memory.FunctionDefinition{{Name: "f"}},
	})
	require.Error(err)
	require.Contains(err.Error(), "bad")
	require.Contains(err.Error(), "f")

	_, err = s.LookupTable(context.Background(), "default", "ok")
	require.NoError(err)
}

func TestStoreExportAndReopen(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := metastore.Open(path)
	require.NoError(err)
	importFixtures(t, s)

	defs, err := s.Export()
	require.NoError(err)
	require.Len(defs.Tables, 4)
	require.Len(defs.Views, 6)
	require.Len(defs.Functions, 1)
	require.NoError(s.Close())

	_, err = s.LookupTable(context.Background(), "default", "foo")
	require.True(metastore.ErrStoreClosed.Is(err))

	s, err = metastore.Open(path)
	require.NoError(err)
	defer s.Close()

	c := memory.NewCatalog()
	require.NoError(c.Load(defs))

	_, err = s.LookupTable(context.Background(), "test", "tableone")
	require.NoError(err)
}

func TestConvertFromStore(t *testing.T) {
	require := require.New(t)
	s := newStore(t)
	importFixtures(t, s)

	c, err := hive2rel.NewBuilder(s).WithCatalogCache(64).Build()
	require.NoError(err)

	node, err := c.ConvertSQL(context.Background(), `SELECT avg(sum_c) FROM foo_view`)
	require.NoError(err)
	require.Equal(`Aggregate(group=[{}], EXPR$0=[AVG($0)])
 └─ Project(sum_c=[$1])
     └─ Project(bcol=[$0], sum_c=[CAST($1):DOUBLE])
         └─ Aggregate(group=[{0}], sum_c=[SUM($1)])
             └─ Project(bcol=[$1], c=[$2])
                 └─ Scan(table=[default.foo])
`, node.String())

	node, err = c.ConvertView(context.Background(), "test", "tableOneView")
	require.NoError(err)
	require.Equal(sql.Boolean, node.Schema()[0].Type)
}
