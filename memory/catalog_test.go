package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
)

func TestCatalog_AddTable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := NewCatalog()

	schema := sql.Schema{
		{Name: "a", Type: sql.Integer, Nullable: true},
		{Name: "b", Type: sql.Varchar, Nullable: true},
	}
	require.NoError(c.AddTable("default", "foo", schema))

	e, err := c.LookupTable(ctx, "DEFAULT", "Foo")
	require.NoError(err)
	require.Equal("default.foo", e.QualifiedName())
	require.False(e.IsView())
	require.True(schema.Equals(e.Schema))
	require.Equal("foo", e.Schema[0].Source)

	err = c.AddTable("default", "foo", schema)
	require.True(ErrExistingObject.Is(err))

	err = c.AddView("default", "FOO", schema, "select 1")
	require.True(ErrExistingObject.Is(err))

	require.Equal([]string{"foo"}, c.Tables("default"))
	require.Empty(c.Tables("other"))
}

func TestCatalog_AddTableInvalidColumn(t *testing.T) {
	require := require.New(t)
	c := NewCatalog()

	err := c.AddTable("default", "foo", sql.Schema{{Name: "a"}})
	require.True(sql.ErrInvalidType.Is(err))
}

func TestCatalog_LookupTableNotFound(t *testing.T) {
	require := require.New(t)
	c := NewCatalog()
	require.NoError(c.AddTable("default", "foo", sql.Schema{{Name: "a", Type: sql.Integer}}))

	_, err := c.LookupTable(context.Background(), "default", "fooo")
	require.Error(err)
	require.True(sql.ErrObjectNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean foo?")

	_, err = c.LookupTable(context.Background(), "test", "foo")
	require.True(sql.ErrObjectNotFound.Is(err))
}

func TestCatalog_Views(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := NewCatalog()

	schema := sql.Schema{{Name: "a", Type: sql.Integer, Nullable: true}}
	require.NoError(c.AddView("default", "v", schema, "SELECT a FROM foo"))

	e, ok, err := c.LookupView(ctx, "default", "V")
	require.NoError(err)
	require.True(ok)
	require.True(e.IsView())
	require.Equal("SELECT a FROM foo", e.ViewText)

	_, ok, err = c.LookupView(ctx, "default", "w")
	require.NoError(err)
	require.False(ok)

	_, err = c.LookupTable(ctx, "default", "v")
	require.True(sql.ErrObjectNotFound.Is(err))
}

func TestCatalog_Functions(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := NewCatalog()

	f := &sql.FunctionEntry{
		Database: "default",
		Name:     "my_udf",
		Class:    "com.example.MyUDF",
		MinArgs:  1,
		MaxArgs:  2,
	}
	require.NoError(c.AddFunction(f))
	require.True(ErrExistingObject.Is(c.AddFunction(f)))

	res, ok, err := c.LookupFunction(ctx, "Default", "MY_UDF")
	require.NoError(err)
	require.True(ok)
	require.Equal(f, res)
	require.True(res.AcceptsArity(2))
	require.False(res.AcceptsArity(3))

	_, ok, err = c.LookupFunction(ctx, "test", "my_udf")
	require.NoError(err)
	require.False(ok)
}
