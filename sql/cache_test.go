package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	tables    map[string]*CatalogEntry
	functions map[string]*FunctionEntry
	calls     map[string]int
}

func (c *fakeCatalog) LookupTable(_ context.Context, db, name string) (*CatalogEntry, error) {
	c.calls["table"]++
	if e, ok := c.tables[db+"."+name]; ok {
		return e, nil
	}
	return nil, ErrObjectNotFound.New(db, name)
}

func (c *fakeCatalog) LookupView(_ context.Context, db, name string) (*CatalogEntry, bool, error) {
	c.calls["view"]++
	return nil, false, nil
}

func (c *fakeCatalog) LookupFunction(_ context.Context, db, name string) (*FunctionEntry, bool, error) {
	c.calls["function"]++
	f, ok := c.functions[db+"."+name]
	return f, ok, nil
}

func TestCachedCatalog(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	foo := &CatalogEntry{Database: "default", Name: "foo", Schema: Schema{{Name: "a", Type: Integer}}}
	fn := &FunctionEntry{Database: "default", Name: "f", Class: "com.example.F", MinArgs: 1, MaxArgs: 1}
	inner := &fakeCatalog{
		tables:    map[string]*CatalogEntry{"default.foo": foo},
		functions: map[string]*FunctionEntry{"default.f": fn},
		calls:     make(map[string]int),
	}

	c, err := NewCachedCatalog(inner, 0)
	require.NoError(err)

	for _, name := range []string{"foo", "FOO", "foo"} {
		e, err := c.LookupTable(ctx, "default", name)
		require.NoError(err)
		require.Same(foo, e)
	}
	require.Equal(1, inner.calls["table"])

	for i := 0; i < 2; i++ {
		_, err = c.LookupTable(ctx, "default", "bar")
		require.True(ErrObjectNotFound.Is(err))
	}
	require.Equal(3, inner.calls["table"])

	for i := 0; i < 2; i++ {
		_, ok, err := c.LookupView(ctx, "default", "foo")
		require.NoError(err)
		require.False(ok)
	}
	require.Equal(2, inner.calls["view"])

	for i := 0; i < 2; i++ {
		f, ok, err := c.LookupFunction(ctx, "default", "f")
		require.NoError(err)
		require.True(ok)
		require.Same(fn, f)
	}
	require.Equal(1, inner.calls["function"])
}

func TestCachedCatalogEviction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	inner := &fakeCatalog{
		tables: map[string]*CatalogEntry{
			"default.a": {Database: "default", Name: "a"},
			"default.b": {Database: "default", Name: "b"},
		},
		calls: make(map[string]int),
	}

	c, err := NewCachedCatalog(inner, 1)
	require.NoError(err)

	for _, name := range []string{"a", "b", "a"} {
		_, err := c.LookupTable(ctx, "default", name)
		require.NoError(err)
	}
	require.Equal(3, inner.calls["table"])
}

func TestCacheKey(t *testing.T) {
	require := require.New(t)

	k1, err := CacheKey(cacheKey{"table", "default", "foo"})
	require.NoError(err)
	k2, err := CacheKey(cacheKey{"table", "default", "foo"})
	require.NoError(err)
	k3, err := CacheKey(cacheKey{"view", "default", "foo"})
	require.NoError(err)

	require.Equal(k1, k2)
	require.NotEqual(k1, k3)
}
