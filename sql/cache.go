package sql

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/hashstructure"
)

// DefaultCacheSize is the number of entries kept by a cached catalog when no
// size is given.
const DefaultCacheSize = 1024

type cacheKey struct {
	Kind string
	DB   string
	Name string
}

// CacheKey returns a hash of the given value to be used as key in a cache.
func CacheKey(v interface{}) (uint64, error) {
	return hashstructure.Hash(v, nil)
}

type cachedCatalog struct {
	Catalog
	cache *lru.Cache
}

// NewCachedCatalog wraps a catalog with an LRU cache of the entries it
// returns. Only found entries are cached; misses and errors always reach the
// wrapped catalog. Conversions never cache catalog entries on their own, so
// this is how a caller opts in.
func NewCachedCatalog(c Catalog, size int) (Catalog, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &cachedCatalog{c, cache}, nil
}

func (c *cachedCatalog) get(kind, db, name string) (interface{}, uint64, bool) {
	key, err := CacheKey(cacheKey{kind, strings.ToLower(db), strings.ToLower(name)})
	if err != nil {
		return nil, 0, false
	}

	v, ok := c.cache.Get(key)
	return v, key, ok
}

func (c *cachedCatalog) LookupTable(ctx context.Context, db, name string) (*CatalogEntry, error) {
	v, key, ok := c.get("table", db, name)
	if ok {
		return v.(*CatalogEntry), nil
	}

	e, err := c.Catalog.LookupTable(ctx, db, name)
	if err != nil {
		return nil, err
	}

	if key != 0 {
		c.cache.Add(key, e)
	}
	return e, nil
}

func (c *cachedCatalog) LookupView(ctx context.Context, db, name string) (*CatalogEntry, bool, error) {
	v, key, ok := c.get("view", db, name)
	if ok {
		return v.(*CatalogEntry), true, nil
	}

	e, ok, err := c.Catalog.LookupView(ctx, db, name)
	if err != nil || !ok {
		return e, ok, err
	}

	if key != 0 {
		c.cache.Add(key, e)
	}
	return e, true, nil
}

func (c *cachedCatalog) LookupFunction(ctx context.Context, db, name string) (*FunctionEntry, bool, error) {
	v, key, ok := c.get("function", db, name)
	if ok {
		return v.(*FunctionEntry), true, nil
	}

	f, ok, err := c.Catalog.LookupFunction(ctx, db, name)
	if err != nil || !ok {
		return f, ok, err
	}

	if key != 0 {
		c.cache.Add(key, f)
	}
	return f, true, nil
}
