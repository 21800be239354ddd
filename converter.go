// Package hive2rel converts Hive SQL queries and views into relational
// algebra trees.
package hive2rel

import (
	"context"
	"os"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression/function"
	"gopkg.in/src-d/go-hive2rel.v0/sql/parse"
	"gopkg.in/src-d/go-hive2rel.v0/sql/planbuilder"
)

const debugConverterKey = "DEBUG_HIVE2REL"

// Builder provides an easy way to create a Converter with custom
// collaborators and options.
type Builder struct {
	catalog      sql.Catalog
	registry     *function.Registry
	parser       planbuilder.Parser
	database     string
	maxViewDepth int
	cacheSize    int
	debug        bool
}

// NewBuilder creates a new Builder over the given catalog.
func NewBuilder(c sql.Catalog) *Builder {
	return &Builder{catalog: c}
}

// WithDefaultDatabase sets the database unqualified names are resolved in.
func (cb *Builder) WithDefaultDatabase(db string) *Builder {
	cb.database = db
	return cb
}

// WithMaxViewDepth sets how deep views can be nested before the conversion
// fails.
func (cb *Builder) WithMaxViewDepth(depth int) *Builder {
	cb.maxViewDepth = depth
	return cb
}

// WithParser replaces the parser of queries and view definitions.
func (cb *Builder) WithParser(p planbuilder.Parser) *Builder {
	cb.parser = p
	return cb
}

// WithRegistry replaces the function registry. It is shared by all the
// conversions of the converter.
func (cb *Builder) WithRegistry(r *function.Registry) *Builder {
	cb.registry = r
	return cb
}

// WithCatalogCache makes the Converter keep up to size catalog entries in
// an LRU cache. Entries are never invalidated, so this is only meant for
// catalogs that do not change while the Converter is in use.
func (cb *Builder) WithCatalogCache(size int) *Builder {
	cb.cacheSize = size
	return cb
}

// WithDebug activates debug logging on the Converter.
func (cb *Builder) WithDebug() *Builder {
	cb.debug = true
	return cb
}

// Build creates the Converter.
func (cb *Builder) Build() (*Converter, error) {
	_, debug := os.LookupEnv(debugConverterKey)

	c := &Converter{
		Catalog:      cb.catalog,
		Registry:     cb.registry,
		Parser:       cb.parser,
		Database:     cb.database,
		MaxViewDepth: cb.maxViewDepth,
		Debug:        debug || cb.debug,
	}

	if cb.cacheSize > 0 {
		cached, err := sql.NewCachedCatalog(c.Catalog, cb.cacheSize)
		if err != nil {
			return nil, err
		}
		c.Catalog = cached
	}

	if c.Registry == nil {
		r, err := function.NewRegistry(c.Catalog)
		if err != nil {
			return nil, err
		}
		c.Registry = r
	}

	if c.Parser == nil {
		c.Parser = parse.Parser{}
	}

	if c.Database == "" {
		c.Database = "default"
	}

	if c.MaxViewDepth <= 0 {
		c.MaxViewDepth = planbuilder.DefaultMaxViewDepth
	}
	return c, nil
}

// Converter turns Hive queries and views into algebra trees. A Converter is
// safe for concurrent use; every conversion gets its own planbuilder.
type Converter struct {
	// Catalog resolves tables, views and user functions.
	Catalog sql.Catalog
	// Registry resolves function calls.
	Registry *function.Registry
	// Parser parses queries and view definitions.
	Parser planbuilder.Parser
	// Database is the current database of conversions.
	Database string
	// MaxViewDepth bounds nested view expansion.
	MaxViewDepth int
	// Whether to log debug messages and the converted trees.
	Debug bool
}

// New creates a Converter with the default configuration.
func New(c sql.Catalog) (*Converter, error) {
	return NewBuilder(c).Build()
}

// ConvertSQL parses and converts a query.
func (c *Converter) ConvertSQL(ctx context.Context, query string) (sql.Node, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "hive2rel.convert")
	span.SetTag("query", query)
	defer span.Finish()

	log := c.newLogEntry(logrus.Fields{"database": c.Database})
	c.Log(log, "converting query: %s", query)

	stmt, err := c.Parser.Parse(ctx, query)
	if err != nil {
		log.WithError(err).Debug("unable to parse query")
		return nil, err
	}
	return c.convert(ctx, log, stmt)
}

// ConvertStatement converts an already parsed statement.
func (c *Converter) ConvertStatement(ctx context.Context, stmt ast.Statement) (sql.Node, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "hive2rel.convert")
	span.SetTag("query", stmt.String())
	defer span.Finish()

	return c.convert(ctx, c.newLogEntry(logrus.Fields{"database": c.Database}), stmt)
}

func (c *Converter) convert(ctx context.Context, log *logrus.Entry, stmt ast.Statement) (sql.Node, error) {
	b, err := c.planBuilder(ctx, log)
	if err != nil {
		return nil, err
	}

	node, err := b.Build(stmt)
	if err != nil {
		log.WithError(err).Debug("conversion failed")
		return nil, err
	}

	c.LogNode(log, node)
	return node, nil
}

// ConvertView converts the stored definition of a view, with its output
// cast to the declared schema of the view.
func (c *Converter) ConvertView(ctx context.Context, db, view string) (sql.Node, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "hive2rel.convert_view")
	span.SetTag("database", db)
	span.SetTag("view", view)
	defer span.Finish()

	log := c.newLogEntry(logrus.Fields{"database": db, "view": view})
	c.Log(log, "converting view %s.%s", db, view)

	b, err := c.planBuilder(ctx, log)
	if err != nil {
		return nil, err
	}

	node, err := b.BuildView(db, view)
	if err != nil {
		log.WithError(err).Debug("conversion failed")
		return nil, err
	}

	c.LogNode(log, node)
	return node, nil
}

func (c *Converter) planBuilder(ctx context.Context, log *logrus.Entry) (*planbuilder.Builder, error) {
	return planbuilder.New(ctx, c.Catalog, planbuilder.Config{
		Registry:     c.Registry,
		Parser:       c.Parser,
		Database:     c.Database,
		MaxViewDepth: c.MaxViewDepth,
		Log:          log,
	})
}
