// Package planbuilder converts Hive syntax trees into relational algebra.
package planbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression/function"
	"gopkg.in/src-d/go-hive2rel.v0/sql/parse"
)

// DefaultMaxViewDepth is the default limit of nested view expansions.
const DefaultMaxViewDepth = 16

// Parser parses the stored text of views.
type Parser interface {
	Parse(ctx context.Context, query string) (ast.Statement, error)
}

// Config holds the collaborators and settings of a Builder. Zero values are
// replaced with defaults.
type Config struct {
	// Registry resolves function calls. A registry over the catalog with
	// the default built-ins is created when nil.
	Registry *function.Registry
	// Parser parses view definitions, parse.Parser by default.
	Parser Parser
	// Database is the current database, "default" if empty.
	Database string
	// MaxViewDepth bounds the nesting of view expansions.
	MaxViewDepth int
	// Log receives debug messages and warnings of the conversion.
	Log *logrus.Entry
}

// Builder converts a single statement or view into an algebra tree. It is
// not safe for concurrent use; create one per conversion.
type Builder struct {
	ctx          context.Context
	catalog      sql.Catalog
	registry     *function.Registry
	parser       Parser
	log          *logrus.Entry
	database     string
	maxViewDepth int

	// views is the stack of views being expanded.
	views        []string
	correlations sql.CorrelationID
}

// New creates a builder for one conversion.
func New(ctx context.Context, catalog sql.Catalog, cfg Config) (*Builder, error) {
	b := &Builder{
		ctx:          ctx,
		catalog:      catalog,
		registry:     cfg.Registry,
		parser:       cfg.Parser,
		log:          cfg.Log,
		database:     cfg.Database,
		maxViewDepth: cfg.MaxViewDepth,
	}

	if b.registry == nil {
		r, err := function.NewRegistry(catalog)
		if err != nil {
			return nil, err
		}
		b.registry = r
	}

	if b.parser == nil {
		b.parser = parse.Parser{}
	}

	if b.log == nil {
		b.log = logrus.NewEntry(logrus.StandardLogger())
	}

	if b.database == "" {
		b.database = "default"
	}

	if b.maxViewDepth <= 0 {
		b.maxViewDepth = DefaultMaxViewDepth
	}
	return b, nil
}

type buildErr struct {
	err error
}

// handleErr aborts the conversion with the given error. It is recovered by
// the exported entry points.
func (b *Builder) handleErr(err error) {
	panic(buildErr{err})
}

func recoverBuildErr(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(buildErr)
		if !ok {
			panic(r)
		}
		*err = e.err
	}
}

// Build converts a statement. On error no tree is returned.
func (b *Builder) Build(stmt ast.Statement) (node sql.Node, err error) {
	defer recoverBuildErr(&err)

	sel, ok := stmt.(*ast.Select)
	if !ok {
		return nil, sql.ErrUnsupportedFeature.New(fmt.Sprintf("statement %T", stmt))
	}

	b.log.WithField("database", b.database).Debugf("building query: %s", sel)
	return b.buildSelect(sel).node, nil
}

// BuildView converts the stored definition of a view, casting its output
// to the declared schema.
func (b *Builder) BuildView(db, name string) (node sql.Node, err error) {
	defer recoverBuildErr(&err)

	entry, ok := b.lookupView(db, name)
	if !ok {
		return nil, sql.ErrUnresolvedObject.New(db, name, "view does not exist")
	}
	return b.expandView(entry), nil
}

// newCorrelation allocates the next correlation id of the conversion.
func (b *Builder) newCorrelation() sql.CorrelationID {
	id := b.correlations
	b.correlations++
	return id
}

func (b *Builder) lookupView(db, name string) (*sql.CatalogEntry, bool) {
	entry, ok, err := b.catalog.LookupView(b.ctx, db, name)
	if err != nil {
		b.handleErr(sql.ErrCatalog.Wrap(err, db+"."+name, err.Error()))
	}
	return entry, ok
}

func (b *Builder) lookupTable(db, name string) *sql.CatalogEntry {
	entry, err := b.catalog.LookupTable(b.ctx, db, name)
	if err != nil {
		if !sql.ErrObjectNotFound.Is(err) {
			err = sql.ErrCatalog.Wrap(err, db+"."+name, err.Error())
		}
		b.handleErr(err)
	}
	return entry
}

// exprName returns the name of an unaliased select item: column and field
// references keep the last name of the path, anything else is
// EXPR$<position>.
func exprName(e ast.Expr, pos int) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Parts[len(id.Parts)-1]
	}
	return fmt.Sprintf("EXPR$%d", pos)
}

// uniqueNames makes the names unique, case insensitively, appending a
// numeric suffix to repeated ones.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	res := make([]string, len(names))
	for i, n := range names {
		name := n
		for j := 0; seen[strings.ToLower(name)]; j++ {
			name = fmt.Sprintf("%s%d", n, j)
		}
		seen[strings.ToLower(name)] = true
		res[i] = name
	}
	return res
}
