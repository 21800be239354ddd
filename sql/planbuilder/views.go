package planbuilder

import (
	"fmt"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/plan"
)

// expandView converts the stored query of a view in place of its
// reference. The query is converted with the database of the view as the
// current database, and its output is cast to the declared schema.
func (b *Builder) expandView(entry *sql.CatalogEntry) sql.Node {
	name := entry.QualifiedName()
	if len(b.views) >= b.maxViewDepth {
		b.handleErr(sql.ErrRecursionLimitExceeded.New(name, b.maxViewDepth))
	}

	if strings.TrimSpace(entry.ViewText) == "" {
		b.handleErr(sql.ErrUnresolvedObject.New(entry.Database, entry.Name, "view has no stored query"))
	}

	span, ctx := opentracing.StartSpanFromContext(b.ctx, "planbuilder.expand_view")
	span.SetTag("view", name)
	span.SetTag("depth", len(b.views))
	defer span.Finish()

	stmt, err := b.parser.Parse(ctx, entry.ViewText)
	if err != nil {
		b.handleErr(err)
	}

	sel, ok := stmt.(*ast.Select)
	if !ok {
		b.handleErr(sql.ErrUnsupportedFeature.New(fmt.Sprintf("view %s is not a SELECT", name)))
	}

	prevCtx, prevDB := b.ctx, b.database
	b.ctx, b.database = ctx, entry.Database
	b.views = append(b.views, name)
	defer func() {
		b.ctx, b.database = prevCtx, prevDB
		b.views = b.views[:len(b.views)-1]
	}()

	b.log.WithField("view", name).Debugf("expanding view at depth %d", len(b.views))

	return b.castToSchema(entry, b.buildSelect(sel).node)
}

// castToSchema projects the converted view body onto the declared schema,
// matching columns by name and casting those whose type differs. No
// Project is added if the body already has the declared schema.
func (b *Builder) castToSchema(entry *sql.CatalogEntry, node sql.Node) sql.Node {
	schema := node.Schema()
	byName := make(map[string]int, len(schema))
	for i, c := range schema {
		byName[strings.ToLower(c.Name)] = i
	}

	declared := make(map[string]bool, len(entry.Schema))
	for _, c := range entry.Schema {
		declared[strings.ToLower(c.Name)] = true
	}

	for _, c := range schema {
		if !declared[strings.ToLower(c.Name)] {
			b.handleErr(sql.ErrSchemaMismatch.New(entry.QualifiedName(),
				fmt.Sprintf("column %s of the query is not declared in %s", c.Name, entry.Schema)))
		}
	}

	var (
		names   = make([]string, len(entry.Schema))
		exprs   = make([]sql.Expression, len(entry.Schema))
		changed = len(schema) != len(entry.Schema)
	)
	for i, c := range entry.Schema {
		j, ok := byName[strings.ToLower(c.Name)]
		if !ok {
			b.handleErr(sql.ErrSchemaMismatch.New(entry.QualifiedName(),
				fmt.Sprintf("declared column %s is missing from the query output %s", c.Name, schema)))
		}

		field := newField(j, schema[j])
		names[i] = c.Name
		exprs[i] = b.cast(field, c.Type)
		changed = changed || j != i || c.Name != schema[j].Name || exprs[i] != sql.Expression(field)
	}

	if !changed {
		return node
	}

	project, err := plan.NewProject(names, exprs, node)
	if err != nil {
		b.handleErr(err)
	}
	return project
}
