package planbuilder

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/internal/similartext"
	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// scopeColumn is the definition of a column visible in a scope. db and
// table are the qualifiers it can be referenced with.
type scopeColumn struct {
	db    string
	table string
	name  string
}

// scope tracks the relation built so far and the names its columns can be
// referenced by. cols are aligned with the schema of node.
type scope struct {
	b    *Builder
	node sql.Node
	cols []scopeColumn
	// groupBy is set in the scope of an aggregation output.
	groupBy *groupBy
}

// newScope creates a scope for the node whose columns are all qualified by
// the same relation name.
func (b *Builder) newScope(node sql.Node, db, table string) *scope {
	schema := node.Schema()
	cols := make([]scopeColumn, len(schema))
	for i, c := range schema {
		cols[i] = scopeColumn{db: db, table: table, name: c.Name}
	}
	return &scope{b: b, node: node, cols: cols}
}

func (s *scope) handleErr(err error) {
	s.b.handleErr(err)
}

// withNode returns a scope with the same columns over a node with the same
// row type.
func (s *scope) withNode(node sql.Node) *scope {
	return &scope{b: s.b, node: node, cols: s.cols, groupBy: s.groupBy}
}

// join returns the scope of the concatenation of both scopes' columns.
func (s *scope) join(right *scope, node sql.Node) *scope {
	cols := make([]scopeColumn, 0, len(s.cols)+len(right.cols))
	cols = append(cols, s.cols...)
	cols = append(cols, right.cols...)
	return &scope{b: s.b, node: node, cols: cols}
}

// resolveColumn returns the index of the column with the given name and
// qualifiers, which may be empty. Names are matched case insensitively.
func (s *scope) resolveColumn(db, table, name string) (int, bool) {
	found := -1
	var tables []string
	for i, c := range s.cols {
		if !strings.EqualFold(c.name, name) ||
			(table != "" && !strings.EqualFold(c.table, table)) ||
			(db != "" && !strings.EqualFold(c.db, db)) {
			continue
		}

		if found >= 0 {
			if len(tables) == 0 {
				tables = append(tables, s.cols[found].table)
			}
			tables = append(tables, c.table)
			continue
		}
		found = i
	}

	if len(tables) > 0 {
		s.handleErr(sql.ErrAmbiguousColumnName.New(name, tables))
	}
	return found, found >= 0
}

// resolveIdent resolves a possibly qualified name to a column index and the
// struct field path that follows it. Longer qualifiers are tried first.
func (s *scope) resolveIdent(parts []string) (int, []string) {
	if len(parts) >= 3 {
		if i, ok := s.resolveColumn(parts[0], parts[1], parts[2]); ok {
			return i, parts[3:]
		}
	}

	if len(parts) >= 2 && s.hasTable(parts[0]) {
		if i, ok := s.resolveColumn("", parts[0], parts[1]); ok {
			return i, parts[2:]
		}
	}

	if i, ok := s.resolveColumn("", "", parts[0]); ok {
		return i, parts[1:]
	}

	name := strings.Join(parts, ".")
	s.handleErr(sql.ErrColumnNotFound.New(name + similartext.Find(s.names(), parts[len(parts)-1])))
	return -1, nil
}

func (s *scope) hasTable(table string) bool {
	for _, c := range s.cols {
		if strings.EqualFold(c.table, table) {
			return true
		}
	}
	return false
}

func (s *scope) names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.name
	}
	return names
}

// field returns a reference to the i-th column of the scope.
func (s *scope) field(i int) *expression.GetField {
	return newField(i, s.node.Schema()[i])
}

func newField(i int, c *sql.Column) *expression.GetField {
	return expression.NewGetField(i, c.Type, c.Name, c.Nullable)
}

// columnIdent returns the most qualified name of the i-th column.
func (s *scope) columnIdent(i int) *ast.Ident {
	c := s.cols[i]
	switch {
	case c.db != "" && c.table != "":
		return &ast.Ident{Parts: []string{c.db, c.table, c.name}}
	case c.table != "":
		return &ast.Ident{Parts: []string{c.table, c.name}}
	default:
		return &ast.Ident{Parts: []string{c.name}}
	}
}

// starColumns returns the indexes of the columns matched by * or
// qualifier.*.
func (s *scope) starColumns(qualifier string) []int {
	var res []int
	for i, c := range s.cols {
		if qualifier == "" || strings.EqualFold(c.table, qualifier) {
			res = append(res, i)
		}
	}

	if qualifier != "" && len(res) == 0 {
		s.handleErr(sql.ErrColumnNotFound.New(fmt.Sprintf("%s.*", qualifier)))
	}
	return res
}
