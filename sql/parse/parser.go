package parse

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
)

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != eofToken {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	t := p.peek()
	return ErrParse.New(t.pos, t.String(), fmt.Sprintf(format, args...))
}

func (p *parser) isKeyword(kws ...string) bool {
	t := p.peek()
	if t.kind != keywordToken {
		return false
	}

	for _, kw := range kws {
		if t.text == kw {
			return true
		}
	}
	return false
}

func (p *parser) matchKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.matchKeyword(kw) {
		return p.errorf("expecting %s", kw)
	}
	return nil
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == opToken && t.text == op
}

func (p *parser) matchOp(op string) bool {
	if p.isOp(op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(op string) error {
	if !p.matchOp(op) {
		return p.errorf("expecting %q", op)
	}
	return nil
}

// isWord reports whether the next token is the given non reserved word.
func (p *parser) isWord(word string) bool {
	t := p.peek()
	return t.kind == identToken && strings.EqualFold(t.text, word)
}

func (p *parser) ident() (string, error) {
	t := p.peek()
	if t.kind != identToken {
		return "", p.errorf("expecting identifier")
	}
	p.next()
	return t.text, nil
}

// alias reads an optional alias, introduced or not by AS.
func (p *parser) alias() (string, error) {
	if p.matchKeyword("AS") {
		return p.ident()
	}

	if p.peek().kind == identToken {
		return p.next().text, nil
	}
	return "", nil
}

func (p *parser) parseSelect() (*ast.Select, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	s := new(ast.Select)
	if p.matchKeyword("DISTINCT") {
		s.Distinct = true
	} else {
		p.matchKeyword("ALL")
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)

		if !p.matchOp(",") {
			break
		}
	}

	var err error
	if p.matchKeyword("FROM") {
		if s.From, err = p.parseFrom(); err != nil {
			return nil, err
		}
	}

	if p.matchKeyword("WHERE") {
		if s.Where, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}

	if p.matchKeyword("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}

		if s.GroupBy, err = p.parseExprList(); err != nil {
			return nil, err
		}
	}

	if p.matchKeyword("HAVING") {
		if s.Having, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}

	if p.matchKeyword("ORDER") || p.matchKeyword("SORT") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}

		if s.OrderBy, err = p.parseOrderBy(); err != nil {
			return nil, err
		}
	}

	if p.matchKeyword("LIMIT") {
		t := p.peek()
		n, perr := strconv.ParseInt(t.text, 10, 64)
		if t.kind != numberToken || perr != nil {
			return nil, p.errorf("expecting row count")
		}
		p.next()
		s.Limit = &n
	}
	return s, nil
}

func (p *parser) parseSelectItem() (*ast.SelectItem, error) {
	if p.matchOp("*") {
		return &ast.SelectItem{Expr: new(ast.Star)}, nil
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	alias, err := p.alias()
	if err != nil {
		return nil, err
	}
	return &ast.SelectItem{Expr: e, Alias: alias}, nil
}

func (p *parser) parseOrderBy() ([]*ast.OrderItem, error) {
	var items []*ast.OrderItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		item := &ast.OrderItem{Expr: e}
		if p.matchKeyword("DESC") {
			item.Descending = true
		} else {
			p.matchKeyword("ASC")
		}

		if p.matchKeyword("NULLS") {
			first := p.isWord("first")
			if !first && !p.isWord("last") {
				return nil, p.errorf("expecting FIRST or LAST")
			}
			p.next()
			item.NullsFirst = &first
		}
		items = append(items, item)

		if !p.matchOp(",") {
			return items, nil
		}
	}
}

func (p *parser) parseFrom() (ast.TableExpr, error) {
	left, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	for {
		if p.matchOp(",") {
			right, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			left = &ast.Join{Left: left, Right: right, Kind: ast.CrossJoin}
			continue
		}

		kind, ok, err := p.parseJoinKind()
		if err != nil {
			return nil, err
		}

		if !ok {
			return left, nil
		}

		right, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}

		join := &ast.Join{Left: left, Right: right, Kind: kind}
		if p.matchKeyword("ON") {
			if join.On, err = p.parseExpr(); err != nil {
				return nil, err
			}
		} else if kind != ast.CrossJoin && kind != ast.InnerJoin {
			return nil, p.errorf("expecting ON after %s", kind)
		}

		if join.On == nil && kind == ast.InnerJoin {
			join.Kind = ast.CrossJoin
		}
		left = join
	}
}

func (p *parser) parseJoinKind() (ast.JoinKind, bool, error) {
	var kind ast.JoinKind
	switch {
	case p.matchKeyword("JOIN"):
		return ast.InnerJoin, true, nil
	case p.matchKeyword("INNER"):
		kind = ast.InnerJoin
	case p.matchKeyword("CROSS"):
		kind = ast.CrossJoin
	case p.matchKeyword("LEFT"):
		if p.isKeyword("SEMI") {
			return 0, false, p.errorf("LEFT SEMI JOIN is not supported")
		}
		kind = ast.LeftJoin
		p.matchKeyword("OUTER")
	case p.matchKeyword("RIGHT"):
		kind = ast.RightJoin
		p.matchKeyword("OUTER")
	case p.matchKeyword("FULL"):
		kind = ast.FullJoin
		p.matchKeyword("OUTER")
	default:
		return 0, false, nil
	}
	return kind, true, p.expectKeyword("JOIN")
}

// parseTableRef parses a table or derived table followed by any number of
// lateral views.
func (p *parser) parseTableRef() (ast.TableExpr, error) {
	src, err := p.parseTableSource()
	if err != nil {
		return nil, err
	}

	for p.isKeyword("LATERAL") {
		p.next()
		if src, err = p.parseLateralView(src); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func (p *parser) parseTableSource() (ast.TableExpr, error) {
	if p.matchOp("(") {
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}

		if err := p.expectOp(")"); err != nil {
			return nil, err
		}

		alias, err := p.alias()
		if err != nil {
			return nil, err
		}

		if alias == "" {
			return nil, p.errorf("derived table needs an alias")
		}
		return &ast.Subquery{Select: sel, Alias: alias}, nil
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	t := &ast.Table{Name: name}
	if p.matchOp(".") {
		t.Database = name
		if t.Name, err = p.ident(); err != nil {
			return nil, err
		}
	}

	if t.Alias, err = p.alias(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseLateralView parses VIEW [OUTER] func(args) alias [AS col, ...],
// LATERAL being already consumed.
func (p *parser) parseLateralView(src ast.TableExpr) (ast.TableExpr, error) {
	if err := p.expectKeyword("VIEW"); err != nil {
		return nil, err
	}

	lv := &ast.LateralView{Source: src, Outer: p.matchKeyword("OUTER")}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	if !p.isOp("(") {
		return nil, p.errorf("expecting table generating function call")
	}

	e, err := p.parseCall(name)
	if err != nil {
		return nil, err
	}
	lv.Func = e.(*ast.FuncCall)

	if lv.Alias, err = p.ident(); err != nil {
		return nil, err
	}

	if p.matchKeyword("AS") {
		for {
			col, err := p.ident()
			if err != nil {
				return nil, err
			}
			lv.Columns = append(lv.Columns, col)

			if !p.matchOp(",") {
				break
			}
		}
	}
	return lv, nil
}

func (p *parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)

		if !p.matchOp(",") {
			return exprs, nil
		}
	}
}

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.matchKeyword("OR") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.matchKeyword("AND") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.matchKeyword("NOT") {
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "not", Expr: e}, nil
	}
	return p.parsePredicate()
}

var comparisons = map[string]string{
	"=": "=", "==": "=", "<>": "<>", "!=": "<>",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *parser) parsePredicate() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind == opToken {
		if t.text == "<=>" {
			return nil, p.errorf("null safe equality is not supported")
		}

		if op, ok := comparisons[t.text]; ok {
			p.next()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
		}
	}

	if p.matchKeyword("IS") {
		not := p.matchKeyword("NOT")
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return &ast.IsNull{Expr: left, Not: not}, nil
	}

	not := p.isKeyword("NOT") && p.peekAt(1).kind == keywordToken
	if not {
		p.next()
	}

	switch {
	case p.isKeyword("LIKE", "RLIKE", "REGEXP"):
		op := strings.ToLower(p.next().text)
		if op == "regexp" {
			op = "rlike"
		}

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		var e ast.Expr = &ast.BinaryExpr{Op: op, Left: left, Right: right}
		if not {
			e = &ast.UnaryExpr{Op: "not", Expr: e}
		}
		return e, nil
	case p.matchKeyword("IN"):
		if err := p.expectOp("("); err != nil {
			return nil, err
		}

		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}

		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.In{Expr: left, List: list, Not: not}, nil
	case p.matchKeyword("BETWEEN"):
		low, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}

		high, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Between{Expr: left, Low: low, High: high, Not: not}, nil
	}

	if not {
		return nil, p.errorf("expecting LIKE, RLIKE, IN or BETWEEN after NOT")
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.isOp("*") || p.isOp("/") || p.isOp("%") || p.isKeyword("DIV") {
		op := strings.ToLower(p.next().text)
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.isOp("-") || p.isOp("+") {
		op := p.next().text
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if l, ok := e.(*ast.Literal); ok && op == "-" &&
			(l.Kind == ast.IntLiteral || l.Kind == ast.FloatLiteral || l.Kind == ast.DecimalLiteral) {
			return &ast.Literal{Kind: l.Kind, Value: "-" + l.Value}, nil
		}

		if op == "+" {
			return e, nil
		}
		return &ast.UnaryExpr{Op: op, Expr: e}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.matchOp("["):
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &ast.Subscript{Expr: e, Index: idx}
		case p.isOp(".") && p.peekAt(1).kind == identToken:
			p.next()
			field := p.next().text
			if id, ok := e.(*ast.Ident); ok {
				e = &ast.Ident{Parts: append(append([]string{}, id.Parts...), field)}
			} else {
				e = &ast.FieldAccess{Expr: e, Field: field}
			}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()
	switch t.kind {
	case numberToken:
		p.next()
		return numberLiteral(t.text), nil
	case stringToken:
		p.next()
		return &ast.Literal{Kind: ast.StringLiteral, Value: t.text}, nil
	case keywordToken:
		switch t.text {
		case "NULL":
			p.next()
			return &ast.Literal{Kind: ast.NullLiteral, Value: "NULL"}, nil
		case "TRUE", "FALSE":
			p.next()
			return &ast.Literal{Kind: ast.BoolLiteral, Value: t.text}, nil
		case "CASE":
			p.next()
			return p.parseCase()
		case "CAST":
			p.next()
			return p.parseCast()
		}
	case identToken:
		p.next()
		switch {
		case p.isOp("("):
			return p.parseCall(t.text)
		case p.peek().kind == stringToken && (strings.EqualFold(t.text, "date") || strings.EqualFold(t.text, "timestamp")):
			s := p.next()
			return &ast.Cast{
				Expr: &ast.Literal{Kind: ast.StringLiteral, Value: s.text},
				Type: strings.ToLower(t.text),
			}, nil
		case p.isOp(".") && p.peekAt(1).kind == opToken && p.peekAt(1).text == "*":
			p.next()
			p.next()
			return &ast.Star{Qualifier: t.text}, nil
		}
		return &ast.Ident{Parts: []string{t.text}}, nil
	case opToken:
		if t.text == "(" {
			p.next()
			if p.isKeyword("SELECT") {
				return nil, p.errorf("scalar subqueries are not supported")
			}

			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return e, p.expectOp(")")
		}
	}
	return nil, p.errorf("unexpected %s", t.kind)
}

func (p *parser) parseCall(name string) (ast.Expr, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}

	call := &ast.FuncCall{Name: name}
	if p.matchOp(")") {
		return call, nil
	}

	if p.matchOp("*") {
		call.Args = []ast.Expr{new(ast.Star)}
		return call, p.expectOp(")")
	}

	call.Distinct = p.matchKeyword("DISTINCT")
	args, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	call.Args = args
	return call, p.expectOp(")")
}

func (p *parser) parseCase() (ast.Expr, error) {
	c := new(ast.Case)
	var err error
	if !p.isKeyword("WHEN") {
		if c.Operand, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}

	for p.matchKeyword("WHEN") {
		w := new(ast.When)
		if w.Cond, err = p.parseExpr(); err != nil {
			return nil, err
		}

		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}

		if w.Result, err = p.parseExpr(); err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, w)
	}

	if len(c.Whens) == 0 {
		return nil, p.errorf("expecting WHEN")
	}

	if p.matchKeyword("ELSE") {
		if c.Else, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	return c, p.expectKeyword("END")
}

func (p *parser) parseCast() (ast.Expr, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}

	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	return &ast.Cast{Expr: e, Type: typ}, p.expectOp(")")
}

// parseTypeName reads the tokens of a type up to the closing parenthesis of
// the CAST and returns them as a type string.
func (p *parser) parseTypeName() (string, error) {
	var (
		b     strings.Builder
		depth int
		prev  tokenKind
	)
	for {
		t := p.peek()
		switch {
		case t.kind == eofToken:
			return "", p.errorf("unterminated CAST")
		case t.kind == opToken && t.text == "(":
			depth++
		case t.kind == opToken && t.text == ")":
			if depth == 0 {
				if b.Len() == 0 {
					return "", p.errorf("expecting type")
				}
				return b.String(), nil
			}
			depth--
		}

		word := t.kind == identToken || t.kind == keywordToken || t.kind == numberToken
		if word && (prev == identToken || prev == keywordToken || prev == numberToken) {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(t.text))
		prev = t.kind
		p.next()
	}
}

// numberLiteral classifies a number by its form and suffix.
func numberLiteral(text string) *ast.Literal {
	upper := strings.ToUpper(text)
	switch {
	case strings.HasSuffix(upper, "BD"):
		return &ast.Literal{Kind: ast.DecimalLiteral, Value: text}
	case strings.ContainsAny(upper, ".E"):
		return &ast.Literal{Kind: ast.FloatLiteral, Value: text}
	}
	return &ast.Literal{Kind: ast.IntLiteral, Value: text}
}
