// Package parse implements a parser for the Hive SELECT dialect accepted by
// the converter.
package parse

import (
	"context"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-hive2rel.v0/sql/ast"
)

// ErrParse is returned when a query is not valid Hive SQL or uses syntax
// this parser does not support.
var ErrParse = errors.NewKind("syntax error at position %d near %q: %s")

// Parser parses Hive queries into syntax trees. The zero value is ready to
// use and safe for concurrent use.
type Parser struct{}

// Parse implements the planbuilder.Parser interface.
func (Parser) Parse(ctx context.Context, query string) (ast.Statement, error) {
	return Parse(ctx, query)
}

// Parse parses the given query, which must be a single SELECT statement
// optionally ended by a semicolon.
func Parse(ctx context.Context, query string) (ast.Statement, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "parse")
	span.SetTag("query", query)
	defer span.Finish()

	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}

	if len(tokens) > 1 && tokens[len(tokens)-2].kind == opToken && tokens[len(tokens)-2].text == ";" {
		tokens = append(tokens[:len(tokens)-2], tokens[len(tokens)-1])
	}

	p := &parser{tokens: tokens}
	if p.peek().kind == eofToken {
		return nil, ErrParse.New(0, "", "empty query")
	}

	stmt, err := p.parseSelect()
	if err != nil {
		logrus.WithField("query", strings.TrimSpace(query)).Debugf("unable to parse query: %s", err)
		return nil, err
	}

	if p.peek().kind != eofToken {
		return nil, p.errorf("unexpected %s after end of statement", p.peek().kind)
	}
	return stmt, nil
}
