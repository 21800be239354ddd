package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind byte

const (
	eofToken tokenKind = iota
	identToken
	keywordToken
	numberToken
	stringToken
	opToken
)

func (k tokenKind) String() string {
	switch k {
	case eofToken:
		return "end of query"
	case identToken:
		return "identifier"
	case keywordToken:
		return "keyword"
	case numberToken:
		return "number"
	case stringToken:
		return "string"
	default:
		return "operator"
	}
}

type token struct {
	kind tokenKind
	// text is upper case for keywords and unquoted for strings and quoted
	// identifiers.
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == eofToken {
		return t.kind.String()
	}
	return t.text
}

var keywords = map[string]bool{
	"ALL": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true,
	"BY": true, "CASE": true, "CAST": true, "CROSS": true, "DESC": true,
	"DISTINCT": true, "DIV": true, "ELSE": true, "END": true, "FALSE": true,
	"FROM": true, "FULL": true, "GROUP": true, "HAVING": true, "IN": true,
	"INNER": true, "IS": true, "JOIN": true, "LATERAL": true, "LEFT": true,
	"LIKE": true, "LIMIT": true, "NOT": true, "NULL": true, "NULLS": true,
	"ON": true, "OR": true, "ORDER": true, "OUTER": true, "REGEXP": true,
	"RIGHT": true, "RLIKE": true, "SELECT": true, "SEMI": true, "SORT": true,
	"THEN": true, "TRUE": true, "UNION": true, "VIEW": true, "WHEN": true,
	"WHERE": true,
}

var operators = []string{
	"<=>", "<>", "<=", ">=", "!=", "==",
	"=", "<", ">", "+", "-", "*", "/", "%", "(", ")", "[", "]", ",", ".", ":", ";",
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

// lex splits the query into tokens, ending with an eofToken.
func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	for {
		if err := l.skipSpacesAndComments(); err != nil {
			return nil, err
		}

		if l.pos >= len(l.input) {
			l.tokens = append(l.tokens, token{kind: eofToken, pos: l.pos})
			return l.tokens, nil
		}

		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) peekRune(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+offset:])
	return r
}

func (l *lexer) skipSpacesAndComments() error {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case strings.HasPrefix(l.input[l.pos:], "--"):
			end := strings.IndexByte(l.input[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.input)
			} else {
				l.pos += end + 1
			}
		case strings.HasPrefix(l.input[l.pos:], "/*"):
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				return ErrParse.New(l.pos, "/*", "unterminated comment")
			}
			l.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) emit(kind tokenKind, text string, start int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: start})
}

func (l *lexer) next() error {
	start := l.pos
	r := l.peekRune(0)
	switch {
	case r == '\'' || r == '"':
		s, err := l.readQuoted(r, true)
		if err != nil {
			return err
		}
		l.emit(stringToken, s, start)
	case r == '`':
		s, err := l.readQuoted(r, false)
		if err != nil {
			return err
		}
		l.emit(identToken, s, start)
	case isDigit(r) || (r == '.' && isDigit(l.peekRune(1)) && !l.afterOperand()):
		l.emit(numberToken, l.readNumber(), start)
	case r == '_' || unicode.IsLetter(r):
		word := l.readWord()
		if upper := strings.ToUpper(word); keywords[upper] {
			l.emit(keywordToken, upper, start)
		} else {
			l.emit(identToken, word, start)
		}
	default:
		for _, op := range operators {
			if strings.HasPrefix(l.input[l.pos:], op) {
				l.pos += len(op)
				l.emit(opToken, op, start)
				return nil
			}
		}
		return ErrParse.New(start, string(r), "unexpected character")
	}
	return nil
}

// afterOperand reports whether the previous token ends an operand, so a
// dot that follows it is a qualifier and not a decimal point.
func (l *lexer) afterOperand() bool {
	if len(l.tokens) == 0 {
		return false
	}

	t := l.tokens[len(l.tokens)-1]
	return t.kind == identToken || (t.kind == opToken && (t.text == ")" || t.text == "]"))
}

func (l *lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	return l.input[start:l.pos]
}

func (l *lexer) readDigits() {
	for l.pos < len(l.input) && isDigit(rune(l.input[l.pos])) {
		l.pos++
	}
}

// readNumber reads an integer or decimal number with an optional exponent
// and an optional Hive type suffix (Y, S, L or BD).
func (l *lexer) readNumber() string {
	start := l.pos
	l.readDigits()
	if l.peekRune(0) == '.' && isDigit(l.peekRune(1)) || l.peekRune(0) == '.' && l.pos > start {
		l.pos++
		l.readDigits()
	}

	if r := l.peekRune(0); r == 'e' || r == 'E' {
		next := l.peekRune(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekRune(2))) {
			l.pos += 2
			l.readDigits()
		}
	}

	rest := strings.ToUpper(l.input[l.pos:])
	switch {
	case strings.HasPrefix(rest, "BD") && !isWordRune(l.peekRune(2)):
		l.pos += 2
	case len(rest) > 0 && strings.ContainsRune("YSL", rune(rest[0])) && !isWordRune(l.peekRune(1)):
		l.pos++
	}
	return l.input[start:l.pos]
}

// readQuoted reads a string delimited by quote. Strings support backslash
// escapes; identifiers escape the quote by doubling it.
func (l *lexer) readQuoted(quote rune, escapes bool) (string, error) {
	start := l.pos
	l.pos++

	var b strings.Builder
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size

		switch {
		case escapes && r == '\\':
			if l.pos >= len(l.input) {
				return "", ErrParse.New(start, string(quote), "unterminated string")
			}
			e, esize := utf8.DecodeRuneInString(l.input[l.pos:])
			l.pos += esize
			b.WriteRune(unescape(e))
		case r == quote:
			if !escapes && l.peekRune(0) == quote {
				l.pos++
				b.WriteRune(quote)
				continue
			}
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
	return "", ErrParse.New(start, string(quote), "unterminated quoted text")
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return r
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
