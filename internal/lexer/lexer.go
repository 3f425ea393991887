// Package lexer tokenizes Language source text, tracking indentation and
// handling the six string delimiters' interpolation syntax inline (spec.md
// §4.3), the way funxy's internal/lexer/lexer.go drives a single rune
// cursor through NextToken.
package lexer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// Lexer turns a File's text into a stream of Tokens, pulled one at a time
// via Next.
type Lexer struct {
	file         *source.File
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int

	pending []token.Token // tokens queued by string-interpolation scanning
}

// New creates a Lexer over f.
func New(f *source.File) *Lexer {
	l := &Lexer{file: f, input: f.Text, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

type snapshot struct {
	position, readPosition, line, column int
	ch                                   rune
}

func (l *Lexer) save() snapshot {
	return snapshot{l.position, l.readPosition, l.line, l.column, l.ch}
}

func (l *Lexer) restore(s snapshot) {
	l.position, l.readPosition, l.line, l.column, l.ch = s.position, s.readPosition, s.line, s.column, s.ch
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func (l *Lexer) mk(typ token.Type, lexeme string, start int) token.Token {
	return token.Token{
		Type: typ, Lexeme: lexeme, Literal: lexeme,
		Span: source.NewSpan(l.file, start, l.position),
		Line: l.line, Column: l.column,
	}
}

// Next returns the next token in the stream, draining queued string tokens
// before resuming ordinary scanning.
func (l *Lexer) Next() token.Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}
	return l.scan()
}

func (l *Lexer) scan() token.Token {
	l.skipWhitespaceAndComments()
	start := l.position

	if l.ch == 0 {
		return l.mk(token.EOF, "", start)
	}
	if l.ch == '\n' {
		l.readChar()
		return l.mk(token.NEWLINE, "\n", start)
	}

	if isStringDelimStart(l.ch, l.peekChar()) {
		return l.lexString(start)
	}

	switch {
	case unicode.IsDigit(l.ch):
		return l.lexNumber(start)
	case l.ch == '`':
		return l.lexChar(start)
	case isIdentStart(l.ch):
		return l.lexIdent(start)
	}

	return l.lexOperator(start)
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentCont(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (l *Lexer) lexIdent(start int) token.Token {
	for isIdentCont(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return l.mk(token.Lookup(lexeme), lexeme, start)
}

func (l *Lexer) lexChar(start int) token.Token {
	l.readChar() // consume backtick
	c := l.ch
	l.readChar()
	return token.Token{Type: token.CHAR, Lexeme: string(c), Literal: string(c),
		Span: source.NewSpan(l.file, start, l.position), Line: l.line, Column: l.column}
}

func (l *Lexer) lexNumber(start int) token.Token {
	isNum := false
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHex(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.readChar()
		}
	} else if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		for (l.ch >= '0' && l.ch <= '7') || l.ch == '_' {
			l.readChar()
		}
	} else {
		for unicode.IsDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
			isNum = true
			l.readChar()
			for unicode.IsDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			isNum = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		}
	}
	digits := l.input[start:l.position]

	// optional iN suffix
	suffixStart := l.position
	precision := 0
	if l.ch == 'i' {
		save := l.save()
		l.readChar()
		digitStart := l.position
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
		if l.position > digitStart {
			precision, _ = strconv.Atoi(l.input[digitStart:l.position])
		} else {
			l.restore(save)
		}
	}
	_ = suffixStart

	var unit string
	if l.ch == '<' {
		l.readChar()
		unitStart := l.position
		for l.ch != '>' && l.ch != 0 && l.ch != '\n' {
			l.readChar()
		}
		unit = l.input[unitStart:l.position]
		if l.ch == '>' {
			l.readChar()
		}
	}

	typ := token.INT
	if isNum {
		typ = token.NUM
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: typ, Lexeme: lexeme,
		Literal: fmt.Sprintf("%s\x00%d\x00%s", digits, precision, unit),
		Span:    source.NewSpan(l.file, start, l.position), Line: l.line, Column: l.column}
}

func isHex(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ParseIntLiteral decodes the Literal payload lexNumber packs for INT
// tokens back into (digits, precision, units).
func ParseIntLiteral(literal string) (digits string, precision int, unit string) {
	parts := strings.SplitN(literal, "\x00", 3)
	digits = parts[0]
	if len(parts) > 1 {
		precision, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		unit = parts[2]
	}
	return
}

// IntValue parses digits (as produced by lexNumber, any base/underscore
// form) into a big.Int.
func IntValue(digits string) *big.Int {
	digits = strings.ReplaceAll(digits, "_", "")
	base := 10
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base = 2
		digits = digits[2:]
	case strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0O"):
		base = 8
		digits = digits[2:]
	}
	n := new(big.Int)
	n.SetString(digits, base)
	if neg {
		n.Neg(n)
	}
	return n
}

func (l *Lexer) lexOperator(start int) token.Token {
	two := func(second rune, typ token.Type, lexeme string) (token.Token, bool) {
		if l.peekChar() == second {
			l.readChar()
			l.readChar()
			return l.mk(typ, lexeme, start), true
		}
		return token.Token{}, false
	}

	ch := l.ch
	switch ch {
	case ':':
		if t, ok := two('=', token.DECLARE, ":="); ok {
			return t
		}
		l.readChar()
		return l.mk(token.COLON, ":", start)
	case '.':
		if t, ok := two('.', token.DOTDOT, ".."); ok {
			return t
		}
		l.readChar()
		return l.mk(token.DOT, ".", start)
	case '=':
		if t, ok := two('=', token.EQ, "=="); ok {
			return t
		}
		if t, ok := two('>', token.FATARROW, "=>"); ok {
			return t
		}
		l.readChar()
		return l.mk(token.ASSIGN, "=", start)
	case '!':
		if t, ok := two('=', token.NE, "!="); ok {
			return t
		}
	case '<':
		if t, ok := two('=', token.LE, "<="); ok {
			return t
		}
		l.readChar()
		return l.mk(token.LT, "<", start)
	case '>':
		if t, ok := two('=', token.GE, ">="); ok {
			return t
		}
		l.readChar()
		return l.mk(token.GT, ">", start)
	case '+':
		if t, ok := two('=', token.PLUS_ASSIGN, "+="); ok {
			return t
		}
		l.readChar()
		return l.mk(token.PLUS, "+", start)
	case '-':
		if t, ok := two('=', token.MINUS_ASSIGN, "-="); ok {
			return t
		}
		if t, ok := two('>', token.ARROW, "->"); ok {
			return t
		}
		l.readChar()
		return l.mk(token.MINUS, "-", start)
	case '*':
		if t, ok := two('=', token.STAR_ASSIGN, "*="); ok {
			return t
		}
		if t, ok := two('*', token.CARET, "**"); ok {
			return t
		}
		l.readChar()
		return l.mk(token.STAR, "*", start)
	case '/':
		if t, ok := two('=', token.SLASH_ASSIGN, "/="); ok {
			return t
		}
		l.readChar()
		return l.mk(token.SLASH, "/", start)
	case '%':
		l.readChar()
		return l.mk(token.PERCENT, "%", start)
	case '(':
		l.readChar()
		return l.mk(token.LPAREN, "(", start)
	case ')':
		l.readChar()
		return l.mk(token.RPAREN, ")", start)
	case '[':
		l.readChar()
		return l.mk(token.LBRACKET, "[", start)
	case ']':
		l.readChar()
		return l.mk(token.RBRACKET, "]", start)
	case '{':
		l.readChar()
		return l.mk(token.LBRACE, "{", start)
	case '}':
		l.readChar()
		return l.mk(token.RBRACE, "}", start)
	case ',':
		l.readChar()
		return l.mk(token.COMMA, ",", start)
	case '?':
		l.readChar()
		return l.mk(token.QUESTION, "?", start)
	case '@':
		l.readChar()
		return l.mk(token.AT, "@", start)
	case '#':
		l.readChar()
		return l.mk(token.AMP, "#", start) // Len operator reuses AMP token slot
	case '|':
		l.readChar()
		return l.mk(token.PIPE, "|", start)
	}
	l.readChar()
	return l.mk(token.ILLEGAL, string(ch), start)
}
