// Package parser implements the Language's hand-written recursive-descent
// parser (spec.md §4.3): an explicit operator-precedence table, a fixed
// term-parsing order, and per-production error recovery that produces
// spans for diagnostics rather than panicking.
package parser

import (
	"fmt"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/lexer"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// Diagnostic is a single parse error with the span it occurred at.
type Diagnostic struct {
	Message string
	Span    source.Span
}

// Parser holds the token lookahead buffer and accumulated diagnostics for
// one file.
type Parser struct {
	file *source.File
	lex  *lexer.Lexer

	buf []token.Token // lookahead buffer; buf[0] is "current"

	Diagnostics []Diagnostic
	// ErrorTarget, when set, is invoked with each syntax diagnostic as it
	// is produced; parsing continues afterwards. Parse builds its own
	// Parser and never sets it.
	ErrorTarget func(Diagnostic)
}

// New creates a Parser over f.
func New(f *source.File) *Parser {
	p := &Parser{file: f, lex: lexer.New(f)}
	p.fill(2)
	return p
}

func (p *Parser) fill(n int) {
	for len(p.buf) < n {
		p.buf = append(p.buf, p.lex.Next())
	}
}

func (p *Parser) cur() token.Token {
	p.fill(1)
	return p.buf[0]
}

func (p *Parser) peekAt(n int) token.Token {
	p.fill(n + 1)
	return p.buf[n]
}

func (p *Parser) advance() token.Token {
	p.fill(1)
	t := p.buf[0]
	p.buf = p.buf[1:]
	return t
}

func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) accept(t token.Type) (token.Token, bool) {
	if p.at(t) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(t token.Type, what string) token.Token {
	if p.at(t) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "expected %s, found %q", what, p.cur().Lexeme)
	return p.cur()
}

// skipNewlines consumes any run of blank-statement separators.
func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// errorf records a syntax diagnostic and, if ErrorTarget is set, invokes
// it immediately. Parsing continues either way; callers inspect the
// accumulated Diagnostics once Parse returns.
func (p *Parser) errorf(span source.Span, format string, args ...interface{}) {
	d := Diagnostic{Message: fmt.Sprintf(format, args...), Span: span}
	p.Diagnostics = append(p.Diagnostics, d)
	if p.ErrorTarget != nil {
		p.ErrorTarget(d)
	}
}

// Parse parses an entire file as a top-level Block of statements.
func Parse(f *source.File) (*ast.Block, []Diagnostic) {
	p := New(f)
	start := 0
	var stmts []ast.Node
	p.skipNewlines()
	for !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if !p.at(token.EOF) && !p.at(token.NEWLINE) {
			p.errorf(p.cur().Span, "expected newline after statement, found %q", p.cur().Lexeme)
			p.advance() // error recovery: skip the offending token and continue
		}
		p.skipNewlines()
	}
	end := p.cur().Span.Start
	return &ast.Block{Statements: stmts, Base: ast.NewBase(source.NewSpan(f, start, end))}, p.Diagnostics
}
