package parser

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// indentOf returns the column-indent of the line the given token starts on.
func (p *Parser) indentOf(t token.Token) int {
	return p.file.Indent(p.file.LineStart(p.file.LineNumber(t.Span.Start)))
}

// parseBlock parses an indented run of statements more deeply indented than
// minIndent, the way a colon-then-newline introduces a nested block
// (spec.md §4.2). A same-line single statement ("if x: y") is also accepted.
func (p *Parser) parseBlock(minIndent int) *ast.Block {
	start := p.cur().Span.Start
	if !p.at(token.NEWLINE) {
		// inline single-statement block: `: stmt`
		stmt := p.parseStatement()
		var stmts []ast.Node
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		end := p.cur().Span.Start
		return &ast.Block{Statements: stmts, Base: ast.NewBase(source.NewSpan(p.file, start, end))}
	}
	p.skipNewlines()
	if p.at(token.EOF) {
		end := p.cur().Span.Start
		return &ast.Block{Base: ast.NewBase(source.NewSpan(p.file, start, end))}
	}
	blockIndent := p.indentOf(p.cur())
	if blockIndent <= minIndent {
		end := p.cur().Span.Start
		return &ast.Block{Base: ast.NewBase(source.NewSpan(p.file, start, end))}
	}
	var stmts []ast.Node
	for !p.at(token.EOF) && p.indentOf(p.cur()) == blockIndent {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if !p.at(token.EOF) && !p.at(token.NEWLINE) {
			p.errorf(p.cur().Span, "expected newline after statement, found %q", p.cur().Lexeme)
			p.advance()
		}
		p.skipNewlines()
	}
	end := p.cur().Span.Start
	return &ast.Block{Statements: stmts, Base: ast.NewBase(source.NewSpan(p.file, start, end))}
}
