package parser

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
	"github.com/bruce-hill/blangc/internal/units"
)

// parseTypeExpr parses a type-as-syntax node (spec.md §3.3/§4.4.1).
func (p *Parser) parseTypeExpr() ast.Node {
	base := p.parseTypeAtom()
	for {
		if p.at(token.LT) {
			base = p.wrapUnits(base)
			continue
		}
		if _, ok := p.accept(token.QUESTION); ok {
			base = &ast.TypeOptional{Type: base, Base: ast.NewBase(source.NewSpan(p.file, base.GetSpan().Start, p.cur().Span.Start))}
			continue
		}
		break
	}
	return base
}

func (p *Parser) parseTypeAtom() ast.Node {
	start := p.cur().Span.Start
	switch {
	case p.at(token.LBRACKET):
		p.advance()
		item := p.parseTypeExpr()
		p.expect(token.RBRACKET, "']'")
		return &ast.TypeArray{Item: item, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case p.at(token.AT):
		p.advance()
		pointed := p.parseTypeAtom()
		return &ast.TypePointer{Pointed: pointed, Optional: false, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case p.at(token.QUESTION):
		p.advance()
		pointed := p.parseTypeAtom()
		return &ast.TypePointer{Pointed: pointed, Optional: true, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case p.at(token.LPAREN):
		return p.parseTypeParenGroup(start)
	default:
		name := p.expect(token.IDENT, "type name").Lexeme
		return &ast.TypeName{Name: name, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	}
}

// parseTypeParenGroup disambiguates a parenthesized tuple type from a
// function type by looking for a trailing `->` after the close paren.
func (p *Parser) parseTypeParenGroup(start int) ast.Node {
	p.advance() // (
	var members []ast.Node
	var names []string
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		if p.at(token.IDENT) && p.peekAt(1).Type == token.COLON {
			names = append(names, p.advance().Lexeme)
			p.advance() // :
		} else {
			names = append(names, "")
		}
		members = append(members, p.parseTypeExpr())
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	if _, ok := p.accept(token.ARROW); ok {
		ret := p.parseTypeExpr()
		return &ast.TypeFunction{ArgNames: names, ArgTypes: members, Ret: ret,
			Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	}
	return &ast.TypeTuple{Members: members, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

// wrapUnits consumes `<unit-expr>` following a numeric type name, per
// spec.md §3.1's units-of-measure syntax.
func (p *Parser) wrapUnits(base ast.Node) ast.Node {
	start := base.GetSpan().Start
	p.advance() // <
	raw := ""
	for !p.at(token.GT) && !p.at(token.EOF) {
		raw += p.advance().Lexeme
	}
	p.expect(token.GT, "'>'")
	u := units.Normalize(raw)
	return &ast.TypeMeasure{Type: base, Units: u, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

// parseUnitsSuffix parses a bare `<unit-expr>` (used on StructDef's overall
// units annotation, which has no preceding type atom to attach to).
func (p *Parser) parseUnitsSuffix() ast.Node {
	start := p.cur().Span.Start
	p.advance() // <
	raw := ""
	for !p.at(token.GT) && !p.at(token.EOF) {
		raw += p.advance().Lexeme
	}
	p.expect(token.GT, "'>'")
	u := units.Normalize(raw)
	return &ast.TypeMeasure{Units: u, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}
