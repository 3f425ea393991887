package parser

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

func (p *Parser) parseFunctionDef() ast.Node {
	start := p.advance().Span.Start // `func`
	name := p.expect(token.IDENT, "function name").Lexeme
	args := p.parseArgList()
	var ret ast.Node
	if _, ok := p.accept(token.ARROW); ok {
		ret = p.parseTypeExpr()
	}
	p.expect(token.COLON, "':'")
	body := p.parseBlock(p.indentOf(p.buf[0]))
	return &ast.FunctionDef{Name: name, Args: args, Ret: ret, Body: body,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseArgList() []*ast.Arg {
	p.expect(token.LPAREN, "'('")
	var args []*ast.Arg
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		name := p.expect(token.IDENT, "parameter name").Lexeme
		var typ, def ast.Node
		if _, ok := p.accept(token.COLON); ok {
			typ = p.parseTypeExpr()
		}
		if _, ok := p.accept(token.ASSIGN); ok {
			def = p.parseExpr(PrecNone)
		}
		args = append(args, &ast.Arg{Name: name, Type: typ, Default: def})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	return args
}

func (p *Parser) parseStructDef() ast.Node {
	start := p.advance().Span.Start
	name := p.expect(token.IDENT, "struct name").Lexeme
	var unitsNode ast.Node
	if p.at(token.LT) {
		unitsNode = p.parseUnitsSuffix()
	}
	p.expect(token.COLON, "':'")
	p.skipNewlines()
	indent := p.indentOf(p.cur())
	var fields []*ast.Arg
	for !p.at(token.EOF) && p.indentOf(p.cur()) == indent {
		fname := p.expect(token.IDENT, "field name").Lexeme
		var ftype, fdefault ast.Node
		if _, ok := p.accept(token.COLON); ok {
			ftype = p.parseTypeExpr()
		}
		if _, ok := p.accept(token.ASSIGN); ok {
			fdefault = p.parseExpr(PrecNone)
		}
		fields = append(fields, &ast.Arg{Name: fname, Type: ftype, Default: fdefault})
		p.skipNewlines()
	}
	return &ast.StructDef{Name: name, Fields: fields, Units: unitsNode,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseEnumDef() ast.Node {
	start := p.advance().Span.Start
	name := p.expect(token.IDENT, "enum name").Lexeme
	p.expect(token.COLON, "':'")
	p.skipNewlines()
	indent := p.indentOf(p.cur())
	var variants []*ast.EnumVariant
	for !p.at(token.EOF) && p.indentOf(p.cur()) == indent {
		vname := p.expect(token.IDENT, "variant name").Lexeme
		var fields []*ast.Arg
		if _, ok := p.accept(token.LPAREN); ok {
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				fname := p.expect(token.IDENT, "field name").Lexeme
				var ftype ast.Node
				if _, ok := p.accept(token.COLON); ok {
					ftype = p.parseTypeExpr()
				}
				fields = append(fields, &ast.Arg{Name: fname, Type: ftype})
				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}
			p.expect(token.RPAREN, "')'")
		}
		variants = append(variants, &ast.EnumVariant{Name: vname, Fields: fields})
		p.skipNewlines()
	}
	return &ast.EnumDef{Name: name, Variants: variants,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseExtern() ast.Node {
	start := p.advance().Span.Start
	name := p.expect(token.IDENT, "extern name").Lexeme
	p.expect(token.COLON, "':'")
	typ := p.parseTypeExpr()
	return &ast.Extern{Name: name, Type: typ,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}
