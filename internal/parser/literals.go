package parser

import (
	"strconv"
	"strings"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/lexer"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
	"github.com/bruce-hill/blangc/internal/units"
)

func (p *Parser) parseIntLiteral() ast.Node {
	t := p.advance()
	start := t.Span.Start
	digits, precision, unit := lexer.ParseIntLiteral(t.Literal)
	if precision == 0 {
		precision = 64
	}
	return &ast.Int{
		Value:     lexer.IntValue(digits),
		Precision: precision,
		Units:     units.Normalize(unit),
		Base:      ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start)),
	}
}

func (p *Parser) parseNumLiteral() ast.Node {
	t := p.advance()
	start := t.Span.Start
	digits, precision, unit := lexer.ParseIntLiteral(t.Literal)
	if precision == 0 {
		precision = 64
	}
	clean := strings.ReplaceAll(digits, "_", "")
	v, _ := strconv.ParseFloat(clean, 64)
	return &ast.Num{
		Value:     v,
		Precision: precision,
		Units:     units.Normalize(unit),
		Base:      ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start)),
	}
}

// parseStringLiteral consumes a STRING_START..STRING_END run (spawned by
// the lexer's string scanner) and assembles it into a StringLiteral (no
// interpolations present) or a StringJoin of literal/interpolated pieces.
func (p *Parser) parseStringLiteral() ast.Node {
	start := p.cur().Span.Start
	p.advance() // STRING_START
	var children []ast.Node
	var text strings.Builder
	flushText := func(spanEnd int) {
		if text.Len() == 0 {
			return
		}
		children = append(children, &ast.StringLiteral{Value: text.String(),
			Base: ast.NewBase(source.NewSpan(p.file, start, spanEnd))})
		text.Reset()
	}
	for !p.at(token.STRING_END) && !p.at(token.EOF) {
		switch p.cur().Type {
		case token.STRING_MID:
			text.WriteString(p.advance().Literal)
		case lexer.InterpStart:
			flushText(p.cur().Span.Start)
			children = append(children, p.parseInterp())
		default:
			// Shouldn't happen given the lexer's queuing discipline; skip
			// defensively so parsing stays total.
			p.advance()
		}
	}
	flushText(p.cur().Span.Start)
	p.expect(token.STRING_END, "end of string")
	end := p.cur().Span.Start
	if len(children) == 1 {
		if sl, ok := children[0].(*ast.StringLiteral); ok {
			sl.Span.End = end
			return sl
		}
	}
	if len(children) == 0 {
		return &ast.StringLiteral{Value: "", Base: ast.NewBase(source.NewSpan(p.file, start, end))}
	}
	return &ast.StringJoin{Children: children, Base: ast.NewBase(source.NewSpan(p.file, start, end))}
}

// parseInterp consumes one InterpStart..InterpEnd wrapped term. `$(expr)`
// and `${expr}` wrap a full sub-expression (the lexer balances the bracket
// for us); a bare `$name` wraps an ordinary postfix-term parse.
func (p *Parser) parseInterp() ast.Node {
	start := p.cur().Span.Start
	p.advance() // InterpStart
	var val ast.Node
	if p.at(token.LBRACE) {
		p.advance()
		val = p.parseExpr(PrecNone)
		p.expect(token.RBRACE, "'}'")
	} else {
		val = p.parsePostfix(p.parseTerm())
	}
	if p.at(lexer.InterpEnd) {
		p.advance()
	}
	return &ast.Interp{Value: val, Color: true, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}
