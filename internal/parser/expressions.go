package parser

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/lexer"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// Prec is an operator precedence level. Higher binds tighter. The ladder
// mirrors spec.md §4.3: Power > Mul/Div > Add/Sub > Mod > Compare >
// Equality > Logical.
type Prec int

const (
	PrecNone Prec = iota
	PrecLogical
	PrecEquality
	PrecCompare
	PrecMod
	PrecAdd
	PrecMul
	PrecPower
	PrecUnary
)

func binPrec(t token.Type) (Prec, bool) {
	switch t {
	case token.AND, token.OR, token.XOR:
		return PrecLogical, true
	case token.EQ, token.NE:
		return PrecEquality, true
	case token.LT, token.LE, token.GT, token.GE:
		return PrecCompare, true
	case token.PERCENT:
		return PrecMod, true
	case token.PLUS, token.MINUS:
		return PrecAdd, true
	case token.STAR, token.SLASH:
		return PrecMul, true
	case token.CARET:
		return PrecPower, true
	}
	return PrecNone, false
}

func binKind(t token.Type) ast.BinaryOpKind {
	switch t {
	case token.PLUS:
		return ast.OpAdd
	case token.MINUS:
		return ast.OpSub
	case token.STAR:
		return ast.OpMul
	case token.SLASH:
		return ast.OpDiv
	case token.PERCENT:
		return ast.OpMod
	case token.CARET:
		return ast.OpPower
	case token.AND:
		return ast.OpAnd
	case token.OR:
		return ast.OpOr
	case token.XOR:
		return ast.OpXor
	case token.EQ:
		return ast.OpEq
	case token.NE:
		return ast.OpNe
	case token.LT:
		return ast.OpLt
	case token.LE:
		return ast.OpLe
	case token.GT:
		return ast.OpGt
	case token.GE:
		return ast.OpGe
	}
	return ast.OpAdd
}

// parseExpr implements precedence climbing: it parses a unary term, then
// repeatedly folds in infix operators whose precedence exceeds min.
func (p *Parser) parseExpr(min Prec) ast.Node {
	left := p.parseUnary()
	for {
		prec, ok := binPrec(p.cur().Type)
		if !ok || prec <= min {
			break
		}
		opTok := p.advance()
		// Power is right-associative; everything else is left-associative.
		nextMin := prec
		if opTok.Type == token.CARET {
			nextMin = prec - 1
		}
		right := p.parseExpr(nextMin)
		left = &ast.BinaryOp{Kind: binKind(opTok.Type), Left: left, Right: right,
			Base: ast.NewBase(source.NewSpan(p.file, left.GetSpan().Start, p.cur().Span.Start))}
	}
	return left
}

func (p *Parser) parseUnary() ast.Node {
	start := p.cur().Span.Start
	switch p.cur().Type {
	case token.MINUS:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Kind: ast.OpNegative, Operand: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.NOT:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Kind: ast.OpNot, Operand: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.AMP:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Kind: ast.OpLen, Operand: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.QUESTION:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Kind: ast.OpMaybe, Operand: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.STAR:
		p.advance()
		operand := p.parseUnary()
		return &ast.Dereference{Value: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.AT:
		p.advance()
		operand := p.parseUnary()
		return &ast.HeapAllocate{Value: operand, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	}
	return p.parsePostfix(p.parseTerm())
}

// parsePostfix greedily wraps `.field`, `[index]`, and `(args)` suffixes
// around a primary, in source order, per spec.md §4.3.
func (p *Parser) parsePostfix(n ast.Node) ast.Node {
	for {
		start := n.GetSpan().Start
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			field := p.expect(token.IDENT, "field name").Lexeme
			n = &ast.FieldAccess{Receiver: n, Field: field, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
		case token.LBRACKET:
			p.advance()
			idx := p.parseIndexOrRange()
			p.expect(token.RBRACKET, "']'")
			n = &ast.Index{Receiver: n, IndexVal: idx, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
		case token.LPAREN:
			args := p.parseCallArgs()
			n = &ast.FunctionCall{Callee: n, Args: args, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
		default:
			return n
		}
	}
}

func (p *Parser) parseIndexOrRange() ast.Node {
	start := p.cur().Span.Start
	var first, step, last ast.Node
	if !p.at(token.DOTDOT) {
		first = p.parseExpr(PrecNone)
	}
	if _, ok := p.accept(token.COMMA); ok {
		step = p.parseExpr(PrecNone)
	}
	if _, ok := p.accept(token.DOTDOT); !ok {
		return first
	}
	if !p.at(token.RBRACKET) {
		last = p.parseExpr(PrecNone)
	}
	return &ast.Range{First: first, Step: step, Last: last, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseCallArgs() []ast.Node {
	p.expect(token.LPAREN, "'('")
	var args []ast.Node
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		if p.at(token.IDENT) && p.peekAt(1).Type == token.ASSIGN {
			start := p.cur().Span.Start
			name := p.advance().Lexeme
			p.advance() // =
			val := p.parseExpr(PrecNone)
			args = append(args, &ast.KeywordArg{Name: name, Arg: val, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))})
		} else {
			args = append(args, p.parseExpr(PrecNone))
		}
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	return args
}

// parseTerm parses one primary expression: the term-dispatch list of
// spec.md §4.3 (literals, grouping, collection literals, struct/lambda
// literals, and identifiers).
func (p *Parser) parseTerm() ast.Node {
	t := p.cur()
	start := t.Span.Start
	switch t.Type {
	case token.NIL:
		p.advance()
		var typ ast.Node
		return &ast.Nil{Type: typ, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.TRUE:
		p.advance()
		return &ast.Bool{Value: true, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.FALSE:
		p.advance()
		return &ast.Bool{Value: false, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.INT:
		return p.parseIntLiteral()
	case token.NUM:
		return p.parseNumLiteral()
	case token.CHAR:
		p.advance()
		r := rune(0)
		if runes := []rune(t.Literal); len(runes) > 0 {
			r = runes[0]
		}
		return &ast.Char{Value: r, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.STRING_START:
		return p.parseStringLiteral()
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(PrecNone)
		if _, ok := p.accept(token.COMMA); ok {
			members := []ast.Node{inner}
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				members = append(members, p.parseExpr(PrecNone))
				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}
			p.expect(token.RPAREN, "')'")
			return &ast.Struct{Members: tupleFields(members), Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
		}
		p.expect(token.RPAREN, "')'")
		return inner
	case token.LBRACKET:
		return p.parseArray()
	case token.LBRACE:
		return p.parseTable()
	case token.LAMBDA:
		return p.parseLambda()
	case token.DOTDOT:
		return p.parseIndexOrRange()
	case token.IDENT:
		if p.peekAt(1).Type == token.LBRACE {
			return p.parseStructLiteral()
		}
		p.advance()
		return &ast.Var{Name: t.Lexeme, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case lexer.InterpStart:
		// Reaching here means an interpolation's wrapped term is being
		// parsed directly (e.g. from a doctest's re-parsed expression);
		// consume the marker and recurse into the same postfix-term logic.
		p.advance()
		inner := p.parsePostfix(p.parseTerm())
		if p.cur().Type == lexer.InterpEnd {
			p.advance()
		}
		return inner
	}
	p.errorf(t.Span, "expected expression, found %q", t.Lexeme)
	p.advance()
	return &ast.Nil{Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func tupleFields(members []ast.Node) []*ast.StructField {
	out := make([]*ast.StructField, len(members))
	for i, m := range members {
		out[i] = &ast.StructField{Value: m, Base: ast.NewBase(m.GetSpan())}
	}
	return out
}

func (p *Parser) parseLambda() ast.Node {
	start := p.advance().Span.Start // lambda
	args := p.parseArgList()
	p.expect(token.COLON, "':'")
	body := p.parseBlock(p.indentOf(p.buf[0]))
	return &ast.Lambda{Args: args, Body: body, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseStructLiteral() ast.Node {
	start := p.cur().Span.Start
	typeName := p.advance().Lexeme
	p.expect(token.LBRACE, "'{'")
	var members []*ast.StructField
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fstart := p.cur().Span.Start
		name := ""
		if p.at(token.IDENT) && p.peekAt(1).Type == token.ASSIGN {
			name = p.advance().Lexeme
			p.advance() // =
		}
		val := p.parseExpr(PrecNone)
		members = append(members, &ast.StructField{Name: name, Value: val, Base: ast.NewBase(source.NewSpan(p.file, fstart, p.cur().Span.Start))})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.Struct{TypeName: typeName, Members: members, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

// parseArray parses `[item, item, ...]` (spec.md §8 scenario 2).
func (p *Parser) parseArray() ast.Node {
	start := p.advance().Span.Start // [
	if _, ok := p.accept(token.RBRACKET); ok {
		return &ast.Array{Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	}
	items := []ast.Node{p.parseExpr(PrecNone)}
	for {
		if _, ok := p.accept(token.COMMA); ok {
			if p.at(token.RBRACKET) {
				break
			}
			items = append(items, p.parseExpr(PrecNone))
			continue
		}
		break
	}
	p.expect(token.RBRACKET, "']'")
	return &ast.Array{Items: items, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

// parseTable parses `{k=>v, k=>v, ... | fallback}` (spec.md §8 scenario 4).
func (p *Parser) parseTable() ast.Node {
	start := p.advance().Span.Start // {
	var entries []*ast.TableEntry
	var fallback, def ast.Node
	for !p.at(token.RBRACE) && !p.at(token.EOF) && !p.at(token.PIPE) {
		estart := p.cur().Span.Start
		k := p.parseExpr(PrecNone)
		p.expect(token.FATARROW, "'=>'")
		v := p.parseExpr(PrecNone)
		entries = append(entries, &ast.TableEntry{Key: k, Value: v, Base: ast.NewBase(source.NewSpan(p.file, estart, p.cur().Span.Start))})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, ok := p.accept(token.PIPE); ok {
		fallback = p.parseExpr(PrecNone)
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.Table{Entries: entries, Fallback: fallback, Default: def, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}
