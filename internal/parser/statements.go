package parser

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// parseStatement dispatches on the current token per spec.md §4.2's
// statement grammar, falling through to an expression-or-assignment parse
// for everything that isn't a dedicated keyword form.
func (p *Parser) parseStatement() ast.Node {
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.WHEN:
		return p.parseWhen()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.REPEAT:
		return p.parseRepeat()
	case token.DO:
		return p.parseDo()
	case token.SKIP:
		return p.parseSkipStop(true)
	case token.STOP:
		return p.parseSkipStop(false)
	case token.RETURN:
		return p.parseReturn()
	case token.FAIL:
		return p.parseFail()
	case token.FUNC:
		return p.parseFunctionDef()
	case token.STRUCT:
		return p.parseStructDef()
	case token.ENUM:
		return p.parseEnumDef()
	case token.EXTERN:
		return p.parseExtern()
	case token.USE:
		return p.parseUse()
	case token.GLOBAL:
		return p.parseDeclare(true)
	}
	return p.parseExprStatement()
}

func (p *Parser) parseIf() ast.Node {
	start := p.advance().Span.Start // `if`
	var conds []ast.Node
	var blocks []*ast.Block
	cond := p.parseExpr(PrecNone)
	p.expect(token.COLON, "':'")
	blocks = append(blocks, p.parseBlock(p.indentOf(p.buf[0])))
	conds = append(conds, cond)
	var elseBlock *ast.Block
	for p.elseFollows() {
		p.skipNewlines()
		p.advance() // else
		if p.at(token.IF) {
			p.advance()
			c := p.parseExpr(PrecNone)
			p.expect(token.COLON, "':'")
			conds = append(conds, c)
			blocks = append(blocks, p.parseBlock(0))
			continue
		}
		p.expect(token.COLON, "':'")
		elseBlock = p.parseBlock(0)
		break
	}
	end := p.cur().Span.Start
	return &ast.If{Conditions: conds, Blocks: blocks, Else: elseBlock, Base: ast.NewBase(source.NewSpan(p.file, start, end))}
}

// elseFollows peeks past a run of newlines for an `else` keyword at the
// outer statement's indentation, the way a trailing `else` chains onto the
// preceding `if` block without itself starting a new statement line.
func (p *Parser) elseFollows() bool {
	n := 0
	for p.peekAt(n).Type == token.NEWLINE {
		n++
	}
	return p.peekAt(n).Type == token.ELSE
}

func (p *Parser) parseWhen() ast.Node {
	start := p.advance().Span.Start
	subject := p.parseExpr(PrecNone)
	p.expect(token.COLON, "':'")
	p.skipNewlines()
	whenIndent := p.indentOf(p.cur())
	var cases []*ast.WhenCase
	var def *ast.Block
	for p.at(token.IS) && p.indentOf(p.cur()) == whenIndent {
		caseStart := p.advance().Span.Start
		pat := p.parseExpr(PrecNone)
		p.expect(token.COLON, "':'")
		body := p.parseBlock(whenIndent)
		cases = append(cases, &ast.WhenCase{Pattern: pat, Body: body,
			Base: ast.NewBase(source.NewSpan(p.file, caseStart, p.cur().Span.Start))})
		p.skipNewlines()
	}
	if p.at(token.ELSE) && p.indentOf(p.cur()) == whenIndent {
		p.advance()
		p.expect(token.COLON, "':'")
		def = p.parseBlock(whenIndent)
	}
	end := p.cur().Span.Start
	return &ast.When{Subject: subject, Cases: cases, Default: def,
		Base: ast.NewBase(source.NewSpan(p.file, start, end))}
}

func (p *Parser) parseFor() ast.Node {
	start := p.advance().Span.Start
	var key, value *ast.Var
	first := p.parseIdentAsVar()
	if _, ok := p.accept(token.COMMA); ok {
		second := p.parseIdentAsVar()
		key, value = first, second
	} else {
		value = first
	}
	p.expect(token.IN, "'in'")
	iter := p.parseExpr(PrecNone)
	if _, ok := p.accept(token.DOTDOT); ok {
		// `for x in first..last`: a bare range as the iterable.
		last := p.parseExpr(PrecNone)
		iter = &ast.Range{First: iter, Last: last, Base: ast.NewBase(source.NewSpan(p.file, iter.GetSpan().Start, p.cur().Span.Start))}
	}
	p.expect(token.COLON, "':'")
	body := p.parseBlock(p.indentOf(p.buf[0]))
	f := &ast.For{Iter: iter, Key: key, Value: value, Body: body,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	p.parseForTrailers(f)
	return f
}

// parseForTrailers consumes any `between:` clauses that directly follow the
// for-loop body (spec.md §4.2's For form). An `empty:` clause is not
// recognised, and the clause's indentation is not checked.
func (p *Parser) parseForTrailers(f *ast.For) {
	outerIndent := p.indentOf(p.buf[0])
	_ = outerIndent
	for p.at(token.BETWEEN) {
		p.advance()
		p.expect(token.COLON, "':'")
		f.Between = p.parseBlock(0)
	}
}

func (p *Parser) parseIdentAsVar() *ast.Var {
	t := p.expect(token.IDENT, "identifier")
	return &ast.Var{Name: t.Lexeme, Base: ast.NewBase(t.Span)}
}

func (p *Parser) parseWhile() ast.Node {
	start := p.advance().Span.Start
	cond := p.parseExpr(PrecNone)
	p.expect(token.COLON, "':'")
	body := p.parseBlock(p.indentOf(p.buf[0]))
	return &ast.While{Cond: cond, Body: body, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseRepeat() ast.Node {
	start := p.advance().Span.Start
	p.expect(token.COLON, "':'")
	body := p.parseBlock(p.indentOf(p.buf[0]))
	return &ast.Repeat{Body: body, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseDo() ast.Node {
	start := p.advance().Span.Start
	p.expect(token.COLON, "':'")
	first := p.parseBlock(p.indentOf(p.buf[0]))
	blocks := []*ast.Block{first}
	return &ast.Do{Blocks: blocks, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseSkipStop(isSkip bool) ast.Node {
	t := p.advance()
	target := ""
	if p.at(token.IDENT) {
		target = p.advance().Lexeme
	}
	sp := source.NewSpan(p.file, t.Span.Start, p.cur().Span.Start)
	if isSkip {
		return &ast.Skip{Target: target, Base: ast.NewBase(sp)}
	}
	return &ast.Stop{Target: target, Base: ast.NewBase(sp)}
}

func (p *Parser) parseReturn() ast.Node {
	start := p.advance().Span.Start
	var val ast.Node
	if !p.at(token.NEWLINE) && !p.at(token.EOF) {
		val = p.parseExpr(PrecNone)
	}
	return &ast.Return{Value: val, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseFail() ast.Node {
	start := p.advance().Span.Start
	var msg ast.Node
	if !p.at(token.NEWLINE) && !p.at(token.EOF) {
		msg = p.parseExpr(PrecNone)
	}
	return &ast.Fail{Message: msg, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseUse() ast.Node {
	start := p.advance().Span.Start
	t := p.expect(token.IDENT, "module path")
	path := t.Lexeme
	for {
		if _, ok := p.accept(token.DOT); ok {
			seg := p.expect(token.IDENT, "module path segment")
			path += "." + seg.Lexeme
			continue
		}
		if _, ok := p.accept(token.SLASH); ok {
			seg := p.expect(token.IDENT, "module path segment")
			path += "/" + seg.Lexeme
			continue
		}
		break
	}
	return &ast.Use{Path: path, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

func (p *Parser) parseDeclare(isGlobal bool) ast.Node {
	start := p.cur().Span.Start
	if isGlobal {
		p.advance() // `global`
	}
	nameTok := p.expect(token.IDENT, "identifier")
	varNode := &ast.Var{Name: nameTok.Lexeme, Base: ast.NewBase(nameTok.Span)}
	p.expect(token.DECLARE, "':='")
	value := p.parseExpr(PrecNone)
	return &ast.Declare{Var: varNode, Value: value, IsGlobal: isGlobal,
		Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
}

// parseExprStatement handles `name := expr`, `lhs = rhs`, `lhs op= rhs`, and
// bare expression statements, disambiguating by scanning past the leading
// expression for a following assignment operator.
func (p *Parser) parseExprStatement() ast.Node {
	start := p.cur().Span.Start
	if p.at(token.IDENT) && p.peekAt(1).Type == token.DECLARE {
		return p.parseDeclare(false)
	}
	first := p.parseExpr(PrecNone)
	lhs := []ast.Node{first}
	for {
		if _, ok := p.accept(token.COMMA); ok {
			lhs = append(lhs, p.parseExpr(PrecNone))
			continue
		}
		break
	}
	switch p.cur().Type {
	case token.ASSIGN:
		p.advance()
		rhs := []ast.Node{p.parseExpr(PrecNone)}
		for {
			if _, ok := p.accept(token.COMMA); ok {
				rhs = append(rhs, p.parseExpr(PrecNone))
				continue
			}
			break
		}
		return &ast.Assign{LHS: lhs, RHS: rhs, Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
		opTok := p.advance()
		rhs := p.parseExpr(PrecNone)
		return &ast.CompoundAssign{Op: compoundOpKind(opTok.Type), LHS: first, RHS: rhs,
			Base: ast.NewBase(source.NewSpan(p.file, start, p.cur().Span.Start))}
	}
	if len(lhs) == 1 {
		return first
	}
	// A bare comma-list with no assignment is a syntax error, but we still
	// return the first expression to let parsing continue.
	p.errorf(p.cur().Span, "unexpected ',' in expression statement")
	return first
}

func compoundOpKind(t token.Type) ast.BinaryOpKind {
	switch t {
	case token.PLUS_ASSIGN:
		return ast.OpAdd
	case token.MINUS_ASSIGN:
		return ast.OpSub
	case token.STAR_ASSIGN:
		return ast.OpMul
	case token.SLASH_ASSIGN:
		return ast.OpDiv
	}
	return ast.OpAdd
}
