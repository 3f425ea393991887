package lexer

import (
	"strconv"

	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

// stringDelim describes one of the six syntactic string delimiters
// (spec.md §4.3), grounded on original_source/hardparse.c's parse_string
// delimiter table.
type stringDelim struct {
	open    string // the opening sequence, e.g. `%{`
	close   byte   // the closing byte
	nestOpen, nestClose byte // 0 if this delimiter does not nest (", ')
	interp  bool   // whether `$term` interpolation is recognized
}

var stringDelims = []stringDelim{
	{open: `"`, close: '"', interp: true},
	{open: `'`, close: '\'', interp: false},
	{open: `%{`, close: '}', nestOpen: '{', nestClose: '}', interp: true},
	{open: `%[`, close: ']', nestOpen: '[', nestClose: ']', interp: true},
	{open: `%(`, close: ')', nestOpen: '(', nestClose: ')', interp: false},
	{open: `%<`, close: '>', nestOpen: '<', nestClose: '>', interp: true},
}

func isStringDelimStart(ch, peek rune) bool {
	if ch == '"' || ch == '\'' {
		return true
	}
	if ch == '%' {
		switch peek {
		case '{', '[', '(', '<':
			return true
		}
	}
	return false
}

func matchDelim(ch, peek rune) (stringDelim, int) {
	if ch == '"' {
		return stringDelims[0], 1
	}
	if ch == '\'' {
		return stringDelims[1], 1
	}
	switch peek {
	case '{':
		return stringDelims[2], 2
	case '[':
		return stringDelims[3], 2
	case '(':
		return stringDelims[4], 2
	case '<':
		return stringDelims[5], 2
	}
	return stringDelim{}, 0
}

// lexString implements spec.md §4.3's string syntax: it consumes the
// opening delimiter, then either the indentation-delimited form (delimiter
// followed immediately by a newline) or the inline form, queuing
// STRING_START/STRING_MID/STRING_END tokens (and, for interpolations, the
// ordinary token sequence for a primary+postfix "term") into l.pending, and
// returns the first of them.
func (l *Lexer) lexString(start int) token.Token {
	delim, openLen := matchDelim(l.ch, l.peekChar())
	for i := 0; i < openLen; i++ {
		l.readChar()
	}

	var queued []token.Token
	push := func(t token.Token) { queued = append(queued, t) }

	push(token.Token{Type: token.STRING_START, Lexeme: delim.open,
		Span: source.NewSpan(l.file, start, l.position)})

	if l.ch == '\n' || l.ch == '\r' {
		l.lexIndentedStringBody(delim, &queued)
	} else {
		l.lexInlineStringBody(delim, &queued)
	}

	push(token.Token{Type: token.STRING_END, Lexeme: string(delim.close),
		Span: source.NewSpan(l.file, l.position, l.position)})

	l.pending = append(l.pending, queued[1:]...)
	return queued[0]
}

// lexInlineStringBody scans a same-line string body, tracking nesting
// depth for delimiters whose open/close characters can also occur
// unescaped inside (braces, brackets, parens, angle brackets).
func (l *Lexer) lexInlineStringBody(delim stringDelim, queued *[]token.Token) {
	depth := 1
	for depth > 0 && l.ch != 0 {
		litStart := l.position
		for l.ch != 0 && l.ch != '\n' && byte(l.ch) != delim.close &&
			!(delim.nestOpen != 0 && byte(l.ch) == delim.nestOpen) &&
			!(delim.interp && l.ch == '$') && l.ch != '\\' {
			l.readChar()
		}
		if l.position > litStart {
			l.pushText(queued, litStart, l.position)
		}
		switch {
		case l.ch == '\\':
			l.lexEscape(queued)
		case delim.interp && l.ch == '$':
			l.readChar()
			l.lexInterpolation(queued)
		case delim.nestOpen != 0 && byte(l.ch) == delim.nestOpen:
			startTok := l.position
			l.readChar()
			l.pushText(queued, startTok, l.position)
			depth++
		case byte(l.ch) == delim.close:
			depth--
			if depth > 0 {
				startTok := l.position
				l.readChar()
				l.pushText(queued, startTok, l.position)
			} else {
				l.readChar()
			}
		default:
			// newline or EOF inside a single-line string: stop.
			depth = 0
		}
	}
}

// lexIndentedStringBody implements the indentation-delimited string form:
// opened by a delimiter immediately followed by a newline, closed by the
// delimiter reappearing at the starting indentation on a later line.
func (l *Lexer) lexIndentedStringBody(delim stringDelim, queued *[]token.Token) {
	startingIndent := l.file.Indent(l.position)
	if l.ch == '\r' {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
	}
	firstLine := l.file.LineNumber(l.position)

	for ln := firstLine; ln < l.file.LineCount(); ln++ {
		if l.file.IsEmptyLine(ln) {
			l.pushLiteral(queued, "\n")
			continue
		}
		lineStart := l.file.LineStart(ln)
		lineIndent := l.file.Indent(lineStart)
		if lineIndent <= startingIndent {
			// Check for the closing delimiter at the starting indent.
			bodyPos := lineStart + startingIndent
			if bodyPos < len(l.input) && byte(l.input[bodyPos]) == delim.close {
				l.position = bodyPos + 1
				l.readPosition = l.position
				l.readChar()
				return
			}
			return // malformed; stop (parser surfaces "unterminated string")
		}
		lineEnd := l.file.LineEnd(ln)
		pos := lineStart + lineIndent
		for pos < lineEnd {
			j := pos
			for j < lineEnd && l.input[j] != '$' && l.input[j] != '\\' {
				j++
			}
			if j > pos {
				l.pushText(queued, pos, j)
			}
			pos = j
			if pos >= lineEnd {
				break
			}
			if delim.interp && l.input[pos] == '$' {
				l.position, l.readPosition = pos, pos
				l.readChar() // now l.ch is '$'
				l.readChar() // consume '$'
				l.lexInterpolation(queued)
				pos = l.position
			} else if l.input[pos] == '\\' {
				l.position, l.readPosition = pos, pos
				l.readChar()
				l.lexEscape(queued)
				pos = l.position
			} else {
				pos++
			}
		}
		l.pushLiteral(queued, "\n")
	}
}

func (l *Lexer) pushText(queued *[]token.Token, start, end int) {
	*queued = append(*queued, token.Token{Type: token.STRING_MID, Lexeme: l.input[start:end], Literal: l.input[start:end],
		Span: source.NewSpan(l.file, start, end)})
}

func (l *Lexer) pushLiteral(queued *[]token.Token, s string) {
	*queued = append(*queued, token.Token{Type: token.STRING_MID, Lexeme: s, Literal: s,
		Span: source.NewSpan(l.file, l.position, l.position)})
}

// lexEscape decodes one `\x{HH}`, `\{NNN}` octal, single-letter, or `\"`
// escape sequence (spec.md §4.3) starting at the backslash.
func (l *Lexer) lexEscape(queued *[]token.Token) {
	start := l.position
	l.readChar() // consume backslash
	var text string
	switch l.ch {
	case 'x':
		l.readChar()
		hexStart := l.position
		for isHex(l.ch) {
			l.readChar()
		}
		if n, err := strconv.ParseInt(l.input[hexStart:l.position], 16, 32); err == nil {
			text = string(rune(n))
		}
	case 'a':
		text = "\a"
		l.readChar()
	case 'b':
		text = "\b"
		l.readChar()
	case 'e':
		text = "\x1b"
		l.readChar()
	case 'f':
		text = "\f"
		l.readChar()
	case 'n':
		text = "\n"
		l.readChar()
	case 'r':
		text = "\r"
		l.readChar()
	case 't':
		text = "\t"
		l.readChar()
	case 'v':
		text = "\v"
		l.readChar()
	case '"', '\'', '\\', '$':
		text = string(l.ch)
		l.readChar()
	default:
		if l.ch >= '0' && l.ch <= '7' {
			octStart := l.position
			for i := 0; i < 3 && l.ch >= '0' && l.ch <= '7'; i++ {
				l.readChar()
			}
			if n, err := strconv.ParseInt(l.input[octStart:l.position], 8, 32); err == nil {
				text = string(rune(n))
			}
		} else {
			text = string(l.ch)
			l.readChar()
		}
	}
	*queued = append(*queued, token.Token{Type: token.STRING_MID, Lexeme: text, Literal: text,
		Span: source.NewSpan(l.file, start, l.position)})
}

// lexInterpolation tokenizes `$term`: one primary token, optionally a
// parenthesized sub-expression, plus any trailing `.field`/`[index]`
// postfix chain, exactly as original_source/hardparse.c's parse_term does
// for the interpolation case. The boundary is grammar-driven rather than a
// fixed character set, so it is computed here rather than in the parser:
// the parser simply consumes INTERP_START..INTERP_END as an ordinary
// postfix-term parse.
func (l *Lexer) lexInterpolation(queued *[]token.Token) {
	*queued = append(*queued, token.Token{Type: InterpStart, Lexeme: "$interp-start", Span: source.NewSpan(l.file, l.position, l.position)})

	first := l.scan()
	*queued = append(*queued, first)
	// `$(expr)` and `${expr}` both wrap a full sub-expression rather than a
	// bare primary+postfix term; balance whichever bracket opened it.
	if open, close := first.Type, token.ILLEGAL; open == token.LPAREN || open == token.LBRACE {
		if open == token.LPAREN {
			close = token.RPAREN
		} else {
			close = token.RBRACE
		}
		depth := 1
		for depth > 0 {
			t := l.scan()
			*queued = append(*queued, t)
			switch t.Type {
			case open:
				depth++
			case close:
				depth--
			case token.EOF:
				depth = 0
			}
		}
	}
	for {
		save := l.save()
		t := l.scan()
		if t.Type == token.DOT {
			*queued = append(*queued, t)
			ident := l.scan()
			*queued = append(*queued, ident)
			continue
		}
		if t.Type == token.LBRACKET {
			*queued = append(*queued, t)
			depth := 1
			for depth > 0 {
				t2 := l.scan()
				*queued = append(*queued, t2)
				if t2.Type == token.LBRACKET {
					depth++
				} else if t2.Type == token.RBRACKET {
					depth--
				} else if t2.Type == token.EOF {
					break
				}
			}
			continue
		}
		l.restore(save)
		break
	}
	*queued = append(*queued, token.Token{Type: InterpEnd, Span: source.NewSpan(l.file, l.position, l.position)})
}

// InterpStart/InterpEnd bracket an interpolation's token sequence within
// the pending queue; they use token type values outside the public token
// enum's normal range so the parser can special-case them.
const (
	InterpStart token.Type = 1000 + iota
	InterpEnd
)
