package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/lexer"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/token"
)

func tokensOf(t *testing.T, text string) []token.Token {
	t.Helper()
	l := lexer.New(source.New("<test>", text))
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	toks := tokensOf(t, "if x else y")
	assert.Equal(t, []token.Type{token.IF, token.IDENT, token.ELSE, token.IDENT, token.EOF}, types(toks))
}

func TestLexOperators(t *testing.T) {
	toks := tokensOf(t, "a := b + c * d")
	assert.Equal(t, []token.Type{
		token.IDENT, token.DECLARE, token.IDENT, token.PLUS, token.IDENT,
		token.STAR, token.IDENT, token.EOF,
	}, types(toks))
}

func TestLexIntLiteral(t *testing.T) {
	toks := tokensOf(t, "42")
	require.Len(t, toks, 2)
	assert.Equal(t, token.INT, toks[0].Type)
	digits, precision, unit := lexer.ParseIntLiteral(toks[0].Literal)
	assert.Equal(t, "42", digits)
	assert.Equal(t, 0, precision)
	assert.Equal(t, "", unit)
}

func TestLexIntLiteralWithUnit(t *testing.T) {
	toks := tokensOf(t, "5<m/s>")
	require.Len(t, toks, 2)
	_, _, unit := lexer.ParseIntLiteral(toks[0].Literal)
	assert.Equal(t, "m/s", unit)
}

func TestLexNumLiteral(t *testing.T) {
	toks := tokensOf(t, "3.14")
	require.Len(t, toks, 2)
	assert.Equal(t, token.NUM, toks[0].Type)
}

func TestLexHexBinOctal(t *testing.T) {
	for _, src := range []string{"0xFF", "0b1010", "0o17"} {
		toks := tokensOf(t, src)
		require.Len(t, toks, 2, "source %q", src)
		assert.Equal(t, token.INT, toks[0].Type, "source %q", src)
		assert.Equal(t, src, toks[0].Lexeme)
	}
}

func TestLexCharLiteral(t *testing.T) {
	toks := tokensOf(t, "`a")
	require.Len(t, toks, 2)
	assert.Equal(t, token.CHAR, toks[0].Type)
	assert.Equal(t, "a", toks[0].Literal)
}

func TestLexNewlineToken(t *testing.T) {
	toks := tokensOf(t, "a\nb")
	assert.Equal(t, []token.Type{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}, types(toks))
}

func TestIntValueParsesAllBases(t *testing.T) {
	assert.Equal(t, int64(255), lexer.IntValue("0xFF").Int64())
	assert.Equal(t, int64(10), lexer.IntValue("0b1010").Int64())
	assert.Equal(t, int64(15), lexer.IntValue("0o17").Int64())
	assert.Equal(t, int64(-5), lexer.IntValue("-5").Int64())
	assert.Equal(t, int64(1000), lexer.IntValue("1_000").Int64())
}
