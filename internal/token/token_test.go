package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bruce-hill/blangc/internal/token"
)

func TestLookupResolvesKeywords(t *testing.T) {
	assert.Equal(t, token.IF, token.Lookup("if"))
	assert.Equal(t, token.WHILE, token.Lookup("while"))
	assert.Equal(t, token.TRUE, token.Lookup("yes"))
	assert.Equal(t, token.FALSE, token.Lookup("no"))
	assert.Equal(t, token.GLOBAL, token.Lookup("global"))
}

func TestLookupNonKeywordIsIdent(t *testing.T) {
	assert.Equal(t, token.IDENT, token.Lookup("x"))
	assert.Equal(t, token.IDENT, token.Lookup("whileish"))
}

func TestTokenStringIsLexeme(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "foo"}
	assert.Equal(t, "foo", tok.String())
}
