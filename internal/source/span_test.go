package source_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/source"
)

func TestFileLineIndex(t *testing.T) {
	f := source.New("<test>", "abc\n  def\nghi")
	require.Equal(t, 3, f.LineCount())
	assert.Equal(t, 0, f.LineNumber(0))
	assert.Equal(t, 1, f.LineNumber(5))
	assert.Equal(t, 2, f.LineNumber(12))
	assert.Equal(t, 2, f.Indent(5))
	assert.Equal(t, "  def", f.LineText(1))
}

func TestFileIsEmptyLine(t *testing.T) {
	f := source.New("<test>", "a\n\n   \nb")
	assert.False(t, f.IsEmptyLine(0))
	assert.True(t, f.IsEmptyLine(1))
	assert.True(t, f.IsEmptyLine(2))
	assert.False(t, f.IsEmptyLine(3))
}

func TestSpanClamping(t *testing.T) {
	f := source.New("<test>", "hello")
	s := source.NewSpan(f, -3, 100)
	assert.Equal(t, 0, s.Start)
	assert.Equal(t, 5, s.End)
	assert.True(t, s.Valid())
}

func TestSpanText(t *testing.T) {
	f := source.New("<test>", "hello world")
	s := source.NewSpan(f, 6, 11)
	assert.Equal(t, "world", s.Text())
}

func TestSpanUntil(t *testing.T) {
	f := source.New("<test>", "abcdef")
	a := source.NewSpan(f, 0, 2)
	b := source.NewSpan(f, 3, 5)
	joined := a.Until(b)
	assert.Equal(t, "abcde", joined.Text())
}

func TestFprintSpanUnderlinesRange(t *testing.T) {
	f := source.New("<test>", "let x = 1\nlet y = 2\n")
	var buf bytes.Buffer
	source.FprintSpan(&buf, f, 4, 5, "", 0, false)
	out := buf.String()
	assert.Contains(t, out, "let x = 1")
	assert.Contains(t, out, "^")
}
