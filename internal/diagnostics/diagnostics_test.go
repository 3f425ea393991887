package diagnostics_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/diagnostics"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/source"
)

func TestReportWithoutSpanStillPrintsMessage(t *testing.T) {
	var buf bytes.Buffer
	r := diagnostics.New(&buf)
	r.Report(env.Diagnostic{Kind: env.KindRuntime, Message: "boom"})
	assert.Contains(t, buf.String(), "runtime error: boom")
}

func TestReportWithSpanPrintsFileNameAndUnderline(t *testing.T) {
	f := source.New("main.lang", "x := 1\n")
	var buf bytes.Buffer
	r := diagnostics.New(&buf)
	r.Report(env.Diagnostic{Kind: env.KindSyntax, Message: "unexpected token", Span: source.NewSpan(f, 0, 1)})
	out := buf.String()
	assert.Contains(t, out, "main.lang")
	assert.Contains(t, out, "syntax error")
	assert.Contains(t, out, "unexpected token")
	assert.Contains(t, out, "^")
}

func TestReportAccumulatesErrorsAndHasErrors(t *testing.T) {
	var buf bytes.Buffer
	r := diagnostics.New(&buf)
	require.False(t, r.HasErrors())
	r.Report(env.Diagnostic{Kind: env.KindType, Message: "one"})
	r.Report(env.Diagnostic{Kind: env.KindType, Message: "two"})
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Errors, 2)
}

func TestReportRendersNotes(t *testing.T) {
	f := source.New("main.lang", "x := 1\ny := 2\n")
	var buf bytes.Buffer
	r := diagnostics.New(&buf)
	r.Report(env.Diagnostic{
		Kind:    env.KindType,
		Message: "mismatch",
		Span:    source.NewSpan(f, 0, 1),
		Notes:   []source.Span{source.NewSpan(f, 7, 8)},
	})
	assert.Contains(t, buf.String(), "note:")
}

func TestFprintSpanContextIgnoresNilFile(t *testing.T) {
	var buf bytes.Buffer
	diagnostics.FprintSpanContext(&buf, source.Span{}, "", false)
	assert.Empty(t, buf.String())
}
