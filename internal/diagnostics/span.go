package diagnostics

import (
	"io"

	"github.com/bruce-hill/blangc/internal/source"
)

// FprintSpanContext underlines span within its file, with one line of
// context on either side.
func FprintSpanContext(w io.Writer, span source.Span, colorPrefix string, colorize bool) {
	if span.File == nil {
		return
	}
	source.FprintSpan(w, span.File, span.Start, span.End, colorPrefix, 1, colorize)
}
