package source

import (
	"fmt"
	"io"
	"strings"
)

// FprintSpan writes the source lines enclosing [start,end), underlining the
// span with colorPrefix (an ANSI escape, or "" for plain text). context
// controls how many lines of surrounding context are shown on each side.
func FprintSpan(w io.Writer, f *File, start, end int, colorPrefix string, context int, colorize bool) {
	const reset = "\x1b[0m"
	startLine := f.LineNumber(start)
	endLine := f.LineNumber(max0(end-1, start))

	first := startLine - context
	if first < 0 {
		first = 0
	}
	last := endLine + context
	if last >= f.LineCount() {
		last = f.LineCount() - 1
	}

	gutterWidth := len(fmt.Sprintf("%d", last+1))

	for ln := first; ln <= last; ln++ {
		lineText := f.LineText(ln)
		fmt.Fprintf(w, " %*d | %s\n", gutterWidth, ln+1, lineText)
		if ln < startLine || ln > endLine {
			continue
		}
		lineStart := f.LineStart(ln)
		lineEnd := f.LineEnd(ln)
		underlineStart := maxInt(start, lineStart) - lineStart
		underlineEnd := minInt(end, lineEnd) - lineStart
		if underlineEnd < underlineStart {
			underlineEnd = underlineStart
		}
		pad := strings.Repeat(" ", underlineStart)
		width := underlineEnd - underlineStart
		if width < 1 {
			width = 1
		}
		marks := strings.Repeat("^", width)
		if colorize && colorPrefix != "" {
			fmt.Fprintf(w, " %s | %s%s%s%s\n", strings.Repeat(" ", gutterWidth), pad, colorPrefix, marks, reset)
		} else {
			fmt.Fprintf(w, " %s | %s%s\n", strings.Repeat(" ", gutterWidth), pad, marks)
		}
	}
}

func max0(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
