// Package source owns the compiler's view of input text: files, line
// indexes, and the spans that every AST node and diagnostic point back into.
package source

import "strings"

// File is an immutable source buffer plus a precomputed line index.
type File struct {
	Name string
	Text string

	// lineStarts[i] is the byte offset of the first character of line i (0-based).
	lineStarts []int
	// indent[i] is the number of leading indentation columns on line i.
	indent []int
	// empty[i] is true when line i contains only whitespace.
	empty []bool
}

// New builds a File from a name (path, or a REPL label) and its full text.
func New(name, text string) *File {
	f := &File{Name: name, Text: text}
	f.indexLines()
	return f
}

func (f *File) indexLines() {
	f.lineStarts = append(f.lineStarts, 0)
	for i, r := range f.Text {
		if r == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	f.indent = make([]int, len(f.lineStarts))
	f.empty = make([]bool, len(f.lineStarts))
	for i, start := range f.lineStarts {
		end := len(f.Text)
		if i+1 < len(f.lineStarts) {
			end = f.lineStarts[i+1] - 1
		}
		line := f.Text[start:max(start, end)]
		trimmed := strings.TrimLeft(line, " \t")
		f.indent[i] = len(line) - len(trimmed)
		f.empty[i] = strings.TrimSpace(line) == ""
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// LineCount returns the number of lines indexed in the file.
func (f *File) LineCount() int { return len(f.lineStarts) }

// LineNumber returns the 0-based line number containing byte offset ptr.
func (f *File) LineNumber(ptr int) int {
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= ptr {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Indent returns the indentation column count of the line containing ptr.
func (f *File) Indent(ptr int) int {
	return f.indent[f.LineNumber(ptr)]
}

// LineStart returns the byte offset of the start of line n (0-based).
func (f *File) LineStart(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(f.lineStarts) {
		n = len(f.lineStarts) - 1
	}
	return f.lineStarts[n]
}

// LineEnd returns the byte offset one past the last character of line n,
// excluding its trailing newline.
func (f *File) LineEnd(n int) int {
	if n+1 < len(f.lineStarts) {
		end := f.lineStarts[n+1] - 1
		if end >= 0 && end <= len(f.Text) && end > 0 && f.Text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(f.Text)
}

// LineText returns the text of line n without its terminator.
func (f *File) LineText(n int) string {
	return f.Text[f.LineStart(n):f.LineEnd(n)]
}

// IsEmptyLine reports whether line n is blank or whitespace-only.
func (f *File) IsEmptyLine(n int) bool {
	if n < 0 || n >= len(f.empty) {
		return true
	}
	return f.empty[n]
}

// Span is a half-open byte range [Start, End) into a File.
type Span struct {
	File  *File
	Start int
	End   int
}

// NewSpan builds a span, clamping to the file's bounds.
func NewSpan(f *File, start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	if end < start {
		end = start
	}
	return Span{File: f, Start: start, End: end}
}

// Text returns the source slice covered by the span.
func (s Span) Text() string {
	return s.File.Text[s.Start:s.End]
}

// Until returns a span covering from s.Start to the end of other.
func (s Span) Until(other Span) Span {
	return Span{File: s.File, Start: s.Start, End: other.End}
}

// Valid reports the span-preservation invariant: start <= end, inside the file.
func (s Span) Valid() bool {
	return s.File != nil && s.Start <= s.End && s.Start >= 0 && s.End <= len(s.File.Text)
}
