// Package diagnostics renders env.Diagnostic values to a writer, matching
// the three-kind error policy of spec.md §7: syntax errors abort parsing of
// the current statement, type errors abort typechecking of the current
// file, runtime errors abort the current backend call.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/bruce-hill/blangc/internal/env"
)

// Reporter accumulates diagnostics and renders them with source context,
// colorizing only when the destination is a terminal (funxy gates ANSI
// output on isatty.IsTerminal the same way).
type Reporter struct {
	w        io.Writer
	colorize bool
	Errors   []env.Diagnostic
}

// New creates a Reporter writing to w, auto-detecting terminal colorization.
func New(w io.Writer) *Reporter {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{w: w, colorize: colorize}
}

func (r *Reporter) kindLabel(k env.DiagnosticKind) (string, string) {
	switch k {
	case env.KindSyntax:
		return "syntax error", "\x1b[31m"
	case env.KindType:
		return "type error", "\x1b[33m"
	default:
		return "runtime error", "\x1b[35m"
	}
}

// Report records d and writes it immediately, with the offending span and
// any attached notes underlined.
func (r *Reporter) Report(d env.Diagnostic) {
	r.Errors = append(r.Errors, d)
	label, color := r.kindLabel(d.Kind)
	if d.Span.File != nil {
		fmt.Fprintf(r.w, "%s: %s: %s\n", d.Span.File.Name, label, d.Message)
		FprintSpanContext(r.w, d.Span, color, r.colorize)
	} else {
		fmt.Fprintf(r.w, "%s: %s\n", label, d.Message)
	}
	for _, note := range d.Notes {
		fmt.Fprintln(r.w, "note:")
		FprintSpanContext(r.w, note, "\x1b[36m", r.colorize)
	}
}

// HasErrors reports whether any diagnostic has been recorded.
func (r *Reporter) HasErrors() bool { return len(r.Errors) > 0 }
