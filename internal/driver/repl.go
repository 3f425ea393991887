package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/diagnostics"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/lower"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
)

// REPL holds the state that persists across successive inputs: the shared
// Environment (globals, namespaces, synthesized-function caches) and the
// count of inputs compiled so far, used to name each input's synthetic
// module (spec.md §4.7).
type REPL struct {
	Env     *env.Environment
	Backend backend.Backend
	count   int
}

// NewREPL creates a REPL whose Environment's ErrorTarget long-jumps out of
// the current input's compile (spec.md §4.8) instead of exiting the
// process, matching the REPL path's recovery policy of spec.md §7.
func NewREPL(bk backend.Backend) *REPL {
	r := &REPL{Backend: bk, Env: env.New()}
	env.RegisterBuiltins(r.Env)
	return r
}

// Run reads lines from in, compiling and executing each top-level input as
// it completes (a blank line ends the current input), until EOF.
func (r *REPL) Run(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	prompt := func() {
		if f, ok := out.(*os.File); ok && env.StdoutIsTerminal(f) {
			fmt.Fprint(out, "> ")
		}
	}
	prompt()
	var buf string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if buf != "" {
				r.EvalInput(buf, out)
				buf = ""
			}
			prompt()
			continue
		}
		if buf == "" {
			buf = line
		} else {
			buf += "\n" + line
		}
	}
	if buf != "" {
		r.EvalInput(buf, out)
	}
}

// EvalInput wraps text's top-level statements in DocTest (promoting
// declarations to globals first), lowers the result into a fresh module
// sharing r.Env's caches, and runs it on r.Backend. Later inputs observe
// earlier declarations through the backend's global storage, which
// vmbackend keeps across Run calls (spec.md §4.7, §3.4 "Lifecycle").
func (r *REPL) EvalInput(text string, out io.Writer) {
	r.count++
	name := fmt.Sprintf("<repl:%d>", r.count)
	file := source.New(name, text)
	r.Env.CurrentFile = file

	var caught *env.Diagnostic
	r.Env.ErrorTarget = func(d env.Diagnostic) { caught = &d }

	body, parseErrs := parser.Parse(file)
	if len(parseErrs) > 0 {
		for _, d := range parseErrs {
			reportOne(out, env.Diagnostic{Kind: env.KindSyntax, Message: d.Message, Span: d.Span})
		}
		return
	}

	promoteDeclarationsToGlobals(body)
	wrapped := wrapDocTests(body)

	checker := check.New(r.Env)
	for _, stmt := range wrapped.Statements {
		checker.GetType(stmt)
		if caught != nil {
			reportOne(out, *caught)
			return
		}
	}
	if len(checker.Errors()) > 0 {
		for _, d := range checker.Errors() {
			reportOne(out, d)
		}
		return
	}

	if os, ok := r.Backend.(outputSetter); ok {
		os.SetOutput(out)
	}
	lo := lower.New(r.Env, checker, name)
	module := lo.LowerProgram(wrapped)
	if _, err := r.Backend.Run(module); err != nil {
		fmt.Fprintf(out, "runtime error: %s\n", err)
	}
}

// outputSetter is satisfied by backends that echo DocTest results
// (spec.md §4.7's `= value` lines) to a configurable writer rather than
// always writing to the process's real stdout; vmbackend.VM implements
// it so each REPL input's echo lands on the right writer.
type outputSetter interface{ SetOutput(io.Writer) }

func reportOne(w io.Writer, d env.Diagnostic) {
	rep := diagnostics.New(w)
	rep.Report(d)
}

// promoteDeclarationsToGlobals marks every top-level Declare as global, so
// its binding outlives the input that introduced it (spec.md §4.7).
func promoteDeclarationsToGlobals(body *ast.Block) {
	for _, stmt := range body.Statements {
		if d, ok := stmt.(*ast.Declare); ok {
			d.IsGlobal = true
		}
	}
}

// wrapDocTests rebuilds body with every statement wrapped in a DocTest, the
// REPL echo spec.md §4.7 describes.
func wrapDocTests(body *ast.Block) *ast.Block {
	stmts := make([]ast.Node, len(body.Statements))
	for i, stmt := range body.Statements {
		stmts[i] = &ast.DocTest{Base: ast.NewBase(stmt.GetSpan()), Expr: stmt}
	}
	return &ast.Block{Statements: stmts, Base: body.Base}
}
