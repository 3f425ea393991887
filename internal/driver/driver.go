// Package driver orchestrates parse -> typecheck -> lower -> backend
// (spec.md §4.7): batch compilation of a single file, and the REPL loop
// that wraps each input in a synthetic DocTest block and promotes new
// declarations to globals between inputs.
package driver

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/diagnostics"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/lower"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// Options controls one compilation run (spec.md §6.1's CLI flags reduced
// to their effect on the pipeline, independent of how they were parsed).
type Options struct {
	Verbose  bool
	ModuleID string

	// Defines holds `-Vname=literal` pre-seeded global constants: name to
	// raw literal text, parsed and stored into a global before main runs.
	Defines map[string]string
}

// Result carries the outcome of a single file's compile, for both the CLI
// ("did it succeed, what's the module") and tests (inspecting the IR
// directly without going through a backend).
type Result struct {
	Module      *ir.Module
	Diagnostics []env.Diagnostic
}

// CompileSource runs the full parse/typecheck/lower pipeline over text,
// attributed to the given file name for diagnostics, and returns the
// lowered module or the diagnostics that aborted it.
func CompileSource(name, text string, opts Options) *Result {
	file := source.New(name, text)
	e := env.New()
	e.CurrentFile = file
	env.RegisterBuiltins(e)

	defines := parseDefines(opts.Defines)
	for _, d := range defines {
		e.Define(d.Name, &env.Binding{Type: d.Type, IsGlobal: true, Symbol: d.Name})
	}

	body, parseErrs := parser.Parse(file)
	if len(parseErrs) > 0 {
		diags := make([]env.Diagnostic, len(parseErrs))
		for i, d := range parseErrs {
			diags[i] = env.Diagnostic{Kind: env.KindSyntax, Message: d.Message, Span: d.Span}
		}
		return &Result{Diagnostics: diags}
	}

	checker := check.New(e)
	checkProgram(checker, body)
	if len(checker.Errors()) > 0 {
		return &Result{Diagnostics: checker.Errors()}
	}

	lo := lower.New(e, checker, opts.moduleName(name))
	lo.Defines = defines
	module := lo.LowerProgram(body)
	return &Result{Module: module}
}

// parseDefines turns `-V` raw literal text into sorted, typed globals: an
// int if it parses as one, else a float, else true/false, else a string
// (spec.md §6.1).
func parseDefines(raw map[string]string) []lower.Define {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	defines := make([]lower.Define, 0, len(names))
	for _, name := range names {
		defines = append(defines, parseDefine(name, raw[name]))
	}
	return defines
}

func parseDefine(name, literal string) lower.Define {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		t := types.Int(64, units.None, false)
		return lower.Define{Name: name, Type: t, Value: &ir.Const{Type: t, Int: i}}
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		t := types.Num(64, units.None)
		return lower.Define{Name: name, Type: t, Value: &ir.Const{Type: t, Float: f}}
	}
	if literal == "true" || literal == "false" {
		v := int64(0)
		if literal == "true" {
			v = 1
		}
		return lower.Define{Name: name, Type: types.Bool(), Value: &ir.Const{Type: types.Bool(), Int: v}}
	}
	t := types.Array(types.Char())
	return lower.Define{Name: name, Type: t, Value: &ir.Const{Type: t, Str: literal}}
}

func (o Options) moduleName(fallback string) string {
	if o.ModuleID != "" {
		return o.ModuleID
	}
	return fallback
}

// checkProgram typechecks every top-level statement, matching
// spec.md §4.4's "each statement checked against no expectation, as a
// plain expression-or-declaration".
func checkProgram(c *check.Checker, body *ast.Block) {
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
}

// CompileFile reads path, compiles it, and reports diagnostics to stderr,
// matching the batch-compile policy of spec.md §7 (print and signal
// failure, no partial output).
func CompileFile(path string, opts Options) (*Result, bool) {
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
		return nil, false
	}
	res := CompileSource(path, string(text), opts)
	if len(res.Diagnostics) > 0 {
		report(res.Diagnostics)
		return res, false
	}
	return res, true
}

func report(diags []env.Diagnostic) {
	r := diagnostics.New(os.Stderr)
	for _, d := range diags {
		r.Report(d)
	}
}

// RunFile compiles path and executes it via bk, returning the process exit
// code (spec.md §6.1: "exit code 0 on success, 1 on any diagnostic").
func RunFile(path string, bk backend.Backend, opts Options) int {
	res, ok := CompileFile(path, opts)
	if !ok {
		return 1
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "; backend: %s\n", bk.Name())
	}
	code, err := bk.Run(res.Module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		return 1
	}
	return code
}

// CompileFileTo compiles path and emits a native artifact at outPath
// (spec.md §6.1's `-c`).
func CompileFileTo(path, outPath string, bk backend.Backend, compileOpts backend.CompileOptions, opts Options) bool {
	res, ok := CompileFile(path, opts)
	if !ok {
		return false
	}
	if err := bk.CompileToFile(res.Module, outPath, compileOpts); err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %s\n", err)
		return false
	}
	return true
}
