// Package backend declares the interface every execution backend
// implements (spec.md §6.3): given a lowered ir.Module, either execute it
// directly (vmbackend) or emit a native artifact (native).
package backend

import "github.com/bruce-hill/blangc/internal/ir"

// Backend compiles or executes a lowered Module.
type Backend interface {
	// Run JIT-executes module's main function and returns its exit code,
	// used by the REPL and by plain `blangc file.lang` invocation.
	Run(module *ir.Module) (int, error)

	// CompileToFile emits a standalone artifact at outPath (an object file,
	// assembly, or a linked executable depending on the backend and spec.md
	// §6.1's `-c`/`-A`/`-O` flags).
	CompileToFile(module *ir.Module, outPath string, opts CompileOptions) error

	// Name identifies the backend for `-v`/diagnostic output.
	Name() string
}

// CompileOptions mirrors the subset of spec.md §6.1's CLI flags a backend
// needs to see: optimization level and whether to stop at assembly.
type CompileOptions struct {
	OptLevel  int
	AsmOnly   bool
	Verbose   bool
}
