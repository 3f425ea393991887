// Package vmbackend is the JIT-style execution path: it walks a lowered
// ir.Module directly, dispatching each Instr by its Op the way funxy's
// internal/vm/vm_exec.go dispatches bytecode by opcode, but operating on
// the block-structured IR directly rather than compiling to a flat
// bytecode stream first.
package vmbackend

import (
	"fmt"
	"io"
	"os"

	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
)

// VM interprets ir.Modules in-process.
type VM struct {
	module  *ir.Module
	globals map[string]interface{}

	// Output is where DocTest echoes (spec.md §4.7's `= value` REPL lines)
	// are written. Defaults to os.Stdout; the driver's REPL points this at
	// its own writer so input-by-input evaluation is testable in isolation.
	Output io.Writer
}

// New creates an empty VM, ready to Run successive Modules against a
// shared global store (the REPL's global-promotion target, spec.md §4.7).
func New() *VM {
	return &VM{globals: map[string]interface{}{}, Output: os.Stdout}
}

// SetOutput redirects DocTest echo output; satisfies the driver's optional
// output-setter interface.
func (vm *VM) SetOutput(w io.Writer) { vm.Output = w }

func (vm *VM) Name() string { return "vm" }

// CompileToFile is unsupported: the vm backend only executes in-process,
// matching funxy's vmbackend.go which has no ahead-of-time path either.
func (vm *VM) CompileToFile(module *ir.Module, outPath string, opts backend.CompileOptions) error {
	return fmt.Errorf("vm backend does not support ahead-of-time compilation; use the native backend")
}

// Run JIT-executes module's `main` function.
func (vm *VM) Run(module *ir.Module) (int, error) {
	vm.module = module
	for _, g := range module.Globals {
		if _, ok := vm.globals[g.Name]; !ok {
			vm.globals[g.Name] = zeroValue(g.Type)
		}
	}
	main := vm.findFunc("main")
	if main == nil {
		return 0, fmt.Errorf("module %q has no main function", module.Name)
	}
	ret, err := vm.call(main, nil)
	if err != nil {
		return 1, err
	}
	if code, ok := ret.(int64); ok {
		return int(code), nil
	}
	return 0, nil
}

func (vm *VM) findFunc(name string) *ir.Function {
	for _, fn := range vm.module.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func zeroValue(t *types.Type) interface{} {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case types.KindBool:
		return false
	case types.KindInt:
		return int64(0)
	case types.KindNum:
		return float64(0)
	case types.KindChar:
		return int64(0)
	default:
		return nil
	}
}
