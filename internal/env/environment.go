package env

import (
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/types"
)

// Namespace is a per-type member table: uppercased/lowercased/trimmed and
// friends on String, sin/cos/pow on Num, user struct/enum methods, etc.
// (spec.md §4.6).
type Namespace map[string]*Binding

// Environment is a chain of binding maps (innermost first) plus the
// compilation-wide caches spec.md §3.4 requires. A fresh Environment is
// created per compilation unit; FreshScope pushes a child frame whose
// lookups fall back to the parent (spec.md §3.4 "Lifecycle").
//
// Per spec.md's design notes (§9 "Global mutable state"), these caches are
// owned by the Environment value itself rather than package-level globals,
// so multiple independent compilations (e.g. concurrent LSP-less batch
// runs, or nested REPL contexts) never cross-contaminate.
type Environment struct {
	cur *scope

	// BackendTypeCache memoizes Type -> backend type handle (e.g. an LLVM
	// struct type), avoiding repeated backend-side struct construction.
	BackendTypeCache map[*types.Type]interface{}

	// Namespaces holds the per-type member table (spec.md §3.4).
	Namespaces map[*types.Type]Namespace

	// TupleTypes interns anonymous tuple/struct types built during lowering.
	TupleTypes map[string]*types.Type

	// PrintFuncs/CompareFuncs/HashFuncs memoize the once-per-type synthesized
	// functions of spec.md §4.5.5.
	PrintFuncs   map[*types.Type]interface{}
	CompareFuncs map[*types.Type]interface{}
	HashFuncs    map[*types.Type]interface{}

	// Globals is the global function table (backend function handles for
	// top-level FunctionDefs), keyed by name.
	Globals map[string]*Binding

	// ErrorTarget is the escape used by the parser/typechecker to abort to
	// the driver without manual unwinding (spec.md §4.8). nil means "print
	// diagnostics and terminate the process" (the batch-compile default).
	ErrorTarget func(Diagnostic)

	// CurrentFile is the file currently being compiled, for diagnostics
	// that don't otherwise carry a span.
	CurrentFile *source.File

	// LoopStack is the current loop label stack (spec.md §3.5); nil outside
	// any loop.
	LoopStack *LoopLabel
}

// Diagnostic is a single compiler-produced error or warning (spec.md §7).
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Span    source.Span
	Notes   []source.Span
}

// DiagnosticKind distinguishes the three error kinds of spec.md §7.
type DiagnosticKind int

const (
	KindSyntax DiagnosticKind = iota
	KindType
	KindRuntime
)

// New creates a fresh, empty Environment with no parent scope.
func New() *Environment {
	return &Environment{
		cur:              newScope(nil),
		BackendTypeCache: map[*types.Type]interface{}{},
		Namespaces:       map[*types.Type]Namespace{},
		TupleTypes:       map[string]*types.Type{},
		PrintFuncs:       map[*types.Type]interface{}{},
		CompareFuncs:     map[*types.Type]interface{}{},
		HashFuncs:        map[*types.Type]interface{}{},
		Globals:          map[string]*Binding{},
	}
}

// FreshScope returns a new Environment sharing this one's globals and
// caches but with its own child binding frame, per spec.md §3.4.
func (e *Environment) FreshScope() *Environment {
	child := *e
	child.cur = newScope(e.cur)
	return &child
}

// Define binds name to b in the innermost scope.
func (e *Environment) Define(name string, b *Binding) {
	e.cur.vars[name] = b
	if b.IsGlobal {
		e.Globals[name] = b
	}
}

// Lookup searches the scope chain, innermost first.
func (e *Environment) Lookup(name string) (*Binding, bool) {
	return e.cur.lookup(name)
}

// NamespaceFor returns (creating if absent) the per-type member table for t.
func (e *Environment) NamespaceFor(t *types.Type) Namespace {
	if ns, ok := e.Namespaces[t]; ok {
		return ns
	}
	ns := Namespace{}
	e.Namespaces[t] = ns
	return ns
}

// Abort routes a diagnostic to ErrorTarget if one is set, otherwise it
// returns false so the caller falls back to the batch-compile
// print-and-exit path (spec.md §4.8, §7).
func (e *Environment) Abort(d Diagnostic) bool {
	if e.ErrorTarget != nil {
		e.ErrorTarget(d)
		return true
	}
	return false
}
