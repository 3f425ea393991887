// Package env implements the Language's lexically-scoped binding chain,
// per-type method namespaces, and the compilation-wide caches the
// typechecker and lowering pass share (spec.md §3.4).
package env

import "github.com/bruce-hill/blangc/internal/types"

// Binding is a variable's type plus whatever backend handles lowering has
// attached to it so far. LValue/RValue/Func are opaque backend-owned
// handles (concretely *ir.Value / *ir.Function once lowering runs); env
// itself never looks inside them, so it stays independent of internal/ir.
type Binding struct {
	Type       *types.Type
	LValue     interface{} // addressable storage, if this binding has one
	RValue     interface{} // a cached materialized value, if computed once
	Func       interface{} // backend function handle, for function bindings
	IsGlobal   bool
	Symbol     string
	TypeValue  *types.Type // for type-namespace bindings: the Type this binding names
}

// scope is one frame of the lexical binding chain.
type scope struct {
	vars   map[string]*Binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]*Binding{}, parent: parent}
}

func (s *scope) lookup(name string) (*Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}
