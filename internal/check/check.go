// Package check implements the bidirectional typechecker of spec.md §4.4:
// GetType infers a type bottom-up for most nodes, consulting an expected
// type top-down only where the grammar is otherwise ambiguous (empty array
// and table literals, nil pointers). Lambda argument types are not inferred
// from an expected type.
package check

import (
	"fmt"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// Checker walks an AST, computing and caching each node's Type and
// reporting diagnostics through the Environment's error channel.
type Checker struct {
	Env    *env.Environment
	Types  map[ast.Node]*types.Type
	errors []env.Diagnostic
}

// New creates a Checker bound to e. Every GetType call records its result
// in Types, so later passes (lowering) never recompute a node's type.
func New(e *env.Environment) *Checker {
	return &Checker{Env: e, Types: map[ast.Node]*types.Type{}}
}

// Errors returns every diagnostic accumulated so far.
func (c *Checker) Errors() []env.Diagnostic { return c.errors }

func (c *Checker) errorf(span source.Span, format string, args ...interface{}) *types.Type {
	d := env.Diagnostic{Kind: env.KindType, Message: fmt.Sprintf(format, args...), Span: span}
	c.errors = append(c.errors, d)
	c.Env.Abort(d)
	return types.Abort()
}

// GetType infers n's type with no contextual expectation.
func (c *Checker) GetType(n ast.Node) *types.Type {
	return c.getTypeExpecting(n, nil)
}

// Check infers n's type and requires it be compatible with want, emitting a
// diagnostic and returning Abort() on mismatch.
func (c *Checker) Check(n ast.Node, want *types.Type) *types.Type {
	t := c.getTypeExpecting(n, want)
	if want == nil || t.Kind() == types.KindAbort {
		return t
	}
	if types.IsSubtype(t, want) {
		return t
	}
	return c.errorf(n.GetSpan(), "expected %s, got %s", want, t)
}

func (c *Checker) getTypeExpecting(n ast.Node, want *types.Type) *types.Type {
	if t, ok := c.Types[n]; ok {
		return t
	}
	t := c.infer(n, want)
	c.Types[n] = t
	return t
}

// infer dispatches on the node's concrete type. It is the direct structural
// analogue of spec.md's single `get_type`, generalized from funxy's
// per-construct `inference_*.go` split (one case per concrete node kind
// rather than one case per statement/expression supertype).
func (c *Checker) infer(n ast.Node, want *types.Type) *types.Type {
	switch node := n.(type) {
	case *ast.Nil:
		return c.inferNil(node, want)
	case *ast.Bool:
		return types.Bool()
	case *ast.Int:
		return types.Int(node.Precision, node.Units, false)
	case *ast.Num:
		return types.Num(node.Precision, node.Units)
	case *ast.Char:
		return types.Char()
	case *ast.Range:
		return c.inferRange(node)
	case *ast.StringLiteral:
		return stringType()
	case *ast.StringJoin:
		return c.inferStringJoin(node)
	case *ast.Interp:
		c.GetType(node.Value)
		return stringType()

	case *ast.Var:
		return c.inferVar(node)
	case *ast.FieldAccess:
		return c.inferFieldAccess(node)
	case *ast.Index:
		return c.inferIndex(node)
	case *ast.Dereference:
		return c.inferDereference(node)
	case *ast.HeapAllocate:
		inner := c.GetType(node.Value)
		return types.Pointer(inner, false, false)

	case *ast.Array:
		return c.inferArray(node, want)
	case *ast.Table:
		return c.inferTable(node, want)
	case *ast.Struct:
		return c.inferStruct(node, want)
	case *ast.KeywordArg:
		return c.GetType(node.Arg)

	case *ast.UnaryOp:
		return c.inferUnaryOp(node)
	case *ast.BinaryOp:
		return c.inferBinaryOp(node)
	case *ast.CompoundAssign:
		if idx, ok := node.LHS.(*ast.Index); ok {
			if _, isRange := idx.IndexVal.(*ast.Range); isRange {
				return c.errorf(node.GetSpan(), "range-slice assignment is not supported")
			}
		}
		return c.GetType(node.LHS)
	case *ast.FunctionCall:
		return c.inferCall(node)

	case *ast.Block:
		return c.inferBlock(node)
	case *ast.Do:
		var last *types.Type = types.Void()
		for _, b := range node.Blocks {
			last = c.GetType(b)
		}
		return last
	case *ast.If:
		return c.inferIf(node)
	case *ast.When:
		return c.inferWhen(node)
	case *ast.For:
		c.checkFor(node)
		return types.Void()
	case *ast.While:
		c.Check(node.Cond, types.Bool())
		c.GetType(node.Body)
		return types.Void()
	case *ast.Repeat:
		c.GetType(node.Body)
		return types.Void()
	case *ast.Skip, *ast.Stop:
		return types.Abort()
	case *ast.Return:
		if node.Value != nil {
			c.GetType(node.Value)
		}
		return types.Abort()
	case *ast.Fail:
		if node.Message != nil {
			c.Check(node.Message, stringType())
		}
		return types.Abort()

	case *ast.Declare:
		return c.checkDeclare(node)
	case *ast.Assign:
		return c.checkAssign(node)
	case *ast.FunctionDef:
		return c.checkFunctionDef(node)
	case *ast.Lambda:
		return c.inferLambda(node)
	case *ast.StructDef:
		return c.checkStructDef(node)
	case *ast.EnumDef:
		return c.checkEnumDef(node)
	case *ast.Extern:
		t := c.resolveTypeAST(node.Type)
		c.Env.Define(node.Name, &env.Binding{Type: t, Symbol: node.Name})
		return types.Void()
	case *ast.Use:
		return types.Module()
	case *ast.DocTest:
		return c.GetType(node.Expr)

	case *ast.TypeName, *ast.TypeArray, *ast.TypePointer, *ast.TypeOptional,
		*ast.TypeFunction, *ast.TypeTuple, *ast.TypeMeasure:
		return types.TypeOf(c.resolveTypeAST(n))
	}
	return c.errorf(n.GetSpan(), "internal error: unhandled node %T", n)
}

func stringType() *types.Type { return types.Array(types.Char()) }

func (c *Checker) inferNil(n *ast.Nil, want *types.Type) *types.Type {
	if n.Type != nil {
		pointed := c.resolveTypeAST(n.Type)
		return types.Pointer(pointed, true, false)
	}
	if want != nil && want.Kind() == types.KindPointer {
		return want
	}
	return c.errorf(n.GetSpan(), "cannot infer type of nil literal without context")
}

func (c *Checker) inferRange(n *ast.Range) *types.Type {
	if n.Step != nil {
		if iv, ok := n.Step.(*ast.Int); ok && iv.Value.Sign() == 0 {
			return c.errorf(n.GetSpan(), "range step of 0 is not allowed")
		}
		if nv, ok := n.Step.(*ast.Num); ok && nv.Value == 0 {
			return c.errorf(n.GetSpan(), "range step of 0 is not allowed")
		}
	}
	if n.First != nil {
		c.GetType(n.First)
	}
	if n.Step != nil {
		c.GetType(n.Step)
	}
	if n.Last != nil {
		c.GetType(n.Last)
	}
	return types.RangeT()
}

func (c *Checker) inferStringJoin(n *ast.StringJoin) *types.Type {
	for _, child := range n.Children {
		c.GetType(child)
	}
	return stringType()
}

func (c *Checker) inferVar(n *ast.Var) *types.Type {
	b, ok := c.Env.Lookup(n.Name)
	if !ok {
		return c.errorf(n.GetSpan(), "undefined name %q", n.Name)
	}
	return b.Type
}

func (c *Checker) inferFieldAccess(n *ast.FieldAccess) *types.Type {
	recv := c.GetType(n.Receiver)
	base := recv
	if base.Kind() == types.KindPointer {
		if base.Optional {
			return c.errorf(n.GetSpan(), "cannot access a field through an optional pointer without a nil check")
		}
		base = base.Pointed
	}
	if base.Kind() == types.KindStruct {
		for i, name := range base.FieldNames {
			if name == n.Field {
				return base.FieldTypes[i]
			}
		}
	}
	if base.Kind() == types.KindTaggedUnion {
		for _, name := range base.Data.FieldNames {
			if name == n.Field {
				return types.Variant(name, base)
			}
		}
	}
	if ns, ok := c.Env.Namespaces[base]; ok {
		if b, ok := ns[n.Field]; ok {
			return b.Type
		}
	}
	return c.errorf(n.GetSpan(), "%s has no member %q", recv, n.Field)
}

func (c *Checker) inferIndex(n *ast.Index) *types.Type {
	recv := c.GetType(n.Receiver)
	if r, ok := n.IndexVal.(*ast.Range); ok {
		_ = r
		c.GetType(n.IndexVal)
		if recv.Kind() != types.KindArray {
			return c.errorf(n.GetSpan(), "range-slice assignment is not supported on %s", recv)
		}
		return recv
	}
	idxType := c.GetType(n.IndexVal)
	switch recv.Kind() {
	case types.KindArray:
		if !idxType.IsNumeric() {
			return c.errorf(n.GetSpan(), "array index must be an integer, got %s", idxType)
		}
		return recv.Item
	case types.KindTable:
		if !types.IsSubtype(idxType, recv.Key) {
			return c.errorf(n.GetSpan(), "table key type mismatch: expected %s, got %s", recv.Key, idxType)
		}
		return recv.Value
	}
	return c.errorf(n.GetSpan(), "cannot index into %s", recv)
}

func (c *Checker) inferDereference(n *ast.Dereference) *types.Type {
	t := c.GetType(n.Value)
	if t.Kind() != types.KindPointer {
		return c.errorf(n.GetSpan(), "cannot dereference non-pointer %s", t)
	}
	if t.Optional {
		return c.errorf(n.GetSpan(), "cannot dereference an optional pointer without a nil check")
	}
	return t.Pointed
}

func (c *Checker) inferArray(n *ast.Array, want *types.Type) *types.Type {
	if len(n.Items) == 0 {
		if n.ItemType != nil {
			return types.Array(c.resolveTypeAST(n.ItemType))
		}
		if want != nil && want.Kind() == types.KindArray {
			return want
		}
		return c.errorf(n.GetSpan(), "cannot infer item type of an empty array literal")
	}
	item := c.GetType(n.Items[0])
	for _, it := range n.Items[1:] {
		t := c.GetType(it)
		joined := types.JoinOrNil(item, t)
		if joined == nil {
			return c.errorf(it.GetSpan(), "array items must share a type: %s vs %s", item, t)
		}
		item = joined
	}
	return types.Array(item)
}

func (c *Checker) inferTable(n *ast.Table, want *types.Type) *types.Type {
	if len(n.Entries) == 0 {
		if want != nil && want.Kind() == types.KindTable {
			return want
		}
		return c.errorf(n.GetSpan(), "cannot infer key/value types of an empty table literal")
	}
	keyT := c.GetType(n.Entries[0].Key)
	valT := c.GetType(n.Entries[0].Value)
	for _, e := range n.Entries[1:] {
		k, v := c.GetType(e.Key), c.GetType(e.Value)
		if j := types.JoinOrNil(keyT, k); j != nil {
			keyT = j
		} else {
			return c.errorf(e.Key.GetSpan(), "table keys must share a type: %s vs %s", keyT, k)
		}
		if j := types.JoinOrNil(valT, v); j != nil {
			valT = j
		} else {
			return c.errorf(e.Value.GetSpan(), "table values must share a type: %s vs %s", valT, v)
		}
	}
	if n.Fallback != nil {
		c.Check(n.Fallback, types.Table(keyT, valT))
	}
	if n.Default != nil {
		c.Check(n.Default, valT)
	}
	return types.Table(keyT, valT)
}

func (c *Checker) inferStruct(n *ast.Struct, want *types.Type) *types.Type {
	var names []string
	var vals []*types.Type
	for _, m := range n.Members {
		vals = append(vals, c.GetType(m.Value))
		names = append(names, m.Name)
	}
	if n.TypeName != "" {
		if b, ok := c.Env.Lookup(n.TypeName); ok && b.TypeValue != nil {
			return b.TypeValue
		}
		return c.errorf(n.GetSpan(), "undefined struct type %q", n.TypeName)
	}
	return types.Struct("", names, vals, units.None)
}

func (c *Checker) inferUnaryOp(n *ast.UnaryOp) *types.Type {
	t := c.GetType(n.Operand)
	switch n.Kind {
	case ast.OpNegative:
		if !t.IsNumeric() {
			return c.errorf(n.GetSpan(), "cannot negate non-numeric %s", t)
		}
		return t
	case ast.OpNot:
		return types.Bool()
	case ast.OpLen:
		return types.Int(64, units.None, false)
	case ast.OpMaybe:
		return types.Bool()
	}
	return types.Abort()
}

func (c *Checker) inferBinaryOp(n *ast.BinaryOp) *types.Type {
	lt := c.GetType(n.Left)
	rt := c.GetType(n.Right)
	switch n.Kind {
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		c.Check(n.Left, types.Bool())
		c.Check(n.Right, types.Bool())
		return types.Bool()
	case ast.OpEq, ast.OpNe:
		if types.JoinOrNil(lt, rt) == nil {
			return c.errorf(n.GetSpan(), "cannot compare %s and %s", lt, rt)
		}
		return types.Bool()
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return c.errorf(n.GetSpan(), "comparison requires numeric operands, got %s and %s", lt, rt)
		}
		if !units.Equal(lt.Units, rt.Units) {
			return c.errorf(n.GetSpan(), "units don't match: %s vs %s", lt, rt)
		}
		return types.Bool()
	default:
		return c.inferArith(n, lt, rt)
	}
}

func (c *Checker) inferArith(n *ast.BinaryOp, lt, rt *types.Type) *types.Type {
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return c.errorf(n.GetSpan(), "arithmetic requires numeric operands, got %s and %s", lt, rt)
	}
	var u units.Unit
	switch n.Kind {
	case ast.OpMul:
		u = units.Mul(lt.Units, rt.Units)
	case ast.OpDiv:
		u = units.Div(lt.Units, rt.Units)
	case ast.OpMod:
		if !units.Equal(rt.Units, units.None) {
			return c.errorf(n.GetSpan(), "modulus's right side must be unit-less, got %s", rt)
		}
		u = lt.Units
	case ast.OpPower:
		if !units.Equal(lt.Units, units.None) || !units.Equal(rt.Units, units.None) {
			return c.errorf(n.GetSpan(), "power requires unit-less operands, got %s and %s", lt, rt)
		}
		u = units.None
	default:
		if !units.Equal(lt.Units, rt.Units) {
			return c.errorf(n.GetSpan(), "units don't match: %s vs %s", lt, rt)
		}
		u = lt.Units
	}
	promoted := lt
	if rt.Priority() > lt.Priority() {
		promoted = rt
	}
	if promoted.Kind() == types.KindNum {
		return types.Num(promoted.Bits, u)
	}
	return types.Int(promoted.Bits, u, promoted.Unsigned)
}

func (c *Checker) inferCall(n *ast.FunctionCall) *types.Type {
	if v, ok := n.Callee.(*ast.Var); ok {
		if b, ok := c.Env.Lookup(v.Name); ok && b.Type != nil && b.Type.Kind() == types.KindVariant {
			return c.inferTagConstructor(n, b.Type)
		}
	}
	ft := c.GetType(n.Callee)
	if ft.Kind() != types.KindFunction {
		return c.errorf(n.GetSpan(), "cannot call non-function %s", ft)
	}
	positional := 0
	for _, arg := range n.Args {
		if kw, ok := arg.(*ast.KeywordArg); ok {
			c.GetType(kw.Arg)
			continue
		}
		if positional < len(ft.ArgTypes) {
			c.Check(arg, ft.ArgTypes[positional])
		} else {
			c.GetType(arg)
		}
		positional++
	}
	return ft.Ret
}

// inferTagConstructor types a tagged-union pattern/constructor call, which
// reuses FunctionCall(Var(tagName), args) (spec.md §4.4.3). Keyword args are
// checked against the variant's payload struct fields, looked up through the
// enclosing TaggedUnion's Data union.
func (c *Checker) inferTagConstructor(n *ast.FunctionCall, variant *types.Type) *types.Type {
	var payload *types.Type
	union := variant.VariantOf
	if union != nil && union.Data != nil {
		for i, fn := range union.Data.FieldNames {
			if fn == variant.Name {
				payload = union.Data.FieldTypes[i]
			}
		}
	}
	for _, arg := range n.Args {
		kw, ok := arg.(*ast.KeywordArg)
		if !ok {
			c.GetType(arg)
			continue
		}
		var fieldType *types.Type
		if payload != nil {
			for i, fn := range payload.FieldNames {
				if fn == kw.Name {
					fieldType = payload.FieldTypes[i]
				}
			}
		}
		if fieldType == nil {
			c.errorf(kw.GetSpan(), "tag %q has no field %q", variant.Name, kw.Name)
			continue
		}
		c.Check(kw.Arg, fieldType)
	}
	if union != nil {
		return union
	}
	return variant
}

func (c *Checker) inferBlock(n *ast.Block) *types.Type {
	last := types.Void()
	for _, stmt := range n.Statements {
		last = c.GetType(stmt)
		if c.isExprStatement(stmt) && !isDiscardable(last) {
			c.errorf(stmt.GetSpan(), "result of type %s is discarded; assign it to a variable", last)
		}
	}
	return last
}

// isExprStatement reports whether stmt is an expression used in statement
// position (as opposed to a declaration/control-flow form), subject to the
// discardable-value policy (spec.md §4.4.4).
func (c *Checker) isExprStatement(stmt ast.Node) bool {
	switch stmt.(type) {
	case *ast.Declare, *ast.Assign, *ast.CompoundAssign, *ast.If, *ast.When,
		*ast.For, *ast.While, *ast.Repeat, *ast.Do, *ast.FunctionDef,
		*ast.StructDef, *ast.EnumDef, *ast.Extern, *ast.Use, *ast.Return,
		*ast.Fail, *ast.Skip, *ast.Stop, *ast.DocTest:
		return false
	}
	return true
}

// isDiscardable reports whether t is Void, Abort, or Generator<Void|Abort>
// (spec.md §4.4.4): any other type silently dropped in statement position
// is a type error.
func isDiscardable(t *types.Type) bool {
	switch t.Kind() {
	case types.KindVoid, types.KindAbort:
		return true
	case types.KindGenerator:
		g := types.Generated(t)
		return g.Kind() == types.KindVoid || g.Kind() == types.KindAbort
	}
	return false
}

func (c *Checker) inferIf(n *ast.If) *types.Type {
	var branchTypes []*types.Type
	for i, cond := range n.Conditions {
		c.Check(cond, types.Bool())
		branchTypes = append(branchTypes, c.GetType(n.Blocks[i]))
	}
	if n.Else != nil {
		branchTypes = append(branchTypes, c.GetType(n.Else))
	} else {
		branchTypes = append(branchTypes, types.Void())
	}
	result := branchTypes[0]
	for _, t := range branchTypes[1:] {
		if j := types.JoinOrNil(result, t); j != nil {
			result = j
		} else {
			result = types.Void()
		}
	}
	return result
}

func (c *Checker) inferWhen(n *ast.When) *types.Type {
	subjectType := c.GetType(n.Subject)
	var branchTypes []*types.Type
	for _, wc := range n.Cases {
		c.checkPattern(wc.Pattern, subjectType)
		branchTypes = append(branchTypes, c.GetType(wc.Body))
	}
	if n.Default != nil {
		branchTypes = append(branchTypes, c.GetType(n.Default))
	}
	if len(branchTypes) == 0 {
		return types.Void()
	}
	result := branchTypes[0]
	for _, t := range branchTypes[1:] {
		if j := types.JoinOrNil(result, t); j != nil {
			result = j
		} else {
			result = types.Void()
		}
	}
	return result
}

// checkPattern types a When arm's pattern against the subject type,
// binding any tag payload fields into that arm's own scope only (spec.md
// §8 scenario 8: bindings don't escape their arm).
func (c *Checker) checkPattern(pattern ast.Pattern, subject *types.Type) {
	switch p := pattern.(type) {
	case *ast.FunctionCall:
		tagName, _ := p.Callee.(*ast.Var)
		if tagName == nil {
			c.GetType(pattern)
			return
		}
		var payload *types.Type
		found := false
		if subject.Kind() == types.KindTaggedUnion && subject.Data != nil {
			for i, fn := range subject.Data.FieldNames {
				if fn == tagName.Name {
					payload = subject.Data.FieldTypes[i]
					found = true
				}
			}
		}
		if !found {
			c.errorf(pattern.GetSpan(), "%s has no tag %q", subject, tagName.Name)
			return
		}
		for _, arg := range p.Args {
			kw, ok := arg.(*ast.KeywordArg)
			if !ok {
				continue
			}
			var fieldType *types.Type
			if payload != nil {
				for j, fn := range payload.FieldNames {
					if fn == kw.Name {
						fieldType = payload.FieldTypes[j]
					}
				}
			}
			if fieldType == nil {
				c.errorf(kw.GetSpan(), "tag %q has no field %q", tagName.Name, kw.Name)
				continue
			}
			if v, ok := kw.Arg.(*ast.Var); ok {
				c.Env.Define(v.Name, &env.Binding{Type: fieldType, Symbol: v.Name})
			}
		}
	default:
		c.Check(pattern, subject)
	}
}

func (c *Checker) checkFor(n *ast.For) {
	iterType := c.GetType(n.Iter)
	var valType *types.Type
	switch iterType.Kind() {
	case types.KindArray:
		valType = iterType.Item
	case types.KindRange:
		valType = types.Int(64, units.None, false)
	case types.KindTable:
		valType = iterType.Value
	case types.KindGenerator:
		valType = types.Generated(iterType)
	default:
		c.errorf(n.Iter.GetSpan(), "cannot iterate over %s", iterType)
		valType = types.Abort()
	}
	if n.Value != nil {
		c.Env.Define(n.Value.Name, &env.Binding{Type: valType, Symbol: n.Value.Name})
	}
	if n.Key != nil {
		c.Env.Define(n.Key.Name, &env.Binding{Type: types.Int(64, units.None, false), Symbol: n.Key.Name})
	}
	c.GetType(n.Body)
	if n.Between != nil {
		c.GetType(n.Between)
	}
	if n.Empty != nil {
		c.GetType(n.Empty)
	}
	if n.First != nil {
		c.GetType(n.First)
	}
}

func (c *Checker) checkDeclare(n *ast.Declare) *types.Type {
	v, ok := n.Var.(*ast.Var)
	if !ok {
		c.GetType(n.Value)
		return types.Void()
	}
	t := c.GetType(n.Value)
	c.Env.Define(v.Name, &env.Binding{Type: t, Symbol: v.Name, IsGlobal: n.IsGlobal})
	return types.Void()
}

func (c *Checker) checkAssign(n *ast.Assign) *types.Type {
	for i, lhs := range n.LHS {
		if idx, ok := lhs.(*ast.Index); ok {
			if _, isRange := idx.IndexVal.(*ast.Range); isRange {
				c.errorf(lhs.GetSpan(), "range-slice assignment is not supported")
				continue
			}
		}
		lt := c.GetType(lhs)
		if i < len(n.RHS) {
			c.Check(n.RHS[i], lt)
		}
	}
	return types.Void()
}

func (c *Checker) checkFunctionDef(n *ast.FunctionDef) *types.Type {
	var argTypes []*types.Type
	var argNames []string
	var argDefaults []bool
	for _, a := range n.Args {
		var t *types.Type
		if a.Type != nil {
			t = c.resolveTypeAST(a.Type)
		} else if a.Default != nil {
			t = c.GetType(a.Default)
		} else {
			t = c.errorf(n.GetSpan(), "parameter %q needs a type or default value", a.Name)
		}
		argTypes = append(argTypes, t)
		argNames = append(argNames, a.Name)
		argDefaults = append(argDefaults, a.Default != nil)
	}
	var ret *types.Type
	if n.Ret != nil {
		ret = c.resolveTypeAST(n.Ret)
	}
	ft := types.Function(argNames, argTypes, argDefaults, ret)
	c.Env.Define(n.Name, &env.Binding{Type: ft, Symbol: n.Name, IsGlobal: true})

	inner := c.Env.FreshScope()
	saved := c.Env
	c.Env = inner
	for i, a := range n.Args {
		c.Env.Define(a.Name, &env.Binding{Type: argTypes[i], Symbol: a.Name})
	}
	bodyType := c.GetType(n.Body)
	c.Env = saved
	if ft.Ret == nil {
		ft.Ret = bodyType
	}
	return types.Void()
}

func (c *Checker) inferLambda(n *ast.Lambda) *types.Type {
	var argTypes []*types.Type
	var argNames []string
	var argDefaults []bool
	for _, a := range n.Args {
		var t *types.Type
		if a.Type != nil {
			t = c.resolveTypeAST(a.Type)
		} else {
			t = types.Abort()
		}
		argTypes = append(argTypes, t)
		argNames = append(argNames, a.Name)
		argDefaults = append(argDefaults, a.Default != nil)
	}
	inner := c.Env.FreshScope()
	saved := c.Env
	c.Env = inner
	for i, a := range n.Args {
		c.Env.Define(a.Name, &env.Binding{Type: argTypes[i], Symbol: a.Name})
	}
	ret := c.GetType(n.Body)
	c.Env = saved
	return types.Function(argNames, argTypes, argDefaults, ret)
}

func (c *Checker) checkStructDef(n *ast.StructDef) *types.Type {
	var names []string
	var fieldTypes []*types.Type
	for _, f := range n.Fields {
		var t *types.Type
		if f.Type != nil {
			t = c.resolveTypeAST(f.Type)
		} else if f.Default != nil {
			t = c.GetType(f.Default)
		} else {
			t = c.errorf(n.GetSpan(), "field %q needs a type or default value", f.Name)
		}
		names = append(names, f.Name)
		fieldTypes = append(fieldTypes, t)
	}
	u := units.None
	if n.Units != nil {
		if tm, ok := n.Units.(*ast.TypeMeasure); ok {
			u = tm.Units
		}
	}
	st := types.Struct(n.Name, names, fieldTypes, u)
	c.Env.Define(n.Name, &env.Binding{Symbol: n.Name, TypeValue: st, IsGlobal: true})
	return types.Void()
}

func (c *Checker) checkEnumDef(n *ast.EnumDef) *types.Type {
	names := make([]string, len(n.Variants))
	payloads := make([]*types.Type, len(n.Variants))
	for i, v := range n.Variants {
		names[i] = v.Name
		if len(v.Fields) > 0 {
			var fn []string
			var ft []*types.Type
			for _, f := range v.Fields {
				fn = append(fn, f.Name)
				if f.Type != nil {
					ft = append(ft, c.resolveTypeAST(f.Type))
				} else {
					ft = append(ft, types.Abort())
				}
			}
			payloads[i] = types.Struct(v.Name, fn, ft, units.None)
		} else {
			payloads[i] = types.Void()
		}
	}
	tagType := types.Tag(n.Name, names, nil)
	data := types.Union(names, payloads)
	union := types.TaggedUnion(n.Name, tagType, data)
	for _, v := range n.Variants {
		c.Env.Define(v.Name, &env.Binding{Symbol: v.Name, Type: types.Variant(v.Name, union), IsGlobal: true})
	}
	c.Env.Define(n.Name, &env.Binding{Symbol: n.Name, TypeValue: union, IsGlobal: true})
	return types.Void()
}

// resolveTypeAST evaluates a type-as-syntax node into a hash-consed Type,
// the moral equivalent of spec.md's `parse_type_ast`.
func (c *Checker) resolveTypeAST(n ast.Node) *types.Type {
	switch tn := n.(type) {
	case *ast.TypeName:
		if b, ok := c.Env.Lookup(tn.Name); ok && b.TypeValue != nil {
			return b.TypeValue
		}
		if t := builtinTypeName(tn.Name); t != nil {
			return t
		}
		return c.errorf(n.GetSpan(), "undefined type %q", tn.Name)
	case *ast.TypeArray:
		return types.Array(c.resolveTypeAST(tn.Item))
	case *ast.TypePointer:
		return types.Pointer(c.resolveTypeAST(tn.Pointed), tn.Optional, false)
	case *ast.TypeOptional:
		inner := c.resolveTypeAST(tn.Type)
		if inner.Kind() == types.KindPointer {
			return types.Pointer(inner.Pointed, true, inner.IsStack)
		}
		return inner
	case *ast.TypeFunction:
		var argTypes []*types.Type
		var defaults []bool
		for _, a := range tn.ArgTypes {
			argTypes = append(argTypes, c.resolveTypeAST(a))
			defaults = append(defaults, false)
		}
		var ret *types.Type
		if tn.Ret != nil {
			ret = c.resolveTypeAST(tn.Ret)
		}
		return types.Function(tn.ArgNames, argTypes, defaults, ret)
	case *ast.TypeTuple:
		var names []string
		var fieldTypes []*types.Type
		for i, m := range tn.Members {
			names = append(names, fmt.Sprintf("_%d", i+1))
			fieldTypes = append(fieldTypes, c.resolveTypeAST(m))
		}
		return types.Struct("", names, fieldTypes, units.None)
	case *ast.TypeMeasure:
		base := c.resolveTypeAST(tn.Type)
		if base.Kind() == types.KindNum {
			return types.Num(base.Bits, tn.Units)
		}
		return types.Int(base.Bits, tn.Units, base.Unsigned)
	}
	return c.errorf(n.GetSpan(), "internal error: not a type expression")
}

func builtinTypeName(name string) *types.Type {
	switch name {
	case "Bool":
		return types.Bool()
	case "Int", "Int64":
		return types.Int(64, units.None, false)
	case "Int32":
		return types.Int(32, units.None, false)
	case "Int16":
		return types.Int(16, units.None, false)
	case "Int8":
		return types.Int(8, units.None, false)
	case "Num", "Num64":
		return types.Num(64, units.None)
	case "Num32":
		return types.Num(32, units.None)
	case "Char":
		return types.Char()
	case "String":
		return stringType()
	case "Void":
		return types.Void()
	case "Range":
		return types.RangeT()
	}
	return nil
}
