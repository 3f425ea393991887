// Package lower implements structural-recursion lowering from the AST to
// the backend-neutral IR (spec.md §4.5): each expression node becomes an
// IR r-value while a "current block" pointer threads through every call,
// exactly as spec.md §4.5 describes.
package lower

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// Lowerer walks a typechecked AST and emits IR into Module, consulting
// Checker.Types for every node's already-computed type rather than
// re-inferring it.
type Lowerer struct {
	Env     *env.Environment
	Checker *check.Checker
	Module  *ir.Module

	// Defines are seeded as module globals, with their literal Value
	// stored before any top-level statement runs, when LowerProgram runs
	// (the `-V` flag's "pre-seeds a global constant" behaviour).
	Defines []Define

	fn    *ir.Function
	block *ir.Block
	vars  map[string]ir.Value // current lexical scope: name -> l-value
	loops []loopCtx
}

// freshName returns a process-unique synthetic function name for a lambda
// body or per-type synthesized helper (spec.md §4.5.5's recursion map,
// backed by env.FreshLabel's uuid-suffixed names).
func (lo *Lowerer) freshName(prefix string) string {
	return env.FreshLabel(prefix)
}

type loopCtx struct {
	names           []string
	breakTarget     *ir.Block
	continueTarget  *ir.Block
}

// Define is a name pre-seeded as a global constant before main runs, e.g.
// via `blangc -Vname=literal` (spec.md §6.1).
type Define struct {
	Name  string
	Type  *types.Type
	Value ir.Value
}

// New creates a Lowerer bound to e and c, targeting a fresh Module named
// name.
func New(e *env.Environment, c *check.Checker, name string) *Lowerer {
	return &Lowerer{Env: e, Checker: c, Module: ir.NewModule(name), vars: map[string]ir.Value{}}
}

// typeOf returns n's checked type, falling back to re-inference if the
// checker didn't visit it (e.g. synthetic nodes lowering constructs
// itself).
func (lo *Lowerer) typeOf(n ast.Node) *types.Type {
	if t, ok := lo.Checker.Types[n]; ok {
		return t
	}
	return lo.Checker.GetType(n)
}

// LowerProgram lowers top-level statements into a `main` function
// (spec.md §4.7 step 4) and returns the finished Module.
func (lo *Lowerer) LowerProgram(body *ast.Block) *ir.Module {
	main := ir.NewFunction("main", nil, types.Int(32, units.None, false))
	lo.Module.AddFunction(main)
	lo.fn = main
	lo.block = main.Entry

	for _, d := range lo.Defines {
		g := lo.Module.AddGlobal(d.Name, d.Type)
		lo.block.Store(g, d.Value)
		lo.vars[d.Name] = g
	}

	lo.hoistFunctionDefs(body)
	for _, stmt := range body.Statements {
		lo.lowerStmt(stmt)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Return{Value: &ir.Const{Type: types.Int(32, units.None, false), Int: 0}}
	}
	return lo.Module
}

// hoistFunctionDefs pre-declares every top-level FunctionDef's IR Function
// before lowering any body, so mutually- and self-recursive calls resolve
// (spec.md §9 "Recursive graph construction": install bindings first,
// lower bodies second).
func (lo *Lowerer) hoistFunctionDefs(body *ast.Block) {
	for _, stmt := range body.Statements {
		def, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}
		ft := lo.typeOf(def)
		_ = ft
		b, ok := lo.Env.Lookup(def.Name)
		if !ok || b.Type == nil || b.Type.Kind() != types.KindFunction {
			continue
		}
		params := make([]*ir.Param, len(b.Type.ArgTypes))
		for i, at := range b.Type.ArgTypes {
			params[i] = &ir.Param{Name: b.Type.ArgNames[i], Type: at, Index: i}
		}
		fn := ir.NewFunction(def.Name, params, b.Type.Ret)
		lo.Module.AddFunction(fn)
		lo.Env.Globals[def.Name] = &env.Binding{Symbol: def.Name, Type: b.Type, IsGlobal: true}
		lo.Env.BackendTypeCache[b.Type] = fn
	}
}

func (lo *Lowerer) lookupFunc(name string) *ir.Function {
	for _, fn := range lo.Module.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// lowerStmt lowers a statement, threading lo.block forward.
func (lo *Lowerer) lowerStmt(n ast.Node) {
	switch node := n.(type) {
	case *ast.Declare:
		lo.lowerDeclare(node)
	case *ast.Assign:
		lo.lowerAssign(node)
	case *ast.CompoundAssign:
		lo.lowerCompoundAssign(node)
	case *ast.If:
		lo.lowerIf(node)
	case *ast.When:
		lo.lowerWhen(node)
	case *ast.For:
		lo.lowerFor(node)
	case *ast.While:
		lo.lowerWhile(node)
	case *ast.Repeat:
		lo.lowerRepeat(node)
	case *ast.Do:
		for _, b := range node.Blocks {
			lo.lowerBlockStmts(b)
		}
	case *ast.Block:
		lo.lowerBlockStmts(node)
	case *ast.Return:
		var v ir.Value
		if node.Value != nil {
			v = lo.lowerExpr(node.Value)
		}
		lo.block.Term = ir.Return{Value: v}
	case *ast.Fail:
		lo.lowerFail(node)
	case *ast.Skip:
		lo.lowerSkipStop(node.Target, true)
	case *ast.Stop:
		lo.lowerSkipStop(node.Target, false)
	case *ast.FunctionDef:
		lo.lowerFunctionDef(node)
	case *ast.StructDef, *ast.EnumDef, *ast.Extern, *ast.Use:
		// Type/extern declarations have no runtime effect of their own.
	case *ast.DocTest:
		lo.lowerDocTest(node)
	default:
		lo.lowerExpr(n)
	}
}

func (lo *Lowerer) lowerBlockStmts(b *ast.Block) {
	for _, stmt := range b.Statements {
		if lo.block.Term != nil {
			return
		}
		lo.lowerStmt(stmt)
	}
}

func (lo *Lowerer) lowerDeclare(n *ast.Declare) {
	v, ok := n.Var.(*ast.Var)
	if !ok {
		lo.lowerExpr(n.Value)
		return
	}
	val := lo.lowerExpr(n.Value)
	t := lo.typeOf(n.Value)
	if n.IsGlobal {
		g := lo.Module.AddGlobal(v.Name, t)
		lo.block.Store(g, val)
		lo.vars[v.Name] = g
		return
	}
	local := lo.fn.NewLocal(v.Name, t)
	lo.block.Store(local, val)
	lo.vars[v.Name] = local
}

func (lo *Lowerer) lowerAssign(n *ast.Assign) {
	dsts := make([]ir.Value, len(n.LHS))
	for i, lhs := range n.LHS {
		dsts[i] = lo.lowerLValue(lhs)
	}
	for i, rhs := range n.RHS {
		val := lo.lowerExpr(rhs)
		val = lo.promote(val, lo.typeOf(n.LHS[i]))
		lo.block.Store(dsts[i], val)
	}
}

func (lo *Lowerer) lowerCompoundAssign(n *ast.CompoundAssign) {
	dst := lo.lowerLValue(n.LHS)
	cur := lo.block.Load(dst)
	rhs := lo.lowerExpr(n.RHS)
	result := lo.block.Binary(compoundBinOp(n.Op), cur, rhs, lo.typeOf(n.LHS))
	lo.block.Store(dst, result)
}

func compoundBinOp(k ast.BinaryOpKind) ir.BinOp {
	switch k {
	case ast.OpAdd:
		return ir.BinAdd
	case ast.OpSub:
		return ir.BinSub
	case ast.OpMul:
		return ir.BinMul
	case ast.OpDiv:
		return ir.BinDiv
	case ast.OpMod:
		return ir.BinMod
	}
	return ir.BinAdd
}

// lowerLValue resolves n to an l-value Value, covering Var, Dereference,
// struct FieldAccess, and array Index (spec.md §4.5.7). Range-slice
// assignment is rejected by the checker before lowering ever sees it.
func (lo *Lowerer) lowerLValue(n ast.Node) ir.Value {
	switch node := n.(type) {
	case *ast.Var:
		if v, ok := lo.vars[node.Name]; ok {
			return v
		}
		if b, ok := lo.Env.Lookup(node.Name); ok {
			return &ir.Global{Name: node.Name, Type: b.Type}
		}
		return &ir.Global{Name: node.Name, Type: types.Abort()}
	case *ast.Dereference:
		ptr := lo.lowerExpr(node.Value)
		t := lo.typeOf(node.Value)
		return lo.block.Deref(ptr, t.Pointed)
	case *ast.FieldAccess:
		base := lo.lowerLValue(node.Receiver)
		baseT := lo.typeOf(node.Receiver)
		st := baseT
		if st.Kind() == types.KindPointer {
			base = lo.block.Load(base)
			st = st.Pointed
		}
		idx, fieldType := fieldIndex(st, node.Field)
		return lo.block.FieldAccess(base, node.Field, idx, fieldType)
	case *ast.Index:
		base := lo.lowerLValue(node.Receiver)
		arrT := lo.typeOf(node.Receiver)
		if arrT.Kind() == types.KindTable {
			key := lo.promote(lo.lowerExpr(node.IndexVal), arrT.Key)
			return lo.block.TableGet(base, key, arrT.Value)
		}
		idxVal := lo.lowerExpr(node.IndexVal)
		return lo.emitBoundsCheckedIndex(base, idxVal, arrT)
	}
	return lo.lowerExpr(n)
}

func fieldIndex(st *types.Type, field string) (int, *types.Type) {
	for i, fn := range st.FieldNames {
		if fn == field {
			return i, st.FieldTypes[i]
		}
	}
	return -1, types.Abort()
}

// emitBoundsCheckedIndex implements spec.md §4.5.1's bounds check: require
// 1<=i<=length, invoking the fail routine on violation.
func (lo *Lowerer) emitBoundsCheckedIndex(base, idx ir.Value, arrT *types.Type) ir.Value {
	one := &ir.Const{Type: types.Int(64, units.None, false), Int: 1}
	length := lo.block.FieldAccess(base, "length", 1, types.Int(32, units.None, false))
	length = lo.block.Load(length)
	ge1 := lo.block.Compare(ir.CmpGe, idx, one)
	leLen := lo.block.Compare(ir.CmpLe, idx, length)
	inBounds := lo.block.Binary(ir.BinAnd, ge1, leLen, types.Bool())

	okBlock := lo.fn.NewBlock("index_ok")
	failBlock := lo.fn.NewBlock("index_fail")
	lo.block.Term = ir.CondJump{Cond: inBounds, Then: okBlock, Else: failBlock}

	lo.block = failBlock
	lo.block.Call("__index_fail", []ir.Value{idx, length}, types.Void())
	lo.block.Term = ir.Return{}

	lo.block = okBlock
	return lo.block.Index(base, idx, arrT.Item)
}

func (lo *Lowerer) lowerFail(n *ast.Fail) {
	var msg ir.Value
	if n.Message != nil {
		msg = lo.lowerExpr(n.Message)
	} else {
		msg = &ir.Const{Type: stringType(), Str: "failure"}
	}
	lo.block.Call("__fail", []ir.Value{msg}, types.Void())
	lo.block.Term = ir.Return{}
}

func (lo *Lowerer) lowerSkipStop(label string, skip bool) {
	ctx := lo.findLoop(label)
	if ctx == nil {
		lo.block.Term = ir.Return{}
		return
	}
	if skip {
		lo.block.Term = ir.Jump{Target: ctx.continueTarget}
	} else {
		lo.block.Term = ir.Jump{Target: ctx.breakTarget}
	}
}

func (lo *Lowerer) findLoop(label string) *loopCtx {
	for i := len(lo.loops) - 1; i >= 0; i-- {
		l := &lo.loops[i]
		if label == "" {
			return l
		}
		for _, n := range l.names {
			if n == label {
				return l
			}
		}
	}
	return nil
}

func stringType() *types.Type { return types.Array(types.Char()) }
