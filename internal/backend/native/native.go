// Package native lowers the backend-neutral IR to LLVM IR via llir/llvm and
// shells out to clang/llc to produce an object file, assembly listing, or
// linked executable (spec.md §6.1's `-c`/`-A`/`-O`). There is no funxy
// analogue — funxy has no ahead-of-time path — so this package is modeled
// directly on original_source/compile/*.c's libgccjit call shape, retargeted
// to LLVM IR.
package native

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
)

// Backend emits LLVM IR and drives clang/llc to produce native artifacts.
type Backend struct {
	// ClangPath overrides the clang executable name, for testing.
	ClangPath string
}

// New creates a Backend using the default "clang" on PATH.
func New() *Backend { return &Backend{ClangPath: "clang"} }

func (b *Backend) Name() string { return "native" }

// Run compiles module to a temporary executable and runs it, returning its
// exit code. cmd/blangc does not call it: without `-c` the CLI runs the
// module on vmbackend.
func (b *Backend) Run(module *ir.Module) (int, error) {
	dir, err := os.MkdirTemp("", "blangc-run-*")
	if err != nil {
		return 1, err
	}
	defer os.RemoveAll(dir)

	exePath := filepath.Join(dir, "a.out")
	if err := b.CompileToFile(module, exePath, backend.CompileOptions{OptLevel: 0}); err != nil {
		return 1, err
	}
	cmd := exec.Command(exePath)
	cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
	runErr := cmd.Run()
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if runErr != nil {
		return 1, runErr
	}
	return 0, nil
}

// CompileToFile lowers module to LLVM IR, writes a `.ll` file, then invokes
// clang to assemble/link it into outPath (or stops at assembly when
// opts.AsmOnly is set).
func (b *Backend) CompileToFile(module *ir.Module, outPath string, opts backend.CompileOptions) error {
	llMod := Translate(module)

	llPath := outPath + ".ll"
	if err := os.WriteFile(llPath, []byte(llMod.String()), 0o644); err != nil {
		return fmt.Errorf("writing LLVM IR: %w", err)
	}
	defer os.Remove(llPath)

	clang := b.ClangPath
	if clang == "" {
		clang = "clang"
	}
	args := []string{fmt.Sprintf("-O%d", opts.OptLevel), llPath, "-o", outPath}
	if opts.AsmOnly {
		args = []string{fmt.Sprintf("-O%d", opts.OptLevel), "-S", llPath, "-o", outPath}
	}
	cmd := exec.Command(clang, args...)
	if opts.Verbose {
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clang failed: %w", err)
	}
	return nil
}

// Translate converts a backend-neutral Module into an LLVM IR module. Scalar
// arithmetic, comparisons, branches, and direct/indirect calls become real
// LLVM instructions; struct/array/table/cast operations route through an
// extern C runtime (the same operations vmbackend's interpreter implements
// in Go), since their true layout lives on the C side, not in this
// translation pass (spec.md §4.6's "backend-linked functions").
func Translate(module *ir.Module) *llvmir.Module {
	t := &translator{
		llMod:   llvmir.NewModule(),
		llFuncs: map[string]*llvmir.Func{},
		runtime: map[string]*llvmir.Func{},
		globals: map[string]*llvmir.Global{},
	}
	for _, g := range module.Globals {
		t.globals[g.Name] = t.llMod.NewGlobalDef(g.Name, t.zeroConst(g.Type))
	}
	for _, fn := range module.Functions {
		t.declareFunc(fn)
	}
	for _, fn := range module.Functions {
		t.defineFunc(fn)
	}
	return t.llMod
}

type translator struct {
	llMod      *llvmir.Module
	llFuncs    map[string]*llvmir.Func
	runtime    map[string]*llvmir.Func
	globals    map[string]*llvmir.Global
	pow        *llvmir.Func
	strCount   int
	labelCount int
}

// funcCtx holds the per-function state emitInstr/emitTerm need to resolve an
// ir.Value to the llvmir.Value a prior instruction produced.
type funcCtx struct {
	fn      *llvmir.Func
	entry   *llvmir.Block
	locals  map[*ir.Local]*llvmir.InstAlloca
	results map[*ir.Instr]llvmir.Value
	params  []*llvmir.Param
}

func (t *translator) llvmType(ty *types.Type) lltypes.Type {
	if ty == nil {
		return lltypes.Void
	}
	switch ty.Kind() {
	case types.KindBool:
		return lltypes.I1
	case types.KindChar:
		return lltypes.I32
	case types.KindInt:
		switch ty.Bits {
		case 8:
			return lltypes.I8
		case 16:
			return lltypes.I16
		case 32:
			return lltypes.I32
		default:
			return lltypes.I64
		}
	case types.KindNum:
		if ty.Bits == 32 {
			return lltypes.Float
		}
		return lltypes.Double
	case types.KindVoid, types.KindAbort:
		return lltypes.Void
	default:
		// Structs, arrays, tables, tagged unions, and pointers are all
		// opaque i8* at this translation depth; the extern runtime
		// functions know their real C layout.
		return lltypes.I8Ptr
	}
}

// zeroConst builds the initializer for a module-level global of type ty.
func (t *translator) zeroConst(ty *types.Type) constant.Constant {
	switch c := t.llvmType(ty).(type) {
	case *lltypes.IntType:
		return constant.NewInt(c, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(c, 0)
	default:
		return constant.NewNull(lltypes.I8Ptr)
	}
}

func (t *translator) declareFunc(fn *ir.Function) {
	params := make([]*llvmir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = llvmir.NewParam(p.Name, t.llvmType(p.Type))
	}
	llFn := t.llMod.NewFunc(fn.Name, t.llvmType(fn.Ret), params...)
	t.llFuncs[fn.Name] = llFn
}

// runtimeFunc declares (once) an extern i8*(i8*,i8*,...) -style helper in
// the C runtime backing string/array/table/print/compare/hash operations.
func (t *translator) runtimeFunc(name string, arity int) *llvmir.Func {
	if fn, ok := t.runtime[name]; ok {
		return fn
	}
	params := make([]*llvmir.Param, arity)
	for i := range params {
		params[i] = llvmir.NewParam("", lltypes.I8Ptr)
	}
	fn := t.llMod.NewFunc(name, lltypes.I8Ptr, params...)
	t.runtime[name] = fn
	return fn
}

// libmPow declares (once) the extern double pow(double, double) used by
// BinPow, since LLVM has no native exponentiation instruction.
func (t *translator) libmPow() *llvmir.Func {
	if t.pow != nil {
		return t.pow
	}
	t.pow = t.llMod.NewFunc("pow", lltypes.Double,
		llvmir.NewParam("", lltypes.Double), llvmir.NewParam("", lltypes.Double))
	return t.pow
}

func (t *translator) label(prefix string) string {
	t.labelCount++
	return fmt.Sprintf("%s.%d", prefix, t.labelCount)
}

func (t *translator) defineFunc(fn *ir.Function) {
	llFn := t.llFuncs[fn.Name]
	blocks := map[*ir.Block]*llvmir.Block{}
	for _, b := range fn.Blocks {
		blocks[b] = llFn.NewBlock(b.Label)
	}

	ctx := &funcCtx{
		fn:      llFn,
		entry:   blocks[fn.Entry],
		locals:  map[*ir.Local]*llvmir.InstAlloca{},
		results: map[*ir.Instr]llvmir.Value{},
		params:  llFn.Params,
	}
	for _, l := range fn.Locals {
		ctx.locals[l] = ctx.entry.NewAlloca(t.llvmType(l.Type))
	}

	for _, b := range fn.Blocks {
		llBlock := blocks[b]
		for _, instr := range b.Instrs {
			t.emitInstr(llBlock, instr, ctx)
		}
		t.emitTerm(llBlock, ctx, b.Term, blocks, fn.Ret)
	}
}

// resolve maps a backend-neutral Value to the llvmir.Value that already
// represents it: a constant, a function param, a module global, a local's
// alloca, or a prior instruction's cached result.
func (t *translator) resolve(ctx *funcCtx, v ir.Value) llvmir.Value {
	switch n := v.(type) {
	case *ir.Const:
		return t.constValue(n)
	case *ir.Local:
		return ctx.locals[n]
	case *ir.Param:
		return ctx.params[n.Index]
	case *ir.Global:
		if g, ok := t.globals[n.Name]; ok {
			return g
		}
		g := t.llMod.NewGlobalDef(n.Name, t.zeroConst(n.Type))
		t.globals[n.Name] = g
		return g
	case *ir.InstrResult:
		return ctx.results[n.Instr]
	default:
		return constant.NewNull(lltypes.I8Ptr)
	}
}

func (t *translator) resolveArgs(ctx *funcCtx, b *llvmir.Block, args []ir.Value, boxScalars bool) []llvmir.Value {
	out := make([]llvmir.Value, len(args))
	for i, a := range args {
		v := t.resolve(ctx, a)
		if boxScalars {
			v = t.box(b, ctx.entry, v)
		}
		out[i] = v
	}
	return out
}

// box coerces v into an i8* suitable as an extern runtime-call argument:
// pointers are bitcast, scalars are spilled to a fresh stack slot and its
// address is taken, matching the opaque-i8* convention runtimeFunc declares.
func (t *translator) box(b, entry *llvmir.Block, v llvmir.Value) llvmir.Value {
	if pt, ok := v.Type().(*lltypes.PointerType); ok {
		if pt.ElemType == lltypes.I8 {
			return v
		}
		return b.NewBitCast(v, lltypes.I8Ptr)
	}
	slot := entry.NewAlloca(v.Type())
	b.NewStore(v, slot)
	return b.NewBitCast(slot, lltypes.I8Ptr)
}

func (t *translator) constValue(c *ir.Const) llvmir.Value {
	if c.IsNil {
		return constant.NewNull(lltypes.I8Ptr)
	}
	if c.Type != nil && c.Type.Kind() == types.KindArray {
		return t.stringConst(c.Str)
	}
	switch lt := t.llvmType(c.Type).(type) {
	case *lltypes.FloatType:
		return constant.NewFloat(lt, c.Float)
	case *lltypes.IntType:
		return constant.NewInt(lt, c.Int)
	default:
		return constant.NewNull(lltypes.I8Ptr)
	}
}

// stringConst emits a private global holding s's NUL-terminated bytes and
// returns a pointer to its first byte, the same shape C string literals take.
func (t *translator) stringConst(s string) llvmir.Value {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := t.llMod.NewGlobalDef(fmt.Sprintf(".str.%d", t.strCount), data)
	g.Immutable = true
	t.strCount++
	zero := constant.NewInt(lltypes.I64, 0)
	return constant.NewGetElementPtr(data.Typ, g, zero, zero)
}

// emitInstr translates each instruction to real LLVM IR: scalar
// arithmetic/comparison/load/store/call become native instructions with
// their actual resolved operands; struct/array/table/cast operations route
// through the extern runtime with real (boxed) arguments, since their true
// layout lives on the C side, not in this translation pass.
func (t *translator) emitInstr(b *llvmir.Block, instr *ir.Instr, ctx *funcCtx) {
	switch instr.Op {
	case ir.OpLoad:
		ptr := t.resolve(ctx, instr.Args[0])
		ctx.results[instr] = b.NewLoad(t.llvmType(instr.Type), ptr)
	case ir.OpStore:
		ptr := t.resolve(ctx, instr.Args[0])
		val := t.resolve(ctx, instr.Args[1])
		b.NewStore(val, ptr)
	case ir.OpBinary:
		ctx.results[instr] = t.emitBinary(b, instr, ctx)
	case ir.OpUnary:
		ctx.results[instr] = t.emitUnary(b, instr, ctx)
	case ir.OpCompare:
		ctx.results[instr] = t.emitCompare(b, instr, ctx)
	case ir.OpCall:
		callee := t.llFuncs[instr.FuncName]
		box := false
		if callee == nil {
			callee = t.runtimeFunc(instr.FuncName, len(instr.Args))
			box = true
		}
		args := t.resolveArgs(ctx, b, instr.Args, box)
		call := b.NewCall(callee, args...)
		if instr.Result != nil {
			ctx.results[instr] = call
		}
	case ir.OpCallIndirect:
		callee := t.resolve(ctx, instr.Callee)
		args := t.resolveArgs(ctx, b, instr.Args, false)
		call := b.NewCall(callee, args...)
		if instr.Result != nil {
			ctx.results[instr] = call
		}
	case ir.OpFieldAccess:
		base := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		idx := constant.NewInt(lltypes.I64, int64(instr.FieldIdx))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__field_access", 2), base, idx)
	case ir.OpIndex:
		base := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		idx := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[1]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__index", 2), base, idx)
	case ir.OpDeref:
		ptr := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__deref", 1), ptr)
	case ir.OpAddressOf:
		val := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__address_of", 1), val)
	case ir.OpStructNew:
		args := t.resolveArgs(ctx, b, instr.Args, true)
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__struct_new", len(args)), args...)
	case ir.OpUnionNew:
		tag := constant.NewInt(lltypes.I64, int64(instr.FieldIdx))
		val := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__union_new", 2), tag, val)
	case ir.OpArrayNew:
		args := t.resolveArgs(ctx, b, instr.Args, true)
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__array_new", len(args)), args...)
	case ir.OpArrayAppend:
		arr := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		val := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[1]))
		b.NewCall(t.runtimeFunc("__array_append", 2), arr, val)
	case ir.OpTableNew:
		fallback := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		def := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[1]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__table_new", 2), fallback, def)
	case ir.OpTableGet:
		table := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		key := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[1]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__table_get", 2), table, key)
	case ir.OpTableSet:
		table := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		key := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[1]))
		val := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[2]))
		b.NewCall(t.runtimeFunc("__table_set", 3), table, key, val)
	case ir.OpCast, ir.OpBitcast:
		val := t.box(b, ctx.entry, t.resolve(ctx, instr.Args[0]))
		ctx.results[instr] = b.NewCall(t.runtimeFunc("__cast", 1), val)
	case ir.OpPhi:
		// Unreachable: join points are expressed as loads out of a shared
		// Local rather than as an explicit phi (internal/lower never emits
		// OpPhi today).
	}
}

func (t *translator) emitBinary(b *llvmir.Block, instr *ir.Instr, ctx *funcCtx) llvmir.Value {
	x := t.resolve(ctx, instr.Args[0])
	y := t.resolve(ctx, instr.Args[1])
	isFloat := instr.Type != nil && instr.Type.Kind() == types.KindNum
	switch instr.BinOp {
	case ir.BinAdd:
		if isFloat {
			return b.NewFAdd(x, y)
		}
		return b.NewAdd(x, y)
	case ir.BinSub:
		if isFloat {
			return b.NewFSub(x, y)
		}
		return b.NewSub(x, y)
	case ir.BinMul:
		if isFloat {
			return b.NewFMul(x, y)
		}
		return b.NewMul(x, y)
	case ir.BinDiv:
		if isFloat {
			return b.NewFDiv(x, y)
		}
		return b.NewSDiv(x, y)
	case ir.BinMod:
		if isFloat {
			return b.NewFRem(x, y)
		}
		return b.NewSRem(x, y)
	case ir.BinPow:
		return t.emitPow(b, instr.Type, x, y, isFloat)
	case ir.BinAnd, ir.BinBitAnd:
		return b.NewAnd(x, y)
	case ir.BinOr, ir.BinBitOr:
		return b.NewOr(x, y)
	case ir.BinXor, ir.BinBitXor:
		return b.NewXor(x, y)
	case ir.BinShl:
		return b.NewShl(x, y)
	case ir.BinShr:
		return b.NewAShr(x, y)
	default:
		return x
	}
}

// emitPow routes BinPow through libm's pow, widening int/float32 operands
// to double and narrowing the result back to the operator's own type.
func (t *translator) emitPow(b *llvmir.Block, resultType *types.Type, x, y llvmir.Value, isFloat bool) llvmir.Value {
	xf, yf := x, y
	switch {
	case !isFloat:
		xf = b.NewSIToFP(x, lltypes.Double)
		yf = b.NewSIToFP(y, lltypes.Double)
	case resultType.Bits == 32:
		xf = b.NewFPExt(x, lltypes.Double)
		yf = b.NewFPExt(y, lltypes.Double)
	}
	result := b.NewCall(t.libmPow(), xf, yf)
	switch {
	case !isFloat:
		return b.NewFPToSI(result, t.llvmType(resultType).(*lltypes.IntType))
	case resultType.Bits == 32:
		return b.NewFPTrunc(result, lltypes.Float)
	default:
		return result
	}
}

func (t *translator) emitUnary(b *llvmir.Block, instr *ir.Instr, ctx *funcCtx) llvmir.Value {
	x := t.resolve(ctx, instr.Args[0])
	switch instr.UnOp {
	case ir.UnNeg:
		if instr.Type != nil && instr.Type.Kind() == types.KindNum {
			return b.NewFNeg(x)
		}
		return b.NewSub(constant.NewInt(x.Type().(*lltypes.IntType), 0), x)
	case ir.UnNot:
		return b.NewXor(x, constant.True)
	case ir.UnLen:
		arr := t.box(b, ctx.entry, x)
		return b.NewCall(t.runtimeFunc("__array_length", 1), arr)
	default:
		return x
	}
}

func (t *translator) emitCompare(b *llvmir.Block, instr *ir.Instr, ctx *funcCtx) llvmir.Value {
	x := t.resolve(ctx, instr.Args[0])
	y := t.resolve(ctx, instr.Args[1])
	argType := instr.Args[0].ValueType()
	isFloat := argType != nil && argType.Kind() == types.KindNum
	if isFloat {
		var pred enum.FPred
		switch instr.CmpOp {
		case ir.CmpEq:
			pred = enum.FPredOEQ
		case ir.CmpNe:
			pred = enum.FPredONE
		case ir.CmpLt:
			pred = enum.FPredOLT
		case ir.CmpLe:
			pred = enum.FPredOLE
		case ir.CmpGt:
			pred = enum.FPredOGT
		case ir.CmpGe:
			pred = enum.FPredOGE
		}
		return b.NewFCmp(pred, x, y)
	}
	var pred enum.IPred
	switch instr.CmpOp {
	case ir.CmpEq:
		pred = enum.IPredEQ
	case ir.CmpNe:
		pred = enum.IPredNE
	case ir.CmpLt:
		pred = enum.IPredSLT
	case ir.CmpLe:
		pred = enum.IPredSLE
	case ir.CmpGt:
		pred = enum.IPredSGT
	case ir.CmpGe:
		pred = enum.IPredSGE
	}
	return b.NewICmp(pred, x, y)
}

// emitTerm translates a Block's terminator using its real resolved operands:
// CondJump branches on the actual condition, Return yields the actual
// value, and Switch is expanded into a chain of range compares mirroring
// vmbackend's `v >= c.Low && v <= c.High` dispatch (internal/backend/vmbackend
// /exec.go), since LLVM's native switch only matches single integers.
func (t *translator) emitTerm(b *llvmir.Block, ctx *funcCtx, term ir.Terminator, blocks map[*ir.Block]*llvmir.Block, ret *types.Type) {
	switch tm := term.(type) {
	case ir.Jump:
		b.NewBr(blocks[tm.Target])
	case ir.CondJump:
		cond := t.resolve(ctx, tm.Cond)
		b.NewCondBr(cond, blocks[tm.Then], blocks[tm.Else])
	case ir.Return:
		if tm.Value == nil || ret == nil || ret.Kind() == types.KindVoid {
			b.NewRet(nil)
		} else {
			b.NewRet(t.resolve(ctx, tm.Value))
		}
	case ir.Switch:
		val := t.resolve(ctx, tm.Value)
		intType := val.Type().(*lltypes.IntType)
		cur := b
		for _, c := range tm.Cases {
			var cond llvmir.Value
			if c.Low == c.High {
				cond = cur.NewICmp(enum.IPredEQ, val, constant.NewInt(intType, c.Low))
			} else {
				lo := cur.NewICmp(enum.IPredSGE, val, constant.NewInt(intType, c.Low))
				hi := cur.NewICmp(enum.IPredSLE, val, constant.NewInt(intType, c.High))
				cond = cur.NewAnd(lo, hi)
			}
			next := ctx.fn.NewBlock(t.label("switch.next"))
			cur.NewCondBr(cond, blocks[c.Target], next)
			cur = next
		}
		cur.NewBr(blocks[tm.Default])
	}
}
