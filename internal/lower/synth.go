package lower

import (
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// printFuncFor returns the memoized print function for t, synthesizing one
// on first use (spec.md §4.5.5: print/compare/hash are generated per-type
// and cached rather than re-emitted at every call site).
func (lo *Lowerer) printFuncFor(t *types.Type) *ir.Function {
	if cached, ok := lo.Env.PrintFuncs[t]; ok {
		return cached.(*ir.Function)
	}
	param := &ir.Param{Name: "x", Type: t, Index: 0}
	fn := ir.NewFunction(lo.freshName("__print_"+kindTag(t)), []*ir.Param{param}, stringType())
	lo.Env.PrintFuncs[t] = fn
	lo.Module.AddFunction(fn)
	lo.buildPrintBody(fn, t, param)
	return fn
}

func (lo *Lowerer) buildPrintBody(fn *ir.Function, t *types.Type, self *ir.Param) {
	b := fn.Entry
	switch t.Kind() {
	case types.KindStruct:
		var result ir.Value = &ir.Const{Type: stringType(), Str: t.Name + "{"}
		for i, name := range t.FieldNames {
			field := b.Load(b.FieldAccess(self, name, i, t.FieldTypes[i]))
			fieldFn := lo.printFuncFor(t.FieldTypes[i])
			rendered := b.Call(fieldFn.Name, []ir.Value{field}, stringType())
			sep := name + "="
			if i > 0 {
				sep = ", " + sep
			}
			result = b.Call("__string_concat", []ir.Value{result, &ir.Const{Type: stringType(), Str: sep}}, stringType())
			result = b.Call("__string_concat", []ir.Value{result, rendered}, stringType())
		}
		result = b.Call("__string_concat", []ir.Value{result, &ir.Const{Type: stringType(), Str: "}"}}, stringType())
		b.Term = ir.Return{Value: result}
	case types.KindArray:
		b.Term = ir.Return{Value: b.Call("__print_array", []ir.Value{self}, stringType())}
	case types.KindTable:
		b.Term = ir.Return{Value: b.Call("__print_table", []ir.Value{self}, stringType())}
	case types.KindTaggedUnion:
		b.Term = ir.Return{Value: b.Call("__print_tagged_union", []ir.Value{self}, stringType())}
	case types.KindPointer:
		b.Term = ir.Return{Value: b.Call("__print_pointer", []ir.Value{self}, stringType())}
	default:
		if (t.Kind() == types.KindInt || t.Kind() == types.KindNum) && t.Units != units.None {
			b.Term = ir.Return{Value: lo.printScalarWithUnit(b, t, self)}
			return
		}
		b.Term = ir.Return{Value: b.Call("__print_scalar", []ir.Value{self}, stringType())}
	}
}

// printScalarWithUnit renders a numeric value carrying a non-trivial unit:
// `%`-tagged values are scaled by 100 and suffixed with "%" (spec.md §4.2's
// display-only unit); every other unit is appended verbatim as "<unit>"
// (spec.md §8 scenario 5's `3<s>` -> `"3<s>"`).
func (lo *Lowerer) printScalarWithUnit(b *ir.Block, t *types.Type, self ir.Value) ir.Value {
	if t.Units == units.Percent {
		hundred := &ir.Const{Type: t, Int: 100}
		if t.Kind() == types.KindNum {
			hundred = &ir.Const{Type: t, Float: 100}
		}
		scaled := b.Binary(ir.BinMul, self, hundred, t)
		rendered := b.Call("__print_scalar", []ir.Value{scaled}, stringType())
		return b.Call("__string_concat", []ir.Value{rendered, &ir.Const{Type: stringType(), Str: "%"}}, stringType())
	}
	rendered := b.Call("__print_scalar", []ir.Value{self}, stringType())
	suffix := &ir.Const{Type: stringType(), Str: "<" + string(t.Units) + ">"}
	return b.Call("__string_concat", []ir.Value{rendered, suffix}, stringType())
}

// compareFuncFor returns the memoized three-way comparator for t.
func (lo *Lowerer) compareFuncFor(t *types.Type) *ir.Function {
	if cached, ok := lo.Env.CompareFuncs[t]; ok {
		return cached.(*ir.Function)
	}
	i32 := types.Int(32, units.None, false)
	a := &ir.Param{Name: "a", Type: t, Index: 0}
	bp := &ir.Param{Name: "b", Type: t, Index: 1}
	fn := ir.NewFunction(lo.freshName("__compare_"+kindTag(t)), []*ir.Param{a, bp}, i32)
	lo.Env.CompareFuncs[t] = fn
	lo.Module.AddFunction(fn)

	blk := fn.Entry
	switch t.Kind() {
	case types.KindStruct:
		// Fields compare in declaration order; the first unequal one decides.
		for i, name := range t.FieldNames {
			fa := blk.Load(blk.FieldAccess(a, name, i, t.FieldTypes[i]))
			fb := blk.Load(blk.FieldAccess(bp, name, i, t.FieldTypes[i]))
			cmpFn := lo.compareFuncFor(t.FieldTypes[i])
			field := blk.Call(cmpFn.Name, []ir.Value{fa, fb}, i32)
			differs := blk.Compare(ir.CmpNe, field, &ir.Const{Type: i32, Int: 0})
			decided := fn.NewBlock("cmp_decided")
			decided.Term = ir.Return{Value: field}
			next := fn.NewBlock("cmp_next")
			blk.Term = ir.CondJump{Cond: differs, Then: decided, Else: next}
			blk = next
		}
		blk.Term = ir.Return{Value: &ir.Const{Type: i32, Int: 0}}
	default:
		blk.Term = ir.Return{Value: blk.Call("__compare_scalar", []ir.Value{a, bp}, i32)}
	}
	return fn
}

// hashFuncFor returns the memoized hash function for t.
func (lo *Lowerer) hashFuncFor(t *types.Type) *ir.Function {
	if cached, ok := lo.Env.HashFuncs[t]; ok {
		return cached.(*ir.Function)
	}
	i64 := types.Int(64, units.None, false)
	self := &ir.Param{Name: "x", Type: t, Index: 0}
	fn := ir.NewFunction(lo.freshName("__hash_"+kindTag(t)), []*ir.Param{self}, i64)
	lo.Env.HashFuncs[t] = fn
	lo.Module.AddFunction(fn)

	blk := fn.Entry
	switch t.Kind() {
	case types.KindStruct:
		var result ir.Value = &ir.Const{Type: i64, Int: 0}
		for i, name := range t.FieldNames {
			field := blk.Load(blk.FieldAccess(self, name, i, t.FieldTypes[i]))
			hashFn := lo.hashFuncFor(t.FieldTypes[i])
			h := blk.Call(hashFn.Name, []ir.Value{field}, i64)
			result = blk.Binary(ir.BinXor, result, h, i64)
		}
		blk.Term = ir.Return{Value: result}
	default:
		blk.Term = ir.Return{Value: blk.Call("__hash_scalar", []ir.Value{self}, i64)}
	}
	return fn
}

func kindTag(t *types.Type) string {
	switch t.Kind() {
	case types.KindStruct:
		return "struct_" + t.Name
	case types.KindArray:
		return "array"
	case types.KindTable:
		return "table"
	case types.KindTaggedUnion:
		return "union_" + t.Name
	case types.KindPointer:
		return "pointer"
	default:
		return "scalar"
	}
}
