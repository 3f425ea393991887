package lower

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// lowerExpr lowers n to an r-value, promoting as the checker's recorded
// type dictates.
func (lo *Lowerer) lowerExpr(n ast.Node) ir.Value {
	switch node := n.(type) {
	case *ast.Nil:
		return &ir.Const{Type: lo.typeOf(node), IsNil: true}
	case *ast.Bool:
		v := int64(0)
		if node.Value {
			v = 1
		}
		return &ir.Const{Type: types.Bool(), Int: v}
	case *ast.Int:
		return &ir.Const{Type: lo.typeOf(node), Int: node.Value.Int64()}
	case *ast.Num:
		return &ir.Const{Type: lo.typeOf(node), Float: node.Value}
	case *ast.Char:
		return &ir.Const{Type: types.Char(), Int: int64(node.Value)}
	case *ast.StringLiteral:
		return &ir.Const{Type: stringType(), Str: node.Value}
	case *ast.StringJoin:
		return lo.lowerStringJoin(node)
	case *ast.Interp:
		return lo.callPrint(lo.lowerExpr(node.Value), lo.typeOf(node.Value))
	case *ast.Range:
		return lo.lowerRangeValue(node)

	case *ast.Var:
		return lo.block.Load(lo.lowerLValue(node))
	case *ast.FieldAccess:
		return lo.block.Load(lo.lowerLValue(node))
	case *ast.Index:
		return lo.block.Load(lo.lowerLValue(node))
	case *ast.Dereference:
		return lo.block.Load(lo.lowerLValue(node))
	case *ast.HeapAllocate:
		val := lo.lowerExpr(node.Value)
		t := lo.typeOf(node)
		local := lo.fn.NewLocal("heap", lo.typeOf(node.Value))
		lo.block.Store(local, val)
		return lo.block.AddressOf(local, t)

	case *ast.Array:
		return lo.lowerArray(node)
	case *ast.Table:
		return lo.lowerTable(node)
	case *ast.Struct:
		return lo.lowerStruct(node)

	case *ast.UnaryOp:
		return lo.lowerUnaryOp(node)
	case *ast.BinaryOp:
		return lo.lowerBinaryOp(node)
	case *ast.FunctionCall:
		return lo.lowerCall(node)

	case *ast.If:
		return lo.lowerIfExpr(node)
	case *ast.When:
		return lo.lowerWhenExpr(node)
	case *ast.Lambda:
		return lo.lowerLambda(node)
	}
	return &ir.Const{Type: types.Void()}
}

func (lo *Lowerer) lowerStringJoin(n *ast.StringJoin) ir.Value {
	var result ir.Value = &ir.Const{Type: stringType(), Str: ""}
	for _, child := range n.Children {
		var piece ir.Value
		if sl, ok := child.(*ast.StringLiteral); ok {
			piece = &ir.Const{Type: stringType(), Str: sl.Value}
		} else {
			piece = lo.lowerExpr(child)
		}
		result = lo.block.Call("__string_concat", []ir.Value{result, piece}, stringType())
	}
	return result
}

func (lo *Lowerer) lowerRangeValue(n *ast.Range) ir.Value {
	var first, step, last ir.Value
	i64 := types.Int(64, units.None, false)
	if n.First != nil {
		first = lo.lowerExpr(n.First)
	} else {
		first = &ir.Const{Type: i64, Int: 1}
	}
	if n.Step != nil {
		step = lo.lowerExpr(n.Step)
	} else {
		step = &ir.Const{Type: i64, Int: 1}
	}
	if n.Last != nil {
		last = lo.lowerExpr(n.Last)
	} else {
		last = &ir.Const{Type: i64, Int: 0}
	}
	return lo.block.StructNew([]ir.Value{first, step, last}, types.RangeT())
}

func (lo *Lowerer) lowerArray(n *ast.Array) ir.Value {
	t := lo.typeOf(n)
	items := make([]ir.Value, len(n.Items))
	for i, it := range n.Items {
		items[i] = lo.promote(lo.lowerExpr(it), t.Item)
	}
	return lo.block.ArrayNew(items, t)
}

func (lo *Lowerer) lowerTable(n *ast.Table) ir.Value {
	t := lo.typeOf(n)
	var fallback, def ir.Value
	if n.Fallback != nil {
		fallback = lo.lowerExpr(n.Fallback)
	}
	if n.Default != nil {
		def = lo.lowerExpr(n.Default)
	}
	table := lo.block.TableNew(fallback, def, t)
	local := lo.fn.NewLocal("table_lit", t)
	lo.block.Store(local, table)
	for _, e := range n.Entries {
		k := lo.promote(lo.lowerExpr(e.Key), t.Key)
		v := lo.promote(lo.lowerExpr(e.Value), t.Value)
		lo.block.TableSet(local, k, v)
	}
	return lo.block.Load(local)
}

func (lo *Lowerer) lowerStruct(n *ast.Struct) ir.Value {
	t := lo.typeOf(n)
	vals := make([]ir.Value, len(n.Members))
	for i, m := range n.Members {
		var ft *types.Type
		if i < len(t.FieldTypes) {
			ft = t.FieldTypes[i]
		}
		vals[i] = lo.promote(lo.lowerExpr(m.Value), ft)
	}
	return lo.block.StructNew(vals, t)
}

func (lo *Lowerer) lowerUnaryOp(n *ast.UnaryOp) ir.Value {
	t := lo.typeOf(n)
	switch n.Kind {
	case ast.OpNegative:
		return lo.block.Unary(ir.UnNeg, lo.lowerExpr(n.Operand), t)
	case ast.OpNot:
		return lo.block.Unary(ir.UnNot, lo.lowerExpr(n.Operand), types.Bool())
	case ast.OpLen:
		arr := lo.lowerExpr(n.Operand)
		return lo.block.Load(lo.block.FieldAccess(arr, "length", 1, types.Int(32, units.None, false)))
	case ast.OpMaybe:
		ptr := lo.lowerExpr(n.Operand)
		return lo.block.Compare(ir.CmpNe, ptr, &ir.Const{Type: lo.typeOf(n.Operand), IsNil: true})
	}
	return &ir.Const{Type: types.Void()}
}

func (lo *Lowerer) lowerBinaryOp(n *ast.BinaryOp) ir.Value {
	lhs := lo.lowerExpr(n.Left)
	rhs := lo.lowerExpr(n.Right)
	t := lo.typeOf(n)
	switch n.Kind {
	case ast.OpAnd:
		return lo.block.Binary(ir.BinAnd, lhs, rhs, t)
	case ast.OpOr:
		return lo.block.Binary(ir.BinOr, lhs, rhs, t)
	case ast.OpXor:
		return lo.block.Binary(ir.BinXor, lhs, rhs, t)
	case ast.OpEq:
		return lo.block.Call("__equal", []ir.Value{lhs, rhs}, types.Bool())
	case ast.OpNe:
		eq := lo.block.Call("__equal", []ir.Value{lhs, rhs}, types.Bool())
		return lo.block.Unary(ir.UnNot, eq, types.Bool())
	case ast.OpLt:
		return lo.block.Compare(ir.CmpLt, lhs, rhs)
	case ast.OpLe:
		return lo.block.Compare(ir.CmpLe, lhs, rhs)
	case ast.OpGt:
		return lo.block.Compare(ir.CmpGt, lhs, rhs)
	case ast.OpGe:
		return lo.block.Compare(ir.CmpGe, lhs, rhs)
	case ast.OpAdd:
		return lo.block.Binary(ir.BinAdd, lhs, rhs, t)
	case ast.OpSub:
		return lo.block.Binary(ir.BinSub, lhs, rhs, t)
	case ast.OpMul:
		return lo.block.Binary(ir.BinMul, lhs, rhs, t)
	case ast.OpDiv:
		return lo.block.Binary(ir.BinDiv, lhs, rhs, t)
	case ast.OpMod:
		return lo.block.Binary(ir.BinMod, lhs, rhs, t)
	case ast.OpPower:
		return lo.block.Binary(ir.BinPow, lhs, rhs, t)
	}
	return &ir.Const{Type: types.Void()}
}

func (lo *Lowerer) lowerCall(n *ast.FunctionCall) ir.Value {
	if v, ok := n.Callee.(*ast.Var); ok {
		if b, ok := lo.Env.Lookup(v.Name); ok && b.Type != nil && b.Type.Kind() == types.KindVariant {
			return lo.lowerTagConstructor(n, b.Type)
		}
	}
	ft := lo.typeOf(n.Callee)
	args := lo.lowerCallArgs(n, ft)
	if v, ok := n.Callee.(*ast.Var); ok {
		if fn := lo.lookupFunc(v.Name); fn != nil {
			return lo.block.Call(v.Name, args, ft.Ret)
		}
		return lo.block.Call(v.Name, args, ft.Ret)
	}
	callee := lo.lowerExpr(n.Callee)
	return lo.block.CallIndirect(callee, args, ft.Ret)
}

func (lo *Lowerer) lowerCallArgs(n *ast.FunctionCall, ft *types.Type) []ir.Value {
	args := make([]ir.Value, 0, len(n.Args))
	positional := 0
	for _, arg := range n.Args {
		if kw, ok := arg.(*ast.KeywordArg); ok {
			v := lo.lowerExpr(kw.Arg)
			args = append(args, v)
			continue
		}
		v := lo.lowerExpr(arg)
		if ft != nil && positional < len(ft.ArgTypes) {
			v = lo.promote(v, ft.ArgTypes[positional])
		}
		args = append(args, v)
		positional++
	}
	return args
}

// lowerTagConstructor builds a tagged-union r-value: a tag-index struct
// field plus the active union payload (spec.md §4.5.5's `Name.Tag(...)`
// constructor shape).
func (lo *Lowerer) lowerTagConstructor(n *ast.FunctionCall, variant *types.Type) ir.Value {
	union := variant.VariantOf
	var payload *types.Type
	idx := -1
	if union != nil && union.Data != nil {
		for i, fn := range union.Data.FieldNames {
			if fn == variant.Name {
				payload = union.Data.FieldTypes[i]
				idx = i
			}
		}
	}
	var fieldVals []ir.Value
	if payload != nil {
		fieldVals = make([]ir.Value, len(payload.FieldNames))
		for _, arg := range n.Args {
			kw, ok := arg.(*ast.KeywordArg)
			if !ok {
				continue
			}
			for j, fn := range payload.FieldNames {
				if fn == kw.Name {
					fieldVals[j] = lo.lowerExpr(kw.Arg)
				}
			}
		}
	}
	payloadVal := lo.block.StructNew(fieldVals, payload)
	unionVal := lo.block.UnionNew(idx, payloadVal, union.Data)
	tagConst := &ir.Const{Type: types.Int(32, units.None, false), Int: int64(idx)}
	return lo.block.StructNew([]ir.Value{tagConst, unionVal}, union)
}

// promote inserts a Cast when val's static type differs from want and
// CanPromote allows it (spec.md §4.5.6); a no-op when types already match.
func (lo *Lowerer) promote(val ir.Value, want *types.Type) ir.Value {
	if want == nil || val == nil {
		return val
	}
	got := val.ValueType()
	if got == nil || got == want || got.Equal(want) {
		return val
	}
	if types.CanPromote(got, want) {
		return lo.block.Cast(val, want)
	}
	return val
}

func (lo *Lowerer) callPrint(val ir.Value, t *types.Type) ir.Value {
	fn := lo.printFuncFor(t)
	return lo.block.Call(fn.Name, []ir.Value{val}, stringType())
}
