package vmbackend

import (
	"fmt"
	"math"
	"os"

	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
)

// ref is an addressable storage location: Load reads through Get, Store
// writes through Set. Field/Index/Deref instructions yield refs; Load and
// AddressOf are the only consumers that care about the distinction.
type ref struct {
	get func() interface{}
	set func(interface{})
}

// frame is one function activation: its locals and the memoized result of
// every instruction already executed in the current block.
type frame struct {
	locals  map[*ir.Local]interface{}
	params  map[*ir.Param]interface{}
	results map[*ir.InstrResult]interface{}
}

func newFrame() *frame {
	return &frame{
		locals:  map[*ir.Local]interface{}{},
		params:  map[*ir.Param]interface{}{},
		results: map[*ir.InstrResult]interface{}{},
	}
}

// call executes fn with args bound to its parameters and returns its
// Return value (nil for Void).
func (vm *VM) call(fn *ir.Function, args []interface{}) (interface{}, error) {
	fr := newFrame()
	for i, p := range fn.Params {
		if i < len(args) {
			fr.params[p] = args[i]
		}
	}
	block := fn.Entry
	for {
		ret, next, err := vm.execBlock(fr, block)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return ret, nil
		}
		block = next
	}
}

// execBlock runs block's instructions, then its terminator. A non-nil
// *ir.Block return means "continue at this block"; a nil block with a nil
// error means the function has returned, with the first result as its
// return value (nil for a bare return).
func (vm *VM) execBlock(fr *frame, block *ir.Block) (interface{}, *ir.Block, error) {
	for _, instr := range block.Instrs {
		if err := vm.execInstr(fr, instr); err != nil {
			return nil, nil, err
		}
	}
	switch term := block.Term.(type) {
	case ir.Jump:
		return nil, term.Target, nil
	case ir.CondJump:
		cond := vm.load(fr, term.Cond)
		if truthy(cond) {
			return nil, term.Then, nil
		}
		return nil, term.Else, nil
	case ir.Return:
		if term.Value == nil {
			return nil, nil, nil
		}
		return vm.load(fr, term.Value), nil, nil
	case ir.Switch:
		v := asInt(vm.load(fr, term.Value))
		for _, c := range term.Cases {
			if v >= c.Low && v <= c.High {
				return nil, c.Target, nil
			}
		}
		return nil, term.Default, nil
	default:
		return nil, nil, fmt.Errorf("block %s has no terminator", block.Label)
	}
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return v != nil
	}
}

func asInt(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// load resolves a Value to its current runtime value, following refs
// produced by field/index/deref instructions.
func (vm *VM) load(fr *frame, v ir.Value) interface{} {
	switch node := v.(type) {
	case *ir.Const:
		if node.IsNil {
			return nil
		}
		if node.Str != "" || node.Type == nil {
			return node.Str
		}
		if node.Float != 0 {
			return node.Float
		}
		return node.Int
	case *ir.Local:
		return fr.locals[node]
	case *ir.Param:
		return fr.params[node]
	case *ir.Global:
		return vm.globals[node.Name]
	case *ir.InstrResult:
		val := fr.results[node]
		if r, ok := val.(ref); ok {
			return r.get()
		}
		return val
	}
	return nil
}

func (vm *VM) execInstr(fr *frame, instr *ir.Instr) error {
	switch instr.Op {
	case ir.OpLoad:
		fr.results[instr.Result] = vm.load(fr, instr.Args[0])
	case ir.OpStore:
		vm.store(fr, instr.Args[0], vm.load(fr, instr.Args[1]))
	case ir.OpBinary:
		fr.results[instr.Result] = vm.binary(instr.BinOp, vm.load(fr, instr.Args[0]), vm.load(fr, instr.Args[1]))
	case ir.OpUnary:
		fr.results[instr.Result] = vm.unary(instr.UnOp, vm.load(fr, instr.Args[0]))
	case ir.OpCompare:
		fr.results[instr.Result] = vm.compare(instr.CmpOp, vm.load(fr, instr.Args[0]), vm.load(fr, instr.Args[1]))
	case ir.OpCall:
		args := make([]interface{}, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = vm.load(fr, a)
		}
		ret, err := vm.callNamed(instr.FuncName, args)
		if err != nil {
			return err
		}
		fr.results[instr.Result] = ret
	case ir.OpCallIndirect:
		args := make([]interface{}, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = vm.load(fr, a)
		}
		name := fmt.Sprintf("%v", vm.load(fr, instr.Callee))
		ret, err := vm.callNamed(name, args)
		if err != nil {
			return err
		}
		fr.results[instr.Result] = ret
	case ir.OpFieldAccess:
		base := instr.Args[0]
		field := instr.Field
		positional := fmt.Sprintf("_%d", instr.FieldIdx)
		fr.results[instr.Result] = ref{
			get: func() interface{} {
				m, _ := vm.load(fr, base).(map[string]interface{})
				if v, ok := m[field]; ok {
					return v
				}
				// OpStructNew names fields "_0", "_1", ... when its type
				// carries no field names (Range).
				return m[positional]
			},
			set: func(v interface{}) {
				m, ok := vm.load(fr, base).(map[string]interface{})
				if !ok {
					m = map[string]interface{}{}
					vm.store(fr, base, m)
				}
				m[field] = v
			},
		}
	case ir.OpIndex:
		base, idxArg := instr.Args[0], instr.Args[1]
		fr.results[instr.Result] = ref{
			get: func() interface{} {
				items := arrayItems(vm.load(fr, base))
				i := asInt(vm.load(fr, idxArg))
				if i < 1 || int(i) > len(items) {
					return nil
				}
				return items[i-1]
			},
			set: func(v interface{}) {
				items := arrayItems(vm.load(fr, base))
				i := asInt(vm.load(fr, idxArg))
				if i >= 1 && int(i) <= len(items) {
					items[i-1] = v
				}
			},
		}
	case ir.OpDeref:
		ptr := instr.Args[0]
		fr.results[instr.Result] = ref{
			get: func() interface{} {
				b, _ := vm.load(fr, ptr).(*interface{})
				if b == nil {
					return nil
				}
				return *b
			},
			set: func(v interface{}) {
				b, _ := vm.load(fr, ptr).(*interface{})
				if b != nil {
					*b = v
				}
			},
		}
	case ir.OpAddressOf:
		val := vm.load(fr, instr.Args[0])
		box := new(interface{})
		*box = val
		fr.results[instr.Result] = box
	case ir.OpStructNew:
		m := map[string]interface{}{}
		for i, a := range instr.Args {
			name := ""
			if instr.Type != nil && i < len(instr.Type.FieldNames) {
				name = instr.Type.FieldNames[i]
			} else {
				name = fmt.Sprintf("_%d", i)
			}
			m[name] = vm.load(fr, a)
		}
		fr.results[instr.Result] = m
	case ir.OpUnionNew:
		fr.results[instr.Result] = map[string]interface{}{"tag": int64(instr.FieldIdx), "value": vm.load(fr, instr.Args[0])}
	case ir.OpArrayNew:
		items := make([]interface{}, len(instr.Args))
		for i, a := range instr.Args {
			items[i] = vm.load(fr, a)
		}
		fr.results[instr.Result] = map[string]interface{}{"items": items, "length": int64(len(items))}
	case ir.OpArrayAppend:
		arr, _ := vm.load(fr, instr.Args[0]).(map[string]interface{})
		if arr == nil {
			return nil
		}
		items, _ := arr["items"].([]interface{})
		arr["items"] = append(items, vm.load(fr, instr.Args[1]))
		arr["length"] = int64(len(items) + 1)
	case ir.OpTableNew:
		t := map[string]interface{}{"entries": map[interface{}]interface{}{}}
		if fb, ok := instr.Args[0].(*ir.Const); !ok || !fb.IsNil {
			t["fallback"] = vm.load(fr, instr.Args[0])
		}
		if def, ok := instr.Args[1].(*ir.Const); !ok || !def.IsNil {
			t["default"] = vm.load(fr, instr.Args[1])
		}
		fr.results[instr.Result] = t
	case ir.OpTableGet:
		tableArg, keyArg := instr.Args[0], instr.Args[1]
		fr.results[instr.Result] = ref{
			get: func() interface{} {
				table, _ := vm.load(fr, tableArg).(map[string]interface{})
				return tableLookup(table, vm.load(fr, keyArg))
			},
			set: func(v interface{}) {
				table, ok := vm.load(fr, tableArg).(map[string]interface{})
				if !ok {
					return
				}
				entries, _ := table["entries"].(map[interface{}]interface{})
				if entries == nil {
					entries = map[interface{}]interface{}{}
					table["entries"] = entries
				}
				entries[vm.load(fr, keyArg)] = v
			},
		}
	case ir.OpTableSet:
		table, _ := vm.load(fr, instr.Args[0]).(map[string]interface{})
		if table == nil {
			return nil
		}
		entries, _ := table["entries"].(map[interface{}]interface{})
		entries[vm.load(fr, instr.Args[1])] = vm.load(fr, instr.Args[2])
	case ir.OpCast, ir.OpBitcast:
		fr.results[instr.Result] = vm.cast(instr, vm.load(fr, instr.Args[0]))
	case ir.OpPhi:
		// Unused: block-local Store/Load through locals covers join points.
	}
	return nil
}

// tableLookup resolves key against table's own entries, then its fallback
// table (recursively), then its default value, in that order (spec.md
// §4.5.2's "resolving through fallback then default per runtime behaviour").
func tableLookup(table map[string]interface{}, key interface{}) interface{} {
	if table == nil {
		return nil
	}
	entries, _ := table["entries"].(map[interface{}]interface{})
	if v, ok := entries[key]; ok {
		return v
	}
	if fallback, ok := table["fallback"].(map[string]interface{}); ok {
		if v := tableLookup(fallback, key); v != nil {
			return v
		}
	}
	if def, ok := table["default"]; ok {
		return def
	}
	return nil
}

func arrayItems(v interface{}) []interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	items, _ := m["items"].([]interface{})
	return items
}

func (vm *VM) store(fr *frame, dst ir.Value, val interface{}) {
	switch node := dst.(type) {
	case *ir.Local:
		fr.locals[node] = val
	case *ir.Param:
		fr.params[node] = val
	case *ir.Global:
		vm.globals[node.Name] = val
	case *ir.InstrResult:
		if r, ok := fr.results[node].(ref); ok {
			r.set(val)
			return
		}
		fr.results[node] = val
	}
}

func (vm *VM) callNamed(name string, args []interface{}) (interface{}, error) {
	if fn := vm.findFunc(name); fn != nil {
		return vm.call(fn, args)
	}
	if name == "__doctest_report" {
		out := vm.Output
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, "= %v\n", args[0])
		return nil, nil
	}
	if name == "say" {
		out := vm.Output
		if out == nil {
			out = os.Stdout
		}
		msg, _ := args[0].(string)
		end := "\n"
		if len(args) > 1 {
			if e, ok := args[1].(string); ok {
				end = e
			}
		}
		_, err := env.Write(out, msg+end)
		return nil, err
	}
	if builtin, ok := runtimeBuiltins[name]; ok {
		return builtin(args)
	}
	return nil, fmt.Errorf("call to undefined function %q", name)
}

func (vm *VM) cast(instr *ir.Instr, val interface{}) interface{} {
	if instr.Type == nil {
		return val
	}
	switch instr.Type.Kind() {
	case types.KindNum:
		return asFloat(val)
	default:
		if _, ok := val.(float64); ok {
			return asInt(val)
		}
		return val
	}
}

func (vm *VM) binary(op ir.BinOp, a, b interface{}) interface{} {
	_, af := a.(float64)
	_, bf := b.(float64)
	if af || bf {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case ir.BinAdd:
			return x + y
		case ir.BinSub:
			return x - y
		case ir.BinMul:
			return x * y
		case ir.BinDiv:
			return x / y
		case ir.BinMod:
			return math.Mod(x, y)
		case ir.BinPow:
			return math.Pow(x, y)
		}
	}
	x, y := asInt(a), asInt(b)
	switch op {
	case ir.BinAdd:
		return x + y
	case ir.BinSub:
		return x - y
	case ir.BinMul:
		return x * y
	case ir.BinDiv:
		if y == 0 {
			return int64(0)
		}
		return x / y
	case ir.BinMod:
		if y == 0 {
			return int64(0)
		}
		return x % y
	case ir.BinPow:
		return int64(math.Pow(float64(x), float64(y)))
	case ir.BinAnd:
		return truthy(a) && truthy(b)
	case ir.BinOr:
		return truthy(a) || truthy(b)
	case ir.BinXor:
		return truthy(a) != truthy(b)
	case ir.BinShl:
		return x << uint(y)
	case ir.BinShr:
		return x >> uint(y)
	case ir.BinBitAnd:
		return x & y
	case ir.BinBitOr:
		return x | y
	case ir.BinBitXor:
		return x ^ y
	}
	return nil
}

func (vm *VM) unary(op ir.UnOp, v interface{}) interface{} {
	switch op {
	case ir.UnNeg:
		if f, ok := v.(float64); ok {
			return -f
		}
		return -asInt(v)
	case ir.UnNot:
		return !truthy(v)
	case ir.UnLen:
		return int64(len(arrayItems(v)))
	}
	return nil
}

func (vm *VM) compare(op ir.CmpOp, a, b interface{}) bool {
	_, af := a.(float64)
	_, bf := b.(float64)
	if af || bf {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case ir.CmpEq:
			return x == y
		case ir.CmpNe:
			return x != y
		case ir.CmpLt:
			return x < y
		case ir.CmpLe:
			return x <= y
		case ir.CmpGt:
			return x > y
		case ir.CmpGe:
			return x >= y
		}
	}
	x, y := asInt(a), asInt(b)
	switch op {
	case ir.CmpEq:
		return x == y
	case ir.CmpNe:
		return x != y
	case ir.CmpLt:
		return x < y
	case ir.CmpLe:
		return x <= y
	case ir.CmpGt:
		return x > y
	case ir.CmpGe:
		return x >= y
	}
	return false
}
