package native_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/backend/native"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

func TestTranslateEmitsMainFunction(t *testing.T) {
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, types.Int(32, units.None, false))
	main.Entry.Term = ir.Return{Value: &ir.Const{Type: types.Int(32, units.None, false), Int: 0}}
	m.AddFunction(main)

	llMod := native.Translate(m)
	require.NotNil(t, llMod)
	out := llMod.String()
	assert.Contains(t, out, "@main")
}

func TestTranslateDeclaresCalledFunctionsBeforeDefining(t *testing.T) {
	m := ir.NewModule("test")
	helper := ir.NewFunction("helper", nil, types.Void())
	helper.Entry.Term = ir.Return{}
	m.AddFunction(helper)

	main := ir.NewFunction("main", nil, types.Int(32, units.None, false))
	main.Entry.Call("helper", nil, types.Void())
	main.Entry.Term = ir.Return{Value: &ir.Const{Type: types.Int(32, units.None, false), Int: 0}}
	m.AddFunction(main)

	llMod := native.Translate(m)
	out := llMod.String()
	assert.Contains(t, out, "@helper")
	assert.True(t, strings.Count(out, "@helper") >= 2, "helper should appear in both its own definition and main's call site")
}

func TestTranslateRoutesUnknownCalleesThroughExternRuntime(t *testing.T) {
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, types.Void())
	arg := &ir.Const{Type: types.Int(64, units.None, false), Int: 1}
	main.Entry.Call("__string_concat", []ir.Value{arg, arg}, types.Int(64, units.None, false))
	main.Entry.Term = ir.Return{}
	m.AddFunction(main)

	llMod := native.Translate(m)
	out := llMod.String()
	assert.Contains(t, out, "__string_concat")
	assert.Contains(t, out, "declare")
}

func TestBackendNameIsNative(t *testing.T) {
	assert.Equal(t, "native", native.New().Name())
}

func TestTranslateEmitsRealBinaryArithmetic(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, i64)
	x := main.NewLocal("x", i64)
	y := main.NewLocal("y", i64)
	main.Entry.Store(x, &ir.Const{Type: i64, Int: 2})
	main.Entry.Store(y, &ir.Const{Type: i64, Int: 3})
	sum := main.Entry.Binary(ir.BinAdd, main.Entry.Load(x), main.Entry.Load(y), i64)
	main.Entry.Term = ir.Return{Value: sum}
	m.AddFunction(main)

	out := native.Translate(m).String()
	assert.Contains(t, out, "add i64")
	assert.NotContains(t, out, "ret i64 0", "the sum, not a hardcoded zero, should be returned")
}

func TestTranslateCondJumpUsesRealComparison(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, i64)
	cond := main.Entry.Compare(ir.CmpLt, &ir.Const{Type: i64, Int: 1}, &ir.Const{Type: i64, Int: 2})
	thenB := main.NewBlock("then")
	elseB := main.NewBlock("else")
	thenB.Term = ir.Return{Value: &ir.Const{Type: i64, Int: 1}}
	elseB.Term = ir.Return{Value: &ir.Const{Type: i64, Int: 0}}
	main.Entry.Term = ir.CondJump{Cond: cond, Then: thenB, Else: elseB}
	m.AddFunction(main)

	out := native.Translate(m).String()
	assert.Contains(t, out, "icmp slt i64")
	assert.NotContains(t, out, "br i1 true", "the real comparison, not an unconditional true, should drive the branch")
}

func TestTranslateSwitchExpandsRangeCases(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, i64)
	lo := main.NewBlock("lo")
	hi := main.NewBlock("hi")
	def := main.NewBlock("def")
	lo.Term = ir.Return{Value: &ir.Const{Type: i64, Int: 1}}
	hi.Term = ir.Return{Value: &ir.Const{Type: i64, Int: 2}}
	def.Term = ir.Return{Value: &ir.Const{Type: i64, Int: 0}}
	main.Entry.Term = ir.Switch{
		Value:   &ir.Const{Type: i64, Int: 7},
		Cases:   []ir.SwitchCase{{Low: 1, High: 5, Target: lo}, {Low: 6, High: 6, Target: hi}},
		Default: def,
	}
	m.AddFunction(main)

	out := native.Translate(m).String()
	assert.Contains(t, out, "icmp sge i64")
	assert.Contains(t, out, "icmp sle i64")
	assert.Contains(t, out, "icmp eq i64")
}

func TestTranslatePowRoutesThroughLibm(t *testing.T) {
	num := types.Num(64, units.None)
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, num)
	main.Entry.Term = ir.Return{Value: main.Entry.Binary(ir.BinPow,
		&ir.Const{Type: num, Float: 2}, &ir.Const{Type: num, Float: 3}, num)}
	m.AddFunction(main)

	out := native.Translate(m).String()
	assert.Contains(t, out, "declare double @pow(double, double)")
	assert.Contains(t, out, "call double @pow")
}

func TestTranslateFieldAccessCallsExternRuntimeWithRealBase(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	structT := types.Struct("Point", []string{"x"}, []*types.Type{i64}, units.None)
	m := ir.NewModule("test")
	main := ir.NewFunction("main", nil, i64)
	p := main.NewLocal("p", structT)
	field := main.Entry.Load(main.Entry.FieldAccess(p, "x", 0, i64))
	main.Entry.Term = ir.Return{Value: field}
	m.AddFunction(main)

	out := native.Translate(m).String()
	assert.Contains(t, out, "__field_access")
	assert.Contains(t, out, "alloca")
}
