package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

func intT() *types.Type { return types.Int(64, units.None, false) }

func TestNewFunctionHasEntryBlock(t *testing.T) {
	fn := ir.NewFunction("main", nil, types.Void())
	require.NotNil(t, fn.Entry)
	assert.Len(t, fn.Blocks, 1)
	assert.Same(t, fn.Entry, fn.Blocks[0])
}

func TestNewBlockAssignsUniqueLabels(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	b1 := fn.NewBlock("loop")
	b2 := fn.NewBlock("loop")
	assert.NotEqual(t, b1.Label, b2.Label)
}

func TestNewLocalAppendsToFunction(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	l := fn.NewLocal("x", intT())
	require.Len(t, fn.Locals, 1)
	assert.Same(t, l, fn.Locals[0])
	assert.Equal(t, intT(), l.ValueType())
}

func TestLoadProducesResultWithSourceType(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	local := fn.NewLocal("x", intT())
	val := fn.Entry.Load(local)
	require.NotNil(t, val)
	assert.Equal(t, intT(), val.ValueType())
	require.Len(t, fn.Entry.Instrs, 1)
	assert.Equal(t, ir.OpLoad, fn.Entry.Instrs[0].Op)
}

func TestStoreProducesNoResult(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	local := fn.NewLocal("x", intT())
	fn.Entry.Store(local, &ir.Const{Type: intT(), Int: 5})
	require.Len(t, fn.Entry.Instrs, 1)
	instr := fn.Entry.Instrs[0]
	assert.Equal(t, ir.OpStore, instr.Op)
	assert.Nil(t, instr.Result)
}

func TestBinaryCarriesResultType(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	a := &ir.Const{Type: intT(), Int: 1}
	b := &ir.Const{Type: intT(), Int: 2}
	val := fn.Entry.Binary(ir.BinAdd, a, b, intT())
	require.NotNil(t, val)
	assert.Equal(t, intT(), val.ValueType())
}

func TestCompareAlwaysYieldsBool(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	a := &ir.Const{Type: intT(), Int: 1}
	b := &ir.Const{Type: intT(), Int: 2}
	val := fn.Entry.Compare(ir.CmpLt, a, b)
	assert.Equal(t, types.KindBool, val.ValueType().Kind())
}

func TestCallCarriesFuncNameAndArgs(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	arg := &ir.Const{Type: intT(), Int: 3}
	fn.Entry.Call("helper", []ir.Value{arg}, intT())
	instr := fn.Entry.Instrs[0]
	assert.Equal(t, ir.OpCall, instr.Op)
	assert.Equal(t, "helper", instr.FuncName)
	assert.Len(t, instr.Args, 1)
}

func TestTableNewFillsAbsentFallbackAndDefaultWithNilConsts(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	tableType := types.Table(types.Char(), intT())
	fn.Entry.TableNew(nil, nil, tableType)
	instr := fn.Entry.Instrs[0]
	assert.Equal(t, ir.OpTableNew, instr.Op)
	require.Len(t, instr.Args, 2)
	fallback, ok := instr.Args[0].(*ir.Const)
	require.True(t, ok)
	assert.True(t, fallback.IsNil)
	def, ok := instr.Args[1].(*ir.Const)
	require.True(t, ok)
	assert.True(t, def.IsNil)
}

func TestTableNewIncludesFallbackAndDefault(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	tableType := types.Table(types.Char(), intT())
	fallback := &ir.Const{Type: tableType}
	def := &ir.Const{Type: intT(), Int: 0}
	fn.Entry.TableNew(fallback, def, tableType)
	instr := fn.Entry.Instrs[0]
	assert.Len(t, instr.Args, 2)
}

func TestModuleAddFunctionAndGlobal(t *testing.T) {
	m := ir.NewModule("test")
	fn := m.AddFunction(ir.NewFunction("main", nil, types.Void()))
	g := m.AddGlobal("counter", intT())
	assert.Same(t, fn, m.Functions[0])
	assert.Same(t, g, m.Globals[0])
}

func TestTerminatorsAreDistinctTypes(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void())
	target := fn.NewBlock("next")
	fn.Entry.Term = ir.Jump{Target: target}
	_, ok := fn.Entry.Term.(ir.Jump)
	assert.True(t, ok)

	cond := &ir.Const{Type: types.Bool(), Int: 1}
	fn.Entry.Term = ir.CondJump{Cond: cond, Then: target, Else: fn.Entry}
	_, ok = fn.Entry.Term.(ir.CondJump)
	assert.True(t, ok)
}
