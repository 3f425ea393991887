package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/lower"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
)

func lowerSource(t *testing.T, text string) *ir.Module {
	t.Helper()
	f := source.New("<test>", text)
	body, diags := parser.Parse(f)
	require.Empty(t, diags, "unexpected parse diagnostics for %q", text)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.Empty(t, c.Errors(), "unexpected check diagnostics for %q: %+v", text, c.Errors())
	lo := lower.New(e, c, "<test>")
	return lo.LowerProgram(body)
}

func mainFunc(t *testing.T, m *ir.Module) *ir.Function {
	t.Helper()
	for _, fn := range m.Functions {
		if fn.Name == "main" {
			return fn
		}
	}
	t.Fatal("no main function in lowered module")
	return nil
}

func TestLowerProgramProducesMainReturningZero(t *testing.T) {
	m := lowerSource(t, "x := 1\n")
	main := mainFunc(t, m)
	require.NotNil(t, main.Entry.Term)
	ret, ok := main.Entry.Term.(ir.Return)
	require.True(t, ok)
	c, ok := ret.Value.(*ir.Const)
	require.True(t, ok)
	assert.Equal(t, int64(0), c.Int)
}

func TestLowerDeclareEmitsStore(t *testing.T) {
	m := lowerSource(t, "x := 5\n")
	main := mainFunc(t, m)
	found := false
	for _, instr := range main.Entry.Instrs {
		if instr.Op == ir.OpStore {
			found = true
		}
	}
	assert.True(t, found, "expected a store instruction for the declared local")
}

func TestLowerGlobalDeclareAddsModuleGlobal(t *testing.T) {
	m := lowerSource(t, "global x := 5\n")
	require.Len(t, m.Globals, 1)
	assert.Equal(t, "x", m.Globals[0].Name)
}

func TestLowerFunctionDefIsHoistedAsOwnFunction(t *testing.T) {
	m := lowerSource(t, "func add(x: Int64, y: Int64) -> Int64:\n    return x + y\n")
	var add *ir.Function
	for _, fn := range m.Functions {
		if fn.Name == "add" {
			add = fn
		}
	}
	require.NotNil(t, add, "expected a hoisted add function distinct from main")
	require.Len(t, add.Params, 2)
	ret, ok := add.Entry.Term.(ir.Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestLowerIfEmitsCondJump(t *testing.T) {
	m := lowerSource(t, "if yes:\n    x := 1\nelse:\n    x := 2\n")
	main := mainFunc(t, m)
	_, ok := main.Entry.Term.(ir.CondJump)
	assert.True(t, ok, "expected the entry block to end in a conditional jump")
}

func TestLowerWhileEmitsLoopBlocks(t *testing.T) {
	m := lowerSource(t, "i := 0\nwhile i < 3:\n    i = i + 1\n")
	main := mainFunc(t, m)
	assert.Greater(t, len(main.Blocks), 1, "a while loop should introduce additional blocks")
}

func TestLowerArithmeticEmitsBinary(t *testing.T) {
	m := lowerSource(t, "x := 1 + 2\n")
	main := mainFunc(t, m)
	found := false
	for _, instr := range main.Entry.Instrs {
		if instr.Op == ir.OpBinary && instr.BinOp == ir.BinAdd {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerStructLiteralEmitsStructNew(t *testing.T) {
	m := lowerSource(t, "struct Point:\n    x: Int64\n    y: Int64\np := Point{x=1, y=2}\n")
	main := mainFunc(t, m)
	found := false
	for _, instr := range main.Entry.Instrs {
		if instr.Op == ir.OpStructNew {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerDocTestOfDeclarationDoesNotPanic(t *testing.T) {
	f := source.New("<test>", "x := 1\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)

	wrapped := &ast.Block{Statements: []ast.Node{
		&ast.DocTest{Base: ast.NewBase(body.Statements[0].GetSpan()), Expr: body.Statements[0]},
	}}
	c := check.New(e)
	for _, stmt := range wrapped.Statements {
		c.GetType(stmt)
	}
	require.Empty(t, c.Errors())

	lo := lower.New(e, c, "<repl>")
	assert.NotPanics(t, func() {
		lo.LowerProgram(wrapped)
	})
}
