package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/types"
)

func checkSource(t *testing.T, text string) (*check.Checker, *ast.Block) {
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
	return c, body
}

func TestCheckIntLiteral(t *testing.T) {
	c, body := checkSource(t, "x := 5\n")
	decl := body.Statements[0].(*ast.Declare)
	assert.Empty(t, c.Errors())
	ty := c.GetType(decl.Value)
	assert.Equal(t, types.KindInt, ty.Kind())
}

func TestCheckArithmeticPromotesToWiderOperand(t *testing.T) {
	c, body := checkSource(t, "x := 1i64\ny := 2i32\nz := x + y\n")
	assert.Empty(t, c.Errors())
	zDecl := body.Statements[2].(*ast.Declare)
	zt := c.GetType(zDecl.Value)
	assert.Equal(t, 64, zt.Bits)
}

func TestCheckArithmeticUnitMismatchIsError(t *testing.T) {
	f := source.New("<test>", "x := 1<m>\ny := 1<s>\nz := x + y\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.NotEmpty(t, c.Errors())
	assert.Contains(t, c.Errors()[0].Message, "units don't match")
}

func TestCheckComparisonRequiresNumeric(t *testing.T) {
	f := source.New("<test>", "x := \"a\" < \"b\"\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.NotEmpty(t, c.Errors())
	assert.Contains(t, c.Errors()[0].Message, "comparison requires numeric operands")
}

func TestCheckUndefinedNameIsError(t *testing.T) {
	f := source.New("<test>", "x := y\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.NotEmpty(t, c.Errors())
	assert.Contains(t, c.Errors()[0].Message, "undefined name")
}

func TestCheckIfBranchesJoin(t *testing.T) {
	c, body := checkSource(t, "x := 1i64\nif yes:\n    y := x\nelse:\n    y := x\n")
	assert.Empty(t, c.Errors())
	ifNode := body.Statements[1].(*ast.If)
	ty := c.GetType(ifNode)
	assert.Equal(t, types.KindVoid, ty.Kind())
}

func TestCheckDiscardedValueIsError(t *testing.T) {
	c, _ := checkSource(t, "func f() -> Int64:\n    return 1\ndo:\n    f()\n    1\n")
	require.NotEmpty(t, c.Errors())
	found := false
	for _, d := range c.Errors() {
		if strings.Contains(d.Message, "discarded") {
			found = true
		}
	}
	assert.True(t, found, "expected a discarded-value diagnostic, got %+v", c.Errors())
}

func TestCheckFunctionDefArgTypes(t *testing.T) {
	c, body := checkSource(t, "func add(x: Int64, y: Int64) -> Int64:\n    return x + y\n")
	assert.Empty(t, c.Errors())
	fn := body.Statements[0].(*ast.FunctionDef)
	ty := c.GetType(fn)
	assert.Equal(t, types.KindFunction, ty.Kind())
}

func TestCheckStructDefAndLiteral(t *testing.T) {
	c, _ := checkSource(t, "struct Point:\n    x: Int64\n    y: Int64\np := Point{x=1, y=2}\n")
	assert.Empty(t, c.Errors())
}

func TestCheckFieldAccessUnknownFieldIsError(t *testing.T) {
	f := source.New("<test>", "struct Point:\n    x: Int64\n    y: Int64\np := Point{x=1, y=2}\nz := p.q\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	assert.NotEmpty(t, c.Errors())
}

func TestCheckNilRequiresContext(t *testing.T) {
	f := source.New("<test>", "x := nil\n")
	body, diags := parser.Parse(f)
	require.Empty(t, diags)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.NotEmpty(t, c.Errors())
	assert.Contains(t, c.Errors()[0].Message, "cannot infer type of nil")
}
