package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
)

func parseOK(t *testing.T, text string) *ast.Block {
	t.Helper()
	f := source.New("<test>", text)
	body, diags := parser.Parse(f)
	require.Empty(t, diags, "unexpected parse diagnostics for %q", text)
	return body
}

func TestParseDeclare(t *testing.T) {
	body := parseOK(t, "x := 5\n")
	require.Len(t, body.Statements, 1)
	decl, ok := body.Statements[0].(*ast.Declare)
	require.True(t, ok)
	v, ok := decl.Var.(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	assert.False(t, decl.IsGlobal)
}

func TestParseGlobalDeclare(t *testing.T) {
	body := parseOK(t, "global x := 5\n")
	decl := body.Statements[0].(*ast.Declare)
	assert.True(t, decl.IsGlobal)
}

func TestParseAssign(t *testing.T) {
	body := parseOK(t, "x = 5\n")
	assign, ok := body.Statements[0].(*ast.Assign)
	require.True(t, ok)
	assert.Len(t, assign.LHS, 1)
	assert.Len(t, assign.RHS, 1)
}

func TestParseBinaryPrecedence(t *testing.T) {
	body := parseOK(t, "x := 1 + 2 * 3\n")
	decl := body.Statements[0].(*ast.Declare)
	bin, ok := decl.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Kind)
	rhs, ok := bin.Right.(*ast.BinaryOp)
	require.True(t, ok, "multiplication should bind tighter than addition")
	assert.Equal(t, ast.OpMul, rhs.Kind)
}

func TestParseIf(t *testing.T) {
	body := parseOK(t, "if yes:\n    x := 1\nelse:\n    x := 2\n")
	ifNode, ok := body.Statements[0].(*ast.If)
	require.True(t, ok)
	assert.Len(t, ifNode.Conditions, 1)
	assert.Len(t, ifNode.Blocks, 1)
	assert.NotNil(t, ifNode.Else)
}

func TestParseFunctionDef(t *testing.T) {
	body := parseOK(t, "func add(x: Int, y: Int) -> Int:\n    return x + y\n")
	fn, ok := body.Statements[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Args, 2)
}

func TestParseUnclosedParenIsDiagnostic(t *testing.T) {
	f := source.New("<test>", "func add(x: Int\n")
	_, diags := parser.Parse(f)
	assert.NotEmpty(t, diags)
}
