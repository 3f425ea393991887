package ast_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/source"
)

// recordingVisitor embeds BaseVisitor and records which Visit method the
// node being inspected dispatched to, so Accept's wiring can be checked
// without hand-writing every Visitor method for each test.
type recordingVisitor struct {
	ast.BaseVisitor
	visited string
}

func (v *recordingVisitor) VisitInt(*ast.Int)             { v.visited = "Int" }
func (v *recordingVisitor) VisitBool(*ast.Bool)           { v.visited = "Bool" }
func (v *recordingVisitor) VisitVar(*ast.Var)             { v.visited = "Var" }
func (v *recordingVisitor) VisitBinaryOp(*ast.BinaryOp)   { v.visited = "BinaryOp" }
func (v *recordingVisitor) VisitIf(*ast.If)               { v.visited = "If" }
func (v *recordingVisitor) VisitFunctionDef(*ast.FunctionDef) { v.visited = "FunctionDef" }

func TestAcceptDispatchesToMatchingVisitMethod(t *testing.T) {
	span := source.Span{}
	cases := []struct {
		name string
		node ast.Node
		want string
	}{
		{"Int", &ast.Int{Base: ast.NewBase(span), Value: big.NewInt(5)}, "Int"},
		{"Bool", &ast.Bool{Base: ast.NewBase(span), Value: true}, "Bool"},
		{"Var", &ast.Var{Base: ast.NewBase(span), Name: "x"}, "Var"},
		{"BinaryOp", &ast.BinaryOp{Base: ast.NewBase(span)}, "BinaryOp"},
		{"If", &ast.If{Base: ast.NewBase(span)}, "If"},
		{"FunctionDef", &ast.FunctionDef{Base: ast.NewBase(span), Name: "f"}, "FunctionDef"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := &recordingVisitor{}
			c.node.Accept(v)
			assert.Equal(t, c.want, v.visited)
		})
	}
}

func TestBaseGetSpanReturnsEmbeddedSpan(t *testing.T) {
	f := source.New("<test>", "hello")
	span := source.Span{File: f, Start: 1, End: 3}
	n := &ast.Int{Base: ast.NewBase(span), Value: big.NewInt(1)}
	require.Equal(t, span, n.GetSpan())
}

func TestPatternIsAliasForNode(t *testing.T) {
	var p ast.Pattern = &ast.Int{Base: ast.NewBase(source.Span{}), Value: big.NewInt(1)}
	_, ok := p.(ast.Node)
	assert.True(t, ok)
}
