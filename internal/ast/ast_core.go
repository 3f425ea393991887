// Package ast defines the Language's tagged-variant expression tree. Every
// node is immutable once constructed and carries the Span it was parsed
// from (spec.md §3.2); transformations build new nodes rather than mutating
// existing ones.
package ast

import "github.com/bruce-hill/blangc/internal/source"

// Node is the Base interface satisfied by every AST node.
type Node interface {
	GetSpan() source.Span
	Accept(v Visitor)
}

// Pattern is reused expression syntax used in match arms (spec.md §4.4.3):
// any Node may appear as a pattern.
type Pattern = Node

// Base carries the span every node embeds.
type Base struct {
	Span source.Span
}

func (b Base) GetSpan() source.Span { return b.Span }

// NewBase wraps span for embedding into a concrete node literal, since the
// Span field alone isn't addressable from outside the package as a bare
// composite-literal key when Base is embedded anonymously in caller code
// that only has a source.Span in hand.
func NewBase(span source.Span) Base { return Base{Span: span} }

// Visitor dispatches over every concrete node variant. Implementations that
// only care about a subset embed BaseVisitor and override what they need.
type Visitor interface {
	VisitNil(*Nil)
	VisitBool(*Bool)
	VisitInt(*Int)
	VisitNum(*Num)
	VisitChar(*Char)
	VisitRange(*Range)
	VisitStringLiteral(*StringLiteral)
	VisitStringJoin(*StringJoin)
	VisitInterp(*Interp)

	VisitVar(*Var)
	VisitFieldAccess(*FieldAccess)
	VisitIndex(*Index)
	VisitDereference(*Dereference)
	VisitHeapAllocate(*HeapAllocate)

	VisitArray(*Array)
	VisitTable(*Table)
	VisitTableEntry(*TableEntry)
	VisitStruct(*Struct)
	VisitStructField(*StructField)
	VisitKeywordArg(*KeywordArg)

	VisitUnaryOp(*UnaryOp)
	VisitBinaryOp(*BinaryOp)
	VisitCompoundAssign(*CompoundAssign)
	VisitFunctionCall(*FunctionCall)

	VisitBlock(*Block)
	VisitDo(*Do)
	VisitIf(*If)
	VisitWhen(*When)
	VisitWhenCase(*WhenCase)
	VisitFor(*For)
	VisitWhile(*While)
	VisitRepeat(*Repeat)
	VisitSkip(*Skip)
	VisitStop(*Stop)
	VisitReturn(*Return)
	VisitFail(*Fail)

	VisitDeclare(*Declare)
	VisitAssign(*Assign)
	VisitFunctionDef(*FunctionDef)
	VisitLambda(*Lambda)
	VisitStructDef(*StructDef)
	VisitEnumDef(*EnumDef)
	VisitExtern(*Extern)
	VisitUse(*Use)
	VisitDocTest(*DocTest)

	VisitTypeArray(*TypeArray)
	VisitTypePointer(*TypePointer)
	VisitTypeOptional(*TypeOptional)
	VisitTypeFunction(*TypeFunction)
	VisitTypeTuple(*TypeTuple)
	VisitTypeMeasure(*TypeMeasure)
	VisitTypeName(*TypeName)
}

// BaseVisitor is embeddable by visitors that only need a handful of cases;
// all methods are no-ops by default.
type BaseVisitor struct{}

func (BaseVisitor) VisitNil(*Nil)                     {}
func (BaseVisitor) VisitBool(*Bool)                   {}
func (BaseVisitor) VisitInt(*Int)                     {}
func (BaseVisitor) VisitNum(*Num)                     {}
func (BaseVisitor) VisitChar(*Char)                   {}
func (BaseVisitor) VisitRange(*Range)                 {}
func (BaseVisitor) VisitStringLiteral(*StringLiteral) {}
func (BaseVisitor) VisitStringJoin(*StringJoin)       {}
func (BaseVisitor) VisitInterp(*Interp)               {}

func (BaseVisitor) VisitVar(*Var)                   {}
func (BaseVisitor) VisitFieldAccess(*FieldAccess)   {}
func (BaseVisitor) VisitIndex(*Index)               {}
func (BaseVisitor) VisitDereference(*Dereference)   {}
func (BaseVisitor) VisitHeapAllocate(*HeapAllocate) {}

func (BaseVisitor) VisitArray(*Array)             {}
func (BaseVisitor) VisitTable(*Table)             {}
func (BaseVisitor) VisitTableEntry(*TableEntry)   {}
func (BaseVisitor) VisitStruct(*Struct)           {}
func (BaseVisitor) VisitStructField(*StructField) {}
func (BaseVisitor) VisitKeywordArg(*KeywordArg)   {}

func (BaseVisitor) VisitUnaryOp(*UnaryOp)             {}
func (BaseVisitor) VisitBinaryOp(*BinaryOp)           {}
func (BaseVisitor) VisitCompoundAssign(*CompoundAssign) {}
func (BaseVisitor) VisitFunctionCall(*FunctionCall)   {}

func (BaseVisitor) VisitBlock(*Block)       {}
func (BaseVisitor) VisitDo(*Do)             {}
func (BaseVisitor) VisitIf(*If)             {}
func (BaseVisitor) VisitWhen(*When)         {}
func (BaseVisitor) VisitWhenCase(*WhenCase) {}
func (BaseVisitor) VisitFor(*For)           {}
func (BaseVisitor) VisitWhile(*While)       {}
func (BaseVisitor) VisitRepeat(*Repeat)     {}
func (BaseVisitor) VisitSkip(*Skip)         {}
func (BaseVisitor) VisitStop(*Stop)         {}
func (BaseVisitor) VisitReturn(*Return)     {}
func (BaseVisitor) VisitFail(*Fail)         {}

func (BaseVisitor) VisitDeclare(*Declare)         {}
func (BaseVisitor) VisitAssign(*Assign)           {}
func (BaseVisitor) VisitFunctionDef(*FunctionDef) {}
func (BaseVisitor) VisitLambda(*Lambda)           {}
func (BaseVisitor) VisitStructDef(*StructDef)     {}
func (BaseVisitor) VisitEnumDef(*EnumDef)         {}
func (BaseVisitor) VisitExtern(*Extern)           {}
func (BaseVisitor) VisitUse(*Use)                 {}
func (BaseVisitor) VisitDocTest(*DocTest)         {}

func (BaseVisitor) VisitTypeArray(*TypeArray)       {}
func (BaseVisitor) VisitTypePointer(*TypePointer)   {}
func (BaseVisitor) VisitTypeOptional(*TypeOptional) {}
func (BaseVisitor) VisitTypeFunction(*TypeFunction) {}
func (BaseVisitor) VisitTypeTuple(*TypeTuple)       {}
func (BaseVisitor) VisitTypeMeasure(*TypeMeasure)   {}
func (BaseVisitor) VisitTypeName(*TypeName)         {}
