package ast

import (
	"math/big"

	"github.com/bruce-hill/blangc/internal/source"
	"github.com/bruce-hill/blangc/internal/units"
)

// Nil is the literal `!Type` (or bare `nil` with an inferred type).
type Nil struct {
	Base
	Type Node // a type-as-syntax node, or nil if inferred
}

func (n *Nil) Accept(v Visitor) { v.VisitNil(n) }

// Bool is `yes`/`no`.
type Bool struct {
	Base
	Value bool
}

func (n *Bool) Accept(v Visitor) { v.VisitBool(n) }

// Int is an integer literal with an explicit bit width and optional units.
type Int struct {
	Base
	Value     *big.Int
	Precision int // 8, 16, 32, or 64
	Units     units.Unit
}

func (n *Int) Accept(v Visitor) { v.VisitInt(n) }

// Num is a floating-point literal.
type Num struct {
	Base
	Value     float64
	Precision int // 32 or 64
	Units     units.Unit
}

func (n *Num) Accept(v Visitor) { v.VisitNum(n) }

// Char is a single-character literal.
type Char struct {
	Base
	Value rune
}

func (n *Char) Accept(v Visitor) { v.VisitChar(n) }

// Range is `first..last` or `first,step..last`, any part may be omitted.
type Range struct {
	Base
	First Node
	Step  Node
	Last  Node
}

func (n *Range) Accept(v Visitor) { v.VisitRange(n) }

// StringLiteral is a run of literal text inside a string (no interpolation).
type StringLiteral struct {
	Base
	Value string
}

func (n *StringLiteral) Accept(v Visitor) { v.VisitStringLiteral(n) }

// StringJoin concatenates literal and interpolated pieces into one string.
type StringJoin struct {
	Base
	Children []Node
}

func (n *StringJoin) Accept(v Visitor) { v.VisitStringJoin(n) }

// Interp is a `$value` interpolation inside a string.
type Interp struct {
	Base
	Value Node
	Color bool // whether to emit terminal-coloring around the printed value
}

func (n *Interp) Accept(v Visitor) { v.VisitInterp(n) }

// Var is a bare name reference.
type Var struct {
	Base
	Name string
}

func (n *Var) Accept(v Visitor) { v.VisitVar(n) }

// FieldAccess is `receiver.field`.
type FieldAccess struct {
	Base
	Receiver Node
	Field    string
}

func (n *FieldAccess) Accept(v Visitor) { v.VisitFieldAccess(n) }

// Index is `receiver[index]`.
type Index struct {
	Base
	Receiver Node
	IndexVal Node
}

func (n *Index) Accept(v Visitor) { v.VisitIndex(n) }

// Dereference is `*value`, unwrapping a non-optional pointer.
type Dereference struct {
	Base
	Value Node
}

func (n *Dereference) Accept(v Visitor) { v.VisitDereference(n) }

// HeapAllocate is `@value`, boxing value onto the heap and yielding a pointer.
type HeapAllocate struct {
	Base
	Value Node
}

func (n *HeapAllocate) Accept(v Visitor) { v.VisitHeapAllocate(n) }

func Span(f *source.File, start, end int) source.Span { return source.NewSpan(f, start, end) }
